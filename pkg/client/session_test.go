package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ai-journaling-be/internal/constant"
	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu          chan struct{} // used to stall the complete handler
	completeHit int32
	streamHit   int32

	completeStatus int
	completeReply  string
	streamStatus   int
	streamFrames   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		completeStatus: http.StatusOK,
		completeReply:  "Hi there",
		streamStatus:   http.StatusOK,
	}
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.completeHit, 1)
		if f.mu != nil {
			<-f.mu
		}
		if f.completeStatus != http.StatusOK {
			w.WriteHeader(f.completeStatus)
			json.NewEncoder(w).Encode(map[string]interface{}{"message": "LLM service error", "retryable": true})
			return
		}

		var req dto.ChatRequest
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &req)

		resp := map[string]interface{}{
			"message": "Success send message",
			"data": dto.ChatResponse{
				Message: dto.MessageDTO{
					Id:      "assistant-1",
					Role:    constant.MessageRoleAssistant,
					Content: f.completeReply,
				},
				RetrievedContext: []dto.RetrievedContextDTO{},
				Metadata:         map[string]interface{}{"journal_id": "journal-1"},
				AutoSaved:        true,
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/api/chat/stream", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.streamHit, 1)
		if f.streamStatus != http.StatusOK {
			w.WriteHeader(f.streamStatus)
			json.NewEncoder(w).Encode(map[string]interface{}{"message": "upstream failed", "retryable": true})
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frame := range f.streamFrames {
			io.WriteString(w, "data: "+frame+"\n\n")
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSendTurnCompletePath(t *testing.T) {
	api := newFakeAPI()
	srv := api.server(t)

	sc := NewSessionController(New(srv.URL))
	result, err := sc.SendTurn(context.Background(), "Hello", false)
	require.NoError(t, err)

	assert.Equal(t, "Hi there", result.Assistant.Content)
	assert.True(t, result.AutoSaved)
	assert.Equal(t, "journal-1", result.JournalId)
	assert.False(t, result.Streamed)

	assert.Equal(t, StateIdle, sc.State())
	assert.Equal(t, "journal-1", sc.JournalId())

	msgs := sc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, constant.MessageRoleUser, msgs[0].Role)
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.Equal(t, constant.MessageRoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hi there", msgs[1].Content)
}

func TestSendTurnStreamingPath(t *testing.T) {
	api := newFakeAPI()
	api.streamFrames = []string{
		`{"type":"token","data":{"content":"Hi "}}`,
		`{"type":"token","data":{"content":"there"}}`,
		`{"type":"done","data":{"message":{"role":"assistant","content":"Hi there"},"auto_saved":true,"journal_id":"journal-1"}}`,
	}
	srv := api.server(t)

	var tokens []string
	var newJournals []string
	sc := NewSessionController(New(srv.URL),
		WithOnToken(func(token string) { tokens = append(tokens, token) }),
		WithOnNewJournal(func(id string) { newJournals = append(newJournals, id) }),
	)

	result, err := sc.SendTurn(context.Background(), "Hello", true)
	require.NoError(t, err)

	assert.True(t, result.Streamed)
	assert.Equal(t, "Hi there", result.Assistant.Content)
	assert.Equal(t, []string{"Hi ", "there"}, tokens)
	assert.Equal(t, []string{"journal-1"}, newJournals)
	assert.Zero(t, atomic.LoadInt32(&api.completeHit))

	msgs := sc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hi there", msgs[1].Content)
}

func TestStreamingFallsBackToCompleteOnce(t *testing.T) {
	api := newFakeAPI()
	api.streamStatus = http.StatusBadGateway
	srv := api.server(t)

	sc := NewSessionController(New(srv.URL))
	result, err := sc.SendTurn(context.Background(), "Hello", true)
	require.NoError(t, err)

	assert.False(t, result.Streamed)
	assert.Equal(t, "Hi there", result.Assistant.Content)
	assert.Equal(t, int32(1), atomic.LoadInt32(&api.streamHit))
	assert.Equal(t, int32(1), atomic.LoadInt32(&api.completeHit))
	assert.Equal(t, StateIdle, sc.State())
}

func TestFallbackFailureRollsBackOptimisticMessage(t *testing.T) {
	api := newFakeAPI()
	api.streamStatus = http.StatusBadGateway
	api.completeStatus = http.StatusServiceUnavailable
	srv := api.server(t)

	sc := NewSessionController(New(srv.URL))
	_, err := sc.SendTurn(context.Background(), "Hello", true)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.Retryable)

	assert.Equal(t, StateErrored, sc.State())
	assert.Empty(t, sc.Messages())
	assert.Error(t, sc.Err())

	sc.Dismiss()
	assert.Equal(t, StateIdle, sc.State())
	assert.NoError(t, sc.Err())
}

func TestServerErrorEventIsTerminalWithoutFallback(t *testing.T) {
	api := newFakeAPI()
	api.streamFrames = []string{
		`{"type":"error","data":{"message":"LLM service error","retryable":true}}`,
	}
	srv := api.server(t)

	sc := NewSessionController(New(srv.URL))
	_, err := sc.SendTurn(context.Background(), "Hello", true)
	require.Error(t, err)

	// The server decided the turn; the fallback must not re-run it.
	assert.Zero(t, atomic.LoadInt32(&api.completeHit))
	assert.Equal(t, StateErrored, sc.State())
	assert.Empty(t, sc.Messages())
}

func TestRejectsConcurrentTurns(t *testing.T) {
	api := newFakeAPI()
	api.mu = make(chan struct{})
	srv := api.server(t)

	sc := NewSessionController(New(srv.URL))

	firstDone := make(chan error, 1)
	go func() {
		_, err := sc.SendTurn(context.Background(), "first", false)
		firstDone <- err
	}()

	// Wait until the first turn is in flight.
	require.Eventually(t, func() bool {
		return sc.State() != StateIdle
	}, time.Second, 5*time.Millisecond)

	_, err := sc.SendTurn(context.Background(), "second", false)
	assert.True(t, errors.Is(err, ErrTurnInFlight))

	close(api.mu)
	require.NoError(t, <-firstDone)
	assert.Len(t, sc.Messages(), 2)
}

func TestValidationRejectsBeforeNetwork(t *testing.T) {
	api := newFakeAPI()
	srv := api.server(t)

	sc := NewSessionController(New(srv.URL))

	_, err := sc.SendTurn(context.Background(), "   ", false)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.False(t, appErr.Retryable)

	assert.Equal(t, StateIdle, sc.State())
	assert.Empty(t, sc.Messages())
	assert.Zero(t, atomic.LoadInt32(&api.completeHit))
	assert.Zero(t, atomic.LoadInt32(&api.streamHit))
}
