package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"ai-journaling-be/internal/constant"
	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// State is the session controller's current position in its turn lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateSending          State = "sending"
	StateStreaming        State = "streaming"
	StateAwaitingComplete State = "awaiting_complete"
	StateErrored          State = "errored"
)

// ErrTurnInFlight is returned when SendTurn is called while a previous turn
// has not reached a terminal state. Turns are never queued.
var ErrTurnInFlight = errors.New("a turn is already in flight for this session")

// TurnResult is what a completed turn hands back to the caller.
type TurnResult struct {
	Assistant dto.MessageDTO
	Retrieved []dto.RetrievedContextDTO
	JournalId string
	AutoSaved bool
	// Streamed reports whether the response arrived over the streaming
	// path or the non-streaming fallback.
	Streamed bool
}

type SessionOption func(*SessionController)

// WithOnNewJournal registers a callback fired once, after the first turn
// that persists a brand-new journal for this session. Listing views use it
// to refresh.
func WithOnNewJournal(fn func(journalId string)) SessionOption {
	return func(sc *SessionController) { sc.onNewJournal = fn }
}

// WithOnToken registers a callback invoked for every streamed fragment in
// emission order.
func WithOnToken(fn func(token string)) SessionOption {
	return func(sc *SessionController) { sc.onToken = fn }
}

// SessionController drives conversational turns against the API and owns
// the client-visible message sequence. At most one turn is in flight; the
// message list always ends with a matched user/assistant pair between turns.
type SessionController struct {
	client    *Client
	sessionId string

	mu        sync.Mutex
	state     State
	journalId string
	messages  []dto.MessageDTO
	lastErr   error

	onNewJournal func(journalId string)
	onToken      func(token string)
}

func NewSessionController(client *Client, opts ...SessionOption) *SessionController {
	sc := &SessionController{
		client:    client,
		sessionId: uuid.New().String(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

func (sc *SessionController) SessionId() string {
	return sc.sessionId
}

func (sc *SessionController) State() State {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.state
}

func (sc *SessionController) JournalId() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.journalId
}

// Messages returns a copy of the client-visible message sequence.
func (sc *SessionController) Messages() []dto.MessageDTO {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	out := make([]dto.MessageDTO, len(sc.messages))
	copy(out, sc.messages)
	return out
}

func (sc *SessionController) Err() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.lastErr
}

// Dismiss clears an errored state back to idle.
func (sc *SessionController) Dismiss() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.state == StateErrored {
		sc.state = StateIdle
		sc.lastErr = nil
	}
}

// SendTurn runs one full turn: optimistic append, remote call (streaming
// with a single non-streaming fallback when preferStreaming is set), then
// append of the assistant reply. On unrecoverable failure the optimistic
// user message is rolled back and the controller lands in StateErrored.
func (sc *SessionController) SendTurn(ctx context.Context, text string, preferStreaming bool) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("message must not be empty")
	}
	if len(text) > constant.MaxMessageLength {
		return nil, apperrors.NewValidationError("message exceeds maximum length")
	}

	history, err := sc.beginTurn(text)
	if err != nil {
		return nil, err
	}

	req := &dto.ChatRequest{
		Message:             text,
		SessionId:           sc.sessionId,
		ConversationHistory: history,
	}

	result, err := sc.runTurn(ctx, req, preferStreaming)
	if err != nil {
		sc.failTurn(err)
		return nil, err
	}

	sc.completeTurn(result)
	return result, nil
}

// beginTurn transitions Idle (or Errored, counting as retry) to Sending and
// optimistically appends the user message. Returns the pre-turn history.
func (sc *SessionController) beginTurn(text string) ([]dto.MessageDTO, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.state != StateIdle && sc.state != StateErrored {
		return nil, ErrTurnInFlight
	}
	sc.state = StateSending
	sc.lastErr = nil

	history := make([]dto.MessageDTO, len(sc.messages))
	copy(history, sc.messages)

	sc.messages = append(sc.messages, dto.MessageDTO{
		Id:        uuid.New().String(),
		Role:      constant.MessageRoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})

	return history, nil
}

func (sc *SessionController) runTurn(ctx context.Context, req *dto.ChatRequest, preferStreaming bool) (*TurnResult, error) {
	if preferStreaming {
		sc.setState(StateStreaming)
		result, terminal, err := sc.streamOnce(ctx, req)
		if err == nil {
			return result, nil
		}
		if terminal {
			// The server delivered a terminal error event; the turn is
			// decided and the fallback must not re-run it.
			return nil, err
		}
		// Transport failed before a terminal event: one fallback attempt
		// through the non-streaming path.
	}

	sc.setState(StateAwaitingComplete)
	res, err := sc.client.SendMessage(ctx, req)
	if err != nil {
		return nil, err
	}

	journalId, _ := res.Metadata["journal_id"].(string)
	return &TurnResult{
		Assistant: res.Message,
		Retrieved: res.RetrievedContext,
		JournalId: journalId,
		AutoSaved: res.AutoSaved,
	}, nil
}

// streamOnce consumes one streaming turn. terminal reports whether the
// stream reached a done or error event; a false terminal with a non-nil
// error means the transport dropped mid-stream.
func (sc *SessionController) streamOnce(ctx context.Context, req *dto.ChatRequest) (*TurnResult, bool, error) {
	var (
		content   strings.Builder
		retrieved []dto.RetrievedContextDTO
		result    *TurnResult
		streamErr error
	)

	err := sc.client.StreamMessage(ctx, req, func(event dto.StreamEvent) error {
		switch event.Type {
		case constant.StreamEventContext:
			retrieved = decodeRetrieved(event.Data["retrieved_context"])

		case constant.StreamEventToken:
			fragment, _ := event.Data["content"].(string)
			content.WriteString(fragment)
			if sc.onToken != nil {
				sc.onToken(fragment)
			}

		case constant.StreamEventDone:
			assistant := decodeMessage(event.Data["message"])
			if assistant.Content == "" {
				assistant.Content = content.String()
			}
			journalId, _ := event.Data["journal_id"].(string)
			autoSaved, _ := event.Data["auto_saved"].(bool)
			result = &TurnResult{
				Assistant: assistant,
				Retrieved: retrieved,
				JournalId: journalId,
				AutoSaved: autoSaved,
				Streamed:  true,
			}

		case constant.StreamEventError:
			message, _ := event.Data["message"].(string)
			retryable, _ := event.Data["retryable"].(bool)
			streamErr = &apperrors.AppError{
				Code:      503,
				Message:   message,
				Retryable: retryable,
			}
		}
		return nil
	})

	if streamErr != nil {
		return nil, true, streamErr
	}
	if err != nil {
		return nil, false, err
	}
	if result == nil {
		// Stream ended without a terminal event.
		return nil, false, errors.New("stream ended before terminal event")
	}
	return result, true, nil
}

func (sc *SessionController) completeTurn(result *TurnResult) {
	sc.mu.Lock()
	assistant := result.Assistant
	if assistant.Id == "" {
		assistant.Id = uuid.New().String()
	}
	sc.messages = append(sc.messages, assistant)

	firstJournal := sc.journalId == "" && result.JournalId != ""
	if result.JournalId != "" {
		sc.journalId = result.JournalId
	}
	sc.state = StateIdle
	onNewJournal := sc.onNewJournal
	sc.mu.Unlock()

	if firstJournal && onNewJournal != nil {
		onNewJournal(result.JournalId)
	}
}

// failTurn rolls back the optimistic user message so the visible sequence
// returns to its pre-turn state.
func (sc *SessionController) failTurn(err error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if n := len(sc.messages); n > 0 && sc.messages[n-1].Role == constant.MessageRoleUser {
		sc.messages = sc.messages[:n-1]
	}
	sc.state = StateErrored
	sc.lastErr = err
}

func (sc *SessionController) setState(s State) {
	sc.mu.Lock()
	sc.state = s
	sc.mu.Unlock()
}

func decodeRetrieved(raw interface{}) []dto.RetrievedContextDTO {
	if raw == nil {
		return nil
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var chunks []dto.RetrievedContextDTO
	if err := json.Unmarshal(payload, &chunks); err != nil {
		return nil
	}
	return chunks
}

func decodeMessage(raw interface{}) dto.MessageDTO {
	var msg dto.MessageDTO
	if raw == nil {
		return msg
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return msg
	}
	_ = json.Unmarshal(payload, &msg)
	if msg.Role == "" {
		msg.Role = constant.MessageRoleAssistant
	}
	return msg
}
