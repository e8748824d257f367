package service

import (
	"context"
	"errors"
	"testing"

	"ai-journaling-be/internal/constant"
	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/pkg/apperrors"
	"ai-journaling-be/internal/repository/contract"
	pkgstore "ai-journaling-be/pkg/store"
	"ai-journaling-be/pkg/tokencount"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatStack struct {
	chat    IChatService
	journal IJournalService
	store   *memoryStore
	llm     *fakeLLM
	embed   *fakeEmbedding
}

func newChatStack(provider *fakeLLM) *chatStack {
	ms := newMemoryStore()
	embedder := &fakeEmbedding{}
	uowf := &fakeUowFactory{store: ms}
	rag := NewRAGService(uowf, embedder, testLogger{}, 5, 0.7, 1000, 50)
	journal := NewJournalService(
		uowf,
		rag,
		provider,
		"gpt-3.5-turbo",
		pkgstore.NewSessionCache(nil),
		&fakePublisher{},
		nil,
		testLogger{},
	)
	chat := NewChatService(
		provider,
		rag,
		journal,
		tokencount.NewCounter("gpt-4o"),
		testLogger{},
		"gpt-4o",
		0.7,
		2000,
		8000,
		10,
	)
	return &chatStack{chat: chat, journal: journal, store: ms, llm: provider, embed: embedder}
}

func (s *chatStack) persistedMessages() []*entity.JournalMessage {
	var out []*entity.JournalMessage
	for _, msgs := range s.store.messages {
		out = append(out, msgs...)
	}
	return out
}

func TestSendMessagePersistsPairedTurn(t *testing.T) {
	stack := newChatStack(&fakeLLM{chatResponse: "Hi there", generateResp: "A Warm Greeting"})

	res, err := stack.chat.SendMessage(context.Background(), &dto.ChatRequest{
		Message:   "Hello",
		SessionId: "session-fresh",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi there", res.Message.Content)
	assert.Equal(t, constant.MessageRoleAssistant, res.Message.Role)
	assert.True(t, res.AutoSaved)

	require.Len(t, stack.store.journals, 1)
	for _, journal := range stack.store.journals {
		assert.Equal(t, "session-fresh", journal.SessionId)
		assert.NotEmpty(t, journal.Title)
	}

	msgs := stack.persistedMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, constant.MessageRoleUser, msgs[0].Role)
	assert.Equal(t, "Hello", msgs[0].Content)
	assert.Equal(t, constant.MessageRoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hi there", msgs[1].Content)
}

func TestSendMessageGrowsSequenceByTwo(t *testing.T) {
	stack := newChatStack(&fakeLLM{chatResponse: "Second reply", generateResp: "Title"})

	history := []dto.MessageDTO{
		{Role: "user", Content: "First question"},
		{Role: "assistant", Content: "First reply"},
	}

	_, err := stack.chat.SendMessage(context.Background(), &dto.ChatRequest{
		Message:             "Second question",
		SessionId:           "session-grow",
		ConversationHistory: history,
	})
	require.NoError(t, err)

	assert.Len(t, stack.persistedMessages(), len(history)+2)
}

func TestSendMessageProviderFailureNoPartialWrites(t *testing.T) {
	stack := newChatStack(&fakeLLM{chatErr: errors.New("connection reset")})

	_, err := stack.chat.SendMessage(context.Background(), &dto.ChatRequest{
		Message:   "Hello",
		SessionId: "session-fail",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 503, appErr.Code)
	assert.True(t, appErr.Retryable)

	assert.Empty(t, stack.store.journals)
	assert.Empty(t, stack.persistedMessages())
}

func TestStreamTokensConcatenateToFullResponse(t *testing.T) {
	stack := newChatStack(&fakeLLM{streamTokens: []string{"AI ", "response"}, generateResp: "Title"})

	var events []dto.StreamEvent
	err := stack.chat.StreamMessage(context.Background(), &dto.ChatRequest{
		Message:   "Hello",
		SessionId: "session-stream",
	}, func(event dto.StreamEvent) error {
		events = append(events, event)
		return nil
	})
	require.NoError(t, err)

	require.NotEmpty(t, events)
	var accumulated string
	for _, event := range events[:len(events)-1] {
		require.Equal(t, constant.StreamEventToken, event.Type)
		accumulated += event.Data["content"].(string)
	}

	done := events[len(events)-1]
	require.Equal(t, constant.StreamEventDone, done.Type)
	assistant := done.Data["message"].(dto.MessageDTO)
	assert.Equal(t, "AI response", assistant.Content)
	assert.Equal(t, accumulated, assistant.Content)
	assert.Equal(t, true, done.Data["auto_saved"])
}

func TestStreamAndCompleteProduceIdenticalContent(t *testing.T) {
	text := "The same answer either way."

	completeStack := newChatStack(&fakeLLM{chatResponse: text, generateResp: "Title"})
	res, err := completeStack.chat.SendMessage(context.Background(), &dto.ChatRequest{
		Message:   "Hello",
		SessionId: "s1",
	})
	require.NoError(t, err)

	streamStack := newChatStack(&fakeLLM{streamTokens: []string{"The same ", "answer ", "either way."}, generateResp: "Title"})
	var streamed string
	err = streamStack.chat.StreamMessage(context.Background(), &dto.ChatRequest{
		Message:   "Hello",
		SessionId: "s2",
	}, func(event dto.StreamEvent) error {
		if event.Type == constant.StreamEventToken {
			streamed += event.Data["content"].(string)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, res.Message.Content, streamed)
}

func TestStreamEmitsContextEventBeforeTokens(t *testing.T) {
	stack := newChatStack(&fakeLLM{streamTokens: []string{"ok"}, generateResp: "Title"})

	journalId := uuid.New()
	stack.store.journals[journalId] = &entity.Journal{Id: journalId, SessionId: "other"}
	stack.store.searchResults = []*contract.ScoredJournalEmbedding{
		scoredChunk(journalId, "previously journaled thought", 0.9),
	}

	var types []string
	err := stack.chat.StreamMessage(context.Background(), &dto.ChatRequest{
		Message:   "Hello",
		SessionId: "session-ctx",
	}, func(event dto.StreamEvent) error {
		types = append(types, event.Type)
		return nil
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(types), 3)
	assert.Equal(t, constant.StreamEventContext, types[0])
	assert.Equal(t, constant.StreamEventToken, types[1])
	assert.Equal(t, constant.StreamEventDone, types[len(types)-1])
}

func TestStreamProviderFailureEmitsErrorAndSkipsPersistence(t *testing.T) {
	stack := newChatStack(&fakeLLM{streamErr: errors.New("provider dropped")})

	var events []dto.StreamEvent
	err := stack.chat.StreamMessage(context.Background(), &dto.ChatRequest{
		Message:   "Hello",
		SessionId: "session-err",
	}, func(event dto.StreamEvent) error {
		events = append(events, event)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, constant.StreamEventError, events[0].Type)
	assert.Equal(t, true, events[0].Data["retryable"])

	assert.Empty(t, stack.store.journals)
	assert.Empty(t, stack.persistedMessages())
}

func TestStreamPersistsBeforeDoneEvent(t *testing.T) {
	stack := newChatStack(&fakeLLM{streamTokens: []string{"reply"}, generateResp: "Title"})

	err := stack.chat.StreamMessage(context.Background(), &dto.ChatRequest{
		Message:   "Hello",
		SessionId: "session-order",
	}, func(event dto.StreamEvent) error {
		if event.Type == constant.StreamEventDone {
			assert.Len(t, stack.store.journals, 1)
			assert.Len(t, stack.persistedMessages(), 2)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestSendMessageSkipsRetrievalWhenDisabled(t *testing.T) {
	stack := newChatStack(&fakeLLM{chatResponse: "reply", generateResp: "Title"})
	useRAG := false

	res, err := stack.chat.SendMessage(context.Background(), &dto.ChatRequest{
		Message:   "Hello",
		SessionId: "session-norag",
		UseRAG:    &useRAG,
	})
	require.NoError(t, err)

	assert.Empty(t, res.RetrievedContext)
	// One embedding call per indexed chunk happens during auto-save; the
	// query itself must not be embedded.
	assert.Equal(t, 1, stack.embed.calls)
}
