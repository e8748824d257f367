package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ai-journaling-be/internal/constant"
	"ai-journaling-be/internal/dto"
	"ai-journaling-be/pkg/tokencount"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longHistory(n int) []dto.MessageDTO {
	history := make([]dto.MessageDTO, 0, n)
	for i := 0; i < n; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, dto.MessageDTO{
			Role:    role,
			Content: fmt.Sprintf("message %d with some padding text to accumulate tokens", i),
		})
	}
	return history
}

func TestHistoryWithinBudgetPassesThrough(t *testing.T) {
	provider := &fakeLLM{}
	hm := newHistoryManager(tokencount.NewCounter("gpt-4o"), provider, testLogger{}, 1_000_000, 10)

	history := longHistory(6)
	messages := hm.Build(context.Background(), "system prompt", history, "new question")

	require.Len(t, messages, len(history)+2)
	assert.Equal(t, constant.MessageRoleSystem, messages[0].Role)
	assert.Equal(t, "new question", messages[len(messages)-1].Content)
	// No summarization call was made.
	assert.Empty(t, provider.chatCalls)
}

func TestHistoryOverBudgetSummarizesOlderTurns(t *testing.T) {
	provider := &fakeLLM{chatResponse: "They discussed work stress and a hiking trip."}
	hm := newHistoryManager(tokencount.NewCounter("gpt-4o"), provider, testLogger{}, 10, 4)

	history := longHistory(20)
	messages := hm.Build(context.Background(), "system prompt", history, "new question")

	// system + summary + 4 recent + user
	require.Len(t, messages, 7)
	assert.Contains(t, messages[1].Content, "Previous conversation summary:")
	assert.Contains(t, messages[1].Content, "hiking trip")
	assert.Equal(t, history[16].Content, messages[2].Content)
	assert.Equal(t, "new question", messages[6].Content)

	// The summarization request carried the older turns.
	require.Len(t, provider.chatCalls, 1)
	summaryPrompt := provider.chatCalls[0]
	assert.True(t, strings.Contains(summaryPrompt[1].Content, "message 0"))
	assert.False(t, strings.Contains(summaryPrompt[1].Content, "message 19"))
}

func TestHistorySummarizationFailureFallsBack(t *testing.T) {
	provider := &fakeLLM{chatErr: errors.New("provider down")}
	hm := newHistoryManager(tokencount.NewCounter("gpt-4o"), provider, testLogger{}, 10, 4)

	history := longHistory(20)
	messages := hm.Build(context.Background(), "system prompt", history, "new question")

	// system + last 5 turns + user, no summary message
	require.Len(t, messages, constant.HistoryFallbackMessages+2)
	for _, msg := range messages {
		assert.NotContains(t, msg.Content, "Previous conversation summary:")
	}
	assert.Equal(t, history[len(history)-constant.HistoryFallbackMessages].Content, messages[1].Content)
}
