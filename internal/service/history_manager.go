package service

import (
	"context"
	"fmt"
	"strings"

	"ai-journaling-be/internal/constant"
	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/pkg/logger"
	"ai-journaling-be/pkg/llm"
	"ai-journaling-be/pkg/tokencount"
)

// historyManager keeps the prompt within the model's context budget. When a
// conversation grows past maxContextTokens, older turns are compressed into
// a summary and only the most recent turns are sent verbatim.
type historyManager struct {
	counter          *tokencount.Counter
	llmProvider      llm.LLMProvider
	logger           logger.ILogger
	maxContextTokens int
	recentToKeep     int
}

func newHistoryManager(
	counter *tokencount.Counter,
	llmProvider llm.LLMProvider,
	log logger.ILogger,
	maxContextTokens int,
	recentToKeep int,
) *historyManager {
	return &historyManager{
		counter:          counter,
		llmProvider:      llmProvider,
		logger:           log,
		maxContextTokens: maxContextTokens,
		recentToKeep:     recentToKeep,
	}
}

// Build assembles the message list for a chat turn: system prompt, managed
// history, then the new user message.
func (hm *historyManager) Build(ctx context.Context, systemPrompt string, history []dto.MessageDTO, userMessage string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: constant.MessageRoleSystem, Content: systemPrompt})
	for _, msg := range history {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: constant.MessageRoleUser, Content: userMessage})

	if hm.counter.CountMessagesTokens(messages) <= hm.maxContextTokens {
		return messages
	}

	return hm.compress(ctx, systemPrompt, history, userMessage)
}

func (hm *historyManager) compress(ctx context.Context, systemPrompt string, history []dto.MessageDTO, userMessage string) []llm.Message {
	recent := history
	var older []dto.MessageDTO
	if len(history) > hm.recentToKeep {
		older = history[:len(history)-hm.recentToKeep]
		recent = history[len(history)-hm.recentToKeep:]
	}

	var summaryMsg *llm.Message
	if len(older) > 0 {
		summary, err := hm.summarize(ctx, older)
		if err != nil {
			hm.logger.Warn("HistoryManager", "summarization failed, falling back to recent messages only", map[string]interface{}{"error": err.Error()})
			// Keep the turn alive with a hard cut of the oldest context.
			if len(history) > constant.HistoryFallbackMessages {
				recent = history[len(history)-constant.HistoryFallbackMessages:]
			}
		} else {
			summaryMsg = &llm.Message{
				Role:    constant.MessageRoleSystem,
				Content: fmt.Sprintf("Previous conversation summary: %s", summary),
			}
		}
	}

	messages := make([]llm.Message, 0, len(recent)+3)
	messages = append(messages, llm.Message{Role: constant.MessageRoleSystem, Content: systemPrompt})
	if summaryMsg != nil {
		messages = append(messages, *summaryMsg)
	}
	for _, msg := range recent {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: constant.MessageRoleUser, Content: userMessage})
	return messages
}

func (hm *historyManager) summarize(ctx context.Context, older []dto.MessageDTO) (string, error) {
	var transcript strings.Builder
	for _, msg := range older {
		transcript.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}

	summary, err := hm.llmProvider.Chat(ctx,
		[]llm.Message{
			{Role: constant.MessageRoleSystem, Content: constant.SummarySystemPrompt},
			{Role: constant.MessageRoleUser, Content: transcript.String()},
		},
		llm.WithTemperature(constant.SummaryTemperature),
		llm.WithMaxTokens(constant.SummaryMaxTokens),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}
