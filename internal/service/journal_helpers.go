package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ai-journaling-be/internal/constant"
	"ai-journaling-be/internal/dto"
	"ai-journaling-be/pkg/llm"
)

const (
	titlePreviewMessages = 4
	titlePreviewChars    = 200
)

// conversationPreview builds the short transcript fed to title generation.
func conversationPreview(messages []dto.MessageDTO) string {
	var parts []string
	for _, msg := range messages {
		if len(parts) >= titlePreviewMessages {
			break
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		content = truncateRunes(content, titlePreviewChars)
		parts = append(parts, fmt.Sprintf("%s: %s", msg.Role, content))
	}
	return strings.Join(parts, "\n")
}

func formatTitlePrompt(preview string) string {
	return fmt.Sprintf(constant.TitlePromptTemplate, constant.TitleMaxLength, preview, constant.TitleMaxLength)
}

// sanitizeTitle strips wrapping quotes and truncates to the max length at a
// word boundary.
func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	title = strings.TrimSpace(title)

	if utf8.RuneCountInString(title) > constant.TitleMaxLength {
		truncated := truncateRunes(title, constant.TitleMaxLength)
		if idx := strings.LastIndex(truncated, " "); idx > 0 {
			truncated = truncated[:idx]
		}
		title = strings.TrimSpace(truncated)
	}
	return title
}

// truncateRunes cuts s to at most n runes, never splitting a multi-byte
// sequence.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// deriveWriteTitle takes the first line of a write-mode entry as its title.
func deriveWriteTitle(content string) string {
	line := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		line = content[:idx]
	}
	line = sanitizeTitle(line)
	if line == "" {
		return constant.DefaultJournalTitle
	}
	return line
}

func buildWriteModeMessages(req *dto.AskAIRequest) []llm.Message {
	messages := make([]llm.Message, 0, len(req.ConversationHistory)+2)
	messages = append(messages, llm.Message{Role: constant.MessageRoleSystem, Content: constant.WriteModeSystemPrompt})
	for _, msg := range req.ConversationHistory {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{
		Role:    constant.MessageRoleUser,
		Content: fmt.Sprintf("Here is my journal entry so far:\n\n%s", req.Content),
	})
	return messages
}
