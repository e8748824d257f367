package tokencount

import (
	"github.com/pkoukk/tiktoken-go"

	"ai-journaling-be/pkg/llm"
)

// messageOverhead approximates the per-message formatting tokens the OpenAI
// chat API adds around role/content.
const messageOverhead = 4

// Counter counts tokens for LLM context management using the model's
// tiktoken encoding, falling back to a character heuristic when the model
// is unknown to tiktoken (e.g. local Ollama models).
type Counter struct {
	encoding *tiktoken.Tiktoken
}

func NewCounter(model string) *Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// cl100k_base covers the gpt-3.5/gpt-4 family and is a reasonable
		// approximation for anything else.
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			enc = nil
		}
	}
	return &Counter{encoding: enc}
}

func (c *Counter) CountTokens(text string) int {
	if c.encoding == nil {
		// Rough heuristic: one token per four characters.
		return (len(text) + 3) / 4
	}
	return len(c.encoding.Encode(text, nil, nil))
}

func (c *Counter) CountMessageTokens(msg llm.Message) int {
	return c.CountTokens(msg.Role) + c.CountTokens(msg.Content) + messageOverhead
}

func (c *Counter) CountMessagesTokens(messages []llm.Message) int {
	total := 0
	for _, msg := range messages {
		total += c.CountMessageTokens(msg)
	}
	return total
}
