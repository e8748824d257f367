package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := SplitText(text, 100, 20)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
	}
	// Consecutive chunks share the overlap region.
	assert.Equal(t, chunks[0][80:], chunks[1][:20])
}

func TestSplitParagraphsKeepsShortParagraphsWhole(t *testing.T) {
	content := "First paragraph.\n\nSecond paragraph.\n\n\n\nThird."
	chunks := SplitParagraphs(content, 1000)

	assert.Equal(t, []string{"First paragraph.", "Second paragraph.", "Third."}, chunks)
}

func TestSplitParagraphsBreaksOversizedParagraphOnSentences(t *testing.T) {
	sentence := "This sentence is about forty characters. "
	paragraph := strings.TrimSpace(strings.Repeat(sentence, 6))

	chunks := SplitParagraphs(paragraph, 100)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
		assert.True(t, strings.HasSuffix(chunk, "."))
	}
}

func TestSplitParagraphsEmptyInput(t *testing.T) {
	assert.Nil(t, SplitParagraphs("   \n\n  ", 1000))
	assert.Nil(t, SplitParagraphs("", 1000))
}
