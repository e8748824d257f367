package constant

// Title generation runs on the cheaper model with low creativity.
const (
	TitleMaxLength   = 50
	TitleMaxTokens   = 20
	TitleTemperature = 0.3
)

// Summarization parameters for compacting older conversation turns.
const (
	SummaryTemperature = 0.3
	SummaryMaxTokens   = 300
)

// HistoryFallbackMessages is how many recent turns survive when
// summarization itself fails.
const HistoryFallbackMessages = 5
