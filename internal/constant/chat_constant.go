package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

const (
	JournalModeChat  = "chat"
	JournalModeWrite = "write"
)

// Stream event types emitted on /chat/stream and /journals/ask-ai/stream.
const (
	StreamEventContext = "context"
	StreamEventToken   = "token"
	StreamEventDone    = "done"
	StreamEventError   = "error"
)

const MaxMessageLength = 10000

const DefaultJournalTitle = "Untitled Conversation"
