package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "JOURNAL_SAVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Journal lifecycle events published to NATS for external consumers.

func NewJournalSavedEvent(journalID, sessionID, title string, messageCount int) Event {
	return BaseEvent{
		Type: "JOURNAL_SAVED",
		Data: map[string]interface{}{
			"journal_id":    journalID,
			"session_id":    sessionID,
			"title":         title,
			"message_count": messageCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewJournalDeletedEvent(journalID string) Event {
	return BaseEvent{
		Type: "JOURNAL_DELETED",
		Data: map[string]interface{}{
			"journal_id": journalID,
		},
		OccurredAt: time.Now(),
	}
}
