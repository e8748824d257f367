package dto

import "github.com/google/uuid"

// PublishIndexJournalMessage is the payload carried on the in-process bus
// asking the consumer to (re)index a journal's write content.
type PublishIndexJournalMessage struct {
	JournalId uuid.UUID `json:"journal_id"`
}
