package entity

import (
	"time"

	"github.com/google/uuid"
)

// JournalMessage is immutable once created; ordering is insertion order
// (created_at plus sequence within a save batch).
type JournalMessage struct {
	Id        uuid.UUID
	JournalId uuid.UUID
	Role      string
	Content   string
	Sequence  int
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
