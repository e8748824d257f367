package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID filters journals by the client-held correlation token.
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByJournalID filters messages and embeddings by their owning journal.
type ByJournalID struct {
	JournalID uuid.UUID
}

func (s ByJournalID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("journal_id = ?", s.JournalID)
}

// ByMode filters journals by chat/write mode.
type ByMode struct {
	Mode string
}

func (s ByMode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("mode = ?", s.Mode)
}
