package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JournalMessage struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	JournalId uuid.UUID         `gorm:"type:uuid;not null;index"`
	Role      string            `gorm:"type:text;not null"`
	Content   string            `gorm:"type:text;not null"`
	Sequence  int               `gorm:"not null;default:0"` // insertion order within the journal
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
}

func (JournalMessage) TableName() string {
	return "journal_messages"
}
