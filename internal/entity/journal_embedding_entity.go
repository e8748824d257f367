package entity

import (
	"time"

	"github.com/google/uuid"
)

type JournalEmbedding struct {
	Id             uuid.UUID
	JournalId      uuid.UUID
	SessionId      string
	Document       string
	EmbeddingValue []float32
	ChunkIndex     int
	Metadata       map[string]interface{}
	CreatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
