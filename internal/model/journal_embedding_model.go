package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JournalEmbedding struct {
	Id             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JournalId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	SessionId      string            `gorm:"type:text;index"`
	Document       string            `gorm:"type:text"`
	EmbeddingValue pgvector.Vector   `gorm:"type:vector(1536)"` // text-embedding-3-small uses 1536 dimensions
	ChunkIndex     int               `gorm:"default:0"`         // 0-based index for ordering
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt    `gorm:"index"`
}

func (JournalEmbedding) TableName() string {
	return "journal_embeddings"
}
