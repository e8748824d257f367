package mapper

import (
	"time"

	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JournalEmbeddingMapper struct{}

func NewJournalEmbeddingMapper() *JournalEmbeddingMapper {
	return &JournalEmbeddingMapper{}
}

func (m *JournalEmbeddingMapper) ToEntity(e *model.JournalEmbedding) *entity.JournalEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.JournalEmbedding{
		Id:             e.Id,
		JournalId:      e.JournalId,
		SessionId:      e.SessionId,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		ChunkIndex:     e.ChunkIndex,
		Metadata:       map[string]interface{}(e.Metadata),
		CreatedAt:      e.CreatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *JournalEmbeddingMapper) ToModel(e *entity.JournalEmbedding) *model.JournalEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.JournalEmbedding{
		Id:             e.Id,
		JournalId:      e.JournalId,
		SessionId:      e.SessionId,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		ChunkIndex:     e.ChunkIndex,
		Metadata:       datatypes.JSONMap(e.Metadata),
		CreatedAt:      e.CreatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *JournalEmbeddingMapper) ToEntities(embeddings []*model.JournalEmbedding) []*entity.JournalEmbedding {
	entities := make([]*entity.JournalEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *JournalEmbeddingMapper) ToModels(embeddings []*entity.JournalEmbedding) []*model.JournalEmbedding {
	models := make([]*model.JournalEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
