package contract

import (
	"context"

	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredJournalEmbedding wraps JournalEmbedding with its similarity score
type ScoredJournalEmbedding struct {
	Embedding  *entity.JournalEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type JournalEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.JournalEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.JournalEmbedding) error
	DeleteByJournalId(ctx context.Context, journalId uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JournalEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns the top candidates ordered by cosine
	// similarity. Threshold filtering happens in the RAG service so callers
	// can reason about the raw candidate set.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredJournalEmbedding, error)
}
