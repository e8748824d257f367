package implementation

import (
	"context"

	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/mapper"
	"ai-journaling-be/internal/model"
	"ai-journaling-be/internal/repository/contract"
	"ai-journaling-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type JournalEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JournalEmbeddingMapper
}

func NewJournalEmbeddingRepository(db *gorm.DB) contract.JournalEmbeddingRepository {
	return &JournalEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewJournalEmbeddingMapper(),
	}
}

func (r *JournalEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *JournalEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.JournalEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *JournalEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.JournalEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := r.mapper.ToModels(embeddings)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *JournalEmbeddingRepositoryImpl) DeleteByJournalId(ctx context.Context, journalId uuid.UUID) error {
	// Hard delete: superseded chunks must not linger as soft-deleted rows,
	// re-indexing would otherwise accumulate them forever.
	return r.db.WithContext(ctx).Unscoped().
		Where("journal_id = ?", journalId).
		Delete(&model.JournalEmbedding{}).Error
}

func (r *JournalEmbeddingRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("session_id = ?", sessionId).
		Delete(&model.JournalEmbedding{}).Error
}

func (r *JournalEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JournalEmbedding, error) {
	var models []*model.JournalEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *JournalEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.JournalEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns the closest chunks by cosine similarity.
// Cosine distance in pgvector is 1 - cosine_similarity, so similarity is
// computed as 1 - (embedding_value <=> query_vector).
func (r *JournalEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredJournalEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.JournalEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("journal_embeddings").
		Select("journal_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN journals ON journals.id = journal_embeddings.journal_id").
		Where("journal_embeddings.deleted_at IS NULL").
		Where("journals.deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredJournalEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredJournalEmbedding{
			Embedding:  r.mapper.ToEntity(&res.JournalEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
