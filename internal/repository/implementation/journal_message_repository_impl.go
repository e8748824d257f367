package implementation

import (
	"context"

	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/mapper"
	"ai-journaling-be/internal/model"
	"ai-journaling-be/internal/repository/contract"
	"ai-journaling-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JournalMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JournalMessageMapper
}

func NewJournalMessageRepository(db *gorm.DB) contract.JournalMessageRepository {
	return &JournalMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewJournalMessageMapper(),
	}
}

func (r *JournalMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *JournalMessageRepositoryImpl) Create(ctx context.Context, message *entity.JournalMessage) error {
	m := r.mapper.ToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ToEntity(m)
	return nil
}

func (r *JournalMessageRepositoryImpl) CreateBulk(ctx context.Context, messages []*entity.JournalMessage) error {
	if len(messages) == 0 {
		return nil
	}
	models := r.mapper.ToModels(messages)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*messages[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *JournalMessageRepositoryImpl) DeleteByJournalId(ctx context.Context, journalId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("journal_id = ?", journalId).Delete(&model.JournalMessage{}).Error
}

func (r *JournalMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JournalMessage, error) {
	var models []*model.JournalMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *JournalMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.JournalMessage{}).Count(&count).Error
	return count, err
}
