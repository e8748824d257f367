package contract

import (
	"context"

	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/repository/specification"

	"github.com/google/uuid"
)

type JournalMessageRepository interface {
	Create(ctx context.Context, message *entity.JournalMessage) error
	CreateBulk(ctx context.Context, messages []*entity.JournalMessage) error
	DeleteByJournalId(ctx context.Context, journalId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JournalMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
