package unitofwork

import (
	"context"

	"ai-journaling-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	JournalRepository() contract.JournalRepository
	JournalMessageRepository() contract.JournalMessageRepository
	JournalEmbeddingRepository() contract.JournalEmbeddingRepository
}
