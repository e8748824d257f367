package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-journaling-be/internal/constant"
	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/pkg/logger"
	"ai-journaling-be/internal/repository/unitofwork"
	"ai-journaling-be/pkg/embedding"
	"ai-journaling-be/pkg/utils"

	"github.com/google/uuid"
)

// retrievalTimeout caps how long a single retrieval may delay a chat turn.
const retrievalTimeout = 3 * time.Second

// IRAGService indexes journal content and retrieves relevant chunks for
// chat turns.
type IRAGService interface {
	// RetrieveContext returns chunks relevant to the query, ordered by
	// descending similarity. Retrieval is best-effort: any failure is
	// logged and an empty slice is returned, never an error.
	RetrieveContext(ctx context.Context, query string) []dto.RetrievedContextDTO

	// IndexConversation replaces a journal's conversation embeddings with
	// freshly generated ones. Chunks are user/assistant exchange pairs.
	IndexConversation(ctx context.Context, journalId uuid.UUID, sessionId string, messages []dto.MessageDTO) error

	// IndexWriteContent replaces a journal's embeddings with chunks derived
	// from its free-form write content.
	IndexWriteContent(ctx context.Context, journalId uuid.UUID, sessionId string, title string, content string) error
}

type ragService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
	topK              int
	threshold         float64
	chunkSize         int
	chunkOverlap      int
}

func NewRAGService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
	topK int,
	threshold float64,
	chunkSize int,
	chunkOverlap int,
) IRAGService {
	return &ragService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
		topK:              topK,
		threshold:         threshold,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (rs *ragService) RetrieveContext(ctx context.Context, query string) []dto.RetrievedContextDTO {
	if strings.TrimSpace(query) == "" {
		return []dto.RetrievedContextDTO{}
	}

	ctx, cancel := context.WithTimeout(ctx, retrievalTimeout)
	defer cancel()

	queryVector, err := rs.embeddingProvider.Generate(ctx, query)
	if err != nil {
		rs.logger.Warn("RAGService", "query embedding failed, continuing without context", map[string]interface{}{"error": err.Error()})
		return []dto.RetrievedContextDTO{}
	}

	uow := rs.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.JournalEmbeddingRepository().SearchSimilarWithScore(ctx, queryVector, rs.topK)
	if err != nil {
		rs.logger.Warn("RAGService", "similarity search failed, continuing without context", map[string]interface{}{"error": err.Error()})
		return []dto.RetrievedContextDTO{}
	}

	results := make([]dto.RetrievedContextDTO, 0, len(scored))
	for _, s := range scored {
		if s == nil || s.Embedding == nil {
			continue
		}
		if s.Similarity < rs.threshold {
			continue
		}

		metadata := map[string]interface{}{
			"journal_id":  s.Embedding.JournalId.String(),
			"session_id":  s.Embedding.SessionId,
			"chunk_index": s.Embedding.ChunkIndex,
		}
		for k, v := range s.Embedding.Metadata {
			metadata[k] = v
		}

		results = append(results, dto.RetrievedContextDTO{
			Content:         s.Embedding.Document,
			Metadata:        metadata,
			SimilarityScore: s.Similarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	return results
}

func (rs *ragService) IndexConversation(ctx context.Context, journalId uuid.UUID, sessionId string, messages []dto.MessageDTO) error {
	documents := rs.pairMessages(messages)

	var chunks []string
	for _, doc := range documents {
		if len(doc) > rs.chunkSize {
			chunks = append(chunks, utils.SplitText(doc, rs.chunkSize, rs.chunkOverlap)...)
		} else {
			chunks = append(chunks, doc)
		}
	}

	metadata := map[string]interface{}{"source": "conversation"}
	return rs.replaceEmbeddings(ctx, journalId, sessionId, chunks, metadata)
}

func (rs *ragService) IndexWriteContent(ctx context.Context, journalId uuid.UUID, sessionId string, title string, content string) error {
	chunks := utils.SplitParagraphs(content, rs.chunkSize)

	metadata := map[string]interface{}{
		"source": "write",
		"title":  title,
	}
	return rs.replaceEmbeddings(ctx, journalId, sessionId, chunks, metadata)
}

// pairMessages joins each user message with the assistant reply that follows
// it. A user message with no reply yet is skipped; it gets indexed on the
// next save once the exchange is complete.
func (rs *ragService) pairMessages(messages []dto.MessageDTO) []string {
	var documents []string
	for i := 0; i < len(messages); i++ {
		if messages[i].Role != constant.MessageRoleUser {
			continue
		}
		if i+1 < len(messages) && messages[i+1].Role == constant.MessageRoleAssistant {
			documents = append(documents, fmt.Sprintf("User: %s\n\nAssistant: %s", messages[i].Content, messages[i+1].Content))
			i++
		}
	}
	return documents
}

// replaceEmbeddings swaps the journal's chunk set atomically so a failed
// re-index never leaves a mix of old and new chunks.
func (rs *ragService) replaceEmbeddings(ctx context.Context, journalId uuid.UUID, sessionId string, chunks []string, metadata map[string]interface{}) error {
	newEmbeddings := make([]*entity.JournalEmbedding, 0, len(chunks))
	now := time.Now()

	for i, chunk := range chunks {
		vector, err := rs.embeddingProvider.Generate(ctx, chunk)
		if err != nil {
			return fmt.Errorf("generate embedding for chunk %d: %w", i, err)
		}
		newEmbeddings = append(newEmbeddings, &entity.JournalEmbedding{
			Id:             uuid.New(),
			JournalId:      journalId,
			SessionId:      sessionId,
			Document:       chunk,
			EmbeddingValue: vector,
			ChunkIndex:     i,
			Metadata:       metadata,
			CreatedAt:      now,
		})
	}

	uow := rs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.JournalEmbeddingRepository().DeleteByJournalId(ctx, journalId); err != nil {
		return fmt.Errorf("delete stale embeddings: %w", err)
	}
	if len(newEmbeddings) > 0 {
		if err := uow.JournalEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			return fmt.Errorf("store embeddings: %w", err)
		}
	}

	return uow.Commit()
}
