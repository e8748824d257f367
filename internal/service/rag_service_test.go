package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredChunk(journalId uuid.UUID, content string, score float64) *contract.ScoredJournalEmbedding {
	return &contract.ScoredJournalEmbedding{
		Embedding: &entity.JournalEmbedding{
			Id:        uuid.New(),
			JournalId: journalId,
			SessionId: "sess",
			Document:  content,
			CreatedAt: time.Now(),
		},
		Similarity: score,
	}
}

func newTestRAGService(store *memoryStore, embedder *fakeEmbedding, threshold float64) IRAGService {
	return NewRAGService(&fakeUowFactory{store: store}, embedder, testLogger{}, 5, threshold, 1000, 50)
}

func TestRetrieveContextOrderingAndThreshold(t *testing.T) {
	store := newMemoryStore()
	journalId := uuid.New()
	store.journals[journalId] = &entity.Journal{Id: journalId, SessionId: "sess"}
	store.searchResults = []*contract.ScoredJournalEmbedding{
		scoredChunk(journalId, "first", 0.9),
		scoredChunk(journalId, "second", 0.75),
		scoredChunk(journalId, "third", 0.6),
		scoredChunk(journalId, "fourth", 0.95),
	}

	rag := newTestRAGService(store, &fakeEmbedding{}, 0.7)
	results := rag.RetrieveContext(context.Background(), "query")

	require.Len(t, results, 3)
	assert.Equal(t, 0.95, results[0].SimilarityScore)
	assert.Equal(t, 0.9, results[1].SimilarityScore)
	assert.Equal(t, 0.75, results[2].SimilarityScore)
	for _, chunk := range results {
		assert.GreaterOrEqual(t, chunk.SimilarityScore, 0.7)
	}
}

func TestRetrieveContextImpossibleThreshold(t *testing.T) {
	store := newMemoryStore()
	journalId := uuid.New()
	store.journals[journalId] = &entity.Journal{Id: journalId}
	store.searchResults = []*contract.ScoredJournalEmbedding{
		scoredChunk(journalId, "exact match", 1.0),
	}

	rag := newTestRAGService(store, &fakeEmbedding{}, 1.01)
	results := rag.RetrieveContext(context.Background(), "query")

	assert.Empty(t, results)
}

func TestRetrieveContextEmbeddingFailureDegrades(t *testing.T) {
	store := newMemoryStore()
	rag := newTestRAGService(store, &fakeEmbedding{err: errors.New("provider down")}, 0.7)

	results := rag.RetrieveContext(context.Background(), "query")

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRetrieveContextSearchFailureDegrades(t *testing.T) {
	store := newMemoryStore()
	store.searchErr = errors.New("db down")
	rag := newTestRAGService(store, &fakeEmbedding{}, 0.7)

	results := rag.RetrieveContext(context.Background(), "query")

	assert.Empty(t, results)
}

func TestRetrieveContextEmptyQuery(t *testing.T) {
	store := newMemoryStore()
	embedder := &fakeEmbedding{}
	rag := newTestRAGService(store, embedder, 0.7)

	results := rag.RetrieveContext(context.Background(), "   ")

	assert.Empty(t, results)
	assert.Zero(t, embedder.calls)
}

func TestIndexConversationPairsMessages(t *testing.T) {
	store := newMemoryStore()
	rag := newTestRAGService(store, &fakeEmbedding{}, 0.7)
	journalId := uuid.New()

	messages := []dto.MessageDTO{
		{Role: "user", Content: "How was my week?"},
		{Role: "assistant", Content: "You mentioned feeling productive."},
		{Role: "user", Content: "What about the weekend?"},
		{Role: "assistant", Content: "You went hiking."},
		{Role: "user", Content: "unanswered trailing message"},
	}

	err := rag.IndexConversation(context.Background(), journalId, "sess", messages)
	require.NoError(t, err)

	chunks := store.embeddings[journalId]
	require.Len(t, chunks, 2)
	assert.Equal(t, "User: How was my week?\n\nAssistant: You mentioned feeling productive.", chunks[0].Document)
	assert.Equal(t, "User: What about the weekend?\n\nAssistant: You went hiking.", chunks[1].Document)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[1].ChunkIndex)
}

func TestIndexConversationReplacesPreviousChunks(t *testing.T) {
	store := newMemoryStore()
	rag := newTestRAGService(store, &fakeEmbedding{}, 0.7)
	journalId := uuid.New()

	first := []dto.MessageDTO{
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
	}
	require.NoError(t, rag.IndexConversation(context.Background(), journalId, "sess", first))
	require.Len(t, store.embeddings[journalId], 1)

	second := append(first,
		dto.MessageDTO{Role: "user", Content: "Another question"},
		dto.MessageDTO{Role: "assistant", Content: "Another answer"},
	)
	require.NoError(t, rag.IndexConversation(context.Background(), journalId, "sess", second))

	chunks := store.embeddings[journalId]
	assert.Len(t, chunks, 2)
}

func TestIndexConversationEmbeddingFailurePropagates(t *testing.T) {
	store := newMemoryStore()
	rag := newTestRAGService(store, &fakeEmbedding{err: errors.New("quota exceeded")}, 0.7)
	journalId := uuid.New()

	err := rag.IndexConversation(context.Background(), journalId, "sess", []dto.MessageDTO{
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi"},
	})

	assert.Error(t, err)
	assert.Empty(t, store.embeddings[journalId])
}

func TestIndexWriteContentChunksParagraphs(t *testing.T) {
	store := newMemoryStore()
	rag := newTestRAGService(store, &fakeEmbedding{}, 0.7)
	journalId := uuid.New()

	content := "First paragraph about my morning.\n\nSecond paragraph about the afternoon."
	err := rag.IndexWriteContent(context.Background(), journalId, "sess", "My Day", content)
	require.NoError(t, err)

	chunks := store.embeddings[journalId]
	require.Len(t, chunks, 2)
	assert.Equal(t, "First paragraph about my morning.", chunks[0].Document)
	assert.Equal(t, "write", chunks[0].Metadata["source"])
	assert.Equal(t, "My Day", chunks[0].Metadata["title"])
}
