package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/repository/contract"
	"ai-journaling-be/internal/repository/specification"
	"ai-journaling-be/internal/repository/unitofwork"
	"ai-journaling-be/pkg/llm"

	"github.com/google/uuid"
)

// ---- logger ----

type testLogger struct{}

func (testLogger) Debug(string, string, map[string]interface{}) {}
func (testLogger) Info(string, string, map[string]interface{})  {}
func (testLogger) Warn(string, string, map[string]interface{})  {}
func (testLogger) Error(string, string, map[string]interface{}) {}
func (testLogger) Sync() error                                  { return nil }

// ---- LLM provider ----

type fakeLLM struct {
	mu           sync.Mutex
	chatResponse string
	chatErr      error
	streamTokens []string
	streamErr    error
	generateResp string
	generateErr  error
	chatCalls    [][]llm.Message
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, history)
	f.mu.Unlock()
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.chatResponse, nil
}

func (f *fakeLLM) StreamChat(_ context.Context, history []llm.Message, onDelta func(string), _ ...llm.Option) (string, error) {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, history)
	f.mu.Unlock()
	if f.streamErr != nil {
		return "", f.streamErr
	}
	for _, token := range f.streamTokens {
		onDelta(token)
	}
	return strings.Join(f.streamTokens, ""), nil
}

func (f *fakeLLM) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.generateResp, nil
}

// ---- embedding provider ----

type fakeEmbedding struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedding) Generate(context.Context, string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// ---- publisher ----

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	return nil
}

// ---- in-memory store shared by all fake repositories ----

type memoryStore struct {
	mu         sync.Mutex
	journals   map[uuid.UUID]*entity.Journal
	messages   map[uuid.UUID][]*entity.JournalMessage
	embeddings map[uuid.UUID][]*entity.JournalEmbedding

	// scripted similarity results, independent of stored embeddings
	searchResults []*contract.ScoredJournalEmbedding
	searchErr     error

	journalWriteErr error
	messageWriteErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		journals:   make(map[uuid.UUID]*entity.Journal),
		messages:   make(map[uuid.UUID][]*entity.JournalMessage),
		embeddings: make(map[uuid.UUID][]*entity.JournalEmbedding),
	}
}

// specFilters extracts the filter values the fakes understand.
type specFilters struct {
	id        *uuid.UUID
	sessionId string
	mode      string
	journalId *uuid.UUID
}

func parseSpecs(specs []specification.Specification) specFilters {
	var f specFilters
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			id := v.ID
			f.id = &id
		case specification.BySessionID:
			f.sessionId = v.SessionID
		case specification.ByMode:
			f.mode = v.Mode
		case specification.ByJournalID:
			id := v.JournalID
			f.journalId = &id
		}
	}
	return f
}

func (ms *memoryStore) matchJournals(specs []specification.Specification) []*entity.Journal {
	f := parseSpecs(specs)
	var out []*entity.Journal
	for _, j := range ms.journals {
		if f.id != nil && j.Id != *f.id {
			continue
		}
		if f.sessionId != "" && j.SessionId != f.sessionId {
			continue
		}
		if f.mode != "" && j.Mode != f.mode {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out
}

// ---- journal repository ----

type fakeJournalRepo struct{ store *memoryStore }

func (r *fakeJournalRepo) Create(_ context.Context, journal *entity.Journal) error {
	if r.store.journalWriteErr != nil {
		return r.store.journalWriteErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *journal
	r.store.journals[journal.Id] = &cp
	return nil
}

func (r *fakeJournalRepo) Update(_ context.Context, journal *entity.Journal) error {
	if r.store.journalWriteErr != nil {
		return r.store.journalWriteErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.journals[journal.Id]; !ok {
		return errors.New("journal not found")
	}
	cp := *journal
	r.store.journals[journal.Id] = &cp
	return nil
}

func (r *fakeJournalRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.journals, id)
	return nil
}

func (r *fakeJournalRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Journal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	matches := r.store.matchJournals(specs)
	if len(matches) == 0 {
		return nil, nil
	}
	cp := *matches[0]
	return &cp, nil
}

func (r *fakeJournalRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Journal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.matchJournals(specs), nil
}

func (r *fakeJournalRepo) Count(_ context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.matchJournals(specs))), nil
}

// ---- journal message repository ----

type fakeMessageRepo struct{ store *memoryStore }

func (r *fakeMessageRepo) Create(_ context.Context, msg *entity.JournalMessage) error {
	return r.CreateBulk(context.Background(), []*entity.JournalMessage{msg})
}

func (r *fakeMessageRepo) CreateBulk(_ context.Context, msgs []*entity.JournalMessage) error {
	if r.store.messageWriteErr != nil {
		return r.store.messageWriteErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, msg := range msgs {
		cp := *msg
		r.store.messages[msg.JournalId] = append(r.store.messages[msg.JournalId], &cp)
	}
	return nil
}

func (r *fakeMessageRepo) DeleteByJournalId(_ context.Context, journalId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.messages, journalId)
	return nil
}

func (r *fakeMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.JournalMessage, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.JournalMessage
	for journalId, msgs := range r.store.messages {
		if f.journalId != nil && journalId != *f.journalId {
			continue
		}
		out = append(out, msgs...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	msgs, _ := r.FindAll(ctx, specs...)
	return int64(len(msgs)), nil
}

// ---- journal embedding repository ----

type fakeEmbeddingRepo struct{ store *memoryStore }

func (r *fakeEmbeddingRepo) Create(_ context.Context, e *entity.JournalEmbedding) error {
	return r.CreateBulk(context.Background(), []*entity.JournalEmbedding{e})
}

func (r *fakeEmbeddingRepo) CreateBulk(_ context.Context, es []*entity.JournalEmbedding) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range es {
		cp := *e
		r.store.embeddings[e.JournalId] = append(r.store.embeddings[e.JournalId], &cp)
	}
	return nil
}

func (r *fakeEmbeddingRepo) DeleteByJournalId(_ context.Context, journalId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.embeddings, journalId)
	return nil
}

func (r *fakeEmbeddingRepo) DeleteBySessionId(_ context.Context, sessionId string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for journalId, es := range r.store.embeddings {
		var kept []*entity.JournalEmbedding
		for _, e := range es {
			if e.SessionId != sessionId {
				kept = append(kept, e)
			}
		}
		r.store.embeddings[journalId] = kept
	}
	return nil
}

func (r *fakeEmbeddingRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.JournalEmbedding, error) {
	f := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.JournalEmbedding
	for journalId, es := range r.store.embeddings {
		if f.journalId != nil && journalId != *f.journalId {
			continue
		}
		out = append(out, es...)
	}
	return out, nil
}

func (r *fakeEmbeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	es, _ := r.FindAll(ctx, specs...)
	return int64(len(es)), nil
}

func (r *fakeEmbeddingRepo) SearchSimilarWithScore(_ context.Context, _ []float32, limit int) ([]*contract.ScoredJournalEmbedding, error) {
	if r.store.searchErr != nil {
		return nil, r.store.searchErr
	}
	results := r.store.searchResults
	// Only chunks of journals that still exist are visible to search.
	r.store.mu.Lock()
	var visible []*contract.ScoredJournalEmbedding
	for _, s := range results {
		if _, ok := r.store.journals[s.Embedding.JournalId]; ok || s.Embedding.JournalId == uuid.Nil {
			visible = append(visible, s)
		}
	}
	r.store.mu.Unlock()
	if len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, nil
}

// ---- unit of work ----

type fakeUnitOfWork struct {
	store *memoryStore
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error               { return nil }
func (u *fakeUnitOfWork) Rollback() error             { return nil }

func (u *fakeUnitOfWork) JournalRepository() contract.JournalRepository {
	return &fakeJournalRepo{store: u.store}
}

func (u *fakeUnitOfWork) JournalMessageRepository() contract.JournalMessageRepository {
	return &fakeMessageRepo{store: u.store}
}

func (u *fakeUnitOfWork) JournalEmbeddingRepository() contract.JournalEmbeddingRepository {
	return &fakeEmbeddingRepo{store: u.store}
}

type fakeUowFactory struct {
	store *memoryStore
}

func (f *fakeUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}
