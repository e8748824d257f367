package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-journaling-be/internal/constant"
	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/pkg/apperrors"
	"ai-journaling-be/internal/pkg/logger"
	"ai-journaling-be/internal/repository/specification"
	"ai-journaling-be/internal/repository/unitofwork"
	"ai-journaling-be/pkg/events"
	"ai-journaling-be/pkg/llm"
	pktNats "ai-journaling-be/pkg/nats"
	"ai-journaling-be/pkg/store"

	"github.com/google/uuid"
)

type IJournalService interface {
	// SaveJournal persists the full message set for a session, creating the
	// journal on first save and replacing messages on subsequent saves.
	SaveJournal(ctx context.Context, req *dto.SaveJournalRequest) (*dto.JournalMetadataDTO, error)
	List(ctx context.Context, limit, offset int) (*dto.ListJournalsResponse, error)
	Get(ctx context.Context, journalId string) (*dto.JournalDTO, error)
	Delete(ctx context.Context, journalId string) (*dto.DeleteJournalResponse, error)
	UpdateTitle(ctx context.Context, req *dto.UpdateJournalTitleRequest) (*dto.JournalMetadataDTO, error)
	UpdateWriteContent(ctx context.Context, req *dto.UpdateWriteContentRequest) (*dto.JournalMetadataDTO, error)
	AskAI(ctx context.Context, req *dto.AskAIRequest) (*dto.AskAIResponse, error)
	AskAIStream(ctx context.Context, req *dto.AskAIRequest, emit func(dto.StreamEvent) error) error
	GenerateTitle(ctx context.Context, messages []dto.MessageDTO) string
}

type journalService struct {
	uowFactory       unitofwork.RepositoryFactory
	ragService       IRAGService
	llmProvider      llm.LLMProvider
	titleModel       string
	sessionCache     *store.SessionCache
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewJournalService(
	uowFactory unitofwork.RepositoryFactory,
	ragService IRAGService,
	llmProvider llm.LLMProvider,
	titleModel string,
	sessionCache *store.SessionCache,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IJournalService {
	return &journalService{
		uowFactory:       uowFactory,
		ragService:       ragService,
		llmProvider:      llmProvider,
		titleModel:       titleModel,
		sessionCache:     sessionCache,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (js *journalService) SaveJournal(ctx context.Context, req *dto.SaveJournalRequest) (*dto.JournalMetadataDTO, error) {
	mode := req.Mode
	if mode == "" {
		mode = constant.JournalModeChat
	}

	journal, err := js.resolveJournal(ctx, req.JournalId, req.SessionId, mode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	isNew := journal == nil
	if isNew {
		journal = &entity.Journal{
			Id:        uuid.New(),
			SessionId: req.SessionId,
			Mode:      mode,
			CreatedAt: now,
		}
	}

	switch {
	case req.Title != "":
		journal.Title = req.Title
	case journal.Title == "":
		journal.Title = js.GenerateTitle(ctx, req.Messages)
	}
	journal.UpdatedAt = &now

	messages := make([]*entity.JournalMessage, 0, len(req.Messages))
	for i, msg := range req.Messages {
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = now
		}
		messages = append(messages, &entity.JournalMessage{
			Id:        uuid.New(),
			JournalId: journal.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			Sequence:  i,
			Metadata:  msg.Metadata,
			CreatedAt: ts,
		})
	}

	uow := js.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer uow.Rollback()

	if isNew {
		if err := uow.JournalRepository().Create(ctx, journal); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
	} else {
		if err := uow.JournalRepository().Update(ctx, journal); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		if err := uow.JournalMessageRepository().DeleteByJournalId(ctx, journal.Id); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
	}
	if err := uow.JournalMessageRepository().CreateBulk(ctx, messages); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	js.sessionCache.Set(ctx, req.SessionId, journal.Id.String())

	// Indexing failures never fail the save; the next save retries.
	if err := js.ragService.IndexConversation(ctx, journal.Id, journal.SessionId, req.Messages); err != nil {
		js.logger.Warn("JournalService", "conversation indexing failed", map[string]interface{}{
			"journal_id": journal.Id.String(),
			"error":      err.Error(),
		})
	}

	js.publishEvent(ctx, events.NewJournalSavedEvent(journal.Id.String(), journal.SessionId, journal.Title, len(messages)))

	return js.toMetadata(journal, len(messages)), nil
}

func (js *journalService) List(ctx context.Context, limit, offset int) (*dto.ListJournalsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	uow := js.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.JournalRepository().Count(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	journals, err := uow.JournalRepository().FindAll(ctx,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	items := make([]dto.JournalMetadataDTO, 0, len(journals))
	for _, journal := range journals {
		count, err := uow.JournalMessageRepository().Count(ctx, specification.ByJournalID{JournalID: journal.Id})
		if err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		items = append(items, *js.toMetadata(journal, int(count)))
	}

	return &dto.ListJournalsResponse{
		Journals: items,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func (js *journalService) Get(ctx context.Context, journalId string) (*dto.JournalDTO, error) {
	id, err := uuid.Parse(journalId)
	if err != nil {
		return nil, apperrors.NewJournalNotFoundError(journalId)
	}

	uow := js.uowFactory.NewUnitOfWork(ctx)
	journal, err := uow.JournalRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if journal == nil {
		return nil, apperrors.NewJournalNotFoundError(journalId)
	}

	messages, err := uow.JournalMessageRepository().FindAll(ctx,
		specification.ByJournalID{JournalID: journal.Id},
		specification.OrderBy{Field: "sequence", Desc: false},
	)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	messageDTOs := make([]dto.MessageDTO, 0, len(messages))
	for _, msg := range messages {
		messageDTOs = append(messageDTOs, dto.MessageDTO{
			Id:        msg.Id.String(),
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
			Metadata:  msg.Metadata,
		})
	}

	return &dto.JournalDTO{
		JournalMetadataDTO: *js.toMetadata(journal, len(messageDTOs)),
		WriteContent:       journal.WriteContent,
		Messages:           messageDTOs,
	}, nil
}

func (js *journalService) Delete(ctx context.Context, journalId string) (*dto.DeleteJournalResponse, error) {
	id, err := uuid.Parse(journalId)
	if err != nil {
		return nil, apperrors.NewJournalNotFoundError(journalId)
	}

	uow := js.uowFactory.NewUnitOfWork(ctx)
	journal, err := uow.JournalRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if journal == nil {
		return nil, apperrors.NewJournalNotFoundError(journalId)
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer uow.Rollback()

	// Embeddings go first so a retrieved chunk can never point at a
	// journal that is already gone.
	if err := uow.JournalEmbeddingRepository().DeleteByJournalId(ctx, id); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if err := uow.JournalMessageRepository().DeleteByJournalId(ctx, id); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if err := uow.JournalRepository().Delete(ctx, id); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	js.sessionCache.Delete(ctx, journal.SessionId)
	js.publishEvent(ctx, events.NewJournalDeletedEvent(journal.Id.String()))

	return &dto.DeleteJournalResponse{
		Success: true,
		Message: "journal deleted",
	}, nil
}

func (js *journalService) UpdateTitle(ctx context.Context, req *dto.UpdateJournalTitleRequest) (*dto.JournalMetadataDTO, error) {
	id, err := uuid.Parse(req.JournalId)
	if err != nil {
		return nil, apperrors.NewJournalNotFoundError(req.JournalId)
	}

	uow := js.uowFactory.NewUnitOfWork(ctx)
	journal, err := uow.JournalRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if journal == nil {
		return nil, apperrors.NewJournalNotFoundError(req.JournalId)
	}

	now := time.Now()
	journal.Title = strings.TrimSpace(req.Title)
	journal.UpdatedAt = &now
	if err := uow.JournalRepository().Update(ctx, journal); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	count, err := uow.JournalMessageRepository().Count(ctx, specification.ByJournalID{JournalID: journal.Id})
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	return js.toMetadata(journal, int(count)), nil
}

func (js *journalService) UpdateWriteContent(ctx context.Context, req *dto.UpdateWriteContentRequest) (*dto.JournalMetadataDTO, error) {
	journal, err := js.resolveJournal(ctx, req.JournalId, req.SessionId, constant.JournalModeWrite)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	isNew := journal == nil
	if isNew {
		journal = &entity.Journal{
			Id:        uuid.New(),
			SessionId: req.SessionId,
			Mode:      constant.JournalModeWrite,
			CreatedAt: now,
		}
	}

	switch {
	case req.Title != "":
		journal.Title = req.Title
	case journal.Title == "":
		journal.Title = deriveWriteTitle(req.Content)
	}
	journal.WriteContent = req.Content
	journal.UpdatedAt = &now

	uow := js.uowFactory.NewUnitOfWork(ctx)
	var storeErr error
	if isNew {
		storeErr = uow.JournalRepository().Create(ctx, journal)
	} else {
		storeErr = uow.JournalRepository().Update(ctx, journal)
	}
	if storeErr != nil {
		return nil, apperrors.NewStorageError(storeErr)
	}

	js.sessionCache.Set(ctx, req.SessionId, journal.Id.String())

	// Indexing write content is deferred to the background consumer so the
	// editor's autosave loop stays fast.
	payload, err := json.Marshal(dto.PublishIndexJournalMessage{JournalId: journal.Id})
	if err == nil {
		if err := js.publisherService.Publish(ctx, payload); err != nil {
			js.logger.Warn("JournalService", "failed to enqueue write-content indexing", map[string]interface{}{
				"journal_id": journal.Id.String(),
				"error":      err.Error(),
			})
		}
	}

	js.publishEvent(ctx, events.NewJournalSavedEvent(journal.Id.String(), journal.SessionId, journal.Title, 0))

	return js.toMetadata(journal, 0), nil
}

func (js *journalService) AskAI(ctx context.Context, req *dto.AskAIRequest) (*dto.AskAIResponse, error) {
	messages := buildWriteModeMessages(req)

	start := time.Now()
	response, err := js.llmProvider.Chat(ctx, messages)
	if err != nil {
		return nil, apperrors.NewLLMError(err)
	}

	return &dto.AskAIResponse{
		Message: dto.MessageDTO{
			Id:        uuid.New().String(),
			Role:      constant.MessageRoleAssistant,
			Content:   response,
			Timestamp: time.Now(),
		},
		Metadata: map[string]interface{}{
			"generation_time_ms": time.Since(start).Milliseconds(),
		},
	}, nil
}

func (js *journalService) AskAIStream(ctx context.Context, req *dto.AskAIRequest, emit func(dto.StreamEvent) error) error {
	messages := buildWriteModeMessages(req)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var emitErr error
	full, err := js.llmProvider.StreamChat(streamCtx, messages, func(delta string) {
		if emitErr != nil {
			return
		}
		if err := emit(dto.StreamEvent{
			Type: constant.StreamEventToken,
			Data: map[string]interface{}{"content": delta},
		}); err != nil {
			emitErr = err
			cancel()
		}
	})
	if emitErr != nil {
		return emitErr
	}
	if err != nil {
		appErr := apperrors.NewLLMError(err)
		return emit(dto.StreamEvent{
			Type: constant.StreamEventError,
			Data: map[string]interface{}{
				"message":   appErr.Message,
				"retryable": appErr.Retryable,
			},
		})
	}

	return emit(dto.StreamEvent{
		Type: constant.StreamEventDone,
		Data: map[string]interface{}{
			"message": dto.MessageDTO{
				Id:        uuid.New().String(),
				Role:      constant.MessageRoleAssistant,
				Content:   full,
				Timestamp: time.Now(),
			},
		},
	})
}

// GenerateTitle asks the cheaper model for a short descriptive title. Any
// failure falls back to the default title rather than failing the save.
func (js *journalService) GenerateTitle(ctx context.Context, messages []dto.MessageDTO) string {
	preview := conversationPreview(messages)
	if preview == "" {
		return constant.DefaultJournalTitle
	}

	title, err := js.llmProvider.Generate(ctx,
		formatTitlePrompt(preview),
		llm.WithModel(js.titleModel),
		llm.WithTemperature(constant.TitleTemperature),
		llm.WithMaxTokens(constant.TitleMaxTokens),
	)
	if err != nil {
		js.logger.Warn("JournalService", "title generation failed, using default", map[string]interface{}{"error": err.Error()})
		return constant.DefaultJournalTitle
	}

	title = sanitizeTitle(title)
	if title == "" {
		return constant.DefaultJournalTitle
	}
	return title
}

// resolveJournal finds the journal a request targets: by explicit id when
// given (404 if missing), otherwise by session via the cache then the DB.
// Returns nil when the session has no journal yet.
func (js *journalService) resolveJournal(ctx context.Context, journalId, sessionId, mode string) (*entity.Journal, error) {
	uow := js.uowFactory.NewUnitOfWork(ctx)

	if journalId != "" {
		id, err := uuid.Parse(journalId)
		if err != nil {
			return nil, apperrors.NewJournalNotFoundError(journalId)
		}
		journal, err := uow.JournalRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, apperrors.NewStorageError(err)
		}
		if journal == nil {
			return nil, apperrors.NewJournalNotFoundError(journalId)
		}
		return journal, nil
	}

	if cached, found := js.sessionCache.Get(ctx, sessionId); found {
		if id, err := uuid.Parse(cached); err == nil {
			journal, err := uow.JournalRepository().FindOne(ctx, specification.ByID{ID: id})
			if err == nil && journal != nil && journal.Mode == mode {
				return journal, nil
			}
			// Stale cache entry or a journal of the other mode; the DB
			// lookup below filters by mode and is authoritative.
			if journal == nil {
				js.sessionCache.Delete(ctx, sessionId)
			}
		}
	}

	journal, err := uow.JournalRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.ByMode{Mode: mode},
	)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return journal, nil
}

func (js *journalService) publishEvent(ctx context.Context, evt events.Event) {
	if js.eventPublisher == nil {
		return
	}
	if err := js.eventPublisher.Publish(ctx, evt); err != nil {
		js.logger.Warn("JournalService", "failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}

func (js *journalService) toMetadata(journal *entity.Journal, messageCount int) *dto.JournalMetadataDTO {
	return &dto.JournalMetadataDTO{
		Id:           journal.Id.String(),
		SessionId:    journal.SessionId,
		Title:        journal.Title,
		Mode:         journal.Mode,
		Date:         journal.CreatedAt,
		UpdatedAt:    journal.UpdatedAt,
		MessageCount: messageCount,
	}
}
