package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-journaling-be/internal/constant"
	"ai-journaling-be/internal/dto"
	"ai-journaling-be/internal/pkg/apperrors"
	"ai-journaling-be/internal/pkg/logger"
	"ai-journaling-be/pkg/llm"
	"ai-journaling-be/pkg/tokencount"

	"github.com/google/uuid"
)

// IChatService orchestrates a full conversational turn: retrieval, prompt
// assembly, generation, and persistence.
type IChatService interface {
	SendMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)

	// StreamMessage runs the same turn but delivers the response
	// incrementally through emit. Event order is fixed: one context event,
	// zero or more token events, then exactly one done or error event.
	StreamMessage(ctx context.Context, req *dto.ChatRequest, emit func(dto.StreamEvent) error) error
}

type chatService struct {
	llmProvider    llm.LLMProvider
	ragService     IRAGService
	journalService IJournalService
	history        *historyManager
	logger         logger.ILogger
	model          string
	temperature    float64
	maxTokens      int
}

func NewChatService(
	llmProvider llm.LLMProvider,
	ragService IRAGService,
	journalService IJournalService,
	counter *tokencount.Counter,
	log logger.ILogger,
	model string,
	temperature float64,
	maxTokens int,
	maxContextTokens int,
	recentMessagesToKeep int,
) IChatService {
	return &chatService{
		llmProvider:    llmProvider,
		ragService:     ragService,
		journalService: journalService,
		history:        newHistoryManager(counter, llmProvider, log, maxContextTokens, recentMessagesToKeep),
		logger:         log,
		model:          model,
		temperature:    temperature,
		maxTokens:      maxTokens,
	}
}

func (cs *chatService) SendMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	start := time.Now()

	retrieved, retrievalMs := cs.retrieve(ctx, req)

	messages := cs.history.Build(ctx, buildSystemPrompt(retrieved), req.ConversationHistory, req.Message)

	genStart := time.Now()
	response, err := cs.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(cs.temperature),
		llm.WithMaxTokens(cs.maxTokens),
	)
	if err != nil {
		return nil, apperrors.NewLLMError(err)
	}
	generationMs := time.Since(genStart).Milliseconds()

	assistantMsg := dto.MessageDTO{
		Id:        uuid.New().String(),
		Role:      constant.MessageRoleAssistant,
		Content:   response,
		Timestamp: time.Now(),
	}

	journalId, autoSaved := cs.persistTurn(ctx, req, assistantMsg)

	return &dto.ChatResponse{
		Message:          assistantMsg,
		RetrievedContext: retrieved,
		AutoSaved:        autoSaved,
		Metadata: map[string]interface{}{
			"model":              cs.model,
			"journal_id":         journalId,
			"context_chunks":     len(retrieved),
			"retrieval_time_ms":  retrievalMs,
			"generation_time_ms": generationMs,
			"total_time_ms":      time.Since(start).Milliseconds(),
		},
	}, nil
}

func (cs *chatService) StreamMessage(ctx context.Context, req *dto.ChatRequest, emit func(dto.StreamEvent) error) error {
	start := time.Now()

	retrieved, retrievalMs := cs.retrieve(ctx, req)

	if len(retrieved) > 0 {
		if err := emit(dto.StreamEvent{
			Type: constant.StreamEventContext,
			Data: map[string]interface{}{
				"retrieved_context": retrieved,
				"count":             len(retrieved),
			},
		}); err != nil {
			return err
		}
	}

	messages := cs.history.Build(ctx, buildSystemPrompt(retrieved), req.ConversationHistory, req.Message)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	genStart := time.Now()
	var emitErr error
	full, err := cs.llmProvider.StreamChat(streamCtx, messages, func(delta string) {
		if emitErr != nil {
			return
		}
		if e := emit(dto.StreamEvent{
			Type: constant.StreamEventToken,
			Data: map[string]interface{}{"content": delta},
		}); e != nil {
			emitErr = e
			cancel()
		}
	},
		llm.WithTemperature(cs.temperature),
		llm.WithMaxTokens(cs.maxTokens),
	)
	if emitErr != nil {
		// Client disconnected mid-stream. Nothing is persisted.
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
	generationMs := time.Since(genStart).Milliseconds()

	assistantMsg := dto.MessageDTO{
		Id:        uuid.New().String(),
		Role:      constant.MessageRoleAssistant,
		Content:   full,
		Timestamp: time.Now(),
	}

	// Persistence happens before the done event so a client that acts on
	// done always observes the saved turn.
	journalId, autoSaved := cs.persistTurn(ctx, req, assistantMsg)

	return emit(dto.StreamEvent{
		Type: constant.StreamEventDone,
		Data: map[string]interface{}{
			"message":    assistantMsg,
			"auto_saved": autoSaved,
			"journal_id": journalId,
			"metadata": map[string]interface{}{
				"model":              cs.model,
				"context_chunks":     len(retrieved),
				"retrieval_time_ms":  retrievalMs,
				"generation_time_ms": generationMs,
				"total_time_ms":      time.Since(start).Milliseconds(),
			},
		},
	})
}

func (cs *chatService) retrieve(ctx context.Context, req *dto.ChatRequest) ([]dto.RetrievedContextDTO, int64) {
	if !req.WantsRAG() {
		return []dto.RetrievedContextDTO{}, 0
	}
	start := time.Now()
	retrieved := cs.ragService.RetrieveContext(ctx, req.Message)
	return retrieved, time.Since(start).Milliseconds()
}

// persistTurn appends the user message and the assistant reply to the
// session's journal. The turn already succeeded, so a save failure is
// reported through the auto_saved flag rather than an error.
func (cs *chatService) persistTurn(ctx context.Context, req *dto.ChatRequest, assistantMsg dto.MessageDTO) (string, bool) {
	userMsg := dto.MessageDTO{
		Id:        uuid.New().String(),
		Role:      constant.MessageRoleUser,
		Content:   req.Message,
		Timestamp: time.Now(),
	}

	allMessages := make([]dto.MessageDTO, 0, len(req.ConversationHistory)+2)
	allMessages = append(allMessages, req.ConversationHistory...)
	allMessages = append(allMessages, userMsg, assistantMsg)

	saved, err := cs.journalService.SaveJournal(ctx, &dto.SaveJournalRequest{
		SessionId: req.SessionId,
		Messages:  allMessages,
		Mode:      constant.JournalModeChat,
	})
	if err != nil {
		cs.logger.Warn("ChatService", "auto-save failed", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return "", false
	}
	return saved.Id, true
}

// buildSystemPrompt injects retrieved chunks into the journaling prompt.
// With no chunks the context block collapses to an empty string.
func buildSystemPrompt(retrieved []dto.RetrievedContextDTO) string {
	if len(retrieved) == 0 {
		return fmt.Sprintf(constant.JournalingSystemPrompt, "")
	}

	var block strings.Builder
	block.WriteString("Relevant context from the user's previous journal entries:\n")
	for _, chunk := range retrieved {
		block.WriteString(fmt.Sprintf("- %s\n", chunk.Content))
	}
	return fmt.Sprintf(constant.JournalingSystemPrompt, block.String())
}
