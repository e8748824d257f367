package dto

import (
	"time"
)

// MessageDTO mirrors one conversation turn as exchanged with the client.
type MessageDTO struct {
	Id        string                 `json:"id,omitempty"`
	Role      string                 `json:"role" validate:"required,oneof=user assistant system"`
	Content   string                 `json:"content" validate:"required"`
	Timestamp time.Time              `json:"timestamp,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// RetrievedContextDTO is one chunk returned by similarity search. Ephemeral,
// computed per query.
type RetrievedContextDTO struct {
	Content         string                 `json:"content"`
	Metadata        map[string]interface{} `json:"metadata"`
	SimilarityScore float64                `json:"similarity_score"`
}

type ChatRequest struct {
	Message             string       `json:"message" validate:"required,min=1,max=10000"`
	SessionId           string       `json:"session_id" validate:"required"`
	ConversationHistory []MessageDTO `json:"conversation_history" validate:"dive"`
	UseRAG              *bool        `json:"use_rag"`
	Stream              bool         `json:"stream"`
}

// WantsRAG resolves the use_rag flag, defaulting to true when omitted.
func (r *ChatRequest) WantsRAG() bool {
	if r.UseRAG == nil {
		return true
	}
	return *r.UseRAG
}

type ChatResponse struct {
	Message          MessageDTO             `json:"message"`
	RetrievedContext []RetrievedContextDTO  `json:"retrieved_context"`
	Metadata         map[string]interface{} `json:"metadata"`
	AutoSaved        bool                   `json:"auto_saved"`
}

// StreamEvent is one tagged variant on the SSE stream: context, token, done
// or error. Consumers must match exhaustively on Type.
type StreamEvent struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}
