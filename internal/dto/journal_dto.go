package dto

import (
	"time"
)

type JournalMetadataDTO struct {
	Id           string     `json:"id"`
	SessionId    string     `json:"session_id"`
	Title        string     `json:"title"`
	Mode         string     `json:"mode"`
	Date         time.Time  `json:"date"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	MessageCount int        `json:"message_count"`
}

type JournalDTO struct {
	JournalMetadataDTO
	WriteContent string       `json:"write_content,omitempty"`
	Messages     []MessageDTO `json:"messages"`
}

type ListJournalsResponse struct {
	Journals []JournalMetadataDTO `json:"journals"`
	Total    int64                `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

type SaveJournalRequest struct {
	SessionId string       `json:"session_id" validate:"required"`
	JournalId string       `json:"journal_id,omitempty"` // when set, updates the existing journal
	Messages  []MessageDTO `json:"messages" validate:"required,min=1,dive"`
	Title     string       `json:"title,omitempty"` // auto-generated when empty
	Mode      string       `json:"mode,omitempty" validate:"omitempty,oneof=chat write"`
}

type UpdateJournalTitleRequest struct {
	JournalId string `json:"journal_id" validate:"required"`
	Title     string `json:"title" validate:"required,min=1,max=200"`
}

type UpdateWriteContentRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	JournalId string `json:"journal_id,omitempty"`
	Content   string `json:"content" validate:"required"`
	Title     string `json:"title,omitempty"`
}

type AskAIRequest struct {
	SessionId           string       `json:"session_id" validate:"required"`
	Content             string       `json:"content" validate:"required,max=50000"`
	ConversationHistory []MessageDTO `json:"conversation_history" validate:"dive"`
	JournalId           string       `json:"journal_id,omitempty"`
}

type AskAIResponse struct {
	Message  MessageDTO             `json:"message"`
	Metadata map[string]interface{} `json:"metadata"`
}

type DeleteJournalResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
