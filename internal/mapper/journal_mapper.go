package mapper

import (
	"time"

	"ai-journaling-be/internal/entity"
	"ai-journaling-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JournalMapper struct{}

func NewJournalMapper() *JournalMapper {
	return &JournalMapper{}
}

func (m *JournalMapper) ToEntity(j *model.Journal) *entity.Journal {
	if j == nil {
		return nil
	}

	var deletedAt *time.Time
	if j.DeletedAt.Valid {
		t := j.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !j.UpdatedAt.IsZero() {
		t := j.UpdatedAt
		updatedAt = &t
	}

	return &entity.Journal{
		Id:           j.Id,
		SessionId:    j.SessionId,
		Title:        j.Title,
		Mode:         j.Mode,
		WriteContent: j.WriteContent,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    j.DeletedAt.Valid,
	}
}

func (m *JournalMapper) ToModel(j *entity.Journal) *model.Journal {
	if j == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if j.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *j.DeletedAt, Valid: true}
	} else if j.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if j.UpdatedAt != nil {
		updatedAt = *j.UpdatedAt
	}

	return &model.Journal{
		Id:           j.Id,
		SessionId:    j.SessionId,
		Title:        j.Title,
		Mode:         j.Mode,
		WriteContent: j.WriteContent,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

type JournalMessageMapper struct{}

func NewJournalMessageMapper() *JournalMessageMapper {
	return &JournalMessageMapper{}
}

func (m *JournalMessageMapper) ToEntity(msg *model.JournalMessage) *entity.JournalMessage {
	if msg == nil {
		return nil
	}
	return &entity.JournalMessage{
		Id:        msg.Id,
		JournalId: msg.JournalId,
		Role:      msg.Role,
		Content:   msg.Content,
		Sequence:  msg.Sequence,
		Metadata:  map[string]interface{}(msg.Metadata),
		CreatedAt: msg.CreatedAt,
	}
}

func (m *JournalMessageMapper) ToModel(msg *entity.JournalMessage) *model.JournalMessage {
	if msg == nil {
		return nil
	}
	return &model.JournalMessage{
		Id:        msg.Id,
		JournalId: msg.JournalId,
		Role:      msg.Role,
		Content:   msg.Content,
		Sequence:  msg.Sequence,
		Metadata:  datatypes.JSONMap(msg.Metadata),
		CreatedAt: msg.CreatedAt,
	}
}

func (m *JournalMessageMapper) ToEntities(messages []*model.JournalMessage) []*entity.JournalMessage {
	entities := make([]*entity.JournalMessage, len(messages))
	for i, msg := range messages {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}

func (m *JournalMessageMapper) ToModels(messages []*entity.JournalMessage) []*model.JournalMessage {
	models := make([]*model.JournalMessage, len(messages))
	for i, msg := range messages {
		models[i] = m.ToModel(msg)
	}
	return models
}
