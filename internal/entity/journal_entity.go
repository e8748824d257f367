package entity

import (
	"time"

	"github.com/google/uuid"
)

type Journal struct {
	Id           uuid.UUID
	SessionId    string
	Title        string
	Mode         string // chat | write
	WriteContent string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
