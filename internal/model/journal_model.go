package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Journal struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    string         `gorm:"type:text;not null;index"` // client correlation token
	Title        string         `gorm:"type:text;not null"`
	Mode         string         `gorm:"type:text;not null;default:chat"`
	WriteContent string         `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Journal) TableName() string {
	return "journals"
}
