package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Note struct {
	Id         uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Title      string                      `gorm:"type:varchar(255);not null"`
	Content    *string                     `gorm:"type:text"`
	BgColor    string                      `gorm:"type:varchar(32);not null;default:'#ffffff'"`
	BgImageUrl *string                     `gorm:"type:text"`
	IsFavorite bool                        `gorm:"not null;default:false"`
	IsPinned   bool                        `gorm:"not null;default:false"`
	Tags       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	NoteDate   datatypes.Date              `gorm:"not null"`
	CreatedAt  time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt  time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt              `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}
