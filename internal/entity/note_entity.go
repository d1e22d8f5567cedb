package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId     uuid.UUID `gorm:"type:uuid;index"`
	Title      string
	Content    *string
	BgColor    string
	BgImageUrl *string
	IsFavorite bool
	IsPinned   bool
	Tags       []string
	NoteDate   time.Time
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
