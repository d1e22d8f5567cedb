package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title      string   `json:"title" validate:"required"`
	Content    *string  `json:"content"`
	BgColor    string   `json:"bg_color"`
	BgImageUrl *string  `json:"bg_image_url"`
	IsFavorite bool     `json:"is_favorite"`
	IsPinned   bool     `json:"is_pinned"`
	Tags       []string `json:"tags"`
	NoteDate   string   `json:"note_date"` // YYYY-MM-DD, defaults to today
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

// UpdateNoteRequest applies only the fields the client supplies; nil means
// "leave as is", so clearing content requires an explicit empty string.
type UpdateNoteRequest struct {
	Id         uuid.UUID
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	BgColor    *string   `json:"bg_color"`
	BgImageUrl *string   `json:"bg_image_url"`
	IsFavorite *bool     `json:"is_favorite"`
	IsPinned   *bool     `json:"is_pinned"`
	Tags       *[]string `json:"tags"`
	NoteDate   *string   `json:"note_date"`
}

type UpdateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type ToggleFavoriteRequest struct {
	Id         uuid.UUID
	IsFavorite bool `json:"is_favorite"` // current value; the service flips it
}

type TogglePinRequest struct {
	Id       uuid.UUID
	IsPinned bool `json:"is_pinned"` // current value; the service flips it
}

type NoteResponse struct {
	Id         uuid.UUID  `json:"id"`
	UserId     uuid.UUID  `json:"user_id"`
	Title      string     `json:"title"`
	Content    *string    `json:"content"`
	BgColor    string     `json:"bg_color"`
	BgImageUrl *string    `json:"bg_image_url"`
	IsFavorite bool       `json:"is_favorite"`
	IsPinned   bool       `json:"is_pinned"`
	Tags       []string   `json:"tags"`
	NoteDate   string     `json:"note_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// ListNotesQuery carries the transient view state; it is never persisted.
type ListNotesQuery struct {
	Search   string
	Category string
	Sort     string
}
