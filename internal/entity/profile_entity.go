package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the zero-or-one display profile row attached to a user.
type Profile struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;index"`
	FullName  *string
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
