package specification

import "gorm.io/gorm"

// PinnedFirst orders pinned notes ahead of the rest, newest creation first
// within each group. This is the canonical base order for a user's notes;
// the projection layer relies on it as the stable tie-break order.
type PinnedFirst struct{}

func (s PinnedFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("is_pinned DESC").Order("created_at DESC")
}

type ByTitle struct {
	Title string
}

func (s ByTitle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ?", s.Title)
}
