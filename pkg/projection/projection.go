// Package projection derives the visible note list from a user's full
// collection. It is pure: the same collection and query always produce the
// same result, and the input slice is never mutated.
package projection

import (
	"sort"
	"strings"
	"time"

	"nivora-be/internal/entity"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Category string

const (
	CategoryAll       Category = "all"
	CategoryPasswords Category = "passwords"
	CategoryQuick     Category = "quick"
	CategoryFavorites Category = "favorites"
)

type SortKey string

const (
	SortCreatedDesc SortKey = "created"
	SortUpdatedDesc SortKey = "updated"
	SortTitleAsc    SortKey = "title"
)

// Notes with no content, or content below this length, count as "quick".
const quickContentThreshold = 100

const passwordMarker = "password"
const quickTag = "quick"

type Query struct {
	Search   string
	Category Category
	Sort     SortKey
}

// ParseCategory maps a query-string value onto a category, defaulting to all.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(s)) {
	case CategoryPasswords, CategoryQuick, CategoryFavorites:
		return Category(strings.ToLower(s))
	default:
		return CategoryAll
	}
}

// ParseSortKey maps a query-string value onto a sort key, defaulting to
// creation time descending (the collection's base order).
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(s)) {
	case SortUpdatedDesc, SortTitleAsc:
		return SortKey(strings.ToLower(s))
	default:
		return SortCreatedDesc
	}
}

// Project applies category filter, then free-text search, then sort. The
// input is expected in the repository's base order (pinned first, newest
// created first); all sorts are stable so ties keep that relative order.
func Project(notes []*entity.Note, q Query) []*entity.Note {
	out := make([]*entity.Note, 0, len(notes))
	for _, n := range notes {
		if !matchesCategory(n, q.Category) {
			continue
		}
		if !matchesSearch(n, q.Search) {
			continue
		}
		out = append(out, n)
	}
	sortNotes(out, q.Sort)
	return out
}

func matchesCategory(n *entity.Note, c Category) bool {
	switch c {
	case CategoryPasswords:
		if strings.Contains(strings.ToLower(n.Title), passwordMarker) {
			return true
		}
		for _, tag := range n.Tags {
			if strings.Contains(strings.ToLower(tag), passwordMarker) {
				return true
			}
		}
		return false
	case CategoryQuick:
		for _, tag := range n.Tags {
			if strings.EqualFold(tag, quickTag) {
				return true
			}
		}
		return n.Content == nil || len(*n.Content) < quickContentThreshold
	case CategoryFavorites:
		return n.IsFavorite
	default:
		return true
	}
}

func matchesSearch(n *entity.Note, search string) bool {
	query := strings.ToLower(strings.TrimSpace(search))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.Title), query) {
		return true
	}
	// Absent content never matches.
	if n.Content != nil && strings.Contains(strings.ToLower(*n.Content), query) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func sortNotes(notes []*entity.Note, key SortKey) {
	switch key {
	case SortUpdatedDesc:
		sort.SliceStable(notes, func(i, j int) bool {
			return lastTouched(notes[i]).After(lastTouched(notes[j]))
		})
	case SortTitleAsc:
		cl := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(notes, func(i, j int) bool {
			return cl.CompareString(notes[i].Title, notes[j].Title) < 0
		})
	default:
		// Base order: pinned notes stay on top, newest creation first
		// within each group.
		sort.SliceStable(notes, func(i, j int) bool {
			if notes[i].IsPinned != notes[j].IsPinned {
				return notes[i].IsPinned
			}
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		})
	}
}

// lastTouched falls back to the creation time for rows never updated.
func lastTouched(n *entity.Note) time.Time {
	if n.UpdatedAt != nil {
		return *n.UpdatedAt
	}
	return n.CreatedAt
}
