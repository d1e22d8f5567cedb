package memory

import (
	"time"

	"nivora-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// NoteCache holds each user's full note list between reads. Entries are only
// ever replaced wholesale: a mutation invalidates the user's entry and the
// next list refetches, so the cache never carries a partially patched state.
type NoteCache struct {
	cache *cache.Cache
}

func NewNoteCache() *NoteCache {
	// Hour-long expiry with a 10 minute sweep; invalidation on mutation is
	// what actually keeps entries fresh, the expiry is a backstop.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &NoteCache{
		cache: c,
	}
}

func (r *NoteCache) key(userId uuid.UUID) string {
	return "notes:" + userId.String()
}

func (r *NoteCache) Get(userId uuid.UUID) ([]*entity.Note, bool) {
	if x, found := r.cache.Get(r.key(userId)); found {
		return x.([]*entity.Note), true
	}
	return nil, false
}

func (r *NoteCache) Set(userId uuid.UUID, notes []*entity.Note) {
	r.cache.Set(r.key(userId), notes, cache.DefaultExpiration)
}

// Invalidate drops the user's entry. Called after every successful mutation
// and on logout.
func (r *NoteCache) Invalidate(userId uuid.UUID) {
	r.cache.Delete(r.key(userId))
}
