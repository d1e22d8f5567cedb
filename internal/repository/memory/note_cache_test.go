package memory

import (
	"testing"

	"nivora-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNoteCache(t *testing.T) {
	c := NewNoteCache()
	userA := uuid.New()
	userB := uuid.New()

	_, found := c.Get(userA)
	assert.False(t, found, "empty cache must miss")

	notesA := []*entity.Note{{Id: uuid.New(), UserId: userA, Title: "a"}}
	c.Set(userA, notesA)

	got, found := c.Get(userA)
	assert.True(t, found)
	assert.Equal(t, notesA, got)

	_, found = c.Get(userB)
	assert.False(t, found, "entries are scoped per user")

	c.Invalidate(userA)
	_, found = c.Get(userA)
	assert.False(t, found, "invalidate must drop the entry")

	// Invalidating an absent entry is a no-op.
	c.Invalidate(userB)
}
