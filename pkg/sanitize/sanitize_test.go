package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain title untouched", "Shopping list", "Shopping list"},
		{"british marker stripped", "FAVOURITES Shopping", "Shopping"},
		{"american marker stripped", "my FAVORITES", "my"},
		{"case insensitive", "Favourites notes", "notes"},
		{"mixed case", "fAvOrItEs notes", "notes"},
		{"marker inside word survives", "favouritesque band", "favouritesque band"},
		{"only marker becomes empty", "FAVOURITES", ""},
		{"both spellings", "FAVOURITES and FAVORITES", "and"},
		{"trims whitespace", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.title))
		})
	}
}

func TestContent(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Content(nil))
	})

	t.Run("marker removed", func(t *testing.T) {
		in := "see the FAVOURITES tab"
		got := Content(&in)
		assert.Equal(t, "see the  tab", *got)
	})

	t.Run("empty string stays empty", func(t *testing.T) {
		in := ""
		got := Content(&in)
		assert.Equal(t, "", *got)
	})
}

func TestTags(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Tags(nil))
	})

	t.Run("marker tags dropped, order kept", func(t *testing.T) {
		got := Tags([]string{"work", "Favourites", "home", "FAVORITES"})
		assert.Equal(t, []string{"work", "home"}, got)
	})

	t.Run("duplicates survive", func(t *testing.T) {
		got := Tags([]string{"a", "a"})
		assert.Equal(t, []string{"a", "a"}, got)
	})

	t.Run("empty tags dropped", func(t *testing.T) {
		got := Tags([]string{"", "  ", "keep"})
		assert.Equal(t, []string{"keep"}, got)
	})
}

// Cleaning already-clean text must change nothing; the sanitizer runs on
// every load and save.
func TestIdempotence(t *testing.T) {
	titles := []string{"Shopping", "FAVOURITES Shopping", "my favourites plan", ""}
	for _, title := range titles {
		once := Title(title)
		assert.Equal(t, once, Title(once))
	}

	contents := []string{"body FAVORITES text", "plain", ""}
	for _, c := range contents {
		in := c
		once := Content(&in)
		twice := Content(once)
		assert.Equal(t, *once, *twice)
	}
}
