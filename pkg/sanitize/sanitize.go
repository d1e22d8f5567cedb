// Package sanitize strips legacy category markers out of note text. Early
// releases stored the active category inside the note itself; those tokens
// still live in old rows and in payloads from stale clients, so cleaning
// runs both when notes are loaded and before they are saved.
package sanitize

import (
	"regexp"
	"strings"
)

// Whole words only: "MY FAVOURITES LIST" loses the marker but
// "favouritesque" stays untouched.
var legacyMarker = regexp.MustCompile(`(?i)\b(FAVOURITES|FAVORITES)\b`)

// Title removes legacy markers and trims the result.
func Title(title string) string {
	return strings.TrimSpace(legacyMarker.ReplaceAllString(title, ""))
}

// Content removes legacy markers. Nil stays nil; absent content and empty
// content are different states.
func Content(content *string) *string {
	if content == nil {
		return nil
	}
	cleaned := legacyMarker.ReplaceAllString(*content, "")
	return &cleaned
}

// Tags drops tags that are empty or equal to a marker after cleaning.
// Surviving tags keep their original order.
func Tags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned := strings.TrimSpace(legacyMarker.ReplaceAllString(tag, ""))
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}
