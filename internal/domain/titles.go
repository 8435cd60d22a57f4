package domain

import "strings"

// TitleBank maps clip ids to their candidate titles, as stored in the title
// documents in the blob store.
type TitleBank map[string][]string

// Resolve picks the title for a clip. The index is 1-based and wraps over
// the clip's candidates; anything out of range falls back to the first
// candidate, and a clip with no candidates gets a creator-name default.
func (b TitleBank) Resolve(clipID string, index int) string {
	titles := b[clipID]
	if len(titles) == 0 {
		return "Video by " + CreatorName(clipID)
	}
	if index < 1 {
		return titles[0]
	}
	return titles[(index-1)%len(titles)]
}

// CreatorName extracts the creator from a clip id of the form
// "CreatorName-001". Multi-part names keep everything before the final
// segment, joined with spaces.
func CreatorName(clipID string) string {
	if clipID == "" || !strings.Contains(clipID, "-") {
		return "Creator"
	}
	parts := strings.Split(clipID, "-")
	if len(parts) < 2 {
		return "Creator"
	}
	return strings.Join(parts[:len(parts)-1], " ")
}
