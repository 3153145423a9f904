package feed

import (
	"client-aley/internal/aley"
)

// PostRecord is a backend post plus the client-derived classification
// fields. The derived fields are never sent back to the backend.
type PostRecord struct {
	aley.Post

	ResolvedIsOwn          bool
	ResolvedIsFriendAuthor bool
}

// AuthorID returns the first populated author id field, or "".
func (r PostRecord) AuthorID() string {
	for _, id := range r.Author.IDs() {
		if id != "" {
			return id
		}
	}
	return ""
}
