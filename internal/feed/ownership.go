package feed

import (
	"strings"

	"client-aley/internal/aley"
	"client-aley/internal/session"
)

// TempPostPrefix marks posts created locally in the current session
// before the backend has echoed them back.
const TempPostPrefix = "temp_"

// ownershipRule is one signal in the ownership cascade. Rules run in
// declaration order and the first match wins; the order is part of the
// observable behavior and must not be rearranged.
type ownershipRule struct {
	name  string
	match func(post aley.Post, viewer session.Identity) bool
}

var ownershipRules = []ownershipRule{
	{
		// Advisory backend flag. Most reliable signal when present.
		name: "backend_hint",
		match: func(post aley.Post, _ session.Identity) bool {
			return post.IsOwnPost
		},
	},
	{
		// The backend is inconsistent about which author id field it
		// populates, so the viewer id is compared against all three.
		name: "author_id",
		match: func(post aley.Post, viewer session.Identity) bool {
			if viewer.UserID == "" {
				return false
			}
			for _, id := range post.Author.IDs() {
				if id != "" && id == viewer.UserID {
					return true
				}
			}
			return false
		},
	},
	{
		name: "author_email",
		match: func(post aley.Post, viewer session.Identity) bool {
			return viewer.Email != "" && post.Author.Email == viewer.Email
		},
	},
	{
		// Display-name heuristic: exact match, or either name containing
		// the other, to tolerate the truncated names some endpoints
		// return. Known source of false positives when one user's name is
		// a substring of another's; kept deliberately.
		name: "author_name",
		match: func(post aley.Post, viewer session.Identity) bool {
			name := post.Author.Name
			if viewer.DisplayName == "" || name == "" {
				return false
			}
			return name == viewer.DisplayName ||
				strings.Contains(name, viewer.DisplayName) ||
				strings.Contains(viewer.DisplayName, name)
		},
	},
	{
		name: "temp_post",
		match: func(post aley.Post, _ session.Identity) bool {
			return strings.HasPrefix(post.PostID, TempPostPrefix)
		},
	},
}

// ClassifyOwnership decides whether the viewer authored the post and
// stamps ResolvedIsOwn. It returns the matched rule name for logging, or
// "" when no rule matched.
func ClassifyOwnership(record *PostRecord, viewer session.Identity) string {
	for _, rule := range ownershipRules {
		if rule.match(record.Post, viewer) {
			record.ResolvedIsOwn = true
			return rule.name
		}
	}
	record.ResolvedIsOwn = false
	return ""
}
