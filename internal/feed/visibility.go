package feed

import (
	"client-aley/internal/aley"
	"client-aley/internal/session"
)

// IsVisible decides whether a classified post is included in a rendered
// feed. ClassifyOwnership must have run first; the viewer always sees
// their own posts regardless of tier.
func IsVisible(record PostRecord, viewer session.Identity) bool {
	if record.ResolvedIsOwn {
		return true
	}
	switch record.Privacy {
	case aley.PrivacyPublic:
		return true
	case aley.PrivacyFriends:
		// The authenticated feed endpoint is assumed to have already
		// filtered friends-tier content server-side, so being logged in
		// stands in for being a friend of the author here. The client
		// does not verify the friendship independently.
		return viewer.Authenticated()
	case aley.PrivacyPrivate:
		return false
	default:
		// Unknown tier: fail closed.
		return false
	}
}
