// Package feed turns raw backend post batches into the render set: every
// post is classified for ownership, then pruned by the visibility rules,
// and only then are friendship affordances resolved for what survived.
// That ordering is a guarantee callers rely on.
package feed

import (
	"context"
	"log/slog"

	"client-aley/internal/aley"
	"client-aley/internal/friendship"
	"client-aley/internal/session"
)

// PostAPI is the slice of the backend client the feed needs.
type PostAPI interface {
	Feed(ctx context.Context, page, limit int) ([]aley.Post, error)
	PublicPosts(ctx context.Context, page, limit int) ([]aley.Post, error)
	ToggleLike(ctx context.Context, postID string) error
}

// ViewerSource reads the persisted viewer identity.
type ViewerSource interface {
	Viewer() (session.Identity, error)
}

// StatusResolver resolves the friendship state for a post author.
type StatusResolver interface {
	Resolve(ctx context.Context, counterpartID string) friendship.Status
}

type Service struct {
	api      PostAPI
	viewers  ViewerSource
	resolver StatusResolver
	log      *slog.Logger
}

func NewService(api PostAPI, viewers ViewerSource, resolver StatusResolver) *Service {
	return &Service{
		api:      api,
		viewers:  viewers,
		resolver: resolver,
		log:      slog.Default(),
	}
}

// Load fetches one feed page and returns the renderable set. The batch
// replaces any previous one wholesale; there is no incremental diffing.
// Authenticated viewers get the personal feed endpoint, everyone else the
// public listing.
func (s *Service) Load(ctx context.Context, page, limit int) ([]PostRecord, error) {
	viewer, err := s.viewers.Viewer()
	if err != nil {
		return nil, err
	}

	var posts []aley.Post
	if viewer.Authenticated() {
		posts, err = s.api.Feed(ctx, page, limit)
	} else {
		posts, err = s.api.PublicPosts(ctx, page, limit)
	}
	if err != nil {
		return nil, err
	}

	records := make([]PostRecord, 0, len(posts))
	for _, post := range posts {
		record := PostRecord{Post: post}
		if rule := ClassifyOwnership(&record, viewer); rule != "" {
			s.log.Debug("post classified as own", "post", record.PostID, "rule", rule)
		}
		if !IsVisible(record, viewer) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// AuthorStatuses resolves the friendship state for each distinct non-own
// author in records, one resolution per author, and stamps
// ResolvedIsFriendAuthor on the way. A failed resolution just means no
// affordance for that author; the feed render never fails because of it.
func (s *Service) AuthorStatuses(ctx context.Context, records []PostRecord) map[string]friendship.Status {
	statuses := make(map[string]friendship.Status)
	for i := range records {
		if records[i].ResolvedIsOwn {
			continue
		}
		authorID := records[i].AuthorID()
		if authorID == "" {
			continue
		}
		status, seen := statuses[authorID]
		if !seen {
			status = s.resolver.Resolve(ctx, authorID)
			statuses[authorID] = status
		}
		records[i].ResolvedIsFriendAuthor = status.State == friendship.StateFriends
	}
	return statuses
}

// OfferFriendRequest reports whether an "add friend" affordance should be
// rendered next to a post, given its author's resolved status.
func OfferFriendRequest(record PostRecord, status friendship.Status) bool {
	if record.ResolvedIsOwn {
		return false
	}
	return status.State == friendship.StateNotFriends
}

// ToggleLike applies a like optimistically: the record is flipped first
// and rolled back if the backend call fails.
func (s *Service) ToggleLike(ctx context.Context, record *PostRecord) error {
	wasLiked, count := record.IsLiked, record.LikesCount
	record.IsLiked = !record.IsLiked
	if record.IsLiked {
		record.LikesCount++
	} else if record.LikesCount > 0 {
		record.LikesCount--
	}

	if err := s.api.ToggleLike(ctx, record.PostID); err != nil {
		// Restore the exact pre-toggle state rather than re-deriving it.
		record.IsLiked, record.LikesCount = wasLiked, count
		return err
	}
	return nil
}
