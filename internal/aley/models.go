package aley

import (
	"encoding/json"
	"strings"
)

// Privacy is the per-post visibility tier declared by the author.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyFriends Privacy = "friends"
	PrivacyPrivate Privacy = "private"
)

// Author is the post author as the backend sends it. Different endpoints
// populate different subsets of the id fields, so ownership checks have
// to try all three.
type Author struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	AltID  string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// IDs returns the author id fields in match precedence order.
func (a Author) IDs() []string {
	return []string{a.ID, a.UserID, a.AltID}
}

// Media is a normalized post attachment.
type Media struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Emotion is the optional feeling tag on a post.
type Emotion struct {
	Emoji string `json:"emoji"`
	Name  string `json:"name"`
}

// Post is a feed entry after wire normalization.
type Post struct {
	PostID        string   `json:"post_id"`
	Content       string   `json:"content"`
	CreatedAt     string   `json:"created_at"`
	Privacy       Privacy  `json:"privacy"`
	Author        Author   `json:"author"`
	Media         []Media  `json:"media"`
	Emotion       *Emotion `json:"emotion,omitempty"`
	Location      string   `json:"location,omitempty"`
	LikesCount    int      `json:"likes_count"`
	CommentsCount int      `json:"comments_count"`
	SharesCount   int      `json:"shares_count"`
	IsLiked       bool     `json:"is_liked"`
	// IsOwnPost is an advisory hint from the backend, not authoritative.
	IsOwnPost bool `json:"is_own_post"`
}

// User is a backend user record.
type User struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"profile-bio,omitempty"`
}

// FriendshipStatus is the backend's answer for a viewer/counterpart pair.
type FriendshipStatus struct {
	Status       string `json:"status"`
	RequestID    string `json:"request_id,omitempty"`
	FriendshipID string `json:"friendship_id,omitempty"`
}

// FriendRequest is one entry of the sent or received request lists. Sent
// entries carry the recipient, received entries the sender.
type FriendRequest struct {
	RequestID string `json:"request_id"`
	Sender    User   `json:"sender"`
	Recipient User   `json:"recipient"`
	CreatedAt string `json:"created_at"`
}

// Friend is one entry of the viewer's friends list.
type Friend struct {
	FriendshipID string `json:"friendship_id"`
	User         User   `json:"user"`
}

// postWire tolerates every field spelling the backend has been seen to
// use; toPost collapses the aliases.
type postWire struct {
	PostID        string          `json:"post_id"`
	ID            string          `json:"id"`
	AltID         string          `json:"_id"`
	Content       string          `json:"content"`
	CreatedAt     string          `json:"created_at"`
	CreatedAtAlt  string          `json:"createdAt"`
	Privacy       string          `json:"privacy"`
	Visibility    string          `json:"visibility"`
	Author        authorWire      `json:"author"`
	Media         []json.RawMessage `json:"media"`
	Emotion       *Emotion        `json:"emotion"`
	Location      string          `json:"location"`
	LikesCount    int             `json:"likes_count"`
	LikeCount     int             `json:"likeCount"`
	CommentsCount int             `json:"comments_count"`
	CommentCount  int             `json:"commentCount"`
	SharesCount   int             `json:"shares_count"`
	ShareCount    int             `json:"shareCount"`
	IsLiked       bool            `json:"is_liked"`
	IsLikedAlt    bool            `json:"isLiked"`
	IsOwnPost     bool            `json:"is_own_post"`
}

type authorWire struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	AltID    string `json:"_id"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type mediaWire struct {
	ID        string `json:"id"`
	AltID     string `json:"_id"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	Thumbnail string `json:"thumbnail"`
}

func (w postWire) toPost(baseURL string) Post {
	p := Post{
		PostID:        firstNonEmpty(w.PostID, w.ID, w.AltID),
		Content:       w.Content,
		CreatedAt:     firstNonEmpty(w.CreatedAt, w.CreatedAtAlt),
		Privacy:       Privacy(firstNonEmpty(w.Visibility, w.Privacy)),
		Location:      w.Location,
		Emotion:       w.Emotion,
		LikesCount:    maxInt(w.LikesCount, w.LikeCount),
		CommentsCount: maxInt(w.CommentsCount, w.CommentCount),
		SharesCount:   maxInt(w.SharesCount, w.ShareCount),
		IsLiked:       w.IsLiked || w.IsLikedAlt,
		IsOwnPost:     w.IsOwnPost,
	}
	authorID := firstNonEmpty(w.Author.ID, w.Author.UserID, w.Author.AltID)
	p.Author = Author{
		ID:     authorID,
		UserID: firstNonEmpty(w.Author.UserID, authorID),
		AltID:  firstNonEmpty(w.Author.AltID, authorID),
		Name:   firstNonEmpty(w.Author.Name, w.Author.FullName),
		Email:  firstNonEmpty(w.Author.Email, w.Author.Username),
		Avatar: w.Author.Avatar,
	}
	for _, raw := range w.Media {
		if m, ok := normalizeMedia(raw, baseURL); ok {
			p.Media = append(p.Media, m)
		}
	}
	return p
}

// normalizeMedia accepts either a bare media id string or a partially
// populated object and produces an entry with a resolvable URL.
func normalizeMedia(raw json.RawMessage, baseURL string) (Media, bool) {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		if id == "" {
			return Media{}, false
		}
		return Media{ID: id, URL: baseURL + "/media/" + id, Type: GuessMediaType(id)}, true
	}

	var m mediaWire
	if err := json.Unmarshal(raw, &m); err != nil {
		return Media{}, false
	}
	mediaID := firstNonEmpty(m.ID, m.AltID)
	url := m.URL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		if mediaID == "" {
			return Media{}, false
		}
		url = baseURL + "/media/" + mediaID
	}
	mediaType := m.Type
	if mediaType == "" {
		mediaType = GuessMediaType(firstNonEmpty(mediaID, url))
	}
	return Media{ID: mediaID, URL: url, Type: mediaType, Thumbnail: m.Thumbnail}, true
}

// GuessMediaType infers image/video/audio from a filename or id,
// defaulting to image.
func GuessMediaType(name string) string {
	lower := strings.ToLower(name)
	if dot := strings.LastIndex(lower, "."); dot >= 0 {
		switch lower[dot+1:] {
		case "jpg", "jpeg", "png", "gif", "webp", "bmp":
			return "image"
		case "mp4", "webm", "mov", "avi":
			return "video"
		case "mp3", "wav", "ogg", "aac":
			return "audio"
		}
	}
	switch {
	case strings.Contains(lower, "video"):
		return "video"
	case strings.Contains(lower, "audio"):
		return "audio"
	default:
		return "image"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
