package aley

import (
	"context"
	"net/http"
	"net/url"

	"client-aley/internal/session"
)

func sessionIdentity(u User) session.Identity {
	return session.Identity{
		UserID:      u.UserID,
		Email:       u.Email,
		DisplayName: u.FullName,
		AvatarURL:   u.Avatar,
	}
}

// Me returns the authenticated viewer's profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user, true)
	return user, err
}

// UserByID returns a user's public profile.
func (c *Client) UserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/users/"+userID, nil, nil, &user, false)
	return user, err
}

// UpdateProfile sends the given profile fields and persists the refreshed
// display data in the session store.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (User, error) {
	// The backend only understands the "profile-bio" spelling.
	if bio, found := fields["profileBio"]; found {
		fields["profile-bio"] = bio
		delete(fields, "profileBio")
	}

	var user User
	if err := c.do(ctx, http.MethodPut, "/users/update", nil, fields, &user, true); err != nil {
		return User{}, err
	}
	_ = c.store.SetViewer(sessionIdentity(user))
	return user, nil
}

// SearchUsers runs a paged name/email search.
func (c *Client) SearchUsers(ctx context.Context, query string, page, limit int) ([]User, error) {
	q := pageQuery(page, limit)
	q.Set("query", query)
	return c.userList(ctx, "/users/search", q)
}

// ListUsers returns a page of all users.
func (c *Client) ListUsers(ctx context.Context, page, limit int) ([]User, error) {
	return c.userList(ctx, "/users/list", pageQuery(page, limit))
}

func (c *Client) userList(ctx context.Context, path string, q url.Values) ([]User, error) {
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, path, q, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Users, nil
}
