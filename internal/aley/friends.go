package aley

import (
	"context"
	"net/http"
)

// FriendshipStatusByID asks the dedicated status endpoint for the
// relationship between the viewer and userID.
func (c *Client) FriendshipStatusByID(ctx context.Context, userID string) (FriendshipStatus, error) {
	var status FriendshipStatus
	err := c.do(ctx, http.MethodGet, "/friends/status/"+userID, nil, nil, &status, true)
	return status, err
}

// CheckFriend is the last-resort direct lookup used when the status
// endpoint and the list scans were all inconclusive.
func (c *Client) CheckFriend(ctx context.Context, userID string) (FriendshipStatus, error) {
	var status FriendshipStatus
	err := c.do(ctx, http.MethodGet, "/friends/check/"+userID, nil, nil, &status, true)
	return status, err
}

// SendResult is the outcome of SendFriendRequest. WasAutoAccepted is set
// when the recipient already had a pending request to the viewer and the
// backend answered 200 by turning both into a friendship.
type SendResult struct {
	RequestID       string `json:"request_id"`
	WasAutoAccepted bool   `json:"-"`
}

// SendFriendRequest sends a friend request. A 409 with the
// REQUEST_ALREADY_SENT code is returned as an *APIError carrying the
// conflicting request id (see IsConflict).
func (c *Client) SendFriendRequest(ctx context.Context, recipientID string) (SendResult, error) {
	token := c.token()
	if token == "" {
		return SendResult{}, ErrNotAuthenticated
	}
	body := map[string]string{"recipient_id": recipientID}

	// Status matters here: 200 means the reverse pending request was
	// auto-accepted, 201 is a plain new request.
	var result SendResult
	status, err := c.doStatus(ctx, http.MethodPost, "/friends/requests", body, &result)
	if err != nil {
		return SendResult{}, err
	}
	result.WasAutoAccepted = status == http.StatusOK
	return result, nil
}

// CancelFriendRequest cancels a request the viewer sent.
func (c *Client) CancelFriendRequest(ctx context.Context, requestID string) error {
	return c.do(ctx, http.MethodDelete, "/friends/requests/"+requestID, nil, nil, nil, true)
}

// AcceptFriendRequest accepts a request the viewer received.
func (c *Client) AcceptFriendRequest(ctx context.Context, requestID string) error {
	return c.do(ctx, http.MethodPost, "/friends/requests/"+requestID+"/accept", nil, nil, nil, true)
}

// Unfriend removes an existing friendship.
func (c *Client) Unfriend(ctx context.Context, friendID string) error {
	return c.do(ctx, http.MethodDelete, "/friends/"+friendID, nil, nil, nil, true)
}

// SentRequests lists friend requests the viewer sent.
func (c *Client) SentRequests(ctx context.Context, page, limit int) ([]FriendRequest, error) {
	return c.requestList(ctx, "/friends/requests/sent", page, limit)
}

// ReceivedRequests lists friend requests the viewer received.
func (c *Client) ReceivedRequests(ctx context.Context, page, limit int) ([]FriendRequest, error) {
	return c.requestList(ctx, "/friends/requests/received", page, limit)
}

// Friends lists the viewer's friends.
func (c *Client) Friends(ctx context.Context, page, limit int) ([]Friend, error) {
	var resp struct {
		Friends []Friend `json:"friends"`
	}
	if err := c.do(ctx, http.MethodGet, "/friends/list", pageQuery(page, limit), nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Friends, nil
}

// Suggestions lists suggested (non-friend) users, optionally filtered by
// a search term.
func (c *Client) Suggestions(ctx context.Context, page, limit int, search string) ([]User, error) {
	q := pageQuery(page, limit)
	if search != "" {
		q.Set("search", search)
	}
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/friends/suggestions", q, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) requestList(ctx context.Context, path string, page, limit int) ([]FriendRequest, error) {
	var resp struct {
		Requests []FriendRequest `json:"requests"`
	}
	if err := c.do(ctx, http.MethodGet, path, pageQuery(page, limit), nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}
