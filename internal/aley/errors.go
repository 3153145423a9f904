package aley

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when an authenticated call comes back 401.
// The client has already cleared the stored session by the time callers
// see this error.
var ErrSessionExpired = errors.New("session expired")

// ErrNotAuthenticated is returned when an operation requires a token and
// the session has none.
var ErrNotAuthenticated = errors.New("user not authenticated")

// CodeRequestAlreadySent is the backend error code on a 409 when a friend
// request to the same recipient is already pending.
const CodeRequestAlreadySent = "REQUEST_ALREADY_SENT"

// APIError is a non-2xx backend response. RequestID is populated for 409
// conflicts that reference an existing friend request.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("aley: %s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("aley: %s (%d)", e.Message, e.Status)
}

// IsConflict reports whether err is a 409 for an already-sent friend
// request, returning the conflicting request id when the backend included
// one.
func IsConflict(err error) (requestID string, ok bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == 409 && apiErr.Code == CodeRequestAlreadySent {
		return apiErr.RequestID, true
	}
	return "", false
}
