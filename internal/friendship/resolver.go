// Package friendship resolves the relationship between the viewer and
// another user. The backend does not expose one reliable "are these two
// related" endpoint across environments, so the resolver walks an ordered
// cascade of probes, each independently fault-tolerant: a failing probe
// means "try the next one", never a failed resolution.
package friendship

import (
	"context"
	"log/slog"
	"time"

	"client-aley/internal/aley"
)

const defaultPageLimit = 100

// API is the slice of the backend client the resolver needs.
type API interface {
	Ping(ctx context.Context) error
	FriendshipStatusByID(ctx context.Context, userID string) (aley.FriendshipStatus, error)
	SentRequests(ctx context.Context, page, limit int) ([]aley.FriendRequest, error)
	ReceivedRequests(ctx context.Context, page, limit int) ([]aley.FriendRequest, error)
	Friends(ctx context.Context, page, limit int) ([]aley.Friend, error)
	Suggestions(ctx context.Context, page, limit int, search string) ([]aley.User, error)
	CheckFriend(ctx context.Context, userID string) (aley.FriendshipStatus, error)
}

// Overrides are the static allow-lists consulted before and instead of
// the network: pre-seeded demo relationships and the degraded answer set
// used when the backend is unreachable.
type Overrides struct {
	Friends         []string
	PendingSent     []string
	PendingReceived []string
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type Resolver struct {
	api          API
	overrides    Overrides
	probeTimeout time.Duration
	pageLimit    int
	log          *slog.Logger
}

// NewResolver builds a resolver. probeTimeout bounds each individual
// probe; zero means 5 seconds. pageLimit is the page size for the list
// scans; non-positive means 100.
func NewResolver(api API, overrides Overrides, probeTimeout time.Duration, pageLimit int) *Resolver {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}
	return &Resolver{
		api:          api,
		overrides:    overrides,
		probeTimeout: probeTimeout,
		pageLimit:    pageLimit,
		log:          slog.Default(),
	}
}

// probe is one step of the cascade. A nil status with a nil error means
// "inconclusive, keep going"; an error is logged and treated the same.
type probe struct {
	name string
	run  func(ctx context.Context, counterpartID string) (*Status, error)
}

// Resolve determines the friendship state for counterpartID. It never
// fails: every degradation path ends in a definite Status, ultimately
// not_friends. Nothing is cached; calling twice re-resolves.
func (r *Resolver) Resolve(ctx context.Context, counterpartID string) (status Status) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("friendship resolution panicked", "counterpart", counterpartID, "panic", rec)
			// One more look at the static overrides before giving up.
			if contains(r.overrides.Friends, counterpartID) {
				status = Status{State: StateFriends, CounterpartUserID: counterpartID}
				return
			}
			status = Status{State: StateNotFriends, CounterpartUserID: counterpartID}
		}
	}()

	if contains(r.overrides.Friends, counterpartID) {
		return Status{State: StateFriends, CounterpartUserID: counterpartID}
	}

	// Reachability preflight. A transport-level failure here means every
	// network probe would fail the same way, so fall back to the static
	// pending lists instead of burning six timeouts.
	if err := r.runProbeless(ctx, r.api.Ping); err != nil {
		r.log.Debug("backend unreachable, using static fallback", "error", err)
		return r.staticFallback(counterpartID)
	}

	for _, p := range r.probes() {
		probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
		result, err := p.run(probeCtx, counterpartID)
		cancel()
		if err != nil {
			r.log.Debug("friendship probe failed", "probe", p.name, "counterpart", counterpartID, "error", err)
			continue
		}
		if result != nil {
			result.CounterpartUserID = counterpartID
			return *result
		}
	}
	return Status{State: StateNotFriends, CounterpartUserID: counterpartID}
}

func (r *Resolver) runProbeless(ctx context.Context, fn func(context.Context) error) error {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()
	return fn(probeCtx)
}

func (r *Resolver) staticFallback(counterpartID string) Status {
	switch {
	case contains(r.overrides.PendingSent, counterpartID):
		return Status{State: StatePendingSent, CounterpartUserID: counterpartID}
	case contains(r.overrides.PendingReceived, counterpartID):
		return Status{State: StatePendingReceived, CounterpartUserID: counterpartID}
	default:
		return Status{State: StateNotFriends, CounterpartUserID: counterpartID}
	}
}

// probes returns the cascade in precedence order. Each step only runs
// when every earlier step was inconclusive.
func (r *Resolver) probes() []probe {
	return []probe{
		{"status_endpoint", r.probeStatusEndpoint},
		{"sent_requests", r.probeSentRequests},
		{"received_requests", r.probeReceivedRequests},
		{"friends_list", r.probeFriendsList},
		{"suggestions", r.probeSuggestions},
		{"direct_check", r.probeDirectCheck},
	}
}

func (r *Resolver) probeStatusEndpoint(ctx context.Context, counterpartID string) (*Status, error) {
	payload, err := r.api.FriendshipStatusByID(ctx, counterpartID)
	if err != nil {
		return nil, err
	}
	return statusFromPayload(payload), nil
}

func (r *Resolver) probeSentRequests(ctx context.Context, counterpartID string) (*Status, error) {
	requests, err := r.api.SentRequests(ctx, 1, r.pageLimit)
	if err != nil {
		return nil, err
	}
	for _, req := range requests {
		if req.Recipient.UserID == counterpartID {
			return &Status{State: StatePendingSent, RelationID: req.RequestID}, nil
		}
	}
	return nil, nil
}

func (r *Resolver) probeReceivedRequests(ctx context.Context, counterpartID string) (*Status, error) {
	requests, err := r.api.ReceivedRequests(ctx, 1, r.pageLimit)
	if err != nil {
		return nil, err
	}
	for _, req := range requests {
		if req.Sender.UserID == counterpartID {
			return &Status{State: StatePendingReceived, RelationID: req.RequestID}, nil
		}
	}
	return nil, nil
}

func (r *Resolver) probeFriendsList(ctx context.Context, counterpartID string) (*Status, error) {
	friends, err := r.api.Friends(ctx, 1, r.pageLimit)
	if err != nil {
		return nil, err
	}
	for _, friend := range friends {
		if friend.User.UserID == counterpartID {
			return &Status{State: StateFriends, RelationID: friend.FriendshipID}, nil
		}
	}
	return nil, nil
}

func (r *Resolver) probeSuggestions(ctx context.Context, counterpartID string) (*Status, error) {
	users, err := r.api.Suggestions(ctx, 1, r.pageLimit, "")
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.UserID == counterpartID {
			// Suggestions only list non-friends, so presence here is a
			// conclusive answer.
			return &Status{State: StateNotFriends}, nil
		}
	}
	return nil, nil
}

func (r *Resolver) probeDirectCheck(ctx context.Context, counterpartID string) (*Status, error) {
	payload, err := r.api.CheckFriend(ctx, counterpartID)
	if err != nil {
		return nil, err
	}
	return statusFromPayload(payload), nil
}

func statusFromPayload(payload aley.FriendshipStatus) *Status {
	state, ok := knownState(payload.Status)
	if !ok {
		return nil
	}
	relation := payload.FriendshipID
	if relation == "" {
		relation = payload.RequestID
	}
	return &Status{State: state, RelationID: relation}
}
