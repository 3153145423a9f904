package friendship

// State is the relationship between the viewer and a counterpart user.
type State string

const (
	StateFriends         State = "friends"
	StatePendingSent     State = "pending_sent"
	StatePendingReceived State = "pending_received"
	StateNotFriends      State = "not_friends"
)

// Status is the resolved relationship for one counterpart. RelationID is
// the friendship or request id needed for cancel/accept/unfriend actions,
// when one is known.
type Status struct {
	State             State
	CounterpartUserID string
	RelationID        string
}

// knownState maps a backend status string to a State, reporting whether
// the payload was conclusive.
func knownState(s string) (State, bool) {
	switch State(s) {
	case StateFriends, StatePendingSent, StatePendingReceived, StateNotFriends:
		return State(s), true
	default:
		return "", false
	}
}
