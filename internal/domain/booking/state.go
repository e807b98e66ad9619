package booking

import (
	"strings"

	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// State is a query-time category of a user's bookings. It is never stored.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// States lists every State in a stable order.
var States = []State{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// IsValid returns true if the state is one of the known categories.
func (s State) IsValid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

func (s State) String() string { return string(s) }

// ParseState converts a request parameter to a State. Matching is
// case-insensitive and an empty string means ALL.
func ParseState(raw string) (State, error) {
	if strings.TrimSpace(raw) == "" {
		return StateAll, nil
	}
	s := State(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", domain.NewValidationError("Unknown state: " + raw)
	}
	return s, nil
}

// Role says from whose side a user's bookings are listed.
type Role string

const (
	RoleBooker Role = "booker"
	RoleOwner  Role = "owner"
)
