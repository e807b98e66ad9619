package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit-go/shareit/internal/domain/booking"
	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// fallbackPolicy decides what a listing returns when no query is registered
// for the requested (role, state) pair.
type fallbackPolicy int

const (
	fallbackError fallbackPolicy = iota
	fallbackEmpty
)

// stateFallbacks is the per-state policy for unregistered pairs.
var stateFallbacks = map[bookingDomain.State]fallbackPolicy{
	bookingDomain.StateAll:      fallbackError,
	bookingDomain.StateCurrent:  fallbackError,
	bookingDomain.StatePast:     fallbackError,
	bookingDomain.StateFuture:   fallbackEmpty,
	bookingDomain.StateWaiting:  fallbackError,
	bookingDomain.StateRejected: fallbackEmpty,
}

// statePredicates narrows role-scoped criteria to one state at time now.
var statePredicates = map[bookingDomain.State]func(c bookingDomain.Criteria, now time.Time) bookingDomain.Criteria{
	bookingDomain.StateAll: func(c bookingDomain.Criteria, _ time.Time) bookingDomain.Criteria {
		return c
	},
	bookingDomain.StateCurrent: func(c bookingDomain.Criteria, now time.Time) bookingDomain.Criteria {
		c.StartAtOrBefore = &now
		c.EndAfter = &now
		return c
	},
	bookingDomain.StatePast: func(c bookingDomain.Criteria, now time.Time) bookingDomain.Criteria {
		c.EndBefore = &now
		return c.WithStatus(bookingDomain.StatusApproved)
	},
	bookingDomain.StateFuture: func(c bookingDomain.Criteria, now time.Time) bookingDomain.Criteria {
		c.StartAfter = &now
		return c
	},
	bookingDomain.StateWaiting: func(c bookingDomain.Criteria, _ time.Time) bookingDomain.Criteria {
		return c.WithStatus(bookingDomain.StatusWaiting)
	},
	bookingDomain.StateRejected: func(c bookingDomain.Criteria, _ time.Time) bookingDomain.Criteria {
		return c.WithStatus(bookingDomain.StatusRejected)
	},
}

type stateKey struct {
	role  bookingDomain.Role
	state bookingDomain.State
}

type criteriaBuilder func(userID uuid.UUID, now time.Time) bookingDomain.Criteria

// defaultStateQueries registers every state for both roles.
func defaultStateQueries() map[stateKey]criteriaBuilder {
	roles := map[bookingDomain.Role]func(uuid.UUID) bookingDomain.Criteria{
		bookingDomain.RoleBooker: bookingDomain.ForBooker,
		bookingDomain.RoleOwner:  bookingDomain.ForOwner,
	}

	queries := make(map[stateKey]criteriaBuilder, len(roles)*len(bookingDomain.States))
	for role, scope := range roles {
		for _, state := range bookingDomain.States {
			scope, narrow := scope, statePredicates[state]
			queries[stateKey{role: role, state: state}] = func(userID uuid.UUID, now time.Time) bookingDomain.Criteria {
				return narrow(scope(userID), now)
			}
		}
	}
	return queries
}

// StateFilter lists a user's bookings by state category through a static
// dispatch table keyed by role and state. Results are ordered by start time,
// newest first, and paged by the repository after filtering.
type StateFilter struct {
	repo    bookingDomain.BookingRepository
	clock   bookingDomain.Clock
	queries map[stateKey]criteriaBuilder
}

// NewStateFilter creates a StateFilter with every role and state registered.
func NewStateFilter(repo bookingDomain.BookingRepository, clock bookingDomain.Clock) *StateFilter {
	return newStateFilter(repo, clock, defaultStateQueries())
}

func newStateFilter(repo bookingDomain.BookingRepository, clock bookingDomain.Clock, queries map[stateKey]criteriaBuilder) *StateFilter {
	return &StateFilter{repo: repo, clock: clock, queries: queries}
}

// Find returns the bookings of userID, seen from role, that fall into state.
func (f *StateFilter) Find(
	ctx context.Context,
	role bookingDomain.Role,
	userID uuid.UUID,
	state bookingDomain.State,
	page domain.Page,
) ([]*bookingDomain.Booking, error) {
	criteria, ok, err := f.criteria(role, userID, state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*bookingDomain.Booking{}, nil
	}
	return f.repo.FindByCriteria(ctx, criteria.WithPage(page))
}

// criteria resolves the query for (role, state). ok is false when the
// unregistered pair falls back to an empty result.
func (f *StateFilter) criteria(role bookingDomain.Role, userID uuid.UUID, state bookingDomain.State) (bookingDomain.Criteria, bool, error) {
	if !state.IsValid() {
		return bookingDomain.Criteria{}, false, domain.NewValidationError("Unknown state: " + state.String())
	}

	build, registered := f.queries[stateKey{role: role, state: state}]
	if !registered {
		if stateFallbacks[state] == fallbackEmpty {
			return bookingDomain.Criteria{}, false, nil
		}
		return bookingDomain.Criteria{}, false, domain.NewValidationError("Unknown state: " + state.String())
	}
	return build(userID, f.clock.Now()), true, nil
}
