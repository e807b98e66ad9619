package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// Criteria selects bookings for a listing query. Results are always ordered
// by start time, newest first. Nil fields do not filter.
type Criteria struct {
	Role   Role
	UserID uuid.UUID
	ItemID *uuid.UUID
	Status *BookingStatus

	StartAtOrBefore *time.Time
	StartAfter      *time.Time
	EndAfter        *time.Time
	EndBefore       *time.Time

	Page domain.Page
}

// ForBooker returns criteria over the bookings userID requested.
func ForBooker(userID uuid.UUID) Criteria {
	return Criteria{Role: RoleBooker, UserID: userID}
}

// ForOwner returns criteria over the bookings of items userID owns.
func ForOwner(userID uuid.UUID) Criteria {
	return Criteria{Role: RoleOwner, UserID: userID}
}

// WithStatus narrows the criteria to one status.
func (c Criteria) WithStatus(status BookingStatus) Criteria {
	c.Status = &status
	return c
}

// WithItem narrows the criteria to one item.
func (c Criteria) WithItem(itemID uuid.UUID) Criteria {
	c.ItemID = &itemID
	return c
}

// WithPage sets the page window.
func (c Criteria) WithPage(page domain.Page) Criteria {
	c.Page = page
	return c
}
