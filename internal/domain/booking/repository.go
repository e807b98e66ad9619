package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByCriteria retrieves the bookings matching c, ordered by start time descending,
	// then cut to c.Page.
	FindByCriteria(ctx context.Context, c Criteria) ([]*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// UpdateStatus persists a status decision. The write only succeeds if the stored
	// booking is still WAITING at the version preceding booking.Version().
	UpdateStatus(ctx context.Context, booking *Booking) error
}
