package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// Booking is the aggregate root for the booking domain. Only its status
// changes after creation.
type Booking struct {
	id       uuid.UUID
	itemID   uuid.UUID
	bookerID uuid.UUID
	start    time.Time
	end      time.Time
	status   BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking with status WAITING. The window must end
// strictly after it starts and must not start before now.
func NewBooking(itemID, bookerID uuid.UUID, start, end, now time.Time) (*Booking, error) {
	if itemID == uuid.Nil {
		return nil, domain.NewValidationError("item ID is required")
	}
	if bookerID == uuid.Nil {
		return nil, domain.NewValidationError("booker ID is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, domain.NewValidationError("start and end are required")
	}
	if !end.After(start) {
		return nil, domain.NewValidationError("booking end must be after start")
	}
	if start.Before(now) {
		return nil, domain.NewValidationError("booking start must not be in the past")
	}

	now = now.UTC()
	return &Booking{
		id:        uuid.New(),
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start.UTC(),
		end:       end.UTC(),
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, itemID, bookerID uuid.UUID,
	start, end time.Time,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ItemID returns the booked item's identifier.
func (b *Booking) ItemID() uuid.UUID { return b.itemID }

// BookerID returns the identifier of the user who requested the booking.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

// Start returns the start of the booking window.
func (b *Booking) Start() time.Time { return b.start }

// End returns the end of the booking window.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsBookedBy reports whether userID requested this booking.
func (b *Booking) IsBookedBy(userID uuid.UUID) bool {
	return b.bookerID == userID
}

// Decide records the owner's decision on a waiting booking.
func (b *Booking) Decide(approved bool, now time.Time) error {
	target := StatusRejected
	if approved {
		target = StatusApproved
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewValidationError("booking status has already been decided: " + b.status.String())
	}
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
