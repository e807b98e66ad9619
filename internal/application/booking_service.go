package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit-go/shareit/internal/domain/booking"
	itemDomain "github.com/shareit-go/shareit/internal/domain/item"
	userDomain "github.com/shareit-go/shareit/internal/domain/user"
	"github.com/shareit-go/shareit/internal/events"
	"github.com/shareit-go/shareit/internal/metrics"
	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// UserDirectory resolves users by id, failing with NotFound when absent.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

// ItemCatalog resolves items by id, failing with NotFound when absent.
type ItemCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error)
}

// CreateBookingRequest holds the data needed to request a booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	BookerID  uuid.UUID `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	items     ItemCatalog
	users     UserDirectory
	filter    *StateFilter
	clock     bookingDomain.Clock
	publisher *events.Publisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. publisher may be nil.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	items ItemCatalog,
	users UserDirectory,
	clock bookingDomain.Clock,
	publisher *events.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		items:     items,
		users:     users,
		filter:    NewStateFilter(repo, clock),
		clock:     clock,
		publisher: publisher,
		logger:    logger,
	}
}

// GetBooking returns a booking visible to userID. Bookings the caller neither
// requested nor owns the item of are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !bk.IsBookedBy(userID) {
		owns, err := s.ownsItem(ctx, userID, bk.ItemID())
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, domain.NewNotFoundError("Booking", bookingID.String())
		}
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// CreateBooking requests req.ItemID for the window [req.Start, req.End) on behalf of userID.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	now := s.clock.Now()
	if !req.End.After(req.Start) {
		return nil, domain.NewValidationError("booking end must be after start")
	}
	if req.Start.Before(now) {
		return nil, domain.NewValidationError("booking start must not be in the past")
	}

	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !it.Available() {
		return nil, domain.NewValidationError("item is not available for booking: " + it.ID().String())
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	// Owners cannot book their own items; the item is hidden from them.
	if it.IsOwnedBy(userID) {
		return nil, domain.NewNotFoundError("Item", it.ID().String())
	}

	bk, err := bookingDomain.NewBooking(it.ID(), userID, req.Start, req.End, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", it.ID().String()),
		zap.String("booker_id", userID.String()),
	)
	metrics.IncBookingCreated()

	s.publisher.Publish(ctx, events.BookingCreated, bk.ID().String(), events.BookingCreatedEvent{
		BookingID:  bk.ID(),
		ItemID:     it.ID(),
		BookerID:   userID,
		OwnerID:    it.OwnerID(),
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// DecideBooking approves or rejects a waiting booking. Only the item's owner
// may decide; anyone else gets not found. The write is conditional on the
// booking still waiting, so of two racing decisions exactly one succeeds.
func (s *BookingService) DecideBooking(ctx context.Context, userID, bookingID uuid.UUID, approved bool) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("Booking", bookingID.String())
		}
		return nil, err
	}
	if !it.IsOwnedBy(userID) {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	now := s.clock.Now()
	if err := bk.Decide(approved, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.UpdateStatus(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking decided",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
	)
	metrics.IncBookingDecision(bk.Status().String())

	eventType := events.BookingRejected
	if approved {
		eventType = events.BookingApproved
	}
	s.publisher.Publish(ctx, eventType, bk.ID().String(), events.BookingDecidedEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		BookerID:   bk.BookerID(),
		OwnerID:    it.OwnerID(),
		Status:     bk.Status().String(),
		OccurredAt: now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookerBookings lists the bookings userID requested that fall into state.
func (s *BookingService) GetBookerBookings(ctx context.Context, userID uuid.UUID, state bookingDomain.State, page domain.Page) ([]BookingDTO, error) {
	return s.listBookings(ctx, bookingDomain.RoleBooker, userID, state, page)
}

// GetOwnerBookings lists the bookings of items userID owns that fall into state.
func (s *BookingService) GetOwnerBookings(ctx context.Context, userID uuid.UUID, state bookingDomain.State, page domain.Page) ([]BookingDTO, error) {
	return s.listBookings(ctx, bookingDomain.RoleOwner, userID, state, page)
}

// HasPastBooking reports whether bookerID has an approved booking of itemID
// that has already ended.
func (s *BookingService) HasPastBooking(ctx context.Context, bookerID, itemID uuid.UUID) (bool, error) {
	criteria, _, err := s.filter.criteria(bookingDomain.RoleBooker, bookerID, bookingDomain.StatePast)
	if err != nil {
		return false, err
	}

	bookings, err := s.repo.FindByCriteria(ctx, criteria.WithItem(itemID).WithPage(domain.Page{Size: 1}))
	if err != nil {
		return false, err
	}
	return len(bookings) > 0, nil
}

func (s *BookingService) listBookings(
	ctx context.Context,
	role bookingDomain.Role,
	userID uuid.UUID,
	state bookingDomain.State,
	page domain.Page,
) ([]BookingDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	bookings, err := s.filter.Find(ctx, role, userID, state, page)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, nil
}

func (s *BookingService) ownsItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return it.IsOwnedBy(userID), nil
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		Start:     bk.Start(),
		End:       bk.End(),
		Status:    bk.Status().String(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}
