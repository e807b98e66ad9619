package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/shareit-go/shareit/internal/domain/booking"
	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;index;not null"`
	BookerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	StartAt   time.Time `gorm:"index;not null"`
	EndAt     time.Time `gorm:"index;not null"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCriteria retrieves the bookings matching c ordered by start time descending.
// Owner-side queries resolve item ownership through the items table.
func (r *GormBookingRepository) FindByCriteria(ctx context.Context, c bookingDomain.Criteria) ([]*bookingDomain.Booking, error) {
	q := r.db.WithContext(ctx).Model(&BookingModel{}).Select("bookings.*")

	switch c.Role {
	case bookingDomain.RoleOwner:
		q = q.Joins("JOIN items ON items.id = bookings.item_id").
			Where("items.owner_id = ?", c.UserID)
	case bookingDomain.RoleBooker:
		q = q.Where("bookings.booker_id = ?", c.UserID)
	default:
		return nil, fmt.Errorf("unsupported booking role %q", c.Role)
	}

	if c.ItemID != nil {
		q = q.Where("bookings.item_id = ?", *c.ItemID)
	}
	if c.Status != nil {
		q = q.Where("bookings.status = ?", string(*c.Status))
	}
	if c.StartAtOrBefore != nil {
		q = q.Where("bookings.start_at <= ?", *c.StartAtOrBefore)
	}
	if c.StartAfter != nil {
		q = q.Where("bookings.start_at > ?", *c.StartAfter)
	}
	if c.EndAfter != nil {
		q = q.Where("bookings.end_at > ?", *c.EndAfter)
	}
	if c.EndBefore != nil {
		q = q.Where("bookings.end_at < ?", *c.EndBefore)
	}

	q = q.Order("bookings.start_at DESC")
	if !c.Page.IsUnpaged() {
		q = q.Offset(c.Page.Offset()).Limit(c.Page.Size)
	}

	var models []BookingModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find %s bookings: %w", c.Role, err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// UpdateStatus writes a status decision with a conditional update: the row must
// still be WAITING at the version the decision was read from. Losing a race to
// another decision is reported as a validation failure, the same as deciding twice.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking) error {
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ? AND status = ?", bk.ID(), expectedVersion, string(bookingDomain.StatusWaiting)).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewValidationError("booking status has already been decided")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		StartAt:   bk.Start(),
		EndAt:     bk.End(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ItemID,
		m.BookerID,
		m.StartAt.UTC(),
		m.EndAt.UTC(),
		status,
		m.Version,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}
