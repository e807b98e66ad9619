package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	commentDomain "github.com/shareit-go/shareit/internal/domain/comment"
	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// PastBookingChecker reports whether a user has finished an approved booking of an item.
type PastBookingChecker interface {
	HasPastBooking(ctx context.Context, bookerID, itemID uuid.UUID) (bool, error)
}

// AddCommentRequest holds the text of a new comment.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CommentDTO is the API response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentService handles item comment use cases.
type CommentService struct {
	repo     commentDomain.CommentRepository
	items    ItemCatalog
	users    UserDirectory
	bookings PastBookingChecker
	logger   *zap.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	repo commentDomain.CommentRepository,
	items ItemCatalog,
	users UserDirectory,
	bookings PastBookingChecker,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{repo: repo, items: items, users: users, bookings: bookings, logger: logger}
}

// AddComment posts a comment on itemID. Only users with a finished approved
// booking of the item may comment.
func (s *CommentService) AddComment(ctx context.Context, authorID, itemID uuid.UUID, req AddCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	booked, err := s.bookings.HasPastBooking(ctx, authorID, itemID)
	if err != nil {
		return nil, err
	}
	if !booked {
		return nil, domain.NewValidationError("user " + authorID.String() + " has not completed a booking of item " + itemID.String())
	}

	c, err := commentDomain.NewComment(itemID, authorID, req.Text)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("comment added",
		zap.String("item_id", itemID.String()),
		zap.String("author_id", authorID.String()),
	)
	return &CommentDTO{
		ID:         c.ID(),
		ItemID:     c.ItemID(),
		AuthorID:   c.AuthorID(),
		AuthorName: author.Name(),
		Text:       c.Text(),
		CreatedAt:  c.CreatedAt(),
	}, nil
}

// ListComments returns the comments on itemID, oldest first.
func (s *CommentService) ListComments(ctx context.Context, itemID uuid.UUID) ([]CommentDTO, error) {
	comments, err := s.repo.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string)
	dtos := make([]CommentDTO, len(comments))
	for i, c := range comments {
		name, ok := names[c.AuthorID()]
		if !ok {
			if author, err := s.users.FindByID(ctx, c.AuthorID()); err == nil {
				name = author.Name()
			} else if !domain.IsNotFound(err) {
				return nil, err
			}
			names[c.AuthorID()] = name
		}
		dtos[i] = CommentDTO{
			ID:         c.ID(),
			ItemID:     c.ItemID(),
			AuthorID:   c.AuthorID(),
			AuthorName: name,
			Text:       c.Text(),
			CreatedAt:  c.CreatedAt(),
		}
	}
	return dtos, nil
}
