package comment

import (
	"context"

	"github.com/google/uuid"
)

// CommentRepository defines persistence operations for item comments.
type CommentRepository interface {
	Save(ctx context.Context, comment *Comment) error
	FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*Comment, error)
}
