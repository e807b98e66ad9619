package comment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// Comment is feedback left on an item by a user who has finished booking it.
type Comment struct {
	id        uuid.UUID
	itemID    uuid.UUID
	authorID  uuid.UUID
	text      string
	createdAt time.Time
}

// NewComment creates a new comment.
func NewComment(itemID, authorID uuid.UUID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("comment text is required")
	}

	return &Comment{
		id:        uuid.New(),
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Comment from persistence.
func Reconstruct(id, itemID, authorID uuid.UUID, text string, createdAt time.Time) *Comment {
	return &Comment{
		id:        id,
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: createdAt,
	}
}

// Getters.
func (c *Comment) ID() uuid.UUID        { return c.id }
func (c *Comment) ItemID() uuid.UUID    { return c.itemID }
func (c *Comment) AuthorID() uuid.UUID  { return c.authorID }
func (c *Comment) Text() string         { return c.text }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }
