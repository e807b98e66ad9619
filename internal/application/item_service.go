package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	itemDomain "github.com/shareit-go/shareit/internal/domain/item"
	"github.com/shareit-go/shareit/internal/pkg/domain"
)

// CreateItemRequest is the request DTO for listing an item.
type CreateItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
}

// UpdateItemRequest is the request DTO for a partial item update.
type UpdateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
}

// ItemDTO is the API response representation of an item.
type ItemDTO struct {
	ID          uuid.UUID    `json:"id"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Available   bool         `json:"available"`
	Comments    []CommentDTO `json:"comments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ItemService implements use cases for item listings.
type ItemService struct {
	repo     itemDomain.ItemRepository
	users    UserDirectory
	comments *CommentService
	logger   *zap.Logger
}

// NewItemService creates a new ItemService. comments may be nil, in which
// case items are returned without their comments.
func NewItemService(repo itemDomain.ItemRepository, users UserDirectory, comments *CommentService, logger *zap.Logger) *ItemService {
	return &ItemService{repo: repo, users: users, comments: comments, logger: logger}
}

// CreateItem lists a new item owned by ownerID.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	available := req.Available != nil && *req.Available
	it, err := itemDomain.NewItem(ownerID, req.Name, req.Description, available)
	if err != nil {
		return nil, fmt.Errorf("invalid item data: %w", err)
	}

	if err := s.repo.Save(ctx, it); err != nil {
		s.logger.Error("failed to create item", zap.Error(err))
		return nil, err
	}

	s.logger.Info("item created",
		zap.String("item_id", it.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toItemDTO(it)
	return &result, nil
}

// GetItem returns an item with its comments.
func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	it, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := toItemDTO(it)
	if s.comments != nil {
		comments, err := s.comments.ListComments(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Comments = comments
	}
	return &result, nil
}

// GetOwnerItems returns every item listed by ownerID.
func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error) {
	items, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos, nil
}

// UpdateItem applies a partial update. Items not owned by userID are reported as not found.
func (s *ItemService) UpdateItem(ctx context.Context, userID, id uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	it, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(userID) {
		return nil, domain.NewNotFoundError("Item", id.String())
	}

	it.Update(req.Name, req.Description, req.Available)
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("item updated", zap.String("item_id", id.String()))
	result := toItemDTO(it)
	return &result, nil
}

func toItemDTO(it *itemDomain.Item) ItemDTO {
	return ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}
