package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-go/shareit/internal/pkg/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestItemService_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	ctx := context.Background()

	created, err := env.itemSvc.CreateItem(ctx, owner.ID(), CreateItemRequest{
		Name: "Ladder", Description: "Aluminium ladder", Available: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID(), created.OwnerID)
	assert.True(t, created.Available)

	got, err := env.itemSvc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ladder", got.Name)
	assert.Empty(t, got.Comments)

	owned, err := env.itemSvc.GetOwnerItems(ctx, owner.ID())
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, created.ID, owned[0].ID)
}

func TestItemService_CreateForUnknownOwner(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.itemSvc.CreateItem(context.Background(), uuid.New(), CreateItemRequest{
		Name: "Ladder", Description: "Aluminium ladder", Available: boolPtr(true),
	})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestItemService_Update(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	stranger := env.user(t, "stranger")
	it := env.item(t, owner.ID(), true)
	ctx := context.Background()

	_, err := env.itemSvc.UpdateItem(ctx, stranger.ID(), it.ID(), UpdateItemRequest{Name: "Mine now"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	updated, err := env.itemSvc.UpdateItem(ctx, owner.ID(), it.ID(), UpdateItemRequest{Available: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Available)
	assert.Equal(t, it.Name(), updated.Name)

	got, err := env.itemSvc.GetItem(ctx, it.ID())
	require.NoError(t, err)
	assert.False(t, got.Available)
}
