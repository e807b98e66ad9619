package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/shareit-go/shareit/internal/domain/booking"
	"github.com/shareit-go/shareit/internal/pkg/domain"
)

func TestCommentService_RequiresFinishedApprovedBooking(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	it := env.item(t, owner.ID(), true)
	ctx := context.Background()

	// Approved but still running.
	env.booking(t, it.ID(), booker.ID(), testNow.Add(-day), testNow.Add(day), bookingDomain.StatusApproved)

	_, err := env.commentSvc.AddComment(ctx, booker.ID(), it.ID(), AddCommentRequest{Text: "Great"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	env.booking(t, it.ID(), booker.ID(), testNow.Add(-5*day), testNow.Add(-4*day), bookingDomain.StatusApproved)

	created, err := env.commentSvc.AddComment(ctx, booker.ID(), it.ID(), AddCommentRequest{Text: "Great"})
	require.NoError(t, err)
	assert.Equal(t, "booker", created.AuthorName)

	item, err := env.itemSvc.GetItem(ctx, it.ID())
	require.NoError(t, err)
	require.Len(t, item.Comments, 1)
	assert.Equal(t, "Great", item.Comments[0].Text)
	assert.Equal(t, "booker", item.Comments[0].AuthorName)
}

func TestCommentService_UnknownItemOrUser(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	it := env.item(t, owner.ID(), true)
	ctx := context.Background()

	_, err := env.commentSvc.AddComment(ctx, uuid.New(), it.ID(), AddCommentRequest{Text: "Hi"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	_, err = env.commentSvc.AddComment(ctx, owner.ID(), uuid.New(), AddCommentRequest{Text: "Hi"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestCommentService_BlankText(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	it := env.item(t, owner.ID(), true)
	env.booking(t, it.ID(), booker.ID(), testNow.Add(-5*day), testNow.Add(-4*day), bookingDomain.StatusApproved)

	_, err := env.commentSvc.AddComment(context.Background(), booker.ID(), it.ID(), AddCommentRequest{Text: "   "})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
