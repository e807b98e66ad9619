package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	bookingDomain "github.com/shareit-go/shareit/internal/domain/booking"
	itemDomain "github.com/shareit-go/shareit/internal/domain/item"
	userDomain "github.com/shareit-go/shareit/internal/domain/user"
	"github.com/shareit-go/shareit/internal/events"
	"github.com/shareit-go/shareit/internal/pkg/database"
	"github.com/shareit-go/shareit/internal/pkg/kafka"
	"github.com/shareit-go/shareit/internal/repository"
)

// testNow is second-aligned so stored timestamps compare exactly.
var testNow = time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)

// recordingProducer captures published events.
type recordingProducer struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingProducer) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingProducer) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

type testEnv struct {
	db       *gorm.DB
	users    *repository.GormUserRepository
	items    *repository.GormItemRepository
	bookings *repository.GormBookingRepository
	comments *repository.GormCommentRepository
	producer *recordingProducer
	now      time.Time

	bookingSvc *BookingService
	commentSvc *CommentService
	itemSvc    *ItemService
	userSvc    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:application_test_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Connect(database.Config{SQLitePath: dsn}, zap.NewNop())
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		db:       db,
		users:    repository.NewGormUserRepository(db),
		items:    repository.NewGormItemRepository(db),
		bookings: repository.NewGormBookingRepository(db),
		comments: repository.NewGormCommentRepository(db),
		producer: &recordingProducer{},
		now:      testNow,
	}

	log := zap.NewNop()
	clock := bookingDomain.ClockFunc(func() time.Time { return env.now })
	publisher := events.NewPublisher(env.producer, events.TopicBookingEvents, log)

	env.bookingSvc = NewBookingService(env.bookings, env.items, env.users, clock, publisher, log)
	env.commentSvc = NewCommentService(env.comments, env.items, env.users, env.bookingSvc, log)
	env.itemSvc = NewItemService(env.items, env.users, env.commentSvc, log)
	env.userSvc = NewUserService(env.users, log)
	return env
}

func (e *testEnv) user(t *testing.T, name string) *userDomain.User {
	t.Helper()
	u, err := userDomain.NewUser(name, fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]))
	require.NoError(t, err)
	require.NoError(t, e.users.Save(context.Background(), u))
	return u
}

func (e *testEnv) item(t *testing.T, ownerID uuid.UUID, available bool) *itemDomain.Item {
	t.Helper()
	it, err := itemDomain.NewItem(ownerID, "Tent", "Four person tent", available)
	require.NoError(t, err)
	require.NoError(t, e.items.Save(context.Background(), it))
	return it
}

// booking stores a booking directly, bypassing the start-not-in-past rule so
// that past and current windows can be seeded.
func (e *testEnv) booking(t *testing.T, itemID, bookerID uuid.UUID, start, end time.Time, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	t.Helper()
	bk, err := bookingDomain.NewBooking(itemID, bookerID, start, end, start)
	require.NoError(t, err)
	if status != bookingDomain.StatusWaiting {
		require.NoError(t, bk.Decide(status == bookingDomain.StatusApproved, start))
	}
	require.NoError(t, e.bookings.Save(context.Background(), bk))
	return bk
}

func dtoIDs(dtos []BookingDTO) []uuid.UUID {
	ids := make([]uuid.UUID, len(dtos))
	for i, d := range dtos {
		ids[i] = d.ID
	}
	return ids
}

const day = 24 * time.Hour
