package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	itemDomain "github.com/shareit-go/shareit/internal/domain/item"
	userDomain "github.com/shareit-go/shareit/internal/domain/user"
	"github.com/shareit-go/shareit/internal/pkg/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Connect(database.Config{SQLitePath: dsn}, zap.NewNop())
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	require.NoError(t, AutoMigrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// baseTime is second-aligned so stored timestamps compare exactly.
var baseTime = time.Date(2030, 1, 10, 12, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, db *gorm.DB, name string) *userDomain.User {
	t.Helper()
	u, err := userDomain.NewUser(name, fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]))
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Save(context.Background(), u))
	return u
}

func seedItem(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *itemDomain.Item {
	t.Helper()
	it, err := itemDomain.NewItem(ownerID, "Drill", "Cordless drill", true)
	require.NoError(t, err)
	require.NoError(t, NewGormItemRepository(db).Save(context.Background(), it))
	return it
}
