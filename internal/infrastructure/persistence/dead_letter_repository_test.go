package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/omnicrm/backend/internal/domain/deadletter"
	"github.com/omnicrm/backend/internal/domain/shared"
)

func setupDeadLetterTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&deadletter.Entry{})
	require.NoError(t, err)

	return db
}

func TestGormDeadLetterRepository_SaveAndFindByID(t *testing.T) {
	db := setupDeadLetterTestDB(t)
	repo := NewGormDeadLetterRepository(db)
	ctx := context.Background()

	entry := deadletter.NewEntry(
		"CHANNEL_SYNC_AMAZON",
		shared.JSONMap{"channel": "AMAZON", "error": "connection timed out"},
		errors.New("connection timed out"),
		"stack trace here",
	)
	require.NoError(t, repo.Save(ctx, entry))

	found, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "CHANNEL_SYNC_AMAZON", found.OperationType)
	assert.Equal(t, "connection timed out", found.ErrorMessage)
	assert.Equal(t, deadletter.StatusPending, found.Status)
	assert.Equal(t, 0, found.RetryCount)
	assert.Equal(t, "AMAZON", found.Payload["channel"])
}

func TestGormDeadLetterRepository_FindByID_NotFound(t *testing.T) {
	db := setupDeadLetterTestDB(t)
	repo := NewGormDeadLetterRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormDeadLetterRepository_FindByStatus(t *testing.T) {
	db := setupDeadLetterTestDB(t)
	repo := NewGormDeadLetterRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := deadletter.NewEntry("CHANNEL_SYNC_FLIPKART", nil, errors.New("boom"), "")
		require.NoError(t, repo.Save(ctx, entry))
	}
	resolved := deadletter.NewEntry("CHANNEL_SYNC_WEBSITE", nil, errors.New("boom"), "")
	resolved.MarkResolved()
	require.NoError(t, repo.Save(ctx, resolved))

	pending, total, err := repo.FindByStatus(ctx, deadletter.StatusPending, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, pending, 2)

	second, _, err := repo.FindByStatus(ctx, deadletter.StatusPending, 2, 2)
	require.NoError(t, err)
	assert.Len(t, second, 1)

	count, err := repo.CountByStatus(ctx, deadletter.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormDeadLetterRepository_RetryLifecyclePersists(t *testing.T) {
	db := setupDeadLetterTestDB(t)
	repo := NewGormDeadLetterRepository(db)
	ctx := context.Background()

	entry := deadletter.NewEntry("CHANNEL_SYNC_AMAZON", nil, errors.New("boom"), "")
	require.NoError(t, repo.Save(ctx, entry))

	for i := 0; i < deadletter.MaxRetries; i++ {
		entry.RegisterRetry()
		require.NoError(t, repo.Save(ctx, entry))
	}

	found, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, deadletter.MaxRetries, found.RetryCount)
	assert.Equal(t, deadletter.StatusFailed, found.Status)
	assert.NotNil(t, found.LastRetriedAt)
}
