// Package integration exercises the full sync pipeline against a real
// database: channel adapters behind their resilience decorators, the sync
// orchestrator, persistence and the HTTP API.
package integration

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/omnicrm/backend/internal/domain/deadletter"
	"github.com/omnicrm/backend/internal/domain/order"
)

// NewTestDB opens an isolated in-memory database with the full schema
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to open test database")

	err = db.AutoMigrate(
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
		&deadletter.Entry{},
	)
	require.NoError(t, err, "Failed to migrate test database")

	return db
}
