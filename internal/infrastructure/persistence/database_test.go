package persistence

import (
	"path/filepath"
	"testing"

	"github.com/loyalty/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDatabase opens a throwaway sqlite database with the schema migrated
func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            filepath.Join(t.TempDir(), "loyalty_test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5,
	}

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestNewDatabase(t *testing.T) {
	t.Run("opens sqlite database", func(t *testing.T) {
		db := newTestDatabase(t)

		assert.NoError(t, db.Ping())
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		cfg := &config.DatabaseConfig{Driver: "oracle"}

		_, err := NewDatabase(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}

func TestDatabase_Migrate(t *testing.T) {
	db := newTestDatabase(t)

	for _, table := range []string{"customers", "purchases", "scan_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "table %s should exist", table)
	}
}

func TestDatabase_Stats(t *testing.T) {
	db := newTestDatabase(t)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}
