package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemoryWithMigrations(t *testing.T) {
	cfg := DefaultConfig(":memory:")
	cfg.AutoMigrate = true
	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())

	for _, table := range []string{"heroes", "counters", "game_history", "draft_sessions"} {
		var name string
		err := db.Conn().QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		assert.NoError(t, err, "expected table %s", table)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("companion.db")

	assert.Equal(t, "companion.db", cfg.Path)
	assert.Greater(t, cfg.MaxOpenConns, 0)
	assert.Greater(t, cfg.BusyTimeout.Milliseconds(), int64(0))
}
