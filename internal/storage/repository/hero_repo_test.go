package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcounter/draft-companion/internal/storage"
	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// setupTestDB creates an in-memory database with the full schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := storage.DefaultConfig(":memory:")
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.Conn()
}

func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestHeroUpsertAndGet(t *testing.T) {
	repo := NewHeroRepository(setupTestDB(t))
	ctx := context.Background()

	hero := &models.Hero{
		Name:    "Thamuz",
		URL:     "https://example.com/thamuz",
		Role:    strPtr("Fighter"),
		WinRate: floatPtr(53.2),
		Tier:    strPtr("S"),
	}
	require.NoError(t, repo.Upsert(ctx, hero))

	got, err := repo.GetByName(ctx, "Thamuz")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Thamuz", got.Name)
	require.NotNil(t, got.Role)
	assert.Equal(t, "Fighter", *got.Role)
	require.NotNil(t, got.WinRate)
	assert.InDelta(t, 53.2, *got.WinRate, 0.001)
}

func TestHeroUpsertOverwrites(t *testing.T) {
	repo := NewHeroRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Hero{Name: "Thamuz", Tier: strPtr("A")}))
	require.NoError(t, repo.Upsert(ctx, &models.Hero{Name: "Thamuz", Tier: strPtr("S+")}))

	got, err := repo.GetByName(ctx, "Thamuz")
	require.NoError(t, err)
	require.NotNil(t, got.Tier)
	assert.Equal(t, "S+", *got.Tier)

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestHeroGetMissing(t *testing.T) {
	repo := NewHeroRepository(setupTestDB(t))

	got, err := repo.GetByName(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHeroListNamesOrdering(t *testing.T) {
	repo := NewHeroRepository(setupTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Zilong", "alice", "Balmond"} {
		require.NoError(t, repo.Upsert(ctx, &models.Hero{Name: name}))
	}

	names, err := repo.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "Balmond", "Zilong"}, names)
}
