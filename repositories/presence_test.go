package repositories

import (
	"context"
	"log/slog"
	"testing"

	"presence-lab/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPresenceRepository_LoadMissingIsNotAnError(t *testing.T) {
	req := require.New(t)
	repo := NewPresenceRepository(openTestDB(t), slog.Default())

	record, found, err := repo.Load(context.Background(), "nobody")
	req.NoError(err)
	req.False(found)
	req.Equal(domain.PersistedRecord{}, record)
}

func TestPresenceRepository_SaveLoadRoundtrip(t *testing.T) {
	req := require.New(t)
	repo := NewPresenceRepository(openTestDB(t), slog.Default())
	ctx := context.Background()

	want := domain.PersistedRecord{
		Position: domain.Position{X: 150, Y: 220},
		Message:  "bonjour à tous",
	}
	req.NoError(repo.Save(ctx, "alice", want))

	got, found, err := repo.Load(ctx, "alice")
	req.NoError(err)
	req.True(found)
	req.Equal(want, got)
}

func TestPresenceRepository_SaveOverwrites(t *testing.T) {
	req := require.New(t)
	repo := NewPresenceRepository(openTestDB(t), slog.Default())
	ctx := context.Background()

	req.NoError(repo.Save(ctx, "alice", domain.PersistedRecord{
		Position: domain.Position{X: 1, Y: 1},
		Message:  "first",
	}))
	req.NoError(repo.Save(ctx, "alice", domain.PersistedRecord{
		Position: domain.Position{X: 2, Y: 2},
		Message:  "second",
	}))

	got, found, err := repo.Load(ctx, "alice")
	req.NoError(err)
	req.True(found)
	req.Equal("second", got.Message)
	req.Equal(domain.Position{X: 2, Y: 2}, got.Position)
}

func TestPresenceRepository_KeysAreIsolatedPerUsername(t *testing.T) {
	req := require.New(t)
	repo := NewPresenceRepository(openTestDB(t), slog.Default())
	ctx := context.Background()

	req.NoError(repo.Save(ctx, "alice", domain.PersistedRecord{
		Position: domain.Position{X: 10, Y: 10},
	}))

	_, found, err := repo.Load(ctx, "alicee")
	req.NoError(err)
	req.False(found)
}
