package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/game"
)

func testRecord(id string) Record {
	return NewRecord(id, "dana", game.Snapshot{
		RoundID: "01k2x9k3f4tnvz8q6w1h5j7m9p",
		Round:   3,
		Phase:   game.PhaseBetting,
		Balance: 940,
		Bets:    []int{20},
	})
}

func assertRecordEqual(t *testing.T, want Record, got *Record) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, want.Player, got.Player)
	assert.Equal(t, want.Balance, got.Balance)
	assert.Equal(t, want.Round, got.Round)
	assert.Equal(t, want.Phase, got.Phase)
	assert.Equal(t, want.State.RoundID, got.State.RoundID)
	assert.Equal(t, want.State.Bets, got.State.Bets)
	assert.WithinDuration(t, want.UpdatedAt, got.UpdatedAt, time.Second)
}

// runStoreSuite exercises the Store contract shared by every backend.
func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()

	rec := testRecord("sess-1")
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assertRecordEqual(t, rec, got)

	// Unknown sessions load as nil, nil
	got, err = s.Load(ctx, "sess-missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Saving again overwrites
	rec.Balance = 1200
	rec.Round = 4
	require.NoError(t, s.Save(ctx, rec))
	got, err = s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1200, got.Balance)
	assert.Equal(t, 4, got.Round)

	// List returns sorted ids
	require.NoError(t, s.Save(ctx, testRecord("sess-0")))
	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-0", "sess-1"}, ids)

	// Delete is idempotent
	require.NoError(t, s.Delete(ctx, "sess-1"))
	require.NoError(t, s.Delete(ctx, "sess-1"))
	got, err = s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Keys must be filesystem and redis safe
	bad := testRecord("../escape")
	assert.ErrorIs(t, s.Save(ctx, bad), ErrInvalidID)
	empty := testRecord("")
	assert.ErrorIs(t, s.Save(ctx, empty), ErrInvalidID)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	runStoreSuite(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)
	runStoreSuite(t, s)
}

func TestFileStoreLayout(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "sessions")
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), testRecord("sess-9")))

	data, err := os.ReadFile(filepath.Join(dir, "sess-9.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sessionId": "sess-9"`)
	assert.Contains(t, string(data), `"phase": "BETTING"`)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, s.Delete(context.Background(), "a/b"), ErrInvalidID)
}
