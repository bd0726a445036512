package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db, filepath.Join("..", "..", "sql")))
	return NewStore(db)
}

// finishedView plays a duel to completion and returns its snapshot.
func finishedView(t *testing.T, code, winner string) game.RoomView {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r, err := game.NewRoom(code, "alice", game.ModeDuel, now)
	require.NoError(t, err)
	_, err = r.AddPlayer("bob", now)
	require.NoError(t, err)
	require.NoError(t, r.Start("alice", "CRANE", now))
	if winner != "" {
		_, err = r.ApplyGuess(winner, "CRANE", 0, now.Add(time.Minute))
		require.NoError(t, err)
		return r.Snapshot()
	}
	for i := 0; i < game.MaxAttempts; i++ {
		for _, p := range []string{"alice", "bob"} {
			_, err = r.ApplyGuess(p, "BUMPY", i, now.Add(time.Minute))
			require.NoError(t, err)
		}
	}
	return r.Snapshot()
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	dir := filepath.Join("..", "..", "sql")
	require.NoError(t, Migrate(db, dir))
	require.NoError(t, Migrate(db, dir))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStore_InsertAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	win := ResultFromView("ev-1", finishedView(t, "AAAAAA", "bob"))
	assert.Equal(t, "bob", win.WinnerID)
	assert.Equal(t, "CRANE", win.Solution)
	require.Len(t, win.Players, 2)
	require.NoError(t, s.Insert(ctx, win))
	require.NoError(t, s.Insert(ctx, win), "duplicate events are ignored")

	draw := ResultFromView("ev-2", finishedView(t, "BBBBBB", ""))
	assert.Empty(t, draw.WinnerID)
	require.NoError(t, s.Insert(ctx, draw))

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "BBBBBB", recent[0].RoomCode)
	assert.Equal(t, game.ReasonDraw, recent[0].Reason)
	assert.Equal(t, 2, recent[1].Players)

	bob, err := s.PlayerStats(ctx, "BOB")
	require.NoError(t, err)
	assert.Equal(t, Stats{PlayerID: "BOB", Games: 2, Wins: 1, Draws: 1, TotalScore: 6}, bob)

	nobody, err := s.PlayerStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, nobody.Games)
}

func TestRecorder(t *testing.T) {
	s := openTestStore(t)
	rec := NewRecorder(s, 4)

	view := finishedView(t, "CCCCCC", "alice")
	rec.Publish(game.Event{ID: "ev-ignored", Type: game.EventRoomUpdated, Room: &view})
	rec.Publish(game.Event{ID: "ev-3", Type: game.EventGameOver, RoomCode: view.Code, Room: &view})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, rec.Run(ctx))

	recent, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "alice", recent[0].WinnerID)
}
