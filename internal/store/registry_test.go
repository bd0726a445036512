package store

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// sequence yields the given codes in order, then fails.
func sequence(codes ...string) func() (string, error) {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(codes) {
			return "", fmt.Errorf("sequence exhausted")
		}
		c := codes[i]
		i++
		return c, nil
	}
}

func TestRandomCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := RandomCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, c), "unexpected %q in %s", c, code)
		}
	}
}

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := NewRegistry(WithCodeSource(sequence("abcdef")))

	room, err := reg.Create("alice", game.ModeDuel, t0)
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", room.Code)
	assert.Equal(t, game.StatusWaiting, room.Status)
	assert.Equal(t, 2, room.MaxPlayers)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "alice", room.Players[0].ID)

	got, err := reg.Get(" abcdef ")
	require.NoError(t, err)
	assert.Equal(t, room.Code, got.Code)

	_, err = reg.Get("ZZZZZZ")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestRegistry_CreateRetriesOnCollision(t *testing.T) {
	reg := NewRegistry(WithCodeSource(sequence("AAAAAA", "AAAAAA", "BBBBBB")))

	first, err := reg.Create("alice", game.ModeDuel, t0)
	require.NoError(t, err)
	second, err := reg.Create("bob", game.ModeDuel, t0)
	require.NoError(t, err)

	assert.Equal(t, "AAAAAA", first.Code)
	assert.Equal(t, "BBBBBB", second.Code)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_CreateGivesUp(t *testing.T) {
	codes := make([]string, maxCodeAttempts+1)
	for i := range codes {
		codes[i] = "AAAAAA"
	}
	reg := NewRegistry(WithCodeSource(sequence(codes...)))
	_, err := reg.Create("alice", game.ModeDuel, t0)
	require.NoError(t, err)

	_, err = reg.Create("bob", game.ModeDuel, t0)
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestRegistry_ConcurrentCreateYieldsUniqueCodes(t *testing.T) {
	// Every code is drawn twice in a row, so creators keep colliding.
	var mu sync.Mutex
	n := 0
	small := func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("ROOM%02d", (n/2)%64), nil
	}
	reg := NewRegistry(WithCodeSource(small))

	const creators = 48
	codes := make([]string, creators)
	var g errgroup.Group
	for i := 0; i < creators; i++ {
		i := i
		g.Go(func() error {
			room, err := reg.Create(fmt.Sprintf("host%02d", i), game.ModeBattleRoyale, t0)
			if err != nil {
				return err
			}
			codes[i] = room.Code
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := map[string]bool{}
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
	assert.Equal(t, creators, reg.Len())
}

func TestRegistry_UpdateSerializesPerRoom(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.Create("host", game.ModeBattleRoyale, t0)
	require.NoError(t, err)

	// Many concurrent joiners race on the capacity check; exactly
	// MaxPlayers-1 of them may get in.
	var g errgroup.Group
	var mu sync.Mutex
	joined, full := 0, 0
	for i := 0; i < 20; i++ {
		i := i
		g.Go(func() error {
			err := reg.Update(room.Code, func(r *game.Room) error {
				_, err := r.AddPlayer(fmt.Sprintf("player%02d", i), t0)
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case assert.ErrorIs(t, err, game.ErrRoomFull):
				full++
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, room.MaxPlayers-1, joined)
	assert.Equal(t, 20-joined, full)
	got, err := reg.Get(room.Code)
	require.NoError(t, err)
	assert.Len(t, got.Players, room.MaxPlayers)
}

func TestRegistry_Remove(t *testing.T) {
	reg := NewRegistry(WithCodeSource(sequence("ABCDEF")))
	_, err := reg.Create("alice", game.ModeDuel, t0)
	require.NoError(t, err)

	assert.True(t, reg.Remove("abcdef"))
	assert.False(t, reg.Remove("abcdef"))

	err = reg.Update("ABCDEF", func(*game.Room) error { return nil })
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestRegistry_Reap(t *testing.T) {
	reg := NewRegistry(WithCodeSource(sequence("IDLE22", "DONE22", "LIVE22")))
	for _, host := range []string{"idler", "finisher", "player"} {
		_, err := reg.Create(host, game.ModeDuel, t0)
		require.NoError(t, err)
	}

	// DONE22 plays to a finish at t0+1m.
	finishAt := t0.Add(time.Minute)
	require.NoError(t, reg.Update("DONE22", func(r *game.Room) error {
		if _, err := r.AddPlayer("rival", t0); err != nil {
			return err
		}
		if err := r.Start("finisher", "CRANE", t0); err != nil {
			return err
		}
		_, err := r.ApplyGuess("rival", "CRANE", 0, finishAt)
		return err
	}))
	// LIVE22 sees recent activity.
	require.NoError(t, reg.Update("LIVE22", func(r *game.Room) error {
		_, err := r.AddPlayer("joiner", t0.Add(25*time.Minute))
		return err
	}))

	reaped := reg.Reap(t0.Add(30*time.Minute), 30*time.Minute, 5*time.Minute)
	assert.ElementsMatch(t, []string{"IDLE22", "DONE22"}, reaped)
	assert.Equal(t, 1, reg.Len())

	_, err := reg.Get("LIVE22")
	assert.NoError(t, err)
}
