package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newPlayingRoom builds a started room with the given players; the first is host.
func newPlayingRoom(t *testing.T, mode Mode, solution string, players ...string) *Room {
	t.Helper()
	r, err := NewRoom("abc234", players[0], mode, t0)
	require.NoError(t, err)
	for _, p := range players[1:] {
		_, err := r.AddPlayer(p, t0)
		require.NoError(t, err)
	}
	require.NoError(t, r.Start(players[0], solution, t0))
	return r
}

// fail submits n non-matching guesses for player starting at its next attempt.
func fail(t *testing.T, r *Room, player string, n int) GuessResult {
	t.Helper()
	var res GuessResult
	for i := 0; i < n; i++ {
		p := r.Player(player)
		var err error
		res, err = r.ApplyGuess(player, "BUMPY", p.NextAttempt(), t0)
		require.NoError(t, err)
	}
	return res
}

func TestNewRoom(t *testing.T) {
	r, err := NewRoom("xyz789", "alice", ModeDuel, t0)
	require.NoError(t, err)
	assert.Equal(t, "XYZ789", r.Code)
	assert.Equal(t, 2, r.MaxPlayers)
	assert.Equal(t, StatusWaiting, r.Status)
	assert.Equal(t, 1, r.RoundNumber)
	assert.True(t, r.IsHost("ALICE"))
	require.Len(t, r.Players(), 1)

	br, err := NewRoom("xyz790", "alice", ModeBattleRoyale, t0)
	require.NoError(t, err)
	assert.Equal(t, 8, br.MaxPlayers)

	_, err = NewRoom("xyz791", "alice", Mode("solo"), t0)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = NewRoom("xyz792", "a!", ModeDuel, t0)
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestAddPlayer(t *testing.T) {
	r, err := NewRoom("abc234", "alice", ModeDuel, t0)
	require.NoError(t, err)

	_, err = r.AddPlayer("Alice", t0)
	assert.ErrorIs(t, err, ErrDuplicatePlayer)

	_, err = r.AddPlayer("bob", t0)
	require.NoError(t, err)

	_, err = r.AddPlayer("carol", t0)
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Len(t, r.Players(), 2)
}

func TestAddPlayer_OnlyWhileWaiting(t *testing.T) {
	r := newPlayingRoom(t, ModeBattleRoyale, "MANGO", "alice", "bob")
	_, err := r.AddPlayer("carol", t0)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStart(t *testing.T) {
	r, err := NewRoom("abc234", "alice", ModeDuel, t0)
	require.NoError(t, err)

	err = r.Start("alice", "CRANE", t0)
	assert.ErrorIs(t, err, ErrInvalidState, "one player is not enough")

	_, err = r.AddPlayer("bob", t0)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Start("bob", "CRANE", t0), ErrNotHost)
	assert.ErrorIs(t, r.Start("mallory", "CRANE", t0), ErrPlayerNotFound)
	assert.ErrorIs(t, r.Start("alice", "CRANES", t0), ErrInvalidWord)
	assert.Equal(t, StatusWaiting, r.Status)

	later := t0.Add(time.Minute)
	require.NoError(t, r.Start("alice", "crane", later))
	assert.Equal(t, StatusPlaying, r.Status)
	assert.Equal(t, "CRANE", r.Solution)
	assert.Equal(t, later, r.GameStartTime)
	assert.Equal(t, 1, r.RoundNumber)

	assert.ErrorIs(t, r.Start("alice", "CRANE", t0), ErrInvalidState)
}

func TestApplyGuess_Rejections(t *testing.T) {
	waiting, err := NewRoom("abc234", "alice", ModeDuel, t0)
	require.NoError(t, err)
	_, err = waiting.ApplyGuess("alice", "CRANE", 0, t0)
	assert.ErrorIs(t, err, ErrInvalidState)

	r := newPlayingRoom(t, ModeDuel, "CRANE", "alice", "bob")

	_, err = r.ApplyGuess("mallory", "CRANE", 0, t0)
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = r.ApplyGuess("alice", "CRANE", 1, t0)
	assert.ErrorIs(t, err, ErrInvalidAttempt, "skipping a row")

	_, err = r.ApplyGuess("alice", "CRANE", 6, t0)
	assert.ErrorIs(t, err, ErrInvalidAttempt)

	_, err = r.ApplyGuess("alice", "CRAN", 0, t0)
	assert.ErrorIs(t, err, ErrInvalidWord)
	assert.Equal(t, 0, r.Player("alice").NextAttempt(), "rejections leave the tracker untouched")
}

func TestApplyGuess_ReplayIsRejected(t *testing.T) {
	r := newPlayingRoom(t, ModeDuel, "CRANE", "alice", "bob")

	_, err := r.ApplyGuess("alice", "BUMPY", 0, t0)
	require.NoError(t, err)
	_, err = r.ApplyGuess("alice", "BUMPY", 0, t0)
	assert.ErrorIs(t, err, ErrInvalidAttempt)

	p := r.Player("alice")
	assert.Len(t, p.Guesses, 1)
	assert.Equal(t, 1, p.NextAttempt())
}

func TestDuel_FirstSolveWins(t *testing.T) {
	r := newPlayingRoom(t, ModeDuel, "CRANE", "alice", "bob")
	fail(t, r, "alice", 2)

	res, err := r.ApplyGuess("bob", "crane", 0, t0)
	require.NoError(t, err)
	assert.True(t, res.Solved)
	assert.True(t, res.Finished)
	assert.Equal(t, "bob", res.WinnerID)
	assert.Equal(t, ReasonSolved, res.Reason)
	assert.Equal(t, 6, r.Player("bob").Score)

	_, err = r.ApplyGuess("alice", "CRANE", 2, t0)
	assert.ErrorIs(t, err, ErrInvalidState, "no guesses after finish")
}

func TestDuel_DrawWhenBothExhausted(t *testing.T) {
	r := newPlayingRoom(t, ModeDuel, "CRANE", "alice", "bob")

	res := fail(t, r, "alice", MaxAttempts)
	assert.True(t, res.Exhausted)
	assert.False(t, res.Eliminated, "duel never eliminates")
	assert.False(t, res.Finished, "bob can still play")

	_, err := r.ApplyGuess("alice", "CRANE", MaxAttempts, t0)
	assert.ErrorIs(t, err, ErrInvalidAttempt)

	res = fail(t, r, "bob", MaxAttempts)
	assert.True(t, res.Finished)
	assert.Empty(t, res.WinnerID)
	assert.Equal(t, ReasonDraw, res.Reason)
	assert.Nil(t, r.Snapshot().Winner)
}

func TestDuel_SoloExhaustionThenOpponentWins(t *testing.T) {
	r := newPlayingRoom(t, ModeDuel, "CRANE", "alice", "bob")
	fail(t, r, "alice", MaxAttempts)
	fail(t, r, "bob", 5)

	res, err := r.ApplyGuess("bob", "CRANE", 5, t0)
	require.NoError(t, err)
	assert.Equal(t, "bob", res.WinnerID)
	assert.Equal(t, 1, r.Player("bob").Score)
}

func TestBattleRoyale_FirstWinEndsRound(t *testing.T) {
	r := newPlayingRoom(t, ModeBattleRoyale, "MANGO", "alice", "bob", "carol")
	fail(t, r, "alice", 2)
	fail(t, r, "bob", 2)
	fail(t, r, "carol", 1)

	res, err := r.ApplyGuess("alice", "MANGO", 2, t0)
	require.NoError(t, err)
	assert.True(t, res.Finished)
	assert.Equal(t, "alice", res.WinnerID)

	_, err = r.ApplyGuess("bob", "MANGO", 2, t0)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = r.ApplyGuess("carol", "MANGO", 1, t0)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBattleRoyale_EliminationAndSurvival(t *testing.T) {
	r := newPlayingRoom(t, ModeBattleRoyale, "MANGO", "alice", "bob", "carol")

	res := fail(t, r, "alice", MaxAttempts)
	assert.True(t, res.Eliminated)
	assert.False(t, res.Finished)

	_, err := r.ApplyGuess("alice", "MANGO", MaxAttempts, t0)
	assert.ErrorIs(t, err, ErrPlayerInactive)

	res = fail(t, r, "bob", MaxAttempts)
	assert.True(t, res.Eliminated)
	assert.True(t, res.Finished)
	assert.Equal(t, "carol", res.WinnerID)
	assert.Equal(t, ReasonSurvival, res.Reason)

	carol := r.Player("carol")
	assert.True(t, carol.Won)
	assert.Empty(t, carol.Guesses, "survivor never needed to guess")
	assert.Equal(t, 1, carol.Score)
	assert.True(t, r.Settled())
}

func TestBattleRoyale_HeadToHeadEliminationLeavesSurvivor(t *testing.T) {
	r := newPlayingRoom(t, ModeBattleRoyale, "MANGO", "alice", "bob")
	res := fail(t, r, "alice", MaxAttempts)
	assert.Equal(t, "bob", res.WinnerID)
	assert.Equal(t, ReasonSurvival, res.Reason)
}

func TestSnapshot_HidesSolutionUntilFinished(t *testing.T) {
	r := newPlayingRoom(t, ModeDuel, "CRANE", "alice", "bob")
	fail(t, r, "alice", 1)

	v := r.Snapshot()
	assert.Empty(t, v.Solution)
	assert.Nil(t, v.Winner)
	require.Len(t, v.Players, 2)
	assert.Equal(t, 1, v.Players[0].NextAttempt)
	require.Len(t, v.Players[0].Board, MaxAttempts)
	assert.Equal(t, VerdictAbsent, v.Players[0].Board[0][0].Status)
	assert.Equal(t, VerdictUnused, v.Players[0].Board[1][0].Status)

	v.Players[0].Guesses[0].Tiles[0].Letter = "Z"
	assert.Equal(t, "B", r.Player("alice").Guesses[0].Tiles[0].Letter, "snapshot is detached")

	_, err := r.ApplyGuess("bob", "CRANE", 0, t0)
	require.NoError(t, err)
	v = r.Snapshot()
	assert.Equal(t, "CRANE", v.Solution)
	require.NotNil(t, v.Winner)
	assert.Equal(t, "bob", *v.Winner)
}

func TestKind(t *testing.T) {
	r := newPlayingRoom(t, ModeDuel, "CRANE", "alice", "bob")
	_, err := r.ApplyGuess("alice", "CRANE", 3, t0)
	assert.Equal(t, "invalid_attempt", Kind(err))
	assert.Equal(t, "room_full", Kind(ErrRoomFull))
	assert.Equal(t, "internal", Kind(assert.AnError))
}
