// internal/game/types.go
//
// Core type definitions for the versus game engine.
// Defines:
//   - Verdict: per-letter result of a guess (correct/present/absent).
//   - Tile: one cell of a player's board.
//   - Mode/Status: room game mode and lifecycle state.
//   - Player, Guess, Room: the authoritative room state.

package game

import "time"

const (
	// WordLength is the number of letters in every guess and solution.
	WordLength = 5
	// MaxAttempts is the number of guess rows each player gets.
	MaxAttempts = 6

	duelMaxPlayers         = 2
	battleRoyaleMaxPlayers = 8
	minPlayersToStart      = 2
)

// Verdict represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the solution at this position.
//   - "present": letter is in the solution elsewhere, not already accounted for.
//   - "absent":  letter is not in the remaining solution letters.
//   - "unused":  board cell with no guess yet (never produced by Evaluate).
type Verdict string

const (
	VerdictUnused  Verdict = "unused"
	VerdictCorrect Verdict = "correct"
	VerdictPresent Verdict = "present"
	VerdictAbsent  Verdict = "absent"
)

// Tile is one cell of a player's board.
type Tile struct {
	Letter string  `json:"letter"`
	Status Verdict `json:"status"`
}

// Mode selects the termination and elimination rules of a room.
type Mode string

const (
	ModeDuel         Mode = "duel"
	ModeBattleRoyale Mode = "battleRoyale"
)

// ParseMode accepts the wire names plus a few common spellings.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "duel", "Duel", "DUEL":
		return ModeDuel, true
	case "battleRoyale", "battle_royale", "battle-royale", "BattleRoyale", "br":
		return ModeBattleRoyale, true
	}
	return "", false
}

// MaxPlayers returns the roster capacity for the mode.
func (m Mode) MaxPlayers() int {
	if m == ModeDuel {
		return duelMaxPlayers
	}
	return battleRoyaleMaxPlayers
}

// Status is the room lifecycle state: waiting → playing → finished.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Outcome reasons reported with a finished room.
const (
	ReasonSolved   = "solved"
	ReasonSurvival = "survival"
	ReasonDraw     = "draw"
)

// Guess is one accepted, evaluated attempt.
type Guess struct {
	Word         string `json:"word"`
	AttemptIndex int    `json:"attemptIndex"`
	Tiles        []Tile `json:"tiles"`
}

// Player is a room member. Players are never removed while the room exists.
type Player struct {
	ID         string    `json:"id"`
	Score      int       `json:"score"`
	Eliminated bool      `json:"eliminated"`
	Won        bool      `json:"won"`
	Guesses    []Guess   `json:"guesses"`
	JoinedAt   time.Time `json:"joinedAt"`

	// next is the index of the next unfilled attempt row.
	next int
}

// Room holds the authoritative state of one game session.
// A Room is not safe for concurrent use; the registry serializes access.
type Room struct {
	Code          string
	HostID        string
	Mode          Mode
	MaxPlayers    int
	Status        Status
	Solution      string
	RoundNumber   int
	GameStartTime time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	FinishedAt    time.Time
	WinnerID      string
	Reason        string

	players []*Player
}
