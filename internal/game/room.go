// internal/game/room.go
//
// Room entity, player roster and per-player attempt tracking.
//
// Invariants kept by this file:
//   - len(players) <= MaxPlayers.
//   - HostID is always a member of players.
//   - Player ids are unique within a room (case-insensitive).
//   - Players join only while the room is waiting.

package game

import (
	"fmt"
	"strings"
	"time"
)

// NewRoom creates a waiting room with the host as its only player.
func NewRoom(code, hostID string, mode Mode, now time.Time) (*Room, error) {
	hostID, err := normalizeUsername(hostID)
	if err != nil {
		return nil, err
	}
	if mode != ModeDuel && mode != ModeBattleRoyale {
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidState, mode)
	}
	r := &Room{
		Code:        strings.ToUpper(code),
		HostID:      hostID,
		Mode:        mode,
		MaxPlayers:  mode.MaxPlayers(),
		Status:      StatusWaiting,
		RoundNumber: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.players = []*Player{{ID: hostID, JoinedAt: now}}
	return r, nil
}

// AddPlayer appends a new player to the roster.
func (r *Room) AddPlayer(id string, now time.Time) (*Player, error) {
	id, err := normalizeUsername(id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusWaiting {
		return nil, fmt.Errorf("%w: cannot join a %s room", ErrInvalidState, r.Status)
	}
	if r.Player(id) != nil {
		return nil, ErrDuplicatePlayer
	}
	if len(r.players) >= r.MaxPlayers {
		return nil, ErrRoomFull
	}
	p := &Player{ID: id, JoinedAt: now}
	r.players = append(r.players, p)
	r.UpdatedAt = now
	return p, nil
}

// Player looks up a player by id (case-insensitive). Returns nil if absent.
func (r *Room) Player(id string) *Player {
	id = strings.TrimSpace(id)
	for _, p := range r.players {
		if strings.EqualFold(p.ID, id) {
			return p
		}
	}
	return nil
}

// Players returns the roster in join order.
func (r *Room) Players() []*Player {
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// ActivePlayers returns players who have not been eliminated.
func (r *Room) ActivePlayers() []*Player {
	var out []*Player
	for _, p := range r.players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

// IsHost reports whether id is the room host.
func (r *Room) IsHost(id string) bool {
	return strings.EqualFold(r.HostID, strings.TrimSpace(id))
}

// Settled reports that the room can undergo no further state change.
func (r *Room) Settled() bool { return r.Status == StatusFinished }

// NextAttempt is the index of the player's next unfilled row (0..MaxAttempts).
func (p *Player) NextAttempt() int { return p.next }

// Exhausted reports whether the player has used every attempt.
func (p *Player) Exhausted() bool { return p.next >= MaxAttempts }

// CanGuess reports whether the player may still submit guesses.
func (p *Player) CanGuess() bool { return !p.Won && !p.Eliminated && !p.Exhausted() }

// CheckAttempt accepts attemptIndex only if it is the player's next row.
// Replayed or skipped indices are rejected.
func (p *Player) CheckAttempt(attemptIndex int) error {
	if attemptIndex < 0 || attemptIndex >= MaxAttempts {
		return fmt.Errorf("%w: %d is outside 0..%d", ErrInvalidAttempt, attemptIndex, MaxAttempts-1)
	}
	if attemptIndex != p.next {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidAttempt, p.next, attemptIndex)
	}
	return nil
}

// record appends an evaluated guess and advances the attempt counter.
func (p *Player) record(g Guess) {
	p.Guesses = append(p.Guesses, g)
	p.next++
}

// Board returns all MaxAttempts rows; unfilled rows hold unused tiles.
func (p *Player) Board() [][]Tile {
	rows := make([][]Tile, MaxAttempts)
	for i := range rows {
		rows[i] = make([]Tile, WordLength)
		for j := range rows[i] {
			rows[i][j] = Tile{Status: VerdictUnused}
		}
	}
	for _, g := range p.Guesses {
		copy(rows[g.AttemptIndex], g.Tiles)
	}
	return rows
}

// normalizeUsername trims whitespace and enforces 3–24 [A-Za-z0-9_].
func normalizeUsername(u string) (string, error) {
	u = strings.TrimSpace(u)
	if len(u) < 3 || len(u) > 24 {
		return "", ErrInvalidUsername
	}
	for _, c := range u {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return "", ErrInvalidUsername
		}
	}
	return u, nil
}
