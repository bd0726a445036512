// internal/store/registry.go
//
// In-memory room registry.
// The registry exclusively owns every live *game.Room. Callers never hold a
// room pointer outside of Update/View; they receive game.RoomView snapshots.
//
// Characteristics:
//   - Room codes are allocated under the registry write lock, so concurrent
//     creates never share a code.
//   - Each room has its own mutex; Update runs one mutation per room at a time
//     and different rooms proceed in parallel.
//   - Lock order is registry → room. Update releases the registry lock before
//     taking the room lock, so a mutation never holds both.
//   - State is lost when the process restarts.

package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

const (
	// CodeLength is the number of characters in a room code.
	CodeLength = 6

	// codeAlphabet omits 0/O and 1/I so codes survive being read aloud.
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 32
)

// ErrCodeSpaceExhausted is returned when no free code was found after
// maxCodeAttempts draws.
var ErrCodeSpaceExhausted = errors.New("store: could not allocate a unique room code")

// entry guards one room.
type entry struct {
	mu      sync.Mutex
	room    *game.Room
	removed bool
}

// Registry maps room codes to rooms.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*entry
	newCode func() (string, error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithCodeSource overrides the random code generator.
func WithCodeSource(fn func() (string, error)) Option {
	return func(r *Registry) { r.newCode = fn }
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{rooms: make(map[string]*entry), newCode: RandomCode}
	for _, o := range opts {
		o(r)
	}
	return r
}

// NormalizeCode trims and uppercases a user-supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create allocates a fresh code and registers a waiting room with the host.
// Code collisions are retried.
func (r *Registry) Create(hostID string, mode game.Mode, now time.Time) (game.RoomView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < maxCodeAttempts; i++ {
		code, err := r.newCode()
		if err != nil {
			return game.RoomView{}, fmt.Errorf("store: generate code: %w", err)
		}
		code = NormalizeCode(code)
		if _, taken := r.rooms[code]; taken {
			continue
		}
		room, err := game.NewRoom(code, hostID, mode, now)
		if err != nil {
			return game.RoomView{}, err
		}
		r.rooms[code] = &entry{room: room}
		return room.Snapshot(), nil
	}
	return game.RoomView{}, ErrCodeSpaceExhausted
}

// lookup returns the entry for code without locking it.
func (r *Registry) lookup(code string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[NormalizeCode(code)]
	return e, ok
}

// Update runs fn with exclusive access to the room. fn's error is returned
// unchanged. Returns game.ErrRoomNotFound if the code is not live.
func (r *Registry) Update(code string, fn func(*game.Room) error) error {
	e, ok := r.lookup(code)
	if !ok {
		return game.ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return game.ErrRoomNotFound
	}
	return fn(e.room)
}

// Get returns a snapshot of the room.
func (r *Registry) Get(code string) (game.RoomView, error) {
	var v game.RoomView
	err := r.Update(code, func(room *game.Room) error {
		v = room.Snapshot()
		return nil
	})
	return v, err
}

// Remove discards a room. It reports whether the code was live.
func (r *Registry) Remove(code string) bool {
	code = NormalizeCode(code)
	r.mu.Lock()
	e, ok := r.rooms[code]
	delete(r.rooms, code)
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	return true
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Reap removes rooms that finished more than finishedTTL ago or have not been
// touched for idleTTL, and returns their codes. Rooms busy in Update are
// skipped this round.
func (r *Registry) Reap(now time.Time, idleTTL, finishedTTL time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reaped []string
	for code, e := range r.rooms {
		if !e.mu.TryLock() {
			continue
		}
		room := e.room
		expired := (room.Settled() && now.Sub(room.FinishedAt) >= finishedTTL) ||
			now.Sub(room.UpdatedAt) >= idleTTL
		if expired {
			e.removed = true
			delete(r.rooms, code)
			reaped = append(reaped, code)
		}
		e.mu.Unlock()
	}
	return reaped
}

// RandomCode returns a CodeLength code drawn from crypto/rand.
func RandomCode() (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
