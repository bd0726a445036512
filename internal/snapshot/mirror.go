// internal/snapshot/mirror.go
//
// Redis mirror of live room snapshots.
// Every event that carries a room snapshot overwrites <prefix>room:<CODE>
// with the JSON RoomView and a TTL; room-closed deletes the key. Other
// processes (dashboards, a restarted server) can read rooms back with Load.
// The registry stays authoritative; the mirror is write-behind only.

package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

// Mirror writes room snapshots to Redis asynchronously.
type Mirror struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	queue  chan game.Event
}

// NewMirror builds a Mirror. An empty prefix defaults to "versus:" and a
// non-positive ttl to one hour.
func NewMirror(client *redis.Client, prefix string, ttl time.Duration) *Mirror {
	if client == nil {
		panic("redis client cannot be nil for Mirror")
	}
	if prefix == "" {
		prefix = "versus:"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Mirror{client: client, prefix: prefix, ttl: ttl, queue: make(chan game.Event, 512)}
}

// Key returns the Redis key of a room snapshot.
func (m *Mirror) Key(code string) string {
	return fmt.Sprintf("%sroom:%s", m.prefix, code)
}

// Publish implements game.Publisher.
func (m *Mirror) Publish(ev game.Event) {
	if ev.Room == nil && ev.Type != game.EventRoomClosed {
		return
	}
	select {
	case m.queue <- ev:
	default:
		log.Warn().Str("room", ev.RoomCode).Str("type", string(ev.Type)).Msg("snapshot queue full, dropping event")
	}
}

// Run applies queued events until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-m.queue:
			if err := m.apply(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Str("room", ev.RoomCode).Msg("mirror room snapshot")
			}
		}
	}
}

func (m *Mirror) apply(ctx context.Context, ev game.Event) error {
	key := m.Key(ev.RoomCode)
	if ev.Type == game.EventRoomClosed {
		return m.client.Del(ctx, key).Err()
	}
	b, err := json.Marshal(ev.Room)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return m.client.Set(ctx, key, b, m.ttl).Err()
}

// Load reads a mirrored snapshot.
func (m *Mirror) Load(ctx context.Context, code string) (game.RoomView, error) {
	var v game.RoomView
	b, err := m.client.Get(ctx, m.Key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, game.ErrRoomNotFound
	}
	if err != nil {
		return v, fmt.Errorf("redis: get snapshot %s: %w", code, err)
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decode snapshot %s: %w", code, err)
	}
	return v, nil
}
