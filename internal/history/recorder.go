package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

// Recorder persists game-over events off the engine's hot path.
// Publish only enqueues; Run drains the queue into the Store.
type Recorder struct {
	store *Store
	queue chan game.Event
}

// NewRecorder creates a Recorder with a buffered queue.
func NewRecorder(store *Store, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{store: store, queue: make(chan game.Event, buffer)}
}

// Publish implements game.Publisher. Non game-over events are ignored and a
// full queue drops the event with a warning.
func (r *Recorder) Publish(ev game.Event) {
	if ev.Type != game.EventGameOver || ev.Room == nil {
		return
	}
	select {
	case r.queue <- ev:
	default:
		log.Warn().Str("room", ev.RoomCode).Msg("history queue full, dropping result")
	}
}

// Run writes queued results until ctx is cancelled, then drains what is left.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-r.queue:
			r.write(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-r.queue:
					r.write(ev)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) write(ev game.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := ResultFromView(ev.ID, *ev.Room)
	if err := r.store.Insert(ctx, res); err != nil {
		log.Warn().Err(err).Str("room", ev.RoomCode).Msg("record result")
		return
	}
	log.Debug().Str("room", ev.RoomCode).Str("winner", res.WinnerID).Msg("result recorded")
}
