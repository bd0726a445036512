// internal/engine/engine.go
//
// Engine is the inbound surface of the versus game: create, join, start,
// guess, close. It owns no state of its own; rooms live in the registry and
// every mutation runs inside Registry.Update, so a room's events are
// published in exactly the order its mutations happened.
//
// Rejections are returned as errors from the game package taxonomy and are
// never broadcast; the transport decides how to tell the originator.

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
)

// Dictionary is the word service the engine depends on.
type Dictionary interface {
	IsValidWord(word string) bool
	RandomWord() string
}

// Engine applies inbound events to rooms and publishes the results.
type Engine struct {
	rooms  *store.Registry
	words  Dictionary
	pub    game.Publisher
	now    func() time.Time
	strict bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithStrictGuesses toggles dictionary validation of guesses (default on).
func WithStrictGuesses(strict bool) Option { return func(e *Engine) { e.strict = strict } }

// New wires an Engine. pub may be nil when nobody listens.
func New(rooms *store.Registry, words Dictionary, pub game.Publisher, opts ...Option) *Engine {
	if pub == nil {
		pub = game.Fanout(nil)
	}
	e := &Engine{rooms: rooms, words: words, pub: pub, now: time.Now, strict: true}
	for _, o := range opts {
		o(e)
	}
	return e
}

// CreateRoom registers a new waiting room with hostID as its first player.
func (e *Engine) CreateRoom(ctx context.Context, hostID string, mode game.Mode) (game.RoomView, error) {
	created, err := e.rooms.Create(hostID, mode, e.now())
	if err != nil {
		return game.RoomView{}, e.reject(ctx, "create", "", hostID, err)
	}
	var view game.RoomView
	err = e.rooms.Update(created.Code, func(r *game.Room) error {
		view = r.Snapshot()
		e.emit(game.Event{Type: game.EventRoomUpdated, RoomCode: r.Code, Room: &view})
		return nil
	})
	if err != nil {
		return game.RoomView{}, err
	}
	logFor(ctx).Info().Str("room", view.Code).Str("host", view.HostID).Str("mode", string(mode)).Msg("room created")
	return view, nil
}

// JoinRoom adds username to a waiting room.
func (e *Engine) JoinRoom(ctx context.Context, code, username string) (game.RoomView, error) {
	var view game.RoomView
	err := e.rooms.Update(code, func(r *game.Room) error {
		p, err := r.AddPlayer(username, e.now())
		if err != nil {
			return err
		}
		view = r.Snapshot()
		e.emit(game.Event{Type: game.EventRoomUpdated, RoomCode: r.Code, PlayerID: p.ID, Room: &view})
		return nil
	})
	if err != nil {
		return game.RoomView{}, e.reject(ctx, "join", code, username, err)
	}
	logFor(ctx).Info().Str("room", view.Code).Str("player", username).Int("players", len(view.Players)).Msg("player joined")
	return view, nil
}

// StartGame moves the room to playing. An empty customWord asks the
// dictionary for a random solution; otherwise the word must be a valid
// five-letter dictionary word.
func (e *Engine) StartGame(ctx context.Context, code, hostID, customWord string) (game.RoomView, error) {
	var view game.RoomView
	err := e.rooms.Update(code, func(r *game.Room) error {
		if err := r.CheckStart(hostID); err != nil {
			return err
		}
		solution, err := e.solution(customWord)
		if err != nil {
			return err
		}
		if err := r.Start(hostID, solution, e.now()); err != nil {
			return err
		}
		view = r.Snapshot()
		e.emit(game.Event{Type: game.EventGameStarted, RoomCode: r.Code, Room: &view})
		e.emit(game.Event{Type: game.EventRoomUpdated, RoomCode: r.Code, Room: &view})
		return nil
	})
	if err != nil {
		return game.RoomView{}, e.reject(ctx, "start", code, hostID, err)
	}
	logFor(ctx).Info().Str("room", view.Code).Bool("customWord", customWord != "").Msg("game started")
	return view, nil
}

func (e *Engine) solution(customWord string) (string, error) {
	if customWord == "" {
		return e.words.RandomWord(), nil
	}
	w, ok := game.NormalizeWord(customWord)
	if !ok {
		return "", fmt.Errorf("%w: solution must be %d letters", game.ErrInvalidWord, game.WordLength)
	}
	if !e.words.IsValidWord(w) {
		return "", fmt.Errorf("%w: %s is not in the word list", game.ErrInvalidWord, w)
	}
	return w, nil
}

// SubmitGuess applies one guess. Either the guess is fully applied and its
// events published, or nothing changes and a rejection is returned.
func (e *Engine) SubmitGuess(ctx context.Context, code, playerID, word string, attemptIndex int) (game.GuessResult, game.RoomView, error) {
	var (
		res  game.GuessResult
		view game.RoomView
	)
	err := e.rooms.Update(code, func(r *game.Room) error {
		if err := r.CheckGuess(playerID, attemptIndex); err != nil {
			return err
		}
		if e.strict {
			if w, ok := game.NormalizeWord(word); ok && !e.words.IsValidWord(w) {
				return fmt.Errorf("%w: %s is not in the word list", game.ErrInvalidWord, w)
			}
		}
		var err error
		res, err = r.ApplyGuess(playerID, word, attemptIndex, e.now())
		if err != nil {
			return err
		}
		view = r.Snapshot()
		idx := res.Guess.AttemptIndex
		e.emit(game.Event{
			Type:         game.EventGuessSubmitted,
			RoomCode:     r.Code,
			PlayerID:     res.PlayerID,
			AttemptIndex: &idx,
			BoardRow:     res.Guess.Tiles,
			Room:         &view,
		})
		e.emit(game.Event{Type: game.EventRoomUpdated, RoomCode: r.Code, Room: &view})
		if res.Finished {
			e.emit(game.Event{
				Type:     game.EventGameOver,
				RoomCode: r.Code,
				Winner:   view.Winner,
				Reason:   res.Reason,
				Room:     &view,
			})
		}
		return nil
	})
	if err != nil {
		return game.GuessResult{}, game.RoomView{}, e.reject(ctx, "guess", code, playerID, err)
	}

	l := logFor(ctx)
	l.Info().Str("room", view.Code).Str("player", res.PlayerID).Int("attempt", attemptIndex).
		Bool("solved", res.Solved).Bool("eliminated", res.Eliminated).Msg("guess applied")
	if res.Finished {
		l.Info().Str("room", view.Code).Str("winner", res.WinnerID).Str("reason", res.Reason).Msg("game over")
	}
	return res, view, nil
}

// GetRoom returns a snapshot of the room.
func (e *Engine) GetRoom(ctx context.Context, code string) (game.RoomView, error) {
	return e.rooms.Get(code)
}

// Settled reports whether the room can no longer change state, for
// external reapers.
func (e *Engine) Settled(ctx context.Context, code string) (bool, error) {
	var settled bool
	err := e.rooms.Update(code, func(r *game.Room) error {
		settled = r.Settled()
		return nil
	})
	return settled, err
}

// CloseRoom lets the host dispose of a room explicitly.
func (e *Engine) CloseRoom(ctx context.Context, code, by string) error {
	var normalized string
	err := e.rooms.Update(code, func(r *game.Room) error {
		if !r.IsHost(by) {
			if r.Player(by) == nil {
				return game.ErrPlayerNotFound
			}
			return game.ErrNotHost
		}
		normalized = r.Code
		return nil
	})
	if err != nil {
		return e.reject(ctx, "close", code, by, err)
	}
	if e.rooms.Remove(normalized) {
		e.emit(game.Event{Type: game.EventRoomClosed, RoomCode: normalized, Reason: "closed by host"})
		logFor(ctx).Info().Str("room", normalized).Msg("room closed")
	}
	return nil
}

// Reap discards expired rooms and announces their closure.
func (e *Engine) Reap(ctx context.Context, idleTTL, finishedTTL time.Duration) []string {
	codes := e.rooms.Reap(e.now(), idleTTL, finishedTTL)
	for _, code := range codes {
		e.emit(game.Event{Type: game.EventRoomClosed, RoomCode: code, Reason: "expired"})
	}
	if len(codes) > 0 {
		logFor(ctx).Info().Strs("rooms", codes).Msg("reaped rooms")
	}
	return codes
}

// ErrorEvent builds the game-error event a transport sends back to the
// originator of a rejected request.
func ErrorEvent(code, playerID string, err error) game.Event {
	return game.Event{
		ID:       uuid.NewString(),
		Type:     game.EventGameError,
		RoomCode: store.NormalizeCode(code),
		At:       time.Now().UTC(),
		PlayerID: playerID,
		Kind:     game.Kind(err),
		Message:  err.Error(),
	}
}

func (e *Engine) emit(ev game.Event) {
	ev.ID = uuid.NewString()
	ev.At = e.now().UTC()
	e.pub.Publish(ev)
}

func (e *Engine) reject(ctx context.Context, op, code, player string, err error) error {
	logFor(ctx).Debug().Err(err).Str("op", op).Str("room", code).Str("player", player).
		Str("kind", game.Kind(err)).Msg("request rejected")
	return err
}

// logFor prefers the request-scoped logger installed by hlog.
func logFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
