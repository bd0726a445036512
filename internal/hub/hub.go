// internal/hub/hub.go
//
// WebSocket fan-out for room events.
//
// The Hub is a game.Publisher: the engine hands it events while holding the
// room lock, so Publish only enqueues. Run owns the subscriber map and is the
// only goroutine that touches it; registration, removal and delivery all go
// through its channels, which keeps one room's frames in publish order.
//
// Inbound frames from a connection are applied through the Actions the
// connection was served with. Rejections are answered to that connection only and never broadcast.

package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
	"github.com/robalobadob/wordle/apps/versus-server/internal/store"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	sendBuffer  = 64
	eventBuffer = 1024
)

// Actions is the slice of the engine a connection may drive.
type Actions interface {
	GetRoom(ctx context.Context, code string) (game.RoomView, error)
	StartGame(ctx context.Context, code, hostID, customWord string) (game.RoomView, error)
	SubmitGuess(ctx context.Context, code, playerID, word string, attemptIndex int) (game.GuessResult, game.RoomView, error)
}

// reply is a frame addressed to a single connection.
type reply struct {
	client *Client
	msg    []byte
}

// Hub keeps the set of live connections per room.
type Hub struct {
	upgrader   websocket.Upgrader
	events     chan game.Event
	register   chan *Client
	unregister chan *Client
	replies    chan reply
	done       chan struct{}

	// owned by Run
	rooms map[string]map[*Client]struct{}
}

// Option configures a Hub.
type Option func(*Hub)

// WithAllowedOrigins restricts browser origins allowed to upgrade. Requests
// without an Origin header are always allowed.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Hub) {
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			if o != "" {
				allowed[o] = struct{}{}
			}
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 {
				return true
			}
			_, ok := allowed[origin]
			return ok
		}
	}
}

// New builds a Hub. Run must be started before connections are served.
func New(opts ...Option) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		events:     make(chan game.Event, eventBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		replies:    make(chan reply),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Publish implements game.Publisher. It never blocks.
func (h *Hub) Publish(ev game.Event) {
	select {
	case h.events <- ev:
	default:
		log.Warn().Str("room", ev.RoomCode).Str("type", string(ev.Type)).Msg("hub event queue full, dropping event")
	}
}

// ServeWS upgrades the request and subscribes the connection to room code
// on behalf of playerID; inbound frames are applied through actions.
// Callers authenticate before calling.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, actions Actions, code, playerID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Debug().Err(err).Str("room", code).Msg("websocket upgrade failed")
		return
	}
	c := newClient(h, actions, conn, store.NormalizeCode(code), playerID)
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// Run delivers events until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	log.Info().Msg("hub running")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for code := range h.rooms {
				h.dropRoom(code)
			}
			log.Info().Msg("hub stopped")
			return nil
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case rp := <-h.replies:
			if _, ok := h.rooms[rp.client.room][rp.client]; ok {
				rp.client.queue(rp.msg)
			}
		case ev := <-h.events:
			h.deliver(ev)
		}
	}
}

func (h *Hub) add(c *Client) {
	// Late subscribers start from the current snapshot.
	view, err := c.actions.GetRoom(context.Background(), c.room)
	if err != nil {
		c.queue(encode(errorEvent(c, err)))
		close(c.send)
		return
	}
	subs, ok := h.rooms[c.room]
	if !ok {
		subs = make(map[*Client]struct{})
		h.rooms[c.room] = subs
	}
	subs[c] = struct{}{}
	c.queue(encode(game.Event{Type: game.EventRoomUpdated, RoomCode: view.Code, At: time.Now().UTC(), Room: &view}))
	log.Debug().Str("room", c.room).Str("player", c.player).Str("conn", c.id).Msg("client registered")
}

func (h *Hub) remove(c *Client) {
	subs, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	close(c.send)
	if len(subs) == 0 {
		delete(h.rooms, c.room)
	}
	log.Debug().Str("room", c.room).Str("player", c.player).Str("conn", c.id).Msg("client unregistered")
}

func (h *Hub) deliver(ev game.Event) {
	subs := h.rooms[ev.RoomCode]
	if len(subs) > 0 {
		msg := encode(ev)
		for c := range subs {
			c.queue(msg)
		}
	}
	if ev.Type == game.EventRoomClosed {
		h.dropRoom(ev.RoomCode)
	}
}

// dropRoom closes every subscriber of code; their write pumps send a close
// frame once the queued frames are flushed.
func (h *Hub) dropRoom(code string) {
	for c := range h.rooms[code] {
		close(c.send)
	}
	delete(h.rooms, code)
}

func encode(ev game.Event) []byte {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", string(ev.Type)).Msg("encode event")
		return nil
	}
	return b
}
