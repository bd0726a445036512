// internal/hub/client.go
//
// One WebSocket connection: a read pump applying inbound frames and a write
// pump draining the send queue with ping keepalive.

package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/versus-server/internal/engine"
	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

// Client is a subscribed connection acting for one player of one room.
type Client struct {
	hub     *Hub
	actions Actions
	conn    *websocket.Conn
	id      string
	room    string
	player  string
	send    chan []byte
}

func newClient(h *Hub, actions Actions, conn *websocket.Conn, room, player string) *Client {
	return &Client{
		hub:     h,
		actions: actions,
		conn:    conn,
		id:      uuid.NewString(),
		room:    room,
		player:  player,
		send:    make(chan []byte, sendBuffer),
	}
}

// inbound is a frame sent by the browser.
type inbound struct {
	Type         string `json:"type"`
	Word         string `json:"word"`
	AttemptIndex *int   `json:"attemptIndex"`
}

// queue enqueues msg without blocking; a full queue drops the frame. Only
// Run calls it, so it never races with the channel being closed.
func (c *Client) queue(msg []byte) {
	if msg == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
		log.Warn().Str("room", c.room).Str("player", c.player).Str("conn", c.id).Msg("client send queue full, dropping frame")
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("room", c.room).Str("player", c.player).Msg("websocket read error")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := c.handle(data); err != nil {
			select {
			case c.hub.replies <- reply{client: c, msg: encode(errorEvent(c, err))}:
			case <-c.hub.done:
				return
			}
		}
	}
}

// handle applies one inbound frame. Successful actions reach every
// subscriber, this one included, through the published events.
func (c *Client) handle(data []byte) error {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("%w: malformed frame", game.ErrInvalidState)
	}
	ctx := log.With().Str("room", c.room).Str("player", c.player).Str("conn", c.id).Logger().WithContext(context.Background())

	switch in.Type {
	case "start":
		_, err := c.actions.StartGame(ctx, c.room, c.player, in.Word)
		return err
	case "guess":
		if in.AttemptIndex == nil {
			return fmt.Errorf("%w: attemptIndex is required", game.ErrInvalidAttempt)
		}
		_, _, err := c.actions.SubmitGuess(ctx, c.room, c.player, in.Word, *in.AttemptIndex)
		return err
	default:
		return fmt.Errorf("%w: unknown frame type %q", game.ErrInvalidState, in.Type)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Str("room", c.room).Str("conn", c.id).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorEvent(c *Client, err error) game.Event {
	return engine.ErrorEvent(c.room, c.player, err)
}
