package game

import "time"

// EventType names an outbound room event.
type EventType string

const (
	EventRoomUpdated    EventType = "room-updated"
	EventGameStarted    EventType = "game-started"
	EventGuessSubmitted EventType = "guess-submitted"
	EventGameOver       EventType = "game-over"
	EventGameError      EventType = "game-error"
	EventRoomClosed     EventType = "room-closed"
)

// Event is an authoritative state change (or a rejection addressed to one
// player). Transports decide who receives it; the engine only describes it.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	RoomCode     string    `json:"roomCode"`
	At           time.Time `json:"at"`
	PlayerID     string    `json:"playerId,omitempty"`
	AttemptIndex *int      `json:"attemptIndex,omitempty"`
	BoardRow     []Tile    `json:"boardRow,omitempty"`
	Winner       *string   `json:"winner"`
	Reason       string    `json:"reason,omitempty"`
	Kind         string    `json:"kind,omitempty"`
	Message      string    `json:"message,omitempty"`
	Room         *RoomView `json:"room,omitempty"`
}

// Publisher receives events in per-room order. Publish must not block.
type Publisher interface {
	Publish(ev Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

// Publish calls f(ev).
func (f PublisherFunc) Publish(ev Event) { f(ev) }

// Fanout publishes each event to every publisher in order.
type Fanout []Publisher

// Publish forwards ev to each publisher.
func (f Fanout) Publish(ev Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ev)
		}
	}
}
