package game

import "errors"

// Rejection kinds. Every one of these is an expected, recoverable outcome
// reported back to the originator of the request.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidState    = errors.New("operation not allowed in current room state")
	ErrRoomFull        = errors.New("room is full")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrPlayerInactive  = errors.New("player can no longer guess")
	ErrInvalidAttempt  = errors.New("invalid attempt index")
	ErrInvalidWord     = errors.New("invalid word")
	ErrDuplicatePlayer = errors.New("username already taken in this room")
	ErrNotHost         = errors.New("only the host can do that")
	ErrInvalidUsername = errors.New("username must be 3-24 letters, digits or underscores")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrRoomNotFound, "room_not_found"},
	{ErrInvalidState, "invalid_state"},
	{ErrRoomFull, "room_full"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrPlayerInactive, "player_inactive"},
	{ErrInvalidAttempt, "invalid_attempt"},
	{ErrInvalidWord, "invalid_word"},
	{ErrDuplicatePlayer, "duplicate_player"},
	{ErrNotHost, "not_host"},
	{ErrInvalidUsername, "invalid_username"},
}

// Kind returns the stable wire name for a rejection, or "internal" for
// anything outside the taxonomy.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
