package game

import "time"

// RoomView is a detached, serializable copy of a room. The solution is
// withheld until the room is finished.
type RoomView struct {
	Code          string       `json:"code"`
	HostID        string       `json:"hostId"`
	Mode          Mode         `json:"mode"`
	MaxPlayers    int          `json:"maxPlayers"`
	Status        Status       `json:"status"`
	RoundNumber   int          `json:"roundNumber"`
	Players       []PlayerView `json:"players"`
	Solution      string       `json:"solution,omitempty"`
	GameStartTime *time.Time   `json:"gameStartTime,omitempty"`
	FinishedAt    *time.Time   `json:"finishedAt,omitempty"`
	Winner        *string      `json:"winner"`
	Reason        string       `json:"reason,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// PlayerView is a detached copy of a player with the derived board.
type PlayerView struct {
	ID          string   `json:"id"`
	Score       int      `json:"score"`
	Eliminated  bool     `json:"eliminated"`
	Won         bool     `json:"won"`
	NextAttempt int      `json:"nextAttempt"`
	Guesses     []Guess  `json:"guesses"`
	Board       [][]Tile `json:"board"`
}

// Snapshot copies the room into a RoomView.
func (r *Room) Snapshot() RoomView {
	v := RoomView{
		Code:        r.Code,
		HostID:      r.HostID,
		Mode:        r.Mode,
		MaxPlayers:  r.MaxPlayers,
		Status:      r.Status,
		RoundNumber: r.RoundNumber,
		Reason:      r.Reason,
		UpdatedAt:   r.UpdatedAt,
		Players:     make([]PlayerView, 0, len(r.players)),
	}
	if r.Status == StatusFinished {
		v.Solution = r.Solution
		t := r.FinishedAt
		v.FinishedAt = &t
		if r.WinnerID != "" {
			w := r.WinnerID
			v.Winner = &w
		}
	}
	if !r.GameStartTime.IsZero() {
		t := r.GameStartTime
		v.GameStartTime = &t
	}
	for _, p := range r.players {
		guesses := make([]Guess, len(p.Guesses))
		for i, g := range p.Guesses {
			g.Tiles = append([]Tile(nil), g.Tiles...)
			guesses[i] = g
		}
		v.Players = append(v.Players, PlayerView{
			ID:          p.ID,
			Score:       p.Score,
			Eliminated:  p.Eliminated,
			Won:         p.Won,
			NextAttempt: p.next,
			Guesses:     guesses,
			Board:       p.Board(),
		})
	}
	return v
}
