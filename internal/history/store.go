package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/robalobadob/wordle/apps/versus-server/internal/game"
)

// Result is one finished round.
type Result struct {
	EventID     string       `json:"-"`
	RoomCode    string       `json:"roomCode"`
	RoundNumber int          `json:"roundNumber"`
	Mode        string       `json:"mode"`
	Solution    string       `json:"solution"`
	WinnerID    string       `json:"winnerId,omitempty"`
	Reason      string       `json:"reason"`
	StartedAt   time.Time    `json:"startedAt"`
	FinishedAt  time.Time    `json:"finishedAt"`
	Players     []PlayerLine `json:"players,omitempty"`
}

// PlayerLine is a player's outcome in one round.
type PlayerLine struct {
	PlayerID   string `json:"playerId"`
	Guesses    int    `json:"guesses"`
	Won        bool   `json:"won"`
	Eliminated bool   `json:"eliminated"`
	Score      int    `json:"score"`
}

// Summary is a row of the recent results listing.
type Summary struct {
	RoomCode   string `json:"roomCode"`
	Mode       string `json:"mode"`
	Solution   string `json:"solution"`
	WinnerID   string `json:"winnerId,omitempty"`
	Reason     string `json:"reason"`
	Players    int    `json:"players"`
	FinishedAt string `json:"finishedAt"`
}

// Stats aggregates a player's history.
type Stats struct {
	PlayerID   string `json:"playerId"`
	Games      int    `json:"games"`
	Wins       int    `json:"wins"`
	Draws      int    `json:"draws"`
	TotalScore int    `json:"totalScore"`
}

// ResultFromView builds a Result from a finished room snapshot.
func ResultFromView(eventID string, v game.RoomView) Result {
	r := Result{
		EventID:     eventID,
		RoomCode:    v.Code,
		RoundNumber: v.RoundNumber,
		Mode:        string(v.Mode),
		Solution:    v.Solution,
		Reason:      v.Reason,
	}
	if v.Winner != nil {
		r.WinnerID = *v.Winner
	}
	if v.GameStartTime != nil {
		r.StartedAt = *v.GameStartTime
	}
	if v.FinishedAt != nil {
		r.FinishedAt = *v.FinishedAt
	} else {
		r.FinishedAt = v.UpdatedAt
	}
	for _, p := range v.Players {
		r.Players = append(r.Players, PlayerLine{
			PlayerID:   p.ID,
			Guesses:    len(p.Guesses),
			Won:        p.Won,
			Eliminated: p.Eliminated,
			Score:      p.Score,
		})
	}
	return r
}

// Store reads and writes match history.
type Store struct{ db *sql.DB }

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert stores a result and its player lines. Re-inserting the same
// EventID is ignored.
func (s *Store) Insert(ctx context.Context, r Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var started any
	if !r.StartedAt.IsZero() {
		started = r.StartedAt.UTC().Format(time.RFC3339)
	}
	var winner any
	if r.WinnerID != "" {
		winner = r.WinnerID
	}
	res, err := tx.ExecContext(ctx, `
        INSERT OR IGNORE INTO results
            (event_id, room_code, round_number, mode, solution, winner_id, reason, players, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.EventID, r.RoomCode, r.RoundNumber, r.Mode, r.Solution, winner, r.Reason,
		len(r.Players), started, r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, p := range r.Players {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO result_players (result_id, player_id, guesses, won, eliminated, score)
            VALUES (?, ?, ?, ?, ?, ?)`,
			id, p.PlayerID, p.Guesses, p.Won, p.Eliminated, p.Score,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Recent lists the latest results, newest first. Default limit is 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT room_code, mode, solution, COALESCE(winner_id, ''), reason, players, finished_at
        FROM results
        ORDER BY finished_at DESC, id DESC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Summary, 0, limit)
	for rows.Next() {
		var r Summary
		if err := rows.Scan(&r.RoomCode, &r.Mode, &r.Solution, &r.WinnerID, &r.Reason, &r.Players, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PlayerStats aggregates every round the player took part in.
func (s *Store) PlayerStats(ctx context.Context, playerID string) (Stats, error) {
	st := Stats{PlayerID: playerID}
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(rp.won), 0),
               COALESCE(SUM(CASE WHEN r.reason = 'draw' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(rp.score), 0)
        FROM result_players rp
        JOIN results r ON r.id = rp.result_id
        WHERE lower(rp.player_id) = lower(?)`, playerID,
	).Scan(&st.Games, &st.Wins, &st.Draws, &st.TotalScore)
	return st, err
}
