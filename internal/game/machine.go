// internal/game/machine.go
//
// Room state machine: waiting → playing → finished.
//
// Guess processing rules:
//   - Duel: the first solving guess wins; if every player exhausts all
//     attempts without solving, the room ends in a draw.
//   - Battle Royale: a player who exhausts all attempts is eliminated.
//     The round ends on the first solve, when a single non-eliminated player
//     remains (winner by survival), or when everyone is eliminated (draw).
//
// Nothing leaves finished.

package game

import (
	"fmt"
	"time"
)

// GuessResult describes the effect of one accepted guess.
type GuessResult struct {
	PlayerID   string `json:"playerId"`
	Guess      Guess  `json:"guess"`
	Solved     bool   `json:"solved"`
	Exhausted  bool   `json:"exhausted"`
	Eliminated bool   `json:"eliminated"`
	Finished   bool   `json:"finished"`
	WinnerID   string `json:"winnerId,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// CheckStart runs every precondition of Start except solution validation.
func (r *Room) CheckStart(by string) error {
	if !r.IsHost(by) {
		if r.Player(by) == nil {
			return ErrPlayerNotFound
		}
		return ErrNotHost
	}
	if r.Status != StatusWaiting {
		return fmt.Errorf("%w: room is already %s", ErrInvalidState, r.Status)
	}
	if len(r.players) < minPlayersToStart {
		return fmt.Errorf("%w: need at least %d players", ErrInvalidState, minPlayersToStart)
	}
	return nil
}

// Start moves a waiting room to playing with the given solution.
// The caller is responsible for dictionary checks on solution.
func (r *Room) Start(by, solution string, now time.Time) error {
	if err := r.CheckStart(by); err != nil {
		return err
	}
	word, ok := NormalizeWord(solution)
	if !ok {
		return fmt.Errorf("%w: solution must be %d letters", ErrInvalidWord, WordLength)
	}
	r.Solution = word
	r.Status = StatusPlaying
	r.GameStartTime = now
	r.UpdatedAt = now
	return nil
}

// CheckGuess runs every precondition of ApplyGuess except word validation,
// in the order: room state, player membership, player activity, attempt index.
func (r *Room) CheckGuess(playerID string, attemptIndex int) error {
	if r.Status != StatusPlaying {
		return fmt.Errorf("%w: game not active (room is %s)", ErrInvalidState, r.Status)
	}
	p := r.Player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if p.Won || p.Eliminated {
		return ErrPlayerInactive
	}
	return p.CheckAttempt(attemptIndex)
}

// ApplyGuess validates, evaluates and records a guess, then applies the
// mode's termination rules. A rejected guess leaves the room untouched.
func (r *Room) ApplyGuess(playerID, word string, attemptIndex int, now time.Time) (GuessResult, error) {
	if err := r.CheckGuess(playerID, attemptIndex); err != nil {
		return GuessResult{}, err
	}
	w, ok := NormalizeWord(word)
	if !ok {
		return GuessResult{}, fmt.Errorf("%w: guess must be %d letters", ErrInvalidWord, WordLength)
	}
	if r.Solution == "" {
		panic(fmt.Sprintf("game: room %s is playing without a solution", r.Code))
	}

	p := r.Player(playerID)
	verdicts := Evaluate(w, r.Solution)
	g := Guess{Word: w, AttemptIndex: attemptIndex, Tiles: Tiles(w, verdicts)}
	p.record(g)
	r.UpdatedAt = now

	res := GuessResult{PlayerID: p.ID, Guess: g}
	switch {
	case allCorrect(verdicts):
		p.Won = true
		p.Score += MaxAttempts + 1 - len(p.Guesses)
		res.Solved = true
		r.finish(p.ID, ReasonSolved, now)
	case p.Exhausted():
		res.Exhausted = true
		if r.Mode == ModeBattleRoyale {
			p.Eliminated = true
			res.Eliminated = true
		}
		r.settle(now)
	}

	res.Finished = r.Status == StatusFinished
	res.WinnerID = r.WinnerID
	res.Reason = r.Reason
	return res, nil
}

// settle ends the round when no solve happened but the mode's
// exhaustion/elimination rules say the round is over.
func (r *Room) settle(now time.Time) {
	switch r.Mode {
	case ModeDuel:
		for _, p := range r.players {
			if !p.Exhausted() {
				return
			}
		}
		r.finish("", ReasonDraw, now)
	case ModeBattleRoyale:
		active := r.ActivePlayers()
		switch len(active) {
		case 0:
			r.finish("", ReasonDraw, now)
		case 1:
			survivor := active[0]
			survivor.Won = true
			survivor.Score++
			r.finish(survivor.ID, ReasonSurvival, now)
		}
	}
}

func (r *Room) finish(winnerID, reason string, now time.Time) {
	if r.Status != StatusPlaying {
		panic(fmt.Sprintf("game: room %s finishing from %s", r.Code, r.Status))
	}
	r.Status = StatusFinished
	r.WinnerID = winnerID
	r.Reason = reason
	r.FinishedAt = now
	r.UpdatedAt = now
}
