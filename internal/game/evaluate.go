// internal/game/evaluate.go
//
// Guess evaluation for the versus engine.
// Evaluate is the single authoritative scorer; clients may score locally for
// instant feedback but must reconcile against the broadcast rows.

package game

import "strings"

// Evaluate implements the standard two-pass Wordle scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as correct.
//   - Count remaining (non-correct) solution letters.
//
// Pass 2:
//   - For each non-correct guess letter: if there is remaining count for that
//     letter, mark present and decrement the count; otherwise mark absent.
//
// Both words must be WordLength ASCII letters; case is ignored. Callers
// validate with NormalizeWord first.
func Evaluate(guess, solution string) []Verdict {
	guess = strings.ToUpper(guess)
	solution = strings.ToUpper(solution)

	n := len(guess)
	res := make([]Verdict, n)

	// Letter frequency for the non-correct positions (A–Z).
	var counts [26]int

	for i := 0; i < n; i++ {
		if guess[i] == solution[i] {
			res[i] = VerdictCorrect
		} else {
			counts[idx(solution[i])]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == VerdictCorrect {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && j < 26 && counts[j] > 0 {
			res[i] = VerdictPresent
			counts[j]--
		} else {
			res[i] = VerdictAbsent
		}
	}
	return res
}

// Tiles pairs each letter of guess with its verdict.
func Tiles(guess string, verdicts []Verdict) []Tile {
	guess = strings.ToUpper(guess)
	out := make([]Tile, len(verdicts))
	for i, v := range verdicts {
		out[i] = Tile{Letter: guess[i : i+1], Status: v}
	}
	return out
}

// NormalizeWord trims and uppercases w and reports whether it is exactly
// WordLength ASCII letters.
func NormalizeWord(w string) (string, bool) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if len(w) != WordLength || !isAlpha(w) {
		return w, false
	}
	return w, true
}

// idx maps an uppercase ASCII letter to 0..25.
func idx(b byte) int { return int(b) - 'A' }

// isAlpha checks that a string consists only of uppercase A–Z.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// allCorrect returns true if every verdict is correct.
func allCorrect(v []Verdict) bool {
	for _, x := range v {
		if x != VerdictCorrect {
			return false
		}
	}
	return true
}
