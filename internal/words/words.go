// internal/words/words.go
//
// Word dictionary for the versus engine.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or the embedded defaults.
//   - Answer "is this a playable word" and "pick a random solution".
//
// Word Lists:
//   - "answers": candidate solutions (exactly 5 letters).
//   - "allowed": valid guesses (always includes answers).
//
// Load behaviour:
//   1. answersPath and allowedPath both set → answers from the first,
//      extra guesses from the second.
//   2. only allowedPath set → that file is used for both.
//   3. neither set → the embedded assets lists.
//
// A Dictionary is immutable after construction and safe for concurrent use.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/wordle/apps/versus-server/assets"
)

// ErrNoAnswers is returned when the answers list ends up empty.
var ErrNoAnswers = errors.New("words: answers list is empty")

// Dictionary holds the loaded word lists.
type Dictionary struct {
	answers    []string            // canonical answers (lowercase)
	answersSet map[string]struct{} // answers only
	allowedSet map[string]struct{} // answers ∪ guesses
}

// New builds a Dictionary from raw lists. Entries that are not exactly five
// ASCII letters are dropped; case is ignored.
func New(answers, allowed []string) (*Dictionary, error) {
	ans := normalize(answers)
	if len(ans) == 0 {
		return nil, ErrNoAnswers
	}
	d := &Dictionary{
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	for _, w := range normalize(allowed) {
		d.allowedSet[w] = struct{}{}
	}
	return d, nil
}

// Load reads the lists according to the rules in the file header.
func Load(answersPath, allowedPath string) (*Dictionary, error) {
	switch {
	case answersPath != "" && allowedPath != "":
		ans, err := readWordFile(answersPath)
		if err != nil {
			return nil, err
		}
		all, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		return New(ans, all)

	case allowedPath != "":
		all, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		return New(all, nil)

	default:
		ans, err := assets.Answers()
		if err != nil {
			return nil, err
		}
		all, err := assets.Allowed()
		if err != nil {
			return nil, err
		}
		return New(ans, all)
	}
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// normalize lowercases, trims, filters and de-duplicates a list.
func normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, line := range list {
		w := strings.TrimSpace(strings.ToLower(line))
		if len(w) != 5 || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// RandomWord returns a cryptographically random answer, uppercased.
func (d *Dictionary) RandomWord() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(d.answers))))
	if err != nil {
		return strings.ToUpper(d.answers[0])
	}
	return strings.ToUpper(d.answers[n.Int64()])
}

// IsValidWord reports whether w is an accepted guess (answers ∪ guesses).
func (d *Dictionary) IsValidWord(w string) bool {
	_, ok := d.allowedSet[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (d *Dictionary) IsAnswer(w string) bool {
	_, ok := d.answersSet[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (d *Dictionary) Stats() (answersCount int, allowedCount int) {
	return len(d.answers), len(d.allowedSet)
}
