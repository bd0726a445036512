// Package assets embeds the default word lists shipped with the server.
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

// readLines returns the non-blank, non-comment lines of an embedded file,
// trimmed and lowercased. Length filtering is left to the words package.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// Answers returns the embedded solution words.
func Answers() ([]string, error) {
	return readLines("answers.txt")
}

// Allowed returns the embedded guess-only words.
func Allowed() ([]string, error) {
	return readLines("allowed.txt")
}
