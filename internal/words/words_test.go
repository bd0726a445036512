package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	d, err := New([]string{"Crane", " mango ", "toolong", "ab1de", "crane"}, []string{"bumpy", "nope"})
	require.NoError(t, err)

	a, g := d.Stats()
	assert.Equal(t, 2, a)
	assert.Equal(t, 3, g)

	assert.True(t, d.IsValidWord("CRANE"))
	assert.True(t, d.IsValidWord("bumpy"))
	assert.False(t, d.IsValidWord("nope"))
	assert.True(t, d.IsAnswer("Mango"))
	assert.False(t, d.IsAnswer("bumpy"), "guess-only words are never solutions")
}

func TestNew_EmptyAnswers(t *testing.T) {
	_, err := New([]string{"toolong"}, []string{"crane"})
	assert.ErrorIs(t, err, ErrNoAnswers)
}

func TestRandomWord(t *testing.T) {
	d, err := New([]string{"crane", "mango"}, nil)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		w := d.RandomWord()
		assert.Contains(t, []string{"CRANE", "MANGO"}, w)
	}
}

func TestLoad_Embedded(t *testing.T) {
	d, err := Load("", "")
	require.NoError(t, err)
	a, g := d.Stats()
	assert.Greater(t, a, 100)
	assert.GreaterOrEqual(t, g, a)
	assert.True(t, d.IsAnswer("crane"))
	assert.True(t, d.IsValidWord("bumpy"))
}

func TestLoad_Files(t *testing.T) {
	dir := t.TempDir()
	answers := filepath.Join(dir, "answers.txt")
	allowed := filepath.Join(dir, "allowed.txt")
	require.NoError(t, os.WriteFile(answers, []byte("crane\nmango\n"), 0o644))
	require.NoError(t, os.WriteFile(allowed, []byte("bumpy\nspeed\n"), 0o644))

	d, err := Load(answers, allowed)
	require.NoError(t, err)
	assert.True(t, d.IsAnswer("mango"))
	assert.False(t, d.IsAnswer("speed"))
	assert.True(t, d.IsValidWord("speed"))

	onlyAllowed, err := Load("", allowed)
	require.NoError(t, err)
	assert.True(t, onlyAllowed.IsAnswer("speed"))

	_, err = Load(filepath.Join(dir, "missing.txt"), allowed)
	assert.Error(t, err)
}
