package lexical

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCorpus = []string{
	"combat spell damage calculation for melee attacks",
	"teleport player position movement handler",
	"database table creation script",
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello World", []string{"hello", "world"}},
		{"  spaced\tout\nwords ", []string{"spaced", "out", "words"}},
		{"AiPlayerbot.RandomBotCount = 50", []string{"aiplayerbot.randombotcount", "=", "50"}},
		{"", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.in), "input %q", tt.in)
	}
}

func TestBuild_AlignmentAndLength(t *testing.T) {
	idx := New()
	idx.Build(testCorpus)

	require.True(t, idx.Built())
	assert.Equal(t, 3, idx.Len())

	scores := idx.Scores(Tokenize("teleport"))
	require.Len(t, scores, 3)

	// Position 1 holds the teleport chunk; alignment with build order is
	// what the hybrid ranker depends on.
	assert.Zero(t, scores[0])
	assert.Greater(t, scores[1], 0.0)
	assert.Zero(t, scores[2])
}

func TestScores_RanksTermFrequency(t *testing.T) {
	idx := New()
	idx.Build([]string{
		"spell spell spell damage",
		"spell mentioned once here",
		"nothing relevant at all",
	})

	scores := idx.Scores(Tokenize("spell"))
	assert.Greater(t, scores[0], scores[1])
	assert.Zero(t, scores[2])
}

func TestScores_UnknownTermAllZero(t *testing.T) {
	idx := New()
	idx.Build(testCorpus)

	scores := idx.Scores(Tokenize("nonexistentterm"))
	for _, s := range scores {
		assert.Zero(t, s)
	}
}

func TestScores_MultiTermAccumulates(t *testing.T) {
	idx := New()
	idx.Build(testCorpus)

	single := idx.Scores(Tokenize("teleport"))
	double := idx.Scores(Tokenize("teleport player"))
	assert.Greater(t, double[1], single[1])
}

func TestBuild_EmptyCorpus(t *testing.T) {
	idx := New()
	idx.Build(nil)

	assert.False(t, idx.Built())
	assert.Empty(t, idx.Scores(Tokenize("anything")))
}

func TestBuild_ReplacesPreviousState(t *testing.T) {
	idx := New()
	idx.Build(testCorpus)
	idx.Build([]string{"only one document now"})

	assert.Equal(t, 1, idx.Len())
	assert.Len(t, idx.Scores(Tokenize("document")), 1)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexical.json")

	idx := New()
	idx.Build(testCorpus)
	require.NoError(t, idx.Save(path))

	loaded := New()
	require.NoError(t, loaded.Load(path))

	assert.Equal(t, idx.Len(), loaded.Len())
	query := Tokenize("teleport player")
	assert.InDeltaSlice(t, idx.Scores(query), loaded.Scores(query), 1e-12)
}

func TestLoad_MissingFile(t *testing.T) {
	idx := New()
	assert.Error(t, idx.Load(filepath.Join(t.TempDir(), "missing.json")))
}
