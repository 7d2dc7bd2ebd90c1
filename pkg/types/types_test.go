package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataClone_IndependentTags(t *testing.T) {
	m := Metadata{Module: "playerbots", Tags: []string{"cpp", "commands"}}
	c := m.Clone()
	c.Tags[0] = "mutated"

	assert.Equal(t, "cpp", m.Tags[0])
	assert.Equal(t, "playerbots", c.Module)
}

func TestChunkValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		min     int
		wantErr bool
	}{
		{"long enough", "void Foo() { return; }", 10, false},
		{"too short", "x", 10, true},
		{"whitespace only", "   \n\t  ", 1, true},
		{"exactly at floor", "abcde", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Chunk{Content: tt.content}
			err := c.Validate(tt.min)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrChunkTooSmall)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChunkStripEmbedding(t *testing.T) {
	c := Chunk{Content: "body", Embedding: []float32{1, 2, 3}}
	stripped := c.StripEmbedding()

	assert.True(t, c.HasEmbedding())
	assert.False(t, stripped.HasEmbedding())
	assert.Equal(t, "body", stripped.Content)
}

func TestFiltersMatch(t *testing.T) {
	m := Metadata{
		Module:    "playerbots",
		Category:  "combat",
		Type:      "cpp",
		HasConfig: false,
		Tags:      []string{"cpp", "commands"},
	}

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"nil filters", nil, true},
		{"exact match", Filters{"module": "playerbots"}, true},
		{"exact mismatch", Filters{"module": "core"}, false},
		{"membership match", Filters{"category": []string{"combat", "movement"}}, true},
		{"membership miss", Filters{"category": []string{"quest", "social"}}, false},
		{"bool match", Filters{"has_config": false}, true},
		{"bool mismatch", Filters{"has_config": true}, false},
		{"unknown key ignored", Filters{"no_such_field": "x"}, true},
		{"two keys, one fails", Filters{"module": "playerbots", "type": "md"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Match(m))
		})
	}
}

func TestSearchResultScore(t *testing.T) {
	r := SearchResult{Similarity: 0.4}
	require.Equal(t, 0.4, r.Score())

	r.Combined = 0.9
	require.Equal(t, 0.9, r.Score())
}
