package hybrid

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corekb/corekb/internal/embedder"
	"github.com/corekb/corekb/internal/lexical"
	"github.com/corekb/corekb/internal/vectorstore"
	"github.com/corekb/corekb/pkg/types"
)

const testDim = 128

func buildCorpus(t *testing.T, emb embedder.Embedder, specs []types.Chunk) (*vectorstore.Store, *lexical.Index) {
	t.Helper()

	store := vectorstore.New(testDim)
	for i := range specs {
		v, err := emb.Embed(context.Background(), specs[i].Content)
		require.NoError(t, err)
		specs[i].Embedding = v
	}
	require.NoError(t, store.Add(specs))

	lex := lexical.New()
	lex.Build(store.Contents())
	return store, lex
}

func teleportCorpus(t *testing.T, emb embedder.Embedder) (*vectorstore.Store, *lexical.Index) {
	return buildCorpus(t, emb, []types.Chunk{
		{
			Content:  "combat spell damage calculation for the warrior rotation",
			Metadata: types.Metadata{Category: "combat", Module: "playerbots"},
		},
		{
			Content:  "teleport player position to the master before combat",
			Metadata: types.Metadata{Category: "movement", Module: "playerbots"},
		},
		{
			Content:  "auction house gold price scan every auction cycle",
			Metadata: types.Metadata{Category: "general", Module: "core"},
		},
	})
}

func TestSearchRanksKeywordMatchFirst(t *testing.T) {
	emb := embedder.NewLocalProvider(testDim, nil)
	store, lex := teleportCorpus(t, emb)
	r := New(store, lex, emb)

	out, err := r.Search(context.Background(), "teleport", 2, 0.5, nil)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	assert.Contains(t, out.Results[0].Chunk.Content, "teleport player position")
	assert.Greater(t, out.Results[0].Combined, out.Results[1].Combined)
}

func TestSearchAlphaOneMatchesVectorOrder(t *testing.T) {
	emb := embedder.NewLocalProvider(testDim, nil)
	store, lex := teleportCorpus(t, emb)
	r := New(store, lex, emb)

	out, err := r.Search(context.Background(), "teleport the bot", 3, 1.0, nil)
	require.NoError(t, err)

	qv, err := emb.Embed(context.Background(), "teleport the bot")
	require.NoError(t, err)
	pure, err := store.Search(qv, 3, nil)
	require.NoError(t, err)

	require.Len(t, out.Results, len(pure))
	for i := range pure {
		assert.Equal(t, pure[i].Chunk.Content, out.Results[i].Chunk.Content)
		assert.InDelta(t, pure[i].Similarity, out.Results[i].Combined, 1e-9)
	}
}

func TestSearchAlphaZeroMatchesLexicalOrder(t *testing.T) {
	emb := embedder.NewLocalProvider(testDim, nil)
	store, lex := teleportCorpus(t, emb)
	r := New(store, lex, emb)

	out, err := r.Search(context.Background(), "teleport player", 1, 0.0, nil)
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)

	assert.Contains(t, out.Results[0].Chunk.Content, "teleport player position")
}

func TestSearchFilterSoundness(t *testing.T) {
	emb := embedder.NewLocalProvider(testDim, nil)
	store, lex := teleportCorpus(t, emb)
	r := New(store, lex, emb)

	out, err := r.Search(context.Background(), "teleport auction combat", 3, 0.5,
		types.Filters{"module": "playerbots"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)

	for _, res := range out.Results {
		assert.Equal(t, "playerbots", res.Metadata.Module)
	}
}

func TestSearchVectorOnlyFallback(t *testing.T) {
	emb := embedder.NewLocalProvider(testDim, nil)
	store, _ := teleportCorpus(t, emb)
	r := New(store, lexical.New(), emb)

	out, err := r.Search(context.Background(), "teleport player", 2, 0.5, nil)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	assert.Zero(t, out.LexicalMatches)
	for _, res := range out.Results {
		assert.InDelta(t, res.Similarity, res.Combined, 1e-9)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	emb := embedder.NewLocalProvider(testDim, nil)
	store, lex := teleportCorpus(t, emb)
	r := New(store, lex, emb)

	_, err := r.Search(context.Background(), "  ", 2, 0.5, nil)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestSearchRejectsBadAlpha(t *testing.T) {
	emb := embedder.NewLocalProvider(testDim, nil)
	store, lex := teleportCorpus(t, emb)
	r := New(store, lex, emb)

	_, err := r.Search(context.Background(), "teleport", 2, 1.5, nil)
	assert.Error(t, err)
}

func TestSearchSumsOverlappingContributions(t *testing.T) {
	emb := embedder.NewLocalProvider(testDim, nil)
	store, lex := teleportCorpus(t, emb)
	r := New(store, lex, emb)

	// The teleport chunk scores on both axes, so at alpha=0.5 its combined
	// score must exceed either contribution alone.
	out, err := r.Search(context.Background(), "teleport player position", 3, 0.5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)

	top := out.Results[0]
	assert.Contains(t, top.Chunk.Content, "teleport player position")
	assert.Greater(t, top.Combined, 0.5*top.Similarity)
	assert.Greater(t, top.Combined, 0.5*1.0-1e-9) // normalized lexical max is 1
}

func TestSearchOutcomeCounts(t *testing.T) {
	emb := embedder.NewLocalProvider(testDim, nil)
	store, lex := teleportCorpus(t, emb)
	r := New(store, lex, emb)

	out, err := r.Search(context.Background(), "teleport player", 2, 0.5, nil)
	require.NoError(t, err)

	assert.Positive(t, out.VectorCandidates)
	assert.Positive(t, out.LexicalMatches)
	assert.GreaterOrEqual(t, out.Elapsed.Nanoseconds(), int64(0))
}

// fixedEmbedder returns one preset vector for every text, so tests can pin
// chunk embeddings by hand and control vector ranking exactly.
type fixedEmbedder struct {
	vec []float32
}

func (f fixedEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vec, nil
}

func (f fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func (f fixedEmbedder) Dimension() int   { return len(f.vec) }
func (f fixedEmbedder) Provider() string { return "fixed" }
func (f fixedEmbedder) Close() error     { return nil }

func pinnedChunk(content string, vec []float32) types.Chunk {
	return types.Chunk{
		Content:   content,
		Metadata:  types.Metadata{Category: "general", Module: "playerbots"},
		Embedding: vec,
	}
}

// weakLexicalCorpus builds a corpus where the chunk at position 1 has a
// positive normalized lexical score below the noise floor for the query
// "alpha beta", position 0 holds the lexical maximum, and position 2 is
// lexically silent but closest by vector.
func weakLexicalCorpus(t *testing.T) (*vectorstore.Store, *lexical.Index) {
	t.Helper()

	far := []float32{0, 5}
	longTail := strings.Repeat("filler ", 59)
	chunks := []types.Chunk{
		pinnedChunk("alpha beta alpha beta alpha beta", []float32{0.5, 0.5}),
		pinnedChunk("beta "+longTail, []float32{0, 1}),
		pinnedChunk("gamma delta", []float32{1, 0}),
	}
	for i := 0; i < 9; i++ {
		chunks = append(chunks, pinnedChunk(fmt.Sprintf("padding document %d about nothing", i), far))
	}

	store := vectorstore.New(2)
	require.NoError(t, store.Add(chunks))

	lex := lexical.New()
	lex.Build(store.Contents())
	return store, lex
}

func TestSearchAlphaZeroKeepsSubFloorSeededScores(t *testing.T) {
	store, lex := weakLexicalCorpus(t)
	r := New(store, lex, fixedEmbedder{vec: []float32{1, 0}})

	scores := lex.Scores(lexical.Tokenize("alpha beta"))
	normalizeMax(scores)
	require.Positive(t, scores[1])
	require.Less(t, scores[1], noiseFloor, "corpus must exercise a sub-floor seeded score")

	out, err := r.Search(context.Background(), "alpha beta", 2, 0.0, nil)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	// Pure lexical order: the lexical maximum first, then the weak match,
	// ahead of the lexically silent chunk the vector index prefers.
	assert.Equal(t, store.Chunk(0).Content, out.Results[0].Chunk.Content)
	assert.Equal(t, store.Chunk(1).Content, out.Results[1].Chunk.Content)
	assert.InDelta(t, scores[0], out.Results[0].Combined, 1e-9)
	assert.InDelta(t, scores[1], out.Results[1].Combined, 1e-9)
}

func TestSearchSumsSubFloorLexicalIntoSeededEntries(t *testing.T) {
	store, lex := weakLexicalCorpus(t)
	r := New(store, lex, fixedEmbedder{vec: []float32{0, 1}})

	scores := lex.Scores(lexical.Tokenize("alpha beta"))
	normalizeMax(scores)
	require.Positive(t, scores[1])
	require.Less(t, scores[1], noiseFloor)

	out, err := r.Search(context.Background(), "alpha beta", 3, 0.5, nil)
	require.NoError(t, err)

	for _, res := range out.Results {
		if res.Chunk.Content == store.Chunk(1).Content {
			assert.InDelta(t, 0.5*res.Similarity+0.5*scores[1], res.Combined, 1e-9)
			return
		}
	}
	t.Fatal("weak lexical chunk missing from results")
}

func TestSearchDeduplicatesIdenticalContents(t *testing.T) {
	dup := "[worldserver]\nAiPlayerbot.RandomBotCount = 50"
	chunks := []types.Chunk{
		pinnedChunk(dup, []float32{1, 0}),
		pinnedChunk(dup, []float32{1, 0}),
		pinnedChunk("unrelated strategy overview", []float32{0, 1}),
		pinnedChunk("movement stances and follow distance", []float32{0, 1}),
		pinnedChunk("loot rules for the bot group", []float32{0, 1}),
	}
	store := vectorstore.New(2)
	require.NoError(t, store.Add(chunks))
	lex := lexical.New()
	lex.Build(store.Contents())

	r := New(store, lex, fixedEmbedder{vec: []float32{1, 0}})

	out, err := r.Search(context.Background(), "AiPlayerbot.RandomBotCount", 5, 0.5, nil)
	require.NoError(t, err)

	// Both duplicate positions surface, but each carries exactly one
	// lexical contribution: the vector-seeded one and a lexical-only twin.
	var combined []float64
	for _, res := range out.Results {
		if res.Chunk.Content == dup {
			combined = append(combined, res.Combined)
		}
	}
	require.Len(t, combined, 2)
	assert.InDelta(t, 0.5*1.0+0.5*1.0, combined[0], 1e-9)
	assert.InDelta(t, 0.5*1.0, combined[1], 1e-9)
}

func TestNormalizeMax(t *testing.T) {
	scores := []float64{2, 4, 0}
	normalizeMax(scores)
	assert.Equal(t, []float64{0.5, 1, 0}, scores)

	zeros := []float64{0, 0}
	normalizeMax(zeros)
	assert.Equal(t, []float64{0, 0}, zeros)
}
