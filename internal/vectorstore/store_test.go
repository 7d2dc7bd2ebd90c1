package vectorstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corekb/corekb/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkWithEmbedding(content, module, category string, embedding []float32) types.Chunk {
	return types.Chunk{
		Content:   content,
		Embedding: embedding,
		Metadata: types.Metadata{
			Filename: content + ".cpp",
			Module:   module,
			Category: category,
			Type:     "cpp",
		},
	}
}

func populated(t *testing.T) *Store {
	t.Helper()
	s := New(3)
	err := s.Add([]types.Chunk{
		chunkWithEmbedding("combat", "playerbots", "combat", []float32{1, 0, 0}),
		chunkWithEmbedding("movement", "playerbots", "movement", []float32{0, 1, 0}),
		chunkWithEmbedding("database", "core", "database", []float32{0, 0, 1}),
	})
	require.NoError(t, err)
	return s
}

func TestAdd_ParallelListInvariant(t *testing.T) {
	s := populated(t)

	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.vectors, 3)
	assert.Len(t, s.chunks, 3)
	assert.Len(t, s.metadata, 3)
}

func TestAdd_MissingEmbeddingAbortsBeforeMutation(t *testing.T) {
	s := New(3)
	chunks := []types.Chunk{
		chunkWithEmbedding("good", "core", "combat", []float32{1, 0, 0}),
		{Content: "no embedding"},
	}

	err := s.Add(chunks)
	require.ErrorIs(t, err, types.ErrMissingEmbedding)

	// Nothing was appended, not even the valid first chunk.
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.vectors)
	assert.Empty(t, s.metadata)
}

func TestAdd_DimensionMismatch(t *testing.T) {
	s := New(3)
	err := s.Add([]types.Chunk{chunkWithEmbedding("bad", "core", "combat", []float32{1, 0})})
	assert.ErrorIs(t, err, types.ErrDimensionMismatch)
	assert.Equal(t, 0, s.Len())
}

func TestAdd_StripsEmbeddingFromChunkList(t *testing.T) {
	s := populated(t)
	for i := 0; i < s.Len(); i++ {
		assert.False(t, s.Chunk(i).HasEmbedding())
	}
}

func TestSearch_RanksByDistance(t *testing.T) {
	s := populated(t)

	results, err := s.Search([]float32{0.9, 0.1, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "combat", results[0].Chunk.Content)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
	// similarity = 1/(1+distance)
	for _, r := range results {
		assert.InDelta(t, 1.0/(1.0+r.Distance), r.Similarity, 1e-12)
	}
}

func TestSearch_FilterSoundness(t *testing.T) {
	s := populated(t)

	results, err := s.Search([]float32{1, 0, 0}, 3, types.Filters{"module": "core"})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.Equal(t, "core", r.Metadata.Module)
	}
}

func TestSearch_FewerThanKWhenPoolExhausted(t *testing.T) {
	s := populated(t)

	// Only one chunk matches; no re-query happens on exhaustion.
	results, err := s.Search([]float32{1, 0, 0}, 3, types.Filters{"category": "database"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	s := populated(t)
	_, err := s.Search([]float32{1, 0}, 3, nil)
	assert.ErrorIs(t, err, types.ErrDimensionMismatch)
}

func TestSearch_EmptyStore(t *testing.T) {
	s := New(3)
	results, err := s.Search([]float32{1, 0, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStatistics(t *testing.T) {
	s := populated(t)
	stats := s.Statistics()

	assert.Equal(t, 3, stats.TotalChunks)
	assert.Equal(t, 3, stats.Dimension)
	assert.Equal(t, 2, stats.ByModule["playerbots"])
	assert.Equal(t, 1, stats.ByModule["core"])
	assert.Equal(t, 1, stats.ByCategory["combat"])
	assert.Equal(t, 3, stats.ByType["cpp"])
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := populated(t)

	require.NoError(t, s.Save(dir))

	// All four artifacts exist.
	for _, name := range []string{vectorsFile, chunksFile, metadataFile, manifestFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "artifact %s", name)
	}

	loaded := New(0)
	require.NoError(t, loaded.Load(dir))

	assert.Equal(t, s.Len(), loaded.Len())
	assert.Equal(t, s.Dimension(), loaded.Dimension())
	assert.Equal(t, s.vectors, loaded.vectors)
	assert.Equal(t, s.Statistics(), loaded.Statistics())
	for i := 0; i < s.Len(); i++ {
		assert.Equal(t, s.Chunk(i).Content, loaded.Chunk(i).Content)
		assert.Equal(t, s.Metadata(i), loaded.Metadata(i))
	}

	// Search behaves identically after the round trip.
	want, err := s.Search([]float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	got, err := loaded.Search([]float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_MissingArtifactLeavesStoreUntouched(t *testing.T) {
	dir := t.TempDir()
	s := populated(t)
	require.NoError(t, s.Save(dir))
	require.NoError(t, os.Remove(filepath.Join(dir, vectorsFile)))

	loaded := populatedVariant(t)
	before := loaded.Len()

	err := loaded.Load(dir)
	require.Error(t, err)
	assert.Equal(t, before, loaded.Len())
}

func TestLoad_CorruptManifest(t *testing.T) {
	dir := t.TempDir()
	s := populated(t)
	require.NoError(t, s.Save(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestFile), []byte("{not json"), 0o644))

	err := New(0).Load(dir)
	assert.Error(t, err)
}

func TestLoad_TruncatedVectors(t *testing.T) {
	dir := t.TempDir()
	s := populated(t)
	require.NoError(t, s.Save(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, vectorsFile), []byte{1, 2, 3}, 0o644))

	err := New(0).Load(dir)
	assert.Error(t, err)
}

func populatedVariant(t *testing.T) *Store {
	t.Helper()
	s := New(3)
	err := s.Add([]types.Chunk{
		chunkWithEmbedding("solo", "core", "quest", []float32{1, 1, 0}),
	})
	require.NoError(t, err)
	return s
}
