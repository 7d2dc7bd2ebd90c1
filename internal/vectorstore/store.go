package vectorstore

import (
	"fmt"
	"sort"

	"github.com/corekb/corekb/pkg/types"
)

// IndexKind names the only index layout this store implements.
const IndexKind = "flat-l2"

// filterOversample is how many candidates are ranked per requested result
// when a metadata filter may reject some of them.
const filterOversample = 3

// Store is a flat squared-L2 vector index with positionally aligned chunk
// and metadata lists.
type Store struct {
	dimension int
	vectors   [][]float32
	chunks    []types.Chunk
	metadata  []types.Metadata
}

// New creates an empty store for embeddings of the given dimension.
func New(dimension int) *Store {
	return &Store{dimension: dimension}
}

// Dimension returns the embedding dimension.
func (s *Store) Dimension() int { return s.dimension }

// Len returns the number of stored chunks.
func (s *Store) Len() int { return len(s.chunks) }

// Chunk returns the stored chunk at position i.
func (s *Store) Chunk(i int) types.Chunk { return s.chunks[i] }

// Metadata returns the stored metadata at position i.
func (s *Store) Metadata(i int) types.Metadata { return s.metadata[i] }

// Contents returns the raw chunk bodies in positional order. The lexical
// index builds its corpus from this, which is what keeps lexical scores
// aligned with vector-store positions.
func (s *Store) Contents() []string {
	out := make([]string, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = c.Content
	}
	return out
}

// Add appends chunks with embeddings to the index. Every chunk must carry
// an embedding of the store's dimension; validation runs before any
// mutation so a failure never leaves the parallel lists partially grown.
// Embeddings are stripped from the stored chunk copies; the matrix is
// their only durable location.
func (s *Store) Add(chunks []types.Chunk) error {
	for i := range chunks {
		if !chunks[i].HasEmbedding() {
			return fmt.Errorf("chunk %d (%s): %w", i, chunks[i].Metadata.Filename, types.ErrMissingEmbedding)
		}
		if len(chunks[i].Embedding) != s.dimension {
			return fmt.Errorf("chunk %d: got %d, want %d: %w",
				i, len(chunks[i].Embedding), s.dimension, types.ErrDimensionMismatch)
		}
	}

	for i := range chunks {
		s.vectors = append(s.vectors, chunks[i].Embedding)
		s.chunks = append(s.chunks, chunks[i].StripEmbedding())
		s.metadata = append(s.metadata, chunks[i].Metadata)
	}
	return nil
}

// Search returns the k nearest stored chunks to the query embedding,
// ordered by distance ascending, after applying the filter predicate.
func (s *Store) Search(query []float32, k int, filters types.Filters) ([]types.SearchResult, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query: got %d, want %d: %w",
			len(query), s.dimension, types.ErrDimensionMismatch)
	}
	if k <= 0 || s.Len() == 0 {
		return nil, nil
	}

	searchK := k
	if len(filters) > 0 {
		searchK = k * filterOversample
	}

	candidates := s.nearest(query, searchK)

	results := make([]types.SearchResult, 0, k)
	for _, c := range candidates {
		meta := s.metadata[c.position]
		if !filters.Match(meta) {
			continue
		}
		results = append(results, types.SearchResult{
			Chunk:      s.chunks[c.position],
			Metadata:   meta,
			Distance:   c.distance,
			Similarity: 1.0 / (1.0 + c.distance),
		})
		if len(results) >= k {
			break
		}
	}
	return results, nil
}

type candidate struct {
	position int
	distance float64
}

// nearest ranks every stored vector by squared L2 distance and returns the
// closest n.
func (s *Store) nearest(query []float32, n int) []candidate {
	candidates := make([]candidate, len(s.vectors))
	for i, v := range s.vectors {
		candidates[i] = candidate{position: i, distance: squaredL2(query, v)}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}

// squaredL2 computes the squared Euclidean distance between two vectors.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Statistics summarizes the stored corpus for operational visibility.
type Statistics struct {
	TotalChunks int            `json:"total_chunks"`
	Dimension   int            `json:"dimension"`
	ByCategory  map[string]int `json:"by_category"`
	ByModule    map[string]int `json:"by_module"`
	ByType      map[string]int `json:"by_type"`
}

// Statistics counts stored chunks grouped by category, module, and type.
func (s *Store) Statistics() Statistics {
	stats := Statistics{
		TotalChunks: len(s.chunks),
		Dimension:   s.dimension,
		ByCategory:  make(map[string]int),
		ByModule:    make(map[string]int),
		ByType:      make(map[string]int),
	}
	for _, m := range s.metadata {
		stats.ByCategory[m.Category]++
		stats.ByModule[m.Module]++
		stats.ByType[m.Type]++
	}
	return stats
}
