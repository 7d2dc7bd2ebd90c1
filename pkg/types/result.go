package types

// SearchResult is one ranked retrieval hit. Distance and Similarity come
// from the vector index; Combined is the hybrid fusion score and is zero
// for pure vector results that never passed through the ranker.
type SearchResult struct {
	Chunk      Chunk
	Metadata   Metadata
	Distance   float64
	Similarity float64
	Combined   float64
}

// Score returns the score a caller should rank by: the fused score when the
// result went through hybrid ranking, the vector similarity otherwise.
func (r SearchResult) Score() float64 {
	if r.Combined > 0 {
		return r.Combined
	}
	return r.Similarity
}

// Filters is a metadata filter predicate: every key must match for a chunk
// to survive. A slice value means set membership, a bool value means exact
// boolean equality, anything else means exact equality. Keys absent from a
// chunk's metadata are ignored for that chunk.
type Filters map[string]any

// Match evaluates the predicate against metadata.
func (f Filters) Match(m Metadata) bool {
	for key, want := range f {
		got, ok := m.Field(key)
		if !ok {
			continue
		}
		switch want := want.(type) {
		case []string:
			if s, ok := got.(string); ok && !contains(want, s) {
				return false
			}
		case []any:
			if s, ok := got.(string); ok && !containsAny(want, s) {
				return false
			}
		case bool:
			if b, ok := got.(bool); ok && b != want {
				return false
			}
		default:
			if got != want {
				return false
			}
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(list []any, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
