package types

import "strings"

// Chunk is a bounded, independently retrievable unit of document text.
// ChunkIndex is the chunk's position within its source document's emission
// order. Embedding is attached by the embedding step and stripped before the
// chunk enters long-term storage.
type Chunk struct {
	Content    string
	ChunkIndex int
	Metadata   Metadata
	Embedding  []float32
}

// HasEmbedding reports whether the embedding step has run for this chunk.
func (c Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// StripEmbedding returns a copy with the embedding removed, for storage in
// the chunk list. The vector index keeps the embedding.
func (c Chunk) StripEmbedding() Chunk {
	c.Embedding = nil
	return c
}

// Validate checks the minimum-size invariant every stored chunk must hold.
func (c *Chunk) Validate(minSize int) error {
	if len(strings.TrimSpace(c.Content)) < minSize {
		return ErrChunkTooSmall
	}
	return nil
}
