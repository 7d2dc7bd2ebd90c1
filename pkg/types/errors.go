package types

import "errors"

// Domain errors shared across the engine.
var (
	ErrChunkTooSmall     = errors.New("chunk content below minimum size")
	ErrMissingEmbedding  = errors.New("chunk has no embedding")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrEmptyQuery        = errors.New("query cannot be empty")
	ErrIndexNotBuilt     = errors.New("index has not been built")
)
