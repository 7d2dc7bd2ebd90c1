// Package vectorstore implements the flat Euclidean-distance vector index.
//
// The store holds three parallel sequences sharing one positional identity:
// the embedding matrix, the chunk list (embeddings stripped), and the
// metadata list. Add is the single mutation entry point and appends to all
// three atomically from the caller's perspective; no other code path may
// grow one list without the others.
//
// Search scans every stored vector (flat index, no approximation), ranks by
// squared L2 distance ascending, and converts distance to similarity as
// 1/(1+distance). With metadata filters present it oversamples three
// candidates per requested result to absorb post-filter rejection; the pool
// is never re-queried on exhaustion, so callers may receive fewer than k.
//
// Persistence writes four independently loadable artifacts per index
// directory: a raw vector matrix, a sqlite chunk-body store, an ordered
// human-readable metadata list, and a small manifest used for integrity
// checks on load. Load is all-or-nothing: on any failure the in-memory
// store keeps its pre-load state.
package vectorstore
