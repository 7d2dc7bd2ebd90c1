// Package types defines the shared domain types for the corekb retrieval
// engine: documents, their derived metadata, the chunks produced from them,
// and search results.
//
// A Document is an immutable cleaned file. The chunker splits it into
// Chunks, each carrying its own copy of the document metadata so chunk
// metadata can be mutated independently. A chunk's Embedding is nil until
// the embedding step runs and is stripped again before the chunk is stored;
// the vector index is the embedding's only durable home.
package types
