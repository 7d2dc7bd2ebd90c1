// Package embedder provides the text-to-vector capability the indexes
// consume. The engine treats embedding as a black box behind the Embedder
// interface; providers cover a local deterministic projection (offline use
// and tests), an Ollama HTTP endpoint, and any OpenAI-compatible API.
//
// Chunk text is embedded with a short metadata prefix (module, category,
// subsystem, tags) so queries that mention those attributes land near the
// right chunks.
package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/corekb/corekb/pkg/types"
)

// Common errors.
var (
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnknownProvider   = errors.New("unknown embedding provider")
	ErrDimensionMismatch = errors.New("provider returned wrong dimension")
)

// Embedder generates fixed-length vectors for text.
type Embedder interface {
	// Embed generates one embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension this provider produces.
	Dimension() int

	// Provider returns the provider name.
	Provider() string

	// Close releases any resources held by the embedder.
	Close() error
}

// Cache is an LRU cache of embeddings keyed by content hash, shared across
// providers so re-indexing unchanged chunks is free.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates an embedding cache with LRU eviction.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = 10000
	}
	c, err := lru.New[string, []float32](size)
	if err != nil {
		// Only reachable with a non-positive size, which was just corrected.
		panic(fmt.Sprintf("failed to create embedding cache: %v", err))
	}
	return &Cache{cache: c}
}

// Get returns a copy of the cached vector for hash, if present.
func (c *Cache) Get(hash string) ([]float32, bool) {
	v, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Set stores a vector under hash.
func (c *Cache) Set(hash string, v []float32) {
	c.cache.Add(hash, v)
}

// Len returns the number of cached embeddings.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// ComputeHash returns the cache key for a text.
func ComputeHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// SearchableText builds the enriched text a chunk is embedded under: a
// metadata prefix followed by the raw content.
func SearchableText(c types.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Module: %s\n", orDefault(c.Metadata.Module, "core"))
	fmt.Fprintf(&b, "Category: %s\n", orDefault(c.Metadata.Category, "general"))
	if c.Metadata.Subsystem != "" {
		fmt.Fprintf(&b, "Subsystem: %s\n", c.Metadata.Subsystem)
	}
	if len(c.Metadata.Tags) > 0 {
		tags := c.Metadata.Tags
		if len(tags) > 5 {
			tags = tags[:5]
		}
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(tags, ", "))
	}
	b.WriteString("\n")
	b.WriteString(c.Content)
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
