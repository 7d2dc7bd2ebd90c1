// Package config loads engine configuration from a YAML file, filling in
// defaults for anything the file leaves unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Chunking controls how documents are split.
type Chunking struct {
	ChunkSize    int `yaml:"chunk_size"`
	Overlap      int `yaml:"overlap"`
	MinChunkSize int `yaml:"min_chunk_size"`
}

// Embedding controls the embedding collaborator.
type Embedding struct {
	Provider  string `yaml:"provider"` // openai, ollama, or local
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
	Endpoint  string `yaml:"endpoint"`
	CacheSize int    `yaml:"cache_size"`
}

// Search controls retrieval behaviour.
type Search struct {
	TopK        int     `yaml:"top_k"`
	HybridAlpha float64 `yaml:"hybrid_alpha"`
}

// Generation controls the answer-generation collaborator.
type Generation struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Cache controls the query result cache.
type Cache struct {
	Enabled bool   `yaml:"enabled"`
	TTLDays int    `yaml:"ttl_days"`
	Dir     string `yaml:"dir"`
}

// Config is the full engine configuration.
type Config struct {
	RawDataPath   string `yaml:"raw_data_path"`
	IndexPath     string `yaml:"index_path"`
	WatermarkPath string `yaml:"watermark_path"`
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`

	Chunking   Chunking   `yaml:"chunking"`
	Embedding  Embedding  `yaml:"embedding"`
	Search     Search     `yaml:"search"`
	Generation Generation `yaml:"generation"`
	Cache      Cache      `yaml:"cache"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		RawDataPath:   "./data/raw",
		IndexPath:     "./data/index",
		WatermarkPath: "./data/last_update.txt",
		LogPath:       "./logs",
		LogLevel:      "info",
		Chunking: Chunking{
			ChunkSize:    1000,
			Overlap:      200,
			MinChunkSize: 100,
		},
		Embedding: Embedding{
			Provider:  "local",
			Model:     "all-MiniLM-L6-v2",
			Dimension: 384,
			BatchSize: 32,
			CacheSize: 10000,
		},
		Search: Search{
			TopK:        5,
			HybridAlpha: 0.6,
		},
		Generation: Generation{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4000,
			Temperature: 0.7,
		},
		Cache: Cache{
			Enabled: true,
			TTLDays: 7,
			Dir:     "./data/cache",
		},
	}
}

// Load reads a YAML config file. Fields absent from the file keep their
// defaults. A missing file is an error; callers that want optional config
// should stat first and fall back to Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.MinChunkSize < 0 {
		return fmt.Errorf("chunking.min_chunk_size must be non-negative, got %d", c.Chunking.MinChunkSize)
	}
	if c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunking.Overlap, c.Chunking.ChunkSize)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Search.HybridAlpha < 0 || c.Search.HybridAlpha > 1 {
		return fmt.Errorf("search.hybrid_alpha must be in [0,1], got %g", c.Search.HybridAlpha)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.top_k must be positive, got %d", c.Search.TopK)
	}
	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLDays) * 24 * time.Hour
}
