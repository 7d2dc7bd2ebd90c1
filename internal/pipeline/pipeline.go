package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/corekb/corekb/internal/cache"
	"github.com/corekb/corekb/internal/config"
	"github.com/corekb/corekb/internal/embedder"
	"github.com/corekb/corekb/internal/generation"
	"github.com/corekb/corekb/internal/hybrid"
	"github.com/corekb/corekb/internal/lexical"
	"github.com/corekb/corekb/internal/loader"
	"github.com/corekb/corekb/internal/monitor"
	"github.com/corekb/corekb/internal/updater"
	"github.com/corekb/corekb/internal/vectorstore"
	"github.com/corekb/corekb/pkg/types"
)

// ErrNoDocuments means the source tree produced nothing to index.
var ErrNoDocuments = errors.New("no documents found")

// Generator produces an answer from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Pipeline owns every component of the engine.
type Pipeline struct {
	cfg *config.Config

	loader    *loader.Loader
	embedder  embedder.Embedder
	store     *vectorstore.Store
	lexical   *lexical.Index
	ranker    *hybrid.Ranker
	generator Generator
	cache     *cache.Cache
	monitor   *monitor.Monitor
}

// New assembles a pipeline from configuration. The generator is injected
// so callers without an API key can still build and search.
func New(cfg *config.Config, gen Generator) (*Pipeline, error) {
	emb, err := embedder.New(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	store := vectorstore.New(cfg.Embedding.Dimension)
	lex := lexical.New()

	mon, err := monitor.New(cfg.LogPath)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		loader:    loader.New(cfg.Chunking),
		embedder:  emb,
		store:     store,
		lexical:   lex,
		ranker:    hybrid.New(store, lex, emb),
		generator: gen,
		monitor:   mon,
	}

	if cfg.Cache.Enabled {
		p.cache, err = cache.New(cfg.Cache.Dir, cfg.CacheTTL())
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// BuildIndex loads the source tree, chunks and embeds everything, builds
// both indexes, and persists them.
func (p *Pipeline) BuildIndex(ctx context.Context) error {
	start := time.Now()

	documents, err := p.loader.LoadDirectory(p.cfg.RawDataPath)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return fmt.Errorf("%w in %s", ErrNoDocuments, p.cfg.RawDataPath)
	}

	chunks := p.loader.ChunkDocuments(documents)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks produced", ErrNoDocuments)
	}

	if err := embedder.EmbedChunks(ctx, p.embedder, chunks, p.cfg.Embedding.BatchSize); err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if err := p.store.Add(chunks); err != nil {
		return fmt.Errorf("build vector index: %w", err)
	}
	p.lexical.Build(p.store.Contents())

	if err := p.store.Save(p.cfg.IndexPath); err != nil {
		return fmt.Errorf("persist vector index: %w", err)
	}
	if err := p.lexical.Save(p.lexicalPath()); err != nil {
		return fmt.Errorf("persist lexical index: %w", err)
	}

	elapsed := time.Since(start)
	stats := p.store.Statistics()
	slog.Info("index built",
		"chunks", stats.TotalChunks,
		"documents", len(documents),
		"elapsed", elapsed)

	_ = p.monitor.LogMetrics(map[string]any{
		"event":              "index_built",
		"total_chunks":       stats.TotalChunks,
		"build_time_seconds": elapsed.Seconds(),
	})
	return nil
}

// LoadIndex restores both indexes from disk. It reports success; failure
// is logged, never fatal, so the caller can decide to rebuild. A missing
// lexical bundle is rebuilt from the restored corpus.
func (p *Pipeline) LoadIndex() bool {
	if err := p.store.Load(p.cfg.IndexPath); err != nil {
		slog.Error("could not load vector index", "path", p.cfg.IndexPath, "error", err)
		return false
	}

	if err := p.lexical.Load(p.lexicalPath()); err != nil {
		slog.Warn("lexical bundle missing, rebuilding", "error", err)
		p.lexical.Build(p.store.Contents())
	}

	slog.Info("index loaded", "chunks", p.store.Len())
	return true
}

// Query answers a question: cache lookup, retrieval, prompt, generation,
// cache fill, query log. Errors are logged to the monitor and returned.
func (p *Pipeline) Query(ctx context.Context, question string, k int, filters types.Filters, useCache bool) (string, error) {
	start := time.Now()

	if useCache && p.cache != nil {
		if response, ok := p.cache.Get(question); ok {
			_ = p.monitor.LogQuery(question, 0, time.Since(start), true, nil)
			return response, nil
		}
	}

	response, chunks, err := p.answer(ctx, question, k, filters)
	if err != nil {
		_ = p.monitor.LogQuery(question, 0, time.Since(start), false, err)
		return "", err
	}

	if useCache && p.cache != nil {
		if err := p.cache.Set(question, response); err != nil {
			slog.Warn("could not cache response", "error", err)
		}
	}
	_ = p.monitor.LogQuery(question, chunks, time.Since(start), false, nil)
	return response, nil
}

func (p *Pipeline) answer(ctx context.Context, question string, k int, filters types.Filters) (string, int, error) {
	if p.generator == nil {
		return "", 0, errors.New("no generator configured")
	}

	results, err := p.RelevantChunks(ctx, question, k, filters)
	if err != nil {
		return "", 0, err
	}

	prompt := generation.BuildPrompt(question, results)
	response, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return "", 0, err
	}
	return response, len(results), nil
}

// RelevantChunks retrieves without generating.
func (p *Pipeline) RelevantChunks(ctx context.Context, question string, k int, filters types.Filters) ([]types.SearchResult, error) {
	if k <= 0 {
		k = p.cfg.Search.TopK
	}
	out, err := p.ranker.Search(ctx, question, k, p.cfg.Search.HybridAlpha, filters)
	if err != nil {
		return nil, err
	}
	slog.Debug("retrieved chunks",
		"query", question,
		"results", len(out.Results),
		"vector_candidates", out.VectorCandidates,
		"lexical_matches", out.LexicalMatches,
		"elapsed", out.Elapsed)
	return out.Results, nil
}

// Update runs an incremental index refresh from the configured source tree.
func (p *Pipeline) Update(ctx context.Context) (*updater.Outcome, error) {
	u := updater.New(p.cfg.RawDataPath, p.cfg.IndexPath, p.cfg.WatermarkPath,
		p.cfg.Embedding.BatchSize, p.loader, p.embedder, p.store, p.lexical)
	return u.Update(ctx)
}

// Statistics aggregates index, query, and cache statistics.
type Statistics struct {
	VectorStore vectorstore.Statistics `json:"vector_store"`
	Queries     monitor.QueryStats     `json:"query_stats"`
	Cache       *cache.Stats           `json:"cache,omitempty"`
}

// Statistics summarizes the current state of the engine.
func (p *Pipeline) Statistics() (Statistics, error) {
	queries, err := p.monitor.QueryStatistics(100)
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		VectorStore: p.store.Statistics(),
		Queries:     queries,
	}
	if p.cache != nil {
		cs, err := p.cache.Statistics()
		if err != nil {
			return Statistics{}, err
		}
		stats.Cache = &cs
	}
	return stats, nil
}

// ClearCache removes cached answers, expired ones only unless all is set.
func (p *Pipeline) ClearCache(all bool) (int, error) {
	if p.cache == nil {
		return 0, nil
	}
	if all {
		return p.cache.ClearAll()
	}
	return p.cache.ClearExpired()
}

// Close releases the embedder.
func (p *Pipeline) Close() error {
	return p.embedder.Close()
}

func (p *Pipeline) lexicalPath() string {
	return filepath.Join(p.cfg.IndexPath, lexical.BundleName)
}
