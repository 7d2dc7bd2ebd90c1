package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/corekb/corekb/internal/embedder"
	"github.com/corekb/corekb/internal/lexical"
	"github.com/corekb/corekb/internal/loader"
	"github.com/corekb/corekb/internal/vectorstore"
	"github.com/corekb/corekb/pkg/types"
)

var relevantExtensions = map[string]bool{
	".cpp":  true,
	".h":    true,
	".md":   true,
	".conf": true,
	".sql":  true,
}

// Updater incrementally refreshes both indexes from a git repository.
type Updater struct {
	repoPath      string
	indexPath     string
	watermarkPath string
	batchSize     int

	loader   *loader.Loader
	embedder embedder.Embedder
	store    *vectorstore.Store
	lexical  *lexical.Index

	now func() time.Time
}

// New creates an updater over already-loaded indexes.
func New(repoPath, indexPath, watermarkPath string, batchSize int,
	ld *loader.Loader, emb embedder.Embedder,
	store *vectorstore.Store, lex *lexical.Index) *Updater {
	return &Updater{
		repoPath:      repoPath,
		indexPath:     indexPath,
		watermarkPath: watermarkPath,
		batchSize:     batchSize,
		loader:        ld,
		embedder:      emb,
		store:         store,
		lexical:       lex,
		now:           time.Now,
	}
}

// Outcome reports what one update did.
type Outcome struct {
	Since       time.Time
	FilesFound  int
	FilesLoaded int
	ChunksAdded int
	Elapsed     time.Duration
}

// Update finds files changed since the watermark, indexes them, persists
// both indexes, and advances the watermark. With no changed files it is a
// no-op that leaves both indexes and the watermark untouched.
func (u *Updater) Update(ctx context.Context) (*Outcome, error) {
	start := u.now()
	since := readWatermark(u.watermarkPath, start)
	out := &Outcome{Since: since}

	files := u.modifiedFiles(ctx, since)
	out.FilesFound = len(files)
	if len(files) == 0 {
		out.Elapsed = time.Since(start)
		return out, nil
	}

	documents := make([]types.Document, 0, len(files))
	for _, rel := range files {
		doc, ok := u.loader.LoadFile(filepath.Join(u.repoPath, rel))
		if !ok {
			continue
		}
		documents = append(documents, doc)
	}
	out.FilesLoaded = len(documents)
	if len(documents) == 0 {
		out.Elapsed = time.Since(start)
		return out, nil
	}

	chunks := u.loader.ChunkDocuments(documents)
	if err := embedder.EmbedChunks(ctx, u.embedder, chunks, u.batchSize); err != nil {
		return nil, fmt.Errorf("embed updated chunks: %w", err)
	}

	if err := u.store.Add(chunks); err != nil {
		return nil, fmt.Errorf("extend vector index: %w", err)
	}
	out.ChunksAdded = len(chunks)

	u.lexical.Build(u.store.Contents())

	if err := u.store.Save(u.indexPath); err != nil {
		return nil, fmt.Errorf("persist vector index: %w", err)
	}
	if err := u.lexical.Save(filepath.Join(u.indexPath, lexical.BundleName)); err != nil {
		return nil, fmt.Errorf("persist lexical index: %w", err)
	}

	if err := writeWatermark(u.watermarkPath, start); err != nil {
		return nil, err
	}

	out.Elapsed = time.Since(start)
	return out, nil
}

// modifiedFiles asks git for files added or modified since the timestamp.
// A git failure degrades to no files so a broken checkout never aborts the
// caller.
func (u *Updater) modifiedFiles(ctx context.Context, since time.Time) []string {
	cmd := exec.CommandContext(ctx, "git", "log",
		"--since="+since.Format(time.RFC3339),
		"--name-only",
		"--pretty=format:",
		"--diff-filter=AM")
	cmd.Dir = u.repoPath

	output, err := cmd.Output()
	if err != nil {
		slog.Error("git log failed, skipping update", "repo", u.repoPath, "error", err)
		return nil
	}

	seen := make(map[string]bool)
	var files []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] || !relevantExtensions[filepath.Ext(line)] {
			continue
		}
		seen[line] = true
		files = append(files, line)
	}
	sort.Strings(files)
	return files
}
