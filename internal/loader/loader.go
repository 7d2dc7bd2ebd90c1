package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/corekb/corekb/internal/chunker"
	"github.com/corekb/corekb/internal/config"
	"github.com/corekb/corekb/internal/metadata"
	"github.com/corekb/corekb/pkg/types"
)

var supportedExtensions = map[string]bool{
	".cpp":  true,
	".h":    true,
	".md":   true,
	".conf": true,
	".sql":  true,
	".txt":  true,
}

var skippedDirs = map[string]bool{
	".git":        true,
	"__pycache__": true,
	"build":       true,
	".vscode":     true,
}

// Loader reads a source tree into cleaned, tagged documents.
type Loader struct {
	tagger  *metadata.Tagger
	chunker *chunker.Chunker
}

// New creates a loader using the given chunking configuration.
func New(cfg config.Chunking) *Loader {
	return &Loader{
		tagger:  metadata.New(),
		chunker: chunker.New(cfg),
	}
}

// LoadDirectory walks root and loads every supported file. Unreadable or
// empty files are skipped with a warning, not treated as fatal.
func (l *Loader) LoadDirectory(root string) ([]types.Document, error) {
	var documents []types.Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !supportedExtensions[filepath.Ext(path)] {
			return nil
		}

		doc, ok := l.LoadFile(path)
		if ok {
			documents = append(documents, doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	slog.Info("loaded documents", "root", root, "count", len(documents))
	return documents, nil
}

// LoadFile reads, cleans, and tags a single file. The second return is
// false when the file is unreadable or empty after cleaning.
func (l *Loader) LoadFile(path string) (types.Document, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("could not read file", "path", path, "error", err)
		return types.Document{}, false
	}
	if strings.TrimSpace(string(raw)) == "" {
		return types.Document{}, false
	}

	fileType := strings.TrimPrefix(filepath.Ext(path), ".")
	content := Clean(string(raw), fileType)
	if content == "" {
		return types.Document{}, false
	}

	return types.Document{
		Content:  content,
		Metadata: l.tagger.Extract(content, path),
	}, true
}

// ChunkDocuments splits every document into chunks.
func (l *Loader) ChunkDocuments(documents []types.Document) []types.Chunk {
	var chunks []types.Chunk
	for _, doc := range documents {
		chunks = append(chunks, l.chunker.Chunk(doc.Content, doc.Metadata)...)
	}
	slog.Info("chunked documents", "documents", len(documents), "chunks", len(chunks))
	return chunks
}
