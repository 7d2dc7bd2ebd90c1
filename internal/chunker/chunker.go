package chunker

import (
	"strings"

	"github.com/corekb/corekb/internal/config"
	"github.com/corekb/corekb/pkg/types"
)

// Strategy identifies one of the closed set of splitting strategies.
type Strategy int

const (
	StrategyStructuredSource Strategy = iota
	StrategyMarkup
	StrategyKeyValueConfig
	StrategyGeneric
)

// strategyForType maps a declared document type to its strategy. Selection
// happens once per document; the strategies themselves are pure functions
// from content to a list of raw chunk bodies.
func strategyForType(fileType string) Strategy {
	switch fileType {
	case "cpp", "h":
		return StrategyStructuredSource
	case "md":
		return StrategyMarkup
	case "conf":
		return StrategyKeyValueConfig
	default:
		return StrategyGeneric
	}
}

// Chunker splits documents into chunks.
type Chunker struct {
	cfg    config.Chunking
	markup *markupSplitter
}

// New creates a Chunker with the given chunking configuration.
func New(cfg config.Chunking) *Chunker {
	return &Chunker{
		cfg:    cfg,
		markup: newMarkupSplitter(cfg.ChunkSize),
	}
}

// Chunk splits a document according to its declared type and enriches every
// surviving piece with a copy of the document metadata. ChunkIndex is the
// piece's position in the strategy's emission order, counted before the
// minimum-size filter, so indices may have gaps.
func (c *Chunker) Chunk(content string, meta types.Metadata) []types.Chunk {
	pieces := c.split(strategyForType(meta.Type), content)

	chunks := make([]types.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		if len(strings.TrimSpace(piece)) < c.cfg.MinChunkSize {
			continue
		}
		chunks = append(chunks, types.Chunk{
			Content:    piece,
			ChunkIndex: i,
			Metadata:   meta.Clone(),
		})
	}
	return chunks
}

func (c *Chunker) split(s Strategy, content string) []string {
	switch s {
	case StrategyStructuredSource:
		pieces := splitStructuredSource(content, c.cfg.MinChunkSize)
		if len(pieces) == 0 {
			return splitGeneric(content, c.cfg.ChunkSize, c.cfg.Overlap)
		}
		return pieces
	case StrategyMarkup:
		return c.markup.split(content)
	case StrategyKeyValueConfig:
		return splitKeyValueConfig(content)
	default:
		return splitGeneric(content, c.cfg.ChunkSize, c.cfg.Overlap)
	}
}
