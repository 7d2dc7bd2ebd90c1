package embedder

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/corekb/corekb/pkg/types"
)

const maxConcurrentBatches = 4

// EmbedChunks computes and attaches embeddings for every chunk, batching
// requests and running batches concurrently. Each chunk is embedded under
// its searchable text, not its raw content. Chunks are modified in place.
func EmbedChunks(ctx context.Context, emb Embedder, chunks []types.Chunk, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 32
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)

	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		batch := chunks[start:end]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = SearchableText(c)
			}
			vectors, err := emb.EmbedBatch(ctx, texts)
			if err != nil {
				return fmt.Errorf("embed batch at %d: %w", start, err)
			}
			for i := range batch {
				batch[i].Embedding = vectors[i]
			}
			return nil
		})
	}

	return g.Wait()
}
