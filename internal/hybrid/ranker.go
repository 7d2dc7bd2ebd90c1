package hybrid

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/corekb/corekb/internal/embedder"
	"github.com/corekb/corekb/internal/lexical"
	"github.com/corekb/corekb/internal/vectorstore"
	"github.com/corekb/corekb/pkg/types"
)

// vectorOversample is how many extra vector candidates are fetched to
// compensate for fusion reordering.
const vectorOversample = 2

// noiseFloor is the minimum normalized lexical score a chunk needs to enter
// the ranking on keyword evidence alone.
const noiseFloor = 0.1

// Ranker combines vector and lexical retrieval.
type Ranker struct {
	store    *vectorstore.Store
	lexical  *lexical.Index
	embedder embedder.Embedder
}

// New creates a ranker over the given indexes. The lexical index may be
// unbuilt, in which case searches are vector-only.
func New(store *vectorstore.Store, lex *lexical.Index, emb embedder.Embedder) *Ranker {
	return &Ranker{store: store, lexical: lex, embedder: emb}
}

// Outcome is the structured result of one search, including the counts an
// observer needs to log or meter the query.
type Outcome struct {
	Results          []types.SearchResult
	VectorCandidates int
	LexicalMatches   int
	Elapsed          time.Duration
}

// Search returns the top k chunks for the query, ranked by the blended
// score alpha*similarity + (1-alpha)*normalized_lexical.
func (r *Ranker) Search(ctx context.Context, query string, k int, alpha float64, filters types.Filters) (*Outcome, error) {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha must be in [0,1], got %g", alpha)
	}

	queryVector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if r.lexical == nil || !r.lexical.Built() {
		results, err := r.store.Search(queryVector, k, filters)
		if err != nil {
			return nil, err
		}
		for i := range results {
			results[i].Combined = results[i].Similarity
		}
		return &Outcome{
			Results:          results,
			VectorCandidates: len(results),
			Elapsed:          time.Since(start),
		}, nil
	}

	vectorResults, err := r.store.Search(queryVector, k*vectorOversample, filters)
	if err != nil {
		return nil, err
	}

	lexScores := r.lexical.Scores(lexical.Tokenize(query))
	normalizeMax(lexScores)

	type entry struct {
		position int
		result   types.SearchResult
		score    float64
	}

	byPosition := make(map[int]int, len(vectorResults))
	entries := make([]entry, 0, len(vectorResults))

	contents := r.store.Contents()
	for _, res := range vectorResults {
		pos := findByContent(contents, res.Chunk.Content)
		if pos < 0 {
			continue
		}
		// Duplicate contents resolve to one position; keep the closest hit.
		if _, ok := byPosition[pos]; ok {
			continue
		}
		byPosition[pos] = len(entries)
		entries = append(entries, entry{
			position: pos,
			result:   res,
			score:    alpha * res.Similarity,
		})
	}

	lexicalMatches := 0
	for pos, score := range lexScores {
		if score <= 0 {
			continue
		}
		// Seeded positions always receive their lexical contribution; the
		// noise floor gates only chunks entering on keyword evidence alone.
		if i, ok := byPosition[pos]; ok {
			entries[i].score += (1 - alpha) * score
			lexicalMatches++
			continue
		}
		if score <= noiseFloor {
			continue
		}
		meta := r.store.Metadata(pos)
		if !filters.Match(meta) {
			continue
		}
		lexicalMatches++
		entries = append(entries, entry{
			position: pos,
			result: types.SearchResult{
				Chunk:    r.store.Chunk(pos),
				Metadata: meta,
			},
			score: (1 - alpha) * score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})
	if len(entries) > k {
		entries = entries[:k]
	}

	results := make([]types.SearchResult, len(entries))
	for i, e := range entries {
		e.result.Combined = e.score
		results[i] = e.result
	}

	return &Outcome{
		Results:          results,
		VectorCandidates: len(vectorResults),
		LexicalMatches:   lexicalMatches,
		Elapsed:          time.Since(start),
	}, nil
}

// normalizeMax scales scores into [0,1] by the maximum value. An all-zero
// slice is left untouched.
func normalizeMax(scores []float64) {
	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max == 0 {
		return
	}
	for i := range scores {
		scores[i] /= max
	}
}

// findByContent locates a chunk's corpus position by exact content match.
// Corpus scale keeps the linear scan cheap.
func findByContent(contents []string, content string) int {
	for i, c := range contents {
		if c == content {
			return i
		}
	}
	return -1
}
