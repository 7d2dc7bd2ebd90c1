// Package lexical implements the BM25 keyword index over raw chunk text.
//
// The index is built from the vector store's chunk bodies in positional
// order, so score position i always refers to the same chunk as position i
// in the vector store's parallel lists. The hybrid ranker depends on that
// alignment.
package lexical

import (
	"math"
	"strings"
)

// Okapi BM25 parameters.
const (
	defaultK1      = 1.5
	defaultB       = 0.75
	defaultEpsilon = 0.25
)

// Index is a BM25 Okapi scorer over a tokenized corpus.
type Index struct {
	k1      float64
	b       float64
	epsilon float64

	corpus    [][]string
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

// New creates an empty index with default parameters.
func New() *Index {
	return &Index{k1: defaultK1, b: defaultB, epsilon: defaultEpsilon}
}

// Tokenize lowercases and whitespace-splits text. No stemming, no stopword
// removal; chunk text is code and config where every token matters.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Build tokenizes the corpus and computes the BM25 statistics. Building
// replaces any previous state; BM25 statistics are corpus-global and cannot
// be patched incrementally.
func (idx *Index) Build(corpus []string) {
	tokenized := make([][]string, len(corpus))
	for i, doc := range corpus {
		tokenized[i] = Tokenize(doc)
	}
	idx.BuildTokenized(tokenized)
}

// BuildTokenized builds the index from an already-tokenized corpus, as used
// when loading a persisted bundle.
func (idx *Index) BuildTokenized(tokenized [][]string) {
	idx.corpus = tokenized
	idx.docLens = make([]int, len(tokenized))

	totalLen := 0
	docFreq := make(map[string]int)
	for i, doc := range tokenized {
		idx.docLens[i] = len(doc)
		totalLen += len(doc)

		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	if len(tokenized) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(tokenized))
	}

	idx.computeIDF(docFreq, len(tokenized))
}

// computeIDF derives per-term inverse document frequencies. Terms so common
// that the raw formula goes negative are floored at epsilon times the
// average IDF instead, keeping them faintly relevant rather than penalized.
func (idx *Index) computeIDF(docFreq map[string]int, n int) {
	idx.idf = make(map[string]float64, len(docFreq))

	var idfSum float64
	var negative []string
	for term, df := range docFreq {
		v := math.Log(float64(n)-float64(df)+0.5) - math.Log(float64(df)+0.5)
		idx.idf[term] = v
		idfSum += v
		if v < 0 {
			negative = append(negative, term)
		}
	}

	if len(idx.idf) == 0 {
		return
	}
	floor := idx.epsilon * (idfSum / float64(len(idx.idf)))
	for _, term := range negative {
		idx.idf[term] = floor
	}
}

// Built reports whether the index has a corpus.
func (idx *Index) Built() bool {
	return len(idx.corpus) > 0
}

// Len returns the corpus size.
func (idx *Index) Len() int {
	return len(idx.corpus)
}

// Scores returns one BM25 relevance score per corpus position for the given
// query tokens, aligned with the order the corpus was built in.
func (idx *Index) Scores(queryTokens []string) []float64 {
	scores := make([]float64, len(idx.corpus))

	for _, q := range queryTokens {
		termIDF, ok := idx.idf[q]
		if !ok {
			continue
		}
		for i, doc := range idx.corpus {
			tf := 0
			for _, tok := range doc {
				if tok == q {
					tf++
				}
			}
			if tf == 0 {
				continue
			}
			norm := 1 - idx.b + idx.b*float64(idx.docLens[i])/idx.avgDocLen
			scores[i] += termIDF * float64(tf) * (idx.k1 + 1) / (float64(tf) + idx.k1*norm)
		}
	}
	return scores
}
