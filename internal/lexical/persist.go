package lexical

import (
	"encoding/json"
	"fmt"
	"os"
)

// BundleName is the conventional file name for the persisted index inside
// an index directory.
const BundleName = "bm25.json"

// bundle is the persisted form of the index: the scorer parameters plus the
// tokenized corpus. Derived statistics are rebuilt on load.
type bundle struct {
	K1      float64    `json:"k1"`
	B       float64    `json:"b"`
	Epsilon float64    `json:"epsilon"`
	Corpus  [][]string `json:"tokenized_corpus"`
}

// Save writes the index bundle to path.
func (idx *Index) Save(path string) error {
	data, err := json.Marshal(bundle{
		K1:      idx.k1,
		B:       idx.b,
		Epsilon: idx.epsilon,
		Corpus:  idx.corpus,
	})
	if err != nil {
		return fmt.Errorf("failed to encode lexical index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write lexical index: %w", err)
	}
	return nil
}

// Load reads a bundle from path and rebuilds the scorer statistics.
func (idx *Index) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read lexical index: %w", err)
	}
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("failed to parse lexical index: %w", err)
	}

	idx.k1 = b.K1
	idx.b = b.B
	idx.epsilon = b.Epsilon
	idx.BuildTokenized(b.Corpus)
	return nil
}
