// Package hybrid fuses vector and lexical retrieval into a single ranking.
//
// A query is scored twice: semantically, against the flat vector index, and
// lexically, against the BM25 index. The two score sets are combined with a
// blend weight alpha (1.0 means pure vector, 0.0 pure lexical) and the top
// results returned with their blended score. If the lexical index has not
// been built the ranker degrades to vector-only search.
package hybrid
