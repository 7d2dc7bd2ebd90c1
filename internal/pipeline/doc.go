// Package pipeline wires the retrieval engine end to end: loading and
// chunking documents, building and persisting both indexes, and answering
// questions through retrieval, prompting, generation, caching, and query
// logging.
package pipeline
