// Package chunker splits cleaned documents into bounded, coherent chunks
// according to the document's declared type.
//
// Each declared type maps to exactly one of four splitting strategies:
//
//   - structured source (cpp, h): one chunk per class definition paired with
//     its out-of-line member implementations, plus one chunk per free
//     function above the minimum size
//   - markup (md): heading-delimited sections greedily packed up to the
//     configured chunk size
//   - key-value config (conf): one chunk per [section], plus standalone
//     chunks for individual marker lines so they are retrievable both in
//     context and in isolation
//   - generic (everything else): line-based sliding window with
//     tail-anchored overlap
//
// Every returned chunk satisfies the minimum-size invariant: chunks whose
// trimmed content falls below Config.MinChunkSize are discarded at creation.
// Chunk metadata is a per-chunk copy of the document metadata.
package chunker
