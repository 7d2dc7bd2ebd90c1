// Package updater keeps the indexes current with a git working tree.
//
// A persisted watermark records when the indexes last saw the repository.
// An update asks git for files added or modified since the watermark,
// re-chunks and re-embeds only those, appends them to the vector index,
// rebuilds the lexical index, and advances the watermark only after both
// indexes persist successfully.
package updater
