// Package loader walks a source tree, cleans each supported file, and turns
// it into tagged documents and chunks ready for indexing.
package loader
