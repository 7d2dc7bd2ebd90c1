package chunker

import (
	"regexp"
	"strings"
)

var (
	classDeclRe = regexp.MustCompile(`class\s+(\w+)`)
	freeFuncRe  = regexp.MustCompile(`(?:void|int|bool|uint\d+|float|double|std::string)\s+\w+\s*\([^)]*\)\s*\{`)
)

// maxImplementations caps how many out-of-line member definitions are
// appended to a class chunk. Three keeps class chunks inside the embedding
// model's useful context without dropping the class definition itself.
const maxImplementations = 3

// splitStructuredSource extracts one chunk per top-level class definition
// (paired with its out-of-line member implementations found elsewhere in the
// file) and one chunk per free function whose body exceeds minChunkSize.
// Returns nil when nothing structural is found so the caller can fall back
// to generic chunking. Chunk order is discovery order: classes first, then
// free functions.
func splitStructuredSource(content string, minChunkSize int) []string {
	var chunks []string

	classes := extractClasses(content)
	for _, cl := range classes {
		combined := cl.definition
		impls := extractImplementations(content, cl.name)
		if len(impls) > 0 {
			if len(impls) > maxImplementations {
				impls = impls[:maxImplementations]
			}
			combined += "\n\n// Implementations:\n" + strings.Join(impls, "\n\n")
		}
		chunks = append(chunks, combined)
	}

	for _, loc := range freeFuncRe.FindAllStringIndex(content, -1) {
		openBrace := loc[1] - 1
		end := matchBrace(content, openBrace)
		if end < 0 {
			continue
		}
		fn := content[loc[0]:end]
		if len(fn) > minChunkSize && !insideAnyClass(classes, loc[0]) {
			chunks = append(chunks, fn)
		}
	}

	return chunks
}

type classDef struct {
	name       string
	definition string
	start, end int // byte offsets of the definition within the file
}

// extractClasses finds complete top-level class definitions using
// brace-balanced matching. Forward declarations (a ';' before any '{') are
// skipped.
func extractClasses(content string) []classDef {
	var classes []classDef

	for _, m := range classDeclRe.FindAllStringSubmatchIndex(content, -1) {
		declStart := m[0]
		name := content[m[2]:m[3]]

		// Find the class body's opening brace; a semicolon first means a
		// forward declaration.
		open := -1
		for i := m[1]; i < len(content); i++ {
			if content[i] == '{' {
				open = i
				break
			}
			if content[i] == ';' {
				break
			}
		}
		if open < 0 {
			continue
		}

		end := matchBrace(content, open)
		if end < 0 {
			continue
		}
		// Include the trailing semicolon of the declaration when present.
		if end < len(content) && content[end] == ';' {
			end++
		}

		classes = append(classes, classDef{
			name:       name,
			definition: content[declStart:end],
			start:      declStart,
			end:        end,
		})
	}

	return classes
}

// extractImplementations finds out-of-line member definitions of the form
// Name::method(...) { ... } using brace-balanced matching.
func extractImplementations(content, className string) []string {
	re := regexp.MustCompile(regexp.QuoteMeta(className) + `::\w+[^{;]*\{`)

	var impls []string
	for _, loc := range re.FindAllStringIndex(content, -1) {
		openBrace := loc[1] - 1
		end := matchBrace(content, openBrace)
		if end < 0 {
			continue
		}
		impls = append(impls, content[loc[0]:end])
	}
	return impls
}

// matchBrace returns the offset just past the brace matching the one at
// open, or -1 when the file ends before the braces balance.
func matchBrace(content string, open int) int {
	depth := 0
	for i := open; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// insideAnyClass reports whether offset falls within a previously extracted
// class body, so inline methods are not re-emitted as free functions.
func insideAnyClass(classes []classDef, offset int) bool {
	for _, cl := range classes {
		if offset >= cl.start && offset < cl.end {
			return true
		}
	}
	return false
}
