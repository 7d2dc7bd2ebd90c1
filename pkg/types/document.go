package types

import (
	"slices"
	"sort"
)

// Complexity is a rough size-based estimate of how involved a document is.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Document is a cleaned source file plus its derived metadata. Documents are
// immutable once created and are consumed only by the chunker.
type Document struct {
	Content  string
	Metadata Metadata
}

// Metadata holds the structured attributes derived once per document and
// copied onto every chunk produced from it.
type Metadata struct {
	Filename   string     `json:"filename"`
	Filepath   string     `json:"filepath"`
	Type       string     `json:"type"` // file extension without the dot
	Module     string     `json:"module"`
	Subsystem  string     `json:"subsystem"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags"`
	HasConfig  bool       `json:"has_config"`
	HasExample bool       `json:"has_example"`
	HasSQL     bool       `json:"has_sql"`
	Complexity Complexity `json:"complexity"`
	Language   string     `json:"language"`
}

// Clone returns a deep copy. Chunks must not share tag slices with their
// siblings, so every chunk gets its own clone.
func (m Metadata) Clone() Metadata {
	c := m
	c.Tags = slices.Clone(m.Tags)
	return c
}

// HasTag reports whether the tag set contains tag.
func (m Metadata) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}

// Field looks up a metadata attribute by its wire name, as used in filter
// predicates. The second return is false for unknown keys.
func (m Metadata) Field(key string) (any, bool) {
	switch key {
	case "filename":
		return m.Filename, true
	case "filepath":
		return m.Filepath, true
	case "type":
		return m.Type, true
	case "module":
		return m.Module, true
	case "subsystem":
		return m.Subsystem, true
	case "category":
		return m.Category, true
	case "tags":
		return m.Tags, true
	case "has_config":
		return m.HasConfig, true
	case "has_example":
		return m.HasExample, true
	case "has_sql":
		return m.HasSQL, true
	case "complexity":
		return string(m.Complexity), true
	case "language":
		return m.Language, true
	default:
		return nil, false
	}
}

// NormalizeTags sorts the tag set so metadata derivation stays deterministic
// for identical input.
func (m *Metadata) NormalizeTags() {
	sort.Strings(m.Tags)
}
