// Package metadata derives structured attributes for a document from its
// path and content. Extraction is pure: the same content and path always
// yield identical metadata.
package metadata

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/corekb/corekb/pkg/types"
)

// Category keyword buckets. A document's category is the bucket whose
// keywords occur most often in the content; an all-zero tie means "general".
var categoryKeywords = map[string][]string{
	"combat":    {"combat", "attack", "spell", "damage", "heal", "threat"},
	"movement":  {"move", "follow", "position", "teleport", "navigation"},
	"ai":        {"ai", "decision", "behavior", "strategy", "brain", "engine", "factory"},
	"config":    {"config", "setting", "option", "parameter"},
	"database":  {"sql", "table", "query", "insert", "select", "update"},
	"inventory": {"inventory", "item", "equipment", "bag", "loot"},
	"social":    {"guild", "group", "party", "raid", "chat", "whisper"},
	"quest":     {"quest", "objective", "reward", "questgiver"},
}

// categoryOrder fixes the tie-break order between equally scored buckets so
// extraction stays deterministic.
var categoryOrder = []string{
	"combat", "movement", "ai", "config", "database", "inventory", "social", "quest",
}

// Subsystem vocabulary matched against path segments, first match wins.
var subsystems = map[string]struct{}{
	"strategy": {}, "actions": {}, "triggers": {}, "values": {}, "ai": {},
	"factory": {}, "dungeons": {}, "generic": {}, "raids": {}, "rpg": {},
	"deathknight": {}, "druid": {}, "hunter": {}, "mage": {}, "paladin": {},
	"priest": {}, "rogue": {}, "shaman": {}, "warlock": {}, "warrior": {},
}

var languageByType = map[string]string{
	"cpp":  "c++",
	"h":    "c++",
	"md":   "markdown",
	"conf": "config",
	"sql":  "sql",
	"lua":  "lua",
}

var (
	classNameRe = regexp.MustCompile(`class\s+(\w+)`)
	cppFuncRe   = regexp.MustCompile(`void\s+\w+\s*\(`)
	fencedRe    = regexp.MustCompile("```\\w+")
)

// Config markers that flag a document as configuration-related.
var configIndicators = []string{
	"config", "setting", ".conf", "parameter", "AiPlayerbot.", "sConfigMgr",
}

const maxClassTags = 5

// Tagger extracts metadata. It is stateless; the zero value is usable.
type Tagger struct{}

// New creates a Tagger.
func New() *Tagger {
	return &Tagger{}
}

// Extract derives metadata from a document's content and path.
func (t *Tagger) Extract(content, path string) types.Metadata {
	parts := splitPath(path)
	filename := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	m := types.Metadata{
		Filename:   filename,
		Filepath:   path,
		Type:       ext,
		Module:     detectModule(parts),
		Subsystem:  detectSubsystem(parts),
		Category:   detectCategory(content),
		Tags:       extractTags(content, ext),
		HasConfig:  hasConfigInfo(content),
		HasExample: hasCodeExample(content),
		HasSQL:     strings.Contains(strings.ToLower(content), "sql") || ext == "sql",
		Complexity: estimateComplexity(content),
		Language:   detectLanguage(ext),
	}
	m.NormalizeTags()
	return m
}

func splitPath(path string) []string {
	return strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool {
		return r == '/'
	})
}

func detectModule(parts []string) string {
	for i, part := range parts {
		if part == "mod-playerbots" {
			return "playerbots"
		}
		if part == "modules" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return "core"
}

func detectSubsystem(parts []string) string {
	for _, part := range parts {
		if _, ok := subsystems[part]; ok {
			return part
		}
	}
	return "general"
}

func detectCategory(content string) string {
	lower := strings.ToLower(content)

	best := "general"
	bestScore := 0
	for _, category := range categoryOrder {
		score := 0
		for _, kw := range categoryKeywords[category] {
			score += strings.Count(lower, kw)
		}
		if score > bestScore {
			best = category
			bestScore = score
		}
	}
	return best
}

func extractTags(content, fileType string) []string {
	tags := map[string]struct{}{fileType: {}}

	if fileType == "cpp" || fileType == "h" {
		matches := classNameRe.FindAllStringSubmatch(content, maxClassTags)
		for _, m := range matches {
			tags[m[1]] = struct{}{}
		}
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "aiplayerbot") {
		tags["playerbot-config"] = struct{}{}
	}
	if strings.Contains(lower, "command") {
		tags["commands"] = struct{}{}
	}

	out := make([]string, 0, len(tags))
	for tag := range tags {
		out = append(out, tag)
	}
	return out
}

func hasConfigInfo(content string) bool {
	for _, indicator := range configIndicators {
		if strings.Contains(content, indicator) {
			return true
		}
	}
	return false
}

func hasCodeExample(content string) bool {
	return fencedRe.MatchString(content) ||
		classNameRe.MatchString(content) ||
		cppFuncRe.MatchString(content)
}

func estimateComplexity(content string) types.Complexity {
	lines := strings.Count(content, "\n") + 1
	switch {
	case lines < 50:
		return types.ComplexitySimple
	case lines < 200:
		return types.ComplexityMedium
	default:
		return types.ComplexityComplex
	}
}

func detectLanguage(fileType string) string {
	if lang, ok := languageByType[fileType]; ok {
		return lang
	}
	return "text"
}
