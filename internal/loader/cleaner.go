package loader

import (
	"regexp"
	"strings"
)

var (
	copyrightBlockRe = regexp.MustCompile(`/\*[\s\S]*?Copyright[\s\S]*?\*/`)
	imageLinkRe      = regexp.MustCompile(`!\[([^\]]*)\]\([^\)]+\)`)
	headingMarkRe    = regexp.MustCompile(`(#{1,6})\s+`)
	blankRunRe       = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Clean normalizes raw file content according to its declared type.
func Clean(content, fileType string) string {
	switch fileType {
	case "cpp", "h":
		return cleanSource(content)
	case "md":
		return cleanMarkdown(content)
	case "conf":
		return cleanConfig(content)
	default:
		return cleanGeneric(content)
	}
}

// cleanSource strips license preambles and trailing whitespace from C++
// sources.
func cleanSource(content string) string {
	content = copyrightBlockRe.ReplaceAllString(content, "")
	content = collapseBlankRuns(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// cleanMarkdown drops image links (keeping alt text) and normalizes heading
// markers to a single trailing space.
func cleanMarkdown(content string) string {
	content = imageLinkRe.ReplaceAllString(content, "$1")
	content = headingMarkRe.ReplaceAllString(content, "$1 ")
	content = collapseBlankRuns(content)
	return strings.TrimSpace(content)
}

// cleanConfig removes blank lines and double-hash comment lines, keeping
// single-hash comments since they often document settings.
func cleanConfig(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "##") {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return strings.Join(lines, "\n")
}

func cleanGeneric(content string) string {
	return strings.TrimSpace(collapseBlankRuns(content))
}

// collapseBlankRuns reduces any run of blank lines to a single blank line.
func collapseBlankRuns(content string) string {
	return blankRunRe.ReplaceAllString(content, "\n\n")
}
