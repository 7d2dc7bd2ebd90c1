package chunker

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// markupSplitter splits markdown on headings at any level, then greedily
// packs consecutive sections into chunks of at most chunkSize characters.
// A single section larger than chunkSize becomes its own oversized chunk;
// nothing is hard-truncated.
type markupSplitter struct {
	chunkSize int
	parser    goldmark.Markdown
}

func newMarkupSplitter(chunkSize int) *markupSplitter {
	return &markupSplitter{
		chunkSize: chunkSize,
		parser:    goldmark.New(),
	}
}

func (s *markupSplitter) split(content string) []string {
	sections := s.sections(content)

	var chunks []string
	var current string

	for _, section := range sections {
		if strings.TrimSpace(section) == "" {
			continue
		}

		if len(current)+len(section) > s.chunkSize {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = section
			continue
		}

		if current == "" {
			current = section
		} else {
			current += "\n\n" + section
		}
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}

// sections cuts the document at every heading start located by the markdown
// parser. Content before the first heading forms its own section.
func (s *markupSplitter) sections(content string) []string {
	offsets := s.headingOffsets(content)
	if len(offsets) == 0 {
		return []string{content}
	}

	cuts := make([]int, 0, len(offsets)+1)
	if offsets[0] != 0 {
		cuts = append(cuts, 0)
	}
	cuts = append(cuts, offsets...)

	sections := make([]string, 0, len(cuts))
	for i, start := range cuts {
		end := len(content)
		if i+1 < len(cuts) {
			end = cuts[i+1]
		}
		sections = append(sections, content[start:end])
	}
	return sections
}

// headingOffsets returns the byte offsets at which heading lines begin,
// in document order.
func (s *markupSplitter) headingOffsets(content string) []int {
	source := []byte(content)
	doc := s.parser.Parser().Parse(text.NewReader(source))

	var offsets []int
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}

		// The segment starts at the heading text; back up to the start of
		// the line to include the marker itself.
		start := heading.Lines().At(0).Start
		offsets = append(offsets, lineStart(source, start))
		return ast.WalkSkipChildren, nil
	})

	sort.Ints(offsets)
	return offsets
}

func lineStart(source []byte, offset int) int {
	for offset > 0 && source[offset-1] != '\n' {
		offset--
	}
	return offset
}
