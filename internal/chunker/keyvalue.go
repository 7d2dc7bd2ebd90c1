package chunker

import "strings"

// configMarker flags settings lines that must be independently retrievable.
// Each such line is emitted as its own small chunk in addition to its place
// in the grouped section chunk; the duplication is intentional so the line
// can be found both in context and in isolation.
const configMarker = "AiPlayerbot"

// splitKeyValueConfig splits a key-value config file on [section] header
// lines. Each section becomes one chunk holding the header and its settings.
// Comment-only and blank lines are dropped. Settings lines containing the
// marker substring additionally become a standalone header+line chunk.
func splitKeyValueConfig(content string) []string {
	var chunks []string
	var section string
	var settings []string

	flush := func() {
		if section != "" && len(settings) > 0 {
			chunks = append(chunks, section+"\n"+strings.Join(settings, "\n"))
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			flush()
			section = trimmed
			settings = nil

		case trimmed != "" && !strings.HasPrefix(trimmed, "#"):
			settings = append(settings, line)

			if strings.Contains(line, "=") && strings.Contains(line, configMarker) {
				if section != "" {
					chunks = append(chunks, section+"\n"+line)
				} else {
					chunks = append(chunks, line)
				}
			}
		}
	}

	flush()
	return chunks
}
