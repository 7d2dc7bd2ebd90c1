package chunker

import "strings"

// splitGeneric accumulates lines until the chunk size is reached, then
// starts a new chunk seeded with enough trailing lines of the previous one
// to cover the configured overlap. The overlap is tail-anchored: it is measured
// in characters from the end of the flushed chunk, not a fixed line count.
func splitGeneric(content string, chunkSize, overlap int) []string {
	var chunks []string

	var current []string
	currentSize := 0

	for _, line := range strings.Split(content, "\n") {
		lineSize := len(line)

		if currentSize+lineSize > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))

			var tail []string
			tailSize := 0
			for i := len(current) - 1; i >= 0; i-- {
				if tailSize+len(current[i]) >= overlap {
					break
				}
				tail = append([]string{current[i]}, tail...)
				tailSize += len(current[i])
			}

			current = tail
			currentSize = tailSize
		}

		current = append(current, line)
		currentSize += lineSize
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}
