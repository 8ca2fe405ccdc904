package content

import "strings"

// WordsPerMinute is the assumed reading speed.
const WordsPerMinute = 200

// WordCount counts whitespace-delimited words in every heading and paragraph.
func WordCount(blocks []ContentBlock) int {
	n := 0
	for _, b := range blocks {
		n += len(strings.Fields(b.Heading))
		for _, p := range b.Body {
			n += len(strings.Fields(p.Text))
		}
	}
	return n
}

// ReadingTime estimates the minutes needed to read blocks, rounded up.
// Empty content takes 0 minutes.
func ReadingTime(blocks []ContentBlock) int {
	return (WordCount(blocks) + WordsPerMinute - 1) / WordsPerMinute
}
