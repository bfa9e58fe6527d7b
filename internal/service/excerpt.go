package service

import (
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/webnovel/internal/content"
)

const excerptMaxChars = 300

// makeExcerpt truncates text to at most excerptMaxChars runes, preferring a
// sentence boundary and falling back to the last space before the cut.
func makeExcerpt(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= excerptMaxChars {
		return text
	}
	runes := []rune(text)
	cut := runes[:excerptMaxChars]
	boundary := -1
	for i := len(cut) - 1; i >= 0; i-- {
		switch cut[i] {
		case '.', '!', '?', '。', '！', '？':
			boundary = i + 1
		}
		if boundary >= 0 {
			break
		}
	}
	if boundary > 0 {
		return strings.TrimSpace(string(cut[:boundary]))
	}
	if idx := strings.LastIndexByte(string(cut), ' '); idx > 0 {
		return strings.TrimSpace(string(cut)[:idx]) + "..."
	}
	return strings.TrimSpace(string(cut)) + "..."
}

// contentStats derives the chapter rollup from its text elements: excerpt from
// the leading paragraphs, whitespace-separated word count, rune count.
func contentStats(elements []content.Element) (excerpt string, words, chars int) {
	texts := make([]string, 0, len(elements))
	for _, el := range elements {
		if el.IsText() {
			texts = append(texts, el.Content)
		}
	}
	joined := strings.Join(texts, "\n\n")
	return makeExcerpt(joined), len(strings.Fields(joined)), utf8.RuneCountInString(joined)
}
