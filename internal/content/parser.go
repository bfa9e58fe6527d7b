package content

import (
	"regexp"
	"strings"
)

// ParagraphStyle controls how legacy raw text is split into paragraphs when a
// chapter has no stored content file yet.
type ParagraphStyle string

const (
	StyleSingleNewline ParagraphStyle = "single_newline"
	StyleDoubleNewline ParagraphStyle = "double_newline"
	StyleAutoDetect    ParagraphStyle = "auto_detect"
)

func ValidParagraphStyle(style string) bool {
	switch ParagraphStyle(style) {
	case StyleSingleNewline, StyleDoubleNewline, StyleAutoDetect:
		return true
	}
	return false
}

var doubleNewlineRe = regexp.MustCompile(`\n{2,}`)

// Parse splits raw legacy text into an ordered sequence of paragraph
// elements. Pure function: no I/O, no state.
//
// double_newline splits on runs of two or more newlines, single_newline on
// every newline. Segments are trimmed and blank segments dropped. auto_detect
// uses double_newline when at least one double-newline break exists, and
// single_newline otherwise.
func Parse(raw string, style ParagraphStyle) []Element {
	var segments []string
	switch style {
	case StyleDoubleNewline:
		segments = doubleNewlineRe.Split(raw, -1)
	case StyleSingleNewline:
		segments = strings.Split(raw, "\n")
	default:
		if doubleNewlineRe.MatchString(raw) {
			return Parse(raw, StyleDoubleNewline)
		}
		return Parse(raw, StyleSingleNewline)
	}
	elements := make([]Element, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		elements = append(elements, Paragraph(segment))
	}
	return elements
}
