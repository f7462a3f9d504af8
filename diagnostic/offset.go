package diagnostic

import (
	"strings"
	"unicode/utf8"
)

// PositionAt converts a byte offset in text to a 1-based line and rune column.
// Offsets outside the text are clamped.
func PositionAt(text string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	col := utf8.RuneCountInString(before[lineStart:]) + 1
	return Position{Line: line, Column: col, Offset: offset}
}

// OffsetOf converts a 1-based line and rune column to a byte offset in text.
// It returns -1 when the line does not exist.
func OffsetOf(text string, line, column int) int {
	if line < 1 {
		return -1
	}
	off := 0
	for l := 1; l < line; l++ {
		i := strings.IndexByte(text[off:], '\n')
		if i < 0 {
			return -1
		}
		off += i + 1
	}
	end := strings.IndexByte(text[off:], '\n')
	if end < 0 {
		end = len(text) - off
	}
	lineText := text[off : off+end]
	col := 1
	for i := range lineText {
		if col == column {
			return off + i
		}
		col++
	}
	return off + len(lineText)
}
