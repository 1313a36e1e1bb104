package diagnostic

import "strings"

// Position is a resolved location in a source text. Line and Column are 0-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Resolve converts a byte offset into a line and column by counting the
// newlines that precede it. Offsets outside of text are clamped.
func Resolve(text string, offset int) Position {
	if offset < 0 {
		offset = 0
	}

	if offset > len(text) {
		offset = len(text)
	}

	head := text[:offset]

	return Position{
		Offset: offset,
		Line:   strings.Count(head, "\n"),
		Column: offset - strings.LastIndexByte(head, '\n') - 1,
	}
}
