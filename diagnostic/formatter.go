package diagnostic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultContextLines is the number of source lines shown before and after
// the failing line.
const DefaultContextLines = 4

// Formatter renders a ParsingError as a header followed by a numbered source
// snippet with a caret under the failing column:
//
//	Error at line 2, column 1.
//
//	1 | 42
//	2 | %
//	----^
//	3 | 'string'
type Formatter struct {
	ContextLines int
}

// NewFormatter returns a formatter showing contextLines lines around the
// failing line. Negative values fall back to DefaultContextLines.
func NewFormatter(contextLines int) Formatter {
	if contextLines < 0 {
		contextLines = DefaultContextLines
	}

	return Formatter{ContextLines: contextLines}
}

// Header returns the first line of the message.
func (f Formatter) Header(err *ParsingError) string {
	return header(err.Position())
}

// Snippet returns the numbered source window with the caret line.
func (f Formatter) Snippet(err *ParsingError) string {
	return f.snippet(err.Text, err.Position())
}

// Format renders the complete message. It never modifies err.
func (f Formatter) Format(err *ParsingError) string {
	return f.FormatAt(err.Text, err.Offset)
}

// FormatAt renders the message for any failure located at offset of text.
func (f Formatter) FormatAt(text string, offset int) string {
	pos := Resolve(text, offset)
	return header(pos) + "\n\n" + f.snippet(text, pos)
}

func header(pos Position) string {
	return fmt.Sprintf("Error at line %d, column %d.", pos.Line+1, pos.Column+1)
}

func (f Formatter) snippet(text string, pos Position) string {
	lines := strings.Split(text, "\n")

	first := max(0, pos.Line-f.ContextLines)
	last := min(len(lines)-1, pos.Line+f.ContextLines)
	width := len(strconv.Itoa(last + 1))

	var b strings.Builder

	for i := first; i <= last; i++ {
		if i > first {
			b.WriteByte('\n')
		}

		fmt.Fprintf(&b, "%*d | %s", width, i+1, strings.TrimRight(lines[i], "\r"))

		if i == pos.Line {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("-", width+3+pos.Column))
			b.WriteByte('^')
		}
	}

	return b.String()
}

// Format renders err with the default formatter when it is a ParsingError,
// and falls back to err.Error() otherwise.
func Format(err error) string {
	var perr *ParsingError
	if errors.As(err, &perr) {
		return NewFormatter(DefaultContextLines).Format(perr)
	}

	return err.Error()
}
