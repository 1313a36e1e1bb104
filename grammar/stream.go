package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
)

// Checkpoint is an opaque stream position returned by Save.
type Checkpoint struct {
	pos int
}

// Stream is a cursor over raw text used by lexer-free grammars.
type Stream struct {
	text string
	pos  int
}

// NewStream creates a stream positioned at the start of text.
func NewStream(text string) *Stream {
	return &Stream{text: text}
}

// Save returns the current position.
func (s *Stream) Save() Checkpoint {
	return Checkpoint{pos: s.pos}
}

// Restore moves the cursor back to cp.
func (s *Stream) Restore(cp Checkpoint) {
	s.pos = cp.pos
}

// Pos returns the byte offset of the cursor.
func (s *Stream) Pos() int {
	return s.pos
}

// Text returns the whole source text.
func (s *Stream) Text() string {
	return s.text
}

// EOF reports whether the cursor is at the end of the text.
func (s *Stream) EOF() bool {
	return s.pos >= len(s.text)
}

// ReadString consumes lit when the text at the cursor starts with it.
func (s *Stream) ReadString(lit string) (ast.Span, error) {
	if !strings.HasPrefix(s.text[s.pos:], lit) {
		return ast.Span{}, diagnostic.At(s.pos, fmt.Errorf("%w: expected %q", diagnostic.ErrNoMatch, lit))
	}

	span := ast.Span{Start: s.pos, End: s.pos + len(lit)}
	s.pos = span.End

	return span, nil
}

// ReadPattern consumes the match of re anchored at the cursor. re must be
// anchored with ^, as the patterns built by Pattern are.
func (s *Stream) ReadPattern(re *regexp.Regexp) (ast.Span, error) {
	loc := re.FindStringIndex(s.text[s.pos:])
	if loc == nil {
		return ast.Span{}, diagnostic.At(s.pos, fmt.Errorf("%w: expected /%s/", diagnostic.ErrNoMatch, unanchor(re)))
	}

	span := ast.Span{Start: s.pos, End: s.pos + loc[1]}
	s.pos = span.End

	return span, nil
}

func unanchor(re *regexp.Regexp) string {
	expr := re.String()
	if strings.HasPrefix(expr, "^(?:") && strings.HasSuffix(expr, ")") {
		return expr[4 : len(expr)-1]
	}

	return expr
}
