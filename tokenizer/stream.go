package tokenizer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shibukawa/mel/diagnostic"
)

// Checkpoint is an opaque stream position returned by Save.
type Checkpoint struct {
	pos  int
	last Token
}

type lexed struct {
	token Token
	err   error
}

// Stream is a cursor over the tokens of a text. Tokens are produced lazily
// and memoised per offset, so restoring a checkpoint never re-lexes.
type Stream struct {
	lexer *Lexer
	text  string
	pos   int
	last  Token
	memo  map[int]lexed
}

// NewStream creates a stream over text.
func NewStream(lexer *Lexer, text string) *Stream {
	return &Stream{
		lexer: lexer,
		text:  text,
		memo:  make(map[int]lexed),
	}
}

func (s *Stream) at(pos int) (Token, error) {
	if m, ok := s.memo[pos]; ok {
		return m.token, m.err
	}

	token, err := s.lexer.NextToken(s.text, pos)
	s.memo[pos] = lexed{token: token, err: err}

	return token, err
}

// Peek returns the token offset positions ahead of the cursor without
// consuming anything. Peeking past the end keeps returning EOF.
func (s *Stream) Peek(offset int) (Token, error) {
	pos := s.pos

	for i := 0; ; i++ {
		token, err := s.at(pos)
		if err != nil || i == offset || token.Type == EOF {
			return token, err
		}

		pos = token.Span.End
	}
}

// Read consumes the next token. When expected is not empty the token must be
// one of those types, otherwise the cursor does not move and
// diagnostic.ErrUnexpectedToken is returned.
func (s *Stream) Read(expected ...TokenType) (Token, error) {
	token, err := s.at(s.pos)
	if err != nil {
		return Token{}, err
	}

	if len(expected) > 0 && !slices.Contains(expected, token.Type) {
		names := make([]string, len(expected))
		for i, t := range expected {
			names[i] = Describe(t)
		}

		return Token{}, diagnostic.At(token.Span.Start, fmt.Errorf("%w: expected %s, got %s",
			diagnostic.ErrUnexpectedToken, strings.Join(names, " or "), Describe(token.Type)))
	}

	s.pos = token.Span.End
	s.last = token

	return token, nil
}

// IsNext reports whether the next token is one of types.
func (s *Stream) IsNext(types ...TokenType) bool {
	token, err := s.at(s.pos)
	return err == nil && slices.Contains(types, token.Type)
}

// IsEOF reports whether only skippable text remains.
func (s *Stream) IsEOF() bool {
	return s.IsNext(EOF)
}

// Save returns the current position.
func (s *Stream) Save() Checkpoint {
	return Checkpoint{pos: s.pos, last: s.last}
}

// Restore moves the cursor back to cp.
func (s *Stream) Restore(cp Checkpoint) {
	s.pos = cp.pos
	s.last = cp.last
}

// Last returns the most recently consumed token.
func (s *Stream) Last() Token {
	return s.last
}

// Pos returns the byte offset of the cursor.
func (s *Stream) Pos() int {
	return s.pos
}

// Text returns the whole source text.
func (s *Stream) Text() string {
	return s.text
}
