package tokenizer

import (
	"fmt"
	"iter"
	"unicode/utf8"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// Lexer turns text into tokens using a priority ordered kind table.
// It holds no per-input state and is safe for concurrent use.
type Lexer struct {
	kinds []Kind
	skips []Kind
}

// NewLexer creates a lexer. Registration order breaks priority ties.
func NewLexer(kinds ...Kind) *Lexer {
	l := &Lexer{}

	for _, k := range kinds {
		if k.Skip {
			l.skips = append(l.skips, k)
		} else {
			l.kinds = append(l.kinds, k)
		}
	}

	return l
}

var melLexer = NewLexer(MelKinds()...)

// Mel returns the shared lexer of the mel language.
func Mel() *Lexer {
	return melLexer
}

// SkipAt applies the skip kinds at pos until none of them matches and
// returns the new position.
func (l *Lexer) SkipAt(text string, pos int) int {
	for progressed := true; progressed && pos < len(text); {
		progressed = false

		for _, k := range l.skips {
			if loc := k.Pattern.FindStringIndex(text[pos:]); loc != nil && loc[1] > 0 {
				pos += loc[1]
				progressed = true
			}
		}
	}

	return pos
}

// NextToken returns the token starting at pos after skipping.
// At end of text it returns an EOF token with an empty span.
func (l *Lexer) NextToken(text string, pos int) (Token, error) {
	pos = l.SkipAt(text, pos)

	if pos >= len(text) {
		return Token{Type: EOF, Span: ast.Span{Start: len(text), End: len(text)}}, nil
	}

	var (
		best   *Kind
		length int
	)

	for i := range l.kinds {
		k := &l.kinds[i]

		loc := k.Pattern.FindStringIndex(text[pos:])
		if loc == nil || loc[1] == 0 {
			continue
		}

		if best == nil || k.Priority > best.Priority {
			best = k
			length = loc[1]
		}
	}

	if best == nil {
		r, _ := utf8.DecodeRuneInString(text[pos:])
		return Token{}, diagnostic.At(pos, fmt.Errorf("%w: %w %q", diagnostic.ErrNoMatch, ErrUnexpectedCharacter, r))
	}

	token := Token{
		Type: best.Type,
		Text: text[pos : pos+length],
		Span: ast.Span{Start: pos, End: pos + length},
	}

	if best.Convert != nil {
		v, err := best.Convert(token.Text)
		if err != nil {
			return Token{}, diagnostic.At(pos, err)
		}

		token.value = v
	}

	return token, nil
}

// Tokens returns an iterator of the tokens of text, ending with EOF.
// Iteration stops after the first error.
func (l *Lexer) Tokens(text string) TokenIterator {
	return func(yield func(Token, error) bool) {
		pos := 0

		for {
			token, err := l.NextToken(text, pos)
			if err != nil {
				yield(Token{}, err)
				return
			}

			if !yield(token, nil) || token.Type == EOF {
				return
			}

			pos = token.Span.End
		}
	}
}

// AllTokens gets all tokens as a slice (for debugging)
func (l *Lexer) AllTokens(text string) ([]Token, error) {
	tokens := make([]Token, 0, 64)

	for token, err := range l.Tokens(text) {
		if err != nil {
			return tokens, err
		}

		tokens = append(tokens, token)
	}

	return tokens, nil
}
