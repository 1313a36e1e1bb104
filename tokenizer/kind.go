package tokenizer

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind describes one token kind of a lexer: the pattern matched anchored at
// the cursor, its priority and whether it is skipped.
type Kind struct {
	Type     TokenType
	Pattern  *regexp.Regexp
	Priority int
	Skip     bool
	// Convert derives the token value from its text. nil keeps the text.
	Convert func(text string) (any, error)
}

// NewKind compiles pattern into a kind anchored at the cursor.
// It panics when pattern is not a valid regular expression.
func NewKind(t TokenType, pattern string, priority int) Kind {
	return Kind{
		Type:     t,
		Pattern:  regexp.MustCompile(`^(?:` + pattern + `)`),
		Priority: priority,
	}
}

// Literal creates a kind matching s verbatim.
func Literal(t TokenType, s string, priority int) Kind {
	return NewKind(t, regexp.QuoteMeta(s), priority)
}

// SkipKind creates a kind that is recognised and discarded.
func SkipKind(t TokenType, pattern string) Kind {
	k := NewKind(t, pattern, 0)
	k.Skip = true

	return k
}

// WithConvert returns a copy of k using fn to derive token values.
func (k Kind) WithConvert(fn func(text string) (any, error)) Kind {
	k.Convert = fn
	return k
}

func unquote(text string) (any, error) {
	return text[1 : len(text)-1], nil
}

func parseInt(text string) (any, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidNumber, text)
	}

	return v, nil
}

func parseFloat(text string) (any, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidNumber, text)
	}

	return v, nil
}

func parseBool(text string) (any, error) {
	return text == "true", nil
}

// MelKinds returns the token table of the mel language.
func MelKinds() []Kind {
	kinds := []Kind{
		SkipKind(SPACE, `[\s,;]+`),
		SkipKind(COMMENT, `--[^\n\r]*`),
		NewKind(STRING, `'[^']*'`, 0).WithConvert(unquote),
		NewKind(TEMPLATE_STRING, `"[^"]*"`, 0).WithConvert(unquote),
		NewKind(FLOAT, `-?\d*\.\d+([eE][-+]?\d+)?\b`, 2).WithConvert(parseFloat),
		NewKind(INT, `-?\d+\b`, 1).WithConvert(parseInt),
		NewKind(BOOLEAN, `(true|false)\b`, 2).WithConvert(parseBool),
		NewKind(NAME, `[_a-z][\w-]*`, 1),
		NewKind(CONCEPT, `[A-Z]\w*`, 1),
	}

	for _, p := range punctuation {
		priority := 0
		if len(p.text) == 2 {
			priority = 1
		}

		kinds = append(kinds, Literal(p.typ, p.text, priority))
	}

	return kinds
}

// punctuation lists the fixed tokens in declaration order.
var punctuation = []struct {
	typ  TokenType
	text string
}{
	{NOT_EQUAL, "!="}, {DEFAULT_FORMAT, "%:"}, {DEFAULT_DOC, "?:"}, {RANGE_DOTS, ".."},
	{IN_SIGN, "><"}, {GREATER_EQUAL, ">="}, {NOT_IN, "<>"}, {LESS_EQUAL, "<="},
	{BANG, "!"}, {AT, "@"}, {DOLLAR, "$"}, {HASH, "#"}, {PERCENT, "%"}, {QUESTION, "?"},
	{SLASH, "/"}, {DOT, "."}, {COLON, ":"}, {EQUAL, "="}, {GREATER_THAN, ">"}, {LESS_THAN, "<"},
	{STAR, "*"}, {OPENED_PARENS, "("}, {CLOSED_PARENS, ")"}, {OPENED_BRACE, "{"},
	{CLOSED_BRACE, "}"}, {OPENED_BRACKET, "["}, {CLOSED_BRACKET, "]"},
}

// Symbol returns the fixed text of a punctuation token type.
func Symbol(t TokenType) (string, bool) {
	for _, p := range punctuation {
		if p.typ == t {
			return p.text, true
		}
	}

	return "", false
}

// Describe returns a short human readable form of t for error messages.
func Describe(t TokenType) string {
	if s, ok := Symbol(t); ok {
		return "'" + s + "'"
	}

	return t.String()
}
