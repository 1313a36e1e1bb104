package tokenizer

import (
	"errors"
	"fmt"

	"github.com/shibukawa/mel/ast"
)

// Sentinel errors
var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrInvalidNumber       = errors.New("invalid number format")
)

// TokenType represents the type of a token. Lexers built for other grammars
// may declare their own values after LAST_MEL_TOKEN.
type TokenType int

const (
	// Basic tokens
	EOF TokenType = iota
	SPACE
	COMMENT

	// Literals
	STRING          // 'text'
	TEMPLATE_STRING // "text"
	FLOAT           // 1.5, .5, 1e3
	INT             // 42, -1
	BOOLEAN         // true, false

	// Words
	NAME    // lower-case identifier
	CONCEPT // Capitalised identifier

	// Two character punctuation
	NOT_EQUAL      // !=
	DEFAULT_FORMAT // %:
	DEFAULT_DOC    // ?:
	RANGE_DOTS     // ..
	IN_SIGN        // ><
	GREATER_EQUAL  // >=
	NOT_IN         // <>
	LESS_EQUAL     // <=

	// Single character punctuation
	BANG           // !
	AT             // @
	DOLLAR         // $
	HASH           // #
	PERCENT        // %
	QUESTION       // ?
	SLASH          // /
	DOT            // .
	COLON          // :
	EQUAL          // =
	GREATER_THAN   // >
	LESS_THAN      // <
	STAR           // *
	OPENED_PARENS  // (
	CLOSED_PARENS  // )
	OPENED_BRACE   // {
	CLOSED_BRACE   // }
	OPENED_BRACKET // [
	CLOSED_BRACKET // ]

	LAST_MEL_TOKEN
)

// String returns the string representation of TokenType
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case SPACE:
		return "SPACE"
	case COMMENT:
		return "COMMENT"
	case STRING:
		return "STRING"
	case TEMPLATE_STRING:
		return "TEMPLATE_STRING"
	case FLOAT:
		return "FLOAT"
	case INT:
		return "INT"
	case BOOLEAN:
		return "BOOLEAN"
	case NAME:
		return "NAME"
	case CONCEPT:
		return "CONCEPT"
	case NOT_EQUAL:
		return "NOT_EQUAL"
	case DEFAULT_FORMAT:
		return "DEFAULT_FORMAT"
	case DEFAULT_DOC:
		return "DEFAULT_DOC"
	case RANGE_DOTS:
		return "RANGE_DOTS"
	case IN_SIGN:
		return "IN_SIGN"
	case GREATER_EQUAL:
		return "GREATER_EQUAL"
	case NOT_IN:
		return "NOT_IN"
	case LESS_EQUAL:
		return "LESS_EQUAL"
	case BANG:
		return "BANG"
	case AT:
		return "AT"
	case DOLLAR:
		return "DOLLAR"
	case HASH:
		return "HASH"
	case PERCENT:
		return "PERCENT"
	case QUESTION:
		return "QUESTION"
	case SLASH:
		return "SLASH"
	case DOT:
		return "DOT"
	case COLON:
		return "COLON"
	case EQUAL:
		return "EQUAL"
	case GREATER_THAN:
		return "GREATER_THAN"
	case LESS_THAN:
		return "LESS_THAN"
	case STAR:
		return "STAR"
	case OPENED_PARENS:
		return "OPENED_PARENS"
	case CLOSED_PARENS:
		return "CLOSED_PARENS"
	case OPENED_BRACE:
		return "OPENED_BRACE"
	case CLOSED_BRACE:
		return "CLOSED_BRACE"
	case OPENED_BRACKET:
		return "OPENED_BRACKET"
	case CLOSED_BRACKET:
		return "CLOSED_BRACKET"
	default:
		return fmt.Sprintf("TOKEN(%d)", int(t))
	}
}

// Token is an immutable lexical unit.
type Token struct {
	Type TokenType
	Text string
	Span ast.Span

	value any
}

// Value returns the literal value of the token: strings without their quotes,
// int64 for INT, float64 for FLOAT, bool for BOOLEAN. Tokens without a
// conversion return their text.
func (t Token) Value() any {
	if t.value == nil {
		return t.Text
	}

	return t.value
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Text
}
