// Package diagnostic holds the parse error model: the sentinel error taxonomy,
// offset to line/column resolution and the snippet formatter.
package diagnostic

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the tokenizer, the grammar engine, the mel parser
// and the evaluation layer.
var (
	// ErrNoMatch is returned when a terminal or pattern does not match at the cursor.
	ErrNoMatch = errors.New("no match")
	// ErrUnexpectedToken is returned when a required token kind is not the next token.
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrParsing is the terminal, user facing parse failure.
	ErrParsing = errors.New("parsing error")
	// ErrNestingTooDeep is returned when input nesting exceeds the configured depth.
	ErrNestingTooDeep = errors.New("nesting too deep")
	// ErrSubNode is returned when a subnode separator is not followed by a node.
	ErrSubNode = errors.New("expected node after subnode separator")
	// ErrUnknownRule is returned when a grammar reference names no registered rule.
	ErrUnknownRule = errors.New("unknown rule")

	// ErrUnknownReference is returned by the evaluation layer for an unknown alias.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrFile is returned by the evaluation layer when a referenced file cannot be read.
	ErrFile = errors.New("file error")
)

// OffsetError attaches a byte offset of the source text to an error.
type OffsetError struct {
	Offset int
	Err    error
}

// At wraps err with the source offset where it happened.
func At(offset int, err error) error {
	return &OffsetError{Offset: offset, Err: err}
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("%v (offset %d)", e.Err, e.Offset)
}

func (e *OffsetError) Unwrap() error {
	return e.Err
}

// OffsetOf returns the innermost offset attached to err.
func OffsetOf(err error) (int, bool) {
	var oe *OffsetError
	if !errors.As(err, &oe) {
		return 0, false
	}

	offset := oe.Offset
	for errors.As(oe.Err, &oe) {
		offset = oe.Offset
	}

	return offset, true
}

// IsFatal reports whether err must stop parsing instead of driving backtracking.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSubNode) || errors.Is(err, ErrNestingTooDeep) || errors.Is(err, ErrUnknownRule)
}
