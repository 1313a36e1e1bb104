package diagnostic

import "fmt"

// ParsingError is the only error the parsing core reports to its callers.
// It carries the source text and the offset where parsing could not continue.
type ParsingError struct {
	Text   string
	Offset int
	Cause  error
}

// NewParsingError creates a ParsingError. cause may be nil.
func NewParsingError(text string, offset int, cause error) *ParsingError {
	return &ParsingError{Text: text, Offset: offset, Cause: cause}
}

// Position resolves the failing offset against the source text.
func (e *ParsingError) Position() Position {
	return Resolve(e.Text, e.Offset)
}

func (e *ParsingError) Error() string {
	pos := e.Position()
	if e.Cause != nil {
		return fmt.Sprintf("%v at line %d, column %d: %v", ErrParsing, pos.Line+1, pos.Column+1, e.Cause)
	}

	return fmt.Sprintf("%v at line %d, column %d", ErrParsing, pos.Line+1, pos.Column+1)
}

func (e *ParsingError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrParsing}
	}

	return []error{ErrParsing, e.Cause}
}
