package mel

import (
	"errors"
	"fmt"

	"github.com/shibukawa/mel/diagnostic"
)

// Common errors used throughout the mel package
var (
	// ErrEvaluation is the user facing failure of evaluating a parsed document.
	ErrEvaluation = errors.New("evaluation error")
	// ErrReadInput is returned when a document cannot be read.
	ErrReadInput = errors.New("failed to read input")
)

// EvaluationError locates an evaluation failure in the document text.
type EvaluationError struct {
	Text   string
	Offset int
	Cause  error
}

// Position resolves the failing offset against the document text.
func (e *EvaluationError) Position() diagnostic.Position {
	return diagnostic.Resolve(e.Text, e.Offset)
}

func (e *EvaluationError) Error() string {
	pos := e.Position()
	return fmt.Sprintf("%v at line %d, column %d: %v", ErrEvaluation, pos.Line+1, pos.Column+1, e.Cause)
}

func (e *EvaluationError) Unwrap() []error {
	return []error{ErrEvaluation, e.Cause}
}
