// Package mel parses and evaluates documents written in the mel language.
//
// The heavy lifting lives in the subpackages: tokenizer and parser build an
// ast tree, eval turns it into values, and diagnostic renders failures as a
// source snippet. This package ties them to a Config.
package mel

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/eval"
	"github.com/shibukawa/mel/parser"
)

var log = commonlog.GetLogger("mel")

// Parse parses text. A nil config means DefaultConfig.
func Parse(text string, config *Config) (*ast.Node, error) {
	if config == nil {
		config = DefaultConfig()
	}

	return parser.Parse(text, config.ParserOptions())
}

// Eval parses and evaluates text. Evaluation failures are returned as
// *EvaluationError.
func Eval(text string, config *Config) (any, error) {
	if config == nil {
		config = DefaultConfig()
	}

	tree, err := Parse(text, config)
	if err != nil {
		return nil, err
	}

	options, err := config.EvalOptions()
	if err != nil {
		return nil, err
	}

	value, err := eval.New(options).Eval(tree)
	if err != nil {
		log.Debugf("evaluation failed: %v", err)

		offset, _ := diagnostic.OffsetOf(err)

		return nil, &EvaluationError{Text: text, Offset: offset, Cause: err}
	}

	return value, nil
}

// ReadFile reads a document from path, or from stdin when path is "-".
func ReadFile(path string) (string, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrReadInput, path, err)
	}

	return string(data), nil
}

// FormatError renders err as a header and source snippet when it carries a
// location, and as its message otherwise. A nil config means DefaultConfig.
func FormatError(err error, config *Config) string {
	if config == nil {
		config = DefaultConfig()
	}

	formatter := config.Formatter()

	var perr *diagnostic.ParsingError
	if errors.As(err, &perr) {
		return formatter.Format(perr)
	}

	var eerr *EvaluationError
	if errors.As(err, &eerr) {
		return formatter.FormatAt(eerr.Text, eerr.Offset) + "\n\n" + eerr.Cause.Error()
	}

	return err.Error()
}
