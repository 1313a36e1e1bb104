package cli

import (
	"fmt"

	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/tokenizer"
)

// TokensCmd represents the tokens command
type TokensCmd struct {
	File string `arg:"" help:"mel document (- for stdin)" default:"-"`
}

// Run executes the tokens command
func (cmd *TokensCmd) Run(ctx *Context) error {
	text, err := readDocument(cmd.File)
	if err != nil {
		return err
	}

	for token, err := range tokenizer.Mel().Tokens(text) {
		if err != nil {
			offset, _ := diagnostic.OffsetOf(err)
			return &documentError{Path: cmd.File, Err: diagnostic.NewParsingError(text, offset, err)}
		}

		pos := diagnostic.Resolve(text, token.Span.Start)
		fmt.Fprintf(ctx.Stdout, "%d:%d\t%s\n", pos.Line+1, pos.Column+1, token)
	}

	return nil
}
