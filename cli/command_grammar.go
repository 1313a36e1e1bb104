package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/shibukawa/mel/grammar"
)

// GrammarCmd represents the grammar command
type GrammarCmd struct {
	Verify bool `help:"Check that every rule is defined and reachable"`
}

// Run executes the grammar command
func (cmd *GrammarCmd) Run(ctx *Context) error {
	g := grammar.Meta()

	fmt.Fprint(ctx.Stdout, g.EBNF())

	if !cmd.Verify {
		return nil
	}

	if err := g.Verify(); err != nil {
		return fmt.Errorf("grammar verification failed: %w", err)
	}

	if !ctx.Quiet {
		color.New(color.FgGreen).Fprintln(ctx.Stderr, "grammar is consistent")
	}

	return nil
}

// RulesCmd represents the rules command
type RulesCmd struct {
	File string `arg:"" help:"grammar description (- for stdin)" default:"-"`
}

// Run executes the rules command
func (cmd *RulesCmd) Run(ctx *Context) error {
	text, err := readDocument(cmd.File)
	if err != nil {
		return err
	}

	productions, err := grammar.Productions(text)
	if err != nil {
		return &documentError{Path: cmd.File, Err: err}
	}

	for _, p := range productions {
		fmt.Fprintf(ctx.Stdout, "%s = %s\n", p.Name, p.Definition)
	}

	return nil
}
