// Package cli implements the mel command line tool.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/shibukawa/mel"
	"github.com/shibukawa/mel/diagnostic"
)

var log = commonlog.GetLogger("mel.cli")

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// CLI represents the command-line interface
type CLI struct {
	Config  string     `help:"Configuration file path" default:"mel.yaml"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress output" short:"q"`
	Tokens  TokensCmd  `cmd:"" help:"Print the tokens of a mel document"`
	Parse   ParseCmd   `cmd:"" help:"Print the syntax tree of a mel document as YAML"`
	Eval    EvalCmd    `cmd:"" help:"Evaluate a mel document and print the value as YAML"`
	Check   CheckCmd   `cmd:"" help:"Check that mel documents parse"`
	Grammar GrammarCmd `cmd:"" help:"Print the grammar description language as EBNF"`
	Rules   RulesCmd   `cmd:"" help:"List the rules of a grammar description"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "mel v0.1.0")
	return nil
}

// Run parses args, runs the selected command and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	var cli CLI

	exitCode := -1

	parser, err := kong.New(&cli,
		kong.Name("mel"),
		kong.Description("Parse and evaluate mel documents."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.UsageOnError(),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx := &Context{
		Config:  cli.Config,
		Verbose: cli.Verbose,
		Quiet:   cli.Quiet,
		Stdout:  stdout,
		Stderr:  stderr,
	}

	configureLogging(ctx)

	if err := kctx.Run(ctx); err != nil {
		report(ctx, err)
		return 1
	}

	return 0
}

func configureLogging(ctx *Context) {
	verbosity := -1

	switch {
	case ctx.Quiet:
		verbosity = -4
	case ctx.Verbose:
		verbosity = 2
	}

	commonlog.Configure(verbosity, nil)
}

// documentError names the document a failure belongs to.
type documentError struct {
	Path string
	Err  error
}

func (e *documentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *documentError) Unwrap() error {
	return e.Err
}

// report prints err. Failures located in a document get a source snippet.
func report(ctx *Context, err error) {
	log.Debugf("command failed: %v", err)

	config, cerr := loadConfig(ctx)
	if cerr != nil {
		config = mel.DefaultConfig()
	}

	red := color.New(color.FgRed, color.Bold)

	var (
		derr  *documentError
		perr  *diagnostic.ParsingError
		eerr  *mel.EvaluationError
		cause error
	)

	switch {
	case !errors.As(err, &derr):
	case errors.As(err, &perr):
		cause = perr.Cause
	case errors.As(err, &eerr):
		cause = eerr.Cause
	}

	if cause == nil {
		red.Fprintf(ctx.Stderr, "Error: %v\n", err)
		return
	}

	red.Fprintf(ctx.Stderr, "%s: %v\n", derr.Path, cause)

	formatter := config.Formatter()
	if perr != nil {
		fmt.Fprintln(ctx.Stderr, formatter.Format(perr))
	} else {
		fmt.Fprintln(ctx.Stderr, formatter.FormatAt(eerr.Text, eerr.Offset))
	}
}
