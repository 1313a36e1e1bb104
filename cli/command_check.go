package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/shibukawa/mel"
)

// ErrCheckFailed is returned when at least one document does not parse.
var ErrCheckFailed = errors.New("some documents failed to parse")

// CheckCmd represents the check command
type CheckCmd struct {
	Files []string `arg:"" help:"mel documents to check"`
}

// Run executes the check command
func (cmd *CheckCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	failed := 0

	for _, file := range cmd.Files {
		text, err := readDocument(file)
		if err == nil {
			_, err = mel.Parse(text, config)
		}

		if err != nil {
			failed++

			color.New(color.FgRed).Fprintf(ctx.Stderr, "%s: FAIL\n", file)
			fmt.Fprintln(ctx.Stderr, mel.FormatError(err, config))

			continue
		}

		if !ctx.Quiet {
			color.New(color.FgGreen).Fprintf(ctx.Stdout, "%s: ok\n", file)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrCheckFailed, failed, len(cmd.Files))
	}

	return nil
}
