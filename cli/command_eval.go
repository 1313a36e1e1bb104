package cli

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/shibukawa/mel"
)

// EvalCmd represents the eval command
type EvalCmd struct {
	File    string `arg:"" help:"mel document (- for stdin)" default:"-"`
	Decimal bool   `help:"Evaluate floats as exact decimals"`
	BaseDir string `help:"Directory that file references are resolved against" type:"path"`
}

// Run executes the eval command
func (cmd *EvalCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	if cmd.Decimal {
		config.Evaluation.Decimal = true
	}

	if cmd.BaseDir != "" {
		config.Evaluation.BaseDir = cmd.BaseDir
	}

	text, err := readDocument(cmd.File)
	if err != nil {
		return err
	}

	value, err := mel.Eval(text, config)
	if err != nil {
		return &documentError{Path: cmd.File, Err: err}
	}

	out, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	_, err = ctx.Stdout.Write(out)

	return err
}
