package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/shibukawa/mel"
)

// loadConfig loads the configuration named by the context and applies its
// color mode.
func loadConfig(ctx *Context) (*mel.Config, error) {
	config, err := mel.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	switch config.Output.Color {
	case mel.ColorAlways:
		color.NoColor = false
	case mel.ColorNever:
		color.NoColor = true
	}

	return config, nil
}

// readDocument reads the document at path ("-" is stdin).
func readDocument(path string) (string, error) {
	text, err := mel.ReadFile(path)
	if err != nil {
		return "", err
	}

	log.Debugf("read %s (%d bytes)", path, len(text))

	return text, nil
}
