package mel

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/goccy/go-yaml"

	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/parser"
)

func TestLoadConfig_DefaultValues(t *testing.T) {
	// Test loading config with non-existent file (should return defaults)
	config, err := LoadConfig("non-existent-file.yaml")
	assert.NoError(t, err)
	assert.True(t, config != nil)

	assert.Equal(t, parser.DefaultMaxDepth, config.Parser.MaxDepth)
	assert.Equal(t, diagnostic.DefaultContextLines, config.Output.ContextLines)
	assert.Equal(t, ColorAuto, config.Output.Color)
	assert.Equal(t, ".", config.Evaluation.BaseDir)
	assert.False(t, config.Evaluation.Decimal)
}

func TestConfig_YAMLParsing(t *testing.T) {
	yamlContent := `
parser:
  max_depth: 50
evaluation:
  decimal: true
  env_files:
    - ".env.local"
output:
  context_lines: 2
  color: never
`

	var config Config
	err := yaml.Unmarshal([]byte(yamlContent), &config)
	assert.NoError(t, err)

	assert.Equal(t, 50, config.Parser.MaxDepth)
	assert.True(t, config.Evaluation.Decimal)
	assert.Equal(t, []string{".env.local"}, config.Evaluation.EnvFiles)
	assert.Equal(t, 2, config.Output.ContextLines)
	assert.Equal(t, ColorNever, config.Output.Color)
}

func TestConfig_ApplyDefaults(t *testing.T) {
	config := &Config{Evaluation: EvaluationConfig{Decimal: true}}
	applyDefaults(config)

	assert.Equal(t, parser.DefaultMaxDepth, config.Parser.MaxDepth)
	assert.Equal(t, 0, config.Output.ContextLines)
	assert.Equal(t, ColorAuto, config.Output.Color)
	assert.Equal(t, []string{}, config.Evaluation.EnvFiles)
	assert.True(t, config.Evaluation.Decimal)
}

func TestConfig_ParserOptions(t *testing.T) {
	config := DefaultConfig()
	config.Parser.MaxDepth = 3

	assert.Equal(t, parser.Options{MaxDepth: 3}, config.ParserOptions())
}

func TestConfig_EvalOptions(t *testing.T) {
	config := DefaultConfig()
	config.Evaluation.Decimal = true
	config.Evaluation.BaseDir = "/data"
	config.Evaluation.EnvFiles = []string{"does-not-exist.env"}

	options, err := config.EvalOptions()
	assert.NoError(t, err)
	assert.True(t, options.Decimal)
	assert.Equal(t, "/data", options.BaseDir)
	assert.NotZero(t, options.Environment)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MEL_TEST_DIR", "/srv/mel")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"braced", "${MEL_TEST_DIR}/docs", "/srv/mel/docs"},
		{"plain", "$MEL_TEST_DIR/docs", "/srv/mel/docs"},
		{"unset", "${MEL_TEST_UNSET}x", "x"},
		{"no variables", "./docs", "./docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}
