package mel

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/eval"
	"github.com/shibukawa/mel/parser"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Config represents the mel tool configuration
type Config struct {
	Parser     ParserConfig     `yaml:"parser"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Output     OutputConfig     `yaml:"output"`
}

// ParserConfig represents parser settings
type ParserConfig struct {
	// Maximum nesting of values. 0 means parser.DefaultMaxDepth
	MaxDepth int `yaml:"max_depth"`
}

// EvaluationConfig represents evaluation settings
type EvaluationConfig struct {
	// Evaluate floats as exact decimals
	Decimal bool `yaml:"decimal"`
	// Directory that relative file references are resolved against
	BaseDir string `yaml:"base_dir"`
	// .env files visible to environment references, in addition to the process environment
	EnvFiles []string `yaml:"env_files"`
}

// OutputConfig represents error and result output settings
type OutputConfig struct {
	// Source lines shown around the failing line. 0 shows the failing line only
	ContextLines int `yaml:"context_lines"`
	// auto, always or never
	Color string `yaml:"color"`
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := DefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields. Fields missing
	// from the file keep their default values.
	config := DefaultConfig()

	err = yaml.UnmarshalWithOptions(data, config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(config)
	expandConfigEnvVars(config)

	return config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if config.Parser.MaxDepth < 0 {
		return fmt.Errorf("%w: parser.max_depth must be non-negative, got %d", ErrConfigValidation, config.Parser.MaxDepth)
	}

	if config.Output.ContextLines < 0 {
		return fmt.Errorf("%w: output.context_lines must be non-negative, got %d", ErrConfigValidation, config.Output.ContextLines)
	}

	if config.Output.Color != "" {
		validColors := map[string]bool{
			ColorAuto:   true,
			ColorAlways: true,
			ColorNever:  true,
		}
		if !validColors[config.Output.Color] {
			return fmt.Errorf("%w: output.color '%s' is invalid: must be one of auto, always, never", ErrConfigValidation, config.Output.Color)
		}
	}

	for i, file := range config.Evaluation.EnvFiles {
		if file == "" {
			return fmt.Errorf("%w: evaluation.env_files[%d]: path is required", ErrConfigValidation, i)
		}
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			MaxDepth: parser.DefaultMaxDepth,
		},
		Evaluation: EvaluationConfig{
			BaseDir:  ".",
			EnvFiles: []string{},
		},
		Output: OutputConfig{
			ContextLines: diagnostic.DefaultContextLines,
			Color:        ColorAuto,
		},
	}
}

// applyDefaults applies default values to missing configuration fields.
// output.context_lines is not touched since 0 is a valid setting.
func applyDefaults(config *Config) {
	if config.Parser.MaxDepth == 0 {
		config.Parser.MaxDepth = parser.DefaultMaxDepth
	}

	if config.Evaluation.BaseDir == "" {
		config.Evaluation.BaseDir = "."
	}

	if config.Evaluation.EnvFiles == nil {
		config.Evaluation.EnvFiles = []string{}
	}

	if config.Output.Color == "" {
		config.Output.Color = ColorAuto
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in path settings
func expandConfigEnvVars(config *Config) {
	config.Evaluation.BaseDir = expandEnvVars(config.Evaluation.BaseDir)

	for i, file := range config.Evaluation.EnvFiles {
		config.Evaluation.EnvFiles[i] = expandEnvVars(file)
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ParserOptions returns the parser options described by the configuration
func (c *Config) ParserOptions() parser.Options {
	return parser.Options{MaxDepth: c.Parser.MaxDepth}
}

// EvalOptions returns the evaluation options described by the configuration.
// Env files that do not exist are ignored.
func (c *Config) EvalOptions() (eval.Options, error) {
	var files []string

	for _, file := range c.Evaluation.EnvFiles {
		if fileExists(file) {
			files = append(files, file)
		}
	}

	env, err := eval.NewEnvironment(files...)
	if err != nil {
		return eval.Options{}, err
	}

	return eval.Options{
		Decimal:     c.Evaluation.Decimal,
		BaseDir:     c.Evaluation.BaseDir,
		Environment: env,
	}, nil
}

// Formatter returns the error formatter described by the configuration
func (c *Config) Formatter() diagnostic.Formatter {
	return diagnostic.NewFormatter(c.Output.ContextLines)
}
