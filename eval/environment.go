package eval

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment resolves environment variables for ENV nodes.
type Environment interface {
	Lookup(name string) (string, bool)
}

// DotEnv layers values read from .env files under the process environment.
// Variables set in the process always win.
type DotEnv struct {
	values map[string]string
}

// NewEnvironment reads files with godotenv. Without files only the process
// environment is visible.
func NewEnvironment(files ...string) (*DotEnv, error) {
	env := &DotEnv{values: map[string]string{}}

	if len(files) == 0 {
		return env, nil
	}

	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to read env files: %w", err)
	}

	env.values = values

	return env, nil
}

// Lookup implements Environment.
func (e *DotEnv) Lookup(name string) (string, bool) {
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}

	v, ok := e.values[name]

	return v, ok
}

// MapEnvironment is a fixed set of variables.
type MapEnvironment map[string]string

// Lookup implements Environment.
func (m MapEnvironment) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// ReadEnvironment returns the value of name, or fallback when it is unset.
func ReadEnvironment(env Environment, name, fallback string) string {
	if v, ok := env.Lookup(name); ok {
		return v
	}

	return fallback
}
