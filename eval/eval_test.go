package eval

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/parser"
)

func evaluate(t *testing.T, input string, options ...Options) (any, error) {
	t.Helper()

	tree, err := parser.Parse(input)
	require.NoError(t, err)

	return New(options...).Eval(tree)
}

func TestEvalValues(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{name: "int", input: "42", expected: int64(42)},
		{name: "several values", input: "1 2", expected: []any{int64(1), int64(2)}},
		{name: "list", input: "[1 2.5 true 'x' \"y\"]", expected: []any{int64(1), 2.5, true, "x", "y"}},
		{name: "empty list", input: "[]", expected: []any{}},
		{name: "plain name", input: "width", expected: "width"},
		{name: "tag", input: "#draft", expected: Keyword{Kind: "TAG_KEYWORD", Name: "draft"}},
		{name: "wildcard", input: "*", expected: "*"},
		{name: "chain of values", input: "1/'a'", expected: []any{int64(1), "a"}},
		{name: "chained wildcard", input: "*/1", expected: []any{"*", int64(1)}},
		{name: "chained float", input: "1.5/2", expected: []any{1.5, int64(2)}},
		{name: "name inside value chain", input: "a/1/*", expected: []any{"a", int64(1), "*"}},
		{
			name:  "chained key",
			input: "(a/b 1)",
			expected: &ast.Record{
				Kind:     "OBJECT",
				Key:      []any{"a", "b"},
				Children: []any{int64(1)},
			},
		},
		{
			name:  "object",
			input: "(person 'Ann' 42)",
			expected: &ast.Record{
				Kind:     "OBJECT",
				Key:      "person",
				Children: []any{"Ann", int64(42)},
			},
		},
		{
			name:  "anonymous key",
			input: "(: 1)",
			expected: &ast.Record{
				Kind:     "OBJECT",
				Key:      ":",
				Children: []any{int64(1)},
			},
		},
		{
			name:  "query",
			input: "{Person age >= 18 *}",
			expected: &ast.Record{
				Kind: "QUERY",
				Key:  Keyword{Kind: "CONCEPT_KEYWORD", Name: "Person"},
				Children: []any{
					Relation{Path: "age", Sign: ">=", Value: int64(18)},
					"*",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := evaluate(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestEvalRange(t *testing.T) {
	actual, err := evaluate(t, "2..")
	require.NoError(t, err)

	r, ok := actual.(ast.Range)
	require.True(t, ok)
	require.NotNil(t, r.Start)
	assert.Equal(t, int64(2), *r.Start)
	assert.Nil(t, r.End)
}

func TestEvalNestedReferences(t *testing.T) {
	actual, err := evaluate(t, "(site (title 'x') (body 'y'))")
	require.NoError(t, err)

	record, ok := actual.(*ast.Record)
	require.True(t, ok)
	require.Len(t, record.References, 2)
	assert.Equal(t, record.Children[0], record.References["title"])
	assert.Equal(t, record.Children[1], record.References["body"])
}

func TestReferences(t *testing.T) {
	t.Run("resolves through aliases", func(t *testing.T) {
		actual, err := evaluate(t, "(config (db 'pg')) config/db")
		require.NoError(t, err)

		values, ok := actual.([]any)
		require.True(t, ok)
		require.Len(t, values, 2)
		assert.Equal(t, &ast.Record{Kind: "OBJECT", Key: "db", Children: []any{"pg"}}, values[1])
	})

	t.Run("unknown alias", func(t *testing.T) {
		_, err := evaluate(t, "(a 1) a/b")
		require.Error(t, err)
		assert.ErrorIs(t, err, diagnostic.ErrUnknownReference)
		assert.NotErrorIs(t, err, diagnostic.ErrParsing)

		offset, ok := diagnostic.OffsetOf(err)
		require.True(t, ok)
		assert.Equal(t, 8, offset)
	})

	t.Run("unknown root", func(t *testing.T) {
		_, err := evaluate(t, "x/y")
		assert.ErrorIs(t, err, diagnostic.ErrUnknownReference)
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := evaluate(t, "(a (b a/b))")
		assert.ErrorIs(t, err, ErrCyclicReference)
	})
}

func TestEvalFile(t *testing.T) {
	read := func(path string) ([]byte, error) {
		if path == filepath.Join("/data", "a.txt") {
			return []byte("content"), nil
		}

		return nil, fs.ErrNotExist
	}

	actual, err := evaluate(t, "<'a.txt'", Options{BaseDir: "/data", ReadFile: read})
	require.NoError(t, err)
	assert.Equal(t, "content", actual)

	_, err = evaluate(t, "[1 <'missing.txt']", Options{BaseDir: "/data", ReadFile: read})
	require.Error(t, err)
	assert.ErrorIs(t, err, diagnostic.ErrFile)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	offset, ok := diagnostic.OffsetOf(err)
	require.True(t, ok)
	assert.Equal(t, 3, offset)
}

func TestEvalFileFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("hello"), 0o600))

	actual, err := evaluate(t, "<'note.txt'", Options{BaseDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "hello", actual)
}

func TestEvalEnv(t *testing.T) {
	env := MapEnvironment{"HOME": "/home/mel"}

	actual, err := evaluate(t, "[$'HOME' $'MISSING']", Options{Environment: env})
	require.NoError(t, err)
	assert.Equal(t, []any{"/home/mel", ""}, actual)
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("MEL_TEST_FROM_FILE=file\nMEL_TEST_OVERRIDDEN=file\n"), 0o600))

	t.Setenv("MEL_TEST_OVERRIDDEN", "process")

	env, err := NewEnvironment(file)
	require.NoError(t, err)

	assert.Equal(t, "file", ReadEnvironment(env, "MEL_TEST_FROM_FILE", "none"))
	assert.Equal(t, "process", ReadEnvironment(env, "MEL_TEST_OVERRIDDEN", "none"))
	assert.Equal(t, "none", ReadEnvironment(env, "MEL_TEST_UNSET", "none"))

	_, err = NewEnvironment(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestEvalDecimal(t *testing.T) {
	actual, err := evaluate(t, "[3.10 2]", Options{Decimal: true})
	require.NoError(t, err)

	values, ok := actual.([]any)
	require.True(t, ok)

	d, ok := values[0].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("3.1")))
	assert.Equal(t, int64(2), values[1])

	actual, err = evaluate(t, "1.5/2", Options{Decimal: true})
	require.NoError(t, err)

	values, ok = actual.([]any)
	require.True(t, ok)
	require.Len(t, values, 2)

	d, ok = values[0].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, int64(2), values[1])
}

func TestRegister(t *testing.T) {
	tree, err := parser.Parse("[1 2]")
	require.NoError(t, err)

	e := New()
	e.Register(ast.INT, func(_ *Evaluator, n *ast.Node) (any, error) {
		v, _ := n.Value.(int64)
		return v * 10, nil
	})

	actual, err := e.Eval(tree)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(10), int64(20)}, actual)
}

func TestVar(t *testing.T) {
	tree, err := parser.Parse("1")
	require.NoError(t, err)

	e := New()

	var seen any

	e.Register(ast.INT, func(e *Evaluator, _ *ast.Node) (any, error) {
		v, ok := e.Var("tree")
		if !ok {
			return nil, errors.New("no tree")
		}

		seen = v

		return nil, nil
	})

	_, err = e.Eval(tree)
	require.NoError(t, err)
	assert.Same(t, tree, seen)

	_, ok := e.Var("tree")
	assert.False(t, ok)
}
