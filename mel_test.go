package mel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/testhelper"
)

func TestParse(t *testing.T) {
	tree, err := Parse("(page #draft 'hello')", nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, ast.OBJECT, tree.Child(0).Kind)
}

func TestParse_MaxDepth(t *testing.T) {
	config := DefaultConfig()
	config.Parser.MaxDepth = 2

	_, err := Parse("[[[1]]]", config)
	assert.IsError(t, err, diagnostic.ErrNestingTooDeep)
}

func TestEval(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "body.txt"), []byte("text"), 0o600)
	assert.NoError(t, err)

	config := DefaultConfig()
	config.Evaluation.BaseDir = dir

	value, err := Eval("(doc <'body.txt') doc", config)
	assert.NoError(t, err)
	assert.Equal[any](t, []any{
		&ast.Record{Kind: "OBJECT", Key: "doc", Children: []any{"text"}},
		"doc",
	}, value)
}

func TestEval_Errors(t *testing.T) {
	_, err := Eval("[1 2", nil)
	assert.IsError(t, err, diagnostic.ErrParsing)

	_, err = Eval("(a 1)\na/b", nil)
	assert.IsError(t, err, ErrEvaluation)
	assert.IsError(t, err, diagnostic.ErrUnknownReference)
	assert.Contains(t, err.Error(), "line 2, column 3")
}

func TestFormatError(t *testing.T) {
	source := testhelper.TrimIndent(t, `
		42
		%
		'string'`)

	_, err := Parse(source, nil)
	assert.Error(t, err)
	assert.Equal(t, "Error at line 2, column 1.\n\n1 | 42\n2 | %\n----^\n3 | 'string'", FormatError(err, nil))

	config := DefaultConfig()
	config.Output.ContextLines = 1

	_, err = Eval("(a 1)\n(b 2)\nb/c\n(d 4)\n(e 5)", config)
	assert.Error(t, err)

	expected := testhelper.TrimIndent(t, `
		Error at line 3, column 3.

		2 | (b 2)
		3 | b/c
		------^
		4 | (d 4)

		unknown reference: c (offset 14)`)
	assert.Equal(t, expected, FormatError(err, config))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.mel")
	err := os.WriteFile(path, []byte("1"), 0o600)
	assert.NoError(t, err)

	text, err := ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "1", text)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.mel"))
	assert.IsError(t, err, ErrReadInput)
}
