package grammar

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/tliron/commonlog"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
)

func parsingError(t *testing.T, err error) *diagnostic.ParsingError {
	t.Helper()

	var perr *diagnostic.ParsingError
	assert.True(t, errors.As(err, &perr), "expected a ParsingError, got %v", err)

	return perr
}

func TestStringRepetition(t *testing.T) {
	g := New()
	g.SetStart("root", ZeroMany(Str("a")))
	g.Skip("space", Pattern(`[ \t]+`))

	root, err := g.Parse("  \ta a ")
	assert.NoError(t, err)
	assert.Equal(t, ast.ROOT, root.Kind)
	assert.Equal(t, ast.Span{Start: 0, End: 7}, root.Span)

	rule := root.Child(0)
	assert.Equal(t, ast.RULE, rule.Kind)
	assert.Equal(t, "root", rule.Name)
	assert.Equal(t, ast.ZERO_MANY, rule.Child(0).Kind)
	assert.Equal(t, 2, rule.Child(0).Len())
	assert.Equal(t, "a a", rule.Text())
}

func TestSkipWithSeveralRules(t *testing.T) {
	g := New()
	g.SetStart("root", ZeroMany(Str("a")))
	g.Skip("space", Pattern(`[ \t]+`), Str(";"))

	root, err := g.Parse("  \t;a  ;a    ;")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(root.FindAll(ast.STRING, "")))
}

func TestOpt(t *testing.T) {
	g := New()
	g.SetStart("root", Opt(Str("a"), Pattern(`[a-z]`)))

	tests := []struct {
		input    string
		children int
	}{
		{input: "ag", children: 2},
		{input: "aa", children: 2},
		{input: "", children: 0},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			root, err := g.Parse(test.input)
			assert.NoError(t, err)

			opt := root.Child(0).Child(0)
			assert.Equal(t, ast.OPTIONAL, opt.Kind)
			assert.Equal(t, test.children, opt.Len())
		})
	}
}

func TestCompleteGrammar(t *testing.T) {
	g := New()
	g.SetStart("root", ZeroMany(Ref("rule")))
	g.Set("rule", Ref("name"), Str("="), Ref("alternative"))
	g.Set("alternative", Ref("sequence"), ZeroMany(Str("|"), Ref("sequence")))
	g.Set("sequence", OneMany(Ref("name")))
	g.Set("name", Pattern(`[a-z]+`))
	g.Skip("space", Pattern(`[ \t]+`))
	g.Skip("comment", Pattern(`--[^\n\r]*`))

	root, err := g.Parse("person = john -- who")
	assert.NoError(t, err)

	rules := root.FindAll(ast.RULE, "rule")
	assert.Equal(t, 1, len(rules))

	var named []string
	for _, child := range rules[0].Children {
		if child.Kind == ast.RULE {
			named = append(named, child.Name)
		}
	}

	assert.Equal(t, []string{"name", "alternative"}, named)
	assert.Equal(t, "person", rules[0].Child(0).Text())
	assert.Equal(t, "john", rules[0].Child(2).Text())
}

func TestRollbackOnFailure(t *testing.T) {
	g := New()
	g.Set("pair", Str("a"), Str("b"))
	g.Skip("space", Pattern(`\s+`))

	tests := []struct {
		name  string
		rule  Rule
		input string
	}{
		{name: "str after skip", rule: Str("b"), input: "  a"},
		{name: "pattern", rule: Pattern(`\d+`), input: " x"},
		{name: "seq", rule: Seq(Str("a"), Str("b")), input: "a c"},
		{name: "one of", rule: OneOf(Seq(Str("a"), Str("x")), Str("b")), input: "a c"},
		{name: "one many", rule: OneMany(Str("x")), input: " y"},
		{name: "ref", rule: Ref("pair"), input: "a a"},
		{name: "not", rule: Not(Str("a")), input: " a"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := &Context{grammar: g, stream: NewStream(test.input)}

			_, err := test.rule.Parse(ctx)
			assert.Error(t, err)
			assert.Equal(t, 0, ctx.Stream().Pos())
		})
	}
}

func TestRepetitionRollsBackFailingIteration(t *testing.T) {
	g := New()
	ctx := &Context{grammar: g, stream: NewStream("abac")}

	node, err := ZeroMany(Str("a"), Str("b")).Parse(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, ctx.Stream().Pos())
	assert.Equal(t, 2, node.Len())
}

func TestRepetitionStopsWithoutProgress(t *testing.T) {
	g := New()
	ctx := &Context{grammar: g, stream: NewStream("bbb")}

	node, err := ZeroMany(Opt(Str("a"))).Parse(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, ctx.Stream().Pos())
	assert.Equal(t, 1, node.Len())
}

func TestReparseIsIdempotent(t *testing.T) {
	g := Meta()
	text := "list = '[' { item } ']'\nitem = 'x' | list"

	first, err := g.Parse(text)
	assert.NoError(t, err)

	second, err := g.Parse(text)
	assert.NoError(t, err)

	assert.True(t, ast.Equal(first, second))
	assert.Equal(t, first.String(), second.String())
}

func TestSpansEncloseChildren(t *testing.T) {
	root, err := Meta().Parse("a = b { c | 'd' } [ e ]\n-- done\nb = a")
	assert.NoError(t, err)

	root.Walk(func(n *ast.Node) bool {
		assert.Equal(t, n.Source[n.Span.Start:n.Span.End], n.Text())

		for _, child := range n.Children {
			assert.True(t, n.Span.Contains(child.Span), "%s does not enclose %s", n.Kind, child.Kind)
		}

		return true
	})
}

func TestOrderedChoice(t *testing.T) {
	t.Run("first alternative wins", func(t *testing.T) {
		g := New()
		g.Set("root", OneOf(Str("a"), Str("ab")))

		_, err := g.Parse("ab")
		perr := parsingError(t, err)
		assert.Equal(t, 1, perr.Offset)
	})

	t.Run("longer alternative first", func(t *testing.T) {
		g := New()
		g.Set("root", OneOf(Str("ab"), Str("a")))

		root, err := g.Parse("ab")
		assert.NoError(t, err)
		assert.Equal(t, "ab", root.Child(0).Child(0).Text())
		assert.Equal(t, ast.ONE_OF, root.Child(0).Child(0).Kind)
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(g *Grammar)
		input          string
		expectedOffset int
		expected       error
	}{
		{
			name: "unconsumed input",
			setup: func(g *Grammar) {
				g.Set("number", Pattern(`\d+`))
				g.Skip("space", Pattern(`\s+`))
			},
			input:          "1 2",
			expectedOffset: 2,
			expected:       diagnostic.ErrNoMatch,
		},
		{
			name: "furthest failure",
			setup: func(g *Grammar) {
				g.Set("group", OneOf(Seq(Str("("), Pattern(`\d+`), Str(")")), Str("x")))
			},
			input:          "(12",
			expectedOffset: 3,
			expected:       diagnostic.ErrNoMatch,
		},
		{
			name: "failing repetition is not the furthest failure",
			setup: func(g *Grammar) {
				g.Set("root", OneMany(Str("a"), Str("b")), Str("!"))
			},
			input:          "abac",
			expectedOffset: 2,
			expected:       diagnostic.ErrNoMatch,
		},
		{
			name: "unknown rule",
			setup: func(g *Grammar) {
				g.Set("root", Str("a"), Ref("missing"))
			},
			input:          "a",
			expectedOffset: 1,
			expected:       diagnostic.ErrUnknownRule,
		},
		{
			name: "left recursion",
			setup: func(g *Grammar) {
				g.Set("expr", Ref("expr"), Str("x"))
			},
			input:          "x",
			expectedOffset: 0,
			expected:       diagnostic.ErrNestingTooDeep,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := New(WithMaxDepth(50))
			test.setup(g)

			_, err := g.Parse(test.input)
			assert.IsError(t, err, diagnostic.ErrParsing)
			assert.IsError(t, err, test.expected)

			perr := parsingError(t, err)
			assert.Equal(t, test.expectedOffset, perr.Offset)
			assert.Equal(t, test.input, perr.Text)
		})
	}
}

func TestRecursiveGrammarTerminates(t *testing.T) {
	g := New(WithLogger(commonlog.GetLogger("mel.grammar.test")))
	g.Set("list", Str("["), ZeroMany(Ref("item")), Str("]"))
	g.Set("item", OneOf(Str("x"), Ref("list")))

	root, err := g.Parse("[x[x[]]]")
	assert.NoError(t, err)
	assert.Equal(t, 3, len(root.FindAll(ast.RULE, "list")))

	_, err = g.Parse("[x[x[]]")
	assert.IsError(t, err, diagnostic.ErrParsing)
}

func TestNot(t *testing.T) {
	g := New()
	g.Set("word", Pattern(`[a-z]+`), Not(Str("=")))
	g.Skip("space", Pattern(`\s+`))

	root, err := g.Parse("abc ")
	assert.NoError(t, err)
	assert.Equal(t, 1, root.Child(0).Len())

	_, err = g.Parse("abc =")
	assert.Error(t, err)
}

func TestMetaGrammar(t *testing.T) {
	root, err := Meta().Parse("person = john")
	assert.NoError(t, err)

	assert.Equal(t, 1, root.Len())
	assert.Equal(t, "grammar", root.Child(0).Name)

	rules := root.FindAll(ast.RULE, "rule")
	assert.Equal(t, 1, len(rules))
	assert.Equal(t, "person = john", rules[0].Text())
	assert.Equal(t, "name", rules[0].Child(0).Name)
	assert.Equal(t, "alternative", rules[0].Child(2).Name)
}

func TestProductions(t *testing.T) {
	productions, err := Productions(`
		-- a list of names
		names = '[' { name } ']'
		name  = first-name [ last ] | "anonymous"
	`)
	assert.NoError(t, err)
	assert.Equal(t, []Production{
		{Name: "names", Definition: "'[' { name } ']'"},
		{Name: "name", Definition: `first-name [ last ] | "anonymous"`},
	}, productions)

	_, err = Productions("names = ")
	assert.IsError(t, err, diagnostic.ErrParsing)
}

func TestEBNF(t *testing.T) {
	g := Meta()

	text := g.EBNF()
	assert.Contains(t, text, "// skip space = \"\\\\s+\" .\n")
	assert.Contains(t, text, "rule = name \"=\" alternative .\n")
	assert.Contains(t, text, "sequence = item { item } .\n")
	assert.Contains(t, text, "item = name | literal | group | option | repetition .\n")
	assert.NoError(t, g.Verify())

	t.Run("undefined rule", func(t *testing.T) {
		g := New()
		g.Set("root", Ref("missing"))
		assert.Error(t, g.Verify())
	})

	t.Run("unreachable rule", func(t *testing.T) {
		g := New()
		g.Set("root", Str("a"))
		g.Set("orphan", Str("b"))
		assert.Error(t, g.Verify())
	})

	t.Run("empty grammar", func(t *testing.T) {
		assert.IsError(t, New().Verify(), ErrEmptyGrammar)
	})

	t.Run("nested alternatives", func(t *testing.T) {
		g := New()
		g.Set("root", Seq(OneOf(Str("a"), Str("b")), Str("c")), OneMany(OneOf(Str("d"), Str("e"))))
		assert.Equal(t, `root = ( "a" | "b" ) "c" ( "d" | "e" ) { ( "d" | "e" ) } .`+"\n", g.EBNF())
		assert.NoError(t, g.Verify())
	})
}

func TestStreamReads(t *testing.T) {
	s := NewStream("abc")

	_, err := s.ReadString("x")
	assert.IsError(t, err, diagnostic.ErrNoMatch)
	assert.Equal(t, 0, s.Pos())

	span, err := s.ReadString("ab")
	assert.NoError(t, err)
	assert.Equal(t, ast.Span{Start: 0, End: 2}, span)

	cp := s.Save()

	_, err = s.ReadPattern(Pattern(`\d`).(*patternRule).re)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `expected /\d/`)

	_, err = s.ReadPattern(Pattern(`c`).(*patternRule).re)
	assert.NoError(t, err)
	assert.True(t, s.EOF())

	s.Restore(cp)
	assert.Equal(t, 2, s.Pos())
	assert.Equal(t, "abc", s.Text())
}
