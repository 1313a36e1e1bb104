// Package grammar implements a lexer-free combinator engine. A Grammar maps
// rule names to rules built from Str, Pattern, Seq, OneOf, ZeroMany, OneMany,
// Opt, Not and Ref, and parses raw text into an ast.Node tree.
package grammar

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
)

// DefaultMaxDepth is the default limit of nested rule references.
const DefaultMaxDepth = 1000

type skipRule struct {
	name string
	rule Rule
}

// Grammar is a symbol table of named rules plus the skip rules applied before
// every terminal. Build it completely before the first Parse; after that it
// is read only and may be shared between goroutines.
type Grammar struct {
	rules    map[string]Rule
	order    []string
	start    string
	skips    []skipRule
	maxDepth int
	logger   commonlog.Logger
}

// Option configures a Grammar.
type Option func(*Grammar)

// WithMaxDepth sets the limit of nested rule references.
func WithMaxDepth(depth int) Option {
	return func(g *Grammar) {
		if depth > 0 {
			g.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used to trace rule matching at debug level.
func WithLogger(logger commonlog.Logger) Option {
	return func(g *Grammar) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates an empty grammar.
func New(opts ...Option) *Grammar {
	g := &Grammar{
		rules:    make(map[string]Rule),
		maxDepth: DefaultMaxDepth,
		logger:   commonlog.GetLogger("mel.grammar"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Set registers rules under id. Several rules form an implicit sequence whose
// matches become the direct children of the RULE node. The first id set is
// the start symbol unless SetStart is used.
func (g *Grammar) Set(id string, rules ...Rule) *Grammar {
	if _, exists := g.rules[id]; !exists {
		g.order = append(g.order, id)
	}

	if len(rules) == 1 {
		g.rules[id] = rules[0]
	} else {
		g.rules[id] = &seqRule{rules: rules, implicit: true}
	}

	if g.start == "" {
		g.start = id
	}

	return g
}

// SetStart registers rules under id and makes id the start symbol.
func (g *Grammar) SetStart(id string, rules ...Rule) *Grammar {
	g.Set(id, rules...)
	g.start = id

	return g
}

// Skip registers a skip rule. Several rules are alternatives. Skip rules run
// before every terminal and once more at the end of the input.
func (g *Grammar) Skip(id string, rules ...Rule) *Grammar {
	if len(rules) == 0 {
		return g
	}

	rule := rules[0]
	if len(rules) > 1 {
		rule = OneOf(rules...)
	}

	g.skips = append(g.skips, skipRule{name: id, rule: rule})

	return g
}

// Start returns the start symbol.
func (g *Grammar) Start() string {
	return g.start
}

// Rules returns the rule names in registration order.
func (g *Grammar) Rules() []string {
	return append([]string(nil), g.order...)
}

// Rule returns the rule registered under id.
func (g *Grammar) Rule(id string) (Rule, bool) {
	rule, ok := g.rules[id]
	return rule, ok
}

// Parse parses the whole text from the start symbol.
func (g *Grammar) Parse(text string) (*ast.Node, error) {
	return g.ParseFrom(g.start, text)
}

// ParseFrom parses the whole text from the rule id. The returned ROOT node
// spans the whole text and holds the RULE node of id. Any failure, including
// input left after the start rule, is reported as a *diagnostic.ParsingError.
func (g *Grammar) ParseFrom(id, text string) (*ast.Node, error) {
	ctx := &Context{grammar: g, stream: NewStream(text)}

	node, err := Ref(id).Parse(ctx)
	if err != nil {
		offset := ctx.furthest
		if diagnostic.IsFatal(err) {
			offset, _ = diagnostic.OffsetOf(err)
		}

		return nil, diagnostic.NewParsingError(text, offset, err)
	}

	ctx.skip()

	if !ctx.stream.EOF() {
		pos := ctx.stream.Pos()
		return nil, diagnostic.NewParsingError(text, pos,
			diagnostic.At(pos, fmt.Errorf("%w: unconsumed input", diagnostic.ErrNoMatch)))
	}

	root := ast.New(ast.ROOT, text, ast.Span{})
	root.Add(node)
	root.Span = ast.Span{Start: 0, End: len(text)}

	return root, nil
}
