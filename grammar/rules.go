package grammar

import (
	"fmt"
	"regexp"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
)

// Rule is a parsing function over a Context. On failure a rule leaves the
// stream cursor where it was before the call.
type Rule interface {
	Parse(ctx *Context) (*ast.Node, error)
}

type strRule struct {
	lit string
}

// Str matches lit verbatim after running the skip rules.
func Str(lit string) Rule {
	return &strRule{lit: lit}
}

func (r *strRule) Parse(ctx *Context) (*ast.Node, error) {
	return ctx.attempt(func() (*ast.Node, error) {
		ctx.skip()

		span, err := ctx.stream.ReadString(r.lit)
		if err != nil {
			return nil, ctx.fail(err)
		}

		return ast.New(ast.STRING, ctx.stream.Text(), span), nil
	})
}

type patternRule struct {
	expr string
	re   *regexp.Regexp
}

// Pattern matches the regular expression expr anchored at the cursor after
// running the skip rules. It panics when expr does not compile.
func Pattern(expr string) Rule {
	return &patternRule{expr: expr, re: regexp.MustCompile(`^(?:` + expr + `)`)}
}

func (r *patternRule) Parse(ctx *Context) (*ast.Node, error) {
	return ctx.attempt(func() (*ast.Node, error) {
		ctx.skip()

		span, err := ctx.stream.ReadPattern(r.re)
		if err != nil {
			return nil, ctx.fail(err)
		}

		return ast.New(ast.PATTERN, ctx.stream.Text(), span), nil
	})
}

type seqRule struct {
	rules []Rule
	// implicit marks the sequence built by Set from several rules. Its
	// children are adopted by the RULE node instead of being nested.
	implicit bool
}

// Seq matches all rules in order or nothing.
func Seq(rules ...Rule) Rule {
	return &seqRule{rules: rules}
}

func (r *seqRule) Parse(ctx *Context) (*ast.Node, error) {
	pos := ctx.stream.Pos()

	children, err := ctx.group(r.rules)
	if err != nil {
		return nil, err
	}

	return ctx.container(ast.SEQUENCE, pos, children), nil
}

type oneOfRule struct {
	rules []Rule
}

// OneOf tries the rules in order and returns the first success.
func OneOf(rules ...Rule) Rule {
	return &oneOfRule{rules: rules}
}

func (r *oneOfRule) Parse(ctx *Context) (*ast.Node, error) {
	pos := ctx.stream.Pos()

	var failure error

	for _, rule := range r.rules {
		child, err := rule.Parse(ctx)
		if err == nil {
			return ctx.container(ast.ONE_OF, pos, []*ast.Node{child}), nil
		}

		if diagnostic.IsFatal(err) {
			return nil, err
		}

		if failure == nil || deeper(err, failure) {
			failure = err
		}
	}

	if failure == nil {
		failure = diagnostic.At(pos, fmt.Errorf("%w: no alternative", diagnostic.ErrNoMatch))
	}

	return nil, failure
}

func deeper(err, than error) bool {
	a, _ := diagnostic.OffsetOf(err)
	b, _ := diagnostic.OffsetOf(than)

	return a > b
}

type repeatRule struct {
	rules []Rule
	min   int
}

// ZeroMany repeats the group of rules as long as it matches. It never fails.
func ZeroMany(rules ...Rule) Rule {
	return &repeatRule{rules: rules}
}

// OneMany is ZeroMany requiring at least one iteration.
func OneMany(rules ...Rule) Rule {
	return &repeatRule{rules: rules, min: 1}
}

func (r *repeatRule) Parse(ctx *Context) (*ast.Node, error) {
	pos := ctx.stream.Pos()
	kind := ast.ZERO_MANY

	if r.min > 0 {
		kind = ast.ONE_MANY
	}

	var (
		all   []*ast.Node
		count int
	)

	for {
		before := ctx.stream.Pos()
		furthest := ctx.furthest

		children, err := ctx.group(r.rules)
		if err != nil {
			if diagnostic.IsFatal(err) || count < r.min {
				return nil, err
			}

			// the failing iteration does not count as the furthest failure
			ctx.furthest = furthest

			break
		}

		all = append(all, children...)
		count++

		if ctx.stream.Pos() == before {
			break
		}
	}

	return ctx.container(kind, pos, all), nil
}

type optRule struct {
	rules []Rule
}

// Opt matches the group of rules or returns an empty OPTIONAL node.
func Opt(rules ...Rule) Rule {
	return &optRule{rules: rules}
}

func (r *optRule) Parse(ctx *Context) (*ast.Node, error) {
	pos := ctx.stream.Pos()

	children, err := ctx.group(r.rules)
	if err != nil {
		if diagnostic.IsFatal(err) {
			return nil, err
		}

		children = nil
	}

	return ctx.container(ast.OPTIONAL, pos, children), nil
}

type notRule struct {
	rules []Rule
}

// Not succeeds without consuming input when the group of rules does not
// match at the cursor. It produces no node.
func Not(rules ...Rule) Rule {
	return &notRule{rules: rules}
}

func (r *notRule) Parse(ctx *Context) (*ast.Node, error) {
	cp := ctx.stream.Save()
	furthest := ctx.furthest

	_, err := ctx.group(r.rules)

	ctx.stream.Restore(cp)
	ctx.furthest = furthest

	switch {
	case err == nil:
		return nil, ctx.fail(diagnostic.At(cp.pos, fmt.Errorf("%w: unexpected match", diagnostic.ErrNoMatch)))
	case diagnostic.IsFatal(err):
		return nil, err
	default:
		return nil, nil
	}
}

type refRule struct {
	name string
}

// Ref matches the rule registered under name. The lookup happens when the
// rule runs, so rules may refer to each other in any order.
func Ref(name string) Rule {
	return &refRule{name: name}
}

func (r *refRule) Parse(ctx *Context) (*ast.Node, error) {
	pos := ctx.stream.Pos()

	rule, ok := ctx.grammar.rules[r.name]
	if !ok {
		return nil, diagnostic.At(pos, fmt.Errorf("%w: %s", diagnostic.ErrUnknownRule, r.name))
	}

	if ctx.depth >= ctx.grammar.maxDepth {
		return nil, diagnostic.At(pos, fmt.Errorf("%w: more than %d nested rules", diagnostic.ErrNestingTooDeep, ctx.grammar.maxDepth))
	}

	ctx.depth++
	defer func() { ctx.depth-- }()

	ctx.grammar.logger.Debugf("enter %s at %d", r.name, pos)

	node, err := ctx.attempt(func() (*ast.Node, error) {
		child, err := rule.Parse(ctx)
		if err != nil {
			return nil, err
		}

		children := []*ast.Node{child}
		if seq, ok := rule.(*seqRule); ok && seq.implicit {
			children = child.Children
		}

		node := ctx.container(ast.RULE, pos, children)
		node.Name = r.name

		return node, nil
	})
	if err != nil {
		ctx.grammar.logger.Debugf("fail %s at %d: %v", r.name, pos, err)
		return nil, err
	}

	ctx.grammar.logger.Debugf("match %s %d-%d", r.name, node.Span.Start, node.Span.End)

	return node, nil
}
