package grammar

import (
	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
)

// Context is the state of a single parse. It is created by Grammar.Parse and
// is not shared between parses.
type Context struct {
	grammar  *Grammar
	stream   *Stream
	depth    int
	furthest int
	skipping bool
}

// Stream returns the text stream being parsed.
func (c *Context) Stream() *Stream {
	return c.stream
}

// attempt runs fn and restores the cursor when it fails.
func (c *Context) attempt(fn func() (*ast.Node, error)) (*ast.Node, error) {
	cp := c.stream.Save()

	node, err := fn()
	if err != nil {
		c.stream.Restore(cp)
		return nil, err
	}

	return node, nil
}

// group matches rules in order, all or nothing.
func (c *Context) group(rules []Rule) ([]*ast.Node, error) {
	cp := c.stream.Save()
	children := make([]*ast.Node, 0, len(rules))

	for _, rule := range rules {
		child, err := rule.Parse(c)
		if err != nil {
			c.stream.Restore(cp)
			return nil, err
		}

		if child != nil {
			children = append(children, child)
		}
	}

	return children, nil
}

func (c *Context) container(kind ast.Kind, pos int, children []*ast.Node) *ast.Node {
	node := ast.New(kind, c.stream.Text(), ast.Span{Start: pos, End: pos})
	for _, child := range children {
		node.Add(child)
	}

	return node
}

// fail records the offset of a terminal failure and returns err.
func (c *Context) fail(err error) error {
	if c.skipping {
		return err
	}

	if offset, ok := diagnostic.OffsetOf(err); ok && offset > c.furthest {
		c.furthest = offset
	}

	return err
}

// skip applies the skip rules until none of them consumes input.
func (c *Context) skip() {
	if c.skipping || len(c.grammar.skips) == 0 {
		return
	}

	c.skipping = true
	defer func() { c.skipping = false }()

	for progressed := true; progressed; {
		progressed = false

		for _, s := range c.grammar.skips {
			before := c.stream.Pos()
			if _, err := s.rule.Parse(c); err == nil && c.stream.Pos() > before {
				progressed = true
			}
		}
	}
}
