// Package ast defines the uniform node shape produced by both the combinator
// grammar engine and the mel parser.
package ast

import (
	"fmt"
	"strings"

	"github.com/shibukawa/mel/diagnostic"
)

// Span is a [Start, End) pair of byte offsets into the source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether o lies within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Range is the value of a RANGE node. Either bound may be open.
type Range struct {
	Start *int64 `yaml:"start,omitempty" json:"start,omitempty"`
	End   *int64 `yaml:"end,omitempty" json:"end,omitempty"`
}

// String returns the mel form of r, such as 1..5 or ..5.
func (r Range) String() string {
	var b strings.Builder

	if r.Start != nil {
		fmt.Fprintf(&b, "%d", *r.Start)
	}

	b.WriteString("..")

	if r.End != nil {
		fmt.Fprintf(&b, "%d", *r.End)
	}

	return b.String()
}

// Node is a parsed unit. Container kinds own an ordered list of children,
// key-bearing kinds also own a Key. A node is built once by the rule that
// matched it and is not modified afterwards.
type Node struct {
	Kind Kind
	// Name is the rule name of RULE nodes, the keyword of keyword and path
	// nodes and the sign of relation nodes.
	Name     string
	Span     Span
	Source   string
	Value    any
	Key      *Node
	Children []*Node
	// Next is the following link of a subnode chain (a/b/c).
	Next *Node

	aliases     map[string]*Node
	aliasOrder  []string
	hasChildren bool
	// unit is the span of the node itself once Chain has grown Span.
	unit    Span
	chained bool
}

// New creates an empty node covering span.
func New(kind Kind, source string, span Span) *Node {
	return &Node{Kind: kind, Source: source, Span: span}
}

// NewLeaf creates a node carrying a parsed value.
func NewLeaf(kind Kind, source string, span Span, value any) *Node {
	return &Node{Kind: kind, Source: source, Span: span, Value: value}
}

// Text returns the source slice covered by the node.
func (n *Node) Text() string {
	if n.Span.Start < 0 || n.Span.End > len(n.Source) || n.Span.Start > n.Span.End {
		return ""
	}

	return n.Source[n.Span.Start:n.Span.End]
}

// Len returns the number of children.
func (n *Node) Len() int {
	return len(n.Children)
}

// Child returns the i-th child, or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}

	return n.Children[i]
}

// Add appends child and grows the span to enclose it. nil children are ignored.
func (n *Node) Add(child *Node) {
	if child == nil {
		return
	}

	if !n.hasChildren {
		n.Span.Start = child.Span.Start
		n.hasChildren = true
	}

	n.Children = append(n.Children, child)
	n.grow(child.Span)
}

// AddAlias appends child and makes it reachable through Lookup(alias).
func (n *Node) AddAlias(alias string, child *Node) {
	n.Add(child)

	if n.aliases == nil {
		n.aliases = make(map[string]*Node)
	}

	if _, exists := n.aliases[alias]; !exists {
		n.aliasOrder = append(n.aliasOrder, alias)
	}

	n.aliases[alias] = child
}

// SetKey sets the distinguished key child.
func (n *Node) SetKey(key *Node) {
	n.Key = key
	if key != nil {
		n.grow(key.Span)
	}
}

// Chain links next after n in a subnode chain. Span grows to enclose the
// rest of the chain; UnitSpan keeps the span of n alone.
func (n *Node) Chain(next *Node) {
	if !n.chained {
		n.unit = n.Span
		n.chained = true
	}

	n.Next = next
	if next != nil {
		n.grow(next.Span)
	}
}

// UnitSpan returns the span of n without the links chained after it.
func (n *Node) UnitSpan() Span {
	if n.chained {
		return n.unit
	}

	return n.Span
}

// UnitText returns the source slice covered by UnitSpan.
func (n *Node) UnitText() string {
	s := n.UnitSpan()
	if s.Start < 0 || s.End > len(n.Source) || s.Start > s.End {
		return ""
	}

	return n.Source[s.Start:s.End]
}

// Unit returns a copy of n detached from its chain.
func (n *Node) Unit() *Node {
	if n.Next == nil {
		return n
	}

	unit := *n
	unit.Span = n.UnitSpan()
	unit.Next = nil
	unit.unit = Span{}
	unit.chained = false

	return &unit
}

func (n *Node) grow(s Span) {
	if s.Start < n.Span.Start {
		n.Span.Start = s.Start
	}

	if s.End > n.Span.End {
		n.Span.End = s.End
	}
}

// Lookup returns the child registered under alias.
func (n *Node) Lookup(alias string) (*Node, error) {
	if child, ok := n.aliases[alias]; ok {
		return child, nil
	}

	return nil, fmt.Errorf("%w: %s", diagnostic.ErrUnknownReference, alias)
}

// Aliases returns the registered aliases in registration order.
func (n *Node) Aliases() []string {
	return append([]string(nil), n.aliasOrder...)
}

// Links returns the subnode chain starting at n.
func (n *Node) Links() []*Node {
	var links []*Node
	for link := n; link != nil; link = link.Next {
		links = append(links, link)
	}

	return links
}

// Walk visits n and its descendants in pre-order (key, children, then the
// chained node). Returning false from fn skips the descendants of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	n.Key.Walk(fn)

	for _, child := range n.Children {
		child.Walk(fn)
	}

	n.Next.Walk(fn)
}

// Find returns the first descendant (including n) of the given kind whose
// Name equals name. An empty name matches any node of that kind.
func (n *Node) Find(kind Kind, name string) *Node {
	var found *Node

	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}

		if c.Kind == kind && (name == "" || c.Name == name) {
			found = c
			return false
		}

		return true
	})

	return found
}

// FindAll returns every descendant (including n) of the given kind and name.
func (n *Node) FindAll(kind Kind, name string) []*Node {
	var found []*Node

	n.Walk(func(c *Node) bool {
		if c.Kind == kind && (name == "" || c.Name == name) {
			found = append(found, c)
		}

		return true
	})

	return found
}

// String returns a compact debug form such as LIST<INT<1>, INT<2>>.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}

	var b strings.Builder
	n.write(&b)

	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteString(n.Kind.String())

	if n.Name != "" {
		b.WriteString("(" + n.Name + ")")
	}

	b.WriteByte('<')

	switch {
	case n.Value != nil:
		fmt.Fprintf(b, "%v", n.Value)
	case n.Kind == STRING || n.Kind == PATTERN:
		b.WriteString(n.Text())
	}

	sep := ""

	if n.Key != nil {
		b.WriteString("key=")
		n.Key.write(b)

		sep = ", "
	}

	for _, child := range n.Children {
		b.WriteString(sep)
		child.write(b)

		sep = ", "
	}

	b.WriteByte('>')

	if n.Next != nil {
		b.WriteString(" / ")
		n.Next.write(b)
	}
}

// Equal reports whether a and b have the same structure: kinds, names,
// values, keys, children and chains. Spans and source text are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Kind != b.Kind || a.Name != b.Name || len(a.Children) != len(b.Children) {
		return false
	}

	if fmt.Sprint(a.Value) != fmt.Sprint(b.Value) {
		return false
	}

	if !Equal(a.Key, b.Key) || !Equal(a.Next, b.Next) {
		return false
	}

	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}

	return true
}
