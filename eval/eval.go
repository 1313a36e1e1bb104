// Package eval turns parsed mel trees into plain Go values. It resolves
// references against the tree, reads referenced files and looks up
// environment variables.
package eval

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
)

// Sentinel errors
var (
	ErrCyclicReference = errors.New("cyclic reference")
	ErrInvalidFloat    = errors.New("invalid float")
)

// Func evaluates one node kind.
type Func func(e *Evaluator, n *ast.Node) (any, error)

// Options controls evaluation.
type Options struct {
	// Decimal evaluates FLOAT nodes to decimal.Decimal instead of float64.
	Decimal bool
	// BaseDir is prepended to relative FILE paths.
	BaseDir string
	// ReadFile reads FILE nodes. nil means os.ReadFile.
	ReadFile func(path string) ([]byte, error)
	// Environment resolves ENV nodes. nil means the process environment.
	Environment Environment
}

// DefaultOptions provides the default evaluation options.
var DefaultOptions = Options{}

// Evaluator evaluates one tree at a time. It is not safe for concurrent use.
type Evaluator struct {
	options Options
	funcs   map[ast.Kind]Func
	tree    *ast.Node
	active  map[*ast.Node]bool
}

// New creates an evaluator. Only the first options value is used.
func New(options ...Options) *Evaluator {
	opts := DefaultOptions
	if len(options) > 0 {
		opts = options[0]
	}

	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}

	if opts.Environment == nil {
		opts.Environment = MapEnvironment(nil)
		if env, err := NewEnvironment(); err == nil {
			opts.Environment = env
		}
	}

	e := &Evaluator{
		options: opts,
		funcs: map[ast.Kind]Func{
			ast.FLOAT:        evalFloat,
			ast.FILE:         evalFile,
			ast.ENV:          evalEnv,
			ast.NAME_KEYWORD: evalName,
			ast.WILDCARD:     evalText,
			ast.PATH:         evalText,
		},
	}

	for _, kind := range []ast.Kind{
		ast.CONCEPT_KEYWORD, ast.TAG_KEYWORD, ast.LOG_KEYWORD, ast.ALIAS_KEYWORD,
		ast.CACHE_KEYWORD, ast.FORMAT_KEYWORD, ast.DOC_KEYWORD,
	} {
		e.funcs[kind] = evalKeyword
	}

	for _, kind := range []ast.Kind{ast.ANONYM_KEY, ast.DEFAULT_FORMAT_KEY, ast.DEFAULT_DOC_KEY} {
		e.funcs[kind] = evalText
	}

	for _, kind := range []ast.Kind{
		ast.EQUAL, ast.DIFFERENT, ast.GREATER_THAN, ast.GREATER_THAN_EQUAL,
		ast.LESS_THAN, ast.LESS_THAN_EQUAL, ast.IN, ast.NOT_IN,
	} {
		e.funcs[kind] = evalRelation
	}

	return e
}

// Register replaces the evaluation of kind.
func (e *Evaluator) Register(kind ast.Kind, fn Func) {
	e.funcs[kind] = fn
}

// Eval evaluates tree. References are resolved against tree.
func (e *Evaluator) Eval(tree *ast.Node) (any, error) {
	e.tree = tree
	e.active = map[*ast.Node]bool{}

	defer func() {
		e.tree = nil
		e.active = nil
	}()

	return tree.Eval(e)
}

// Var implements ast.Context. "tree" is the tree being evaluated.
func (e *Evaluator) Var(name string) (any, bool) {
	if name == "tree" && e.tree != nil {
		return e.tree, true
	}

	return nil, false
}

// EvalNode implements ast.Evaluator.
func (e *Evaluator) EvalNode(n *ast.Node) (any, error) {
	if n == nil {
		return nil, nil
	}

	if n.Next != nil {
		return e.evalChain(n)
	}

	return e.evalUnit(n)
}

func (e *Evaluator) evalUnit(n *ast.Node) (any, error) {
	if fn, ok := e.funcs[n.Kind]; ok {
		return fn(e, n)
	}

	return ast.DefaultEval(n, e.EvalNode)
}

// Keyword is the value of keyword nodes other than plain names.
type Keyword struct {
	Kind string `yaml:"kind" json:"kind"`
	Name string `yaml:"name" json:"name"`
}

// Relation is the value of a query relation such as age >= 18.
type Relation struct {
	Path  string `yaml:"path" json:"path"`
	Sign  string `yaml:"sign" json:"sign"`
	Value any    `yaml:"value" json:"value"`
}

func evalText(_ *Evaluator, n *ast.Node) (any, error) {
	return n.UnitText(), nil
}

func evalKeyword(_ *Evaluator, n *ast.Node) (any, error) {
	return Keyword{Kind: n.Kind.String(), Name: n.Name}, nil
}

func evalFloat(e *Evaluator, n *ast.Node) (any, error) {
	if !e.options.Decimal {
		return n.Value, nil
	}

	text := n.UnitText()

	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, diagnostic.At(n.Span.Start, fmt.Errorf("%w: %s: %w", ErrInvalidFloat, text, err))
	}

	return d, nil
}

func evalFile(e *Evaluator, n *ast.Node) (any, error) {
	path, _ := n.Value.(string)
	if !filepath.IsAbs(path) && e.options.BaseDir != "" {
		path = filepath.Join(e.options.BaseDir, path)
	}

	data, err := e.options.ReadFile(path)
	if err != nil {
		return nil, diagnostic.At(n.Span.Start, fmt.Errorf("%w: %s: %w", diagnostic.ErrFile, path, err))
	}

	return string(data), nil
}

func evalEnv(e *Evaluator, n *ast.Node) (any, error) {
	name, _ := n.Value.(string)
	return ReadEnvironment(e.options.Environment, name, ""), nil
}

func evalRelation(e *Evaluator, n *ast.Node) (any, error) {
	value, err := e.EvalNode(n.Child(1))
	if err != nil {
		return nil, err
	}

	return Relation{Path: n.Child(0).Text(), Sign: n.Name, Value: value}, nil
}

func evalName(_ *Evaluator, n *ast.Node) (any, error) {
	return n.Name, nil
}

// evalChain evaluates a subnode chain. A chain of names (a/b/c) is a
// reference: a is looked up in the tree, b in a, and so on, and the result is
// the value of the last node. Any other chain evaluates to the list of its
// link values.
func (e *Evaluator) evalChain(n *ast.Node) (any, error) {
	links := n.Links()

	if !isReference(links) {
		values := make([]any, 0, len(links))

		for _, link := range links {
			v, err := e.evalUnit(link.Unit())
			if err != nil {
				return nil, err
			}

			values = append(values, v)
		}

		return values, nil
	}

	target, err := e.resolve(links)
	if err != nil {
		return nil, err
	}

	if e.active[target] {
		return nil, diagnostic.At(n.Span.Start, fmt.Errorf("%w: %s", ErrCyclicReference, n.Text()))
	}

	e.active[target] = true
	defer delete(e.active, target)

	return e.EvalNode(target)
}

func isReference(links []*ast.Node) bool {
	for _, link := range links {
		if link.Kind != ast.NAME_KEYWORD {
			return false
		}
	}

	return true
}

func (e *Evaluator) resolve(links []*ast.Node) (*ast.Node, error) {
	node := e.tree

	for _, link := range links {
		if node == nil {
			return nil, diagnostic.At(link.Span.Start, fmt.Errorf("%w: %s", diagnostic.ErrUnknownReference, link.Name))
		}

		next, err := node.Lookup(link.Name)
		if err != nil {
			return nil, diagnostic.At(link.Span.Start, err)
		}

		node = next
	}

	return node, nil
}
