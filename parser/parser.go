// Package parser parses mel documents into ast trees. It drives a
// tokenizer.Stream with a fixed candidate table instead of a combinator
// grammar.
package parser

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tliron/commonlog"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/tokenizer"
)

// Sentinel errors
var (
	ErrExpectedValue = errors.New("expected value")
)

// DefaultMaxDepth is the default limit of nested values.
const DefaultMaxDepth = 1000

// Options controls parser behaviors.
type Options struct {
	// MaxDepth limits how deeply values may nest. Zero means DefaultMaxDepth.
	MaxDepth int
	// Logger receives debug traces. nil means the "mel.parser" logger.
	Logger commonlog.Logger
}

// DefaultOptions provides the default parser options.
var DefaultOptions = Options{MaxDepth: DefaultMaxDepth}

// Parser parses mel text. It holds no per-parse state and may be shared.
type Parser struct {
	options Options
	lexer   *tokenizer.Lexer
}

// New creates a parser. Only the first options value is used.
func New(options ...Options) *Parser {
	opts := DefaultOptions
	if len(options) > 0 {
		opts = options[0]
	}

	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	if opts.Logger == nil {
		opts.Logger = commonlog.GetLogger("mel.parser")
	}

	return &Parser{options: opts, lexer: tokenizer.Mel()}
}

// Parse parses text with a parser created from options.
func Parse(text string, options ...Options) (*ast.Node, error) {
	return New(options...).Parse(text)
}

// Parse parses the whole text into a ROOT node. Any failure is reported as a
// *diagnostic.ParsingError. Input that is left over after the last value is
// reported at the start of its first token.
func (p *Parser) Parse(text string) (*ast.Node, error) {
	s := &state{
		stream:   tokenizer.NewStream(p.lexer, text),
		text:     text,
		maxDepth: p.options.MaxDepth,
	}

	root := ast.New(ast.ROOT, text, ast.Span{})

	for {
		value, err := parseValue(s)
		if err != nil {
			p.options.Logger.Debugf("parse failed: %v", err)
			return nil, failure(text, err)
		}

		if value == nil {
			break
		}

		s.add(root, value)
	}

	if !s.stream.IsEOF() {
		token, err := s.stream.Peek(0)
		if err != nil {
			return nil, failure(text, err)
		}

		return nil, diagnostic.NewParsingError(text, token.Span.Start,
			fmt.Errorf("%w: %s", diagnostic.ErrUnexpectedToken, tokenizer.Describe(token.Type)))
	}

	root.Span = ast.Span{Start: 0, End: len(text)}

	p.options.Logger.Debugf("parsed %d values", root.Len())

	return root, nil
}

func failure(text string, err error) error {
	offset, _ := diagnostic.OffsetOf(err)
	return diagnostic.NewParsingError(text, offset, err)
}

// invalid is returned by peek when the lexer cannot produce a token.
const invalid tokenizer.TokenType = -1

type state struct {
	stream   *tokenizer.Stream
	text     string
	depth    int
	maxDepth int
}

func (s *state) peek(offset int) tokenizer.Token {
	token, err := s.stream.Peek(offset)
	if err != nil {
		return tokenizer.Token{Type: invalid}
	}

	return token
}

func (s *state) next(types ...tokenizer.TokenType) bool {
	return slices.Contains(types, s.peek(0).Type)
}

// finish sets the span of n from start to the end of the last consumed token.
func (s *state) finish(n *ast.Node, start int) *ast.Node {
	n.Span = ast.Span{Start: start, End: s.stream.Last().Span.End}
	return n
}

// add appends child to parent. Objects keyed by a single name inside the root
// or an object are also registered under it so references can reach them.
func (s *state) add(parent, child *ast.Node) {
	if parent.Kind == ast.ROOT || parent.Kind == ast.OBJECT {
		if child.Kind == ast.OBJECT && child.Key != nil && child.Key.Next == nil &&
			(child.Key.Kind == ast.NAME_KEYWORD || child.Key.Kind == ast.CONCEPT_KEYWORD) {
			parent.AddAlias(child.Key.Name, child)
			return
		}
	}

	parent.Add(child)
}
