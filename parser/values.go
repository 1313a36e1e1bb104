package parser

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/tokenizer"
)

// parseFunc returns (nil, nil) when the input at the cursor does not start
// the construct it parses. Once a construct is recognised, errors are final.
type parseFunc func(s *state) (*ast.Node, error)

type candidate struct {
	name     string
	priority int
	parse    parseFunc
}

// candidates is the unit table, sorted by descending priority at init.
// Candidates of equal priority keep their declared order.
var candidates []candidate

func init() {
	candidates = []candidate{
		{name: "range", priority: 3, parse: parseRange},
		{name: "float", priority: 2, parse: parseLiteral(tokenizer.FLOAT, ast.FLOAT)},
		{name: "int", priority: 1, parse: parseLiteral(tokenizer.INT, ast.INT)},
		{name: "boolean", priority: 2, parse: parseLiteral(tokenizer.BOOLEAN, ast.BOOLEAN)},
		{name: "string", parse: parseLiteral(tokenizer.STRING, ast.STRING_LITERAL)},
		{name: "template-string", parse: parseLiteral(tokenizer.TEMPLATE_STRING, ast.TEMPLATE_STRING)},
		{name: "file", parse: parsePrefixed(tokenizer.LESS_THAN, tokenizer.STRING, ast.FILE)},
		{name: "env", parse: parsePrefixed(tokenizer.DOLLAR, tokenizer.STRING, ast.ENV)},
		{name: "wildcard", parse: parseWildcard},
		{name: "keyword", parse: parseKeyword},
		{name: "object", parse: parseDelimited(tokenizer.OPENED_PARENS, tokenizer.CLOSED_PARENS, ast.OBJECT, withKey, parseValue)},
		{name: "query", parse: parseDelimited(tokenizer.OPENED_BRACE, tokenizer.CLOSED_BRACE, ast.QUERY, withQueryKey, parseQueryItem)},
		{name: "list", parse: parseDelimited(tokenizer.OPENED_BRACKET, tokenizer.CLOSED_BRACKET, ast.LIST, withoutKey, parseValue)},
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.priority, a.priority)
	})
}

// parseValue parses a unit optionally followed by '/' and another value.
func parseValue(s *state) (*ast.Node, error) {
	if s.depth >= s.maxDepth {
		return nil, diagnostic.At(s.peek(0).Span.Start,
			fmt.Errorf("%w: more than %d nested values", diagnostic.ErrNestingTooDeep, s.maxDepth))
	}

	s.depth++
	defer func() { s.depth-- }()

	unit, err := parseUnit(s)
	if err != nil || unit == nil {
		return nil, err
	}

	return parseSubnodes(s, unit)
}

// parseSubnodes chains the values that follow '/' to unit.
func parseSubnodes(s *state, unit *ast.Node) (*ast.Node, error) {
	if !s.next(tokenizer.SLASH) {
		return unit, nil
	}

	slash, err := s.stream.Read(tokenizer.SLASH)
	if err != nil {
		return nil, err
	}

	next, err := parseValue(s)
	if err != nil {
		return nil, err
	}

	if next == nil {
		return nil, diagnostic.At(slash.Span.Start, diagnostic.ErrSubNode)
	}

	unit.Chain(next)

	return unit, nil
}

func parseUnit(s *state) (*ast.Node, error) {
	for _, c := range candidates {
		cp := s.stream.Save()

		node, err := c.parse(s)
		if err != nil {
			return nil, err
		}

		if node != nil {
			return node, nil
		}

		s.stream.Restore(cp)
	}

	return nil, nil
}

func parseLiteral(t tokenizer.TokenType, kind ast.Kind) parseFunc {
	return func(s *state) (*ast.Node, error) {
		if !s.next(t) {
			return nil, nil
		}

		token, err := s.stream.Read(t)
		if err != nil {
			return nil, err
		}

		return ast.NewLeaf(kind, s.text, token.Span, token.Value()), nil
	}
}

// parsePrefixed parses a prefix token followed by a token of type t. The value
// of the node is the value of the second token.
func parsePrefixed(prefix, t tokenizer.TokenType, kind ast.Kind) parseFunc {
	return func(s *state) (*ast.Node, error) {
		if s.peek(0).Type != prefix || s.peek(1).Type != t {
			return nil, nil
		}

		first, err := s.stream.Read(prefix)
		if err != nil {
			return nil, err
		}

		token, err := s.stream.Read(t)
		if err != nil {
			return nil, err
		}

		node := ast.NewLeaf(kind, s.text, ast.Span{}, token.Value())

		return s.finish(node, first.Span.Start), nil
	}
}

func parseWildcard(s *state) (*ast.Node, error) {
	if !s.next(tokenizer.STAR) {
		return nil, nil
	}

	token, err := s.stream.Read(tokenizer.STAR)
	if err != nil {
		return nil, err
	}

	return ast.New(ast.WILDCARD, s.text, token.Span), nil
}

var keywordPrefixes = map[tokenizer.TokenType]ast.Kind{
	tokenizer.HASH:     ast.TAG_KEYWORD,
	tokenizer.BANG:     ast.LOG_KEYWORD,
	tokenizer.AT:       ast.ALIAS_KEYWORD,
	tokenizer.DOLLAR:   ast.CACHE_KEYWORD,
	tokenizer.PERCENT:  ast.FORMAT_KEYWORD,
	tokenizer.QUESTION: ast.DOC_KEYWORD,
}

// parseKeyword parses a name, a concept or a prefixed name such as #tag.
// The node Name is the identifier without its prefix.
func parseKeyword(s *state) (*ast.Node, error) {
	first := s.peek(0)

	switch first.Type {
	case tokenizer.NAME, tokenizer.CONCEPT:
		token, err := s.stream.Read()
		if err != nil {
			return nil, err
		}

		kind := ast.NAME_KEYWORD
		if token.Type == tokenizer.CONCEPT {
			kind = ast.CONCEPT_KEYWORD
		}

		node := ast.New(kind, s.text, token.Span)
		node.Name = token.Text

		return node, nil
	}

	kind, ok := keywordPrefixes[first.Type]
	if !ok || s.peek(1).Type != tokenizer.NAME {
		return nil, nil
	}

	if _, err := s.stream.Read(first.Type); err != nil {
		return nil, err
	}

	name, err := s.stream.Read(tokenizer.NAME)
	if err != nil {
		return nil, err
	}

	node := ast.New(kind, s.text, ast.Span{})
	node.Name = name.Text

	return s.finish(node, first.Span.Start), nil
}

// parseRange parses 1..5, 1.. and ..5.
func parseRange(s *state) (*ast.Node, error) {
	first, second := s.peek(0), s.peek(1)

	var r ast.Range

	switch {
	case first.Type == tokenizer.INT && second.Type == tokenizer.RANGE_DOTS:
		start, err := readInt(s)
		if err != nil {
			return nil, err
		}

		r.Start = &start

		if _, err := s.stream.Read(tokenizer.RANGE_DOTS); err != nil {
			return nil, err
		}

		if s.next(tokenizer.INT) {
			end, err := readInt(s)
			if err != nil {
				return nil, err
			}

			r.End = &end
		}
	case first.Type == tokenizer.RANGE_DOTS && second.Type == tokenizer.INT:
		if _, err := s.stream.Read(tokenizer.RANGE_DOTS); err != nil {
			return nil, err
		}

		end, err := readInt(s)
		if err != nil {
			return nil, err
		}

		r.End = &end
	default:
		return nil, nil
	}

	return s.finish(ast.NewLeaf(ast.RANGE, s.text, ast.Span{}, r), first.Span.Start), nil
}

func readInt(s *state) (int64, error) {
	token, err := s.stream.Read(tokenizer.INT)
	if err != nil {
		return 0, err
	}

	v, _ := token.Value().(int64)

	return v, nil
}
