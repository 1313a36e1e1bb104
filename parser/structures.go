package parser

import (
	"fmt"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/tokenizer"
)

type keyPolicy int

const (
	withoutKey keyPolicy = iota
	// withKey accepts a key marker or a keyword right after the opening token.
	withKey
	// withQueryKey is withKey, except that a keyword starting a relation
	// (name = 1) is left to the items.
	withQueryKey
)

// parseDelimited parses open key? item* close. All structures share it.
func parseDelimited(open, close tokenizer.TokenType, kind ast.Kind, policy keyPolicy, item parseFunc) parseFunc {
	return func(s *state) (*ast.Node, error) {
		if !s.next(open) {
			return nil, nil
		}

		first, err := s.stream.Read(open)
		if err != nil {
			return nil, err
		}

		node := ast.New(kind, s.text, first.Span)

		if policy != withoutKey {
			key, err := parseKey(s, policy)
			if err != nil {
				return nil, err
			}

			node.SetKey(key)
		}

		for {
			child, err := item(s)
			if err != nil {
				return nil, err
			}

			if child == nil {
				break
			}

			s.add(node, child)
		}

		// A key marker stands for the value that follows it.
		if _, marker := markerKinds[keyKind(node)]; marker && node.Len() == 0 {
			return nil, diagnostic.At(s.peek(0).Span.Start,
				fmt.Errorf("%w after '%s'", ErrExpectedValue, node.Key.Text()))
		}

		if _, err := s.stream.Read(close); err != nil {
			return nil, err
		}

		return s.finish(node, first.Span.Start), nil
	}
}

var keyMarkers = map[tokenizer.TokenType]ast.Kind{
	tokenizer.COLON:          ast.ANONYM_KEY,
	tokenizer.DEFAULT_FORMAT: ast.DEFAULT_FORMAT_KEY,
	tokenizer.DEFAULT_DOC:    ast.DEFAULT_DOC_KEY,
}

var markerKinds = map[ast.Kind]bool{
	ast.ANONYM_KEY:         true,
	ast.DEFAULT_FORMAT_KEY: true,
	ast.DEFAULT_DOC_KEY:    true,
}

func keyKind(n *ast.Node) ast.Kind {
	if n.Key == nil {
		return ast.UNKNOWN
	}

	return n.Key.Kind
}

// parseKey parses a key marker or a keyword key. Keyword keys may be
// subnode chains (a/b).
func parseKey(s *state, policy keyPolicy) (*ast.Node, error) {
	if kind, ok := keyMarkers[s.peek(0).Type]; ok {
		token, err := s.stream.Read()
		if err != nil {
			return nil, err
		}

		return ast.New(kind, s.text, token.Span), nil
	}

	if policy == withQueryKey {
		if _, _, ok := matchRelationHead(s); ok {
			return nil, nil
		}
	}

	key, err := parseKeyword(s)
	if err != nil || key == nil {
		return nil, err
	}

	return parseSubnodes(s, key)
}

var relationSigns = map[tokenizer.TokenType]ast.Kind{
	tokenizer.EQUAL:         ast.EQUAL,
	tokenizer.NOT_EQUAL:     ast.DIFFERENT,
	tokenizer.GREATER_THAN:  ast.GREATER_THAN,
	tokenizer.GREATER_EQUAL: ast.GREATER_THAN_EQUAL,
	tokenizer.LESS_THAN:     ast.LESS_THAN,
	tokenizer.LESS_EQUAL:    ast.LESS_THAN_EQUAL,
	tokenizer.IN_SIGN:       ast.IN,
	tokenizer.NOT_IN:        ast.NOT_IN,
}
