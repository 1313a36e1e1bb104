package parser

import (
	"fmt"
	"slices"

	pc "github.com/shibukawa/parsercombinator"

	"github.com/shibukawa/mel/ast"
	"github.com/shibukawa/mel/diagnostic"
	"github.com/shibukawa/mel/tokenizer"
)

// Relation heads (path sign) are matched with parsercombinator over a window
// of peeked tokens. Nothing is consumed until the whole head matched.
var (
	pathName    = primitiveType("name", tokenizer.NAME)
	pathHead    = primitiveType("path", tokenizer.NAME, tokenizer.CONCEPT)
	pathSegment = pc.Or(
		tag("child", primitiveType("dot", tokenizer.DOT), pathName),
		tag("meta", primitiveType("colon", tokenizer.COLON), pathName),
	)
	relationSign = primitiveType("sign",
		tokenizer.EQUAL, tokenizer.NOT_EQUAL, tokenizer.GREATER_THAN, tokenizer.GREATER_EQUAL,
		tokenizer.LESS_THAN, tokenizer.LESS_EQUAL, tokenizer.IN_SIGN, tokenizer.NOT_IN)

	relationHead = pc.Seq(pathHead, pc.ZeroOrMore("path segment", pathSegment), relationSign)
)

func primitiveType(typeName string, types ...tokenizer.TokenType) pc.Parser[tokenizer.Token] {
	return func(pctx *pc.ParseContext[tokenizer.Token], tokens []pc.Token[tokenizer.Token]) (int, []pc.Token[tokenizer.Token], error) {
		if len(tokens) > 0 && slices.Contains(types, tokens[0].Val.Type) {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

// tag labels the first token of a match so the path builder can tell child
// and meta segments apart.
func tag(typeStr string, p ...pc.Parser[tokenizer.Token]) pc.Parser[tokenizer.Token] {
	return pc.Trans(pc.Seq(p...), func(pctx *pc.ParseContext[tokenizer.Token], src []pc.Token[tokenizer.Token]) ([]pc.Token[tokenizer.Token], error) {
		if len(src) > 0 {
			src[0].Type = typeStr
		}

		return src, nil
	})
}

// relationWindow peeks the path tokens at the cursor plus the token after
// them, which must be the sign.
func relationWindow(s *state) []pc.Token[tokenizer.Token] {
	var window []pc.Token[tokenizer.Token]

	for i := 0; ; i++ {
		token := s.peek(i)
		if token.Type == invalid || token.Type == tokenizer.EOF {
			return window
		}

		pos := diagnostic.Resolve(s.text, token.Span.Start)
		window = append(window, pc.Token[tokenizer.Token]{
			Type: "raw",
			Pos: &pc.Pos{
				Line:  pos.Line + 1,
				Col:   pos.Column + 1,
				Index: pos.Offset,
			},
			Val: token,
			Raw: token.Text,
		})

		switch token.Type {
		case tokenizer.NAME, tokenizer.CONCEPT, tokenizer.DOT, tokenizer.COLON:
		default:
			return window
		}
	}
}

// matchRelationHead reports whether path sign follows the cursor and returns
// the matched tokens and their count.
func matchRelationHead(s *state) (int, []pc.Token[tokenizer.Token], bool) {
	if !s.next(tokenizer.NAME, tokenizer.CONCEPT) {
		return 0, nil, false
	}

	consume, match, err := relationHead(pc.NewParseContext[tokenizer.Token](), relationWindow(s))
	if err != nil || len(match) < 2 {
		return 0, nil, false
	}

	return consume, match, true
}

func parseQueryItem(s *state) (*ast.Node, error) {
	relation, err := parseRelation(s)
	if err != nil || relation != nil {
		return relation, err
	}

	return parseValue(s)
}

// parseRelation parses path sign value. The node Name is the sign and its
// children are the path and the value.
func parseRelation(s *state) (*ast.Node, error) {
	consume, match, ok := matchRelationHead(s)
	if !ok {
		return nil, nil
	}

	for range consume {
		if _, err := s.stream.Read(); err != nil {
			return nil, err
		}
	}

	path := buildPath(s.text, match[:len(match)-1])
	sign := match[len(match)-1].Val

	value, err := parseValue(s)
	if err != nil {
		return nil, err
	}

	if value == nil {
		return nil, diagnostic.At(s.peek(0).Span.Start, fmt.Errorf("%w after %s", ErrExpectedValue, tokenizer.Describe(sign.Type)))
	}

	node := ast.New(relationSigns[sign.Type], s.text, path.Span)
	node.Name = sign.Text
	node.Add(path)
	node.Add(value)

	return s.finish(node, path.Span.Start), nil
}

// buildPath turns name ('.' name | ':' name)* tokens into a PATH node with
// CHILD_PATH and META_PATH segments.
func buildPath(text string, tokens []pc.Token[tokenizer.Token]) *ast.Node {
	head := tokens[0].Val

	path := ast.New(ast.PATH, text, head.Span)
	path.Name = head.Text

	for i := 1; i+1 < len(tokens); i += 2 {
		separator, name := tokens[i], tokens[i+1].Val

		kind := ast.CHILD_PATH
		if separator.Type == "meta" {
			kind = ast.META_PATH
		}

		segment := ast.New(kind, text, ast.Span{Start: separator.Val.Span.Start, End: name.Span.End})
		segment.Name = name.Text
		path.Add(segment)
	}

	path.Span = ast.Span{Start: head.Span.Start, End: tokens[len(tokens)-1].Val.Span.End}

	return path
}
