package grammar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/ebnf"
)

// ErrEmptyGrammar is returned by Verify for a grammar without rules.
var ErrEmptyGrammar = errors.New("grammar has no rules")

// EBNF renders the grammar as EBNF productions in registration order.
// Patterns are rendered as quoted tokens, Not lookaheads are omitted and skip
// rules are listed as comments.
func (g *Grammar) EBNF() string {
	var b strings.Builder

	for _, s := range g.skips {
		fmt.Fprintf(&b, "// skip %s = %s .\n", s.name, render(s.rule, false))
	}

	for _, id := range g.order {
		fmt.Fprintf(&b, "%s = %s .\n", ebnfName(id), render(g.rules[id], false))
	}

	return b.String()
}

// Verify checks that every referenced rule is defined and that every rule is
// reachable from the start symbol.
func (g *Grammar) Verify() error {
	if g.start == "" {
		return ErrEmptyGrammar
	}

	parsed, err := ebnf.Parse(g.start, strings.NewReader(g.EBNF()))
	if err != nil {
		return fmt.Errorf("failed to parse grammar: %w", err)
	}

	if err := ebnf.Verify(parsed, ebnfName(g.start)); err != nil {
		return fmt.Errorf("invalid grammar: %w", err)
	}

	return nil
}

func ebnfName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, id)
}

// render returns the EBNF expression of r. nested is set when the result is
// embedded in a sequence and alternatives need parentheses.
func render(r Rule, nested bool) string {
	switch r := r.(type) {
	case *strRule:
		return strconv.Quote(r.lit)
	case *patternRule:
		return strconv.Quote(r.expr)
	case *refRule:
		return ebnfName(r.name)
	case *seqRule:
		return renderSeq(r.rules, nested)
	case *oneOfRule:
		alternatives := make([]string, 0, len(r.rules))
		for _, rule := range r.rules {
			alternatives = append(alternatives, render(rule, false))
		}

		if len(alternatives) == 0 {
			return `""`
		}

		if nested {
			return "( " + strings.Join(alternatives, " | ") + " )"
		}

		return strings.Join(alternatives, " | ")
	case *repeatRule:
		body := renderSeq(r.rules, r.min > 0)
		if r.min > 0 {
			return body + " { " + body + " }"
		}

		return "{ " + body + " }"
	case *optRule:
		return "[ " + renderSeq(r.rules, false) + " ]"
	default:
		return `""`
	}
}

func renderSeq(rules []Rule, nested bool) string {
	terms := make([]string, 0, len(rules))

	for _, rule := range rules {
		if _, ok := rule.(*notRule); ok {
			continue
		}

		terms = append(terms, render(rule, nested || len(rules) > 1))
	}

	if len(terms) == 0 {
		return `""`
	}

	return strings.Join(terms, " ")
}
