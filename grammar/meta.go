package grammar

import "github.com/shibukawa/mel/ast"

// Meta returns the grammar of the grammar description language:
//
//	grammar     = { rule } .
//	rule        = name "=" alternative .
//	alternative = sequence { "|" sequence } .
//	sequence    = item { item } .
//	item        = name | literal | group | option | repetition .
//	group       = "(" alternative ")" .
//	option      = "[" alternative "]" .
//	repetition  = "{" alternative "}" .
//
// Whitespace and -- comments are skipped. A name directly followed by "="
// starts the next rule and is not an item.
func Meta() *Grammar {
	g := New()

	g.Set("grammar", ZeroMany(Ref("rule")))
	g.Set("rule", Ref("name"), Str("="), Ref("alternative"))
	g.Set("alternative", Ref("sequence"), ZeroMany(Str("|"), Ref("sequence")))
	g.Set("sequence", OneMany(Ref("item")))
	g.Set("item", OneOf(
		Seq(Ref("name"), Not(Str("="))),
		Ref("literal"),
		Ref("group"),
		Ref("option"),
		Ref("repetition"),
	))
	g.Set("group", Str("("), Ref("alternative"), Str(")"))
	g.Set("option", Str("["), Ref("alternative"), Str("]"))
	g.Set("repetition", Str("{"), Ref("alternative"), Str("}"))
	g.Set("literal", Pattern(`'[^']*'|"[^"]*"`))
	g.Set("name", Pattern(`[A-Za-z_][\w-]*`))

	g.Skip("space", Pattern(`\s+`))
	g.Skip("comment", Pattern(`--[^\n\r]*`))

	return g
}

// Production is a rule of a parsed grammar description.
type Production struct {
	Name       string
	Definition string
}

// Productions parses a grammar description with Meta and returns its rules in
// source order.
func Productions(text string) ([]Production, error) {
	root, err := Meta().Parse(text)
	if err != nil {
		return nil, err
	}

	var productions []Production

	for _, rule := range root.FindAll(ast.RULE, "rule") {
		name := rule.Find(ast.RULE, "name")
		alternative := rule.Find(ast.RULE, "alternative")

		productions = append(productions, Production{
			Name:       name.Text(),
			Definition: alternative.Text(),
		})
	}

	return productions, nil
}
