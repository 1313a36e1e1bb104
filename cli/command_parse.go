package cli

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/shibukawa/mel"
	"github.com/shibukawa/mel/ast"
)

// ParseCmd represents the parse command
type ParseCmd struct {
	File  string `arg:"" help:"mel document (- for stdin)" default:"-"`
	Spans bool   `help:"Include byte spans in the output"`
}

// Run executes the parse command
func (cmd *ParseCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	text, err := readDocument(cmd.File)
	if err != nil {
		return err
	}

	tree, err := mel.Parse(text, config)
	if err != nil {
		return &documentError{Path: cmd.File, Err: err}
	}

	encoder := yaml.NewEncoder(ctx.Stdout)
	encoder.SetIndent(2)

	if err := encoder.Encode(nodeToYAML(tree, cmd.Spans)); err != nil {
		return fmt.Errorf("failed to write syntax tree: %w", err)
	}

	return encoder.Close()
}

// nodeToYAML builds the YAML form of n: a mapping of kind, name, value or
// source text, key, children and the next link of a chain.
func nodeToYAML(n *ast.Node, spans bool) *yaml.Node {
	out := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value *yaml.Node) {
		out.Content = append(out.Content, scalar(key), value)
	}

	add("kind", scalar(n.Kind.String()))

	if n.Name != "" {
		add("name", scalar(n.Name))
	}

	switch {
	case n.Value != nil:
		add("value", scalar(fmt.Sprint(n.Value)))
	case n.Len() == 0 && n.Key == nil && n.Kind != ast.ROOT:
		add("text", scalar(n.Text()))
	}

	if spans {
		add("span", &yaml.Node{
			Kind:    yaml.SequenceNode,
			Style:   yaml.FlowStyle,
			Content: []*yaml.Node{integer(n.Span.Start), integer(n.Span.End)},
		})
	}

	if n.Key != nil {
		add("key", nodeToYAML(n.Key, spans))
	}

	if n.Len() > 0 {
		children := &yaml.Node{Kind: yaml.SequenceNode}
		for _, child := range n.Children {
			children.Content = append(children.Content, nodeToYAML(child, spans))
		}

		add("children", children)
	}

	if n.Next != nil {
		add("next", nodeToYAML(n.Next, spans))
	}

	return out
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func integer(value int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(value)}
}
