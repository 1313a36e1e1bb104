package ast

// Context is passed to evaluation. Implementations expose named variables
// such as the root of the tree being evaluated.
type Context interface {
	Var(name string) (any, bool)
}

// EvalFunc evaluates a single node. DefaultEval calls it for children so an
// evaluator can override the behaviour of individual kinds.
type EvalFunc func(n *Node) (any, error)

// Record is the evaluated form of OBJECT and QUERY nodes.
type Record struct {
	Kind       string         `yaml:"kind" json:"kind"`
	Key        any            `yaml:"key,omitempty" json:"key,omitempty"`
	Children   []any          `yaml:"children,omitempty" json:"children,omitempty"`
	References map[string]any `yaml:"references,omitempty" json:"references,omitempty"`
}

// Evaluator is a Context that takes over the evaluation of nodes.
type Evaluator interface {
	Context
	EvalNode(n *Node) (any, error)
}

// Eval evaluates n. When ctx is an Evaluator it decides; otherwise the
// default rules apply.
func (n *Node) Eval(ctx Context) (any, error) {
	if e, ok := ctx.(Evaluator); ok {
		return e.EvalNode(n)
	}

	var eval EvalFunc
	eval = func(c *Node) (any, error) {
		return DefaultEval(c, eval)
	}

	return eval(n)
}

// DefaultEval implements the generic evaluation rules:
//
//   - literal kinds evaluate to their parsed value;
//   - LIST evaluates to the list of its evaluated children;
//   - OBJECT and QUERY evaluate to a Record;
//   - other containers evaluate their children, unwrapping a single result;
//   - everything else evaluates to nil.
func DefaultEval(n *Node, eval EvalFunc) (any, error) {
	if n == nil {
		return nil, nil
	}

	switch {
	case n.Kind.IsLiteral(), n.Kind == RANGE:
		return n.Value, nil
	case n.Kind == LIST:
		return evalChildren(n.Children, eval)
	case n.Kind.IsKeyed():
		return evalRecord(n, eval)
	}

	switch n.Kind {
	case ROOT, RULE, SEQUENCE, ONE_OF, ZERO_MANY, ONE_MANY, OPTIONAL:
		values, err := evalChildren(n.Children, eval)
		if err != nil {
			return nil, err
		}

		if len(values) == 1 {
			return values[0], nil
		}

		return values, nil
	case STRING, PATTERN:
		return n.Text(), nil
	default:
		return nil, nil
	}
}

func evalChildren(children []*Node, eval EvalFunc) ([]any, error) {
	values := make([]any, 0, len(children))

	for _, child := range children {
		v, err := eval(child)
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return values, nil
}

func evalRecord(n *Node, eval EvalFunc) (*Record, error) {
	record := &Record{Kind: n.Kind.String()}

	if n.Key != nil {
		key, err := evalKey(n.Key, eval)
		if err != nil {
			return nil, err
		}

		record.Key = key
	}

	evaluated := make(map[*Node]any, len(n.Children))

	for _, child := range n.Children {
		v, err := eval(child)
		if err != nil {
			return nil, err
		}

		evaluated[child] = v
		record.Children = append(record.Children, v)
	}

	if len(n.aliasOrder) > 0 {
		record.References = make(map[string]any, len(n.aliasOrder))
		for _, alias := range n.aliasOrder {
			record.References[alias] = evaluated[n.aliases[alias]]
		}
	}

	return record, nil
}

// evalKey evaluates a chained key such as a/b to the list of its link values.
// Keys name their container and are never resolved as references.
func evalKey(key *Node, eval EvalFunc) (any, error) {
	if key.Next == nil {
		return eval(key)
	}

	links := key.Links()
	values := make([]any, 0, len(links))

	for _, link := range links {
		v, err := eval(link.Unit())
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return values, nil
}
