package ast

// Kind identifies the variant of a Node.
type Kind int

const (
	// UNKNOWN represents an unspecified node kind.
	UNKNOWN Kind = iota

	// ROOT owns the whole tree of a successful parse.
	ROOT

	// Combinator grammar nodes
	RULE      // result of a named rule reference
	SEQUENCE  // Seq
	ONE_OF    // OneOf
	ZERO_MANY // ZeroMany
	ONE_MANY  // OneMany
	OPTIONAL  // Opt
	STRING    // literal string terminal
	PATTERN   // pattern terminal

	// Literals
	INT
	FLOAT
	BOOLEAN
	STRING_LITERAL  // 'text'
	TEMPLATE_STRING // "text"

	// Containers
	OBJECT // ( key values... )
	QUERY  // { key relations... }
	LIST   // [ values... ]

	// Struct keys
	ANONYM_KEY         // :
	DEFAULT_FORMAT_KEY // %:
	DEFAULT_DOC_KEY    // ?:

	// Keywords
	NAME_KEYWORD    // name
	CONCEPT_KEYWORD // Concept
	TAG_KEYWORD     // #name
	LOG_KEYWORD     // !name
	ALIAS_KEYWORD   // @name
	CACHE_KEYWORD   // $name
	FORMAT_KEYWORD  // %name
	DOC_KEYWORD     // ?name

	// Relations
	EQUAL              // =
	DIFFERENT          // !=
	GREATER_THAN       // >
	GREATER_THAN_EQUAL // >=
	LESS_THAN          // <
	LESS_THAN_EQUAL    // <=
	IN                 // ><
	NOT_IN             // <>

	// Paths
	PATH
	CHILD_PATH // .name
	META_PATH  // :name

	// Values resolved by the evaluation layer
	FILE // <'path'
	ENV  // $'NAME'

	RANGE
	WILDCARD
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case ROOT:
		return "ROOT"
	case RULE:
		return "RULE"
	case SEQUENCE:
		return "SEQUENCE"
	case ONE_OF:
		return "ONE_OF"
	case ZERO_MANY:
		return "ZERO_MANY"
	case ONE_MANY:
		return "ONE_MANY"
	case OPTIONAL:
		return "OPTIONAL"
	case STRING:
		return "STRING"
	case PATTERN:
		return "PATTERN"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case BOOLEAN:
		return "BOOLEAN"
	case STRING_LITERAL:
		return "STRING_LITERAL"
	case TEMPLATE_STRING:
		return "TEMPLATE_STRING"
	case OBJECT:
		return "OBJECT"
	case QUERY:
		return "QUERY"
	case LIST:
		return "LIST"
	case ANONYM_KEY:
		return "ANONYM_KEY"
	case DEFAULT_FORMAT_KEY:
		return "DEFAULT_FORMAT_KEY"
	case DEFAULT_DOC_KEY:
		return "DEFAULT_DOC_KEY"
	case NAME_KEYWORD:
		return "NAME_KEYWORD"
	case CONCEPT_KEYWORD:
		return "CONCEPT_KEYWORD"
	case TAG_KEYWORD:
		return "TAG_KEYWORD"
	case LOG_KEYWORD:
		return "LOG_KEYWORD"
	case ALIAS_KEYWORD:
		return "ALIAS_KEYWORD"
	case CACHE_KEYWORD:
		return "CACHE_KEYWORD"
	case FORMAT_KEYWORD:
		return "FORMAT_KEYWORD"
	case DOC_KEYWORD:
		return "DOC_KEYWORD"
	case EQUAL:
		return "EQUAL"
	case DIFFERENT:
		return "DIFFERENT"
	case GREATER_THAN:
		return "GREATER_THAN"
	case GREATER_THAN_EQUAL:
		return "GREATER_THAN_EQUAL"
	case LESS_THAN:
		return "LESS_THAN"
	case LESS_THAN_EQUAL:
		return "LESS_THAN_EQUAL"
	case IN:
		return "IN"
	case NOT_IN:
		return "NOT_IN"
	case PATH:
		return "PATH"
	case CHILD_PATH:
		return "CHILD_PATH"
	case META_PATH:
		return "META_PATH"
	case FILE:
		return "FILE"
	case ENV:
		return "ENV"
	case RANGE:
		return "RANGE"
	case WILDCARD:
		return "WILDCARD"
	default:
		return "UNKNOWN"
	}
}

// IsLiteral reports whether nodes of this kind evaluate to their parsed value.
func (k Kind) IsLiteral() bool {
	switch k {
	case INT, FLOAT, BOOLEAN, STRING_LITERAL, TEMPLATE_STRING:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether k is one of the keyword kinds.
func (k Kind) IsKeyword() bool {
	return k >= NAME_KEYWORD && k <= DOC_KEYWORD
}

// IsRelation reports whether k is one of the relation kinds.
func (k Kind) IsRelation() bool {
	return k >= EQUAL && k <= NOT_IN
}

// IsKeyed reports whether nodes of this kind carry a distinguished key child.
func (k Kind) IsKeyed() bool {
	return k == OBJECT || k == QUERY
}
