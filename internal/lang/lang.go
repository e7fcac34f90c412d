package lang

import (
	"slices"
	"strings"

	"github.com/DeusData/syl/internal/syntax"
)

// Language identifies a language configuration and the grammar it parses with.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx" // grammar only; .tsx files use the TypeScript configuration
	Go         Language = "go"
	Rust       Language = "rust"
	Java       Language = "java"
	CPP        Language = "cpp"
	CSharp     Language = "c-sharp"
	PHP        Language = "php"
	Lua        Language = "lua"
	Scala      Language = "scala"
	Kotlin     Language = "kotlin"
)

// Grammars returns every grammar the parser package can load.
func Grammars() []Language {
	return []Language{Python, JavaScript, TypeScript, TSX, Go, Rust, Java, CPP, CSharp, PHP, Lua, Scala, Kotlin}
}

// NameFunc extracts the declaration name of a path-bearing node.
// ok is false when the node has no usable name.
type NameFunc func(n syntax.Node) (name string, ok bool)

// PathConfig describes which syntax nodes of a language carry semantic paths.
// A config must not be mutated after it is registered.
type PathConfig struct {
	Language   Language
	Extensions []string
	// PathNodeTypes lists the node kinds that form addressable declarations.
	PathNodeTypes []string
	// Grammar is the parser grammar. Defaults to Language when empty.
	Grammar Language
	// ExtGrammars overrides Grammar for specific extensions (e.g. ".tsx").
	ExtGrammars map[string]Language
	// Name extracts a declaration name. Defaults to the "name" field.
	Name NameFunc
}

// IsPathNode reports whether kind is a path-bearing node kind.
func (c *PathConfig) IsPathNode(kind string) bool {
	return slices.Contains(c.PathNodeTypes, kind)
}

// NodeName returns the name used for n's path segment. Names never contain
// the path separator: a dotted name keeps only its last segment.
func (c *PathConfig) NodeName(n syntax.Node) (string, bool) {
	fn := c.Name
	if fn == nil {
		fn = FieldName("name")
	}
	name, ok := fn(n)
	if !ok {
		return "", false
	}
	name = lastDotSegment(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}
	return name, true
}

// GrammarFor returns the grammar to parse filePath with.
func (c *PathConfig) GrammarFor(filePath string) Language {
	if g, ok := c.ExtGrammars[Extension(filePath)]; ok {
		return g
	}
	if c.Grammar != "" {
		return c.Grammar
	}
	return c.Language
}

// Extension returns the substring of filePath from its last "." (inclusive),
// or "" when there is none.
func Extension(filePath string) string {
	i := strings.LastIndexByte(filePath, '.')
	if i < 0 {
		return ""
	}
	return filePath[i:]
}

func lastDotSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
