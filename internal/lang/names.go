package lang

import (
	"strings"

	"github.com/DeusData/syl/internal/syntax"
)

// FieldName extracts the text of the child stored under field.
func FieldName(field string) NameFunc {
	return func(n syntax.Node) (string, bool) {
		c := n.ChildByFieldName(field)
		if c == nil {
			return "", false
		}
		return c.Text(), true
	}
}

// FirstOf tries each extractor in order and returns the first name found.
func FirstOf(fns ...NameFunc) NameFunc {
	return func(n syntax.Node) (string, bool) {
		for _, fn := range fns {
			if name, ok := fn(n); ok && name != "" {
				return name, true
			}
		}
		return "", false
	}
}

// ChildOfKind extracts the text of the first direct child with one of kinds.
func ChildOfKind(kinds ...string) NameFunc {
	return func(n syntax.Node) (string, bool) {
		c := syntax.FirstChildOfKind(n, kinds...)
		if c == nil {
			return "", false
		}
		return c.Text(), true
	}
}

// WithBody only names nodes that carry a "body" field. C++ uses the same
// specifier kinds for definitions and for plain type references.
func WithBody(fn NameFunc) NameFunc {
	return func(n syntax.Node) (string, bool) {
		if n.ChildByFieldName("body") == nil {
			return "", false
		}
		return fn(n)
	}
}

var declaratorLeaves = map[string]bool{
	"identifier":           true,
	"field_identifier":     true,
	"qualified_identifier": true,
	"destructor_name":      true,
	"operator_name":        true,
	"type_identifier":      true,
}

// declaratorName follows a C/C++ declarator chain down to the declared name:
// function_definition -> function_declarator -> identifier.
func declaratorName(n syntax.Node) (string, bool) {
	cur := n.ChildByFieldName("declarator")
	for depth := 0; cur != nil && depth < 8; depth++ {
		if declaratorLeaves[cur.Kind()] {
			return cur.Text(), true
		}
		next := cur.ChildByFieldName("declarator")
		if next == nil {
			// reference_declarator has no field for its inner declarator
			next = innerDeclarator(cur)
		}
		cur = next
	}
	return "", false
}

func innerDeclarator(n syntax.Node) syntax.Node {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		k := c.Kind()
		if declaratorLeaves[k] || strings.HasSuffix(k, "_declarator") {
			return c
		}
	}
	return nil
}
