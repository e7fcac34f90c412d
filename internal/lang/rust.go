package lang

import "github.com/DeusData/syl/internal/syntax"

func rustConfig() *PathConfig {
	return &PathConfig{
		Language:   Rust,
		Extensions: []string{".rs"},
		PathNodeTypes: []string{
			"function_item",
			"function_signature_item",
			"struct_item",
			"enum_item",
			"union_item",
			"trait_item",
			"impl_item",
			"mod_item",
			"type_item",
			"macro_definition",
		},
		Name: FirstOf(FieldName("name"), rustImplName),
	}
}

// rustImplName names impl blocks "impl Type" or "impl Trait for Type" so they
// never collide with the struct they extend.
func rustImplName(n syntax.Node) (string, bool) {
	if n.Kind() != "impl_item" {
		return "", false
	}
	typ := n.ChildByFieldName("type")
	if typ == nil {
		return "", false
	}
	if trait := n.ChildByFieldName("trait"); trait != nil {
		return "impl " + trait.Text() + " for " + typ.Text(), true
	}
	return "impl " + typ.Text(), true
}
