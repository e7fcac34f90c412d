package lang

import "github.com/DeusData/syl/internal/syntax"

func goConfig() *PathConfig {
	return &PathConfig{
		Language:   Go,
		Extensions: []string{".go"},
		PathNodeTypes: []string{
			"function_declaration",
			"method_declaration",
			"type_spec",
			"type_alias",
		},
		Name: FirstOf(goMethodName, FieldName("name")),
	}
}

// goMethodName names methods "(T) M" after their receiver type. Methods sit
// at the top level of a Go file, so without the receiver String on two types
// would collide and be numbered by position.
func goMethodName(n syntax.Node) (string, bool) {
	if n.Kind() != "method_declaration" {
		return "", false
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		return "", false
	}
	recv := goReceiverType(n.ChildByFieldName("receiver"))
	if recv == "" {
		return name.Text(), true
	}
	return "(" + recv + ") " + name.Text(), true
}

// goReceiverType returns the base type name of a receiver list, dropping
// the pointer and any type parameters: (s *List[T]) -> List.
func goReceiverType(params syntax.Node) string {
	param := syntax.FirstChildOfKind(params, "parameter_declaration")
	if param == nil {
		return ""
	}
	t := param.ChildByFieldName("type")
	for depth := 0; t != nil && depth < 4; depth++ {
		switch t.Kind() {
		case "type_identifier":
			return t.Text()
		case "pointer_type":
			t = syntax.FirstChildOfKind(t, "type_identifier", "generic_type")
		case "generic_type":
			t = t.ChildByFieldName("type")
		default:
			return ""
		}
	}
	return ""
}
