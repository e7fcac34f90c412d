package lang

func typescriptConfig() *PathConfig {
	return &PathConfig{
		Language:   TypeScript,
		Extensions: []string{".ts", ".tsx"},
		PathNodeTypes: []string{
			"function_declaration",
			"class_declaration",
			"abstract_class_declaration",
			"method_definition",
			"interface_declaration",
			"enum_declaration",
			"type_alias_declaration",
			"variable_declarator",
		},
		ExtGrammars: map[string]Language{".tsx": TSX},
	}
}
