package lang

func javascriptConfig() *PathConfig {
	return &PathConfig{
		Language:   JavaScript,
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		PathNodeTypes: []string{
			"function_declaration",
			"generator_function_declaration",
			"class_declaration",
			"method_definition",
			"variable_declarator",
		},
	}
}
