package lang

func phpConfig() *PathConfig {
	return &PathConfig{
		Language:   PHP,
		Extensions: []string{".php"},
		PathNodeTypes: []string{
			"function_definition",
			"class_declaration",
			"interface_declaration",
			"trait_declaration",
			"enum_declaration",
			"method_declaration",
		},
	}
}
