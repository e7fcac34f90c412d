package lang

func scalaConfig() *PathConfig {
	return &PathConfig{
		Language:   Scala,
		Extensions: []string{".scala", ".sc"},
		PathNodeTypes: []string{
			"class_definition",
			"object_definition",
			"trait_definition",
			"enum_definition",
			"function_definition",
			"function_declaration",
		},
	}
}
