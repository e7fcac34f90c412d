package lang

func javaConfig() *PathConfig {
	return &PathConfig{
		Language:   Java,
		Extensions: []string{".java"},
		PathNodeTypes: []string{
			"class_declaration",
			"interface_declaration",
			"enum_declaration",
			"record_declaration",
			"annotation_type_declaration",
			"method_declaration",
			"constructor_declaration",
		},
	}
}
