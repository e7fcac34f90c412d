package lang

func csharpConfig() *PathConfig {
	return &PathConfig{
		Language:   CSharp,
		Extensions: []string{".cs"},
		PathNodeTypes: []string{
			"class_declaration",
			"struct_declaration",
			"interface_declaration",
			"enum_declaration",
			"record_declaration",
			"method_declaration",
			"constructor_declaration",
			"property_declaration",
		},
	}
}
