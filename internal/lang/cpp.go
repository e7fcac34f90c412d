package lang

func cppConfig() *PathConfig {
	return &PathConfig{
		Language:   CPP,
		Extensions: []string{".cpp", ".h", ".hpp", ".cc", ".cxx", ".hxx", ".hh"},
		PathNodeTypes: []string{
			"function_definition",
			"class_specifier",
			"struct_specifier",
			"union_specifier",
			"enum_specifier",
			"namespace_definition",
		},
		Name: FirstOf(
			WithBody(FieldName("name")),
			declaratorName,
		),
	}
}
