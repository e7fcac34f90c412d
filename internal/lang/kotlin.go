package lang

func kotlinConfig() *PathConfig {
	return &PathConfig{
		Language:   Kotlin,
		Extensions: []string{".kt", ".kts"},
		PathNodeTypes: []string{
			"class_declaration",
			"object_declaration",
			"function_declaration",
		},
		// Older grammar revisions expose the name as an unlabelled child.
		Name: FirstOf(
			FieldName("name"),
			ChildOfKind("type_identifier", "simple_identifier", "identifier"),
		),
	}
}
