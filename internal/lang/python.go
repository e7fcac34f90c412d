package lang

func pythonConfig() *PathConfig {
	return &PathConfig{
		Language:      Python,
		Extensions:    []string{".py"},
		PathNodeTypes: []string{"function_definition", "class_definition"},
	}
}
