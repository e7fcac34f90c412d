package lang

func luaConfig() *PathConfig {
	return &PathConfig{
		Language:      Lua,
		Extensions:    []string{".lua"},
		PathNodeTypes: []string{"function_declaration"},
	}
}
