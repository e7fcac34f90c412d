package lang

// Registry maps file extensions to path configurations. Registration is
// expected to finish before concurrent lookups start.
type Registry struct {
	byExt map[string]*PathConfig
	exts  []string // first-registration order
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: map[string]*PathConfig{}}
}

// NewDefaultRegistry returns a registry holding every built-in configuration.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, cfg := range []*PathConfig{
		typescriptConfig(),
		javascriptConfig(),
		pythonConfig(),
		goConfig(),
		rustConfig(),
		javaConfig(),
		cppConfig(),
		csharpConfig(),
		phpConfig(),
		scalaConfig(),
		kotlinConfig(),
		luaConfig(),
	} {
		r.Register(cfg)
	}
	return r
}

// Register maps every extension of cfg to cfg. A later registration for
// the same extension replaces the earlier one.
func (r *Registry) Register(cfg *PathConfig) {
	for _, ext := range cfg.Extensions {
		if _, seen := r.byExt[ext]; !seen {
			r.exts = append(r.exts, ext)
		}
		r.byExt[ext] = cfg
	}
}

// Lookup returns the configuration for filePath's extension.
func (r *Registry) Lookup(filePath string) (*PathConfig, bool) {
	ext := Extension(filePath)
	if ext == "" {
		return nil, false
	}
	cfg, ok := r.byExt[ext]
	return cfg, ok
}

// All returns the configurations some extension still maps to, one per
// language, in the order their extensions were first registered. A
// configuration whose extensions were all overwritten is not listed.
func (r *Registry) All() []*PathConfig {
	seen := map[Language]bool{}
	out := []*PathConfig{}
	for _, ext := range r.exts {
		cfg := r.byExt[ext]
		if seen[cfg.Language] {
			continue
		}
		seen[cfg.Language] = true
		out = append(out, cfg)
	}
	return out
}
