package gloo

// Snippet is a named, parameterized fragment of GLSL with its own declared
// variables and dependencies on other snippets. gloo consumes snippets, it
// does not define them: any type satisfying this contract can be bound to
// a hook.
//
// Implementations must be pointer types. Snippets are deduplicated by
// identity when their code is collected into a shader's preamble.
type Snippet interface {
	// Globals maps identifiers (uniforms, attributes, varyings) declared
	// by the snippet to the GLSL expression to substitute when a hook
	// resolves to that identifier.
	Globals() map[string]string

	// Aliases maps short names to canonical identifiers. Aliases are
	// resolved before Globals lookup and before call generation.
	Aliases() map[string]string

	// Dependencies returns the snippets this snippet depends on, not
	// including itself. Dependencies form a DAG.
	Dependencies() []Snippet

	// Child resolves one segment of a dotted hook sub-path to a nested
	// snippet.
	Child(name string) (Snippet, bool)

	// MangledCall renders an invocation of the snippet, or of the named
	// sub-entry when sub is non-empty, using the per-instantiation mangled
	// name. args is the argument text from the hook site; when override is
	// true the snippet must evaluate with these arguments instead of its
	// stored ones.
	MangledCall(sub, args string, override bool) string

	// MangledCode renders the snippet's GLSL body with all names mangled
	// for this instantiation.
	MangledCode() string
}

// collectSnippets walks the dependency DAG from each root and returns
// every reachable snippet, roots included, deduplicated by identity in
// first-seen depth-first order. The composed shader source emits each
// snippet's code exactly once regardless of how many hooks reference it.
func collectSnippets(roots []Snippet) []Snippet {
	var out []Snippet
	seen := make(map[Snippet]bool)
	var walk func(s Snippet)
	walk = func(s Snippet) {
		if s == nil || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
		for _, dep := range s.Dependencies() {
			walk(dep)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}
