package gloo

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gogpu/gloo/driver"
	"github.com/gogpu/gloo/glsl"
)

// Shader owns one GLSL compilation unit (vertex, fragment or geometry).
//
// The raw template is preprocessed once at construction; hook placeholders
// are discovered from that template and never change afterwards. The
// composed source is a pure function of (template, hook bindings, version,
// stage define), recomputed from the original template on demand, so
// substitution is idempotent and hook discovery stays stable no matter how
// often bindings change.
type Shader struct {
	GLObject

	stage    driver.ShaderStage
	template string
	origin   string
	version  string

	// hookNames are the distinct hook names discovered in the raw
	// template, in first-seen order.
	hookNames []string

	// hooks maps bound hook names to a string or a Snippet.
	hooks map[string]any
}

// NewVertexShader creates a vertex shader from a source designator:
// inline GLSL text or a file path, resolved through the library.
func NewVertexShader(source string, opts ...Option) (*Shader, error) {
	return newShader(driver.VertexStage, source, buildConfig(opts))
}

// NewFragmentShader creates a fragment shader from a source designator.
func NewFragmentShader(source string, opts ...Option) (*Shader, error) {
	return newShader(driver.FragmentStage, source, buildConfig(opts))
}

func newShader(stage driver.ShaderStage, source string, cfg config) (*Shader, error) {
	text, origin, err := cfg.library.Resolve(source)
	if err != nil {
		return nil, err
	}
	template, pragma, err := glsl.Preprocess(text, cfg.library.Include)
	if err != nil {
		return nil, err
	}

	version := cfg.version
	if version == "" {
		version = pragma
	}
	if version == "" {
		version = DefaultVersion
	}

	s := &Shader{
		stage:     stage,
		template:  template,
		origin:    origin,
		version:   version,
		hookNames: glsl.HookNames(template),
		hooks:     make(map[string]any),
	}
	s.setDriver(cfg.driver)
	s.markDirty()
	return s, nil
}

// Stage returns the pipeline stage this shader compiles for.
func (s *Shader) Stage() driver.ShaderStage {
	return s.stage
}

// Origin describes where the template came from: the file base name, or
// "<string>" for inline source.
func (s *Shader) Origin() string {
	return s.origin
}

// Template returns the preprocessed raw template, before any hook
// substitution.
func (s *Shader) Template() string {
	return s.template
}

// Version returns the GLSL version stamped at compile time.
func (s *Shader) Version() string {
	return s.version
}

// SetVersion changes the GLSL version requirement. When a shader is shared
// between programs, the last writer wins; see the package comment.
func (s *Shader) SetVersion(version string) {
	if s.version == version {
		return
	}
	s.version = version
	s.markDirty()
}

// Hooks returns the hook names discovered in the raw template, in
// first-seen order. Discovery is done once at construction against the
// unhooked template, so the result is identical across any number of
// substitution passes.
func (s *Shader) Hooks() []string {
	return slices.Clone(s.hookNames)
}

// PendingHooks returns the discovered hooks that have no binding yet.
func (s *Shader) PendingHooks() []string {
	var pending []string
	for _, name := range s.hookNames {
		if _, ok := s.hooks[name]; !ok {
			pending = append(pending, name)
		}
	}
	return pending
}

// SetHook binds a hook to a literal replacement string or a Snippet.
// The name must be one of the hooks discovered in the raw template.
func (s *Shader) SetHook(name string, value any) error {
	if !slices.Contains(s.hookNames, name) {
		return &UnknownHookError{Name: name}
	}
	switch value.(type) {
	case string, Snippet:
	default:
		return fmt.Errorf("gloo: hook %q value must be a string or a Snippet, got %T", name, value)
	}
	s.hooks[name] = value
	s.markDirty()
	return nil
}

// HookBinding returns the value bound to a hook, if any.
func (s *Shader) HookBinding(name string) (any, bool) {
	v, ok := s.hooks[name]
	return v, ok
}

// ClearHooks removes every hook binding, returning the shader to its
// unhooked template.
func (s *Shader) ClearHooks() {
	if len(s.hooks) == 0 {
		return
	}
	s.hooks = make(map[string]any)
	s.markDirty()
}

// stageDefine returns the preprocessor define identifying the stage, so
// snippet code can branch per stage.
func stageDefine(stage driver.ShaderStage) string {
	switch stage {
	case driver.VertexStage:
		return "GLOO_VERTEX_SHADER"
	case driver.FragmentStage:
		return "GLOO_FRAGMENT_SHADER"
	case driver.GeometryStage:
		return "GLOO_GEOMETRY_SHADER"
	}
	return "GLOO_UNKNOWN_SHADER"
}

// ComposedSource assembles the final source body: the stage define, the
// deduplicated code of every snippet reachable from any bound hook, and
// the template with all bound hooks substituted. The #version pragma is
// prepended separately at compile time.
//
// The walk always starts from the original template, never from a
// previously substituted result.
func (s *Shader) ComposedSource() string {
	body := s.template
	var roots []Snippet
	for _, name := range s.hookNames {
		value, ok := s.hooks[name]
		if !ok {
			continue
		}
		if sn, ok := value.(Snippet); ok {
			roots = append(roots, sn)
		}
		body = glsl.ReplaceHooks(body, name, func(h glsl.Hook) string {
			return resolveHook(value, h)
		})
	}

	var b strings.Builder
	b.WriteString("#define ")
	b.WriteString(stageDefine(s.stage))
	b.WriteString("\n")
	if snippets := collectSnippets(roots); len(snippets) > 0 {
		b.WriteString("// ---- snippet code begin ----\n")
		for _, sn := range snippets {
			code := sn.MangledCode()
			b.WriteString(code)
			if !strings.HasSuffix(code, "\n") {
				b.WriteString("\n")
			}
		}
		b.WriteString("// ---- snippet code end ----\n")
	}
	b.WriteString(body)
	return b.String()
}

// resolveHook renders the replacement for one hook occurrence.
func resolveHook(value any, h glsl.Hook) string {
	lit, isString := value.(string)
	if isString {
		// Literal binding: the dotted suffix is appended verbatim and
		// any argument text belongs to the snippet protocol, not to
		// literals, so it is dropped.
		if h.Sub != "" {
			return lit + "." + h.Sub
		}
		return lit
	}

	sn := value.(Snippet)
	sub := h.Sub

	// Walk the dotted path down to the final segment, descending into
	// nested snippets. Segments that do not name a child snippet leave
	// the cursor in place.
	if i := strings.LastIndex(sub, "."); i >= 0 {
		for _, segment := range strings.Split(sub[:i], ".") {
			if child, ok := sn.Child(segment); ok {
				sn = child
			}
		}
		sub = sub[i+1:]
	}

	// A trailing "!" means: evaluate with the call site's own arguments
	// instead of the stored ones.
	override := false
	if strings.HasSuffix(sub, "!") {
		override = true
		sub = strings.TrimSuffix(sub, "!")
	}

	if canonical, ok := sn.Aliases()[sub]; ok {
		sub = canonical
	}
	// A sub-path naming a snippet global (uniform/attribute/varying)
	// substitutes that expression directly instead of generating a call.
	if expr, ok := sn.Globals()[sub]; ok {
		return expr
	}
	return sn.MangledCall(sub, h.Args, override)
}

// Uniforms returns the uniforms declared in the composed source. Snippet
// code may introduce declarations absent from the raw template, so this is
// derived post-substitution.
func (s *Shader) Uniforms() []glsl.Declaration {
	return glsl.Uniforms(s.ComposedSource())
}

// Attributes returns the attributes declared in the composed source.
func (s *Shader) Attributes() []glsl.Declaration {
	return glsl.Attributes(s.ComposedSource())
}

// Activate compiles the shader if needed. Compilation fails with
// ErrMissingCode for an empty template, PendingHookError when discovered
// hooks remain unbound, CompileError with line-ordered diagnostics when
// the driver rejects the source, and UnrecognizedDiagnosticError when the
// driver's log matches no known vendor format.
func (s *Shader) Activate() error {
	return s.ensureReady(s)
}

// Deactivate is a no-op for shaders; it exists for lifecycle symmetry.
func (s *Shader) Deactivate() {}

// Delete releases the native shader object. Deleting a never-created or
// already-deleted shader is a no-op.
func (s *Shader) Delete() {
	s.release(s)
}

func (s *Shader) create() error {
	logger().Debug("gpu: creating shader", slog.String("stage", s.stage.String()), slog.String("origin", s.origin))
	h, err := s.Driver().CreateShader(s.stage)
	if err != nil {
		return fmt.Errorf("gloo: creating %s shader: %w", s.stage, err)
	}
	s.handle = h
	return nil
}

func (s *Shader) update() error {
	if strings.TrimSpace(s.template) == "" {
		return ErrMissingCode
	}
	if pending := s.PendingHooks(); len(pending) > 0 {
		return &PendingHookError{Stage: s.stage, Hooks: pending}
	}

	code := s.ComposedSource()
	if s.version != "" {
		code = "#version " + s.version + "\n" + code
	}

	logger().Debug("gpu: compiling shader", slog.String("stage", s.stage.String()), slog.String("origin", s.origin))
	drv := s.Driver()
	drv.ShaderSource(s.handle, code)
	if drv.CompileShader(s.handle) {
		return nil
	}

	log := drv.ShaderInfoLog(s.handle)
	diags, err := glsl.ParseCompileLog(log)
	if err != nil {
		return &UnrecognizedDiagnosticError{Stage: s.stage, Log: log}
	}
	for _, d := range diags {
		logger().Error("gpu: shader compile error",
			slog.String("stage", s.stage.String()),
			slog.String("origin", s.origin),
			slog.Int("line", d.Line),
			slog.String("message", d.Message))
	}
	return &CompileError{Stage: s.stage, Diagnostics: diags}
}

func (s *Shader) destroy() {
	logger().Debug("gpu: deleting shader", slog.String("stage", s.stage.String()), slog.String("origin", s.origin))
	s.Driver().DeleteShader(s.handle)
}

// GeometryShader is a Shader for the geometry stage, carrying the
// pre-link program parameters the stage needs: the maximum number of
// output vertices and the input/output primitive topologies.
type GeometryShader struct {
	Shader

	verticesOut int
	inputType   driver.Primitive
	outputType  driver.Primitive
}

// NewGeometryShader creates a geometry shader from a source designator.
// verticesOut is the maximum number of vertices the stage may emit; input
// and output describe the primitive topologies consumed and produced.
func NewGeometryShader(source string, verticesOut int, input, output driver.Primitive, opts ...Option) (*GeometryShader, error) {
	s, err := newShader(driver.GeometryStage, source, buildConfig(opts))
	if err != nil {
		return nil, err
	}
	return &GeometryShader{
		Shader:      *s,
		verticesOut: verticesOut,
		inputType:   input,
		outputType:  output,
	}, nil
}

// VerticesOut returns the maximum number of output vertices.
func (g *GeometryShader) VerticesOut() int { return g.verticesOut }

// InputType returns the input primitive topology.
func (g *GeometryShader) InputType() driver.Primitive { return g.inputType }

// OutputType returns the output primitive topology.
func (g *GeometryShader) OutputType() driver.Primitive { return g.outputType }
