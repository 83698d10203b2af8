package gloo

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/gloo/driver"
)

// fakeSnippet is a minimal Snippet for composition tests.
type fakeSnippet struct {
	name     string
	globals  map[string]string
	aliases  map[string]string
	deps     []Snippet
	children map[string]Snippet
	code     string

	lastSub      string
	lastArgs     string
	lastOverride bool
}

func (s *fakeSnippet) Globals() map[string]string { return s.globals }
func (s *fakeSnippet) Aliases() map[string]string { return s.aliases }
func (s *fakeSnippet) Dependencies() []Snippet    { return s.deps }

func (s *fakeSnippet) Child(name string) (Snippet, bool) {
	c, ok := s.children[name]
	return c, ok
}

func (s *fakeSnippet) MangledCall(sub, args string, override bool) string {
	s.lastSub, s.lastArgs, s.lastOverride = sub, args, override
	call := s.name
	if sub != "" {
		call += "_" + sub
	}
	return call + "(" + args + ")"
}

func (s *fakeSnippet) MangledCode() string { return s.code }

func TestNewShader_HookDiscovery(t *testing.T) {
	src := "a = <transform>;\nb = <colormap.sample>;\nc = <transform(x)>;"
	s, err := NewVertexShader(src)
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	want := []string{"transform", "colormap"}
	if got := s.Hooks(); !reflect.DeepEqual(got, want) {
		t.Errorf("Hooks = %v, want %v", got, want)
	}

	// Discovery ran against the raw template; binding a hook must not
	// change the discovered set.
	if err := s.SetHook("transform", "identity"); err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	if got := s.Hooks(); !reflect.DeepEqual(got, want) {
		t.Errorf("Hooks after binding = %v, want %v", got, want)
	}
}

func TestShader_SetHookUnknown(t *testing.T) {
	s, err := NewFragmentShader("void main() { gl_FragColor = <color>; }")
	if err != nil {
		t.Fatalf("NewFragmentShader: %v", err)
	}
	err = s.SetHook("nonexistent", "x")
	var unknownErr *UnknownHookError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("err = %v, want UnknownHookError", err)
	}
	if unknownErr.Name != "nonexistent" {
		t.Errorf("Name = %q, want nonexistent", unknownErr.Name)
	}
}

func TestShader_ComposedSource_StringHook(t *testing.T) {
	s, err := NewVertexShader("void main() { gl_Position = <transform>(position); }")
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.SetHook("transform", "identity"); err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	got := s.ComposedSource()
	if !strings.Contains(got, "gl_Position = identity(position);") {
		t.Errorf("literal substitution failed:\n%s", got)
	}
	if !strings.Contains(got, "#define GLOO_VERTEX_SHADER") {
		t.Errorf("stage define missing:\n%s", got)
	}
}

func TestShader_ComposedSource_DottedStringHook(t *testing.T) {
	s, err := NewVertexShader("v = <transform.forward>;\nw = <transform.inverse>;")
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.SetHook("transform", "trans"); err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	got := s.ComposedSource()
	if !strings.Contains(got, "v = trans.forward;") || !strings.Contains(got, "w = trans.inverse;") {
		t.Errorf("dotted literal substitution failed:\n%s", got)
	}
}

func TestShader_ComposedSource_SnippetCall(t *testing.T) {
	sn := &fakeSnippet{name: "scale_0", code: "vec2 scale_0(vec2 p) { return p; }\n"}
	s, err := NewVertexShader("pos = <transform(a_position)>;")
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.SetHook("transform", sn); err != nil {
		t.Fatalf("SetHook: %v", err)
	}

	got := s.ComposedSource()
	if !strings.Contains(got, "pos = scale_0(a_position);") {
		t.Errorf("snippet call substitution failed:\n%s", got)
	}
	if !strings.Contains(got, "vec2 scale_0(vec2 p)") {
		t.Errorf("snippet code missing from preamble:\n%s", got)
	}
	if sn.lastArgs != "a_position" {
		t.Errorf("args = %q, want a_position", sn.lastArgs)
	}
	if sn.lastOverride {
		t.Error("override flagged without ! marker")
	}
}

func TestShader_ComposedSource_SnippetGlobalAndAlias(t *testing.T) {
	sn := &fakeSnippet{
		name:    "cmap_0",
		globals: map[string]string{"u_scale_cmap_0": "u_scale_cmap_0"},
		aliases: map[string]string{"scale": "u_scale_cmap_0"},
	}
	s, err := NewFragmentShader("a = <cmap.u_scale_cmap_0>;\nb = <cmap.scale>;")
	if err != nil {
		t.Fatalf("NewFragmentShader: %v", err)
	}
	if err := s.SetHook("cmap", sn); err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	got := s.ComposedSource()
	if !strings.Contains(got, "a = u_scale_cmap_0;") {
		t.Errorf("global substitution failed:\n%s", got)
	}
	if !strings.Contains(got, "b = u_scale_cmap_0;") {
		t.Errorf("alias substitution failed:\n%s", got)
	}
}

func TestShader_ComposedSource_Override(t *testing.T) {
	sn := &fakeSnippet{name: "f_0"}
	s, err := NewVertexShader("x = <f.apply!(2.0 * y)>;")
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.SetHook("f", sn); err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	s.ComposedSource()
	if !sn.lastOverride {
		t.Error("override marker not passed through")
	}
	if sn.lastSub != "apply" {
		t.Errorf("sub = %q, want apply (without marker)", sn.lastSub)
	}
	if sn.lastArgs != "2.0 * y" {
		t.Errorf("args = %q, want call-site arguments", sn.lastArgs)
	}
}

func TestShader_ComposedSource_ChildPath(t *testing.T) {
	child := &fakeSnippet{name: "inner_0"}
	parent := &fakeSnippet{
		name:     "outer_0",
		children: map[string]Snippet{"inner": child},
	}
	s, err := NewVertexShader("x = <chain.inner.apply(v)>;")
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.SetHook("chain", parent); err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	got := s.ComposedSource()
	if !strings.Contains(got, "x = inner_0_apply(v);") {
		t.Errorf("nested snippet call failed:\n%s", got)
	}
}

func TestShader_ComposedSource_DependencyDedup(t *testing.T) {
	shared := &fakeSnippet{name: "shared", code: "float shared_helper();\n"}
	a := &fakeSnippet{name: "a_0", code: "// code a\n", deps: []Snippet{shared}}
	b := &fakeSnippet{name: "b_0", code: "// code b\n", deps: []Snippet{shared}}

	s, err := NewVertexShader("x = <f>;\ny = <g>;")
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.SetHook("f", a); err != nil {
		t.Fatalf("SetHook f: %v", err)
	}
	if err := s.SetHook("g", b); err != nil {
		t.Fatalf("SetHook g: %v", err)
	}

	got := s.ComposedSource()
	if n := strings.Count(got, "float shared_helper();"); n != 1 {
		t.Errorf("shared dependency emitted %d times, want 1:\n%s", n, got)
	}
}

// Composition is a pure function of the template and the current
// bindings: repeated composition and rebinding never stack.
func TestShader_ComposedSource_Idempotent(t *testing.T) {
	s, err := NewVertexShader("pos = <transform>(p);")
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.SetHook("transform", "first"); err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	one := s.ComposedSource()
	if two := s.ComposedSource(); two != one {
		t.Errorf("repeated composition differs:\n%s\n----\n%s", one, two)
	}

	if err := s.SetHook("transform", "second"); err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	got := s.ComposedSource()
	if strings.Contains(got, "first") {
		t.Errorf("stale binding survived rebinding:\n%s", got)
	}
	if !strings.Contains(got, "pos = second(p);") {
		t.Errorf("rebinding not applied:\n%s", got)
	}
}

func TestShader_PendingHooks(t *testing.T) {
	fd := newFakeDriver()
	s, err := NewVertexShader("a = <f>; b = <g>;", WithDriver(fd))
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.SetHook("f", "bound"); err != nil {
		t.Fatalf("SetHook: %v", err)
	}

	err = s.Activate()
	var pendingErr *PendingHookError
	if !errors.As(err, &pendingErr) {
		t.Fatalf("err = %v, want PendingHookError", err)
	}
	if !reflect.DeepEqual(pendingErr.Hooks, []string{"g"}) {
		t.Errorf("pending = %v, want [g]", pendingErr.Hooks)
	}

	if err := s.SetHook("g", "alsoBound"); err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	if err := s.Activate(); err != nil {
		t.Errorf("Activate after binding all hooks: %v", err)
	}
}

func TestShader_MissingCode(t *testing.T) {
	fd := newFakeDriver()
	s, err := NewVertexShader("   \n", WithDriver(fd))
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.Activate(); !errors.Is(err, ErrMissingCode) {
		t.Errorf("err = %v, want ErrMissingCode", err)
	}
}

func TestShader_CompileError(t *testing.T) {
	fd := newFakeDriver()
	fd.compileLogs[driver.VertexStage] = "ERROR: 0:2: 'foo' : undeclared identifier"

	s, err := NewVertexShader("void main() { x = foo; }", WithDriver(fd))
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	err = s.Activate()
	var compileErr *CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("err = %v, want CompileError", err)
	}
	if compileErr.Stage != driver.VertexStage {
		t.Errorf("Stage = %v, want vertex", compileErr.Stage)
	}
	if len(compileErr.Diagnostics) != 1 || compileErr.Diagnostics[0].Line != 2 {
		t.Errorf("Diagnostics = %v", compileErr.Diagnostics)
	}
}

func TestShader_UnrecognizedDiagnostics(t *testing.T) {
	fd := newFakeDriver()
	fd.compileLogs[driver.FragmentStage] = "something went wrong"

	s, err := NewFragmentShader("void main() {}", WithDriver(fd))
	if err != nil {
		t.Fatalf("NewFragmentShader: %v", err)
	}
	err = s.Activate()
	var rawErr *UnrecognizedDiagnosticError
	if !errors.As(err, &rawErr) {
		t.Fatalf("err = %v, want UnrecognizedDiagnosticError", err)
	}
	if rawErr.Log != "something went wrong" {
		t.Errorf("Log = %q, raw text must be preserved", rawErr.Log)
	}
}

func TestShader_VersionPrecedence(t *testing.T) {
	// Explicit option beats pragma beats default.
	s, err := NewVertexShader("#version 150\nvoid main() {}", WithVersion("330"))
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if got := s.Version(); got != "330" {
		t.Errorf("Version = %q, want 330", got)
	}

	s, err = NewVertexShader("#version 150\nvoid main() {}")
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if got := s.Version(); got != "150" {
		t.Errorf("Version = %q, want 150", got)
	}

	s, err = NewVertexShader("void main() {}")
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if got := s.Version(); got != DefaultVersion {
		t.Errorf("Version = %q, want %q", got, DefaultVersion)
	}
}

func TestShader_CompiledSourceCarriesVersion(t *testing.T) {
	fd := newFakeDriver()
	s, err := NewVertexShader("void main() {}", WithDriver(fd))
	if err != nil {
		t.Fatalf("NewVertexShader: %v", err)
	}
	if err := s.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	src := fd.sources[s.Handle()]
	if !strings.HasPrefix(src, "#version 120\n") {
		t.Errorf("compiled source must start with the version pragma:\n%s", src)
	}
	if strings.Count(src, "#version") != 1 {
		t.Errorf("exactly one pragma expected:\n%s", src)
	}
}
