package gloo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gloo/driver"
	"github.com/gogpu/gloo/glsl"
)

// Sentinel errors for conditions that carry no payload.
var (
	// ErrMissingCode is returned when a shader is compiled with no source.
	ErrMissingCode = errors.New("gloo: shader has no source code")

	// ErrNoAttributesBound is returned by a non-indexed draw when no
	// attribute has data bound, so no vertex count can be derived.
	ErrNoAttributesBound = errors.New("gloo: draw with no attribute data bound")
)

// MissingShaderError is returned when a program is constructed without a
// required shader stage. Vertex and fragment are required; geometry is
// optional.
type MissingShaderError struct {
	Stage driver.ShaderStage
}

func (e *MissingShaderError) Error() string {
	return fmt.Sprintf("gloo: program requires a %s shader", e.Stage)
}

// UnknownHookError is returned when a hook name was never discovered in the
// shader's raw template.
type UnknownHookError struct {
	Name string
}

func (e *UnknownHookError) Error() string {
	return fmt.Sprintf("gloo: unknown hook %q", e.Name)
}

// PendingHookError is returned when compilation is attempted while hooks
// discovered in the template are still unbound. A shader with pending hooks
// never reaches the GPU compiler.
type PendingHookError struct {
	Stage driver.ShaderStage
	Hooks []string
}

func (e *PendingHookError) Error() string {
	return fmt.Sprintf("gloo: %s shader has pending hooks (%s), cannot compile",
		e.Stage, strings.Join(e.Hooks, ", "))
}

// CompileError is returned when the driver rejects a shader. Diagnostics
// are ordered by source line, parsed from the vendor compile log.
type CompileError struct {
	Stage       driver.ShaderStage
	Diagnostics []glsl.Diagnostic
}

func (e *CompileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gloo: %s shader compilation failed", e.Stage)
	for _, d := range e.Diagnostics {
		fmt.Fprintf(&b, "\n  line %d: %s", d.Line, d.Message)
	}
	return b.String()
}

// UnrecognizedDiagnosticError is returned when a compile log matches none
// of the known vendor formats. Log carries the raw driver text so nothing
// is silently discarded.
type UnrecognizedDiagnosticError struct {
	Stage driver.ShaderStage
	Log   string
}

func (e *UnrecognizedDiagnosticError) Error() string {
	return fmt.Sprintf("gloo: %s shader failed with unrecognized diagnostics:\n%s",
		e.Stage, e.Log)
}

// LinkError is returned when program linking fails. Log carries the raw
// driver link log.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "gloo: program link failed:\n" + e.Log
}

// UnknownBindingError is returned when a name resolves to neither a hook,
// a uniform, nor an attribute of the program.
type UnknownBindingError struct {
	Name string
}

func (e *UnknownBindingError) Error() string {
	return fmt.Sprintf("gloo: unknown binding %q (no corresponding hook, uniform or attribute)", e.Name)
}
