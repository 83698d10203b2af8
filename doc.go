// Package gloo composes GLSL shader source from templates and snippets and
// manages the GPU program lifecycle around the result.
//
// # Overview
//
// gloo is the shader-composition and GPU-resource layer of a plotting stack:
// a small macro-expanding linker for GLSL coupled to a lazy GPU object
// lifecycle and a name-based binding protocol between host data and GPU
// variable slots.
//
// A shader starts from a template containing hook placeholders:
//
//	attribute vec3 position;
//	void main() {
//	    gl_Position = <transform>(position);
//	}
//
// Hooks are filled with literal strings or with [Snippet] values, reusable
// parameterized GLSL fragments with their own declared variables and
// dependencies. Multiple instantiations of one snippet never collide: each
// invocation goes through the snippet's mangled names, and each reachable
// snippet's code is emitted exactly once ahead of the hooked body.
//
// # Quick Start
//
//	prog, err := gloo.NewProgram(vertexSrc, fragmentSrc, gloo.WithVertexCount(4))
//	if err != nil {
//	    return err
//	}
//	defer prog.Delete()
//
//	prog.Set("transform", "identity")        // fill a hook
//	prog.Set("position", positions)          // attribute data by name
//	prog.Set("color", []float32{1, 0, 0, 1}) // uniform data by name
//
//	err = prog.Draw(driver.TriangleStrip, nil)
//
// # Lifecycle
//
// Every GPU-backed object (shader, program, buffer, texture) is created
// lazily: nothing touches the GPU until first activation, and any dirtying
// write (hook change, data change) schedules a re-upload, re-compile or
// re-link on the next activation. Deletion is explicit and idempotent.
//
// After a successful link the program asks the driver which declared
// variables the linker actually kept; variables optimized away stay
// registered, silently accept data, and never reach the GPU.
//
// # Drivers
//
// All GPU access goes through the [driver.Driver] interface. The backend
// registry selects the best available driver: the gl41 backend (OpenGL 4.1
// via go-gl) when imported, otherwise the built-in null backend, which
// implements the whole contract in Go with lexical introspection so
// composition and lifecycle logic run without a GPU.
//
// # Threading
//
// gloo is single-threaded by design: every operation that touches the GPU
// must run on the thread owning the graphics context, and callers must
// serialize writes to a Program's or Shader's hook and variable maps.
// Sharing a Shader between Programs is possible but the last writer wins on
// hook and version state.
package gloo
