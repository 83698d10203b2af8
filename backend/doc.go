// Package backend provides a pluggable graphics backend abstraction.
//
// A backend owns a [driver.Driver], the native API gloo objects talk to.
// Backends register themselves via init() functions and are selected at
// runtime; the null backend is always available and runs entirely in Go,
// the gl41 backend drives a real OpenGL context:
//
//	import _ "github.com/gogpu/gloo/backend/gl41"
//
// # Backend Selection
//
// Use Default() for the best available backend, or Get() for a specific
// one by name:
//
//	// Best available (gl41 when imported, null otherwise)
//	b := backend.Default()
//
//	// Or request a specific backend
//	b := backend.Get(backend.BackendNull)
//
// Backends are memoized: Get and Default hand out one shared, initialized
// instance per name, so every gloo object created without WithDriver ends
// up on the same driver.
//
// # The Null Backend
//
// The null backend implements the whole driver surface in memory. It
// compiles every shader successfully, links by collecting the attached
// sources, and reports active variables by scanning the GLSL text for
// declared names that are actually used. It exists for tests and for
// composing shader source without a GPU.
package backend
