package gloo

import (
	"github.com/gogpu/gloo/driver"
)

// DefaultVersion is the GLSL version stamped onto compiled shaders when no
// #version pragma is present in the template and no WithVersion option is
// given.
const DefaultVersion = "120"

// Option configures shader and program construction. Each option documents
// which constructors it applies to; elsewhere it is ignored.
type Option func(*config)

// config holds optional construction state shared by the shader and
// program constructors.
type config struct {
	version     string
	driver      driver.Driver
	library     *Library
	vertexCount int
	geometry    *GeometryShader
}

func buildConfig(opts []Option) config {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.library == nil {
		cfg.library = DefaultLibrary
	}
	return cfg
}

// WithVersion sets the GLSL version requirement stamped ahead of the
// composed source at compile time. It overrides any #version pragma found
// in the template. Applies to all shader and program constructors; a
// program stamps its version onto every shader it owns.
func WithVersion(version string) Option {
	return func(c *config) {
		c.version = version
	}
}

// WithDriver pins the native API driver instead of using the default
// backend. Use this for dependency injection of a custom or test driver.
// Applies to all shader and program constructors.
func WithDriver(d driver.Driver) Option {
	return func(c *config) {
		c.driver = d
	}
}

// WithLibrary sets the source library used to resolve shader source
// designators and #include directives. Applies to all shader and program
// constructors. Defaults to [DefaultLibrary].
func WithLibrary(l *Library) Option {
	return func(c *config) {
		c.library = l
	}
}

// WithVertexCount pre-allocates the program's automatic vertex buffer for
// count vertices. The buffer's record layout is the union of all attribute
// layouts sorted by attribute name; it is allocated once and bound
// immediately. Applies to NewProgram only.
func WithVertexCount(count int) Option {
	return func(c *config) {
		c.vertexCount = count
	}
}

// WithGeometry attaches an optional geometry shader to the program.
// Applies to NewProgram only.
func WithGeometry(g *GeometryShader) Option {
	return func(c *config) {
		c.geometry = g
	}
}
