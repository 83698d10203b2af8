// Package driver defines the seam between gloo and a native 3D graphics API.
//
// The [Driver] interface exposes the small set of object-based primitives
// gloo needs: create/compile/link shader objects, query active variables,
// bind buffers and issue draw calls. The shape and the numeric enum values
// follow OpenGL so a GL-backed driver is a pass-through, but any API that
// can implement these primitives works; the built-in null backend implements
// them entirely in Go.
//
// All Driver calls must be made from the thread that owns the current
// graphics context. Drivers are not required to be safe for concurrent use.
package driver

// Handle is an opaque identifier for a driver-side object (shader, program,
// buffer, texture). The zero value means "not yet created".
type Handle uint32

// InvalidHandle is the zero, never-created handle.
const InvalidHandle Handle = 0

// ActiveVar describes one variable the linker actually kept, as reported by
// the driver. Array variables are reported once, GL-style: Name carries the
// "[0]" suffix and Size is the highest used index plus one.
type ActiveVar struct {
	Name string
	Size int
	Type DataType
}

// Driver is the native graphics API consumed by gloo.
type Driver interface {
	// CreateShader creates an empty shader object for the given stage.
	CreateShader(stage ShaderStage) (Handle, error)

	// ShaderSource replaces the source of a shader object.
	ShaderSource(shader Handle, source string)

	// CompileShader compiles the shader's current source.
	// It reports whether compilation succeeded.
	CompileShader(shader Handle) bool

	// ShaderInfoLog returns the compiler log for a shader object.
	ShaderInfoLog(shader Handle) string

	// DeleteShader destroys a shader object.
	DeleteShader(shader Handle)

	// CreateProgram creates an empty program object.
	CreateProgram() (Handle, error)

	// AttachShader attaches a shader object to a program.
	AttachShader(program, shader Handle)

	// DetachShader detaches a shader object from a program.
	DetachShader(program, shader Handle)

	// AttachedShaders lists the shader objects attached to a program.
	AttachedShaders(program Handle) []Handle

	// ProgramParameter sets a pre-link program parameter
	// (geometry topology and output vertex count).
	ProgramParameter(program Handle, param ProgramParam, value int32)

	// LinkProgram links the program. It reports whether linking succeeded.
	LinkProgram(program Handle) bool

	// ProgramInfoLog returns the linker log for a program object.
	ProgramInfoLog(program Handle) string

	// UseProgram makes the program current. InvalidHandle unbinds.
	UseProgram(program Handle)

	// DeleteProgram destroys a program object.
	DeleteProgram(program Handle)

	// ActiveUniforms returns the uniforms the linker kept.
	ActiveUniforms(program Handle) []ActiveVar

	// ActiveAttributes returns the vertex attributes the linker kept.
	ActiveAttributes(program Handle) []ActiveVar

	// UniformLocation returns the location of a named uniform, or -1.
	UniformLocation(program Handle, name string) int32

	// AttribLocation returns the location of a named attribute, or -1.
	AttribLocation(program Handle, name string) int32

	// UniformFloats uploads float-class uniform data (float, vecN, matN).
	UniformFloats(location int32, typ DataType, data []float32)

	// UniformInts uploads int-class uniform data (int, ivecN, bool, bvecN,
	// sampler units).
	UniformInts(location int32, typ DataType, data []int32)

	// CreateBuffer creates a buffer object.
	CreateBuffer() (Handle, error)

	// BindBuffer binds a buffer to a target. InvalidHandle unbinds.
	BindBuffer(target BufferTarget, buffer Handle)

	// BufferData allocates and fills the buffer bound to target.
	BufferData(target BufferTarget, data []byte, usage BufferUsage)

	// BufferSubData updates a range of the buffer bound to target.
	BufferSubData(target BufferTarget, offset int, data []byte)

	// DeleteBuffer destroys a buffer object.
	DeleteBuffer(buffer Handle)

	// EnableVertexAttrib enables the vertex attribute array at location.
	EnableVertexAttrib(location int32)

	// DisableVertexAttrib disables the vertex attribute array at location.
	DisableVertexAttrib(location int32)

	// VertexAttribPointer describes the layout of the attribute array at
	// location, reading from the buffer currently bound to ArrayBuffer.
	VertexAttribPointer(location int32, components int32, typ DataType, normalized bool, stride, offset int)

	// ActiveTexture selects the active texture unit.
	ActiveTexture(unit int)

	// CreateTexture creates a texture object.
	CreateTexture() (Handle, error)

	// BindTexture binds a 2D texture to the active unit.
	BindTexture(texture Handle)

	// TexImage2D uploads RGBA8 pixel data to the bound 2D texture.
	TexImage2D(width, height int, pixels []byte)

	// DeleteTexture destroys a texture object.
	DeleteTexture(texture Handle)

	// DrawArrays draws count vertices starting at first.
	DrawArrays(mode Primitive, first, count int)

	// DrawElements draws count indices of the given element type from the
	// buffer bound to ElementArrayBuffer, starting at byte offset.
	DrawElements(mode Primitive, count int, typ DataType, offset int)
}
