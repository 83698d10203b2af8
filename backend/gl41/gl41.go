// Package gl41 provides the OpenGL 4.1 core backend.
//
// The driver is a thin pass-through: gloo's enum values are the GL
// numeric constants, so most calls forward directly. A current OpenGL
// context is required on the calling thread before Init; create one with
// GLFW or SDL first. Importing the package registers the backend:
//
//	import _ "github.com/gogpu/gloo/backend/gl41"
package gl41

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/gloo/backend"
	"github.com/gogpu/gloo/driver"
)

// init registers the backend on package import.
func init() {
	backend.Register(backend.BackendGL41, func() backend.Backend {
		return New()
	})
}

// Backend drives a real OpenGL 4.1 core context.
type Backend struct {
	initialized bool
	vao         uint32
	drv         glDriver
}

// New creates the GL backend. Init must run on the thread that owns the
// current GL context.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendGL41
}

// Init loads the GL function pointers from the current context and binds
// a vertex array object. Core profiles refuse vertex attribute calls
// without one.
func (b *Backend) Init() error {
	if b.initialized {
		return nil
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl41: loading OpenGL: %w", err)
	}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	b.initialized = true
	return nil
}

// Close releases the vertex array object.
func (b *Backend) Close() {
	if !b.initialized {
		return
	}
	gl.BindVertexArray(0)
	gl.DeleteVertexArrays(1, &b.vao)
	b.vao = 0
	b.initialized = false
}

// Driver returns the GL driver.
func (b *Backend) Driver() driver.Driver {
	return b.drv
}

// glDriver forwards driver calls to OpenGL. It is stateless; all state
// lives in the GL context.
type glDriver struct{}

func (glDriver) CreateShader(stage driver.ShaderStage) (driver.Handle, error) {
	h := gl.CreateShader(uint32(stage))
	if h == 0 {
		return driver.InvalidHandle, fmt.Errorf("gl41: glCreateShader(%s) failed", stage)
	}
	return driver.Handle(h), nil
}

func (glDriver) ShaderSource(shader driver.Handle, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(shader), 1, csources, nil)
	free()
}

func (glDriver) CompileShader(shader driver.Handle) bool {
	gl.CompileShader(uint32(shader))
	var status int32
	gl.GetShaderiv(uint32(shader), gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (glDriver) ShaderInfoLog(shader driver.Handle) string {
	var length int32
	gl.GetShaderiv(uint32(shader), gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length)+1)
	gl.GetShaderInfoLog(uint32(shader), length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (glDriver) DeleteShader(shader driver.Handle) {
	gl.DeleteShader(uint32(shader))
}

func (glDriver) CreateProgram() (driver.Handle, error) {
	h := gl.CreateProgram()
	if h == 0 {
		return driver.InvalidHandle, fmt.Errorf("gl41: glCreateProgram failed")
	}
	return driver.Handle(h), nil
}

func (glDriver) AttachShader(program, shader driver.Handle) {
	gl.AttachShader(uint32(program), uint32(shader))
}

func (glDriver) DetachShader(program, shader driver.Handle) {
	gl.DetachShader(uint32(program), uint32(shader))
}

func (glDriver) AttachedShaders(program driver.Handle) []driver.Handle {
	var n int32
	gl.GetProgramiv(uint32(program), gl.ATTACHED_SHADERS, &n)
	if n == 0 {
		return nil
	}
	raw := make([]uint32, n)
	gl.GetAttachedShaders(uint32(program), n, nil, &raw[0])
	out := make([]driver.Handle, n)
	for i, h := range raw {
		out[i] = driver.Handle(h)
	}
	return out
}

func (glDriver) ProgramParameter(program driver.Handle, param driver.ProgramParam, value int32) {
	gl.ProgramParameteri(uint32(program), uint32(param), value)
}

func (glDriver) LinkProgram(program driver.Handle) bool {
	gl.LinkProgram(uint32(program))
	var status int32
	gl.GetProgramiv(uint32(program), gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (glDriver) ProgramInfoLog(program driver.Handle) string {
	var length int32
	gl.GetProgramiv(uint32(program), gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length)+1)
	gl.GetProgramInfoLog(uint32(program), length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (glDriver) UseProgram(program driver.Handle) {
	gl.UseProgram(uint32(program))
}

func (glDriver) DeleteProgram(program driver.Handle) {
	gl.DeleteProgram(uint32(program))
}

func (glDriver) ActiveUniforms(program driver.Handle) []driver.ActiveVar {
	return activeVars(program, gl.ACTIVE_UNIFORMS, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform)
}

func (glDriver) ActiveAttributes(program driver.Handle) []driver.ActiveVar {
	return activeVars(program, gl.ACTIVE_ATTRIBUTES, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib)
}

// activeVars runs the shared glGetActive{Uniform,Attrib} query loop.
func activeVars(program driver.Handle, countParam, lengthParam uint32,
	query func(program, index uint32, bufSize int32, length *int32, size *int32, xtype *uint32, name *uint8)) []driver.ActiveVar {

	var count, bufSize int32
	gl.GetProgramiv(uint32(program), countParam, &count)
	gl.GetProgramiv(uint32(program), lengthParam, &bufSize)
	return collectActiveVars(count, bufSize,
		func(index uint32, bufSize int32, length, size *int32, xtype *uint32, name *uint8) {
			query(uint32(program), index, bufSize, length, size, xtype, name)
		})
}

// collectActiveVars issues one query per index. Every name is copied out
// of a fresh buffer: the driver writes through the raw pointer, so a
// buffer shared across iterations would alias all returned names.
func collectActiveVars(count, bufSize int32,
	query func(index uint32, bufSize int32, length, size *int32, xtype *uint32, name *uint8)) []driver.ActiveVar {

	if count == 0 {
		return nil
	}
	if bufSize < 1 {
		bufSize = 1
	}
	out := make([]driver.ActiveVar, 0, count)
	for i := int32(0); i < count; i++ {
		buf := make([]byte, int(bufSize)+1)
		var length, size int32
		var xtype uint32
		query(uint32(i), bufSize, &length, &size, &xtype, &buf[0])
		out = append(out, driver.ActiveVar{
			Name: string(buf[:length]),
			Size: int(size),
			Type: driver.DataType(xtype),
		})
	}
	return out
}

func (glDriver) UniformLocation(program driver.Handle, name string) int32 {
	return gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
}

func (glDriver) AttribLocation(program driver.Handle, name string) int32 {
	return gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00"))
}

func (glDriver) UniformFloats(location int32, typ driver.DataType, data []float32) {
	if len(data) == 0 {
		return
	}
	p := &data[0]
	n := int32(len(data))
	switch typ {
	case driver.Float:
		gl.Uniform1fv(location, n, p)
	case driver.FloatVec2:
		gl.Uniform2fv(location, n/2, p)
	case driver.FloatVec3:
		gl.Uniform3fv(location, n/3, p)
	case driver.FloatVec4:
		gl.Uniform4fv(location, n/4, p)
	case driver.FloatMat2:
		gl.UniformMatrix2fv(location, n/4, false, p)
	case driver.FloatMat3:
		gl.UniformMatrix3fv(location, n/9, false, p)
	case driver.FloatMat4:
		gl.UniformMatrix4fv(location, n/16, false, p)
	}
}

func (glDriver) UniformInts(location int32, typ driver.DataType, data []int32) {
	if len(data) == 0 {
		return
	}
	p := &data[0]
	n := int32(len(data))
	switch typ {
	case driver.Int, driver.Bool, driver.Sampler1D, driver.Sampler2D, driver.SamplerCube:
		gl.Uniform1iv(location, n, p)
	case driver.IntVec2, driver.BoolVec2:
		gl.Uniform2iv(location, n/2, p)
	case driver.IntVec3, driver.BoolVec3:
		gl.Uniform3iv(location, n/3, p)
	case driver.IntVec4, driver.BoolVec4:
		gl.Uniform4iv(location, n/4, p)
	}
}

func (glDriver) CreateBuffer() (driver.Handle, error) {
	var h uint32
	gl.GenBuffers(1, &h)
	if h == 0 {
		return driver.InvalidHandle, fmt.Errorf("gl41: glGenBuffers failed")
	}
	return driver.Handle(h), nil
}

func (glDriver) BindBuffer(target driver.BufferTarget, buffer driver.Handle) {
	gl.BindBuffer(uint32(target), uint32(buffer))
}

func (glDriver) BufferData(target driver.BufferTarget, data []byte, usage driver.BufferUsage) {
	gl.BufferData(uint32(target), len(data), gl.Ptr(data), uint32(usage))
}

func (glDriver) BufferSubData(target driver.BufferTarget, offset int, data []byte) {
	gl.BufferSubData(uint32(target), offset, len(data), gl.Ptr(data))
}

func (glDriver) DeleteBuffer(buffer driver.Handle) {
	h := uint32(buffer)
	gl.DeleteBuffers(1, &h)
}

func (glDriver) EnableVertexAttrib(location int32) {
	gl.EnableVertexAttribArray(uint32(location))
}

func (glDriver) DisableVertexAttrib(location int32) {
	gl.DisableVertexAttribArray(uint32(location))
}

func (glDriver) VertexAttribPointer(location, components int32, typ driver.DataType, normalized bool, stride, offset int) {
	gl.VertexAttribPointerWithOffset(uint32(location), components, uint32(typ), normalized, int32(stride), uintptr(offset))
}

func (glDriver) ActiveTexture(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
}

func (glDriver) CreateTexture() (driver.Handle, error) {
	var h uint32
	gl.GenTextures(1, &h)
	if h == 0 {
		return driver.InvalidHandle, fmt.Errorf("gl41: glGenTextures failed")
	}
	return driver.Handle(h), nil
}

func (glDriver) BindTexture(texture driver.Handle) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
}

func (glDriver) TexImage2D(width, height int, pixels []byte) {
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
}

func (glDriver) DeleteTexture(texture driver.Handle) {
	h := uint32(texture)
	gl.DeleteTextures(1, &h)
}

func (glDriver) DrawArrays(mode driver.Primitive, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (glDriver) DrawElements(mode driver.Primitive, count int, typ driver.DataType, offset int) {
	gl.DrawElementsWithOffset(uint32(mode), int32(count), uint32(typ), uintptr(offset))
}
