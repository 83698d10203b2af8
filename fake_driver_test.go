package gloo

import (
	"fmt"
	"strings"

	"github.com/gogpu/gloo/driver"
)

// fakeDriver is a scriptable driver that records every call. Tests
// script failure modes and the active variable lists the "linker"
// reports, then assert on the recorded call sequence.
type fakeDriver struct {
	calls []string

	// compileLogs scripts a compile failure per stage; the value is the
	// info log the driver returns.
	compileLogs map[driver.ShaderStage]string

	// linkLog scripts a link failure; non-empty means LinkProgram fails.
	linkLog string

	// bufferErr scripts a buffer-creation failure.
	bufferErr error

	activeUniforms   []driver.ActiveVar
	activeAttributes []driver.ActiveVar
	uniformLocs      map[string]int32
	attribLocs       map[string]int32

	next     driver.Handle
	stages   map[driver.Handle]driver.ShaderStage
	sources  map[driver.Handle]string
	attached map[driver.Handle][]driver.Handle
	params   map[driver.ProgramParam]int32

	deletedShaders  int
	deletedPrograms int
	deletedBuffers  int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		compileLogs: make(map[driver.ShaderStage]string),
		uniformLocs: make(map[string]int32),
		attribLocs:  make(map[string]int32),
		stages:      make(map[driver.Handle]driver.ShaderStage),
		sources:     make(map[driver.Handle]string),
		attached:    make(map[driver.Handle][]driver.Handle),
		params:      make(map[driver.ProgramParam]int32),
	}
}

func (d *fakeDriver) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

// callCount counts recorded calls whose name matches prefix.
func (d *fakeDriver) callCount(prefix string) int {
	n := 0
	for _, c := range d.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (d *fakeDriver) newHandle() driver.Handle {
	d.next++
	return d.next
}

func (d *fakeDriver) CreateShader(stage driver.ShaderStage) (driver.Handle, error) {
	h := d.newHandle()
	d.stages[h] = stage
	d.record("CreateShader(%s)", stage)
	return h, nil
}

func (d *fakeDriver) ShaderSource(shader driver.Handle, source string) {
	d.sources[shader] = source
	d.record("ShaderSource(%d)", shader)
}

func (d *fakeDriver) CompileShader(shader driver.Handle) bool {
	d.record("CompileShader(%d)", shader)
	_, fail := d.compileLogs[d.stages[shader]]
	return !fail
}

func (d *fakeDriver) ShaderInfoLog(shader driver.Handle) string {
	return d.compileLogs[d.stages[shader]]
}

func (d *fakeDriver) DeleteShader(shader driver.Handle) {
	d.record("DeleteShader(%d)", shader)
	d.deletedShaders++
}

func (d *fakeDriver) CreateProgram() (driver.Handle, error) {
	h := d.newHandle()
	d.record("CreateProgram()")
	return h, nil
}

func (d *fakeDriver) AttachShader(program, shader driver.Handle) {
	d.attached[program] = append(d.attached[program], shader)
	d.record("AttachShader(%d, %d)", program, shader)
}

func (d *fakeDriver) DetachShader(program, shader driver.Handle) {
	list := d.attached[program]
	for i, h := range list {
		if h == shader {
			d.attached[program] = append(list[:i], list[i+1:]...)
			break
		}
	}
	d.record("DetachShader(%d, %d)", program, shader)
}

func (d *fakeDriver) AttachedShaders(program driver.Handle) []driver.Handle {
	return append([]driver.Handle(nil), d.attached[program]...)
}

func (d *fakeDriver) ProgramParameter(program driver.Handle, param driver.ProgramParam, value int32) {
	d.params[param] = value
	d.record("ProgramParameter(%d, %#x, %d)", program, uint32(param), value)
}

func (d *fakeDriver) LinkProgram(program driver.Handle) bool {
	d.record("LinkProgram(%d)", program)
	return d.linkLog == ""
}

func (d *fakeDriver) ProgramInfoLog(driver.Handle) string {
	return d.linkLog
}

func (d *fakeDriver) UseProgram(program driver.Handle) {
	d.record("UseProgram(%d)", program)
}

func (d *fakeDriver) DeleteProgram(program driver.Handle) {
	d.record("DeleteProgram(%d)", program)
	d.deletedPrograms++
}

func (d *fakeDriver) ActiveUniforms(driver.Handle) []driver.ActiveVar {
	return append([]driver.ActiveVar(nil), d.activeUniforms...)
}

func (d *fakeDriver) ActiveAttributes(driver.Handle) []driver.ActiveVar {
	return append([]driver.ActiveVar(nil), d.activeAttributes...)
}

func (d *fakeDriver) UniformLocation(_ driver.Handle, name string) int32 {
	if loc, ok := d.uniformLocs[name]; ok {
		return loc
	}
	return -1
}

func (d *fakeDriver) AttribLocation(_ driver.Handle, name string) int32 {
	if loc, ok := d.attribLocs[name]; ok {
		return loc
	}
	return -1
}

func (d *fakeDriver) UniformFloats(location int32, typ driver.DataType, data []float32) {
	d.record("UniformFloats(%d, %v)", location, data)
}

func (d *fakeDriver) UniformInts(location int32, typ driver.DataType, data []int32) {
	d.record("UniformInts(%d, %v)", location, data)
}

func (d *fakeDriver) CreateBuffer() (driver.Handle, error) {
	if d.bufferErr != nil {
		return driver.InvalidHandle, d.bufferErr
	}
	h := d.newHandle()
	d.record("CreateBuffer()")
	return h, nil
}

func (d *fakeDriver) BindBuffer(target driver.BufferTarget, buffer driver.Handle) {
	d.record("BindBuffer(%#x, %d)", uint32(target), buffer)
}

func (d *fakeDriver) BufferData(target driver.BufferTarget, data []byte, _ driver.BufferUsage) {
	d.record("BufferData(%#x, %d bytes)", uint32(target), len(data))
}

func (d *fakeDriver) BufferSubData(target driver.BufferTarget, offset int, data []byte) {
	d.record("BufferSubData(%#x, %d, %d bytes)", uint32(target), offset, len(data))
}

func (d *fakeDriver) DeleteBuffer(driver.Handle) {
	d.record("DeleteBuffer()")
	d.deletedBuffers++
}

func (d *fakeDriver) EnableVertexAttrib(location int32) {
	d.record("EnableVertexAttrib(%d)", location)
}

func (d *fakeDriver) DisableVertexAttrib(location int32) {
	d.record("DisableVertexAttrib(%d)", location)
}

func (d *fakeDriver) VertexAttribPointer(location, components int32, _ driver.DataType, _ bool, stride, offset int) {
	d.record("VertexAttribPointer(%d, %d, stride=%d, offset=%d)", location, components, stride, offset)
}

func (d *fakeDriver) ActiveTexture(unit int) {
	d.record("ActiveTexture(%d)", unit)
}

func (d *fakeDriver) CreateTexture() (driver.Handle, error) {
	h := d.newHandle()
	d.record("CreateTexture()")
	return h, nil
}

func (d *fakeDriver) BindTexture(texture driver.Handle) {
	d.record("BindTexture(%d)", texture)
}

func (d *fakeDriver) TexImage2D(width, height int, _ []byte) {
	d.record("TexImage2D(%dx%d)", width, height)
}

func (d *fakeDriver) DeleteTexture(driver.Handle) {
	d.record("DeleteTexture()")
}

func (d *fakeDriver) DrawArrays(mode driver.Primitive, first, count int) {
	d.record("DrawArrays(%d, %d, %d)", mode, first, count)
}

func (d *fakeDriver) DrawElements(mode driver.Primitive, count int, typ driver.DataType, offset int) {
	d.record("DrawElements(%d, %d, %#x, %d)", mode, count, uint32(typ), offset)
}
