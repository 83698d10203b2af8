package backend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/gloo/driver"
	"github.com/gogpu/gloo/glsl"
)

// init registers the null backend on package import.
func init() {
	Register(BackendNull, func() Backend {
		return NewNullBackend()
	})
}

// NullBackend is a GPU-less backend whose driver runs entirely in
// memory. Shaders always compile, programs link by collecting the
// attached sources, and active variables are derived by scanning the
// GLSL text. It backs tests and offline source composition.
type NullBackend struct {
	drv *nullDriver
}

// NewNullBackend creates a new in-memory backend.
func NewNullBackend() *NullBackend {
	return &NullBackend{drv: newNullDriver()}
}

// Name returns the backend identifier.
func (b *NullBackend) Name() string {
	return BackendNull
}

// Init initializes the backend. It never fails.
func (b *NullBackend) Init() error {
	return nil
}

// Close drops all in-memory objects.
func (b *NullBackend) Close() {
	b.drv = newNullDriver()
}

// Driver returns the in-memory driver.
func (b *NullBackend) Driver() driver.Driver {
	return b.drv
}

type nullShader struct {
	stage    driver.ShaderStage
	source   string
	compiled bool
}

type nullProgram struct {
	attached   []driver.Handle
	params     map[driver.ProgramParam]int32
	linked     bool
	uniforms   []driver.ActiveVar
	attributes []driver.ActiveVar
	uniformLoc map[string]int32
	attribLoc  map[string]int32
}

// nullDriver implements driver.Driver with plain maps. Like a real GL
// context it is not safe for concurrent use.
type nullDriver struct {
	next     driver.Handle
	shaders  map[driver.Handle]*nullShader
	programs map[driver.Handle]*nullProgram
	buffers  map[driver.Handle][]byte
	textures map[driver.Handle][]byte

	bound   map[driver.BufferTarget]driver.Handle
	current driver.Handle
	unit    int
}

func newNullDriver() *nullDriver {
	return &nullDriver{
		shaders:  make(map[driver.Handle]*nullShader),
		programs: make(map[driver.Handle]*nullProgram),
		buffers:  make(map[driver.Handle][]byte),
		textures: make(map[driver.Handle][]byte),
		bound:    make(map[driver.BufferTarget]driver.Handle),
	}
}

func (d *nullDriver) newHandle() driver.Handle {
	d.next++
	return d.next
}

func (d *nullDriver) CreateShader(stage driver.ShaderStage) (driver.Handle, error) {
	h := d.newHandle()
	d.shaders[h] = &nullShader{stage: stage}
	return h, nil
}

func (d *nullDriver) ShaderSource(shader driver.Handle, source string) {
	if s := d.shaders[shader]; s != nil {
		s.source = source
		s.compiled = false
	}
}

func (d *nullDriver) CompileShader(shader driver.Handle) bool {
	s := d.shaders[shader]
	if s == nil {
		return false
	}
	s.compiled = true
	return true
}

func (d *nullDriver) ShaderInfoLog(driver.Handle) string { return "" }

func (d *nullDriver) DeleteShader(shader driver.Handle) {
	delete(d.shaders, shader)
}

func (d *nullDriver) CreateProgram() (driver.Handle, error) {
	h := d.newHandle()
	d.programs[h] = &nullProgram{
		params:     make(map[driver.ProgramParam]int32),
		uniformLoc: make(map[string]int32),
		attribLoc:  make(map[string]int32),
	}
	return h, nil
}

func (d *nullDriver) AttachShader(program, shader driver.Handle) {
	if p := d.programs[program]; p != nil {
		p.attached = append(p.attached, shader)
	}
}

func (d *nullDriver) DetachShader(program, shader driver.Handle) {
	p := d.programs[program]
	if p == nil {
		return
	}
	for i, h := range p.attached {
		if h == shader {
			p.attached = append(p.attached[:i], p.attached[i+1:]...)
			return
		}
	}
}

func (d *nullDriver) AttachedShaders(program driver.Handle) []driver.Handle {
	p := d.programs[program]
	if p == nil {
		return nil
	}
	return append([]driver.Handle(nil), p.attached...)
}

func (d *nullDriver) ProgramParameter(program driver.Handle, param driver.ProgramParam, value int32) {
	if p := d.programs[program]; p != nil {
		p.params[param] = value
	}
}

// LinkProgram derives the active variable lists from the attached
// sources: a declared variable counts as active when its name is used
// anywhere outside declaration statements. Array elements are folded
// back into one GL-style entry with a "[0]" name and an element count.
func (d *nullDriver) LinkProgram(program driver.Handle) bool {
	p := d.programs[program]
	if p == nil {
		return false
	}

	var all, vertex []string
	for _, h := range p.attached {
		s := d.shaders[h]
		if s == nil || !s.compiled {
			return false
		}
		all = append(all, s.source)
		if s.stage == driver.VertexStage {
			vertex = append(vertex, s.source)
		}
	}

	var udecls, adecls []glsl.Declaration
	seen := map[string]bool{}
	for _, src := range all {
		for _, decl := range glsl.Uniforms(src) {
			if !seen[decl.Name] {
				seen[decl.Name] = true
				udecls = append(udecls, decl)
			}
		}
	}
	for _, src := range vertex {
		adecls = append(adecls, glsl.Attributes(src)...)
	}

	joined := stripDeclarations(strings.Join(all, "\n"))
	p.uniforms = foldActive(udecls, joined)
	p.attributes = foldActive(adecls, stripDeclarations(strings.Join(vertex, "\n")))

	p.uniformLoc = assignLocations(p.uniforms)
	p.attribLoc = assignLocations(p.attributes)
	p.linked = true
	return true
}

var declStmtRe = regexp.MustCompile(`(?m)^[ \t]*(?:uniform|attribute|varying)\b[^;]*;`)

// stripDeclarations masks comments and blanks declaration statements so
// a name match means real use.
func stripDeclarations(src string) string {
	return declStmtRe.ReplaceAllString(glsl.MaskComments(src), "")
}

// foldActive filters declarations by use and folds runs of array
// elements back into single entries.
func foldActive(decls []glsl.Declaration, stripped string) []driver.ActiveVar {
	var out []driver.ActiveVar
	for i := 0; i < len(decls); {
		name := decls[i].Name
		base, isElem := arrayBase(name)
		if !isElem {
			if used(stripped, name) {
				out = append(out, driver.ActiveVar{Name: name, Size: 1, Type: decls[i].Type})
			}
			i++
			continue
		}
		// Count the run of elements of the same array.
		n := 1
		for i+n < len(decls) {
			b, ok := arrayBase(decls[i+n].Name)
			if !ok || b != base {
				break
			}
			n++
		}
		if used(stripped, base) {
			out = append(out, driver.ActiveVar{Name: base + "[0]", Size: n, Type: decls[i].Type})
		}
		i += n
	}
	return out
}

// arrayBase reports the base name of an expanded array element such as
// "color[2]".
func arrayBase(name string) (string, bool) {
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return "", false
	}
	if _, err := strconv.Atoi(name[open+1 : len(name)-1]); err != nil {
		return "", false
	}
	return name[:open], true
}

func used(stripped, name string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	return re.MatchString(stripped)
}

// assignLocations hands out sequential locations, one per array element.
func assignLocations(vars []driver.ActiveVar) map[string]int32 {
	locs := make(map[string]int32)
	var next int32
	for _, v := range vars {
		if v.Size <= 1 {
			locs[v.Name] = next
			next++
			continue
		}
		base := strings.TrimSuffix(v.Name, "[0]")
		for i := 0; i < v.Size; i++ {
			locs[fmt.Sprintf("%s[%d]", base, i)] = next
			next++
		}
	}
	return locs
}

func (d *nullDriver) ProgramInfoLog(driver.Handle) string { return "" }

func (d *nullDriver) UseProgram(program driver.Handle) {
	d.current = program
}

func (d *nullDriver) DeleteProgram(program driver.Handle) {
	delete(d.programs, program)
}

func (d *nullDriver) ActiveUniforms(program driver.Handle) []driver.ActiveVar {
	if p := d.programs[program]; p != nil && p.linked {
		return append([]driver.ActiveVar(nil), p.uniforms...)
	}
	return nil
}

func (d *nullDriver) ActiveAttributes(program driver.Handle) []driver.ActiveVar {
	if p := d.programs[program]; p != nil && p.linked {
		return append([]driver.ActiveVar(nil), p.attributes...)
	}
	return nil
}

func (d *nullDriver) UniformLocation(program driver.Handle, name string) int32 {
	if p := d.programs[program]; p != nil {
		if loc, ok := p.uniformLoc[name]; ok {
			return loc
		}
	}
	return -1
}

func (d *nullDriver) AttribLocation(program driver.Handle, name string) int32 {
	if p := d.programs[program]; p != nil {
		if loc, ok := p.attribLoc[name]; ok {
			return loc
		}
	}
	return -1
}

func (d *nullDriver) UniformFloats(int32, driver.DataType, []float32) {}
func (d *nullDriver) UniformInts(int32, driver.DataType, []int32)     {}

func (d *nullDriver) CreateBuffer() (driver.Handle, error) {
	h := d.newHandle()
	d.buffers[h] = nil
	return h, nil
}

func (d *nullDriver) BindBuffer(target driver.BufferTarget, buffer driver.Handle) {
	d.bound[target] = buffer
}

func (d *nullDriver) BufferData(target driver.BufferTarget, data []byte, _ driver.BufferUsage) {
	if h, ok := d.bound[target]; ok && h != driver.InvalidHandle {
		d.buffers[h] = append([]byte(nil), data...)
	}
}

func (d *nullDriver) BufferSubData(target driver.BufferTarget, offset int, data []byte) {
	h, ok := d.bound[target]
	if !ok || h == driver.InvalidHandle {
		return
	}
	buf := d.buffers[h]
	if offset < 0 || offset+len(data) > len(buf) {
		return
	}
	copy(buf[offset:], data)
}

func (d *nullDriver) DeleteBuffer(buffer driver.Handle) {
	delete(d.buffers, buffer)
}

func (d *nullDriver) EnableVertexAttrib(int32)  {}
func (d *nullDriver) DisableVertexAttrib(int32) {}

func (d *nullDriver) VertexAttribPointer(int32, int32, driver.DataType, bool, int, int) {}

func (d *nullDriver) ActiveTexture(unit int) {
	d.unit = unit
}

func (d *nullDriver) CreateTexture() (driver.Handle, error) {
	h := d.newHandle()
	d.textures[h] = nil
	return h, nil
}

func (d *nullDriver) BindTexture(driver.Handle) {}

func (d *nullDriver) TexImage2D(int, int, []byte) {}

func (d *nullDriver) DeleteTexture(texture driver.Handle) {
	delete(d.textures, texture)
}

func (d *nullDriver) DrawArrays(driver.Primitive, int, int)              {}
func (d *nullDriver) DrawElements(driver.Primitive, int, driver.DataType, int) {}
