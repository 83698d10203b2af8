package gloo

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gogpu/gloo/driver"
)

// bindingKind classifies what a name refers to when set on a program.
type bindingKind int

const (
	kindUnknown bindingKind = iota
	kindHook
	kindUniform
	kindAttribute
)

// Program links a vertex and a fragment shader, optionally a geometry
// shader, and owns the typed proxies for every uniform and attribute the
// shaders declare.
//
// All declared variables are registered, active or not. The linker marks
// the ones it kept; the rest accept data silently and upload nothing.
// [Program.Set] routes a name to the right destination: a hook on one of
// the shaders, a uniform, or an attribute.
//
// Like every GPU object the program is lazy: shaders compile and the
// program links on first activation, and again after any change to a
// hook binding or shader version.
type Program struct {
	GLObject

	vertex   *Shader
	fragment *Shader
	geometry *GeometryShader

	version string
	count   int

	// buffer is the automatically created vertex buffer when the program
	// was constructed with WithVertexCount.
	buffer *VertexBuffer

	uniforms   map[string]*Uniform
	attributes map[string]*Attribute

	// kinds caches Set/Get name resolution. Invalidated when a hook
	// binding changes the set of declared variables.
	kinds map[string]bindingKind

	// ownShaders marks shaders created by the program itself; those are
	// deleted together with the program.
	ownShaders bool
}

// NewProgram creates a program from vertex and fragment source
// designators (inline GLSL or file names resolved through the library).
//
// With [WithVertexCount] the program also creates an interleaved vertex
// buffer sized for that many vertices, with one field per declared
// attribute, and binds it. [WithGeometry] attaches a geometry shader.
func NewProgram(vertexSrc, fragmentSrc string, opts ...Option) (*Program, error) {
	cfg := buildConfig(opts)
	if strings.TrimSpace(vertexSrc) == "" {
		return nil, &MissingShaderError{Stage: driver.VertexStage}
	}
	if strings.TrimSpace(fragmentSrc) == "" {
		return nil, &MissingShaderError{Stage: driver.FragmentStage}
	}
	v, err := newShader(driver.VertexStage, vertexSrc, cfg)
	if err != nil {
		return nil, err
	}
	f, err := newShader(driver.FragmentStage, fragmentSrc, cfg)
	if err != nil {
		return nil, err
	}
	p, err := assembleProgram(v, f, cfg)
	if err != nil {
		return nil, err
	}
	p.ownShaders = true
	return p, nil
}

// NewProgramFromShaders creates a program from existing shader objects.
// The shaders stay owned by the caller: deleting the program does not
// delete them, and a program-level version change still propagates to
// them (last writer wins).
func NewProgramFromShaders(vertex, fragment *Shader, opts ...Option) (*Program, error) {
	cfg := buildConfig(opts)
	if vertex == nil {
		return nil, &MissingShaderError{Stage: driver.VertexStage}
	}
	if fragment == nil {
		return nil, &MissingShaderError{Stage: driver.FragmentStage}
	}
	return assembleProgram(vertex, fragment, cfg)
}

func assembleProgram(vertex, fragment *Shader, cfg config) (*Program, error) {
	p := &Program{
		vertex:   vertex,
		fragment: fragment,
		geometry: cfg.geometry,
		count:    cfg.vertexCount,
	}
	p.setDriver(cfg.driver)
	p.markDirty()

	p.version = cfg.version
	if p.version == "" {
		p.version = vertex.Version()
	}
	p.stampVersion()

	p.rebuildVariables()

	if p.count > 0 {
		if err := p.createVertexBuffer(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// stampVersion propagates the program's GLSL version to every shader it
// uses. Shaders shared between programs take the last writer's version.
func (p *Program) stampVersion() {
	for _, s := range p.shaders() {
		s.SetVersion(p.version)
	}
}

// shaders returns the program's shaders in stage order: vertex,
// fragment, then geometry if present.
func (p *Program) shaders() []*Shader {
	out := []*Shader{p.vertex, p.fragment}
	if p.geometry != nil {
		out = append(out, &p.geometry.Shader)
	}
	return out
}

// VertexShader returns the program's vertex shader.
func (p *Program) VertexShader() *Shader { return p.vertex }

// FragmentShader returns the program's fragment shader.
func (p *Program) FragmentShader() *Shader { return p.fragment }

// Geometry returns the attached geometry shader, or nil.
func (p *Program) Geometry() *GeometryShader { return p.geometry }

// Version returns the program's GLSL version requirement.
func (p *Program) Version() string { return p.version }

// SetVersion changes the GLSL version requirement on the program and on
// every shader it uses, and schedules a relink.
func (p *Program) SetVersion(version string) {
	if p.version == version {
		return
	}
	p.version = version
	p.stampVersion()
	p.markDirty()
}

// Hooks returns the distinct hook names declared across all shaders, in
// stage order then first-seen order within a stage.
func (p *Program) Hooks() []string {
	var names []string
	for _, s := range p.shaders() {
		for _, name := range s.Hooks() {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}

// PendingHooks returns the declared hooks that have no binding yet on
// any shader. A program with pending hooks fails to compile.
func (p *Program) PendingHooks() []string {
	var names []string
	for _, s := range p.shaders() {
		for _, name := range s.PendingHooks() {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}

// rebuildVariables registers a proxy for every uniform and attribute the
// composed sources declare. Existing proxies keep their data when name
// and type still match; texture units are reassigned sequentially over
// sampler uniforms in declaration order.
func (p *Program) rebuildVariables() {
	uniforms := make(map[string]*Uniform)
	unit := 0
	for _, s := range p.shaders() {
		for _, decl := range s.Uniforms() {
			if _, ok := uniforms[decl.Name]; ok {
				continue
			}
			u := p.uniforms[decl.Name]
			if u == nil || u.typ != decl.Type {
				u = newUniform(decl.Name, decl.Type)
			}
			if decl.Type.IsSampler() {
				u.unit = unit
				unit++
			}
			uniforms[decl.Name] = u
		}
	}

	// Attribute streams feed the vertex stage only.
	attributes := make(map[string]*Attribute)
	for _, decl := range p.vertex.Attributes() {
		if _, ok := attributes[decl.Name]; ok {
			continue
		}
		a := p.attributes[decl.Name]
		if a == nil || a.typ != decl.Type {
			a = newAttribute(decl.Name, decl.Type)
		}
		attributes[decl.Name] = a
	}

	p.uniforms = uniforms
	p.attributes = attributes
	p.kinds = nil
}

// createVertexBuffer builds the automatic interleaved buffer for
// WithVertexCount programs: one field per declared attribute, ordered by
// name, and binds it.
func (p *Program) createVertexBuffer() error {
	names := make([]string, 0, len(p.attributes))
	for name := range p.attributes {
		names = append(names, name)
	}
	slices.Sort(names)
	if len(names) == 0 {
		return ErrNoAttributesBound
	}
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Type: p.attributes[name].typ}
	}
	buf, err := NewVertexBuffer(p.count, fields...)
	if err != nil {
		return err
	}
	p.buffer = buf
	p.Bind(buf)
	return nil
}

// Buffer returns the automatically created vertex buffer, or nil when
// the program was built without WithVertexCount.
func (p *Program) Buffer() *VertexBuffer { return p.buffer }

// kindOf resolves what a name means on this program, caching the answer.
func (p *Program) kindOf(name string) bindingKind {
	if k, ok := p.kinds[name]; ok {
		return k
	}
	k := kindUnknown
	switch {
	case p.hookOwners(name) != nil:
		k = kindHook
	case p.uniforms[name] != nil:
		k = kindUniform
	case p.attributes[name] != nil:
		k = kindAttribute
	}
	if p.kinds == nil {
		p.kinds = make(map[string]bindingKind)
	}
	p.kinds[name] = k
	return k
}

// hookOwners returns the shaders that declare the named hook, or nil.
func (p *Program) hookOwners(name string) []*Shader {
	var owners []*Shader
	for _, s := range p.shaders() {
		if slices.Contains(s.Hooks(), name) {
			owners = append(owners, s)
		}
	}
	return owners
}

// Set routes a value to the named binding. Hooks take a replacement
// string or a [Snippet] and schedule a recompile; uniforms take scalars,
// vectors, matrices or a texture; attributes take a [Column] or a flat
// []float32. An unknown name yields UnknownBindingError.
func (p *Program) Set(name string, value any) error {
	switch p.kindOf(name) {
	case kindHook:
		for _, s := range p.hookOwners(name) {
			if err := s.SetHook(name, value); err != nil {
				return err
			}
		}
		// The substitution may declare new variables.
		p.rebuildVariables()
		p.markDirty()
		return nil
	case kindUniform:
		return p.uniforms[name].SetData(value)
	case kindAttribute:
		return p.attributes[name].SetData(value)
	}
	return &UnknownBindingError{Name: name}
}

// Get returns the current value of the named binding: the hook binding,
// the uniform's stored data, or the attribute's column.
func (p *Program) Get(name string) (any, error) {
	switch p.kindOf(name) {
	case kindHook:
		owners := p.hookOwners(name)
		v, _ := owners[0].HookBinding(name)
		return v, nil
	case kindUniform:
		return p.uniforms[name].Data(), nil
	case kindAttribute:
		return p.attributes[name].Data(), nil
	}
	return nil, &UnknownBindingError{Name: name}
}

// Uniform returns the named uniform proxy, if the program declares one.
func (p *Program) Uniform(name string) (*Uniform, bool) {
	u, ok := p.uniforms[name]
	return u, ok
}

// Attribute returns the named attribute proxy, if the program declares one.
func (p *Program) Attribute(name string) (*Attribute, bool) {
	a, ok := p.attributes[name]
	return a, ok
}

// HookBinding returns the value currently bound to the named hook.
// The second result is false when the hook is unknown or still unbound.
func (p *Program) HookBinding(name string) (any, bool) {
	for _, s := range p.hookOwners(name) {
		if v, ok := s.HookBinding(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Bind connects a vertex buffer's fields to the program's attributes by
// name. Buffer fields with no matching attribute are ignored, as are
// attributes the buffer does not cover; mixed-source programs bind
// several buffers this way.
func (p *Program) Bind(buf *VertexBuffer) {
	for _, field := range buf.Fields() {
		a, ok := p.attributes[field.Name]
		if !ok {
			continue
		}
		col, _ := buf.Column(field.Name)
		a.column = col
		a.set = true
	}
}

// AllUniforms returns every registered uniform proxy, sorted by name.
func (p *Program) AllUniforms() []*Uniform {
	out := make([]*Uniform, 0, len(p.uniforms))
	for _, u := range p.uniforms {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b *Uniform) int { return strings.Compare(a.name, b.name) })
	return out
}

// ActiveUniforms returns the uniforms the linker kept, sorted by name.
func (p *Program) ActiveUniforms() []*Uniform {
	var out []*Uniform
	for _, u := range p.AllUniforms() {
		if u.active {
			out = append(out, u)
		}
	}
	return out
}

// InactiveUniforms returns the declared uniforms the linker dropped,
// sorted by name.
func (p *Program) InactiveUniforms() []*Uniform {
	var out []*Uniform
	for _, u := range p.AllUniforms() {
		if !u.active {
			out = append(out, u)
		}
	}
	return out
}

// AllAttributes returns every registered attribute proxy, sorted by name.
func (p *Program) AllAttributes() []*Attribute {
	out := make([]*Attribute, 0, len(p.attributes))
	for _, a := range p.attributes {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *Attribute) int { return strings.Compare(a.name, b.name) })
	return out
}

// ActiveAttributes returns the attributes the linker kept, sorted by name.
func (p *Program) ActiveAttributes() []*Attribute {
	var out []*Attribute
	for _, a := range p.AllAttributes() {
		if a.active {
			out = append(out, a)
		}
	}
	return out
}

// InactiveAttributes returns the declared attributes the linker dropped,
// sorted by name.
func (p *Program) InactiveAttributes() []*Attribute {
	var out []*Attribute
	for _, a := range p.AllAttributes() {
		if !a.active {
			out = append(out, a)
		}
	}
	return out
}

// Activate compiles, links and uses the program, then uploads the data
// of every active uniform and binds every active attribute. Active
// variables with no data yet are skipped with a debug log.
func (p *Program) Activate() error {
	if err := p.ensureReady(p); err != nil {
		return err
	}
	drv := p.Driver()
	drv.UseProgram(p.handle)

	for _, u := range p.ActiveUniforms() {
		if !u.set {
			logger().Debug("gpu: active uniform has no data", slog.String("name", u.name))
			continue
		}
		if err := u.activate(drv); err != nil {
			return err
		}
	}
	for _, a := range p.ActiveAttributes() {
		if err := a.activate(drv, &p.GLObject); err != nil {
			return err
		}
	}
	return nil
}

// Deactivate unbinds the program and disables its active attribute
// arrays.
func (p *Program) Deactivate() {
	drv := p.Driver()
	for _, a := range p.ActiveAttributes() {
		if a.set {
			a.deactivate(drv)
		}
	}
	drv.UseProgram(driver.InvalidHandle)
}

// Draw activates the program and issues one draw call.
//
// With an index buffer the call is indexed over the buffer's elements.
// Without one the vertex count comes from the first bound active
// attribute (by name order); ErrNoAttributesBound is returned when no
// attribute has data. The program and the array buffer binding are
// released afterwards.
func (p *Program) Draw(mode driver.Primitive, indices *IndexBuffer) error {
	if err := p.Activate(); err != nil {
		return err
	}
	drv := p.Driver()
	err := p.draw(drv, mode, indices)
	drv.BindBuffer(driver.ArrayBuffer, driver.InvalidHandle)
	p.Deactivate()
	return err
}

func (p *Program) draw(drv driver.Driver, mode driver.Primitive, indices *IndexBuffer) error {
	if indices != nil {
		indices.adoptDriver(&p.GLObject)
		if err := indices.Activate(); err != nil {
			return err
		}
		drv.DrawElements(mode, indices.Len(), indices.ElementType(), 0)
		indices.Deactivate()
		return nil
	}
	for _, a := range p.ActiveAttributes() {
		if a.set {
			drv.DrawArrays(mode, 0, a.Len())
			return nil
		}
	}
	return ErrNoAttributesBound
}

// Delete releases the native program object and, for programs built from
// sources, the shaders it created. Idempotent.
func (p *Program) Delete() {
	p.release(p)
	if p.ownShaders {
		for _, s := range p.shaders() {
			s.Delete()
		}
	}
	if p.buffer != nil {
		p.buffer.Delete()
	}
}

func (p *Program) create() error {
	logger().Debug("gpu: creating program")
	h, err := p.Driver().CreateProgram()
	if err != nil {
		return fmt.Errorf("gloo: creating program: %w", err)
	}
	p.handle = h
	return nil
}

// update compiles dirty shaders, reattaches them, links the program and
// reconciles the variable proxies with the linker's active lists.
func (p *Program) update() error {
	drv := p.Driver()
	shaders := p.shaders()

	attached := drv.AttachedShaders(p.handle)
	wanted := make(map[driver.Handle]bool, len(shaders))

	for _, s := range shaders {
		s.adoptDriver(&p.GLObject)
		if err := s.Activate(); err != nil {
			return err
		}
		wanted[s.Handle()] = true
		if !slices.Contains(attached, s.Handle()) {
			drv.AttachShader(p.handle, s.Handle())
		}
	}
	for _, h := range attached {
		if !wanted[h] {
			drv.DetachShader(p.handle, h)
		}
	}

	if g := p.geometry; g != nil {
		drv.ProgramParameter(p.handle, driver.GeometryVerticesOut, int32(g.VerticesOut()))
		drv.ProgramParameter(p.handle, driver.GeometryInputType, int32(g.InputType()))
		drv.ProgramParameter(p.handle, driver.GeometryOutputType, int32(g.OutputType()))
	}

	logger().Debug("gpu: linking program")
	if !drv.LinkProgram(p.handle) {
		log := drv.ProgramInfoLog(p.handle)
		logger().Error("gpu: program link error", slog.String("log", log))
		return &LinkError{Log: log}
	}

	p.reconcile(drv)
	return nil
}

// reconcile marks proxies active per the linker's reports and records
// their locations. Array variables come back GL-style as one entry with a
// "[0]" name and an element count; they are expanded to one proxy per
// element to match the declaration expansion.
func (p *Program) reconcile(drv driver.Driver) {
	for _, u := range p.uniforms {
		u.active = false
		u.location = -1
	}
	for _, a := range p.attributes {
		a.active = false
		a.location = -1
	}

	for _, v := range drv.ActiveUniforms(p.handle) {
		for _, name := range expandActiveVar(v) {
			u, ok := p.uniforms[name]
			if !ok {
				// The driver knows variables the declarations do not
				// cover (builtins, driver extensions). Register them so
				// the active list reflects linker truth.
				u = newUniform(name, v.Type)
				p.uniforms[name] = u
			}
			u.active = true
			u.location = drv.UniformLocation(p.handle, name)
		}
	}
	for _, v := range drv.ActiveAttributes(p.handle) {
		for _, name := range expandActiveVar(v) {
			a, ok := p.attributes[name]
			if !ok {
				a = newAttribute(name, v.Type)
				p.attributes[name] = a
			}
			a.active = true
			a.location = drv.AttribLocation(p.handle, name)
		}
	}
	p.kinds = nil
}

// expandActiveVar expands a driver-reported variable into per-element
// names: {"color[0]", 3} becomes color[0], color[1], color[2].
func expandActiveVar(v driver.ActiveVar) []string {
	if v.Size <= 1 {
		return []string{v.Name}
	}
	base := strings.TrimSuffix(v.Name, "[0]")
	names := make([]string, v.Size)
	for i := range names {
		names[i] = fmt.Sprintf("%s[%d]", base, i)
	}
	return names
}

func (p *Program) destroy() {
	logger().Debug("gpu: deleting program")
	p.Driver().DeleteProgram(p.handle)
}
