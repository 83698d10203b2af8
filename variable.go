package gloo

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gloo/driver"
)

// Binder is implemented by values a sampler uniform can hold, such as
// [Texture2D]. Bind makes the value current on the given texture unit.
type Binder interface {
	Bind(unit int) error
}

// Uniform is a typed proxy for one program uniform slot.
//
// The active flag reflects linker truth, not declaration: a uniform the
// linker optimized away stays registered and silently accepts data, but
// never transfers anything to the GPU.
type Uniform struct {
	name     string
	typ      driver.DataType
	active   bool
	location int32

	// unit is the texture unit assigned to sampler uniforms, -1 otherwise.
	unit int

	floats []float32
	ints   []int32
	binder Binder
	set    bool
}

func newUniform(name string, typ driver.DataType) *Uniform {
	return &Uniform{name: name, typ: typ, location: -1, unit: -1}
}

// Name returns the uniform's name as declared in the shader.
func (u *Uniform) Name() string { return u.name }

// Type returns the uniform's GLSL type.
func (u *Uniform) Type() driver.DataType { return u.typ }

// Active reports whether the linker kept this uniform.
func (u *Uniform) Active() bool { return u.active }

// TextureUnit returns the texture unit assigned to a sampler uniform,
// or -1 for non-sampler uniforms.
func (u *Uniform) TextureUnit() int { return u.unit }

// Data returns the most recently set data, or nil.
func (u *Uniform) Data() any {
	switch {
	case !u.set:
		return nil
	case u.binder != nil:
		return u.binder
	case u.ints != nil:
		return u.ints
	}
	return u.floats
}

// SetData stores data for upload on next activation. Setting data on an
// inactive uniform is accepted silently and never reaches the GPU.
//
// Accepted values depend on the uniform's type class: float scalars,
// []float32, []float64 and mgl32 vectors/matrices for float-class
// uniforms; ints, bools, []int32 and []int for int-class uniforms; a
// [Binder] (or an int unit override) for samplers. Lengths must match the
// type's component count.
func (u *Uniform) SetData(data any) error {
	if u.typ.IsSampler() {
		return u.setSamplerData(data)
	}

	switch u.typ {
	case driver.Int, driver.IntVec2, driver.IntVec3, driver.IntVec4,
		driver.Bool, driver.BoolVec2, driver.BoolVec3, driver.BoolVec4:
		ints, err := toInts(data)
		if err != nil {
			return fmt.Errorf("gloo: uniform %q: %w", u.name, err)
		}
		if len(ints) != u.typ.Components() {
			return fmt.Errorf("gloo: uniform %q expects %d components, got %d",
				u.name, u.typ.Components(), len(ints))
		}
		u.ints = ints
	default:
		floats, err := toFloats(data)
		if err != nil {
			return fmt.Errorf("gloo: uniform %q: %w", u.name, err)
		}
		if len(floats) != u.typ.Components() {
			return fmt.Errorf("gloo: uniform %q expects %d components, got %d",
				u.name, u.typ.Components(), len(floats))
		}
		u.floats = floats
	}
	u.set = true
	return nil
}

func (u *Uniform) setSamplerData(data any) error {
	switch v := data.(type) {
	case Binder:
		u.binder = v
	case int:
		// Explicit unit override, for callers managing textures themselves.
		u.unit = v
	default:
		return fmt.Errorf("gloo: sampler uniform %q expects a Binder or texture unit, got %T", u.name, data)
	}
	u.set = true
	return nil
}

// activate pushes the stored data to the GPU slot. Called by Program with
// the program's driver; inactive or data-less uniforms are skipped there.
func (u *Uniform) activate(drv driver.Driver) error {
	if u.typ.IsSampler() {
		drv.ActiveTexture(u.unit)
		if u.binder != nil {
			if err := u.binder.Bind(u.unit); err != nil {
				return fmt.Errorf("gloo: binding texture for uniform %q: %w", u.name, err)
			}
		}
		drv.UniformInts(u.location, u.typ, []int32{int32(u.unit)})
		return nil
	}
	if u.ints != nil {
		drv.UniformInts(u.location, u.typ, u.ints)
		return nil
	}
	drv.UniformFloats(u.location, u.typ, u.floats)
	return nil
}

// Attribute is a typed proxy for one program vertex attribute slot.
// Its data is a column view into a vertex buffer; activation binds the
// buffer and describes the column layout to the driver.
type Attribute struct {
	name     string
	typ      driver.DataType
	active   bool
	location int32

	column Column
	set    bool
}

func newAttribute(name string, typ driver.DataType) *Attribute {
	return &Attribute{name: name, typ: typ, location: -1}
}

// Name returns the attribute's name as declared in the shader.
func (a *Attribute) Name() string { return a.name }

// Type returns the attribute's GLSL type.
func (a *Attribute) Type() driver.DataType { return a.typ }

// Active reports whether the linker kept this attribute.
func (a *Attribute) Active() bool { return a.active }

// Bound reports whether the attribute has data bound.
func (a *Attribute) Bound() bool { return a.set }

// Len returns the number of vertices in the bound data, or 0.
func (a *Attribute) Len() int {
	if !a.set {
		return 0
	}
	return a.column.Len()
}

// Data returns the bound column, or the zero Column.
func (a *Attribute) Data() Column {
	return a.column
}

// SetData binds attribute data: a [Column] view into a [VertexBuffer], or
// a flat []float32 that is wrapped into a buffer owned by the attribute.
// Setting data on an inactive attribute is accepted silently.
func (a *Attribute) SetData(data any) error {
	switch v := data.(type) {
	case Column:
		a.column = v
	case []float32:
		comps := a.typ.Components()
		if comps == 0 || len(v)%comps != 0 {
			return fmt.Errorf("gloo: attribute %q expects a multiple of %d floats, got %d",
				a.name, comps, len(v))
		}
		buf, err := NewVertexBuffer(len(v)/comps, Field{Name: a.name, Type: a.typ})
		if err != nil {
			return err
		}
		if err := buf.SetField(a.name, v); err != nil {
			return err
		}
		col, _ := buf.Column(a.name)
		a.column = col
	default:
		return fmt.Errorf("gloo: attribute %q expects a Column or []float32, got %T", a.name, data)
	}
	a.set = true
	return nil
}

// activate binds the backing buffer and enables the attribute array.
func (a *Attribute) activate(drv driver.Driver, owner *GLObject) error {
	if !a.set {
		logger().Debug("gpu: active attribute has no data", slog.String("name", a.name))
		return nil
	}
	a.column.Buffer.adoptDriver(owner)
	if err := a.column.Buffer.Activate(); err != nil {
		return err
	}
	drv.EnableVertexAttrib(a.location)
	// The pointer describes the bound column. Its component count can
	// differ from the declared type; stride and offset must agree with it.
	drv.VertexAttribPointer(a.location, int32(a.column.Components), driver.Float, false,
		a.column.Stride, a.column.Offset)
	return nil
}

// deactivate disables the attribute array.
func (a *Attribute) deactivate(drv driver.Driver) {
	drv.DisableVertexAttrib(a.location)
}

// toFloats converts supported host values to a flat []float32.
func toFloats(data any) ([]float32, error) {
	switch v := data.(type) {
	case float32:
		return []float32{v}, nil
	case float64:
		return []float32{float32(v)}, nil
	case int:
		return []float32{float32(v)}, nil
	case []float32:
		out := make([]float32, len(v))
		copy(out, v)
		return out, nil
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
		return out, nil
	case mgl32.Vec2:
		return v[:], nil
	case mgl32.Vec3:
		return v[:], nil
	case mgl32.Vec4:
		return v[:], nil
	case mgl32.Mat2:
		return v[:], nil
	case mgl32.Mat3:
		return v[:], nil
	case mgl32.Mat4:
		return v[:], nil
	}
	return nil, fmt.Errorf("unsupported float data %T", data)
}

// toInts converts supported host values to a flat []int32.
func toInts(data any) ([]int32, error) {
	switch v := data.(type) {
	case int:
		return []int32{int32(v)}, nil
	case int32:
		return []int32{v}, nil
	case bool:
		if v {
			return []int32{1}, nil
		}
		return []int32{0}, nil
	case []int32:
		out := make([]int32, len(v))
		copy(out, v)
		return out, nil
	case []int:
		out := make([]int32, len(v))
		for i, n := range v {
			out[i] = int32(n)
		}
		return out, nil
	case []bool:
		out := make([]int32, len(v))
		for i, b := range v {
			if b {
				out[i] = 1
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported int data %T", data)
}
