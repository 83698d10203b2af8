package gloo

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/gloo/driver"
)

// Field is one named column of a vertex buffer record.
type Field struct {
	Name string
	Type driver.DataType
}

// Column is a view of one field across all records of a vertex buffer:
// the backing buffer plus the byte offset and stride locating the field.
type Column struct {
	Buffer *VertexBuffer

	// Offset is the byte offset of the field inside one record.
	Offset int

	// Stride is the byte size of one record.
	Stride int

	// Components is the number of float32 components of the field.
	Components int
}

// Len returns the number of records in the backing buffer.
func (c Column) Len() int {
	if c.Buffer == nil {
		return 0
	}
	return c.Buffer.Len()
}

// VertexBuffer is a named, typed record array backing vertex attributes.
// Records are stored interleaved as float32; each field is exposed as a
// Column whose name is matched against program attribute names at bind
// time. The buffer follows the lazy GPU lifecycle: data uploads on first
// activation and re-uploads after any SetField.
//
// A buffer's record layout is fixed at construction; it is re-bindable
// but not resizable.
type VertexBuffer struct {
	GLObject

	fields  []Field
	offsets map[string]int // byte offset per field
	stride  int            // bytes per record
	count   int
	data    []float32
}

// NewVertexBuffer allocates a host buffer of count records with the given
// field layout.
func NewVertexBuffer(count int, fields ...Field) (*VertexBuffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("gloo: vertex buffer needs a positive record count, got %d", count)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("gloo: vertex buffer needs at least one field")
	}
	b := &VertexBuffer{
		offsets: make(map[string]int, len(fields)),
		count:   count,
	}
	floats := 0
	for _, f := range fields {
		if _, dup := b.offsets[f.Name]; dup {
			return nil, fmt.Errorf("gloo: duplicate vertex buffer field %q", f.Name)
		}
		b.offsets[f.Name] = floats * 4
		b.fields = append(b.fields, f)
		floats += f.Type.Components()
	}
	b.stride = floats * 4
	b.data = make([]float32, count*floats)
	return b, nil
}

// Fields returns the record layout.
func (b *VertexBuffer) Fields() []Field {
	out := make([]Field, len(b.fields))
	copy(out, b.fields)
	return out
}

// Len returns the number of records.
func (b *VertexBuffer) Len() int {
	return b.count
}

// Stride returns the byte size of one record.
func (b *VertexBuffer) Stride() int {
	return b.stride
}

// SetField fills one column with values, interleaving them into record
// storage. values must hold exactly count*components floats.
func (b *VertexBuffer) SetField(name string, values []float32) error {
	offset, ok := b.offsets[name]
	if !ok {
		return fmt.Errorf("gloo: vertex buffer has no field %q", name)
	}
	comps := b.fieldComponents(name)
	if len(values) != b.count*comps {
		return fmt.Errorf("gloo: field %q expects %d floats (%d records x %d components), got %d",
			name, b.count*comps, b.count, comps, len(values))
	}
	floatsPerRecord := b.stride / 4
	base := offset / 4
	for rec := 0; rec < b.count; rec++ {
		copy(b.data[rec*floatsPerRecord+base:rec*floatsPerRecord+base+comps],
			values[rec*comps:(rec+1)*comps])
	}
	b.markDirty()
	return nil
}

// Column returns the view of one field, for binding to an attribute.
func (b *VertexBuffer) Column(name string) (Column, bool) {
	offset, ok := b.offsets[name]
	if !ok {
		return Column{}, false
	}
	return Column{
		Buffer:     b,
		Offset:     offset,
		Stride:     b.stride,
		Components: b.fieldComponents(name),
	}, true
}

func (b *VertexBuffer) fieldComponents(name string) int {
	for _, f := range b.fields {
		if f.Name == name {
			return f.Type.Components()
		}
	}
	return 0
}

// Activate creates and uploads the native buffer as needed and binds it
// to the array-buffer target.
func (b *VertexBuffer) Activate() error {
	if err := b.ensureReady(b); err != nil {
		return err
	}
	b.Driver().BindBuffer(driver.ArrayBuffer, b.handle)
	return nil
}

// Deactivate unbinds the array-buffer target.
func (b *VertexBuffer) Deactivate() {
	b.Driver().BindBuffer(driver.ArrayBuffer, driver.InvalidHandle)
}

// Delete releases the native buffer. Idempotent.
func (b *VertexBuffer) Delete() {
	b.release(b)
}

func (b *VertexBuffer) create() error {
	logger().Debug("gpu: creating vertex buffer", slog.Int("records", b.count))
	h, err := b.Driver().CreateBuffer()
	if err != nil {
		return fmt.Errorf("gloo: creating vertex buffer: %w", err)
	}
	b.handle = h
	return nil
}

func (b *VertexBuffer) update() error {
	drv := b.Driver()
	drv.BindBuffer(driver.ArrayBuffer, b.handle)
	drv.BufferData(driver.ArrayBuffer, floatBytes(b.data), driver.DynamicDraw)
	return nil
}

func (b *VertexBuffer) destroy() {
	b.Driver().DeleteBuffer(b.handle)
}

// IndexBuffer holds vertex indices for indexed draws. It exposes the
// element type and count the draw call needs, and follows the lazy GPU
// lifecycle on the element-array target.
type IndexBuffer struct {
	GLObject

	elem  driver.DataType
	count int
	bytes []byte
}

// NewIndexBuffer builds an index buffer from []uint8, []uint16 or
// []uint32 indices.
func NewIndexBuffer(indices any) (*IndexBuffer, error) {
	b := &IndexBuffer{}
	switch v := indices.(type) {
	case []uint8:
		b.elem = driver.UByte
		b.count = len(v)
		b.bytes = append([]byte(nil), v...)
	case []uint16:
		b.elem = driver.UShort
		b.count = len(v)
		b.bytes = make([]byte, 2*len(v))
		for i, n := range v {
			binary.LittleEndian.PutUint16(b.bytes[2*i:], n)
		}
	case []uint32:
		b.elem = driver.UInt
		b.count = len(v)
		b.bytes = make([]byte, 4*len(v))
		for i, n := range v {
			binary.LittleEndian.PutUint32(b.bytes[4*i:], n)
		}
	default:
		return nil, fmt.Errorf("gloo: index buffer expects []uint8, []uint16 or []uint32, got %T", indices)
	}
	if b.count == 0 {
		return nil, fmt.Errorf("gloo: index buffer needs at least one index")
	}
	return b, nil
}

// ElementType returns the driver element type of the indices.
func (b *IndexBuffer) ElementType() driver.DataType {
	return b.elem
}

// Len returns the number of indices.
func (b *IndexBuffer) Len() int {
	return b.count
}

// Activate creates and uploads the native buffer as needed and binds it
// to the element-array target.
func (b *IndexBuffer) Activate() error {
	if err := b.ensureReady(b); err != nil {
		return err
	}
	b.Driver().BindBuffer(driver.ElementArrayBuffer, b.handle)
	return nil
}

// Deactivate unbinds the element-array target.
func (b *IndexBuffer) Deactivate() {
	b.Driver().BindBuffer(driver.ElementArrayBuffer, driver.InvalidHandle)
}

// Delete releases the native buffer. Idempotent.
func (b *IndexBuffer) Delete() {
	b.release(b)
}

func (b *IndexBuffer) create() error {
	logger().Debug("gpu: creating index buffer", slog.Int("indices", b.count))
	h, err := b.Driver().CreateBuffer()
	if err != nil {
		return fmt.Errorf("gloo: creating index buffer: %w", err)
	}
	b.handle = h
	return nil
}

func (b *IndexBuffer) update() error {
	drv := b.Driver()
	drv.BindBuffer(driver.ElementArrayBuffer, b.handle)
	drv.BufferData(driver.ElementArrayBuffer, b.bytes, driver.StaticDraw)
	return nil
}

func (b *IndexBuffer) destroy() {
	b.Driver().DeleteBuffer(b.handle)
}

// floatBytes serializes float32 data to little-endian bytes for upload.
func floatBytes(data []float32) []byte {
	out := make([]byte, 4*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}
