package driver

// Enum values in this file match the OpenGL numeric constants, so a
// GL-backed driver forwards them unchanged. Non-GL drivers treat them as
// opaque tags.

// ShaderStage identifies a shader compilation unit.
type ShaderStage uint32

// Shader stages.
const (
	// VertexStage is the vertex processing stage.
	VertexStage ShaderStage = 0x8B31

	// FragmentStage is the fragment processing stage.
	FragmentStage ShaderStage = 0x8B30

	// GeometryStage is the optional geometry processing stage.
	GeometryStage ShaderStage = 0x8DD9
)

// String returns the lower-case stage name.
func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	case GeometryStage:
		return "geometry"
	}
	return "unknown"
}

// DataType identifies a GLSL variable type or a buffer element type.
type DataType uint32

// Scalar and element types.
const (
	UByte  DataType = 0x1401
	UShort DataType = 0x1403
	UInt   DataType = 0x1405

	Float DataType = 0x1406
	Int   DataType = 0x1404
	Bool  DataType = 0x8B56
)

// Vector and matrix types.
const (
	FloatVec2 DataType = 0x8B50
	FloatVec3 DataType = 0x8B51
	FloatVec4 DataType = 0x8B52

	IntVec2 DataType = 0x8B53
	IntVec3 DataType = 0x8B54
	IntVec4 DataType = 0x8B55

	BoolVec2 DataType = 0x8B57
	BoolVec3 DataType = 0x8B58
	BoolVec4 DataType = 0x8B59

	FloatMat2 DataType = 0x8B5A
	FloatMat3 DataType = 0x8B5B
	FloatMat4 DataType = 0x8B5C
)

// Sampler types.
const (
	Sampler1D   DataType = 0x8B5D
	Sampler2D   DataType = 0x8B5E
	SamplerCube DataType = 0x8B60
)

// IsSampler reports whether the type is a texture sampler.
func (t DataType) IsSampler() bool {
	switch t {
	case Sampler1D, Sampler2D, SamplerCube:
		return true
	}
	return false
}

// Components returns the number of scalar components of a variable type
// (1 for scalars and samplers, 4 for vec4, 16 for mat4, ...).
func (t DataType) Components() int {
	switch t {
	case FloatVec2, IntVec2, BoolVec2:
		return 2
	case FloatVec3, IntVec3, BoolVec3:
		return 3
	case FloatVec4, IntVec4, BoolVec4, FloatMat2:
		return 4
	case FloatMat3:
		return 9
	case FloatMat4:
		return 16
	}
	return 1
}

// ElementSize returns the size in bytes of one buffer element of this type.
func (t DataType) ElementSize() int {
	switch t {
	case UByte:
		return 1
	case UShort:
		return 2
	case UInt, Float, Int:
		return 4
	}
	return 4
}

// Primitive identifies a draw-call primitive topology.
type Primitive uint32

// Primitive topologies.
const (
	Points        Primitive = 0x0000
	Lines         Primitive = 0x0001
	LineLoop      Primitive = 0x0002
	LineStrip     Primitive = 0x0003
	Triangles     Primitive = 0x0004
	TriangleStrip Primitive = 0x0005
	TriangleFan   Primitive = 0x0006

	LinesAdjacency         Primitive = 0x000A
	LineStripAdjacency     Primitive = 0x000B
	TrianglesAdjacency     Primitive = 0x000C
	TriangleStripAdjacency Primitive = 0x000D
)

// BufferTarget identifies a buffer binding point.
type BufferTarget uint32

// Buffer binding points.
const (
	// ArrayBuffer is the vertex attribute data binding point.
	ArrayBuffer BufferTarget = 0x8892

	// ElementArrayBuffer is the index data binding point.
	ElementArrayBuffer BufferTarget = 0x8893
)

// BufferUsage hints how buffer data will be updated.
type BufferUsage uint32

// Buffer usage hints.
const (
	// StaticDraw is for data uploaded once and drawn many times.
	StaticDraw BufferUsage = 0x88E4

	// DynamicDraw is for data re-uploaded repeatedly.
	DynamicDraw BufferUsage = 0x88E8
)

// ProgramParam identifies a pre-link program parameter.
type ProgramParam uint32

// Geometry shader program parameters.
const (
	// GeometryVerticesOut is the maximum number of vertices the geometry
	// stage may emit.
	GeometryVerticesOut ProgramParam = 0x8DDA

	// GeometryInputType is the primitive topology the geometry stage
	// receives.
	GeometryInputType ProgramParam = 0x8DDB

	// GeometryOutputType is the primitive topology the geometry stage
	// emits.
	GeometryOutputType ProgramParam = 0x8DDC
)
