// Package gpu is the graphics device boundary used by the map renderer.
//
// Everything that touches OpenGL state goes through Device so that passes can
// be driven against a recording fake in tests (see gputest).
package gpu

// BufferTarget selects the binding point of a buffer object.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// BufferUsage is the usage hint passed to BufferData.
type BufferUsage int

const (
	StaticDraw BufferUsage = iota
	DynamicDraw
)

// TextureTarget selects a texture binding point.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
)

// TextureParam names a texture parameter.
type TextureParam int

const (
	TextureMinFilter TextureParam = iota
	TextureMagFilter
	TextureWrapS
	TextureWrapT
)

// Texture parameter values.
const (
	Nearest = iota
	Linear
	LinearMipmapLinear
	Repeat
	ClampToEdge
)

// Capability is a fixed-function toggle.
type Capability int

const (
	DepthTest Capability = iota
	CullFace
	Blend
)

// DataType describes vertex attribute and index component types.
type DataType int

const (
	UnsignedByte DataType = iota
	Byte
	UnsignedShort
	UnsignedInt
	Float
)

// PrimitiveMode is the primitive type of a draw call.
type PrimitiveMode int

const (
	Triangles PrimitiveMode = iota
	Lines
)

// Device is the subset of a GL context the renderer consumes.
//
// Locations returned by UniformLocation and AttribLocation are -1 when the
// name is not active in the program. Every setter must accept -1 and ignore it,
// matching GL semantics.
type Device interface {
	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target BufferTarget, id uint32)
	BufferData(target BufferTarget, data []byte, usage BufferUsage)

	GenTexture() uint32
	DeleteTexture(id uint32)
	BindTexture(target TextureTarget, id uint32)
	TexImage2D(target TextureTarget, width, height int, rgba []byte)
	TexParameter(target TextureTarget, param TextureParam, value int)
	GenerateMipmap(target TextureTarget)
	ActiveTexture(unit int)

	Enable(capability Capability, enabled bool)
	EnableVertexAttribArray(location int32, enabled bool)
	VertexAttribPointer(location int32, size int32, typ DataType, normalized bool, stride int32, offset int)

	CreateProgram(vertexSrc, fragmentSrc string) (uint32, error)
	DeleteProgram(id uint32)
	UseProgram(id uint32)
	UniformLocation(program uint32, name string) int32
	AttribLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, x, y, z float32)
	UniformMatrix4fv(location int32, m *[16]float32)

	DrawElements(mode PrimitiveMode, count int32, typ DataType, offset int)
	DrawArrays(mode PrimitiveMode, first, count int32)
}
