package gpu

import (
	"fmt"
	"log"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

var _ Device = (*GLDevice)(nil)

// GLDevice implements Device on top of an OpenGL 4.1 core context.
type GLDevice struct {
	// Core profile refuses attribute pointers without a bound VAO; the
	// renderer keeps one bound for the lifetime of the context.
	vao uint32
}

// NewGLDevice loads the GL entry points. The window's context must be current
// on the calling (locked) OS thread.
func NewGLDevice() (*GLDevice, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Printf("gpu: OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	d := &GLDevice{}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.DepthFunc(gl.LEQUAL)
	return d, nil
}

// Destroy releases the context-wide vertex array.
func (d *GLDevice) Destroy() {
	if d.vao != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

// ── Buffers ──────────────────────────────────────────────────────────────────

func (d *GLDevice) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (d *GLDevice) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (d *GLDevice) BindBuffer(target BufferTarget, id uint32) {
	gl.BindBuffer(glBufferTarget(target), id)
}

func (d *GLDevice) BufferData(target BufferTarget, data []byte, usage BufferUsage) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}
	u := uint32(gl.STATIC_DRAW)
	if usage == DynamicDraw {
		u = gl.DYNAMIC_DRAW
	}
	gl.BufferData(glBufferTarget(target), len(data), ptr, u)
}

// ── Textures ─────────────────────────────────────────────────────────────────

func (d *GLDevice) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (d *GLDevice) DeleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}

func (d *GLDevice) BindTexture(target TextureTarget, id uint32) {
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func (d *GLDevice) TexImage2D(target TextureTarget, width, height int, rgba []byte) {
	var ptr unsafe.Pointer
	if len(rgba) > 0 {
		ptr = unsafe.Pointer(&rgba[0])
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, ptr)
}

func (d *GLDevice) TexParameter(target TextureTarget, param TextureParam, value int) {
	var p uint32
	switch param {
	case TextureMinFilter:
		p = gl.TEXTURE_MIN_FILTER
	case TextureMagFilter:
		p = gl.TEXTURE_MAG_FILTER
	case TextureWrapS:
		p = gl.TEXTURE_WRAP_S
	case TextureWrapT:
		p = gl.TEXTURE_WRAP_T
	}
	var v int32
	switch value {
	case Nearest:
		v = gl.NEAREST
	case Linear:
		v = gl.LINEAR
	case LinearMipmapLinear:
		v = gl.LINEAR_MIPMAP_LINEAR
	case Repeat:
		v = gl.REPEAT
	case ClampToEdge:
		v = gl.CLAMP_TO_EDGE
	}
	gl.TexParameteri(gl.TEXTURE_2D, p, v)
}

func (d *GLDevice) GenerateMipmap(target TextureTarget) {
	gl.GenerateMipmap(gl.TEXTURE_2D)
}

func (d *GLDevice) ActiveTexture(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
}

// ── State ────────────────────────────────────────────────────────────────────

func (d *GLDevice) Enable(capability Capability, enabled bool) {
	var c uint32
	switch capability {
	case DepthTest:
		c = gl.DEPTH_TEST
	case CullFace:
		c = gl.CULL_FACE
	case Blend:
		c = gl.BLEND
	}
	if enabled {
		gl.Enable(c)
	} else {
		gl.Disable(c)
	}
}

func (d *GLDevice) EnableVertexAttribArray(location int32, enabled bool) {
	if location < 0 {
		return
	}
	if enabled {
		gl.EnableVertexAttribArray(uint32(location))
	} else {
		gl.DisableVertexAttribArray(uint32(location))
	}
}

func (d *GLDevice) VertexAttribPointer(location int32, size int32, typ DataType, normalized bool, stride int32, offset int) {
	if location < 0 {
		return
	}
	gl.VertexAttribPointer(uint32(location), size, glDataType(typ), normalized, stride, gl.PtrOffset(offset))
}

// SetBlendAdditive switches blending to ONE/ONE, used by the dynamic light
// pass. It is GL-specific and not part of Device.
func (d *GLDevice) SetBlendAdditive(additive bool) {
	if additive {
		gl.BlendFunc(gl.ONE, gl.ONE)
		gl.DepthMask(false)
	} else {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(true)
	}
}

// Clear clears color and depth with the given clear color.
func (d *GLDevice) Clear(r, g, b float32) {
	gl.ClearColor(r, g, b, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Viewport sets the GL viewport.
func (d *GLDevice) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// ── Programs ─────────────────────────────────────────────────────────────────

func (d *GLDevice) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		msg := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(msg))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", strings.TrimRight(msg, "\x00"))
	}
	return prog, nil
}

func (d *GLDevice) DeleteProgram(id uint32) {
	gl.DeleteProgram(id)
}

func (d *GLDevice) UseProgram(id uint32) {
	gl.UseProgram(id)
}

func (d *GLDevice) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *GLDevice) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (d *GLDevice) Uniform1i(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (d *GLDevice) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (d *GLDevice) Uniform3f(location int32, x, y, z float32) {
	gl.Uniform3f(location, x, y, z)
}

func (d *GLDevice) UniformMatrix4fv(location int32, m *[16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

// ── Draw ─────────────────────────────────────────────────────────────────────

func (d *GLDevice) DrawElements(mode PrimitiveMode, count int32, typ DataType, offset int) {
	gl.DrawElements(glPrimitive(mode), count, glDataType(typ), gl.PtrOffset(offset))
}

func (d *GLDevice) DrawArrays(mode PrimitiveMode, first, count int32) {
	gl.DrawArrays(glPrimitive(mode), first, count)
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		msg := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", strings.TrimRight(msg, "\x00"))
	}
	return shader, nil
}

func glBufferTarget(t BufferTarget) uint32 {
	if t == ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glDataType(t DataType) uint32 {
	switch t {
	case Byte:
		return gl.BYTE
	case UnsignedShort:
		return gl.UNSIGNED_SHORT
	case UnsignedInt:
		return gl.UNSIGNED_INT
	case Float:
		return gl.FLOAT
	}
	return gl.UNSIGNED_BYTE
}

func glPrimitive(m PrimitiveMode) uint32 {
	if m == Lines {
		return gl.LINES
	}
	return gl.TRIANGLES
}
