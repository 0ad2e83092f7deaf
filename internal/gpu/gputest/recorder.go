// Package gputest provides a recording gpu.Device for tests that exercise
// render passes without an OpenGL context.
package gputest

import (
	"fmt"
	"regexp"
	"sort"

	"map-renderer/internal/gpu"
)

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

// Draw captures the device state at the moment of a draw call.
type Draw struct {
	Program       uint32
	ArrayBuffer   uint32
	ElementBuffer uint32
	Count         int32
	Attribs       []int32
	Uniforms      map[int32]any
}

type program struct {
	uniforms map[string]int32
	attribs  map[string]int32
	values   map[int32]any
}

var _ gpu.Device = (*Recorder)(nil)

// Recorder is an in-memory gpu.Device. It hands out increasing object ids,
// tracks bindings the way a GL context would and logs every call.
type Recorder struct {
	Calls []Call
	Draws []Draw

	// CreateErr, when set, is returned by the next CreateProgram call.
	CreateErr error

	nextID uint32

	buffers  map[uint32][]byte
	textures map[uint32]bool
	programs map[uint32]*program

	arrayBuffer   uint32
	elementBuffer uint32
	activeUnit    int
	boundTex      map[int]uint32
	attribs       map[int32]bool
	caps          map[gpu.Capability]bool
	current       uint32
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		buffers:  make(map[uint32][]byte),
		textures: make(map[uint32]bool),
		programs: make(map[uint32]*program),
		boundTex: make(map[int]uint32),
		attribs:  make(map[int32]bool),
		caps:     make(map[gpu.Capability]bool),
	}
}

func (r *Recorder) log(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

// Count returns how many times the named call was made.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls and draws but keeps object and binding state.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Draws = nil
}

// LiveBuffers is the number of buffers created and not yet deleted.
func (r *Recorder) LiveBuffers() int { return len(r.buffers) }

// LiveTextures is the number of textures created and not yet deleted.
func (r *Recorder) LiveTextures() int { return len(r.textures) }

// BufferContents returns the last data uploaded to buffer id.
func (r *Recorder) BufferContents(id uint32) []byte { return r.buffers[id] }

// EnabledAttribs lists attribute locations currently enabled, sorted.
func (r *Recorder) EnabledAttribs() []int32 {
	var out []int32
	for l, on := range r.attribs {
		if on {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BoundTexture returns the texture bound on unit.
func (r *Recorder) BoundTexture(unit int) uint32 { return r.boundTex[unit] }

// ActiveUnit returns the active texture unit.
func (r *Recorder) ActiveUnit() int { return r.activeUnit }

// BoundArrayBuffer returns the buffer bound to gpu.ArrayBuffer.
func (r *Recorder) BoundArrayBuffer() uint32 { return r.arrayBuffer }

// Enabled reports whether a capability is on.
func (r *Recorder) Enabled(c gpu.Capability) bool { return r.caps[c] }

// CurrentProgram returns the program last passed to UseProgram.
func (r *Recorder) CurrentProgram() uint32 { return r.current }

// UniformValue returns the last value set for the named uniform of prog.
func (r *Recorder) UniformValue(prog uint32, name string) (any, bool) {
	p := r.programs[prog]
	if p == nil {
		return nil, false
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := p.values[loc]
	return v, ok
}

// Clean reports whether no attribute array is enabled and no texture is bound
// on any unit, which is the state every pass must leave behind.
func (r *Recorder) Clean() error {
	if a := r.EnabledAttribs(); len(a) > 0 {
		return fmt.Errorf("attribute arrays still enabled: %v", a)
	}
	for unit, tex := range r.boundTex {
		if tex != 0 {
			return fmt.Errorf("texture %d still bound on unit %d", tex, unit)
		}
	}
	if r.activeUnit != 0 {
		return fmt.Errorf("active texture unit left at %d", r.activeUnit)
	}
	if r.arrayBuffer != 0 {
		return fmt.Errorf("array buffer %d still bound", r.arrayBuffer)
	}
	return nil
}

// ── gpu.Device ───────────────────────────────────────────────────────────────

func (r *Recorder) GenBuffer() uint32 {
	id := r.id()
	r.buffers[id] = nil
	r.log("GenBuffer", id)
	return id
}

func (r *Recorder) DeleteBuffer(id uint32) {
	delete(r.buffers, id)
	if r.arrayBuffer == id {
		r.arrayBuffer = 0
	}
	if r.elementBuffer == id {
		r.elementBuffer = 0
	}
	r.log("DeleteBuffer", id)
}

func (r *Recorder) BindBuffer(target gpu.BufferTarget, id uint32) {
	if target == gpu.ElementArrayBuffer {
		r.elementBuffer = id
	} else {
		r.arrayBuffer = id
	}
	r.log("BindBuffer", target, id)
}

func (r *Recorder) BufferData(target gpu.BufferTarget, data []byte, usage gpu.BufferUsage) {
	id := r.arrayBuffer
	if target == gpu.ElementArrayBuffer {
		id = r.elementBuffer
	}
	if _, ok := r.buffers[id]; ok {
		r.buffers[id] = append([]byte(nil), data...)
	}
	r.log("BufferData", target, len(data), usage)
}

func (r *Recorder) GenTexture() uint32 {
	id := r.id()
	r.textures[id] = true
	r.log("GenTexture", id)
	return id
}

func (r *Recorder) DeleteTexture(id uint32) {
	delete(r.textures, id)
	for unit, tex := range r.boundTex {
		if tex == id {
			r.boundTex[unit] = 0
		}
	}
	r.log("DeleteTexture", id)
}

func (r *Recorder) BindTexture(target gpu.TextureTarget, id uint32) {
	r.boundTex[r.activeUnit] = id
	r.log("BindTexture", r.activeUnit, id)
}

func (r *Recorder) TexImage2D(target gpu.TextureTarget, width, height int, rgba []byte) {
	r.log("TexImage2D", width, height, len(rgba))
}

func (r *Recorder) TexParameter(target gpu.TextureTarget, param gpu.TextureParam, value int) {
	r.log("TexParameter", r.boundTex[r.activeUnit], param, value)
}

func (r *Recorder) GenerateMipmap(target gpu.TextureTarget) {
	r.log("GenerateMipmap", r.boundTex[r.activeUnit])
}

func (r *Recorder) ActiveTexture(unit int) {
	r.activeUnit = unit
	r.log("ActiveTexture", unit)
}

func (r *Recorder) Enable(c gpu.Capability, enabled bool) {
	r.caps[c] = enabled
	r.log("Enable", c, enabled)
}

func (r *Recorder) EnableVertexAttribArray(location int32, enabled bool) {
	if location < 0 {
		return
	}
	r.attribs[location] = enabled
	r.log("EnableVertexAttribArray", location, enabled)
}

func (r *Recorder) VertexAttribPointer(location int32, size int32, typ gpu.DataType, normalized bool, stride int32, offset int) {
	if location < 0 {
		return
	}
	r.log("VertexAttribPointer", location, size, typ, normalized, stride, offset)
}

var (
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)
	attribDecl  = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?in\s+\w+\s+(\w+)\s*;`)
)

// CreateProgram "links" a program by scanning the sources for uniform and
// vertex input declarations, assigning locations in declaration order.
func (r *Recorder) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	if err := r.CreateErr; err != nil {
		r.CreateErr = nil
		return 0, err
	}
	p := &program{
		uniforms: make(map[string]int32),
		attribs:  make(map[string]int32),
		values:   make(map[int32]any),
	}
	var loc int32
	for _, src := range []string{vertexSrc, fragmentSrc} {
		for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
			if _, ok := p.uniforms[m[1]]; !ok {
				p.uniforms[m[1]] = loc
				loc++
			}
		}
	}
	for i, m := range attribDecl.FindAllStringSubmatch(vertexSrc, -1) {
		p.attribs[m[1]] = int32(i)
	}
	id := r.id()
	r.programs[id] = p
	r.log("CreateProgram", id)
	return id, nil
}

func (r *Recorder) DeleteProgram(id uint32) {
	delete(r.programs, id)
	r.log("DeleteProgram", id)
}

func (r *Recorder) UseProgram(id uint32) {
	r.current = id
	r.log("UseProgram", id)
}

func (r *Recorder) UniformLocation(prog uint32, name string) int32 {
	if p := r.programs[prog]; p != nil {
		if loc, ok := p.uniforms[name]; ok {
			return loc
		}
	}
	return -1
}

func (r *Recorder) AttribLocation(prog uint32, name string) int32 {
	if p := r.programs[prog]; p != nil {
		if loc, ok := p.attribs[name]; ok {
			return loc
		}
	}
	return -1
}

func (r *Recorder) setUniform(name string, location int32, v any) {
	r.log(name, location, v)
	if location < 0 {
		return
	}
	if p := r.programs[r.current]; p != nil {
		p.values[location] = v
	}
}

func (r *Recorder) Uniform1i(location int32, v int32) { r.setUniform("Uniform1i", location, v) }

func (r *Recorder) Uniform1f(location int32, v float32) { r.setUniform("Uniform1f", location, v) }

func (r *Recorder) Uniform3f(location int32, x, y, z float32) {
	r.setUniform("Uniform3f", location, [3]float32{x, y, z})
}

func (r *Recorder) UniformMatrix4fv(location int32, m *[16]float32) {
	r.setUniform("UniformMatrix4fv", location, *m)
}

func (r *Recorder) DrawElements(mode gpu.PrimitiveMode, count int32, typ gpu.DataType, offset int) {
	r.draw(count)
	r.log("DrawElements", mode, count, typ, offset)
}

func (r *Recorder) DrawArrays(mode gpu.PrimitiveMode, first, count int32) {
	r.draw(count)
	r.log("DrawArrays", mode, first, count)
}

func (r *Recorder) draw(count int32) {
	d := Draw{
		Program:       r.current,
		ArrayBuffer:   r.arrayBuffer,
		ElementBuffer: r.elementBuffer,
		Count:         count,
		Attribs:       r.EnabledAttribs(),
		Uniforms:      make(map[int32]any),
	}
	if p := r.programs[r.current]; p != nil {
		for k, v := range p.values {
			d.Uniforms[k] = v
		}
	}
	r.Draws = append(r.Draws, d)
}
