// Package chunk implements the renderable unit of the map: one Size³ block of
// voxels with its own vertex and index buffers.
package chunk

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"map-renderer/internal/gpu"
	"map-renderer/internal/shader"
	"map-renderer/scene"
	"map-renderer/voxel"
)

const (
	SizeBits = 4
	Size     = 1 << SizeBits
)

// State is the residency state of a chunk.
type State int

const (
	// Unrealized chunks hold no geometry or GPU buffers.
	Unrealized State = iota
	// Realized chunks may hold geometry and draw when asked.
	Realized
)

func (s State) String() string {
	if s == Realized {
		return "realized"
	}
	return "unrealized"
}

// Chunk is one cell of the renderer's chunk grid.
type Chunk struct {
	m   *voxel.Map
	dev gpu.Device

	cx, cy, cz int
	origin     mgl32.Vec3
	center     mgl32.Vec3

	state       State
	needsUpdate bool

	vertexBuffer uint32
	indexBuffer  uint32
	indexCount   int32

	mesh     Mesh
	rebuilds int
}

// New allocates a chunk for grid cell (cx, cy, cz).
func New(m *voxel.Map, dev gpu.Device, cx, cy, cz int) *Chunk {
	c := &Chunk{}
	c.Init(m, dev, cx, cy, cz)
	return c
}

// Init sets up a chunk in place, for callers that allocate chunks in bulk.
func (c *Chunk) Init(m *voxel.Map, dev gpu.Device, cx, cy, cz int) {
	*c = Chunk{
		m:           m,
		dev:         dev,
		cx:          cx,
		cy:          cy,
		cz:          cz,
		origin:      mgl32.Vec3{float32(cx * Size), float32(cy * Size), float32(cz * Size)},
		needsUpdate: true,
	}
	c.center = c.origin.Add(mgl32.Vec3{Size / 2, Size / 2, Size / 2})
}

// Address returns the chunk's grid coordinates.
func (c *Chunk) Address() (cx, cy, cz int) { return c.cx, c.cy, c.cz }

// State returns the residency state.
func (c *Chunk) State() State { return c.state }

// Realized reports whether the chunk is resident.
func (c *Chunk) Realized() bool { return c.state == Realized }

// SetRealized moves the chunk between states. Releasing frees the buffers and
// the CPU mesh; realizing marks the geometry stale so the next draw builds it.
func (c *Chunk) SetRealized(realized bool) {
	if realized == c.Realized() {
		return
	}
	if realized {
		c.state = Realized
		c.needsUpdate = true
		return
	}
	c.freeBuffers()
	c.mesh = Mesh{}
	c.state = Unrealized
}

// SetNeedsUpdate marks the geometry stale. It is valid in either state.
func (c *Chunk) SetNeedsUpdate() { c.needsUpdate = true }

// NeedsUpdate reports whether the geometry is stale.
func (c *Chunk) NeedsUpdate() bool { return c.needsUpdate }

// Rebuilds returns how many times the mesh has been rebuilt.
func (c *Chunk) Rebuilds() int { return c.rebuilds }

// DistanceFromEye is the horizontal Chebyshev distance from eye to the
// chunk's footprint, taking the map's wrap into account. Height is ignored so
// that whole columns stream in and out together.
func (c *Chunk) DistanceFromEye(eye mgl32.Vec3) float32 {
	dx := WrapOffset(c.center.X(), eye.X(), float32(c.m.Width()))
	dy := WrapOffset(c.center.Y(), eye.Y(), float32(c.m.Height()))
	d := max(abs32(dx), abs32(dy)) - Size/2
	return max(d, 0)
}

// RenderSunlightPass draws the chunk with the program already in use.
func (c *Chunk) RenderSunlightPass(p *shader.Program) {
	if !c.prepare() {
		return
	}
	p.SetVec3(shader.ChunkPosition, c.origin)
	c.bindAttributes(p)
	c.dev.DrawElements(gpu.Triangles, c.indexCount, gpu.UnsignedInt, 0)
}

// RenderDynamicLightPass draws the chunk once per light. Light origins are
// moved to the copy nearest the chunk so lights near the map seam reach
// across it.
func (c *Chunk) RenderDynamicLightPass(p *shader.Program, lights []scene.DynamicLight) {
	if len(lights) == 0 || !c.prepare() {
		return
	}
	p.SetVec3(shader.ChunkPosition, c.origin)
	c.bindAttributes(p)
	w, h := float32(c.m.Width()), float32(c.m.Height())
	for _, l := range lights {
		o := l.Origin
		o[0] = c.center.X() + WrapOffset(c.center.X(), o.X(), w)
		o[1] = c.center.Y() + WrapOffset(c.center.Y(), o.Y(), h)
		p.SetVec3(shader.DynamicLightOrigin, o)
		p.SetVec3(shader.DynamicLightColor, l.Color)
		p.SetFloat(shader.DynamicLightRadius, l.Radius)
		c.dev.DrawElements(gpu.Triangles, c.indexCount, gpu.UnsignedInt, 0)
	}
}

// Destroy releases all GPU resources. The chunk ends unrealized.
func (c *Chunk) Destroy() {
	c.freeBuffers()
	c.mesh = Mesh{}
	c.state = Unrealized
}

// prepare rebuilds stale geometry and reports whether there is anything to
// draw.
func (c *Chunk) prepare() bool {
	if c.state != Realized {
		return false
	}
	if c.needsUpdate {
		c.update()
	}
	return c.indexCount > 0
}

func (c *Chunk) update() {
	c.needsUpdate = false
	c.rebuilds++
	BuildMesh(c.m, c.cx, c.cy, c.cz, &c.mesh)

	if len(c.mesh.Indices) == 0 {
		c.freeBuffers()
		return
	}
	if c.vertexBuffer == 0 {
		c.vertexBuffer = c.dev.GenBuffer()
		c.indexBuffer = c.dev.GenBuffer()
	}
	c.dev.BindBuffer(gpu.ArrayBuffer, c.vertexBuffer)
	c.dev.BufferData(gpu.ArrayBuffer, vertexBytes(c.mesh.Vertices), gpu.StaticDraw)
	c.dev.BindBuffer(gpu.ElementArrayBuffer, c.indexBuffer)
	c.dev.BufferData(gpu.ElementArrayBuffer, indexBytes(c.mesh.Indices), gpu.StaticDraw)
	c.indexCount = int32(len(c.mesh.Indices))
}

func (c *Chunk) bindAttributes(p *shader.Program) {
	c.dev.BindBuffer(gpu.ArrayBuffer, c.vertexBuffer)
	c.dev.VertexAttribPointer(p.Attrib(shader.Position), 3, gpu.UnsignedByte, false, VertexStride, offsetPosition)
	if p.HasAttrib(shader.AmbientOcclusionCoord) {
		c.dev.VertexAttribPointer(p.Attrib(shader.AmbientOcclusionCoord), 2, gpu.UnsignedShort, true, VertexStride, offsetAO)
	}
	c.dev.VertexAttribPointer(p.Attrib(shader.Color), 4, gpu.UnsignedByte, true, VertexStride, offsetColor)
	if p.HasAttrib(shader.Normal) {
		c.dev.VertexAttribPointer(p.Attrib(shader.Normal), 3, gpu.Byte, false, VertexStride, offsetNormal)
	}
	c.dev.BindBuffer(gpu.ElementArrayBuffer, c.indexBuffer)
}

func (c *Chunk) freeBuffers() {
	if c.vertexBuffer != 0 {
		c.dev.DeleteBuffer(c.vertexBuffer)
		c.vertexBuffer = 0
	}
	if c.indexBuffer != 0 {
		c.dev.DeleteBuffer(c.indexBuffer)
		c.indexBuffer = 0
	}
	c.indexCount = 0
}

// WrapDelta folds d into [-period/2, period/2) in constant time. Infinite and
// NaN values are returned unchanged.
func WrapDelta(d, period float32) float32 {
	if math.IsInf(float64(d), 0) || math.IsNaN(float64(d)) {
		return d
	}
	r := float32(math.Remainder(float64(d), float64(period)))
	if r >= period/2 {
		r -= period
	}
	return r
}

// WrapOffset returns the offset from from to the copy of to nearest it. to is
// folded into the period first so positions far from the origin keep their
// precision relative to from.
func WrapOffset(from, to, period float32) float32 {
	return WrapDelta(WrapDelta(to, period)-from, period)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
