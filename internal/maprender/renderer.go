// Package maprender draws the voxel map as a grid of chunks. It decides which
// chunks keep GPU resources, routes voxel edits to the chunks they affect and
// walks the chunks front to back for the sunlight and dynamic-light passes.
package maprender

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"map-renderer/internal/chunk"
	"map-renderer/internal/gpu"
	"map-renderer/internal/shader"
	"map-renderer/internal/texture"
	"map-renderer/scene"
	"map-renderer/voxel"
)

// ChunkUnit is what the renderer needs from a chunk. Every method checks the
// unit's own state first; draws on an unrealized unit do nothing.
type ChunkUnit interface {
	SetRealized(realized bool)
	Realized() bool
	SetNeedsUpdate()
	NeedsUpdate() bool
	DistanceFromEye(eye mgl32.Vec3) float32
	// The program is in use and the pass state bound when these are called.
	RenderSunlightPass(p *shader.Program)
	RenderDynamicLightPass(p *shader.Program, lights []scene.DynamicLight)
	Destroy()
}

// ChunkAllocator creates every unit of g, in flat index order.
type ChunkAllocator func(g Grid) []ChunkUnit

// Resources hands out the programs and images the renderer borrows. The
// renderer never destroys them.
type Resources interface {
	Program(name string) (*shader.Program, error)
	Image(name string) (*texture.Image, error)
}

// RegistryResources serves Resources from the shader and texture registries.
type RegistryResources struct {
	Shaders *shader.Registry
	Images  *texture.Manager
}

func (r RegistryResources) Program(name string) (*shader.Program, error) {
	return r.Shaders.Register(name)
}

func (r RegistryResources) Image(name string) (*texture.Image, error) {
	return r.Images.Register(name)
}

// Options configures a MapRenderer. The zero value is usable.
type Options struct {
	// PhysicalLighting selects the sunlight program with per-face lighting.
	PhysicalLighting bool
	// Streaming overrides DefaultStreamingPolicy when non-zero.
	Streaming StreamingPolicy
	// CullUnlitChunks gives each chunk only the lights touching it in the
	// dynamic pass and skips chunks no light reaches.
	CullUnlitChunks bool
	// Allocate overrides the default chunk arena.
	Allocate ChunkAllocator
}

// Stats describes the renderer's recent work.
type Stats struct {
	Chunks   int
	Realized int
	// Realized chunks visited by the last pass of each kind.
	SunlightVisited int
	DynamicVisited  int
	// Total SetNeedsUpdate calls issued for map edits.
	Invalidated int
}

// MapRenderer owns the chunk grid of one map.
type MapRenderer struct {
	m   *voxel.Map
	dev gpu.Device

	grid      Grid
	chunks    []ChunkUnit
	infos     []ChunkInfo
	policy    StreamingPolicy
	traversal Traversal
	opts      Options

	basicProgram  *shader.Program
	dlightProgram *shader.Program
	aoImage       *texture.Image
	detailImage   *texture.Image

	squareVertexBuffer uint32
	unsubscribe        func()

	stats     Stats
	lightsBuf []scene.DynamicLight
}

// squareVertices is a unit quad as two triangles of uint8 (x, y) pairs.
var squareVertices = []byte{
	0, 0, 1, 0, 0, 1,
	1, 1, 0, 1, 1, 0,
}

// New builds the chunk grid for m and subscribes to its edits. The map's
// dimensions must be multiples of the chunk size whose chunk counts are powers
// of two; anything else panics.
func New(m *voxel.Map, dev gpu.Device, res Resources, opts Options) (*MapRenderer, error) {
	if m.Width()%chunk.Size != 0 || m.Height()%chunk.Size != 0 || m.Depth()%chunk.Size != 0 {
		panic(fmt.Sprintf("maprender: map size %dx%dx%d is not a multiple of %d",
			m.Width(), m.Height(), m.Depth(), chunk.Size))
	}
	grid := NewGrid(m.Width()>>chunk.SizeBits, m.Height()>>chunk.SizeBits, m.Depth()>>chunk.SizeBits)

	if opts.Streaming == (StreamingPolicy{}) {
		opts.Streaming = DefaultStreamingPolicy()
	}
	if err := opts.Streaming.Validate(); err != nil {
		return nil, fmt.Errorf("streaming policy: %w", err)
	}

	r := &MapRenderer{
		m:         m,
		dev:       dev,
		grid:      grid,
		policy:    opts.Streaming,
		traversal: NewTraversal(grid),
		opts:      opts,
	}

	basic := shader.BasicBlock
	if opts.PhysicalLighting {
		basic = shader.BasicBlockPhys
	}
	var err error
	if r.basicProgram, err = res.Program(basic); err != nil {
		return nil, fmt.Errorf("sunlight program: %w", err)
	}
	if r.dlightProgram, err = res.Program(shader.BasicBlockDynamicLit); err != nil {
		return nil, fmt.Errorf("dynamic light program: %w", err)
	}
	if r.aoImage, err = res.Image(texture.AmbientOcclusion); err != nil {
		return nil, fmt.Errorf("ambient occlusion image: %w", err)
	}
	if r.detailImage, err = res.Image(texture.Detail); err != nil {
		return nil, fmt.Errorf("detail image: %w", err)
	}

	allocate := opts.Allocate
	if allocate == nil {
		allocate = chunkArena(m, dev)
	}
	r.chunks = allocate(grid)
	if len(r.chunks) != grid.Len() {
		panic(fmt.Sprintf("maprender: allocator returned %d chunks for a grid of %d", len(r.chunks), grid.Len()))
	}
	r.infos = make([]ChunkInfo, grid.Len())

	r.squareVertexBuffer = dev.GenBuffer()
	dev.BindBuffer(gpu.ArrayBuffer, r.squareVertexBuffer)
	dev.BufferData(gpu.ArrayBuffer, squareVertices, gpu.StaticDraw)
	dev.BindBuffer(gpu.ArrayBuffer, 0)

	r.unsubscribe = m.AddListener(r.GameMapChanged)

	log.Printf("maprender: %dx%dx%d chunks, sunlight program %s", grid.Width, grid.Height, grid.Depth, basic)
	return r, nil
}

// chunkArena allocates all chunks in one slice and initializes them in place.
func chunkArena(m *voxel.Map, dev gpu.Device) ChunkAllocator {
	return func(g Grid) []ChunkUnit {
		arena := make([]chunk.Chunk, g.Len())
		units := make([]ChunkUnit, len(arena))
		for i := range arena {
			a := g.Address(i)
			arena[i].Init(m, dev, a.X, a.Y, a.Z)
			units[i] = &arena[i]
		}
		return units
	}
}

// Destroy releases every chunk and the shared buffer and stops listening to
// the map. Borrowed programs and images are left alone.
func (r *MapRenderer) Destroy() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	for _, c := range r.chunks {
		c.Destroy()
	}
	if r.squareVertexBuffer != 0 {
		r.dev.DeleteBuffer(r.squareVertexBuffer)
		r.squareVertexBuffer = 0
	}
}

// Grid returns the chunk grid.
func (r *MapRenderer) Grid() Grid { return r.grid }

// Chunk returns the unit at a, wrapping X and Y. It returns nil when Z is
// outside the grid.
func (r *MapRenderer) Chunk(a Address) ChunkUnit {
	a, ok := r.grid.Wrap(a)
	if !ok {
		return nil
	}
	return r.chunks[r.grid.Index(a)]
}

// Info returns the bookkeeping for the chunk at an in-range address.
func (r *MapRenderer) Info(a Address) ChunkInfo { return r.infos[r.grid.Index(a)] }

// SquareVertexBuffer returns the shared unit quad buffer.
func (r *MapRenderer) SquareVertexBuffer() uint32 { return r.squareVertexBuffer }

// Stats returns counters for the most recent frame.
func (r *MapRenderer) Stats() Stats {
	s := r.stats
	s.Chunks = len(r.chunks)
	return s
}

// Prerender runs before the passes of a frame. It has nothing to do yet.
func (r *MapRenderer) Prerender() {}

// RealizeChunks applies the streaming policy to every chunk for eye.
func (r *MapRenderer) RealizeChunks(eye mgl32.Vec3) {
	realized := 0
	for i, c := range r.chunks {
		dist := c.DistanceFromEye(eye)
		r.infos[i].Distance = dist
		was := c.Realized()
		next := r.policy.Next(dist, was)
		if next != was {
			c.SetRealized(next)
		}
		if next {
			realized++
		}
	}
	r.stats.Realized = realized
}

// RenderSunlightPass draws every realized chunk with the sun and fog.
func (r *MapRenderer) RenderSunlightPass(def scene.SceneDef) {
	st := gpu.NewPassState(r.dev)
	defer st.Release()

	st.BindTexture(0, r.aoImage.ID)
	r.dev.TexParameter(gpu.Texture2D, gpu.TextureMinFilter, gpu.Linear)
	st.BindTexture(1, r.detailImage.ID)

	st.Enable(gpu.CullFace)
	st.Enable(gpu.DepthTest)

	p := r.basicProgram
	p.Use()

	p.SetFloat(shader.FogDistance, def.FogDistance)
	light := def.View.Mul4x1(mgl32.Vec4{0, -1, -1, 0}).Vec3()
	p.SetVec3(shader.ViewSpaceLight, light)
	fog := def.FogColor
	p.SetVec3(shader.FogColor, mgl32.Vec3{fog[0] * fog[0], fog[1] * fog[1], fog[2] * fog[2]})
	p.SetInt(shader.AmbientOcclusionTexture, 0)
	p.SetInt(shader.DetailTexture, 1)

	r.dev.BindBuffer(gpu.ArrayBuffer, 0)
	st.EnableAttrib(p.Attrib(shader.Position))
	st.EnableAttrib(p.Attrib(shader.AmbientOcclusionCoord))
	st.EnableAttrib(p.Attrib(shader.Color))
	st.EnableAttrib(p.Attrib(shader.Normal))

	p.SetMat4(shader.ProjectionViewMatrix, def.ProjectionView())
	p.SetMat4(shader.ViewMatrix, def.View)

	r.RealizeChunks(def.ViewOrigin)

	visited := 0
	r.traversal.Walk(def.ViewOrigin, func(a Address) {
		c := r.chunks[r.grid.Index(a)]
		if c.Realized() {
			visited++
		}
		c.RenderSunlightPass(p)
	})
	r.stats.SunlightVisited = visited
}

// RenderDynamicLightPass adds the contribution of lights. It does nothing,
// binds nothing and leaves chunk residency alone when lights is empty.
func (r *MapRenderer) RenderDynamicLightPass(def scene.SceneDef, lights []scene.DynamicLight) {
	if len(lights) == 0 {
		r.stats.DynamicVisited = 0
		return
	}

	st := gpu.NewPassState(r.dev)
	defer st.Release()

	st.BindTexture(0, r.detailImage.ID)

	st.Enable(gpu.CullFace)
	st.Enable(gpu.DepthTest)

	p := r.dlightProgram
	p.Use()

	p.SetFloat(shader.FogDistance, def.FogDistance)
	p.SetInt(shader.DetailTexture, 0)

	r.dev.BindBuffer(gpu.ArrayBuffer, 0)
	st.EnableAttrib(p.Attrib(shader.Position))
	st.EnableAttrib(p.Attrib(shader.Color))
	st.EnableAttrib(p.Attrib(shader.Normal))

	p.SetMat4(shader.ProjectionViewMatrix, def.ProjectionView())
	p.SetMat4(shader.ViewMatrix, def.View)

	r.RealizeChunks(def.ViewOrigin)

	visited := 0
	r.traversal.Walk(def.ViewOrigin, func(a Address) {
		c := r.chunks[r.grid.Index(a)]
		chunkLights := lights
		if r.opts.CullUnlitChunks {
			chunkLights = r.lightsTouching(a, lights)
			if len(chunkLights) == 0 {
				return
			}
		}
		if c.Realized() {
			visited++
		}
		c.RenderDynamicLightPass(p, chunkLights)
	})
	r.stats.DynamicVisited = visited
}

// lightsTouching returns the lights whose sphere reaches chunk a, comparing
// against the copy of each light nearest the chunk. The result aliases a
// buffer reused across calls.
func (r *MapRenderer) lightsTouching(a Address, lights []scene.DynamicLight) []scene.DynamicLight {
	const s = float32(chunk.Size)
	lo := mgl32.Vec3{float32(a.X) * s, float32(a.Y) * s, float32(a.Z) * s}
	hi := lo.Add(mgl32.Vec3{s, s, s})
	center := lo.Add(mgl32.Vec3{s / 2, s / 2, s / 2})
	w, h := float32(r.m.Width()), float32(r.m.Height())

	out := r.lightsBuf[:0]
	for _, l := range lights {
		near := l
		near.Origin[0] = center[0] + chunk.WrapOffset(center[0], l.Origin[0], w)
		near.Origin[1] = center[1] + chunk.WrapOffset(center[1], l.Origin[1], h)
		if near.IntersectsBox(lo, hi) {
			out = append(out, l)
		}
	}
	r.lightsBuf = out
	return out
}
