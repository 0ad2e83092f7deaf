package chunk

import (
	"unsafe"

	"map-renderer/internal/texture"
	"map-renderer/voxel"
)

// Vertex is the GPU layout of one block-face corner. The struct has no
// padding; VertexStride and the offsets below describe it to the device.
type Vertex struct {
	X, Y, Z uint8 // position relative to the chunk origin, 0..Size
	_       uint8
	AOX     uint16 // AO atlas coordinate, normalized
	AOY     uint16
	R, G, B uint8
	A       uint8
	NX      int8 // face normal
	NY      int8
	NZ      int8
	_       int8
}

const (
	VertexStride   = int32(unsafe.Sizeof(Vertex{}))
	offsetPosition = 0
	offsetAO       = 4
	offsetColor    = 8
	offsetNormal   = 12
)

// Mesh is the CPU-side geometry of one chunk.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Reset empties the mesh, keeping its storage.
func (m *Mesh) Reset() {
	m.Vertices = m.Vertices[:0]
	m.Indices = m.Indices[:0]
}

// Faces returns the number of quads in the mesh.
func (m *Mesh) Faces() int { return len(m.Vertices) / 4 }

type face struct {
	normal [3]int
	base   [3]int // corner (0,0) relative to the voxel
	u, v   [3]int // u × v == normal, so corners listed u-then-v wind CCW from outside
}

var faces = [6]face{
	{normal: [3]int{1, 0, 0}, base: [3]int{1, 0, 0}, u: [3]int{0, 1, 0}, v: [3]int{0, 0, 1}},
	{normal: [3]int{-1, 0, 0}, base: [3]int{0, 0, 0}, u: [3]int{0, 0, 1}, v: [3]int{0, 1, 0}},
	{normal: [3]int{0, 1, 0}, base: [3]int{0, 1, 0}, u: [3]int{0, 0, 1}, v: [3]int{1, 0, 0}},
	{normal: [3]int{0, -1, 0}, base: [3]int{0, 0, 0}, u: [3]int{1, 0, 0}, v: [3]int{0, 0, 1}},
	{normal: [3]int{0, 0, 1}, base: [3]int{0, 0, 1}, u: [3]int{1, 0, 0}, v: [3]int{0, 1, 0}},
	{normal: [3]int{0, 0, -1}, base: [3]int{0, 0, 0}, u: [3]int{0, 1, 0}, v: [3]int{1, 0, 0}},
}

var quadCorners = [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// BuildMesh extracts the exposed faces of chunk (cx, cy, cz) into out.
// Neighbour voxels are read straight from the map, so faces on the chunk
// boundary depend on the adjacent chunks' contents.
func BuildMesh(m *voxel.Map, cx, cy, cz int, out *Mesh) {
	out.Reset()
	ox, oy, oz := cx*Size, cy*Size, cz*Size

	for lz := 0; lz < Size; lz++ {
		for ly := 0; ly < Size; ly++ {
			for lx := 0; lx < Size; lx++ {
				x, y, z := ox+lx, oy+ly, oz+lz
				if !m.IsSolid(x, y, z) {
					continue
				}
				color := m.Color(x, y, z)
				for i := range faces {
					f := &faces[i]
					nx, ny, nz := x+f.normal[0], y+f.normal[1], z+f.normal[2]
					if m.IsSolid(nx, ny, nz) {
						continue
					}
					emitFace(out, m, f, [3]int{lx, ly, lz}, [3]int{nx, ny, nz}, color)
				}
			}
		}
	}
}

func emitFace(out *Mesh, m *voxel.Map, f *face, local, outside [3]int, color uint32) {
	pattern := aoPattern(m, f, outside)
	first := uint32(len(out.Vertices))

	for _, c := range quadCorners {
		var p [3]int
		for k := 0; k < 3; k++ {
			p[k] = local[k] + f.base[k] + c[0]*f.u[k] + c[1]*f.v[k]
		}
		s, t := texture.AOTexCoord(pattern, c[0], c[1])
		out.Vertices = append(out.Vertices, Vertex{
			X: uint8(p[0]), Y: uint8(p[1]), Z: uint8(p[2]),
			AOX: uint16(s * 65535), AOY: uint16(t * 65535),
			R: uint8(color >> 16), G: uint8(color >> 8), B: uint8(color), A: 255,
			NX: int8(f.normal[0]), NY: int8(f.normal[1]), NZ: int8(f.normal[2]),
		})
	}
	out.Indices = append(out.Indices, first, first+1, first+2, first, first+2, first+3)
}

// aoPattern samples the eight voxels around the cell in front of the face.
func aoPattern(m *voxel.Map, f *face, outside [3]int) uint8 {
	var pattern uint8
	for i := 0; i < 8; i++ {
		du, dv := texture.AONeighbour(i)
		x := outside[0] + du*f.u[0] + dv*f.v[0]
		y := outside[1] + du*f.u[1] + dv*f.v[1]
		z := outside[2] + du*f.u[2] + dv*f.v[2]
		if m.IsSolid(x, y, z) {
			pattern |= 1 << i
		}
	}
	return pattern
}

func vertexBytes(v []Vertex) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(VertexStride))
}

func indexBytes(idx []uint32) []byte {
	if len(idx) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&idx[0])), len(idx)*4)
}
