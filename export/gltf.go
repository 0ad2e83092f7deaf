// Package export writes the chunk meshes of a voxel map as glTF, one node per
// non-empty chunk, for inspection in external tools.
package export

import (
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"map-renderer/internal/chunk"
	"map-renderer/voxel"
)

// Summary counts what was exported.
type Summary struct {
	Chunks    int
	Vertices  int
	Triangles int
}

// Document builds a glTF document holding every non-empty chunk of m. The
// root node turns the map's Z-up frame into glTF's Y-up frame.
func Document(m *voxel.Map) (*gltf.Document, Summary) {
	doc := gltf.NewDocument()
	root := &gltf.Node{
		Name:     "map",
		Rotation: [4]float64{-math.Sqrt2 / 2, 0, 0, math.Sqrt2 / 2},
	}
	doc.Nodes = append(doc.Nodes, root)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	var (
		sum  Summary
		mesh chunk.Mesh
	)
	for cz := 0; cz < m.Depth()/chunk.Size; cz++ {
		for cy := 0; cy < m.Height()/chunk.Size; cy++ {
			for cx := 0; cx < m.Width()/chunk.Size; cx++ {
				chunk.BuildMesh(m, cx, cy, cz, &mesh)
				if len(mesh.Indices) == 0 {
					continue
				}
				meshIdx := addMesh(doc, fmt.Sprintf("chunk_%d_%d_%d", cx, cy, cz), &mesh)
				doc.Nodes = append(doc.Nodes, &gltf.Node{
					Name:        fmt.Sprintf("chunk_%d_%d_%d", cx, cy, cz),
					Mesh:        gltf.Index(meshIdx),
					Translation: [3]float64{float64(cx * chunk.Size), float64(cy * chunk.Size), float64(cz * chunk.Size)},
				})
				root.Children = append(root.Children, len(doc.Nodes)-1)

				sum.Chunks++
				sum.Vertices += len(mesh.Vertices)
				sum.Triangles += len(mesh.Indices) / 3
			}
		}
	}
	return doc, sum
}

func addMesh(doc *gltf.Document, name string, mesh *chunk.Mesh) int {
	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	colors := make([][4]uint8, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
		normals[i] = [3]float32{float32(v.NX), float32(v.NY), float32(v.NZ)}
		colors[i] = [4]uint8{v.R, v.G, v.B, v.A}
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(modeler.WriteIndices(doc, mesh.Indices)),
			Attributes: map[string]int{
				gltf.POSITION: modeler.WritePosition(doc, positions),
				gltf.NORMAL:   modeler.WriteNormal(doc, normals),
				gltf.COLOR_0:  modeler.WriteColor(doc, colors),
			},
		}},
	})
	return len(doc.Meshes) - 1
}

// Write encodes m as a binary glTF (.glb) stream.
func Write(w io.Writer, m *voxel.Map) (Summary, error) {
	doc, sum := Document(m)
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return sum, fmt.Errorf("encode gltf: %w", err)
	}
	return sum, nil
}

// SaveFile writes m to path, as .glb or as .gltf with the buffer embedded as
// a data URI, depending on the extension.
func SaveFile(path string, m *voxel.Map) (Summary, error) {
	doc, sum := Document(m)

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		err = gltf.SaveBinary(doc, path)
	case ".gltf":
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
		err = gltf.Save(doc, path)
	default:
		return sum, fmt.Errorf("export %q: unknown extension, want .glb or .gltf", path)
	}
	if err != nil {
		return sum, fmt.Errorf("export %q: %w", path, err)
	}
	log.Printf("export: %s: %d chunks, %d triangles", path, sum.Chunks, sum.Triangles)
	return sum, nil
}
