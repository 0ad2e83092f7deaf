package maprender

import (
	"map-renderer/internal/chunk"
	"map-renderer/voxel"
)

// AffectedChunks returns the chunks whose geometry may depend on voxel
// (x, y, z): the 3×3 block of columns around the voxel's chunk, on the
// voxel's own chunk layer plus the layer below or above when the voxel sits
// on that boundary. X and Y wrap; layers outside the grid are dropped. The
// result holds no duplicates, which matters on grids narrower than three
// chunks.
func AffectedChunks(g Grid, x, y, z int) []Address {
	cx, cy, cz := x>>chunk.SizeBits, y>>chunk.SizeBits, z>>chunk.SizeBits

	fz := z & (chunk.Size - 1)
	sz, ez := 0, 0
	if fz == 0 {
		sz = -1
	}
	if fz == chunk.Size-1 {
		ez = 1
	}

	out := make([]Address, 0, 9*(ez-sz+1))
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := sz; dz <= ez; dz++ {
				a, ok := g.Wrap(Address{X: cx + dx, Y: cy + dy, Z: cz + dz})
				if !ok || containsAddress(out, a) {
					continue
				}
				out = append(out, a)
			}
		}
	}
	return out
}

func containsAddress(list []Address, a Address) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

// GameMapChanged marks every chunk affected by an edit at (x, y, z) as
// needing a rebuild. It matches voxel.Listener and is subscribed to the map
// by New.
func (r *MapRenderer) GameMapChanged(x, y, z int, _ *voxel.Map) {
	for _, a := range AffectedChunks(r.grid, x, y, z) {
		r.chunks[r.grid.Index(a)].SetNeedsUpdate()
		r.stats.Invalidated++
	}
}
