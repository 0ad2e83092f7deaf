package texture

import (
	"math"
	"math/rand"
)

// The AO atlas holds one tile per 8-neighbour occlusion pattern of a voxel
// face, laid out as AOTiles×AOTiles tiles of AOTileSize texels.
//
// Pattern bits, with (du, dv) the neighbour offset in the face plane:
//
//	bit 0 (-1,-1)  bit 1 (0,-1)  bit 2 (1,-1)
//	bit 3 (-1, 0)                bit 4 (1, 0)
//	bit 5 (-1, 1)  bit 6 (0, 1)  bit 7 (1, 1)
const (
	AOTiles    = 16
	AOTileSize = 16
	AOSize     = AOTiles * AOTileSize
)

var aoNeighbours = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// AONeighbour returns the in-plane offset encoded by pattern bit i.
func AONeighbour(i int) (du, dv int) {
	return aoNeighbours[i][0], aoNeighbours[i][1]
}

// AOTexCoord returns the atlas coordinate of corner (u, v) of the tile for
// pattern, u and v being 0 or 1. Coordinates are inset by half a texel so
// linear filtering never bleeds into neighbouring tiles.
func AOTexCoord(pattern uint8, u, v int) (s, t float32) {
	tx := int(pattern) % AOTiles
	ty := int(pattern) / AOTiles
	s = (float32(tx*AOTileSize) + 0.5 + float32(u)*(AOTileSize-1)) / AOSize
	t = (float32(ty*AOTileSize) + 0.5 + float32(v)*(AOTileSize-1)) / AOSize
	return s, t
}

// AOAtlas renders the ambient occlusion atlas.
func AOAtlas() ([]byte, int, int) {
	pixels := make([]byte, AOSize*AOSize*4)
	for pattern := 0; pattern < AOTiles*AOTiles; pattern++ {
		tx := pattern % AOTiles
		ty := pattern / AOTiles
		for py := 0; py < AOTileSize; py++ {
			for px := 0; px < AOTileSize; px++ {
				fx := (float64(px) + 0.5) / AOTileSize
				fy := (float64(py) + 0.5) / AOTileSize
				v := uint8(aoValue(uint8(pattern), fx, fy) * 255)

				i := ((ty*AOTileSize+py)*AOSize + tx*AOTileSize + px) * 4
				pixels[i] = v
				pixels[i+1] = v
				pixels[i+2] = v
				pixels[i+3] = 255
			}
		}
	}
	return pixels, AOSize, AOSize
}

// aoValue is the unoccluded fraction at (fx, fy) in [0,1]² of a face whose
// occluding neighbours are given by pattern.
func aoValue(pattern uint8, fx, fy float64) float64 {
	occ := 0.0
	for i, n := range aoNeighbours {
		if pattern&(1<<i) == 0 {
			continue
		}
		// distance from the texel to the neighbour's footprint
		dx, dy := 0.0, 0.0
		switch n[0] {
		case -1:
			dx = fx
		case 1:
			dx = 1 - fx
		}
		switch n[1] {
		case -1:
			dy = fy
		case 1:
			dy = 1 - fy
		}
		d := math.Hypot(dx, dy)
		if n[0] == 0 {
			d = dy
		} else if n[1] == 0 {
			d = dx
		}
		if d < 0.5 {
			occ += (0.5 - d) * 2 * 0.5
		}
	}
	return 1 - math.Min(occ, 1)*0.6
}

// DetailNoise renders a tileable grey noise texture centred on 0.5 so that
// shaders can multiply by 2× without changing average brightness.
func DetailNoise() ([]byte, int, int) {
	const size = 128
	rng := rand.New(rand.NewSource(1))
	pixels := make([]byte, size*size*4)
	for i := 0; i < size*size; i++ {
		v := uint8(116 + rng.Intn(24))
		pixels[i*4] = v
		pixels[i*4+1] = v
		pixels[i*4+2] = v
		pixels[i*4+3] = 255
	}
	return pixels, size, size
}
