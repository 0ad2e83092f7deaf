package voxel

import "math"

// Generate fills a new map with rolling terrain. The height field is value
// noise sampled on a lattice that tiles with the map, so the horizontal seams
// match up when X and Y wrap.
func Generate(width, height, depth int, seed int64) (*Map, error) {
	m, err := NewMap(width, height, depth)
	if err != nil {
		return nil, err
	}

	s := uint32(seed) ^ uint32(seed>>32)
	ground := depth / 4
	relief := float64(depth) / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := 0.0
			amp := 1.0
			cell := 64
			for octave := 0; octave < 4 && cell >= 4; octave++ {
				n += amp * tileNoise(s+uint32(octave), x, y, cell, width, height)
				amp *= 0.5
				cell /= 2
			}
			top := ground + int(n*relief/1.875)
			if top >= depth {
				top = depth - 1
			}
			for z := 0; z <= top; z++ {
				m.colors[m.index(x, y, z)] = terrainColor(s, x, y, z, top)
			}
		}
	}
	return m, nil
}

func terrainColor(seed uint32, x, y, z, top int) uint32 {
	jitter := uint32(hash3(seed, int32(x), int32(y), int32(z)) & 0x0F)
	switch {
	case z == top:
		return 0xFF000000 | (0x40+jitter)<<16 | (0x90+jitter)<<8 | 0x30
	case z > top-4:
		return 0xFF000000 | (0x70+jitter)<<16 | (0x50+jitter)<<8 | 0x30
	default:
		return 0xFF000000 | (0x70+jitter)<<16 | (0x70+jitter)<<8 | (0x78 + jitter)
	}
}

// tileNoise is bilinear value noise in [0,1] with lattice spacing cell,
// periodic over w×h.
func tileNoise(seed uint32, x, y, cell, w, h int) float64 {
	pw, ph := w/cell, h/cell
	if pw < 1 {
		pw = 1
	}
	if ph < 1 {
		ph = 1
	}
	gx, gy := x/cell, y/cell
	fx := float64(x%cell) / float64(cell)
	fy := float64(y%cell) / float64(cell)

	v := func(ix, iy int) float64 {
		ix %= pw
		iy %= ph
		return float64(hash3(seed, int32(ix), int32(iy), 0)&0xFFFF) / 0xFFFF
	}
	sx := smooth(fx)
	sy := smooth(fy)
	a := lerp(v(gx, gy), v(gx+1, gy), sx)
	b := lerp(v(gx, gy+1), v(gx+1, gy+1), sx)
	return lerp(a, b, sy)
}

func smooth(t float64) float64 { return t * t * (3 - 2*t) }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

func hash3(seed uint32, x, y, z int32) uint32 {
	h := seed
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(y) * 0x85ebca6b
	h ^= uint32(z) * 0xc2b2ae35
	return hash32(h)
}

// SurfaceZ returns the Z of the highest solid cell of column (x, y), or -1.
func (m *Map) SurfaceZ(x, y int) int {
	x, y = m.Wrap(x, y)
	for z := m.depth - 1; z >= 0; z-- {
		if m.colors[m.index(x, y, z)]>>24 != 0 {
			return z
		}
	}
	return -1
}

// Distance2D is the horizontal distance between two points on the wrapped
// map, taking the shorter way around on each axis.
func (m *Map) Distance2D(ax, ay, bx, by float64) float64 {
	dx := wrapDelta(ax-bx, float64(m.width))
	dy := wrapDelta(ay-by, float64(m.height))
	return math.Hypot(dx, dy)
}

func wrapDelta(d, period float64) float64 {
	d = math.Mod(d, period)
	if d > period/2 {
		d -= period
	} else if d < -period/2 {
		d += period
	}
	return d
}
