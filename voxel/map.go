// Package voxel holds the voxel map the renderer draws: a dense box of
// solid/empty cells with a color per solid cell.
//
// X and Y wrap around (the world is horizontally periodic); Z runs from 0 at
// the bottom of the map to Depth-1 at the top and does not wrap.
package voxel

import "fmt"

// Listener is notified after a voxel changed.
type Listener func(x, y, z int, m *Map)

// Map is a fixed-size voxel volume.
type Map struct {
	width, height, depth int

	// colors holds 0xAARRGGBB per cell; alpha 0 means empty.
	colors []uint32

	listeners  []listenerEntry
	nextListen int
}

type listenerEntry struct {
	id int
	fn Listener
}

// NewMap allocates an empty map.
func NewMap(width, height, depth int) (*Map, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("invalid map size %dx%dx%d", width, height, depth)
	}
	return &Map{
		width:  width,
		height: height,
		depth:  depth,
		colors: make([]uint32, width*height*depth),
	}, nil
}

func (m *Map) Width() int  { return m.width }
func (m *Map) Height() int { return m.height }
func (m *Map) Depth() int  { return m.depth }

func (m *Map) index(x, y, z int) int {
	return (z*m.height+y)*m.width + x
}

// InBounds reports whether (x, y, z) addresses a cell without wrapping.
func (m *Map) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < m.width && y < m.height && z < m.depth
}

// Wrap maps x and y into the map's horizontal range.
func (m *Map) Wrap(x, y int) (int, int) {
	x %= m.width
	if x < 0 {
		x += m.width
	}
	y %= m.height
	if y < 0 {
		y += m.height
	}
	return x, y
}

// IsSolid reports whether the cell is filled. X and Y wrap; cells above the
// map are empty and cells below it are solid.
func (m *Map) IsSolid(x, y, z int) bool {
	if z < 0 {
		return true
	}
	if z >= m.depth {
		return false
	}
	x, y = m.Wrap(x, y)
	return m.colors[m.index(x, y, z)]>>24 != 0
}

// Color returns the 0xAARRGGBB color of a cell, 0 for empty or out of range
// cells. X and Y wrap.
func (m *Map) Color(x, y, z int) uint32 {
	if z < 0 || z >= m.depth {
		return 0
	}
	x, y = m.Wrap(x, y)
	return m.colors[m.index(x, y, z)]
}

// Set fills a cell with color (alpha forced to opaque) and notifies listeners
// if anything changed. Out of range coordinates are ignored.
func (m *Map) Set(x, y, z int, color uint32) {
	m.set(x, y, z, color|0xFF000000)
}

// Clear empties a cell and notifies listeners if it was solid.
func (m *Map) Clear(x, y, z int) {
	m.set(x, y, z, 0)
}

func (m *Map) set(x, y, z int, c uint32) {
	if !m.InBounds(x, y, z) {
		return
	}
	i := m.index(x, y, z)
	if m.colors[i] == c {
		return
	}
	m.colors[i] = c
	for _, l := range m.listeners {
		l.fn(x, y, z, m)
	}
}

// AddListener subscribes l to voxel edits and returns a function that
// unsubscribes it. Listeners run synchronously on the goroutine that edits
// the map.
func (m *Map) AddListener(l Listener) (remove func()) {
	m.nextListen++
	id := m.nextListen
	m.listeners = append(m.listeners, listenerEntry{id: id, fn: l})
	return func() {
		for i, e := range m.listeners {
			if e.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// SolidCount returns the number of filled cells.
func (m *Map) SolidCount() int {
	n := 0
	for _, c := range m.colors {
		if c>>24 != 0 {
			n++
		}
	}
	return n
}
