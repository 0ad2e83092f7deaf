package maprender

import "fmt"

// Address is a chunk's position in the grid.
type Address struct {
	X, Y, Z int
}

func (a Address) String() string { return fmt.Sprintf("(%d,%d,%d)", a.X, a.Y, a.Z) }

// Grid describes the chunk grid covering the map. All three dimensions must be
// powers of two: columns wrap with a mask.
type Grid struct {
	Width, Height, Depth int
}

// NewGrid validates the dimensions. Non power-of-two dimensions are a
// programming error and panic.
func NewGrid(width, height, depth int) Grid {
	if !isPowerOfTwo(width) || !isPowerOfTwo(height) || !isPowerOfTwo(depth) {
		panic(fmt.Sprintf("maprender: chunk grid %dx%dx%d is not a power of two", width, height, depth))
	}
	return Grid{Width: width, Height: height, Depth: depth}
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// Len returns the number of chunks in the grid.
func (g Grid) Len() int { return g.Width * g.Height * g.Depth }

// Index returns the flat index of an in-range address.
func (g Grid) Index(a Address) int {
	return (a.X*g.Height+a.Y)*g.Depth + a.Z
}

// Address is the inverse of Index.
func (g Grid) Address(i int) Address {
	return Address{X: i / g.Depth / g.Height, Y: (i / g.Depth) % g.Height, Z: i % g.Depth}
}

// WrapColumn folds any column coordinate onto the grid.
func (g Grid) WrapColumn(x, y int) (int, int) {
	return x & (g.Width - 1), y & (g.Height - 1)
}

// Wrap folds X and Y onto the grid. ok is false when Z is outside it.
func (g Grid) Wrap(a Address) (Address, bool) {
	a.X, a.Y = g.WrapColumn(a.X, a.Y)
	return a, a.Z >= 0 && a.Z < g.Depth
}

// ChunkInfo is per-chunk bookkeeping the renderer keeps beside the units.
type ChunkInfo struct {
	// Distance is the horizontal distance from the eye computed during the
	// last RealizeChunks.
	Distance float32
}
