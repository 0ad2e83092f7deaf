package maprender

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"map-renderer/internal/chunk"
)

// DefaultMaxRing covers the cull distance.
const DefaultMaxRing = 128 / chunk.Size

// Column is a chunk column in grid coordinates.
type Column struct {
	X, Y int
}

// Traversal produces the front-to-back visiting order both passes use: columns
// in square rings around the eye's column, and inside each column the chunks
// from the eye's height upwards, then from just below it downwards.
type Traversal struct {
	Grid    Grid
	MaxRing int
}

// NewTraversal returns a traversal over g out to DefaultMaxRing.
func NewTraversal(g Grid) Traversal {
	return Traversal{Grid: g, MaxRing: DefaultMaxRing}
}

// Ring appends ring d around (cx, cy) to out without wrapping. Ring 0 is the
// center column; ring d is the perimeter of the square at Chebyshev distance
// d, each column once.
func Ring(cx, cy, d int, out []Column) []Column {
	eachRing(cx, cy, d, func(x, y int) {
		out = append(out, Column{x, y})
	})
	return out
}

func eachRing(cx, cy, d int, fn func(x, y int)) {
	if d == 0 {
		fn(cx, cy)
		return
	}
	for x := cx - d; x <= cx+d; x++ {
		fn(x, cy+d)
		fn(x, cy-d)
	}
	for y := cy - d + 1; y <= cy+d-1; y++ {
		fn(cx+d, y)
		fn(cx-d, y)
	}
}

// Columns returns the wrapped columns of rings 0..MaxRing around (cx, cy) in
// visiting order. When the grid is narrower than the rings, columns repeat.
func (t Traversal) Columns(cx, cy int) []Column {
	var out []Column
	t.eachColumn(cx, cy, func(x, y int) {
		out = append(out, Column{x, y})
	})
	return out
}

// ColumnDepths returns the chunk Z order inside a column for eye chunk height
// ez.
func (t Traversal) ColumnDepths(ez int) []int {
	out := make([]int, 0, t.Grid.Depth)
	t.eachDepth(ez, func(z int) { out = append(out, z) })
	return out
}

// Walk calls visit for every chunk address in traversal order around eye.
func (t Traversal) Walk(eye mgl32.Vec3, visit func(Address)) {
	cx, cy, ez := EyeChunk(eye)
	t.eachColumn(cx, cy, func(x, y int) {
		t.eachDepth(ez, func(z int) {
			visit(Address{x, y, z})
		})
	})
}

// EyeChunk returns the unwrapped chunk coordinates containing eye.
func EyeChunk(eye mgl32.Vec3) (cx, cy, cz int) {
	floor := func(v float32) int { return int(math.Floor(float64(v))) >> chunk.SizeBits }
	return floor(eye.X()), floor(eye.Y()), floor(eye.Z())
}

func (t Traversal) eachColumn(cx, cy int, fn func(x, y int)) {
	wrapped := func(x, y int) {
		fn(t.Grid.WrapColumn(x, y))
	}
	for d := 0; d <= t.MaxRing; d++ {
		eachRing(cx, cy, d, wrapped)
	}
}

func (t Traversal) eachDepth(ez int, fn func(z int)) {
	depth := t.Grid.Depth
	for z := max(ez, 0); z < depth; z++ {
		fn(z)
	}
	for z := min(ez-1, depth-1); z >= 0; z-- {
		fn(z)
	}
}
