package maprender

import "testing"

func TestGridIndexRoundTrip(t *testing.T) {
	g := NewGrid(4, 8, 2)
	seen := make(map[int]bool)
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			for z := 0; z < g.Depth; z++ {
				a := Address{x, y, z}
				i := g.Index(a)
				if i < 0 || i >= g.Len() || seen[i] {
					t.Fatalf("index %d for %v is out of range or reused", i, a)
				}
				seen[i] = true
				if back := g.Address(i); back != a {
					t.Errorf("Address(Index(%v)) = %v", a, back)
				}
			}
		}
	}
	if len(seen) != g.Len() {
		t.Errorf("expected %d indices, got %d", g.Len(), len(seen))
	}
}

func TestWrapColumnAgreesWithModulo(t *testing.T) {
	for dim := 1; dim <= 64; dim *= 2 {
		g := NewGrid(dim, dim, 1)
		for c := 0; c < dim; c++ {
			for off := -3; off <= 3; off++ {
				v := c + off*dim + off
				want := ((v % dim) + dim) % dim
				x, y := g.WrapColumn(v, v)
				if x != want || y != want {
					t.Errorf("dim %d: wrap(%d) = (%d,%d), want %d", dim, v, x, y, want)
				}
			}
		}
	}
}

func TestWrapDropsOutOfRangeZ(t *testing.T) {
	g := NewGrid(4, 4, 2)
	if a, ok := g.Wrap(Address{-1, 5, 1}); !ok || a != (Address{3, 1, 1}) {
		t.Errorf("got %v %v", a, ok)
	}
	if _, ok := g.Wrap(Address{0, 0, 2}); ok {
		t.Errorf("z above the grid must be rejected")
	}
	if _, ok := g.Wrap(Address{0, 0, -1}); ok {
		t.Errorf("z below the grid must be rejected")
	}
}

func TestNewGridPanicsOnNonPowerOfTwo(t *testing.T) {
	for _, dims := range [][3]int{{3, 4, 1}, {4, 6, 1}, {0, 4, 1}, {4, 4, 0}, {4, 4, 3}, {4, 4, 6}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewGrid%v should panic", dims)
				}
			}()
			NewGrid(dims[0], dims[1], dims[2])
		}()
	}
}
