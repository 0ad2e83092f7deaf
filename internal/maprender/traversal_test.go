package maprender

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func chebyshev(a, b Column) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}

func TestRingIsSquarePerimeter(t *testing.T) {
	center := Column{3, -2}
	for d := 0; d <= DefaultMaxRing; d++ {
		ring := Ring(center.X, center.Y, d, nil)

		want := 8 * d
		if d == 0 {
			want = 1
		}
		if len(ring) != want {
			t.Errorf("ring %d: %d columns, want %d", d, len(ring), want)
		}
		seen := make(map[Column]bool)
		for _, c := range ring {
			if seen[c] {
				t.Errorf("ring %d: %v repeated", d, c)
			}
			seen[c] = true
			if chebyshev(c, center) != d {
				t.Errorf("ring %d: %v is at distance %d", d, c, chebyshev(c, center))
			}
		}
	}
}

func TestRingOneScenario(t *testing.T) {
	tr := Traversal{Grid: NewGrid(4, 4, 4), MaxRing: 1}
	cols := tr.Columns(1, 1)
	if len(cols) != 9 || cols[0] != (Column{1, 1}) {
		t.Fatalf("expected the eye column then 8 more, got %v", cols)
	}

	want := map[Column]bool{
		{0, 0}: true, {1, 0}: true, {2, 0}: true,
		{0, 2}: true, {1, 2}: true, {2, 2}: true,
		{0, 1}: true, {2, 1}: true,
	}
	seen := make(map[Column]bool)
	for _, c := range cols[1:] {
		if !want[c] || seen[c] {
			t.Errorf("unexpected or repeated column %v", c)
		}
		seen[c] = true
	}

	// top/bottom edges pairwise, then the sides
	order := []Column{{0, 2}, {0, 0}, {1, 2}, {1, 0}, {2, 2}, {2, 0}, {2, 1}, {0, 1}}
	for i, c := range order {
		if cols[i+1] != c {
			t.Errorf("position %d: got %v, want %v", i+1, cols[i+1], c)
		}
	}
}

func TestColumnsWrap(t *testing.T) {
	tr := Traversal{Grid: NewGrid(8, 8, 1), MaxRing: 1}
	for _, c := range tr.Columns(0, 7) {
		if c.X < 0 || c.X >= 8 || c.Y < 0 || c.Y >= 8 {
			t.Errorf("column %v not wrapped", c)
		}
	}
}

func TestColumnDepths(t *testing.T) {
	tr := NewTraversal(NewGrid(1, 1, 4))
	cases := []struct {
		ez   int
		want []int
	}{
		{0, []int{0, 1, 2, 3}},
		{2, []int{2, 3, 1, 0}},
		{3, []int{3, 2, 1, 0}},
		{-2, []int{0, 1, 2, 3}},
		{4, []int{3, 2, 1, 0}},
		{9, []int{3, 2, 1, 0}},
	}
	for _, c := range cases {
		got := tr.ColumnDepths(c.ez)
		if len(got) != len(c.want) {
			t.Errorf("ez=%d: got %v, want %v", c.ez, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("ez=%d: got %v, want %v", c.ez, got, c.want)
				break
			}
		}
	}
}

func TestWalkCoversEveryChunkOnceOnLargeGrid(t *testing.T) {
	g := NewGrid(32, 32, 2)
	tr := NewTraversal(g)
	eye := mgl32.Vec3{8, 8, 20} // column (0,0), eye chunk z=1

	seen := make(map[Address]int)
	var first []Address
	tr.Walk(eye, func(a Address) {
		seen[a]++
		if len(first) < 2 {
			first = append(first, a)
		}
	})

	side := 2*DefaultMaxRing + 1
	if len(seen) != side*side*g.Depth {
		t.Errorf("expected %d chunks, got %d", side*side*g.Depth, len(seen))
	}
	for a, n := range seen {
		if n != 1 {
			t.Errorf("%v visited %d times", a, n)
		}
	}
	if first[0] != (Address{0, 0, 1}) || first[1] != (Address{0, 0, 0}) {
		t.Errorf("expected the eye column front to back first, got %v", first)
	}
}

func TestWalkIsDeterministic(t *testing.T) {
	tr := NewTraversal(NewGrid(4, 4, 2))
	eye := mgl32.Vec3{-3.5, 70, 5}
	var a, b []Address
	tr.Walk(eye, func(x Address) { a = append(a, x) })
	tr.Walk(eye, func(x Address) { b = append(b, x) })
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sequence differs at %d", i)
		}
	}
}

func TestEyeChunkFloors(t *testing.T) {
	cx, cy, cz := EyeChunk(mgl32.Vec3{-0.5, 31.9, 16})
	if cx != -1 || cy != 1 || cz != 1 {
		t.Errorf("got (%d,%d,%d)", cx, cy, cz)
	}
}
