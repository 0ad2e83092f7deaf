package maprender

import (
	"sort"
	"testing"
)

func sortedAddresses(list []Address) []Address {
	out := append([]Address(nil), list...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return out
}

func sameAddresses(a, b []Address) bool {
	a, b = sortedAddresses(a), sortedAddresses(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// block lists the 3×3 columns around (cx, cy) on each layer in zs, wrapped
// for a 4×4 grid.
func block(cx, cy int, zs ...int) []Address {
	var out []Address
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, z := range zs {
				out = append(out, Address{(cx + dx) & 3, (cy + dy) & 3, z})
			}
		}
	}
	return out
}

func TestAffectedChunks(t *testing.T) {
	g := NewGrid(4, 4, 4) // 64×64×64 voxels

	cases := []struct {
		name    string
		x, y, z int
		want    []Address
	}{
		{"interior", 20, 21, 22, block(1, 1, 1)},
		{"bottom boundary", 20, 21, 16, block(1, 1, 1, 0)},
		{"top boundary", 20, 21, 31, block(1, 1, 1, 2)},
		{"map floor", 20, 21, 0, block(1, 1, 0)},
		{"map ceiling", 20, 21, 63, block(1, 1, 3)},
		{"x side", 16, 21, 22, block(1, 1, 1)},
		{"wraps", 0, 0, 22, block(0, 0, 1)},
		{"wraps and z", 63, 5, 47, block(3, 0, 2, 3)},
	}
	for _, c := range cases {
		got := AffectedChunks(g, c.x, c.y, c.z)
		if !sameAddresses(got, c.want) {
			t.Errorf("%s (%d,%d,%d): got %v, want %v", c.name, c.x, c.y, c.z, sortedAddresses(got), sortedAddresses(c.want))
		}
	}
}

func TestAffectedChunksWrapContainsSeamNeighbours(t *testing.T) {
	g := NewGrid(4, 4, 4)
	got := AffectedChunks(g, 0, 0, 22)
	for _, a := range []Address{{3, 3, 1}, {3, 0, 1}, {0, 3, 1}, {1, 1, 1}} {
		if !containsAddress(got, a) {
			t.Errorf("edit at the origin should reach %v, got %v", a, sortedAddresses(got))
		}
	}
}

func TestAffectedChunksNeverReachFarVertically(t *testing.T) {
	g := NewGrid(2, 2, 4)
	for z := 0; z < 64; z++ {
		own := z >> 4
		for _, a := range AffectedChunks(g, 7, 7, z) {
			if d := a.Z - own; d < -1 || d > 1 {
				t.Fatalf("z=%d reached chunk layer %d", z, a.Z)
			}
			if a.Z != own && z&15 != 0 && z&15 != 15 {
				t.Fatalf("interior z=%d marked layer %d", z, a.Z)
			}
		}
	}
}

func TestAffectedChunksSingleColumnGrid(t *testing.T) {
	g := NewGrid(1, 1, 1)
	got := AffectedChunks(g, 0, 15, 15)
	if len(got) != 1 || got[0] != (Address{0, 0, 0}) {
		t.Errorf("expected only (0,0,0), got %v", got)
	}
}

func TestAffectedChunksNarrowGridDeduplicates(t *testing.T) {
	g := NewGrid(2, 2, 1)
	got := AffectedChunks(g, 0, 0, 5)
	want := []Address{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	if !sameAddresses(got, want) {
		t.Errorf("got %v, want %v", sortedAddresses(got), sortedAddresses(want))
	}
}
