package core

import "testing"

func TestColorARGBRoundTrip(t *testing.T) {
	for _, v := range []uint32{0xFF000000, 0xFFFFFFFF, 0xFF406020, 0x80123456} {
		if got := ColorFromARGB(v).ARGB(); got != v {
			t.Errorf("%#08x -> %#08x", v, got)
		}
	}
}

func TestColorARGBClamps(t *testing.T) {
	c := Color{R: 2, G: -1, B: 0.5, A: 1}
	if got := c.ARGB(); got != 0xFFFF0080 {
		t.Errorf("expected 0xFFFF0080, got %#08x", got)
	}
}

func TestColorLerp(t *testing.T) {
	mid := ColorBlack.Lerp(ColorWhite, 0.5)
	if mid.R != 0.5 || mid.G != 0.5 || mid.B != 0.5 || mid.A != 1 {
		t.Errorf("unexpected midpoint %+v", mid)
	}
	if v := ColorRed.Vec3(); v[0] != 1 || v[1] != 0 || v[2] != 0 {
		t.Errorf("Vec3: %v", v)
	}
}
