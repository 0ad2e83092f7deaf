package core

import "github.com/go-gl/mathgl/mgl32"

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite  = Color{1, 1, 1, 1}
	ColorBlack  = Color{0, 0, 0, 1}
	ColorRed    = Color{1, 0, 0, 1}
	ColorGreen  = Color{0, 1, 0, 1}
	ColorBlue   = Color{0, 0, 1, 1}
	ColorYellow = Color{1, 1, 0, 1}
)

// ColorFromARGB unpacks a 0xAARRGGBB voxel color.
func ColorFromARGB(v uint32) Color {
	return Color{
		R: float32(v>>16&0xFF) / 255,
		G: float32(v>>8&0xFF) / 255,
		B: float32(v&0xFF) / 255,
		A: float32(v>>24) / 255,
	}
}

// ARGB packs the color as 0xAARRGGBB, clamping each channel.
func (c Color) ARGB() uint32 {
	ch := func(f float32) uint32 {
		f = mgl32.Clamp(f, 0, 1)
		return uint32(f*255 + 0.5)
	}
	return ch(c.A)<<24 | ch(c.R)<<16 | ch(c.G)<<8 | ch(c.B)
}

// Vec3 drops alpha.
func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Lerp blends from c to o by t.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}
