// Package scene describes what a frame looks at: the camera, the matrices and
// fog derived from it, and the dynamic lights active this frame.
package scene

import "github.com/go-gl/mathgl/mgl32"

// SceneDef is the per-frame view description consumed by the map passes.
type SceneDef struct {
	ViewOrigin mgl32.Vec3
	View       mgl32.Mat4
	Projection mgl32.Mat4

	FogDistance float32
	FogColor    mgl32.Vec3
}

// NewSceneDef snapshots the camera for one frame.
func NewSceneDef(cam *Camera, fogDistance float32, fogColor mgl32.Vec3) SceneDef {
	return SceneDef{
		ViewOrigin:  cam.Position,
		View:        cam.GetViewMatrix(),
		Projection:  cam.GetProjectionMatrix(),
		FogDistance: fogDistance,
		FogColor:    fogColor,
	}
}

// ProjectionView returns Projection × View.
func (s SceneDef) ProjectionView() mgl32.Mat4 {
	return s.Projection.Mul4(s.View)
}

// DynamicLight is a point light that lasts one frame.
type DynamicLight struct {
	Origin mgl32.Vec3
	Color  mgl32.Vec3
	Radius float32
}

// IntersectsBox reports whether the light's sphere of influence touches the
// axis-aligned box [min, max].
func (l DynamicLight) IntersectsBox(min, max mgl32.Vec3) bool {
	var d2 float32
	for i := 0; i < 3; i++ {
		v := l.Origin[i]
		if v < min[i] {
			d := min[i] - v
			d2 += d * d
		} else if v > max[i] {
			d := v - max[i]
			d2 += d * d
		}
	}
	return d2 <= l.Radius*l.Radius
}
