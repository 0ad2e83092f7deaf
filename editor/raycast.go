package editor

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"map-renderer/scene"
	"map-renderer/voxel"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// HitResult stores the result of a ray against the map
type HitResult struct {
	Hit      bool
	Distance float32
	Point    mgl32.Vec3
	Voxel    [3]int // wrapped cell coordinates
	Normal   [3]int // face that was entered, points back towards the ray
}

// Adjacent returns the wrapped cell on the hit face's side, where a new voxel
// would be placed.
func (h HitResult) Adjacent(m *voxel.Map) [3]int {
	x, y := m.Wrap(h.Voxel[0]+h.Normal[0], h.Voxel[1]+h.Normal[1])
	return [3]int{x, y, h.Voxel[2] + h.Normal[2]}
}

// ScreenToRay converts a window-space cursor position to a world-space ray.
func ScreenToRay(mouseX, mouseY, screenWidth, screenHeight float32, camera *scene.Camera) Ray {
	// Convert to normalized device coordinates (-1 to 1)
	ndcX := (2.0*mouseX)/screenWidth - 1.0
	ndcY := 1.0 - (2.0*mouseY)/screenHeight // flip Y

	inv := camera.GetProjectionMatrix().Mul4(camera.GetViewMatrix()).Inv()
	far := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	target := far.Vec3().Mul(1 / far.W())

	return Ray{
		Origin:    camera.Position,
		Direction: target.Sub(camera.Position).Normalize(),
	}
}

// RaycastMap walks the voxel grid cell by cell along ray until it enters a
// solid cell or travels maxDistance. The walk wraps horizontally like the map
// and gives up once it leaves the map vertically.
func RaycastMap(ray Ray, m *voxel.Map, maxDistance float32) HitResult {
	var (
		cell  [3]int
		step  [3]int
		tMax  [3]float32
		tStep [3]float32
	)
	for i := 0; i < 3; i++ {
		o, d := ray.Origin[i], ray.Direction[i]
		cell[i] = int(math.Floor(float64(o)))
		switch {
		case d > 0:
			step[i] = 1
			tStep[i] = 1 / d
			tMax[i] = (float32(cell[i]+1) - o) * tStep[i]
		case d < 0:
			step[i] = -1
			tStep[i] = -1 / d
			tMax[i] = (o - float32(cell[i])) * tStep[i]
		default:
			tMax[i] = float32(math.Inf(1))
			tStep[i] = float32(math.Inf(1))
		}
	}

	var (
		t      float32
		normal [3]int
	)
	for t <= maxDistance {
		if cell[2] >= 0 && cell[2] < m.Depth() && m.IsSolid(cell[0], cell[1], cell[2]) {
			x, y := m.Wrap(cell[0], cell[1])
			return HitResult{
				Hit:      true,
				Distance: t,
				Point:    ray.Origin.Add(ray.Direction.Mul(t)),
				Voxel:    [3]int{x, y, cell[2]},
				Normal:   normal,
			}
		}
		if (cell[2] < 0 && step[2] <= 0) || (cell[2] >= m.Depth() && step[2] >= 0) {
			break
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t = tMax[axis]
		tMax[axis] += tStep[axis]
		cell[axis] += step[axis]
		normal = [3]int{}
		normal[axis] = -step[axis]
	}
	return HitResult{Distance: maxDistance}
}
