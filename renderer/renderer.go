// Package renderer drives a frame: it clears the screen, runs the map's
// sunlight pass and blends the dynamic light pass on top.
package renderer

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"map-renderer/config"
	"map-renderer/internal/gpu"
	"map-renderer/internal/maprender"
	"map-renderer/internal/shader"
	"map-renderer/internal/texture"
	"map-renderer/scene"
	"map-renderer/voxel"
)

// Backend is a gpu.Device that can also control the framebuffer.
// *gpu.GLDevice implements it.
type Backend interface {
	gpu.Device
	Clear(r, g, b float32)
	Viewport(width, height int)
	SetBlendAdditive(additive bool)
}

// Surface is where finished frames go.
type Surface interface {
	SwapBuffers()
}

// FrameStats are the counters of the most recent frame.
type FrameStats struct {
	maprender.Stats
	Lights int
}

// RenderEngine owns the map renderer and the resources it borrows.
type RenderEngine struct {
	dev     Backend
	surface Surface

	shaders *shader.Registry
	images  *texture.Manager
	Map     *maprender.MapRenderer

	Camera *scene.Camera
	Lights []scene.DynamicLight

	FogDistance float32
	FogColor    mgl32.Vec3

	// DynamicLights turns the additive light pass on or off.
	DynamicLights bool

	last FrameStats
}

// NewRenderEngine loads the block programs and images and builds the map
// renderer for m.
func NewRenderEngine(dev Backend, surface Surface, m *voxel.Map, s config.RendererSettings) (*RenderEngine, error) {
	re := &RenderEngine{
		dev:           dev,
		surface:       surface,
		shaders:       shader.NewRegistry(dev),
		images:        texture.NewManager(dev, nil),
		FogDistance:   s.FogDistance,
		FogColor:      mgl32.Vec3(s.FogColor),
		DynamicLights: true,
	}

	mr, err := maprender.New(m, dev, maprender.RegistryResources{Shaders: re.shaders, Images: re.images}, maprender.Options{
		PhysicalLighting: s.PhysicalLighting,
		Streaming: maprender.StreamingPolicy{
			CullDistance:    s.CullDistance,
			ReleaseDistance: s.ReleaseDistance,
		},
		CullUnlitChunks: s.CullUnlitChunks,
	})
	if err != nil {
		re.shaders.Destroy()
		re.images.DestroyAll()
		return nil, fmt.Errorf("map renderer: %w", err)
	}
	re.Map = mr

	log.Printf("renderer: initialized (physical lighting %v)", s.PhysicalLighting)
	return re, nil
}

func (re *RenderEngine) SetCamera(cam *scene.Camera) {
	re.Camera = cam
}

// Render draws one frame. Call Present afterwards.
func (re *RenderEngine) Render() error {
	if re.Camera == nil {
		return fmt.Errorf("no camera")
	}

	def := scene.NewSceneDef(re.Camera, re.FogDistance, re.FogColor)
	re.Map.Prerender()

	re.dev.Clear(def.FogColor.X(), def.FogColor.Y(), def.FogColor.Z())

	// ── Sunlight pass ─────────────────────────────────────────────────────────
	re.Map.RenderSunlightPass(def)

	// ── Dynamic light pass ────────────────────────────────────────────────────
	lights := 0
	if re.DynamicLights && len(re.Lights) > 0 {
		re.dev.Enable(gpu.Blend, true)
		re.dev.SetBlendAdditive(true)
		re.Map.RenderDynamicLightPass(def, re.Lights)
		re.dev.SetBlendAdditive(false)
		re.dev.Enable(gpu.Blend, false)
		lights = len(re.Lights)
	}

	re.last = FrameStats{Stats: re.Map.Stats(), Lights: lights}
	return nil
}

// Present shows the finished frame.
func (re *RenderEngine) Present() {
	if re.surface != nil {
		re.surface.SwapBuffers()
	}
}

func (re *RenderEngine) Resize(width, height int) {
	re.dev.Viewport(width, height)
	if re.Camera != nil {
		re.Camera.UpdateAspectRatio(float32(width), float32(height))
	}
}

// DrawStats returns stats from the most recent Render call.
func (re *RenderEngine) DrawStats() FrameStats {
	return re.last
}

func (re *RenderEngine) Destroy() {
	re.Map.Destroy()
	re.shaders.Destroy()
	re.images.DestroyAll()
}
