package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"map-renderer/config"
	"map-renderer/internal/gpu"
	"map-renderer/internal/gpu/gputest"
	"map-renderer/scene"
	"map-renderer/voxel"
)

type fakeBackend struct {
	*gputest.Recorder
	clears   int
	viewport [2]int
	additive []bool
}

func (f *fakeBackend) Clear(r, g, b float32)     { f.clears++ }
func (f *fakeBackend) Viewport(width, height int) { f.viewport = [2]int{width, height} }
func (f *fakeBackend) SetBlendAdditive(on bool)   { f.additive = append(f.additive, on) }

type fakeSurface struct{ swaps int }

func (s *fakeSurface) SwapBuffers() { s.swaps++ }

func newEngine(t *testing.T) (*RenderEngine, *fakeBackend, *fakeSurface) {
	t.Helper()
	m, err := voxel.Generate(64, 64, 32, 7)
	if err != nil {
		t.Fatal(err)
	}
	dev := &fakeBackend{Recorder: gputest.NewRecorder()}
	surf := &fakeSurface{}
	re, err := NewRenderEngine(dev, surf, m, config.Default().Renderer)
	if err != nil {
		t.Fatalf("NewRenderEngine: %v", err)
	}
	cam := scene.NewCamera(70, 16.0/9.0, 0.1, 256)
	cam.SetPosition(mgl32.Vec3{32, 32, 28})
	re.SetCamera(cam)
	return re, dev, surf
}

func TestRenderWithoutCamera(t *testing.T) {
	re, _, _ := newEngine(t)
	defer re.Destroy()
	re.SetCamera(nil)
	if err := re.Render(); err == nil {
		t.Error("expected an error without a camera")
	}
}

func TestRenderFrame(t *testing.T) {
	re, dev, surf := newEngine(t)
	defer re.Destroy()

	if err := re.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	re.Present()

	if dev.clears != 1 || surf.swaps != 1 {
		t.Errorf("clears=%d swaps=%d", dev.clears, surf.swaps)
	}
	if len(dev.Draws) == 0 {
		t.Fatal("expected the terrain to draw")
	}
	if len(dev.additive) != 0 {
		t.Errorf("no lights, so no additive pass expected")
	}
	if err := dev.Clean(); err != nil {
		t.Errorf("device not clean: %v", err)
	}
	s := re.DrawStats()
	if s.Chunks != 4*4*2 || s.Realized == 0 || s.Lights != 0 {
		t.Errorf("stats: %+v", s)
	}
}

func TestRenderBlendsDynamicLights(t *testing.T) {
	re, dev, _ := newEngine(t)
	defer re.Destroy()

	re.Lights = []scene.DynamicLight{{Origin: mgl32.Vec3{30, 30, 20}, Color: mgl32.Vec3{1, 0.5, 0}, Radius: 12}}
	if err := re.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(dev.additive) != 2 || !dev.additive[0] || dev.additive[1] {
		t.Errorf("expected additive on then off, got %v", dev.additive)
	}
	if dev.Enabled(gpu.Blend) {
		t.Errorf("blending left on")
	}
	if re.DrawStats().Lights != 1 {
		t.Errorf("stats: %+v", re.DrawStats())
	}

	dev.additive = nil
	re.DynamicLights = false
	if err := re.Render(); err != nil {
		t.Fatal(err)
	}
	if len(dev.additive) != 0 {
		t.Errorf("disabled dynamic lights still ran the pass")
	}
}

func TestResize(t *testing.T) {
	re, dev, _ := newEngine(t)
	defer re.Destroy()

	re.Resize(800, 400)
	if dev.viewport != [2]int{800, 400} {
		t.Errorf("viewport: %v", dev.viewport)
	}
	if re.Camera.AspectRatio != 2 {
		t.Errorf("aspect: %v", re.Camera.AspectRatio)
	}
}

func TestDestroyFreesEverything(t *testing.T) {
	re, dev, _ := newEngine(t)
	if err := re.Render(); err != nil {
		t.Fatal(err)
	}
	re.Destroy()
	if dev.LiveBuffers() != 0 || dev.LiveTextures() != 0 {
		t.Errorf("leaked %d buffers and %d textures", dev.LiveBuffers(), dev.LiveTextures())
	}
}

func TestNewRenderEngineRejectsBadStreaming(t *testing.T) {
	m, _ := voxel.NewMap(32, 32, 16)
	s := config.Default().Renderer
	s.ReleaseDistance = s.CullDistance
	dev := &fakeBackend{Recorder: gputest.NewRecorder()}
	if _, err := NewRenderEngine(dev, nil, m, s); err == nil {
		t.Error("expected an error")
	}
	if dev.LiveTextures() != 0 {
		t.Errorf("textures leaked on failure")
	}
}
