package main

import (
	"flag"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"map-renderer/config"
	"map-renderer/core"
	"map-renderer/editor"
	"map-renderer/internal/gpu"
	"map-renderer/renderer"
	"map-renderer/scene"
	"map-renderer/voxel"
)

// CameraController flies the camera: WASD moves along the view, Space and
// Shift move vertically, and dragging with the right mouse button looks around.
type CameraController struct {
	moveSpeed  float32
	lookSpeed  float32
	lastMouseX float64
	lastMouseY float64
	firstMouse bool
}

func NewCameraController(moveSpeed float32) *CameraController {
	return &CameraController{
		moveSpeed:  moveSpeed,
		lookSpeed:  0.003,
		firstMouse: true,
	}
}

func (cc *CameraController) Update(window *core.Window, camera *scene.Camera, deltaTime float32) {
	// Cap deltaTime so a hitch does not teleport the camera
	if deltaTime > 0.1 {
		deltaTime = 0.1
	}

	if window.IsMouseButtonPressed(core.MouseButtonRight) {
		mouseX, mouseY := window.GetCursorPos()
		if cc.firstMouse {
			cc.lastMouseX = mouseX
			cc.lastMouseY = mouseY
			cc.firstMouse = false
		}
		camera.Rotate(
			-float32(mouseX-cc.lastMouseX)*cc.lookSpeed,
			float32(cc.lastMouseY-mouseY)*cc.lookSpeed,
		)
		cc.lastMouseX = mouseX
		cc.lastMouseY = mouseY
	} else {
		cc.firstMouse = true
	}

	forward := camera.GetForward()
	right := camera.GetRight()
	step := cc.moveSpeed * deltaTime

	move := mgl32.Vec3{}
	if window.IsKeyPressed(core.KeyW) {
		move = move.Add(forward)
	}
	if window.IsKeyPressed(core.KeyS) {
		move = move.Sub(forward)
	}
	if window.IsKeyPressed(core.KeyD) {
		move = move.Add(right)
	}
	if window.IsKeyPressed(core.KeyA) {
		move = move.Sub(right)
	}
	if window.IsKeyPressed(core.KeySpace) {
		move = move.Add(scene.WorldUp)
	}
	if window.IsKeyPressed(core.KeyLeftShift) {
		move = move.Sub(scene.WorldUp)
	}
	if move.Len() > 0 {
		camera.Translate(move.Normalize().Mul(step))
	}
}

func main() {
	configPath := flag.String("config", "configs/renderer.yaml", "settings file")
	flag.Parse()

	settings, loaded, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("demo: %v", err)
	}
	if !loaded {
		log.Printf("demo: %s not found, using defaults", *configPath)
	}

	m, err := loadMap(settings.Map)
	if err != nil {
		log.Fatalf("demo: %v", err)
	}

	windowConfig := core.DefaultWindowConfig()
	windowConfig.Title = settings.Window.Title
	windowConfig.Width = settings.Window.Width
	windowConfig.Height = settings.Window.Height
	windowConfig.VSync = settings.Window.VSync

	window, err := core.NewWindow(windowConfig)
	if err != nil {
		log.Fatalf("demo: %v", err)
	}
	defer window.Destroy()

	dev, err := gpu.NewGLDevice()
	if err != nil {
		log.Fatalf("demo: %v", err)
	}
	defer dev.Destroy()

	renderEngine, err := renderer.NewRenderEngine(dev, window, m, settings.Renderer)
	if err != nil {
		log.Fatalf("demo: %v", err)
	}
	defer renderEngine.Destroy()

	width, height := window.GetFramebufferSize()
	camera := scene.NewCamera(60, float32(width)/float32(max(height, 1)), 0.1, 512)
	cx, cy := m.Width()/2, m.Height()/2
	camera.SetPosition(mgl32.Vec3{float32(cx), float32(cy), float32(m.SurfaceZ(cx, cy) + 8)})
	renderEngine.SetCamera(camera)
	renderEngine.Resize(width, height)
	window.OnResize(renderEngine.Resize)

	camController := NewCameraController(settings.Demo.MoveSpeed)
	dayNight := NewDayNight()
	mapEditor := editor.NewEditor(window, m, core.KeyL, core.KeyE)
	edits := newRandomEdits(m, settings.Demo.EditsPerSecond, settings.Map.Seed)
	lights := newLightSwarm(m, settings.Demo.LightCount, settings.Map.Seed)

	var debugOverlay DebugOverlay
	var frameCount, displayFPS int
	lastFrame := core.Time()
	lastTitleTime := time.Now()

	for !window.ShouldClose() {
		window.PollEvents()

		if window.IsKeyPressed(core.KeyEscape) {
			window.SetShouldClose(true)
			continue
		}

		now := core.Time()
		deltaTime := float32(now - lastFrame)
		lastFrame = now

		// Left click digs, middle click places, Ctrl+Z/Ctrl+Y undo and redo
		mapEditor.Update(camera, window.Width, window.Height)

		// L toggles the dynamic light pass
		if mapEditor.Input.IsKeyPressed(core.KeyL) {
			renderEngine.DynamicLights = !renderEngine.DynamicLights
			log.Printf("demo: dynamic lights %v", renderEngine.DynamicLights)
		}
		// E pauses the fog cycle
		if mapEditor.Input.IsKeyPressed(core.KeyE) {
			dayNight.Active = !dayNight.Active
		}

		camController.Update(window, camera, deltaTime)
		dayNight.Update(deltaTime)
		dayNight.Apply(renderEngine)
		edits.Update(deltaTime)
		renderEngine.Lights = lights.Update(float32(now))

		if err := renderEngine.Render(); err != nil {
			log.Printf("demo: render: %v", err)
		}
		renderEngine.Present()

		frameCount++
		if time.Since(lastTitleTime) >= time.Second {
			displayFPS = frameCount
			frameCount = 0
			lastTitleTime = time.Now()

			stats := renderEngine.DrawStats()
			debugOverlay.Clear()
			debugOverlay.AddLine("%s", settings.Window.Title)
			debugOverlay.AddLine("FPS %d", displayFPS)
			debugOverlay.AddLine("(%.0f, %.0f, %.0f)", camera.Position.X(), camera.Position.Y(), camera.Position.Z())
			debugOverlay.AddLine("chunks %d/%d", stats.Realized, stats.Chunks)
			debugOverlay.AddLine("lit %d x%d", stats.DynamicVisited, stats.Lights)
			debugOverlay.AddLine("edits %d", edits.applied)
			debugOverlay.AddLine("%s (%s)", mapEditor.StatusText, mapEditor.GetStats())
			debugOverlay.AddLine("%s", dayNight.TimeOfDayStr())
			window.SetTitle(debugOverlay.Title())
		}
	}

	log.Printf("demo: exiting")
}

// loadMap reads the configured snapshot, or generates a map when no path is
// set.
func loadMap(s config.MapSettings) (*voxel.Map, error) {
	if s.Path != "" {
		m, h, err := voxel.LoadFile(s.Path)
		if err != nil {
			return nil, err
		}
		log.Printf("demo: loaded %s (%dx%dx%d)", s.Path, h.Width, h.Height, h.Depth)
		return m, nil
	}
	start := time.Now()
	m, err := voxel.Generate(s.Width, s.Height, s.Depth, s.Seed)
	if err != nil {
		return nil, err
	}
	log.Printf("demo: generated %dx%dx%d map (seed %d) in %v", s.Width, s.Height, s.Depth, s.Seed, time.Since(start))
	return m, nil
}

// randomEdits digs and builds random voxels on the surface at a fixed rate so
// the chunk invalidation path stays busy.
type randomEdits struct {
	m       *voxel.Map
	rate    float64
	budget  float64
	rng     *rand.Rand
	applied int
}

func newRandomEdits(m *voxel.Map, rate float64, seed int64) *randomEdits {
	return &randomEdits{m: m, rate: rate, rng: rand.New(rand.NewSource(seed))}
}

func (e *randomEdits) Update(deltaTime float32) {
	e.budget += e.rate * float64(deltaTime)
	for ; e.budget >= 1; e.budget-- {
		x := e.rng.Intn(e.m.Width())
		y := e.rng.Intn(e.m.Height())
		z := e.m.SurfaceZ(x, y)
		if z > 0 && e.rng.Intn(2) == 0 {
			e.m.Clear(x, y, z)
		} else {
			e.m.Set(x, y, z+1, core.Color{R: 0.8, G: 0.3 + 0.4*e.rng.Float32(), B: 0.2, A: 1}.ARGB())
		}
		e.applied++
	}
}

// lightSwarm circles a few colored lights around the map center.
type lightSwarm struct {
	center mgl32.Vec3
	radius []float32
	phase  []float32
	colors []core.Color
}

var lightPalette = []core.Color{core.ColorRed, core.ColorGreen, core.ColorBlue, core.ColorYellow, core.ColorWhite}

func newLightSwarm(m *voxel.Map, n int, seed int64) *lightSwarm {
	rng := rand.New(rand.NewSource(seed + 1))
	cx, cy := m.Width()/2, m.Height()/2
	ls := &lightSwarm{center: mgl32.Vec3{float32(cx), float32(cy), float32(m.SurfaceZ(cx, cy) + 4)}}
	for i := 0; i < n; i++ {
		ls.radius = append(ls.radius, 8+rng.Float32()*40)
		ls.phase = append(ls.phase, rng.Float32()*2*math.Pi)
		ls.colors = append(ls.colors, lightPalette[i%len(lightPalette)])
	}
	return ls
}

func (ls *lightSwarm) Update(t float32) []scene.DynamicLight {
	out := make([]scene.DynamicLight, len(ls.radius))
	for i := range out {
		a := ls.phase[i] + t*0.4
		out[i] = scene.DynamicLight{
			Origin: ls.center.Add(mgl32.Vec3{
				ls.radius[i] * float32(math.Cos(float64(a))),
				ls.radius[i] * float32(math.Sin(float64(a))),
				2 * float32(math.Sin(float64(a*3))),
			}),
			Color:  ls.colors[i].Vec3(),
			Radius: 24,
		}
	}
	return out
}
