package maprender

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"map-renderer/internal/gpu"
	"map-renderer/internal/gpu/gputest"
	"map-renderer/internal/shader"
	"map-renderer/internal/texture"
	"map-renderer/scene"
	"map-renderer/voxel"
)

// fakeUnit records what the renderer asks of it.
type fakeUnit struct {
	addr     Address
	realized bool
	dirty    bool
	dist     float32

	setRealizedCalls int
	sunDraws         int
	dynDraws         int
	lastLights       int
	destroyed        bool
	order            *[]Address
}

func (u *fakeUnit) SetRealized(b bool) {
	u.setRealizedCalls++
	u.realized = b
}
func (u *fakeUnit) Realized() bool                     { return u.realized }
func (u *fakeUnit) SetNeedsUpdate()                    { u.dirty = true }
func (u *fakeUnit) NeedsUpdate() bool                  { return u.dirty }
func (u *fakeUnit) DistanceFromEye(mgl32.Vec3) float32 { return u.dist }
func (u *fakeUnit) Destroy()                           { u.destroyed = true }

func (u *fakeUnit) RenderSunlightPass(*shader.Program) {
	u.sunDraws++
	if u.order != nil {
		*u.order = append(*u.order, u.addr)
	}
}

func (u *fakeUnit) RenderDynamicLightPass(_ *shader.Program, lights []scene.DynamicLight) {
	u.dynDraws++
	u.lastLights = len(lights)
}

type fakeGrid struct {
	units []*fakeUnit
	order []Address
}

func (f *fakeGrid) allocate(g Grid) []ChunkUnit {
	out := make([]ChunkUnit, g.Len())
	for i := range out {
		u := &fakeUnit{addr: g.Address(i), order: &f.order}
		f.units = append(f.units, u)
		out[i] = u
	}
	return out
}

func (f *fakeGrid) at(g Grid, a Address) *fakeUnit { return f.units[g.Index(a)] }

func newTestMap(t *testing.T, w, h, d int) *voxel.Map {
	t.Helper()
	m, err := voxel.NewMap(w, h, d)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newTestRenderer(t *testing.T, m *voxel.Map, rec *gputest.Recorder, opts Options) *MapRenderer {
	t.Helper()
	res := RegistryResources{Shaders: shader.NewRegistry(rec), Images: texture.NewManager(rec, nil)}
	r, err := New(m, rec, res, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func testScene(eye mgl32.Vec3) scene.SceneDef {
	return scene.SceneDef{
		ViewOrigin:  eye,
		View:        mgl32.Ident4(),
		Projection:  mgl32.Ident4(),
		FogDistance: 128,
		FogColor:    mgl32.Vec3{0.5, 0.25, 0.75},
	}
}

// floorMap is 64×64×32 (a 4×4×2 chunk grid) with a three voxel thick floor.
func floorMap(t *testing.T) *voxel.Map {
	m := newTestMap(t, 64, 64, 32)
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			for z := 0; z < 3; z++ {
				m.Set(x, y, z, 0x406020)
			}
		}
	}
	return m
}

func TestSunlightPassBindsAndRestoresState(t *testing.T) {
	rec := gputest.NewRecorder()
	r := newTestRenderer(t, floorMap(t), rec, Options{PhysicalLighting: true})
	defer r.Destroy()
	rec.Reset()

	r.RenderSunlightPass(testScene(mgl32.Vec3{32, 32, 20}))

	if err := rec.Clean(); err != nil {
		t.Errorf("device not clean after the pass: %v", err)
	}
	if len(rec.Draws) == 0 {
		t.Fatal("expected draws")
	}
	if !rec.Enabled(gpu.DepthTest) || !rec.Enabled(gpu.CullFace) {
		t.Errorf("depth test and face culling must be on")
	}

	prog := r.basicProgram
	if prog.Name != shader.BasicBlockPhys {
		t.Fatalf("physical lighting should select %s, got %s", shader.BasicBlockPhys, prog.Name)
	}
	expectUniform := func(name string, want any) {
		t.Helper()
		if got, ok := rec.UniformValue(prog.ID, name); !ok || got != want {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
	expectUniform("fogDistance", float32(128))
	expectUniform("fogColor", [3]float32{0.25, 0.0625, 0.5625})
	expectUniform("viewSpaceLight", [3]float32{0, -1, -1})
	expectUniform("ambientOcclusionTexture", int32(0))
	expectUniform("detailTexture", int32(1))
	expectUniform("viewMatrix", [16]float32(mgl32.Ident4()))

	// position, AO coordinate, color and normal are all live during draws
	for _, d := range rec.Draws {
		if d.Program != prog.ID || len(d.Attribs) != 4 {
			t.Fatalf("draw with program %d and attribs %v", d.Program, d.Attribs)
		}
	}

	linearAO := false
	for _, c := range rec.Calls {
		if c.Name == "TexParameter" && c.Args[0] == any(r.aoImage.ID) &&
			c.Args[1] == any(gpu.TextureMinFilter) && c.Args[2] == any(gpu.Linear) {
			linearAO = true
		}
	}
	if !linearAO {
		t.Errorf("AO image should get a linear min filter")
	}
}

func TestSunlightPassSkipsMissingAttributes(t *testing.T) {
	rec := gputest.NewRecorder()
	r := newTestRenderer(t, floorMap(t), rec, Options{})
	defer r.Destroy()

	r.RenderSunlightPass(testScene(mgl32.Vec3{32, 32, 20}))

	if r.basicProgram.HasAttrib(shader.Normal) {
		t.Fatal("the simple program has no normal input")
	}
	for _, d := range rec.Draws {
		if len(d.Attribs) != 3 {
			t.Fatalf("expected 3 live attributes, got %v", d.Attribs)
		}
	}
	if err := rec.Clean(); err != nil {
		t.Errorf("device not clean: %v", err)
	}
}

func TestDynamicPassWithoutLightsDoesNothing(t *testing.T) {
	rec := gputest.NewRecorder()
	var fg fakeGrid
	r := newTestRenderer(t, newTestMap(t, 64, 64, 32), rec, Options{Allocate: fg.allocate})
	rec.Reset()

	r.RenderDynamicLightPass(testScene(mgl32.Vec3{32, 32, 20}), nil)

	if len(rec.Calls) != 0 {
		t.Errorf("expected no device calls, got %d (first %v)", len(rec.Calls), rec.Calls[0])
	}
	for _, u := range fg.units {
		if u.setRealizedCalls != 0 || u.dynDraws != 0 {
			t.Fatalf("unit %v touched", u.addr)
		}
	}
}

func TestDynamicPassDrawsEachLight(t *testing.T) {
	rec := gputest.NewRecorder()
	r := newTestRenderer(t, floorMap(t), rec, Options{})
	defer r.Destroy()

	lights := []scene.DynamicLight{
		{Origin: mgl32.Vec3{10, 10, 5}, Color: mgl32.Vec3{1, 1, 1}, Radius: 8},
		{Origin: mgl32.Vec3{50, 50, 5}, Color: mgl32.Vec3{1, 0, 0}, Radius: 8},
	}
	r.RenderDynamicLightPass(testScene(mgl32.Vec3{32, 32, 20}), lights)

	if len(rec.Draws) == 0 || len(rec.Draws)%2 != 0 {
		t.Fatalf("expected one draw per light per chunk, got %d", len(rec.Draws))
	}
	prog := r.dlightProgram
	for _, d := range rec.Draws {
		if d.Program != prog.ID || len(d.Attribs) != 3 {
			t.Fatalf("draw with program %d and attribs %v", d.Program, d.Attribs)
		}
	}
	if got, _ := rec.UniformValue(prog.ID, "detailTexture"); got != int32(0) {
		t.Errorf("detail sampler should be unit 0, got %v", got)
	}
	if err := rec.Clean(); err != nil {
		t.Errorf("device not clean: %v", err)
	}
}

func TestCullUnlitChunks(t *testing.T) {
	light := []scene.DynamicLight{{Origin: mgl32.Vec3{8, 8, 8}, Radius: 4}}
	eye := mgl32.Vec3{32, 32, 20}

	for _, cull := range []bool{false, true} {
		rec := gputest.NewRecorder()
		var fg fakeGrid
		r := newTestRenderer(t, newTestMap(t, 64, 64, 32), rec, Options{Allocate: fg.allocate, CullUnlitChunks: cull})

		r.RenderDynamicLightPass(testScene(eye), light)

		lit := fg.at(r.grid, Address{0, 0, 0})
		if lit.dynDraws == 0 || lit.lastLights != 1 {
			t.Errorf("cull=%v: lit chunk not drawn with its light", cull)
		}
		for _, u := range fg.units {
			if u == lit {
				continue
			}
			if cull && u.dynDraws != 0 {
				t.Errorf("cull=%v: unlit chunk %v drawn", cull, u.addr)
			}
			if !cull && u.dynDraws == 0 {
				t.Errorf("cull=%v: chunk %v skipped", cull, u.addr)
			}
		}
	}
}

func TestLightsTouchingWraps(t *testing.T) {
	rec := gputest.NewRecorder()
	var fg fakeGrid
	r := newTestRenderer(t, newTestMap(t, 64, 64, 32), rec, Options{Allocate: fg.allocate})

	// just past the +X seam, next to chunk column x=0
	lights := []scene.DynamicLight{{Origin: mgl32.Vec3{62, 8, 8}, Radius: 3}}
	if got := r.lightsTouching(Address{0, 0, 0}, lights); len(got) != 1 {
		t.Errorf("light across the seam should reach chunk (0,0,0)")
	}
	if got := r.lightsTouching(Address{1, 0, 0}, lights); len(got) != 0 {
		t.Errorf("light should not reach chunk (1,0,0)")
	}
}

func TestLightsTouchingFarLights(t *testing.T) {
	rec := gputest.NewRecorder()
	var fg fakeGrid
	r := newTestRenderer(t, newTestMap(t, 64, 64, 32), rec, Options{Allocate: fg.allocate})

	// float32(1e12) is a multiple of 64: the light sits on the origin copy.
	far := []scene.DynamicLight{{Origin: mgl32.Vec3{1e12, 8, 8}, Radius: 3}}
	if got := r.lightsTouching(Address{0, 0, 0}, far); len(got) != 1 {
		t.Errorf("light at x=1e12 should reach chunk (0,0,0)")
	}
	if got := r.lightsTouching(Address{1, 0, 0}, far); len(got) != 0 {
		t.Errorf("light at x=1e12 should not reach chunk (1,0,0)")
	}

	inf := []scene.DynamicLight{{Origin: mgl32.Vec3{float32(math.Inf(1)), 8, 8}, Radius: 3}}
	if got := r.lightsTouching(Address{0, 0, 0}, inf); len(got) != 0 {
		t.Errorf("light at +Inf reaches nothing, got %v", got)
	}
}

func TestRealizeChunksFarEye(t *testing.T) {
	rec := gputest.NewRecorder()
	r := newTestRenderer(t, newTestMap(t, 64, 64, 32), rec, Options{})
	defer r.Destroy()

	r.RealizeChunks(mgl32.Vec3{1e12, 1e12, 0})
	if got := r.Stats().Realized; got != r.Grid().Len() {
		t.Errorf("eye far along the wrap: realized %d of %d", got, r.Grid().Len())
	}

	r.RealizeChunks(mgl32.Vec3{float32(math.Inf(1)), 0, 0})
	if got := r.Stats().Realized; got != 0 {
		t.Errorf("eye at +Inf: realized %d, want 0", got)
	}
}

func TestRealizeChunksOnlyCallsOnTransitions(t *testing.T) {
	rec := gputest.NewRecorder()
	var fg fakeGrid
	r := newTestRenderer(t, newTestMap(t, 64, 64, 32), rec, Options{Allocate: fg.allocate})
	u := fg.units[5]

	steps := []struct {
		dist     float32
		realized bool
		calls    int
	}{
		{100, true, 1},
		{150, true, 1},
		{170, false, 2},
		{150, false, 2},
		{10, true, 3},
	}
	for i, s := range steps {
		u.dist = s.dist
		r.RealizeChunks(mgl32.Vec3{})
		if u.realized != s.realized || u.setRealizedCalls != s.calls {
			t.Errorf("step %d: realized=%v calls=%d, want %v/%d", i, u.realized, u.setRealizedCalls, s.realized, s.calls)
		}
		if got := r.Info(u.addr).Distance; got != s.dist {
			t.Errorf("step %d: recorded distance %v", i, got)
		}
	}
}

func TestPassVisitsChunksInTraversalOrder(t *testing.T) {
	rec := gputest.NewRecorder()
	var fg fakeGrid
	r := newTestRenderer(t, newTestMap(t, 64, 64, 32), rec, Options{Allocate: fg.allocate})
	eye := mgl32.Vec3{40, 20, 25}

	r.RenderSunlightPass(testScene(eye))

	var want []Address
	r.traversal.Walk(eye, func(a Address) { want = append(want, a) })
	if len(fg.order) != len(want) {
		t.Fatalf("visited %d chunks, traversal has %d", len(fg.order), len(want))
	}
	for i := range want {
		if fg.order[i] != want[i] {
			t.Fatalf("visit %d: got %v, want %v", i, fg.order[i], want[i])
		}
	}
	if s := r.Stats(); s.Realized != len(fg.units) || s.SunlightVisited != len(want) {
		t.Errorf("stats: %+v", s)
	}
}

func TestMapEditsMarkChunksDirty(t *testing.T) {
	rec := gputest.NewRecorder()
	var fg fakeGrid
	m := newTestMap(t, 64, 64, 32)
	r := newTestRenderer(t, m, rec, Options{Allocate: fg.allocate})

	// Chunk (1,1,1) of a 4×4×2 grid; z=22 is inside its layer.
	m.Set(20, 21, 22, 1)
	for _, u := range fg.units {
		want := u.addr.X <= 2 && u.addr.Y <= 2 && u.addr.Z == 1
		if u.dirty != want {
			t.Errorf("chunk %v dirty=%v", u.addr, u.dirty)
		}
	}
	if r.Stats().Invalidated != 9 {
		t.Errorf("expected 9 invalidations, got %d", r.Stats().Invalidated)
	}

	r.Destroy()
	for _, u := range fg.units {
		if !u.destroyed {
			t.Fatalf("chunk %v not destroyed", u.addr)
		}
		u.dirty = false
	}
	m.Set(40, 40, 10, 1)
	for _, u := range fg.units {
		if u.dirty {
			t.Errorf("edit after Destroy reached chunk %v", u.addr)
		}
	}
}

func TestSquareVertexBufferLifetime(t *testing.T) {
	rec := gputest.NewRecorder()
	r := newTestRenderer(t, floorMap(t), rec, Options{})

	id := r.SquareVertexBuffer()
	if got := rec.BufferContents(id); len(got) != 12 {
		t.Errorf("expected 6 uint8 pairs, got %v", got)
	}
	r.RenderSunlightPass(testScene(mgl32.Vec3{32, 32, 20}))
	if rec.LiveBuffers() <= 1 {
		t.Fatal("chunks should have allocated buffers")
	}

	r.Destroy()
	if rec.LiveBuffers() != 0 {
		t.Errorf("Destroy leaked %d buffers", rec.LiveBuffers())
	}
}

func TestNewPanicsOnNonPowerOfTwoGrid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for a 3-chunk-wide map")
		}
	}()
	newTestRenderer(t, newTestMap(t, 48, 64, 16), gputest.NewRecorder(), Options{})
}

func TestNewReportsResourceErrors(t *testing.T) {
	boom := errors.New("link failed")
	rec := gputest.NewRecorder()
	rec.CreateErr = boom

	res := RegistryResources{Shaders: shader.NewRegistry(rec), Images: texture.NewManager(rec, nil)}
	_, err := New(newTestMap(t, 64, 64, 32), rec, res, Options{})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped link error, got %v", err)
	}

	_, err = New(newTestMap(t, 64, 64, 32), rec, res, Options{Streaming: StreamingPolicy{CullDistance: 10, ReleaseDistance: 5}})
	if err == nil {
		t.Errorf("expected a streaming policy error")
	}
}
