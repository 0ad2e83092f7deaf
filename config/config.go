// Package config loads the renderer and demo settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	Window   WindowSettings   `yaml:"window"`
	Map      MapSettings      `yaml:"map"`
	Renderer RendererSettings `yaml:"renderer"`
	Demo     DemoSettings     `yaml:"demo"`
}

type WindowSettings struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// MapSettings selects the map. Path wins when set; otherwise a map of the
// given size is generated from Seed.
type MapSettings struct {
	Path   string `yaml:"path"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Depth  int    `yaml:"depth"`
	Seed   int64  `yaml:"seed"`
}

type RendererSettings struct {
	// PhysicalLighting selects the physically based static lighting program.
	// Read once when the map renderer is created.
	PhysicalLighting bool `yaml:"physical_lighting"`

	CullDistance    float32 `yaml:"cull_distance"`
	ReleaseDistance float32 `yaml:"release_distance"`

	// CullUnlitChunks skips chunks no dynamic light reaches in the dynamic
	// light pass.
	CullUnlitChunks bool `yaml:"cull_unlit_chunks"`

	FogDistance float32    `yaml:"fog_distance"`
	FogColor    [3]float32 `yaml:"fog_color"`
}

type DemoSettings struct {
	EditsPerSecond float64 `yaml:"edits_per_second"`
	LightCount     int     `yaml:"light_count"`
	MoveSpeed      float32 `yaml:"move_speed"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "Map Renderer",
			VSync:  true,
		},
		Map: MapSettings{
			Width:  256,
			Height: 256,
			Depth:  64,
			Seed:   1,
		},
		Renderer: RendererSettings{
			CullDistance:    128,
			ReleaseDistance: 160,
			FogDistance:     128,
			FogColor:        [3]float32{0.55, 0.65, 0.8},
		},
		Demo: DemoSettings{
			EditsPerSecond: 20,
			LightCount:     4,
			MoveSpeed:      24,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error: the
// defaults are returned and loaded reports false.
func Load(path string) (s Settings, loaded bool, err error) {
	s = Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, false, nil
		}
		return s, false, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, false, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, false, fmt.Errorf("%s: %w", path, err)
	}
	return s, true, nil
}

// Validate checks the values the renderer depends on.
func (s Settings) Validate() error {
	r := s.Renderer
	if r.CullDistance <= 0 {
		return fmt.Errorf("renderer.cull_distance must be positive, got %v", r.CullDistance)
	}
	if r.ReleaseDistance <= r.CullDistance {
		return fmt.Errorf("renderer.release_distance (%v) must exceed cull_distance (%v)",
			r.ReleaseDistance, r.CullDistance)
	}
	if r.FogDistance <= 0 {
		return fmt.Errorf("renderer.fog_distance must be positive, got %v", r.FogDistance)
	}
	if s.Map.Path == "" && (s.Map.Width <= 0 || s.Map.Height <= 0 || s.Map.Depth <= 0) {
		return fmt.Errorf("map size %dx%dx%d is invalid", s.Map.Width, s.Map.Height, s.Map.Depth)
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d is invalid", s.Window.Width, s.Window.Height)
	}
	return nil
}
