package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"

	"map-renderer/internal/gpu"
)

//go:embed shaders/*.vs shaders/*.fs
var builtin embed.FS

// Program names shipped with the renderer.
const (
	BasicBlock           = "BasicBlock"
	BasicBlockPhys       = "BasicBlockPhys"
	BasicBlockDynamicLit = "BasicBlockDynamicLit"
)

// Registry compiles programs on first request and hands out the same
// *Program afterwards. It owns every program it created.
type Registry struct {
	dev      gpu.Device
	src      fs.FS
	programs map[string]*Program
}

// NewRegistry returns a registry reading sources from the built-in shaders.
func NewRegistry(dev gpu.Device) *Registry {
	sub, _ := fs.Sub(builtin, "shaders")
	return NewRegistryFS(dev, sub)
}

// NewRegistryFS returns a registry that reads <name>.vs and <name>.fs from src.
func NewRegistryFS(dev gpu.Device, src fs.FS) *Registry {
	return &Registry{
		dev:      dev,
		src:      src,
		programs: make(map[string]*Program),
	}
}

// Register loads, links and caches the named program.
func (r *Registry) Register(name string) (*Program, error) {
	if p, ok := r.programs[name]; ok {
		return p, nil
	}

	vs, err := fs.ReadFile(r.src, name+".vs")
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", name, err)
	}
	frag, err := fs.ReadFile(r.src, name+".fs")
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", name, err)
	}
	id, err := r.dev.CreateProgram(string(vs), string(frag))
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", name, err)
	}

	p := newProgram(r.dev, name, id)
	r.programs[name] = p
	log.Printf("shader: linked %s (id %d)", name, id)
	return p, nil
}

// Names lists the programs loaded so far.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.programs))
	for n := range r.programs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Destroy deletes every program the registry created.
func (r *Registry) Destroy() {
	for name, p := range r.programs {
		r.dev.DeleteProgram(p.ID)
		delete(r.programs, name)
	}
}
