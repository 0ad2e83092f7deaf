// Package texture uploads the images the map passes sample: the ambient
// occlusion atlas and the detail texture.
package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log"
	"path"

	"map-renderer/internal/gpu"
)

// Built-in image names.
const (
	AmbientOcclusion = "ao"
	Detail           = "detail"
)

// Image is an uploaded 2D texture.
type Image struct {
	Name   string
	ID     uint32
	Width  int
	Height int
}

// Bind binds the image on the currently active texture unit.
func (img *Image) Bind(dev gpu.Device) {
	dev.BindTexture(gpu.Texture2D, img.ID)
}

// Generator produces RGBA8 pixels for a procedural image.
type Generator func() (pixels []byte, width, height int)

// Manager loads images by name and caches them. Names with a registered
// generator are built procedurally; anything else is decoded from the file
// system given to NewManager.
type Manager struct {
	dev        gpu.Device
	files      fs.FS
	generators map[string]Generator
	images     map[string]*Image
}

// NewManager returns a manager with the built-in generators registered.
// files may be nil when only procedural images are needed.
func NewManager(dev gpu.Device, files fs.FS) *Manager {
	m := &Manager{
		dev:        dev,
		files:      files,
		generators: make(map[string]Generator),
		images:     make(map[string]*Image),
	}
	m.generators[AmbientOcclusion] = AOAtlas
	m.generators[Detail] = DetailNoise
	return m
}

// AddGenerator registers a procedural image under name.
func (m *Manager) AddGenerator(name string, g Generator) {
	m.generators[name] = g
}

// Register returns the cached image for name, creating it on first use.
func (m *Manager) Register(name string) (*Image, error) {
	if img, ok := m.images[name]; ok {
		return img, nil
	}

	var (
		pixels        []byte
		width, height int
	)
	if g, ok := m.generators[name]; ok {
		pixels, width, height = g()
	} else {
		var err error
		pixels, width, height, err = m.decode(name)
		if err != nil {
			return nil, err
		}
	}

	img := m.upload(name, pixels, width, height)
	m.images[name] = img
	log.Printf("texture: %s %dx%d", name, width, height)
	return img, nil
}

func (m *Manager) decode(name string) ([]byte, int, int, error) {
	if m.files == nil {
		return nil, 0, 0, fmt.Errorf("image %q: no file system configured", name)
	}
	f, err := m.files.Open(path.Clean(name))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open image %q: %w", name, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image %q: %w", name, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, w*h*4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.At(x, y).RGBA()
			i := ((y-bounds.Min.Y)*w + (x - bounds.Min.X)) * 4
			pixels[i] = uint8(r >> 8)
			pixels[i+1] = uint8(g >> 8)
			pixels[i+2] = uint8(b >> 8)
			pixels[i+3] = uint8(a >> 8)
		}
	}
	return pixels, w, h, nil
}

func (m *Manager) upload(name string, pixels []byte, w, h int) *Image {
	id := m.dev.GenTexture()
	m.dev.BindTexture(gpu.Texture2D, id)
	m.dev.TexParameter(gpu.Texture2D, gpu.TextureWrapS, gpu.Repeat)
	m.dev.TexParameter(gpu.Texture2D, gpu.TextureWrapT, gpu.Repeat)
	m.dev.TexParameter(gpu.Texture2D, gpu.TextureMinFilter, gpu.LinearMipmapLinear)
	m.dev.TexParameter(gpu.Texture2D, gpu.TextureMagFilter, gpu.Linear)
	m.dev.TexImage2D(gpu.Texture2D, w, h, pixels)
	m.dev.GenerateMipmap(gpu.Texture2D)
	m.dev.BindTexture(gpu.Texture2D, 0)
	return &Image{Name: name, ID: id, Width: w, Height: h}
}

// DestroyAll deletes every cached image.
func (m *Manager) DestroyAll() {
	for name, img := range m.images {
		m.dev.DeleteTexture(img.ID)
		delete(m.images, name)
	}
}
