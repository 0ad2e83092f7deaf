// Package shader loads the block programs and resolves their uniform and
// attribute locations once, at link time.
package shader

import (
	"github.com/go-gl/mathgl/mgl32"

	"map-renderer/internal/gpu"
)

// Uniform identifies a uniform the map passes may set.
type Uniform int

const (
	ProjectionViewMatrix Uniform = iota
	ViewMatrix
	FogDistance
	FogColor
	ViewSpaceLight
	AmbientOcclusionTexture
	DetailTexture
	ChunkPosition
	DynamicLightOrigin
	DynamicLightColor
	DynamicLightRadius
	numUniforms
)

var uniformNames = [numUniforms]string{
	ProjectionViewMatrix:    "projectionViewMatrix",
	ViewMatrix:              "viewMatrix",
	FogDistance:             "fogDistance",
	FogColor:                "fogColor",
	ViewSpaceLight:          "viewSpaceLight",
	AmbientOcclusionTexture: "ambientOcclusionTexture",
	DetailTexture:           "detailTexture",
	ChunkPosition:           "chunkPosition",
	DynamicLightOrigin:      "dynamicLightOrigin",
	DynamicLightColor:       "dynamicLightColor",
	DynamicLightRadius:      "dynamicLightRadius",
}

func (u Uniform) String() string { return uniformNames[u] }

// Attribute identifies a vertex input of the block programs.
type Attribute int

const (
	Position Attribute = iota
	AmbientOcclusionCoord
	Color
	Normal
	numAttributes
)

var attributeNames = [numAttributes]string{
	Position:              "positionAttribute",
	AmbientOcclusionCoord: "ambientOcclusionCoordAttribute",
	Color:                 "colorAttribute",
	Normal:                "normalAttribute",
}

func (a Attribute) String() string { return attributeNames[a] }

// Program is a linked program together with its location tables.
// A location of -1 means the program does not expose that name.
type Program struct {
	Name string
	ID   uint32

	dev      gpu.Device
	uniforms [numUniforms]int32
	attribs  [numAttributes]int32
}

func newProgram(dev gpu.Device, name string, id uint32) *Program {
	p := &Program{Name: name, ID: id, dev: dev}
	for u := Uniform(0); u < numUniforms; u++ {
		p.uniforms[u] = dev.UniformLocation(id, uniformNames[u])
	}
	for a := Attribute(0); a < numAttributes; a++ {
		p.attribs[a] = dev.AttribLocation(id, attributeNames[a])
	}
	return p
}

// Use makes the program current.
func (p *Program) Use() { p.dev.UseProgram(p.ID) }

// Uniform returns the location of u, or -1.
func (p *Program) Uniform(u Uniform) int32 { return p.uniforms[u] }

// Attrib returns the location of a, or -1.
func (p *Program) Attrib(a Attribute) int32 { return p.attribs[a] }

// HasAttrib reports whether the program reads a.
func (p *Program) HasAttrib(a Attribute) bool { return p.attribs[a] >= 0 }

// The setters below expect the program to be current.

func (p *Program) SetInt(u Uniform, v int32) {
	p.dev.Uniform1i(p.uniforms[u], v)
}

func (p *Program) SetFloat(u Uniform, v float32) {
	p.dev.Uniform1f(p.uniforms[u], v)
}

func (p *Program) SetVec3(u Uniform, v mgl32.Vec3) {
	p.dev.Uniform3f(p.uniforms[u], v[0], v[1], v[2])
}

func (p *Program) SetMat4(u Uniform, m mgl32.Mat4) {
	a := [16]float32(m)
	p.dev.UniformMatrix4fv(p.uniforms[u], &a)
}
