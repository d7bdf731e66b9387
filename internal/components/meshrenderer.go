package components

import (
	"scenedebug/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Material defines surface properties for rendering. Properties holds the
// raw shader uniforms by name; only some of them are meaningful to people.
type Material struct {
	Name       string
	Shader     string
	Color      rl.Color
	Metallic   float32
	Roughness  float32
	Emissive   float32
	Properties map[string]float32
}

func NewMaterial(name string) *Material {
	return &Material{
		Name:       name,
		Shader:     "lighting",
		Color:      rl.White,
		Roughness:  0.5,
		Properties: map[string]float32{},
	}
}

// MeshRenderer draws a generated mesh with a material.
type MeshRenderer struct {
	engine.BaseComponent
	Mesh     string // "cube", "plane", "sphere"
	MeshSize []float32
	Material *Material
}

func NewMeshRenderer(mesh string, size []float32, material *Material) *MeshRenderer {
	if material == nil {
		material = NewMaterial("default")
	}
	return &MeshRenderer{
		Mesh:     mesh,
		MeshSize: size,
		Material: material,
	}
}
