package components

import (
	"scenedebug/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type PointLight struct {
	engine.BaseComponent
	Color     rl.Color
	Intensity float32
	Radius    float32 // falloff distance
}

func NewPointLight() *PointLight {
	return &PointLight{
		Color:     rl.White,
		Intensity: 1.0,
		Radius:    10.0,
	}
}

// ColorFloat is the premultiplied RGB the lighting shader consumes.
func (p *PointLight) ColorFloat() []float32 {
	return []float32{
		float32(p.Color.R) / 255.0 * p.Intensity,
		float32(p.Color.G) / 255.0 * p.Intensity,
		float32(p.Color.B) / 255.0 * p.Intensity,
	}
}

type DirectionalLight struct {
	engine.BaseComponent
	Direction    rl.Vector3
	Color        rl.Color
	Intensity    float32
	AmbientColor rl.Color
}

func NewDirectionalLight() *DirectionalLight {
	return &DirectionalLight{
		Direction:    rl.Vector3Normalize(rl.Vector3{X: 0.35, Y: -1.0, Z: -0.35}),
		Color:        rl.White,
		Intensity:    1.0,
		AmbientColor: rl.NewColor(25, 25, 25, 255),
	}
}
