package components

import (
	"scenedebug/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type BoxCollider struct {
	engine.BaseComponent
	Size   rl.Vector3
	Offset rl.Vector3
}

func NewBoxCollider(size rl.Vector3) *BoxCollider {
	return &BoxCollider{Size: size}
}

// Center returns the world-space center of this collider
func (b *BoxCollider) Center() rl.Vector3 {
	g := b.GetGameObject()
	if g == nil {
		return b.Offset
	}
	return rl.Vector3Add(g.WorldPosition(), b.Offset)
}

type SphereCollider struct {
	engine.BaseComponent
	Radius float32
	Offset rl.Vector3
}

func NewSphereCollider(radius float32) *SphereCollider {
	return &SphereCollider{Radius: radius}
}

func (s *SphereCollider) Center() rl.Vector3 {
	g := s.GetGameObject()
	if g == nil {
		return s.Offset
	}
	return rl.Vector3Add(g.WorldPosition(), s.Offset)
}
