package components

import (
	"fmt"

	"scenedebug/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.Scripts.RegisterWithApplier("Rotator", rotatorFactory, rotatorSerializer, rotatorApplier)
	engine.Scripts.RegisterWithApplier("Patrol", patrolFactory, patrolSerializer, patrolApplier)
}

// Rotator is a simple script that spins an object around the Y axis.
type Rotator struct {
	engine.BaseComponent
	Speed float32
}

func (r *Rotator) Update(deltaTime float32) {
	g := r.GetGameObject()
	if g == nil {
		return
	}
	g.Transform.Rotation.Y += r.Speed * deltaTime
	if g.Transform.Rotation.Y > 360 {
		g.Transform.Rotation.Y -= 360
	}
}

func rotatorFactory(props map[string]any) engine.Component {
	speed := float32(90)
	if v, ok := props["speed"].(float64); ok {
		speed = float32(v)
	}
	return &Rotator{Speed: speed}
}

func rotatorSerializer(c engine.Component) map[string]any {
	r, ok := c.(*Rotator)
	if !ok {
		return nil
	}
	return map[string]any{"speed": r.Speed}
}

func rotatorApplier(c engine.Component, propName string, value any) bool {
	r, ok := c.(*Rotator)
	if !ok || propName != "speed" {
		return false
	}
	v, ok := value.(float64)
	if ok {
		r.Speed = float32(v)
	}
	return ok
}

// Patrol walks its owner through a loop of waypoints and remembers how
// often it reached each one.
type Patrol struct {
	engine.BaseComponent
	Speed     float32
	Waypoints []rl.Vector3
	Target    engine.GameObjectRef
	TargetUID uint64
	Visits    map[string]int
	current   int
}

// Current is the index of the waypoint being approached.
func (p *Patrol) Current() int {
	return p.current
}

func (p *Patrol) Update(deltaTime float32) {
	g := p.GetGameObject()
	if g == nil || len(p.Waypoints) == 0 {
		return
	}
	if p.current >= len(p.Waypoints) {
		p.current = 0
	}
	goal := p.Waypoints[p.current]
	toGoal := rl.Vector3Subtract(goal, g.Transform.Position)
	dist := rl.Vector3Length(toGoal)
	step := p.Speed * deltaTime
	if dist <= step {
		g.Transform.Position = goal
		if p.Visits == nil {
			p.Visits = map[string]int{}
		}
		p.Visits[fmt.Sprintf("wp%d", p.current)]++
		p.current = (p.current + 1) % len(p.Waypoints)
		return
	}
	g.Transform.Position = rl.Vector3Add(g.Transform.Position, rl.Vector3Scale(toGoal, step/dist))
}

func patrolFactory(props map[string]any) engine.Component {
	p := &Patrol{Speed: 2, Visits: map[string]int{}}
	if v, ok := props["speed"].(float64); ok {
		p.Speed = float32(v)
	}
	if v, ok := props["target"].(float64); ok {
		p.Target = engine.GameObjectRef{UID: uint64(v)}
		p.TargetUID = uint64(v)
	}
	if raw, ok := props["waypoints"].([]any); ok {
		for _, item := range raw {
			xyz, ok := item.([]any)
			if !ok || len(xyz) != 3 {
				continue
			}
			var wp [3]float32
			for i := range wp {
				if f, ok := xyz[i].(float64); ok {
					wp[i] = float32(f)
				}
			}
			p.Waypoints = append(p.Waypoints, rl.Vector3{X: wp[0], Y: wp[1], Z: wp[2]})
		}
	}
	return p
}

func patrolSerializer(c engine.Component) map[string]any {
	p, ok := c.(*Patrol)
	if !ok {
		return nil
	}
	waypoints := make([][3]float32, 0, len(p.Waypoints))
	for _, wp := range p.Waypoints {
		waypoints = append(waypoints, [3]float32{wp.X, wp.Y, wp.Z})
	}
	return map[string]any{
		"speed":     p.Speed,
		"target":    p.Target.UID,
		"waypoints": waypoints,
	}
}

func patrolApplier(c engine.Component, propName string, value any) bool {
	p, ok := c.(*Patrol)
	if !ok {
		return false
	}
	v, ok := value.(float64)
	if !ok {
		return false
	}
	switch propName {
	case "speed":
		p.Speed = float32(v)
	case "target":
		p.Target = engine.GameObjectRef{UID: uint64(v)}
		p.TargetUID = uint64(v)
	default:
		return false
	}
	return true
}
