package components

import (
	"scenedebug/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sleep thresholds
const (
	SleepVelocityThreshold = 0.3 // units/sec
	SleepTimeThreshold     = 0.3 // seconds of low velocity before sleeping
)

type Rigidbody struct {
	engine.BaseComponent
	Velocity    rl.Vector3
	Mass        float32
	Bounciness  float32 // 0 = no bounce, 1 = perfect bounce
	Friction    float32 // 0 = ice, 1 = stops immediately
	UseGravity  bool
	IsKinematic bool

	IsSleeping bool
	sleepTimer float32
}

func NewRigidbody() *Rigidbody {
	return &Rigidbody{
		Mass:       1.0,
		Bounciness: 0.5,
		Friction:   0.1,
		UseGravity: true,
	}
}

// Speed is the magnitude of the current velocity.
func (r *Rigidbody) Speed() float32 {
	return rl.Vector3Length(r.Velocity)
}

// SetSpeed rescales the velocity to the given magnitude, keeping direction.
func (r *Rigidbody) SetSpeed(speed float32) {
	current := r.Speed()
	if current == 0 {
		return
	}
	r.Velocity = rl.Vector3Scale(r.Velocity, speed/current)
	r.Wake()
}

// Wake forces the rigidbody out of sleep state
func (r *Rigidbody) Wake() {
	r.IsSleeping = false
	r.sleepTimer = 0
}

// Update integrates velocity into the owner's position and handles sleep.
func (r *Rigidbody) Update(deltaTime float32) {
	if r.IsKinematic || r.IsSleeping {
		return
	}
	g := r.GetGameObject()
	if g == nil {
		return
	}
	if r.UseGravity {
		r.Velocity.Y -= 9.81 * deltaTime
	}
	r.Velocity = rl.Vector3Scale(r.Velocity, 1-r.Friction*deltaTime)
	g.Transform.Position = rl.Vector3Add(g.Transform.Position, rl.Vector3Scale(r.Velocity, deltaTime))

	if r.Speed() < SleepVelocityThreshold {
		r.sleepTimer += deltaTime
		if r.sleepTimer >= SleepTimeThreshold {
			r.IsSleeping = true
			r.Velocity = rl.Vector3{}
		}
	} else {
		r.sleepTimer = 0
	}
}
