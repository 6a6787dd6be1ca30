package animation

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"metaball-renderer/internal/scene"
)

// Static keeps the metaball where it is.
type Static struct{}

func (Static) Advance(s scene.State, _ float32) mgl32.Vec3 {
	return s.Position
}

// RingOrbit places Count metaballs on a horizontal circle around Center, each starting at angle
// index*2π/Count. Metaball i starts moving at t = i*Delay and stops after Window seconds of motion,
// so a ring unfolds one member at a time and then holds still.
type RingOrbit struct {
	Center mgl32.Vec3
	Radius float32
	Count  float32
	// Speed is the angular speed in radians per second.
	Speed  float32
	Delay  float32
	Window float32
}

func (r RingOrbit) Advance(s scene.State, t float32) mgl32.Vec3 {
	count := r.Count
	if count <= 0 {
		count = 1
	}
	local := clampTime(t-s.Index*r.Delay, r.Window)
	angle := s.Index*2*math32.Pi/count + local*r.Speed
	return mgl32.Vec3{
		r.Center[0] + r.Radius*math32.Cos(angle),
		r.Center[1],
		r.Center[2] + r.Radius*math32.Sin(angle),
	}
}

// Orbit moves a metaball on an endless circle around Center. Members of one group are spread by
// Phase radians per index. Tilt rotates the orbit plane about the X axis.
type Orbit struct {
	Center mgl32.Vec3
	Radius float32
	Speed  float32
	Phase  float32
	Tilt   float32
}

func (o Orbit) Advance(s scene.State, t float32) mgl32.Vec3 {
	angle := t*o.Speed + s.Index*o.Phase
	x := o.Radius * math32.Cos(angle)
	z := o.Radius * math32.Sin(angle)
	ct, st := math32.Cos(o.Tilt), math32.Sin(o.Tilt)
	return mgl32.Vec3{
		o.Center[0] + x,
		o.Center[1] - z*st,
		o.Center[2] + z*ct,
	}
}

// Oscillate moves a metaball back and forth around Base: Base + Amplitude*sin(2π·Frequency·t + index·Phase).
type Oscillate struct {
	Base      mgl32.Vec3
	Amplitude mgl32.Vec3
	Frequency float32
	Phase     float32
}

func (o Oscillate) Advance(s scene.State, t float32) mgl32.Vec3 {
	k := math32.Sin(2*math32.Pi*o.Frequency*t + s.Index*o.Phase)
	return o.Base.Add(o.Amplitude.Mul(k))
}

// clampTime limits t to [0, window]. A non-positive window only clamps the low end.
func clampTime(t, window float32) float32 {
	t = math32.Max(0, t)
	if window > 0 {
		t = math32.Min(t, window)
	}
	return t
}
