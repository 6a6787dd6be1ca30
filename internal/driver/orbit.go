package driver

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"metaball-renderer/internal/scene"
)

// DefaultOrbitSpeed makes the orbit angle t/2.
const DefaultOrbitSpeed = 0.5

// Orbit moves the camera on a horizontal circle around the origin as a function of scene time.
type Orbit struct {
	Radius float32
	Height float32
	// Speed is the angular speed in radians per second.
	Speed float32
}

// Camera returns the camera pose at scene time t. The rig sits at
// (R·cos(a-π/2), H, R·sin(a-π/2)) with a = t·Speed and turns by -a about +Y,
// so at a = 0 it stands on -Z looking down +Z at the origin.
func (o Orbit) Camera(t float32) scene.Camera {
	a := t * o.Speed
	return scene.Camera{
		Position: mgl32.Vec3{
			o.Radius * math32.Cos(a-math32.Pi/2),
			o.Height,
			o.Radius * math32.Sin(a-math32.Pi/2),
		},
		Axis:  mgl32.Vec3{0, 1, 0},
		Angle: -a,
	}
}
