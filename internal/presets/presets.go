// Package presets assembles the host-authored demo scene: colours, lights and thresholds come
// from a Definition, the metaball groups and their motion are fixed here.
package presets

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"metaball-renderer/internal/animation"
	"metaball-renderer/internal/scene"
)

const (
	ringRadius   = 1.6
	ringStrength = 0.35
	ringSpeed    = 0.5
	// ringDelay is the time between two ring members starting to move.
	ringDelay  = 0.25
	ringWindow = 4 * math32.Pi

	orbitRadius   = 0.8
	orbitStrength = 0.5
	orbitSpeed    = 1.2
	orbitTilt     = 0.6

	bobStrength  = 0.6
	bobAmplitude = 1.2
	bobFrequency = 0.2

	carveStrength = -0.35
)

// Options are the runtime values Build cannot read from a Definition.
type Options struct {
	Background any
	Width      int
	Height     int
}

// Build returns the demo scene: a ring of RingCount metaballs unfolding one after another, a
// tilted orbiting pair, one bobbing metaball at the centre and a static negative metaball that
// carves a dent into the top. Each group numbers its members from 0.
func Build(def Definition, opts Options) (*scene.Scene, error) {
	mats := make(map[string]scene.Material, len(def.Materials))
	for _, name := range []string{MaterialRing, MaterialOrbit, MaterialBob, MaterialCarve} {
		md, ok := def.Materials[name]
		if !ok {
			md = Default().Materials[name]
		}
		c, err := ParseHexColor(md.Color)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", name, err)
		}
		m, err := scene.NewMaterial(c, md.Roughness)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", name, err)
		}
		mats[name] = m
	}

	lights := make([]scene.Light, 0, len(def.Lights))
	for i, ld := range def.Lights {
		c, err := ParseHexColor(ld.Color)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		lights = append(lights, scene.Light{
			Position:  mgl32.Vec3(ld.Position),
			Color:     c,
			Intensity: ld.Intensity,
		})
	}

	var metaballs []scene.Metaball
	add := func(strength float32, mat scene.Material, index float32, b scene.Behavior, start mgl32.Vec3) {
		if b != nil {
			start = b.Advance(scene.State{Position: start, Strength: strength, Index: index}, 0)
		}
		metaballs = append(metaballs, scene.NewMetaball(start, strength, mat, index, b))
	}

	count := def.RingCount
	if count <= 0 {
		count = Default().RingCount
	}
	ring := animation.RingOrbit{
		Radius: ringRadius,
		Count:  float32(count),
		Speed:  ringSpeed,
		Delay:  ringDelay,
		Window: ringWindow,
	}
	for i := 0; i < count; i++ {
		add(ringStrength, mats[MaterialRing], float32(i), ring, mgl32.Vec3{})
	}

	orbit := animation.Orbit{Radius: orbitRadius, Speed: orbitSpeed, Phase: math32.Pi, Tilt: orbitTilt}
	for i := 0; i < 2; i++ {
		add(orbitStrength, mats[MaterialOrbit], float32(i), orbit, mgl32.Vec3{})
	}

	bob := animation.Oscillate{Amplitude: mgl32.Vec3{0, bobAmplitude, 0}, Frequency: bobFrequency}
	add(bobStrength, mats[MaterialBob], 0, bob, mgl32.Vec3{})

	add(carveStrength, mats[MaterialCarve], 0, animation.Static{}, mgl32.Vec3{0, 0.9, 0})

	return scene.New(scene.Params{
		Camera:      scene.Camera{Axis: mgl32.Vec3{0, 1, 0}},
		Threshold:   def.Threshold,
		ImagePlaneZ: def.ImagePlaneZ,
		Background:  opts.Background,
		Width:       opts.Width,
		Height:      opts.Height,
	}, metaballs, lights)
}
