package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidMaterial is returned when a material colour or roughness is out of range.
var ErrInvalidMaterial = errors.New("invalid material")

// Material is the surface description owned by one metaball. It cannot be changed after NewMaterial.
type Material struct {
	color     mgl32.Vec3
	roughness float32
}

// NewMaterial returns a material with an RGB colour in [0,1] and a positive roughness.
// Roughness is used as the specular exponent by the shading program.
func NewMaterial(color mgl32.Vec3, roughness float32) (Material, error) {
	for i, c := range color {
		if !finite(c) || c < 0 || c > 1 {
			return Material{}, fmt.Errorf("%w: colour component %d is %v, want [0,1]", ErrInvalidMaterial, i, c)
		}
	}
	if !finite(roughness) || roughness <= 0 {
		return Material{}, fmt.Errorf("%w: roughness %v must be positive", ErrInvalidMaterial, roughness)
	}
	return Material{color: color, roughness: roughness}, nil
}

// MustMaterial is like NewMaterial but panics on invalid input. Meant for host-authored constants.
func MustMaterial(color mgl32.Vec3, roughness float32) Material {
	m, err := NewMaterial(color, roughness)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Material) Color() mgl32.Vec3 { return m.color }

func (m Material) Roughness() float32 { return m.roughness }

// valid reports whether m went through NewMaterial (the zero Material has no roughness).
func (m Material) valid() bool {
	return m.roughness > 0
}
