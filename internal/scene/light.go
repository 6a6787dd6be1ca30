package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Light is a point light. Lights are not animated; they keep the values given at construction.
type Light struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

func (l Light) validate() error {
	if !finiteVec(l.Position) || !finiteVec(l.Color) {
		return fmt.Errorf("%w: light position and colour must be finite", ErrInvalidScene)
	}
	if !finite(l.Intensity) || l.Intensity < 0 {
		return fmt.Errorf("%w: light intensity %v must be non-negative", ErrInvalidScene, l.Intensity)
	}
	return nil
}
