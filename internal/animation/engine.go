package animation

import (
	"fmt"

	"metaball-renderer/internal/scene"
)

// Engine evaluates the behavior of every metaball of a scene at a given scene time.
type Engine struct{}

// NewEngine returns an animation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Step sets every animated metaball to behavior(state, t), in scene order. Only positions change.
// A behavior that yields NaN or Inf is a setup defect and stops the step with scene.ErrNonFinite.
func (e *Engine) Step(s *scene.Scene, t float32) error {
	for i := 0; i < s.NumMetaballs(); i++ {
		m := s.Metaball(i)
		if m.Behavior == nil {
			continue
		}
		p := m.Behavior.Advance(m.State(), t)
		if err := s.SetMetaballPosition(i, p); err != nil {
			return fmt.Errorf("animate at t=%v: %w", t, err)
		}
	}
	return nil
}
