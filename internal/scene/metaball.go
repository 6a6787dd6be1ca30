package scene

import "github.com/go-gl/mathgl/mgl32"

// State is the part of a metaball a Behavior may read.
type State struct {
	Position mgl32.Vec3
	Strength float32
	// Index is the ordinal within the metaball's construction group, not a global id.
	Index float32
}

// Behavior computes a metaball's next position from its own state and the scene time in seconds.
// Implementations must be pure: the same (State, t) always gives the same position, and they
// must not read anything besides their own parameters.
type Behavior interface {
	Advance(s State, t float32) mgl32.Vec3
}

// Metaball is a single charge of the implicit field. A negative strength carves density away.
type Metaball struct {
	Position mgl32.Vec3
	Strength float32
	Material Material
	Index    float32
	// Behavior may be nil for a metaball that never moves.
	Behavior Behavior
}

// NewMetaball returns a metaball with the given initial state and behavior.
func NewMetaball(position mgl32.Vec3, strength float32, material Material, index float32, behavior Behavior) Metaball {
	return Metaball{
		Position: position,
		Strength: strength,
		Material: material,
		Index:    index,
		Behavior: behavior,
	}
}

// State returns the read-only view handed to the metaball's behavior.
func (m Metaball) State() State {
	return State{Position: m.Position, Strength: m.Strength, Index: m.Index}
}
