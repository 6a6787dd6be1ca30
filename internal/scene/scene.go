package scene

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidScene is returned by New for a scene that cannot be rendered.
	ErrInvalidScene = errors.New("invalid scene")
	// ErrNonFinite is returned when a NaN or Inf would be written into the scene.
	ErrNonFinite = errors.New("non-finite value")
)

// Camera is the camera rig pose: rotate by Angle (radians) about Axis, then translate to Position.
type Camera struct {
	Position mgl32.Vec3
	Axis     mgl32.Vec3
	Angle    float32
}

// Params holds the scene-wide values that are not entities.
type Params struct {
	Camera Camera
	// Threshold is the iso-surface cutoff: field >= Threshold is inside the surface.
	Threshold float32
	// ImagePlaneZ is the distance from the camera to the image plane.
	ImagePlaneZ float32
	// Background is an opaque texture handle bound by the render pipeline. May be nil.
	Background any
	Width      int
	Height     int
}

// Scene owns every entity of one rendering session. The number of metaballs and lights is fixed
// at New: the shading program is compiled for those counts, and the order of each collection
// decides the index it is published under.
type Scene struct {
	camera      Camera
	threshold   float32
	imagePlaneZ float32
	background  any
	width       int
	height      int
	metaballs   []Metaball
	lights      []Light
}

// New validates the parameters and entities and returns a scene that owns copies of them.
func New(p Params, metaballs []Metaball, lights []Light) (*Scene, error) {
	if !finite(p.Threshold) || p.Threshold <= 0 {
		return nil, fmt.Errorf("%w: threshold %v must be positive", ErrInvalidScene, p.Threshold)
	}
	if !finite(p.ImagePlaneZ) || p.ImagePlaneZ <= 0 {
		return nil, fmt.Errorf("%w: image plane depth %v must be positive", ErrInvalidScene, p.ImagePlaneZ)
	}
	cam, err := normalizeCamera(p.Camera)
	if err != nil {
		return nil, err
	}
	if len(metaballs) == 0 {
		return nil, fmt.Errorf("%w: at least one metaball is required", ErrInvalidScene)
	}
	for i, m := range metaballs {
		if !m.Material.valid() {
			return nil, fmt.Errorf("%w: metaball %d has no material", ErrInvalidScene, i)
		}
		if !finiteVec(m.Position) || !finite(m.Strength) || !finite(m.Index) {
			return nil, fmt.Errorf("%w: metaball %d: %w", ErrInvalidScene, i, ErrNonFinite)
		}
	}
	for i, l := range lights {
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
	}
	s := &Scene{
		camera:      cam,
		threshold:   p.Threshold,
		imagePlaneZ: p.ImagePlaneZ,
		background:  p.Background,
		metaballs:   append([]Metaball(nil), metaballs...),
		lights:      append([]Light(nil), lights...),
	}
	s.SetViewport(p.Width, p.Height)
	return s, nil
}

// normalizeCamera makes the rotation axis unit length. A zero axis is only accepted with a zero angle.
func normalizeCamera(c Camera) (Camera, error) {
	if !finiteVec(c.Position) || !finiteVec(c.Axis) || !finite(c.Angle) {
		return Camera{}, fmt.Errorf("camera: %w", ErrNonFinite)
	}
	if c.Axis.Len() == 0 {
		if c.Angle != 0 {
			return Camera{}, fmt.Errorf("%w: camera rotation axis is zero", ErrInvalidScene)
		}
		c.Axis = mgl32.Vec3{0, 1, 0}
		return c, nil
	}
	c.Axis = c.Axis.Normalize()
	return c, nil
}

func (s *Scene) Camera() Camera { return s.camera }

func (s *Scene) Threshold() float32 { return s.threshold }

func (s *Scene) ImagePlaneZ() float32 { return s.imagePlaneZ }

// Background returns the opaque background handle given to New.
func (s *Scene) Background() any { return s.background }

// Viewport returns the last display size set with SetViewport.
func (s *Scene) Viewport() (width, height int) { return s.width, s.height }

func (s *Scene) NumMetaballs() int { return len(s.metaballs) }

func (s *Scene) NumLights() int { return len(s.lights) }

// Metaball returns the metaball at ordinal i.
func (s *Scene) Metaball(i int) Metaball { return s.metaballs[i] }

// Metaballs returns a copy of the metaballs in scene order.
func (s *Scene) Metaballs() []Metaball {
	return append([]Metaball(nil), s.metaballs...)
}

// Light returns the light at ordinal i.
func (s *Scene) Light(i int) Light { return s.lights[i] }

// Lights returns a copy of the lights in scene order.
func (s *Scene) Lights() []Light {
	return append([]Light(nil), s.lights...)
}

// SetMetaballPosition writes back the position of metaball i. Only the animation engine calls this.
func (s *Scene) SetMetaballPosition(i int, p mgl32.Vec3) error {
	if i < 0 || i >= len(s.metaballs) {
		return fmt.Errorf("metaball %d out of range [0,%d)", i, len(s.metaballs))
	}
	if !finiteVec(p) {
		return fmt.Errorf("metaball %d position %v: %w", i, p, ErrNonFinite)
	}
	s.metaballs[i].Position = p
	return nil
}

// SetCamera replaces the camera pose. The axis is normalized.
func (s *Scene) SetCamera(c Camera) error {
	cam, err := normalizeCamera(c)
	if err != nil {
		return err
	}
	s.camera = cam
	return nil
}

// SetViewport records the current display size. Non-positive sizes are stored as 1.
func (s *Scene) SetViewport(width, height int) {
	s.width = max(width, 1)
	s.height = max(height, 1)
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func finiteVec(v mgl32.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
