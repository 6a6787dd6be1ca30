package uniforms

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"metaball-renderer/internal/scene"
)

// Parameter names read by the shading program.
const (
	ScreenWidth  = "screenWidth"
	ScreenHeight = "screenHeight"
	ImagePlaneZ  = "imgPlaneZ"
	Threshold    = "threshold"
	CameraMatrix = "cameraMat"
	Background   = "background"

	MetaballsArray = "metaballs"
	LightsArray    = "lights"
)

// Fields of one metaballs[i] element.
const (
	ChargePos         = "chargePos"
	Strength          = "strength"
	MaterialColor     = "material.color"
	MaterialRoughness = "material.roughness"
)

// Fields of one lights[i] element.
const (
	LightPosition  = "position"
	LightColor     = "color"
	LightIntensity = "intensity"
)

const (
	scalarParams   = 6
	metaballParams = 4
	lightParams    = 3
)

// MetaballName returns the parameter name of field for the metaball at ordinal i, e.g. metaballs[2].strength.
func MetaballName(i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", MetaballsArray, i, field)
}

// LightName returns the parameter name of field for the light at ordinal i.
func LightName(i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", LightsArray, i, field)
}

// CameraTransform composes translation(Position) · rotation(Angle, Axis): the rig rotates in
// place and is then moved to its position.
func CameraTransform(c scene.Camera) mgl32.Mat4 {
	t := mgl32.Translate3D(c.Position[0], c.Position[1], c.Position[2])
	return t.Mul4(mgl32.HomogRotate3D(c.Angle, c.Axis))
}

// Marshal flattens the scene into the parameter set of one frame. Array indices follow the
// scene order of metaballs and lights. The scene is only read.
func Marshal(s *scene.Scene) *Set {
	nm, nl := s.NumMetaballs(), s.NumLights()
	set := NewSet(scalarParams + nm*metaballParams + nl*lightParams)
	w, h := s.Viewport()

	// Names are unique by construction, so Add cannot fail here.
	add := func(name string, v Value) {
		if err := set.Add(name, v); err != nil {
			panic(err)
		}
	}
	add(ScreenWidth, Uint(uint32(w)))
	add(ScreenHeight, Uint(uint32(h)))
	add(ImagePlaneZ, Float(s.ImagePlaneZ()))
	add(Threshold, Float(s.Threshold()))
	add(CameraMatrix, Mat4(CameraTransform(s.Camera())))
	add(Background, Texture(s.Background()))

	for i := 0; i < nm; i++ {
		m := s.Metaball(i)
		add(MetaballName(i, ChargePos), Vec3(m.Position))
		add(MetaballName(i, Strength), Float(m.Strength))
		add(MetaballName(i, MaterialColor), Vec3(m.Material.Color()))
		add(MetaballName(i, MaterialRoughness), Float(m.Material.Roughness()))
	}
	for i := 0; i < nl; i++ {
		l := s.Light(i)
		add(LightName(i, LightPosition), Vec3(l.Position))
		add(LightName(i, LightColor), Vec3(l.Color))
		add(LightName(i, LightIntensity), Float(l.Intensity))
	}
	return set
}
