package presets

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// MaterialDef is the YAML form of a material: a hex colour and a roughness (specular exponent).
type MaterialDef struct {
	Color     string  `yaml:"color"`
	Roughness float32 `yaml:"roughness"`
}

// LightDef is the YAML form of a point light.
type LightDef struct {
	Position  [3]float32 `yaml:"position"`
	Color     string     `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
}

// Definition is the data part of a scene file (e.g. assets/scene.yaml). Metaball motion is not
// described here; it is attached in code by Build.
type Definition struct {
	Threshold   float32                `yaml:"threshold"`
	ImagePlaneZ float32                `yaml:"image_plane_z"`
	RingCount   int                    `yaml:"ring_count,omitempty"`
	Materials   map[string]MaterialDef `yaml:"materials"`
	Lights      []LightDef             `yaml:"lights"`
}

// Material names looked up by Build.
const (
	MaterialRing  = "ring"
	MaterialOrbit = "orbit"
	MaterialBob   = "bob"
	MaterialCarve = "carve"
)

// Default returns the definition used when no scene file exists.
func Default() Definition {
	return Definition{
		Threshold:   1,
		ImagePlaneZ: 1.5,
		RingCount:   8,
		Materials: map[string]MaterialDef{
			MaterialRing:  {Color: "#ff7a30", Roughness: 24},
			MaterialOrbit: {Color: "#3fa7ff", Roughness: 64},
			MaterialBob:   {Color: "#f2f2f2", Roughness: 8},
			MaterialCarve: {Color: "#202020", Roughness: 2},
		},
		Lights: []LightDef{
			{Position: [3]float32{4, 6, -5}, Color: "#fff4e0", Intensity: 0.9},
			{Position: [3]float32{-5, 2, 3}, Color: "#6080ff", Intensity: 0.4},
		},
	}
}

// Parse decodes a YAML scene definition over Default(): absent keys keep their default values
// and listed lights replace the default lights.
func Parse(data []byte) (Definition, error) {
	def := Default()
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse scene definition: %w", err)
	}
	return def, nil
}

// Load reads the scene definition at path. A missing file yields Default().
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Definition{}, err
	}
	def, err := Parse(data)
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ParseHexColor converts "#rrggbb" (the # is optional) into an RGB colour in [0,1].
func ParseHexColor(s string) (mgl32.Vec3, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("colour %q: want #rrggbb", s)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return mgl32.Vec3{
		float32((n>>16)&0xff) / 255,
		float32((n>>8)&0xff) / 255,
		float32(n&0xff) / 255,
	}, nil
}
