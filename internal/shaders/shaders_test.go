package shaders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metaball-renderer/internal/uniforms"
)

func TestSourceBakesCounts(t *testing.T) {
	vs, fs, err := Source(Counts{Metaballs: 11, Lights: 2})
	require.NoError(t, err)

	assert.Contains(t, vs, "uniform mat4 mvp;")
	assert.Contains(t, fs, "#define NUM_METABALLS 11\n")
	assert.Contains(t, fs, "#define NUM_LIGHTS 2\n")
	assert.Contains(t, fs, "uniform Light lights[2];")
}

func TestSourceWithoutLights(t *testing.T) {
	_, fs, err := Source(Counts{Metaballs: 1})
	require.NoError(t, err)
	assert.Contains(t, fs, "#define NUM_LIGHTS 0\n")
	assert.Contains(t, fs, "uniform Light lights[1];")
}

func TestSourceRejectsCounts(t *testing.T) {
	_, _, err := Source(Counts{Metaballs: 0, Lights: 1})
	assert.Error(t, err)
	_, _, err = Source(Counts{Metaballs: 1, Lights: -1})
	assert.Error(t, err)
}

func TestSourceDeclaresMarshaledNames(t *testing.T) {
	_, fs, err := Source(Counts{Metaballs: 3, Lights: 1})
	require.NoError(t, err)

	for _, name := range []string{
		uniforms.ScreenWidth, uniforms.ScreenHeight, uniforms.ImagePlaneZ,
		uniforms.Threshold, uniforms.CameraMatrix, uniforms.Background,
	} {
		assert.Contains(t, fs, " "+name+";", name)
	}
	for _, field := range []string{uniforms.ChargePos, uniforms.Strength} {
		assert.Contains(t, fs, " "+field+";")
	}
	for _, field := range []string{uniforms.LightPosition, uniforms.LightColor, uniforms.LightIntensity} {
		assert.Contains(t, fs, " "+field+";")
	}
	_, nested, _ := strings.Cut(uniforms.MaterialColor, ".")
	assert.Contains(t, fs, "Material material;")
	assert.Contains(t, fs, " "+nested+";")
}
