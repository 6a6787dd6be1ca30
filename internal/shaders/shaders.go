// Package shaders renders the GLSL program that draws the metaball field. The number of metaballs
// and lights is compiled into the program, so a scene with different counts needs a new program.
package shaders

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed metaballs.vert
var vertexSource string

//go:embed metaballs.frag.tmpl
var fragmentTemplate string

var fragment = template.Must(template.New("metaballs.frag").Parse(fragmentTemplate))

// Counts are the array sizes the program is compiled for.
type Counts struct {
	Metaballs int
	Lights    int
}

// ArrayLights is the declared size of the lights array; GLSL does not allow empty arrays.
func (c Counts) ArrayLights() int {
	return max(c.Lights, 1)
}

// Source returns the vertex and fragment sources for the given entity counts.
func Source(c Counts) (vs, fs string, err error) {
	if c.Metaballs <= 0 {
		return "", "", fmt.Errorf("shader needs at least one metaball, got %d", c.Metaballs)
	}
	if c.Lights < 0 {
		return "", "", fmt.Errorf("negative light count %d", c.Lights)
	}
	var buf bytes.Buffer
	if err := fragment.Execute(&buf, c); err != nil {
		return "", "", fmt.Errorf("render fragment shader: %w", err)
	}
	return vertexSource, buf.String(), nil
}
