// Package render draws parameter sets with the metaball shading program through raylib.
package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"metaball-renderer/internal/shaders"
	"metaball-renderer/internal/uniforms"
)

var (
	// ErrCountMismatch is returned when a parameter set holds a different number of metaballs or
	// lights than the program was compiled for. The program has to be rebuilt; it is not recoverable.
	ErrCountMismatch = errors.New("entity count does not match the compiled program")
	// ErrProgram is returned when the shading program fails to compile or link.
	ErrProgram = errors.New("shading program failed to build")
	// ErrNoCapture is returned by Capture on a pipeline that draws straight to the screen.
	ErrNoCapture = errors.New("pipeline has no offscreen target")
)

// Pipeline owns the shading program. With Offscreen set it draws each frame into a render
// texture that Capture reads back, then shows that texture in the window.
type Pipeline struct {
	counts    shaders.Counts
	shader    rl.Shader
	locs      map[string]int32
	offscreen bool
	target    rl.RenderTexture2D
	overlay   func()
}

// New compiles the program for the given counts. Must be called after the window exists.
func New(counts shaders.Counts, offscreen bool) (*Pipeline, error) {
	vs, fs, err := shaders.Source(counts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProgram, err)
	}
	shader := rl.LoadShaderFromMemory(vs, fs)
	if !rl.IsShaderValid(shader) {
		return nil, fmt.Errorf("%w: %d metaballs, %d lights", ErrProgram, counts.Metaballs, counts.Lights)
	}
	return &Pipeline{
		counts:    counts,
		shader:    shader,
		locs:      make(map[string]int32),
		offscreen: offscreen,
	}, nil
}

// SetOverlay sets a function drawn on top of every presented frame (e.g. the debug overlay).
// It is not part of the captured image.
func (p *Pipeline) SetOverlay(draw func()) {
	p.overlay = draw
}

// location returns the cached uniform location of name; -1 means the program does not read it.
func (p *Pipeline) location(name string) int32 {
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	loc := rl.GetShaderLocation(p.shader, name)
	p.locs[name] = loc
	return loc
}

// checkCounts compares the array sizes in set with the compiled counts.
func (p *Pipeline) checkCounts(set *uniforms.Set) error {
	nm, err := set.Groups(uniforms.MetaballsArray)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCountMismatch, err)
	}
	nl, err := set.Groups(uniforms.LightsArray)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCountMismatch, err)
	}
	if nm != p.counts.Metaballs || nl != p.counts.Lights {
		return fmt.Errorf("%w: got %d metaballs and %d lights, program has %d and %d",
			ErrCountMismatch, nm, nl, p.counts.Metaballs, p.counts.Lights)
	}
	return nil
}

// Bind uploads every parameter of set to the program.
func (p *Pipeline) Bind(set *uniforms.Set) error {
	if err := p.checkCounts(set); err != nil {
		return err
	}
	for _, param := range set.Params() {
		loc := p.location(param.Name)
		if loc < 0 {
			continue
		}
		v := param.Value
		switch v.Kind() {
		case uniforms.KindFloat:
			rl.SetShaderValue(p.shader, loc, v.Floats(), rl.ShaderUniformFloat)
		case uniforms.KindVec2:
			rl.SetShaderValue(p.shader, loc, v.Floats(), rl.ShaderUniformVec2)
		case uniforms.KindVec3:
			rl.SetShaderValue(p.shader, loc, v.Floats(), rl.ShaderUniformVec3)
		case uniforms.KindVec4:
			rl.SetShaderValue(p.shader, loc, v.Floats(), rl.ShaderUniformVec4)
		case uniforms.KindUint:
			// raylib takes every value as float32 memory; the int bits go through unchanged.
			bits := []float32{math.Float32frombits(v.Uint())}
			rl.SetShaderValue(p.shader, loc, bits, rl.ShaderUniformInt)
		case uniforms.KindMat4:
			rl.SetShaderValueMatrix(p.shader, loc, toMatrix(v.Mat4()))
		case uniforms.KindTexture:
			tex, ok := v.Texture().(rl.Texture2D)
			if !ok {
				return fmt.Errorf("parameter %s: texture handle is %T, want rl.Texture2D", param.Name, v.Texture())
			}
			rl.SetShaderValueTexture(p.shader, loc, tex)
		default:
			return fmt.Errorf("parameter %s: unsupported kind %s", param.Name, v.Kind())
		}
	}
	return nil
}

// toMatrix converts a column-major mgl32 matrix into raylib's layout, which is column-major too.
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

// viewport reads the frame size out of the parameter set.
func viewport(set *uniforms.Set) (int32, int32) {
	w, _ := set.Lookup(uniforms.ScreenWidth)
	h, _ := set.Lookup(uniforms.ScreenHeight)
	return int32(max(w.Uint(), 1)), int32(max(h.Uint(), 1))
}

// ensureTarget (re)creates the render texture when the viewport size changes.
func (p *Pipeline) ensureTarget(w, h int32) {
	if p.target.ID != 0 && p.target.Texture.Width == w && p.target.Texture.Height == h {
		return
	}
	if p.target.ID != 0 {
		rl.UnloadRenderTexture(p.target)
	}
	p.target = rl.LoadRenderTexture(w, h)
}

// draw runs the program over a w×h rectangle with the parameters bound.
func (p *Pipeline) draw(set *uniforms.Set, w, h int32) error {
	rl.ClearBackground(rl.Black)
	rl.BeginShaderMode(p.shader)
	err := p.Bind(set)
	if err == nil {
		rl.DrawRectangle(0, 0, w, h, rl.White)
	}
	rl.EndShaderMode()
	return err
}

// Render draws one frame and presents it.
func (p *Pipeline) Render(set *uniforms.Set) error {
	w, h := viewport(set)
	if !p.offscreen {
		rl.BeginDrawing()
		err := p.draw(set, w, h)
		if p.overlay != nil {
			p.overlay()
		}
		rl.EndDrawing()
		return err
	}

	p.ensureTarget(w, h)
	rl.BeginTextureMode(p.target)
	err := p.draw(set, w, h)
	rl.EndTextureMode()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	// render textures are stored bottom-up, so the source rectangle has a negative height
	src := rl.NewRectangle(0, 0, float32(w), -float32(h))
	rl.DrawTextureRec(p.target.Texture, src, rl.NewVector2(0, 0), rl.White)
	if p.overlay != nil {
		p.overlay()
	}
	rl.EndDrawing()
	return err
}

// Capture reads the last offscreen frame back. Rows are in GL order (bottom row first).
func (p *Pipeline) Capture() (image.Image, error) {
	if !p.offscreen || p.target.ID == 0 {
		return nil, ErrNoCapture
	}
	img := rl.LoadImageFromTexture(p.target.Texture)
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, errors.New("read back render texture: empty image")
	}
	defer rl.UnloadImage(img)
	return img.ToImage(), nil
}

// Close releases the program and the render texture.
func (p *Pipeline) Close() {
	if p.target.ID != 0 {
		rl.UnloadRenderTexture(p.target)
		p.target = rl.RenderTexture2D{}
	}
	rl.UnloadShader(p.shader)
}
