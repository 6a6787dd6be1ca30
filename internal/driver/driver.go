// Package driver sequences frames: it advances scene time and the camera orbit, runs the
// animation engine, marshals the scene and hands it to the renderer, one frame at a time.
package driver

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"metaball-renderer/internal/logger"
	"metaball-renderer/internal/scene"
	"metaball-renderer/internal/uniforms"
)

// Surface is the display the frames are shown on.
type Surface interface {
	// Size returns the current drawable size in pixels.
	Size() (width, height int)
	// ShouldClose reports whether the user asked to close the display.
	ShouldClose() bool
}

// Renderer draws one frame from a parameter set and presents it.
type Renderer interface {
	Render(params *uniforms.Set) error
	// Capture returns the last rendered frame with a bottom-left origin.
	Capture() (image.Image, error)
}

// FrameWriter persists a captured frame under its index.
type FrameWriter interface {
	WriteFrame(index int, img image.Image) error
}

// Animator moves the scene's metaballs to their positions at scene time t.
type Animator interface {
	Step(s *scene.Scene, t float32) error
}

// State is the phase of a run.
type State int

const (
	Initializing State = iota
	Rendering
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Rendering:
		return "rendering"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrInvalidTiming is returned by Record for a recording that would produce no frames.
var ErrInvalidTiming = errors.New("invalid timing")

// Report summarizes a finished or failed run.
type Report struct {
	// Frames is the number of frames that completed.
	Frames  int
	Elapsed time.Duration
}

// Options configures a Driver.
type Options struct {
	// Orbit moves the camera every frame. Nil keeps the scene's camera.
	Orbit    *Orbit
	Animator Animator
	// Log may be nil.
	Log *logger.Logger
}

// Driver runs frames strictly one after another; nothing here is safe for concurrent use.
type Driver struct {
	scene    *scene.Scene
	surface  Surface
	renderer Renderer
	animator Animator
	orbit    *Orbit
	log      *logger.Logger
	clock    Clock

	state     State
	frame     int
	sceneTime float32
}

// New returns a driver for s. The driver borrows the scene; it is the only writer during a run.
func New(s *scene.Scene, surface Surface, renderer Renderer, opts Options) *Driver {
	return &Driver{
		scene:    s,
		surface:  surface,
		renderer: renderer,
		animator: opts.Animator,
		orbit:    opts.Orbit,
		log:      opts.Log,
		clock:    systemClock{},
	}
}

func (d *Driver) State() State { return d.state }

// Progress returns the index and scene time of the current frame.
func (d *Driver) Progress() (frame int, sceneTime float32) {
	return d.frame, d.sceneTime
}

func (d *Driver) logf(format string, args ...any) {
	if d.log != nil {
		d.log.Logf(format, args...)
	}
}

func (d *Driver) setState(s State) {
	if d.state == s {
		return
	}
	d.logf("driver: %s -> %s (frame %d)", d.state, s, d.frame)
	d.state = s
}

// Frame renders frame i at scene time t: refresh the viewport, move the camera, animate,
// marshal and render. It returns the parameter set that was rendered.
func (d *Driver) Frame(i int, t float32) (*uniforms.Set, error) {
	d.frame, d.sceneTime = i, t
	w, h := d.surface.Size()
	d.scene.SetViewport(w, h)
	if d.orbit != nil {
		if err := d.scene.SetCamera(d.orbit.Camera(t)); err != nil {
			return nil, fmt.Errorf("frame %d: camera: %w", i, err)
		}
	}
	if d.animator != nil {
		if err := d.animator.Step(d.scene, t); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	params := uniforms.Marshal(d.scene)
	if err := d.renderer.Render(params); err != nil {
		return nil, fmt.Errorf("frame %d: render: %w", i, err)
	}
	return params, nil
}

func (d *Driver) fail(start time.Time, err error) (Report, error) {
	d.setState(Failed)
	d.logf("driver: %v", err)
	return Report{Frames: d.frame, Elapsed: d.clock.Now().Sub(start)}, err
}

// Record renders o.Total() frames with scene time i/Framerate and writes frame i through w.
// It never waits on the wall clock. The first failing frame stops the run: a skipped or
// retried frame would break the numbered sequence.
func (d *Driver) Record(ctx context.Context, o Offline, w FrameWriter) (Report, error) {
	d.frame, d.sceneTime = 0, 0
	d.setState(Initializing)
	start := d.clock.Now()
	if err := o.Validate(); err != nil {
		return d.fail(start, fmt.Errorf("%w: %w", ErrInvalidTiming, err))
	}
	total := o.Total()
	d.logf("driver: recording %d frames at %d fps", total, o.Framerate)

	d.setState(Rendering)
	for i := 0; i < total; i++ {
		d.frame = i
		if err := ctx.Err(); err != nil {
			return d.fail(start, fmt.Errorf("frame %d: %w", i, err))
		}
		if _, err := d.Frame(i, o.TimeAt(i)); err != nil {
			return d.fail(start, err)
		}
		img, err := d.renderer.Capture()
		if err != nil {
			return d.fail(start, fmt.Errorf("frame %d: capture: %w", i, err))
		}
		if err := w.WriteFrame(i, img); err != nil {
			return d.fail(start, fmt.Errorf("frame %d: %w", i, err))
		}
		if (i+1)%o.Framerate == 0 || i+1 == total {
			d.logf("driver: wrote frame %d/%d", i+1, total)
		}
	}
	d.frame = total
	d.setState(Finished)
	return Report{Frames: total, Elapsed: d.clock.Now().Sub(start)}, nil
}

// Preview renders until the surface asks to close or ctx is cancelled, both checked between
// frames. Scene time is the wall-clock time since the run started and pacer spaces the frames.
func (d *Driver) Preview(ctx context.Context, pacer Pacer) (Report, error) {
	d.frame, d.sceneTime = 0, 0
	d.setState(Initializing)
	start := d.clock.Now()

	d.setState(Rendering)
	i := 0
	for ; !d.surface.ShouldClose(); i++ {
		if err := pacer.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return d.fail(start, err)
		}
		t := float32(d.clock.Now().Sub(start).Seconds())
		if _, err := d.Frame(i, t); err != nil {
			return d.fail(start, err)
		}
	}
	d.frame = i
	d.setState(Finished)
	return Report{Frames: i, Elapsed: d.clock.Now().Sub(start)}, nil
}
