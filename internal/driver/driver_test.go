package driver

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metaball-renderer/internal/animation"
	"metaball-renderer/internal/logger"
	"metaball-renderer/internal/scene"
	"metaball-renderer/internal/uniforms"
)

type fakeSurface struct {
	sizes     [][2]int
	calls     int
	closeFrom int // ShouldClose returns true once it has been asked this many times; 0 never closes
	asked     int
}

func (s *fakeSurface) Size() (int, int) {
	s.calls++
	if len(s.sizes) == 0 {
		return 320, 240
	}
	sz := s.sizes[min(s.calls-1, len(s.sizes)-1)]
	return sz[0], sz[1]
}

func (s *fakeSurface) ShouldClose() bool {
	s.asked++
	return s.closeFrom > 0 && s.asked >= s.closeFrom
}

type fakeRenderer struct {
	rendered   []*uniforms.Set
	failRender int // frame number (1-based) that fails; 0 never fails
	failErr    error
}

func (r *fakeRenderer) Render(p *uniforms.Set) error {
	r.rendered = append(r.rendered, p)
	if r.failRender > 0 && len(r.rendered) == r.failRender {
		return r.failErr
	}
	return nil
}

func (r *fakeRenderer) Capture() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

type fakeWriter struct {
	indices []int
	failAt  int
	err     error
}

func (w *fakeWriter) WriteFrame(index int, _ image.Image) error {
	if w.err != nil && index == w.failAt {
		return w.err
	}
	w.indices = append(w.indices, index)
	return nil
}

type recordingAnimator struct {
	times []float32
	inner Animator
}

func (a *recordingAnimator) Step(s *scene.Scene, t float32) error {
	a.times = append(a.times, t)
	if a.inner != nil {
		return a.inner.Step(s, t)
	}
	return nil
}

type noPacer struct{ waits int }

func (p *noPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	mat := scene.MustMaterial(mgl32.Vec3{1, 0.5, 0}, 20)
	ring := animation.RingOrbit{Radius: 1.5, Count: 4, Speed: 1, Delay: 0.5, Window: 4 * math32.Pi}
	var mb []scene.Metaball
	for i := 0; i < 4; i++ {
		mb = append(mb, scene.NewMetaball(mgl32.Vec3{}, 1, mat, float32(i), ring))
	}
	s, err := scene.New(scene.Params{Threshold: 1, ImagePlaneZ: 1, Width: 1, Height: 1}, mb,
		[]scene.Light{{Position: mgl32.Vec3{0, 4, 0}, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}})
	require.NoError(t, err)
	return s
}

func TestOrbitScenario(t *testing.T) {
	cam := Orbit{Radius: 4, Height: 1, Speed: DefaultOrbitSpeed}.Camera(0)
	assert.InDelta(t, 0, cam.Position[0], 1e-5)
	assert.InDelta(t, 1, cam.Position[1], 1e-5)
	assert.InDelta(t, -4, cam.Position[2], 1e-5)
	assert.Equal(t, float32(0), cam.Angle)

	// a quarter turn later the rig is on +X and still faces the origin
	cam = Orbit{Radius: 4, Height: 1, Speed: DefaultOrbitSpeed}.Camera(math32.Pi)
	assert.InDelta(t, 4, cam.Position[0], 1e-5)
	assert.InDelta(t, 0, cam.Position[2], 1e-5)
	forward := mgl32.HomogRotate3D(cam.Angle, cam.Axis).Mul4x1(mgl32.Vec4{0, 0, 1, 0})
	assert.InDelta(t, -1, forward[0], 1e-5)
	assert.InDelta(t, 0, forward[2], 1e-5)
}

func TestOfflineTiming(t *testing.T) {
	o := Offline{Framerate: 24, Duration: 10}
	assert.Equal(t, 240, o.Total())
	assert.Equal(t, float32(0), o.TimeAt(0))
	assert.Equal(t, float32(float64(239)*(1.0/24)), o.TimeAt(239))
	assert.Equal(t, o.TimeAt(100), o.TimeAt(100))

	assert.Error(t, Offline{Framerate: 0, Duration: 1}.Validate())
	assert.Error(t, Offline{Framerate: 24, Duration: 0}.Validate())
	assert.NoError(t, o.Validate())
}

func TestOfflineTotalCountsPartialFrames(t *testing.T) {
	tests := []struct {
		framerate int
		duration  float64
		want      int
	}{
		{24, 10, 240},
		{24, 1.01, 25},
		{24, 0.01, 1},
		{30, 0.1, 3},
		{3, 0.5, 2},
	}
	for _, tt := range tests {
		o := Offline{Framerate: tt.framerate, Duration: tt.duration}
		assert.Equal(t, tt.want, o.Total(), "%d fps for %vs", tt.framerate, tt.duration)
		assert.NoError(t, o.Validate())
	}

	assert.Error(t, Offline{Framerate: 24, Duration: 1e-12}.Validate(), "no frame to render")
}

func TestRecordRendersFractionalDuration(t *testing.T) {
	r := &fakeRenderer{}
	w := &fakeWriter{}
	d := New(newTestScene(t), &fakeSurface{}, r, Options{Animator: animation.NewEngine()})

	rep, err := d.Record(context.Background(), Offline{Framerate: 24, Duration: 1.01}, w)
	require.NoError(t, err)
	assert.Equal(t, 25, rep.Frames)
	require.Len(t, w.indices, 25)
	assert.Equal(t, 24, w.indices[24])
	assert.Equal(t, Finished, d.State())
}

func TestRecordProducesExactFrameCount(t *testing.T) {
	s := newTestScene(t)
	r := &fakeRenderer{}
	w := &fakeWriter{}
	anim := &recordingAnimator{inner: animation.NewEngine()}
	d := New(s, &fakeSurface{}, r, Options{
		Orbit:    &Orbit{Radius: 4, Height: 1, Speed: DefaultOrbitSpeed},
		Animator: anim,
		Log:      logger.New(""),
	})

	rep, err := d.Record(context.Background(), Offline{Framerate: 24, Duration: 10}, w)
	require.NoError(t, err)

	assert.Equal(t, 240, rep.Frames)
	assert.Len(t, r.rendered, 240)
	require.Len(t, w.indices, 240)
	for i, idx := range w.indices {
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, Finished, d.State())
	require.Len(t, anim.times, 240)
	for i, tm := range anim.times {
		assert.Equal(t, Offline{Framerate: 24, Duration: 10}.TimeAt(i), tm)
	}
}

func TestRecordIsReproducible(t *testing.T) {
	run := func() []*uniforms.Set {
		r := &fakeRenderer{}
		d := New(newTestScene(t), &fakeSurface{}, r, Options{
			Orbit:    &Orbit{Radius: 4, Height: 1, Speed: DefaultOrbitSpeed},
			Animator: animation.NewEngine(),
		})
		_, err := d.Record(context.Background(), Offline{Framerate: 12, Duration: 2}, &fakeWriter{})
		require.NoError(t, err)
		return r.rendered
	}
	first, second := run(), run()
	require.Len(t, first, 24)
	for i := range first {
		assert.Equal(t, first[i].Params(), second[i].Params(), "frame %d", i)
	}
}

func TestRecordHaltsOnWriteFailure(t *testing.T) {
	r := &fakeRenderer{}
	w := &fakeWriter{failAt: 5, err: errors.New("disk full")}
	d := New(newTestScene(t), &fakeSurface{}, r, Options{Animator: animation.NewEngine()})

	rep, err := d.Record(context.Background(), Offline{Framerate: 24, Duration: 1}, w)
	require.Error(t, err)
	assert.ErrorIs(t, err, w.err)
	assert.Equal(t, Failed, d.State())
	assert.Equal(t, 5, rep.Frames)
	assert.Len(t, r.rendered, 6, "no frame is rendered after the failing one")
	assert.Equal(t, []int{0, 1, 2, 3, 4}, w.indices)
}

func TestRecordHaltsOnRenderFailure(t *testing.T) {
	r := &fakeRenderer{failRender: 3, failErr: errors.New("lost context")}
	w := &fakeWriter{}
	d := New(newTestScene(t), &fakeSurface{}, r, Options{})

	_, err := d.Record(context.Background(), Offline{Framerate: 24, Duration: 1}, w)
	assert.ErrorIs(t, err, r.failErr)
	assert.Equal(t, []int{0, 1}, w.indices)
	assert.Equal(t, Failed, d.State())
}

func TestRecordRejectsInvalidTiming(t *testing.T) {
	d := New(newTestScene(t), &fakeSurface{}, &fakeRenderer{}, Options{})
	_, err := d.Record(context.Background(), Offline{Framerate: 24}, &fakeWriter{})
	assert.ErrorIs(t, err, ErrInvalidTiming)
	assert.Equal(t, Failed, d.State())
}

func TestRecordStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &fakeRenderer{}
	d := New(newTestScene(t), &fakeSurface{}, r, Options{})
	_, err := d.Record(ctx, Offline{Framerate: 24, Duration: 1}, &fakeWriter{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.rendered)
}

func TestFrameRefreshesViewport(t *testing.T) {
	surface := &fakeSurface{sizes: [][2]int{{640, 480}, {1024, 768}}}
	r := &fakeRenderer{}
	d := New(newTestScene(t), surface, r, Options{})

	for i := 0; i < 2; i++ {
		_, err := d.Frame(i, 0)
		require.NoError(t, err)
	}
	w, _ := r.rendered[0].Lookup(uniforms.ScreenWidth)
	assert.Equal(t, uint32(640), w.Uint())
	w, _ = r.rendered[1].Lookup(uniforms.ScreenWidth)
	assert.Equal(t, uint32(1024), w.Uint())
	h, _ := r.rendered[1].Lookup(uniforms.ScreenHeight)
	assert.Equal(t, uint32(768), h.Uint())
}

func TestFrameMovesCamera(t *testing.T) {
	r := &fakeRenderer{}
	orbit := Orbit{Radius: 4, Height: 1, Speed: DefaultOrbitSpeed}
	d := New(newTestScene(t), &fakeSurface{}, r, Options{Orbit: &orbit})

	params, err := d.Frame(0, 2)
	require.NoError(t, err)
	m, ok := params.Lookup(uniforms.CameraMatrix)
	require.True(t, ok)
	cam := orbit.Camera(2)
	assert.True(t, m.Mat4().ApproxEqualThreshold(uniforms.CameraTransform(cam), 1e-6))
	frame, tm := d.Progress()
	assert.Equal(t, 0, frame)
	assert.Equal(t, float32(2), tm)
}

func TestPreviewStopsOnClose(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	surface := &fakeSurface{closeFrom: 4}
	anim := &recordingAnimator{}
	pacer := &noPacer{}
	d := New(newTestScene(t), surface, &fakeRenderer{}, Options{Animator: anim})
	d.clock = clock

	// advance the wall clock by one interval per wait
	rep, err := d.Preview(context.Background(), pacerFunc(func(ctx context.Context) error {
		clock.t = clock.t.Add(FrameInterval)
		return pacer.Wait(ctx)
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Frames)
	assert.Equal(t, 3, pacer.waits)
	require.Len(t, anim.times, 3)
	assert.InDelta(t, FrameInterval.Seconds(), anim.times[0], 1e-6)
	assert.InDelta(t, 3*FrameInterval.Seconds(), anim.times[2], 1e-6)
	assert.Equal(t, Finished, d.State())
}

func TestPreviewStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeRenderer{}
	d := New(newTestScene(t), &fakeSurface{}, r, Options{})
	n := 0
	rep, err := d.Preview(ctx, pacerFunc(func(ctx context.Context) error {
		n++
		if n == 3 {
			cancel()
		}
		return ctx.Err()
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Frames)
	assert.Len(t, r.rendered, 2)
}

func TestPreviewFailsOnRenderError(t *testing.T) {
	r := &fakeRenderer{failRender: 1, failErr: errors.New("present failed")}
	d := New(newTestScene(t), &fakeSurface{}, r, Options{})
	_, err := d.Preview(context.Background(), &noPacer{})
	assert.ErrorIs(t, err, r.failErr)
	assert.Equal(t, Failed, d.State())
}

type pacerFunc func(ctx context.Context) error

func (f pacerFunc) Wait(ctx context.Context) error { return f(ctx) }

func TestDeadlinePacer(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewDeadlinePacer(time.Millisecond)
	p.clock = clock

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, clock.t.Add(time.Millisecond), p.next)

	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), time.Millisecond)
	assert.Equal(t, clock.t.Add(2*time.Millisecond), p.next)

	// overrun: the schedule restarts from now without sleeping
	clock.t = clock.t.Add(time.Second)
	require.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, clock.t.Add(time.Millisecond), p.next)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)

	assert.Equal(t, FrameInterval, NewDeadlinePacer(0).Interval)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "rendering", Rendering.String())
	assert.Equal(t, "State(9)", State(9).String())
}
