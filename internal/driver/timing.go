package driver

import (
	"context"
	"fmt"
	"math"
	"time"
)

// FrameInterval is the interactive frame cadence (60 Hz).
const FrameInterval = 16666667 * time.Nanosecond

// Offline describes a fixed-rate recording.
type Offline struct {
	Framerate int
	// Duration is the recording length in seconds.
	Duration float64
}

// Validate reports whether the recording produces at least one frame.
func (o Offline) Validate() error {
	if o.Framerate <= 0 {
		return fmt.Errorf("framerate %d must be positive", o.Framerate)
	}
	if o.Duration <= 0 || math.IsNaN(o.Duration) || math.IsInf(o.Duration, 0) {
		return fmt.Errorf("duration %v must be positive", o.Duration)
	}
	if o.Total() == 0 {
		return fmt.Errorf("duration %v is shorter than one frame at %d fps", o.Duration, o.Framerate)
	}
	return nil
}

// frameEpsilon absorbs float noise in Framerate × Duration (30 × 0.1 is 3.0000000000000004).
const frameEpsilon = 1e-9

// Total is the number of frames to render. Frame i is rendered while i < Framerate × Duration,
// so a fractional product renders one partial frame at the end.
func (o Offline) Total() int {
	return int(math.Ceil(float64(o.Framerate)*o.Duration - frameEpsilon))
}

// FrameDuration is the fixed scene time between two frames, in seconds.
func (o Offline) FrameDuration() float64 {
	return 1 / float64(o.Framerate)
}

// TimeAt returns the scene time of frame i. It only depends on i, never on the wall clock.
func (o Offline) TimeAt(i int) float32 {
	return float32(float64(i) * o.FrameDuration())
}

// Pacer spaces interactive frames by sleeping until a deadline.
type Pacer interface {
	// Wait blocks until the next frame is due or ctx is done.
	Wait(ctx context.Context) error
}

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// DeadlinePacer wakes up once per Interval. The first Wait returns at once and sets the first
// deadline; every later Wait sleeps until the current deadline and moves it one Interval on.
// After an overrun the schedule restarts from the current time instead of bursting to catch up.
type DeadlinePacer struct {
	Interval time.Duration
	clock    Clock
	next     time.Time
}

// NewDeadlinePacer returns a pacer with the given interval, or FrameInterval when zero.
func NewDeadlinePacer(interval time.Duration) *DeadlinePacer {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &DeadlinePacer{Interval: interval, clock: systemClock{}}
}

func (p *DeadlinePacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := p.clock.Now()
	if p.next.IsZero() || !now.Before(p.next) {
		p.next = now.Add(p.Interval)
		return nil
	}
	timer := time.NewTimer(p.next.Sub(now))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	p.next = p.next.Add(p.Interval)
	return nil
}
