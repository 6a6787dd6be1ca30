package debug

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh the overlay text every N frames to reduce allocations.
	updateInterval = 30
)

// Overlay draws preview diagnostics in the top-right corner: FPS, frame index and scene time.
type Overlay struct {
	ShowFPS bool
	// Progress reports the current frame and scene time. Optional.
	Progress func() (frame int, sceneTime float32)

	frameCount   uint32
	fpsText      string
	progressText string
}

// New returns an overlay. Progress may be nil.
func New(showFPS bool, progress func() (int, float32)) *Overlay {
	return &Overlay{ShowFPS: showFPS, Progress: progress}
}

// Draw renders the enabled lines. Call between BeginDrawing and EndDrawing, after the frame.
func (o *Overlay) Draw() {
	o.frameCount++
	update := o.frameCount%updateInterval == 0 || o.frameCount == 1

	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)
	line := func(text string) {
		if text == "" {
			return
		}
		w := rl.MeasureText(text, fontSize)
		rl.DrawText(text, screenW-w-padding, y, fontSize, rl.Green)
		y += lineHeight
	}

	if o.ShowFPS {
		if update {
			o.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		line(o.fpsText)
	}
	if o.Progress != nil {
		if update {
			frame, t := o.Progress()
			o.progressText = fmt.Sprintf("frame %d  t=%.2fs", frame, t)
		}
		line(o.progressText)
	}
}
