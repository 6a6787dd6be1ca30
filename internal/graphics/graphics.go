// Package graphics owns the raylib window the frames are drawn into.
package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Options configures the window.
type Options struct {
	Width  int
	Height int
	Title  string
	// Hidden opens the window without showing it; recording only needs the GL context.
	Hidden bool
}

// Window is the display surface. Frame pacing is left to the caller, so no target FPS is set.
type Window struct {
	hidden bool
}

// Open creates the window and its GL context. Only one window may be open at a time.
func Open(opts Options) *Window {
	flags := uint32(rl.FlagWindowResizable)
	if opts.Hidden {
		flags = rl.FlagWindowHidden
	}
	rl.SetConfigFlags(flags)
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	rl.SetExitKey(rl.KeyEscape)
	return &Window{hidden: opts.Hidden}
}

// Size returns the current drawable size in pixels.
func (w *Window) Size() (width, height int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

// ShouldClose reports whether ESC or the window close button was pressed.
// A hidden window never asks to close.
func (w *Window) ShouldClose() bool {
	if w.hidden {
		return false
	}
	return rl.WindowShouldClose()
}

// Close destroys the window and its GL context.
func (w *Window) Close() {
	rl.CloseWindow()
}
