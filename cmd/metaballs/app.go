package main

import (
	"context"
	"fmt"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
	osfs "github.com/hack-pad/hackpadfs/os"

	"metaball-renderer/internal/animation"
	"metaball-renderer/internal/config"
	"metaball-renderer/internal/debug"
	"metaball-renderer/internal/download"
	"metaball-renderer/internal/driver"
	"metaball-renderer/internal/frames"
	"metaball-renderer/internal/graphics"
	"metaball-renderer/internal/logger"
	"metaball-renderer/internal/presets"
	"metaball-renderer/internal/render"
	"metaball-renderer/internal/shaders"
)

// backgroundCache is where remote background images are stored.
const backgroundCache = "assets/backgrounds"

// app holds everything a run owns; Close releases it in reverse order.
type app struct {
	cfg        config.Config
	log        *logger.Logger
	window     *graphics.Window
	background rl.Texture2D
	pipeline   *render.Pipeline
	driver     *driver.Driver
}

func newApp(ctx context.Context, cfg config.Config, log *logger.Logger) (*app, error) {
	def, err := presets.Load(cfg.ScenePath)
	if err != nil {
		return nil, fmt.Errorf("scene definition: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	a.window = graphics.Open(graphics.Options{
		Width:  cfg.Width,
		Height: cfg.Height,
		Title:  "metaballs",
		Hidden: cfg.Mode == config.ModeRecord,
	})

	bgPath := cfg.Background
	if download.IsURL(bgPath) {
		saved, err := download.Image(ctx, nil, bgPath, backgroundCache)
		if err != nil {
			log.Logf("background %s: %v", bgPath, err)
			bgPath = ""
		} else {
			bgPath = saved
		}
	}
	var found bool
	a.background, found = render.LoadBackground(bgPath)
	if !found {
		log.Logf("background %q not found, using a flat colour", bgPath)
	}

	w, h := a.window.Size()
	scn, err := presets.Build(def, presets.Options{Background: a.background, Width: w, Height: h})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build scene: %w", err)
	}
	log.Logf("scene: %d metaballs, %d lights, %dx%d", scn.NumMetaballs(), scn.NumLights(), w, h)

	a.pipeline, err = render.New(shaders.Counts{Metaballs: scn.NumMetaballs(), Lights: scn.NumLights()},
		cfg.Mode == config.ModeRecord)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.driver = driver.New(scn, a.window, a.pipeline, driver.Options{
		Orbit: &driver.Orbit{
			Radius: cfg.OrbitRadius,
			Height: cfg.OrbitHeight,
			Speed:  cfg.OrbitSpeed,
		},
		Animator: animation.NewEngine(),
		Log:      log,
	})
	if cfg.Mode == config.ModePreview {
		a.pipeline.SetOverlay(debug.New(cfg.ShowFPS, a.driver.Progress).Draw)
	}
	return a, nil
}

// frameWriter opens the output directory through an os-backed filesystem rooted at the
// working directory's volume.
func (a *app) frameWriter() (*frames.Writer, error) {
	dir, err := filepath.Abs(a.cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	fs := osfs.NewFS()
	fsPath, err := fs.FromOSPath(dir)
	if err != nil {
		return nil, fmt.Errorf("output dir %s: %w", dir, err)
	}
	return frames.NewWriter(fs, fsPath, a.cfg.Format)
}

// Run records or previews depending on the configured mode.
func (a *app) Run(ctx context.Context) (driver.Report, error) {
	if a.cfg.Mode == config.ModeRecord {
		w, err := a.frameWriter()
		if err != nil {
			return driver.Report{}, err
		}
		timing := driver.Offline{Framerate: a.cfg.Framerate, Duration: a.cfg.Duration}
		a.log.Logf("recording %d frames to %s", timing.Total(), a.cfg.OutputDir)
		return a.driver.Record(ctx, timing, w)
	}
	return a.driver.Preview(ctx, driver.NewDeadlinePacer(driver.FrameInterval))
}

func (a *app) Close() {
	if a.pipeline != nil {
		a.pipeline.Close()
	}
	if a.background.ID != 0 {
		rl.UnloadTexture(a.background)
	}
	if a.window != nil {
		a.window.Close()
	}
	if a.log != nil {
		a.log.Log("closed")
	}
}
