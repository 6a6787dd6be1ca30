package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"metaball-renderer/internal/commands"
	"metaball-renderer/internal/config"
	"metaball-renderer/internal/env"
	"metaball-renderer/internal/logger"
)

func main() {
	if err := env.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "env: %v\n", err)
	}

	reg := commands.NewRegistry()
	for _, mode := range []string{config.ModePreview, config.ModeRecord} {
		fs, flags := newFlagSet(mode)
		summary := "render the animation in a window until it is closed"
		if mode == config.ModeRecord {
			summary = "render a fixed number of frames to numbered image files"
		}
		reg.Register(mode, summary, fs, func() error {
			return run(mode, flags)
		})
	}

	err := reg.Execute(os.Args[1:])
	if errors.Is(err, commands.ErrUsage) {
		reg.Usage(os.Stderr, "metaballs")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "metaballs: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds the parsed command line. Only flags given explicitly override the config.
type cliFlags struct {
	fs         *flag.FlagSet
	configPath string
	values     config.Config
}

func newFlagSet(mode string) (*flag.FlagSet, *cliFlags) {
	f := &cliFlags{}
	fs := flag.NewFlagSet(mode, flag.ContinueOnError)
	f.fs = fs
	fs.StringVar(&f.configPath, "config", config.DefaultPath, "config file (JSON)")
	fs.StringVar(&f.values.ScenePath, "scene", "", "scene definition (YAML)")
	fs.StringVar(&f.values.Background, "background", "", "background image path or URL")
	fs.IntVar(&f.values.Width, "width", 0, "window width")
	fs.IntVar(&f.values.Height, "height", 0, "window height")
	if mode == config.ModeRecord {
		fs.StringVar(&f.values.OutputDir, "frames", "", "output directory for frames")
		fs.StringVar(&f.values.Format, "format", "", "frame format: png, jpeg, bmp or tiff")
		fs.IntVar(&f.values.Framerate, "fps", 0, "frames per second of scene time")
		fs.Float64Var(&f.values.Duration, "duration", 0, "recording length in seconds")
	}
	return fs, f
}

// overrides returns the flags that were set on the command line.
func (f *cliFlags) overrides() config.Overrides {
	var o config.Overrides
	v := &f.values
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "scene":
			o.ScenePath = &v.ScenePath
		case "background":
			o.Background = &v.Background
		case "width":
			o.Width = &v.Width
		case "height":
			o.Height = &v.Height
		case "frames":
			o.OutputDir = &v.OutputDir
		case "format":
			o.Format = &v.Format
		case "fps":
			o.Framerate = &v.Framerate
		case "duration":
			o.Duration = &v.Duration
		}
	})
	return o
}

// loadConfig layers the config file, the environment and the flags, in that order. A malformed
// config file is returned as a warning and the defaults are used in its place.
func loadConfig(mode string, f *cliFlags) (cfg config.Config, warning error, err error) {
	cfg, err = config.Load(f.configPath)
	if errors.Is(err, config.ErrMalformedConfig) {
		warning, err = err, nil
	}
	if err != nil {
		return cfg, nil, err
	}
	fromEnv, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return cfg, warning, err
	}
	if err := cfg.Merge(fromEnv); err != nil {
		return cfg, warning, err
	}
	if err := cfg.Merge(f.overrides()); err != nil {
		return cfg, warning, err
	}
	cfg.Mode = mode
	return cfg, warning, cfg.Validate()
}

func run(mode string, f *cliFlags) error {
	cfg, warning, err := loadConfig(mode, f)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogPath)
	log.SetEcho(os.Stderr)
	if warning != nil {
		log.Logf("config ignored, using defaults: %v", warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Logf("setup failed: %v", err)
		return err
	}
	defer app.Close()

	report, err := app.Run(ctx)
	if err != nil {
		log.Logf("%s failed after %d frames: %v", mode, report.Frames, err)
		return err
	}
	log.Logf("%s finished: %d frames in %s", mode, report.Frames, report.Elapsed)
	return nil
}
