package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jinzhu/copier"
)

// DefaultPath is the render config file, relative to the process working directory.
const DefaultPath = "config/render.json"

// Modes.
const (
	ModePreview = "preview"
	ModeRecord  = "record"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the construction-time settings of a run: window size, recording length and
// output, background image and camera orbit.
type Config struct {
	Mode        string  `json:"mode"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Framerate   int     `json:"framerate"`
	Duration    float64 `json:"duration_seconds"`
	OutputDir   string  `json:"output_dir"`
	Format      string  `json:"format"`
	Background  string  `json:"background,omitempty"`
	ScenePath   string  `json:"scene,omitempty"`
	LogPath     string  `json:"log,omitempty"`
	OrbitRadius float32 `json:"orbit_radius"`
	OrbitHeight float32 `json:"orbit_height"`
	OrbitSpeed  float32 `json:"orbit_speed"`
	ShowFPS     bool    `json:"show_fps"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		Mode:        ModePreview,
		Width:       1280,
		Height:      720,
		Framerate:   24,
		Duration:    10,
		OutputDir:   "frames",
		Format:      "png",
		Background:  "assets/background.png",
		ScenePath:   "assets/scene.yaml",
		LogPath:     "logs/render.txt",
		OrbitRadius: 4,
		OrbitHeight: 1,
		OrbitSpeed:  0.5,
		ShowFPS:     true,
	}
}

// ErrMalformedConfig is returned by Load for a config file that exists but cannot be read or parsed.
var ErrMalformedConfig = errors.New("malformed config file")

// Load reads the config at path over Default(). A missing file yields Default() and no error.
// A malformed file yields Default() together with an error wrapping ErrMalformedConfig, so the
// caller can report it and still run.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("%w: %s: %w", ErrMalformedConfig, path, err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Default(), fmt.Errorf("%w: %s: %w", ErrMalformedConfig, path, err)
	}
	return c, nil
}

// Save writes c to path, creating the directory if needed.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Overrides holds values set explicitly by the environment or the command line. A nil field leaves
// the config as it is; a non-nil one is applied even when it points at a zero value.
type Overrides struct {
	Mode        *string
	Width       *int
	Height      *int
	Framerate   *int
	Duration    *float64
	OutputDir   *string
	Format      *string
	Background  *string
	ScenePath   *string
	LogPath     *string
	OrbitRadius *float32
	OrbitHeight *float32
	OrbitSpeed  *float32
	ShowFPS     *bool
}

// Merge copies every set field of o onto c. Fields are matched by name.
func (c *Config) Merge(o Overrides) error {
	return copier.CopyWithOption(c, &o, copier.Option{IgnoreEmpty: true})
}

// EnvPrefix prefixes every environment override, e.g. METABALLS_WIDTH.
const EnvPrefix = "METABALLS_"

// FromEnv builds overrides from METABALLS_* variables. lookup is usually os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Overrides, error) {
	var o Overrides
	var err error
	get := func(key string) (string, bool) {
		if err != nil {
			return "", false
		}
		return lookup(EnvPrefix + key)
	}
	str := func(key string) *string {
		if v, ok := get(key); ok {
			return &v
		}
		return nil
	}
	num := func(key string) *int {
		v, ok := get(key)
		if !ok {
			return nil
		}
		n, perr := strconv.Atoi(v)
		if perr != nil {
			err = fmt.Errorf("%s%s: %w", EnvPrefix, key, perr)
			return nil
		}
		return &n
	}
	float := func(key string, bits int) *float64 {
		v, ok := get(key)
		if !ok {
			return nil
		}
		f, perr := strconv.ParseFloat(v, bits)
		if perr != nil {
			err = fmt.Errorf("%s%s: %w", EnvPrefix, key, perr)
			return nil
		}
		return &f
	}
	float32p := func(key string) *float32 {
		if f := float(key, 32); f != nil {
			v := float32(*f)
			return &v
		}
		return nil
	}
	o.Mode = str("MODE")
	o.OutputDir = str("OUTPUT_DIR")
	o.Format = str("FORMAT")
	o.Background = str("BACKGROUND")
	o.ScenePath = str("SCENE")
	o.LogPath = str("LOG")
	o.Width = num("WIDTH")
	o.Height = num("HEIGHT")
	o.Framerate = num("FRAMERATE")
	o.Duration = float("DURATION", 64)
	o.OrbitRadius = float32p("ORBIT_RADIUS")
	o.OrbitHeight = float32p("ORBIT_HEIGHT")
	o.OrbitSpeed = float32p("ORBIT_SPEED")
	if v, ok := get("SHOW_FPS"); ok {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			err = fmt.Errorf("%sSHOW_FPS: %w", EnvPrefix, perr)
		} else {
			o.ShowFPS = &b
		}
	}
	if err != nil {
		return Overrides{}, err
	}
	return o, nil
}

// Validate checks the settings a run depends on.
func (c Config) Validate() error {
	switch c.Mode {
	case ModePreview, ModeRecord:
	default:
		return fmt.Errorf("%w: mode %q, want %q or %q", ErrInvalidConfig, c.Mode, ModePreview, ModeRecord)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Mode == ModeRecord {
		if c.Framerate <= 0 {
			return fmt.Errorf("%w: framerate %d", ErrInvalidConfig, c.Framerate)
		}
		if c.Duration <= 0 {
			return fmt.Errorf("%w: duration %v", ErrInvalidConfig, c.Duration)
		}
		if c.OutputDir == "" || c.Format == "" {
			return fmt.Errorf("%w: recording needs an output directory and format", ErrInvalidConfig)
		}
	}
	if c.OrbitRadius < 0 {
		return fmt.Errorf("%w: orbit radius %v", ErrInvalidConfig, c.OrbitRadius)
	}
	return nil
}
