package gizmo

import (
	"fmt"
	"math"

	"github.com/kelseyhightower/envconfig"
)

// Config tunes handle geometry, snapping and limits. Sizes are in screen
// pixels, angles in degrees, durations in seconds.
type Config struct {
	HandleSize         float64 `envconfig:"HANDLE_SIZE" default:"8"`
	RotateHandleOffset float64 `envconfig:"ROTATE_HANDLE_OFFSET" default:"24"`
	EdgeTolerance      float64 `envconfig:"EDGE_TOLERANCE" default:"4"`
	PivotRadius        float64 `envconfig:"PIVOT_RADIUS" default:"6"`
	RotationSnap       float64 `envconfig:"ROTATION_SNAP" default:"15"`
	MinScale           float64 `envconfig:"MIN_SCALE" default:"0.01"`
	MaxSkew            float64 `envconfig:"MAX_SKEW" default:"80"`
	NudgeStep          float64 `envconfig:"NUDGE_STEP" default:"1"`
	NudgeStepLarge     float64 `envconfig:"NUDGE_STEP_LARGE" default:"10"`
	ZoomStep           float64 `envconfig:"ZOOM_STEP" default:"1.1"`
	MinZoom            float64 `envconfig:"MIN_ZOOM" default:"0.1"`
	MaxZoom            float64 `envconfig:"MAX_ZOOM" default:"16"`
	FocusDuration      float32 `envconfig:"FOCUS_DURATION" default:"0.25"`
	HoverFade          float32 `envconfig:"HOVER_FADE" default:"0.12"`
	Debug              bool    `envconfig:"DEBUG" default:"false"`
}

// DefaultConfig returns the configuration used when no environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		HandleSize:         8,
		RotateHandleOffset: 24,
		EdgeTolerance:      4,
		PivotRadius:        6,
		RotationSnap:       15,
		MinScale:           0.01,
		MaxSkew:            80,
		NudgeStep:          1,
		NudgeStepLarge:     10,
		ZoomStep:           1.1,
		MinZoom:            0.1,
		MaxZoom:            16,
		FocusDuration:      0.25,
		HoverFade:          0.12,
	}
}

// LoadConfig reads GIZMO_* environment variables on top of the defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("gizmo", &cfg); err != nil {
		return Config{}, fmt.Errorf("gizmo: load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects sizes and limits the handlers cannot work with.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"HandleSize", c.HandleSize},
		{"EdgeTolerance", c.EdgeTolerance},
		{"PivotRadius", c.PivotRadius},
		{"MinScale", c.MinScale},
		{"NudgeStep", c.NudgeStep},
		{"NudgeStepLarge", c.NudgeStepLarge},
		{"MinZoom", c.MinZoom},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("gizmo: config %s must be positive, got %v", p.name, p.v)
		}
	}
	if c.RotateHandleOffset < 0 || c.RotationSnap < 0 {
		return fmt.Errorf("gizmo: config RotateHandleOffset and RotationSnap must not be negative")
	}
	if !(c.MaxSkew > 0 && c.MaxSkew < 90) {
		return fmt.Errorf("gizmo: config MaxSkew must be in (0, 90), got %v", c.MaxSkew)
	}
	if !(c.ZoomStep > 1) {
		return fmt.Errorf("gizmo: config ZoomStep must be greater than 1, got %v", c.ZoomStep)
	}
	if c.MaxZoom < c.MinZoom {
		return fmt.Errorf("gizmo: config MaxZoom %v below MinZoom %v", c.MaxZoom, c.MinZoom)
	}
	if c.FocusDuration < 0 || c.HoverFade < 0 {
		return fmt.Errorf("gizmo: config durations must not be negative")
	}
	return nil
}

// rotationSnapRad returns RotationSnap in radians.
func (c Config) rotationSnapRad() float64 {
	return c.RotationSnap * math.Pi / 180
}

// maxSkewRad returns MaxSkew in radians.
func (c Config) maxSkewRad() float64 {
	return c.MaxSkew * math.Pi / 180
}
