// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ModelConfig selects the model to open.
type ModelConfig struct {
	Path            string `yaml:"path"`     // glTF manifest
	BaseDir         string `yaml:"base_dir"` // buffer directory, defaults to the manifest's
	GenerateNormals bool   `yaml:"generate_normals"`
	Watch           bool   `yaml:"watch"` // reload when the model files change
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	Wireframe  bool       `yaml:"wireframe"`
	ShowBounds bool       `yaml:"show_bounds"`
	Background [3]float32 `yaml:"background,flow"`

	ScreenshotDir string `yaml:"screenshot_dir"`
}

// CameraConfig holds orbit camera settings.
type CameraConfig struct {
	FOV             float32 `yaml:"fov"` // degrees
	DragSensitivity float32 `yaml:"drag_sensitivity"`
	ZoomSensitivity float32 `yaml:"zoom_sensitivity"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			GenerateNormals: true,
		},
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Wireframe:  false,
			ShowBounds: false,
			Background: [3]float32{0.15, 0.15, 0.18},

			ScreenshotDir: "screenshots",
		},
		Camera: CameraConfig{
			FOV:             45,
			DragSensitivity: 0.01,
			ZoomSensitivity: 0.1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would make the viewer unusable.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: fov %g", ErrInvalid, c.Camera.FOV)
	}
	for _, v := range c.Graphics.Background {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: background %v", ErrInvalid, c.Graphics.Background)
		}
	}
	return nil
}
