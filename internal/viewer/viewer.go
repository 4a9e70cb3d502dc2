// Package viewer implements the interactive model viewer loop.
package viewer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/internal/config"
	"github.com/Faultbox/gltfview/internal/engine/camera"
	"github.com/Faultbox/gltfview/internal/engine/debug"
	"github.com/Faultbox/gltfview/internal/engine/input"
	"github.com/Faultbox/gltfview/internal/engine/renderer"
	"github.com/Faultbox/gltfview/internal/engine/window"
	"github.com/Faultbox/gltfview/internal/logger"
)

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	shots    *debug.ScreenshotCapture
	capture  bool // save the next frame before presenting it
	model    *Model
	watch    *watcher  // nil unless the model is watched
	reloadAt time.Time // pending reload after a file change
	log      *zap.Logger
}

// New loads the configured model and opens a window showing it.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config: cfg,
		log:    logger.Named("viewer"),
	}

	var err error
	v.model, err = LoadModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	v.window, err = window.New(window.Config{
		Title:      title(v.model),
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer must come after the window: it needs the GL context.
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		Wireframe:  cfg.Graphics.Wireframe,
		ShowBounds: cfg.Graphics.ShowBounds,
		Background: cfg.Graphics.Background,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.shots = debug.NewScreenshotCapture(cfg.Graphics.ScreenshotDir, "gltfview")

	v.camera = camera.NewOrbitCamera()
	v.camera.FOV = cfg.Camera.FOV
	v.camera.DragSensitivity = cfg.Camera.DragSensitivity
	v.camera.ZoomSensitivity = cfg.Camera.ZoomSensitivity

	if cfg.Model.Watch {
		if v.watch, err = newWatcher(); err != nil {
			v.log.Warn("model watching disabled", zap.Error(err))
		}
	}

	v.show(v.model)

	v.log.Info("viewer initialized")
	return v, nil
}

// show uploads a model and frames it.
func (v *Viewer) show(m *Model) {
	v.model = m
	v.renderer.Upload(m.Scene)
	v.fit()
	v.window.SetTitle(title(m))
	if v.watch != nil {
		v.watch.track(m.Files())
	}
}

func (v *Viewer) fit() {
	b := v.model.Scene.Bounds
	if !b.Valid() {
		v.log.Warn("model has no geometry to frame")
		return
	}
	v.camera.FitToBounds(b.Min, b.Max)
}

// reload reads the model from disk again, keeping the old one on failure.
func (v *Viewer) reload() {
	m, err := LoadModel(v.config.Model)
	if err != nil {
		v.log.Error("reload failed", zap.Error(err))
		return
	}
	v.show(m)
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")

	for v.running {
		if v.input.Update() {
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			v.handle(event)
		}
		v.pollWatch()

		v.renderer.Begin()
		v.renderer.Draw(
			v.camera.ViewMatrix(),
			v.camera.ProjectionMatrix(v.renderer.AspectRatio()),
			v.camera.Position(),
		)
		v.renderer.End()

		if v.capture {
			v.capture = false
			v.screenshot()
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// pollWatch reloads the model once its files have been quiet for reloadDelay.
func (v *Viewer) pollWatch() {
	if v.watch == nil {
		return
	}
	select {
	case <-v.watch.changed:
		v.reloadAt = time.Now().Add(reloadDelay)
	default:
	}
	if !v.reloadAt.IsZero() && time.Now().After(v.reloadAt) {
		v.reloadAt = time.Time{}
		v.log.Info("model changed on disk, reloading")
		v.reload()
	}
}

func (v *Viewer) handle(event input.Event) {
	switch event.Type {
	case input.EventWindowResize:
		width, height := v.window.DrawableSize()
		v.renderer.Resize(width, height)
	case input.EventMouseMove:
		if v.input.IsButtonDown(sdl.BUTTON_LEFT) {
			v.camera.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
		}
	case input.EventMouseWheel:
		v.camera.HandleZoom(event.Wheel)
	case input.EventKeyDown:
		switch event.Key {
		case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
			v.running = false
		case sdl.SCANCODE_F:
			v.fit()
		case sdl.SCANCODE_W:
			v.renderer.SetWireframe(!v.renderer.Wireframe())
		case sdl.SCANCODE_B:
			v.renderer.SetShowBounds(!v.renderer.ShowBounds())
		case sdl.SCANCODE_R:
			v.reload()
		case sdl.SCANCODE_P:
			v.capture = true
		}
	}
}

// screenshot saves the frame in the back buffer.
func (v *Viewer) screenshot() {
	pixels, width, height := v.renderer.ReadPixels()
	name, err := v.shots.CaptureFromPixels(pixels, width, height)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.watch != nil {
		v.watch.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func title(m *Model) string {
	return fmt.Sprintf("gltfview - %s (%d meshes, %d vertices)",
		filepath.Base(m.Path), len(m.Scene.Meshes), m.Scene.VertexCount())
}
