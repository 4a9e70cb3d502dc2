package viewer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/internal/config"
	"github.com/Faultbox/gltfview/internal/logger"
	"github.com/Faultbox/gltfview/internal/scene"
	"github.com/Faultbox/gltfview/pkg/gltf"
)

// ErrNoModel is returned when no model path was configured.
var ErrNoModel = errors.New("no model given")

// Model is a loaded manifest together with its materialized scene.
type Model struct {
	Path   string
	Loader *gltf.Loader
	Scene  *scene.Scene
}

// LoadModel opens the configured manifest and builds its scene. Defects in
// the manifest and rejected primitives are logged, not returned: only a
// manifest that could not be read at all is an error.
func LoadModel(cfg config.ModelConfig) (*Model, error) {
	if cfg.Path == "" {
		return nil, ErrNoModel
	}

	log := logger.Named("model")

	l, err := gltf.Open(cfg.Path, cfg.BaseDir, gltf.WithLogger(logger.Named("gltf")))
	if !l.Readable() {
		return nil, fmt.Errorf("loading %s: %w", cfg.Path, err)
	}
	if err != nil {
		log.Warn("manifest loaded with defects",
			zap.String("path", cfg.Path),
			zap.Int("defects", len(l.Defects())))
	}

	s, err := scene.Build(l, scene.BuildOptions{GenerateNormals: cfg.GenerateNormals})
	if err != nil {
		log.Warn("some primitives were skipped", zap.Error(err))
	}

	log.Info("model loaded",
		zap.String("path", cfg.Path),
		zap.Int("meshes", len(s.Meshes)),
		zap.Int("primitives", s.PrimitiveCount()),
		zap.Int("vertices", s.VertexCount()),
		zap.Int("payload_bytes", l.Payloads().TotalBytes()))

	return &Model{Path: cfg.Path, Loader: l, Scene: s}, nil
}

// Files returns the manifest and every external buffer file of the model.
func (m *Model) Files() []string {
	files := []string{m.Path}
	for i := range m.Loader.Buffers() {
		if path, ok := m.Loader.BufferPath(gltf.Index(i)); ok {
			files = append(files, path)
		}
	}
	return files
}
