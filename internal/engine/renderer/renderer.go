// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/internal/engine/shader"
	"github.com/Faultbox/gltfview/internal/logger"
	"github.com/Faultbox/gltfview/internal/scene"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Wireframe  bool
	ShowBounds bool
	Background [3]float32
}

// gpuPrimitive is one uploaded primitive.
type gpuPrimitive struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	mode       uint32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config     Config
	program    *shader.Program
	overlay    *overlay
	primitives []gpuPrimitive
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	bg := cfg.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.New(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	logger.Debug("shader program created", zap.Uint32("program", r.program.ID))

	r.overlay, err = newOverlay()
	if err != nil {
		r.program.Delete()
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}

	r.SetWireframe(cfg.Wireframe)

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.Clear()
	if r.overlay != nil {
		r.overlay.close()
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// AspectRatio returns the viewport width over height.
func (r *Renderer) AspectRatio() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// SetWireframe switches between filled and line polygon rendering.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// SetShowBounds toggles the bounding box outline.
func (r *Renderer) SetShowBounds(on bool) {
	r.config.ShowBounds = on
}

// ShowBounds reports whether the bounding box outline is drawn.
func (r *Renderer) ShowBounds() bool {
	return r.config.ShowBounds
}

// Wireframe reports whether wireframe rendering is on.
func (r *Renderer) Wireframe() bool {
	return r.config.Wireframe
}

// Upload replaces the GPU copy of the scene. Primitives whose mode has no
// GL equivalent, or that have no indices, are skipped.
func (r *Renderer) Upload(s *scene.Scene) {
	r.Clear()

	for mi, m := range s.Meshes {
		for pi, p := range m.Primitives {
			mode, ok := glMode(p.Mode)
			if !ok || len(p.Vertices) == 0 || len(p.Indices) == 0 {
				logger.Debug("primitive not uploaded",
					zap.Int("mesh", mi),
					zap.Int("primitive", pi),
					zap.Stringer("mode", p.Mode),
					zap.Int("vertices", len(p.Vertices)))
				continue
			}
			gp := upload(p.Vertices, p.Indices)
			gp.mode = mode
			r.primitives = append(r.primitives, gp)
		}
	}
	if s.Bounds.Valid() {
		r.overlay.setBox(s.Bounds.Min, s.Bounds.Max)
	} else {
		r.overlay.count = 0
	}

	logger.Info("scene uploaded", zap.Int("primitives", len(r.primitives)))
}

func upload(vertices []scene.Vertex, indices []uint32) gpuPrimitive {
	var gp gpuPrimitive
	var v scene.Vertex
	stride := int32(unsafe.Sizeof(v))

	gl.GenVertexArrays(1, &gp.vao)
	gl.BindVertexArray(gp.vao)

	gl.GenBuffers(1, &gp.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gp.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, unsafe.Offsetof(v.Position))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(v.Normal))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, unsafe.Offsetof(v.TexCoord))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, stride, unsafe.Offsetof(v.Color))
	gl.EnableVertexAttribArray(3)

	gl.GenBuffers(1, &gp.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gp.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
	gp.indexCount = int32(len(indices))

	gl.BindVertexArray(0)
	return gp
}

// Clear releases every uploaded primitive.
func (r *Renderer) Clear() {
	for i := range r.primitives {
		gp := &r.primitives[i]
		gl.DeleteVertexArrays(1, &gp.vao)
		gl.DeleteBuffers(1, &gp.vbo)
		gl.DeleteBuffers(1, &gp.ebo)
	}
	r.primitives = r.primitives[:0]
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw renders every uploaded primitive lit from the camera position.
func (r *Renderer) Draw(view, proj mgl32.Mat4, eye mgl32.Vec3) {
	viewProj := proj.Mul4(view)

	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)
	r.program.SetVec3("uEye", eye)
	r.program.SetBool("uUnlit", r.config.Wireframe)

	for _, gp := range r.primitives {
		gl.BindVertexArray(gp.vao)
		gl.DrawElements(gp.mode, gp.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)

	if r.config.ShowBounds {
		// Outline stays solid regardless of wireframe mode.
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		r.overlay.draw(viewProj)
		r.SetWireframe(r.config.Wireframe)
	}
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// End finishes the current frame.
func (r *Renderer) End() {
	// Nothing to do for now - batched draws would be flushed here
}
