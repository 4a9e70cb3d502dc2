package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfview/internal/engine/debug"
	"github.com/Faultbox/gltfview/internal/engine/shader"
)

// boundsColor is used for the bounding box outline.
var boundsColor = mgl32.Vec3{1, 0.8, 0.2}

// overlay draws the scene bounding box as lines.
type overlay struct {
	program *shader.Program
	vao     uint32
	vbo     uint32
	count   int32
}

func newOverlay() (*overlay, error) {
	program, err := shader.New(lineVertexShader, lineFragmentShader)
	if err != nil {
		return nil, err
	}

	o := &overlay{program: program}
	gl.GenVertexArrays(1, &o.vao)
	gl.BindVertexArray(o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, debug.BoxLineVertexCount*3*4, nil, gl.DYNAMIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)

	return o, nil
}

// setBox replaces the outlined box.
func (o *overlay) setBox(lo, hi mgl32.Vec3) {
	// Pad slightly so the outline does not z-fight with flat faces.
	padding := hi.Sub(lo).Len() * 0.005
	lines := debug.BoxLines(lo, hi, padding)

	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(lines)*4, unsafe.Pointer(&lines[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	o.count = debug.BoxLineVertexCount
}

func (o *overlay) draw(viewProj mgl32.Mat4) {
	if o.count == 0 {
		return
	}
	o.program.Use()
	o.program.SetMat4("uViewProj", viewProj)
	o.program.SetVec3("uColor", boundsColor)
	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.LINES, 0, o.count)
	gl.BindVertexArray(0)
}

func (o *overlay) close() {
	gl.DeleteVertexArrays(1, &o.vao)
	gl.DeleteBuffers(1, &o.vbo)
	o.program.Delete()
}
