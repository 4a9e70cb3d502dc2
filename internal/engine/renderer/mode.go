package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/gltfview/pkg/gltf"
)

// glMode maps a primitive topology to its draw enum.
func glMode(m gltf.Mode) (uint32, bool) {
	switch m {
	case gltf.ModePoints:
		return gl.POINTS, true
	case gltf.ModeLines:
		return gl.LINES, true
	case gltf.ModeLineLoop:
		return gl.LINE_LOOP, true
	case gltf.ModeLineStrip:
		return gl.LINE_STRIP, true
	case gltf.ModeTriangles:
		return gl.TRIANGLES, true
	case gltf.ModeTriangleStrip:
		return gl.TRIANGLE_STRIP, true
	case gltf.ModeTriangleFan:
		return gl.TRIANGLE_FAN, true
	default:
		return 0, false
	}
}
