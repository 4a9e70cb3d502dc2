// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BoxLineVertexCount is the number of vertices BoxLines returns (12 edges x 2).
const BoxLineVertexCount = 24

// boxEdges indexes the corners produced by corners.
var boxEdges = [12][2]int{
	// Bottom face
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	// Top face
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	// Vertical edges
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// BoxLines returns line-list vertices, [x, y, z] per vertex, outlining the
// box from lo to hi grown by padding on every side.
func BoxLines(lo, hi mgl32.Vec3, padding float32) []float32 {
	pad := mgl32.Vec3{padding, padding, padding}
	c := corners(lo.Sub(pad), hi.Add(pad))

	out := make([]float32, 0, BoxLineVertexCount*3)
	for _, e := range boxEdges {
		out = append(out, c[e[0]][:]...)
		out = append(out, c[e[1]][:]...)
	}
	return out
}

// corners enumerates the box corners; bit 0 picks X, bit 1 Z, bit 2 Y.
func corners(lo, hi mgl32.Vec3) [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := range c {
		p := lo
		if i&1 != 0 {
			p[0] = hi[0]
		}
		if i&2 != 0 {
			p[2] = hi[2]
		}
		if i&4 != 0 {
			p[1] = hi[1]
		}
		c[i] = p
	}
	return c
}
