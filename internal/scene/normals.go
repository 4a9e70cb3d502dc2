package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfview/pkg/gltf"
)

// Triangles expands an index list into triangles according to mode.
// Non-triangle modes yield nothing.
func Triangles(mode gltf.Mode, indices []uint32) [][3]uint32 {
	var tris [][3]uint32
	switch mode {
	case gltf.ModeTriangles:
		for i := 0; i+2 < len(indices); i += 3 {
			tris = append(tris, [3]uint32{indices[i], indices[i+1], indices[i+2]})
		}
	case gltf.ModeTriangleStrip:
		for i := 0; i+2 < len(indices); i++ {
			// Keep winding consistent on odd triangles.
			if i%2 == 0 {
				tris = append(tris, [3]uint32{indices[i], indices[i+1], indices[i+2]})
			} else {
				tris = append(tris, [3]uint32{indices[i+1], indices[i], indices[i+2]})
			}
		}
	case gltf.ModeTriangleFan:
		for i := 1; i+1 < len(indices); i++ {
			tris = append(tris, [3]uint32{indices[0], indices[i], indices[i+1]})
		}
	}
	return tris
}

// GenerateNormals replaces vertex normals with area-weighted smooth normals
// computed from tris. Triangles referencing missing vertices are ignored.
// Vertices not used by any triangle, or whose faces cancel out, get an up
// vector.
func GenerateNormals(vertices []Vertex, tris [][3]uint32) {
	sums := make([]mgl32.Vec3, len(vertices))
	for _, t := range tris {
		if int(max(t[0], t[1], t[2])) >= len(vertices) {
			continue
		}
		a := mgl32.Vec3(vertices[t[0]].Position)
		b := mgl32.Vec3(vertices[t[1]].Position)
		c := mgl32.Vec3(vertices[t[2]].Position)
		// Unnormalized cross product weights by triangle area.
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range t {
			sums[idx] = sums[idx].Add(n)
		}
	}

	for i := range vertices {
		vertices[i].Normal = normalize(sums[i])
	}
}

func normalize(v mgl32.Vec3) [3]float32 {
	if v.Len() < 1e-6 {
		return [3]float32{0, 1, 0}
	}
	return v.Normalize()
}
