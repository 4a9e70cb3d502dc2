// Package scene turns loaded glTF meshes into renderer-ready vertex and
// index arrays.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfview/pkg/gltf"
)

// Vertex is one interleaved vertex record as uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
	Color    [4]float32
}

// Primitive holds the materialized data of one glTF primitive.
type Primitive struct {
	Vertices []Vertex
	Indices  []uint32
	Indexed  bool // false when Indices were generated sequentially
	Mode     gltf.Mode
	Material gltf.Index
	Bounds   Bounds
}

// Mesh is a materialized glTF mesh.
type Mesh struct {
	Index      gltf.Index
	Name       string
	Primitives []Primitive
	Bounds     Bounds
}

// Scene holds every materialized mesh of a model.
type Scene struct {
	Meshes []Mesh
	Bounds Bounds
}

// VertexCount returns the total number of vertices in the scene.
func (s *Scene) VertexCount() int {
	n := 0
	for _, m := range s.Meshes {
		for _, p := range m.Primitives {
			n += len(p.Vertices)
		}
	}
	return n
}

// PrimitiveCount returns the total number of primitives in the scene.
func (s *Scene) PrimitiveCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Primitives)
	}
	return n
}

// BuildOptions controls materialization.
type BuildOptions struct {
	// GenerateNormals computes smooth normals for triangle primitives that
	// have no NORMAL attribute.
	GenerateNormals bool
}

// Bounds is an axis-aligned bounding box. The zero value is empty.
type Bounds struct {
	Min   mgl32.Vec3
	Max   mgl32.Vec3
	valid bool
}

// Valid reports whether at least one point was added.
func (b Bounds) Valid() bool {
	return b.valid
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p mgl32.Vec3) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Union grows the box to contain o.
func (b *Bounds) Union(o Bounds) {
	if !o.valid {
		return
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
}

// Center returns the middle of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Radius returns half the diagonal length.
func (b Bounds) Radius() float32 {
	return b.Size().Len() / 2
}
