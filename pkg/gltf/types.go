package gltf

import (
	"maps"
	"slices"
)

// Index is a key into one of the loader's entity tables. Keys are assigned
// in manifest array order starting at 0.
type Index int

// NoIndex marks an absent or unusable reference.
const NoIndex Index = -1

// Valid reports whether the index refers to a table slot.
func (i Index) Valid() bool {
	return i >= 0
}

// Asset holds the manifest's "asset" metadata.
type Asset struct {
	Version    string
	MinVersion string
	Generator  string
}

// Buffer is an external binary resource. The bytes themselves live in the
// PayloadStore under the same index.
type Buffer struct {
	Name       string
	URI        string
	ByteLength int
}

// BufferView is a contiguous byte window into one buffer.
type BufferView struct {
	Name       string
	Buffer     Index
	ByteOffset int
	ByteLength int
	ByteStride int // 0 means tightly packed
	Target     Target
}

// Accessor is a typed, shaped view into one buffer view.
type Accessor struct {
	Name          string
	BufferView    Index // NoIndex when the manifest omits it
	ByteOffset    int   // Relative to the buffer view start
	ComponentType ComponentType
	Normalized    bool
	Count         int
	Type          AccessorType
	Max           []float32
	Min           []float32
}

// ElementSize returns the byte size of one element, including the column
// padding matrices with 1- and 2-byte components carry.
func (a Accessor) ElementSize() int {
	return a.Type.Columns() * a.columnStride()
}

// columnStride is the byte distance between matrix columns. Matrix columns
// start on 4-byte boundaries.
func (a Accessor) columnStride() int {
	n := a.Type.Rows() * a.ComponentType.Size()
	if a.Type.IsMatrix() && n%4 != 0 {
		n += 4 - n%4
	}
	return n
}

func (a Accessor) clone() Accessor {
	a.Max = slices.Clone(a.Max)
	a.Min = slices.Clone(a.Min)
	return a
}

// Primitive is one drawable unit of a mesh.
type Primitive struct {
	Attributes map[Attribute]Index
	Indices    Index // NoIndex for non-indexed geometry
	Material   Index
	Mode       Mode
}

// Attribute returns the accessor index bound to the given role.
func (p Primitive) Attribute(attr Attribute) (Index, bool) {
	idx, ok := p.Attributes[attr]
	return idx, ok
}

// Mesh is an ordered list of primitives.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

func (m Mesh) clone() Mesh {
	prims := make([]Primitive, len(m.Primitives))
	for i, p := range m.Primitives {
		p.Attributes = maps.Clone(p.Attributes)
		prims[i] = p
	}
	m.Primitives = prims
	return m
}
