package scene

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/gltfview/pkg/gltf"
)

// fakeSource serves decoded accessor data straight from maps.
type fakeSource struct {
	meshes    []gltf.Mesh
	accessors []gltf.Accessor
	floats    map[gltf.Index][]float32
	indices   map[gltf.Index][]uint32
}

func (f *fakeSource) Meshes() []gltf.Mesh { return f.meshes }

func (f *fakeSource) Accessor(i gltf.Index) (gltf.Accessor, bool) {
	if i < 0 || int(i) >= len(f.accessors) {
		return gltf.Accessor{}, false
	}
	return f.accessors[i], true
}

func (f *fakeSource) ReadFloats(a gltf.Accessor) ([]float32, error) {
	data, ok := f.floats[a.BufferView]
	if !ok {
		return nil, gltf.ErrPayloadMissing
	}
	return data, nil
}

func (f *fakeSource) ReadIndices(a gltf.Accessor) ([]uint32, error) {
	data, ok := f.indices[a.BufferView]
	if !ok {
		return nil, gltf.ErrPayloadMissing
	}
	return data, nil
}

// Accessors use their BufferView field as the key into the data maps.
func accessor(key gltf.Index, typ gltf.AccessorType, count int) gltf.Accessor {
	return gltf.Accessor{BufferView: key, ComponentType: gltf.ComponentFloat, Type: typ, Count: count}
}

func primitive(attrs map[gltf.Attribute]gltf.Index, indices gltf.Index) gltf.Primitive {
	return gltf.Primitive{Attributes: attrs, Indices: indices, Material: gltf.NoIndex, Mode: gltf.ModeTriangles}
}

func quadSource() *fakeSource {
	return &fakeSource{
		accessors: []gltf.Accessor{
			accessor(0, gltf.TypeVec3, 4),
			accessor(1, gltf.TypeScalar, 6),
			accessor(2, gltf.TypeVec2, 4),
		},
		floats: map[gltf.Index][]float32{
			0: {0, 0, 0, 1, 0, 0, 1, 0, 1, 0, 0, 1},
			2: {0, 0, 1, 0, 1, 1, 0, 1},
		},
		indices: map[gltf.Index][]uint32{
			1: {0, 2, 1, 0, 3, 2},
		},
		meshes: []gltf.Mesh{{
			Name: "quad",
			Primitives: []gltf.Primitive{primitive(map[gltf.Attribute]gltf.Index{
				gltf.AttrPosition:  0,
				gltf.AttrTexCoord0: 2,
			}, 1)},
		}},
	}
}

func TestBuild_IndexedQuad(t *testing.T) {
	s, err := Build(quadSource(), BuildOptions{GenerateNormals: true})
	require.NoError(t, err)
	require.Len(t, s.Meshes, 1)

	m := s.Meshes[0]
	assert.Equal(t, "quad", m.Name)
	require.Len(t, m.Primitives, 1)

	p := m.Primitives[0]
	assert.True(t, p.Indexed)
	assert.Equal(t, []uint32{0, 2, 1, 0, 3, 2}, p.Indices)
	require.Len(t, p.Vertices, 4)
	assert.Equal(t, [3]float32{1, 0, 1}, p.Vertices[2].Position)
	assert.Equal(t, [2]float32{1, 1}, p.Vertices[2].TexCoord)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, p.Vertices[2].Color)

	// The quad lies in the XZ plane wound to face +Y.
	for _, v := range p.Vertices {
		assert.InDeltaSlice(t, []float32{0, 1, 0}, v.Normal[:], 1e-6)
	}

	assert.True(t, s.Bounds.Valid())
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, s.Bounds.Min)
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, s.Bounds.Max)
	assert.Equal(t, 1, s.PrimitiveCount())
	assert.Equal(t, 4, s.VertexCount())
}

func TestBuild_SequentialIndices(t *testing.T) {
	src := quadSource()
	src.meshes[0].Primitives[0].Indices = gltf.NoIndex

	s, err := Build(src, BuildOptions{})
	require.NoError(t, err)

	p := s.Meshes[0].Primitives[0]
	assert.False(t, p.Indexed)
	assert.Equal(t, []uint32{0, 1, 2, 3}, p.Indices)
	// Normals are left untouched without GenerateNormals.
	assert.Equal(t, [3]float32{}, p.Vertices[0].Normal)
}

func TestBuild_ExplicitAttributes(t *testing.T) {
	src := &fakeSource{
		accessors: []gltf.Accessor{
			accessor(0, gltf.TypeVec3, 1),
			accessor(1, gltf.TypeVec3, 1),
			accessor(2, gltf.TypeVec3, 1),
		},
		floats: map[gltf.Index][]float32{
			0: {1, 2, 3},
			1: {0, 0, 1},
			2: {0.5, 0.25, 1},
		},
		meshes: []gltf.Mesh{{Primitives: []gltf.Primitive{primitive(map[gltf.Attribute]gltf.Index{
			gltf.AttrPosition: 0,
			gltf.AttrNormal:   1,
			gltf.AttrColor0:   2,
		}, gltf.NoIndex)}}},
	}

	s, err := Build(src, BuildOptions{GenerateNormals: true})
	require.NoError(t, err)

	v := s.Meshes[0].Primitives[0].Vertices[0]
	assert.Equal(t, [3]float32{0, 0, 1}, v.Normal)
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 1}, v.Color)
}

func TestBuild_SkipsBadPrimitives(t *testing.T) {
	src := quadSource()
	good := src.meshes[0].Primitives[0]
	src.accessors = append(src.accessors,
		accessor(3, gltf.TypeScalar, 6), // indices past the vertex count
		accessor(4, gltf.TypeVec2, 4),   // POSITION of the wrong type
		accessor(5, gltf.TypeVec3, 3),   // NORMAL with too few elements
	)
	src.indices[3] = []uint32{0, 1, 9}
	src.floats[4] = make([]float32, 8)
	src.floats[5] = make([]float32, 9)

	tests := []struct {
		name    string
		prim    gltf.Primitive
		wantErr error
	}{
		{"no position", primitive(map[gltf.Attribute]gltf.Index{gltf.AttrTexCoord0: 2}, gltf.NoIndex), ErrNoPosition},
		{"index range", primitive(map[gltf.Attribute]gltf.Index{gltf.AttrPosition: 0}, 3), ErrIndexRange},
		{"position shape", primitive(map[gltf.Attribute]gltf.Index{gltf.AttrPosition: 4}, gltf.NoIndex), ErrAttributeShape},
		{"normal count", primitive(map[gltf.Attribute]gltf.Index{gltf.AttrPosition: 0, gltf.AttrNormal: 5}, gltf.NoIndex), ErrAttributeCount},
		{"unknown accessor", primitive(map[gltf.Attribute]gltf.Index{gltf.AttrPosition: 42}, gltf.NoIndex), gltf.ErrUnknownAccessor},
		{"unknown index accessor", primitive(map[gltf.Attribute]gltf.Index{gltf.AttrPosition: 0}, 42), gltf.ErrUnknownAccessor},
		{"scalar position", primitive(map[gltf.Attribute]gltf.Index{gltf.AttrPosition: 1}, gltf.NoIndex), ErrAttributeShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src.meshes = []gltf.Mesh{{Primitives: []gltf.Primitive{good, tt.prim}}}

			s, err := Build(src, BuildOptions{})
			assert.ErrorIs(t, err, tt.wantErr)
			require.Len(t, s.Meshes, 1)
			assert.Len(t, s.Meshes[0].Primitives, 1, "good primitive is kept")
		})
	}
}

func TestBuild_ReadErrorPropagates(t *testing.T) {
	src := quadSource()
	src.accessors = append(src.accessors, accessor(7, gltf.TypeVec3, 1))
	src.meshes[0].Primitives = append(src.meshes[0].Primitives,
		primitive(map[gltf.Attribute]gltf.Index{gltf.AttrPosition: 3}, gltf.NoIndex))

	s, err := Build(src, BuildOptions{})
	assert.ErrorIs(t, err, gltf.ErrPayloadMissing)
	assert.Equal(t, 1, s.PrimitiveCount())
}

func TestTriangles(t *testing.T) {
	idx := []uint32{0, 1, 2, 3, 4}

	assert.Equal(t, [][3]uint32{{0, 1, 2}}, Triangles(gltf.ModeTriangles, idx))
	assert.Equal(t, [][3]uint32{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}, Triangles(gltf.ModeTriangleStrip, idx))
	assert.Equal(t, [][3]uint32{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}, Triangles(gltf.ModeTriangleFan, idx))
	assert.Empty(t, Triangles(gltf.ModeLines, idx))
	assert.Empty(t, Triangles(gltf.ModeTriangles, idx[:2]))
}

func TestGenerateNormals_AreaWeighted(t *testing.T) {
	// Two triangles share vertex 0: a large one facing +Z, a small one
	// facing +X. The shared normal leans toward the larger face.
	vertices := []Vertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{4, 0, 0}},
		{Position: [3]float32{0, 4, 0}},
		{Position: [3]float32{0, 1, 0}},
		{Position: [3]float32{0, 0, 1}},
		{Position: [3]float32{9, 9, 9}}, // unused
	}
	GenerateNormals(vertices, [][3]uint32{{0, 1, 2}, {0, 3, 4}, {0, 1, 99}})

	n := mgl32.Vec3(vertices[0].Normal)
	assert.InDelta(t, 1, n.Len(), 1e-5)
	assert.Greater(t, n.Z(), n.X())
	assert.Greater(t, n.X(), float32(0))

	assert.Equal(t, [3]float32{0, 0, 1}, vertices[1].Normal)
	assert.Equal(t, [3]float32{1, 0, 0}, vertices[3].Normal)
	assert.Equal(t, [3]float32{0, 1, 0}, vertices[5].Normal)
}

func TestBounds(t *testing.T) {
	var b Bounds
	assert.False(t, b.Valid())

	b.Extend(mgl32.Vec3{1, -2, 3})
	b.Extend(mgl32.Vec3{-1, 2, 5})
	assert.Equal(t, mgl32.Vec3{-1, -2, 3}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 5}, b.Max)
	assert.Equal(t, mgl32.Vec3{0, 0, 4}, b.Center())
	assert.Equal(t, mgl32.Vec3{2, 4, 2}, b.Size())

	var u Bounds
	u.Union(Bounds{})
	assert.False(t, u.Valid())
	u.Union(b)
	assert.Equal(t, b, u)
}

func TestBuild_FromLoader(t *testing.T) {
	dir := t.TempDir()

	var payload []byte
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(f))
	}
	for _, i := range []uint16{0, 1, 2} {
		payload = binary.LittleEndian.AppendUint16(payload, i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), payload, 0o644))

	manifest := `{
		"asset": {"version": "2.0"},
		"buffers": [{"uri": "tri.bin", "byteLength": 42}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36, "target": 34962},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6, "target": 34963}
		],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}]
	}`
	path := filepath.Join(dir, "tri.gltf")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	l, err := gltf.Open(path, "")
	require.NoError(t, err)

	s, err := Build(l, BuildOptions{GenerateNormals: true})
	require.NoError(t, err)

	p := s.Meshes[0].Primitives[0]
	assert.Equal(t, []uint32{0, 1, 2}, p.Indices)
	assert.Equal(t, [3]float32{0, 0, 1}, p.Vertices[0].Normal)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, s.Bounds.Max)
}
