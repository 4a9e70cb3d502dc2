package scene

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/internal/logger"
	"github.com/Faultbox/gltfview/pkg/gltf"
)

// Primitive rejection reasons.
var (
	ErrNoPosition     = errors.New("primitive has no POSITION attribute")
	ErrAttributeShape = errors.New("attribute has unexpected type")
	ErrAttributeCount = errors.New("attribute count differs from POSITION")
	ErrIndexRange     = errors.New("index exceeds vertex count")
)

// Source is the part of a loaded model that Build reads from.
// *gltf.Loader satisfies it.
type Source interface {
	Meshes() []gltf.Mesh
	Accessor(i gltf.Index) (gltf.Accessor, bool)
	ReadFloats(a gltf.Accessor) ([]float32, error)
	ReadIndices(a gltf.Accessor) ([]uint32, error)
}

// Build materializes every mesh of src. A primitive that cannot be built is
// skipped; the returned error combines all such failures while the scene
// still holds everything that succeeded.
func Build(src Source, opts BuildOptions) (*Scene, error) {
	s := &Scene{}
	var errs error

	for mi, m := range src.Meshes() {
		mesh := Mesh{Index: gltf.Index(mi), Name: m.Name}
		for pi, p := range m.Primitives {
			prim, err := buildPrimitive(src, p, opts)
			if err != nil {
				err = fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
				logger.Warn("primitive skipped", zap.Error(err))
				errs = multierr.Append(errs, err)
				continue
			}
			mesh.Bounds.Union(prim.Bounds)
			mesh.Primitives = append(mesh.Primitives, prim)
		}
		s.Bounds.Union(mesh.Bounds)
		s.Meshes = append(s.Meshes, mesh)
	}

	logger.Debug("scene built",
		zap.Int("meshes", len(s.Meshes)),
		zap.Int("primitives", s.PrimitiveCount()),
		zap.Int("vertices", s.VertexCount()))

	return s, errs
}

func buildPrimitive(src Source, p gltf.Primitive, opts BuildOptions) (Primitive, error) {
	prim := Primitive{Mode: p.Mode, Material: p.Material}

	positions, err := readAttribute(src, p, gltf.AttrPosition, 3)
	if err != nil {
		return prim, err
	}
	if positions == nil {
		return prim, ErrNoPosition
	}
	count := len(positions) / 3

	normals, err := readAttribute(src, p, gltf.AttrNormal, 3)
	if err != nil {
		return prim, err
	}
	texCoords, err := readAttribute(src, p, gltf.AttrTexCoord0, 2)
	if err != nil {
		return prim, err
	}
	colors, err := readAttribute(src, p, gltf.AttrColor0, 3, 4)
	if err != nil {
		return prim, err
	}

	prim.Vertices = make([]Vertex, count)
	for i := range prim.Vertices {
		v := &prim.Vertices[i]
		copy(v.Position[:], positions[i*3:])
		v.Color = [4]float32{1, 1, 1, 1}
		prim.Bounds.Extend(v.Position)
	}
	if err := fill(prim.Vertices, normals, gltf.AttrNormal, 3, func(v *Vertex, c []float32) { copy(v.Normal[:], c) }); err != nil {
		return prim, err
	}
	if err := fill(prim.Vertices, texCoords, gltf.AttrTexCoord0, 2, func(v *Vertex, c []float32) { copy(v.TexCoord[:], c) }); err != nil {
		return prim, err
	}
	if colors != nil {
		width := 4
		if len(colors) == count*3 {
			width = 3
		}
		if err := fill(prim.Vertices, colors, gltf.AttrColor0, width, func(v *Vertex, c []float32) { copy(v.Color[:], c) }); err != nil {
			return prim, err
		}
	}

	if p.Indices.Valid() {
		a, ok := src.Accessor(p.Indices)
		if !ok {
			return prim, fmt.Errorf("indices: %w: %d", gltf.ErrUnknownAccessor, p.Indices)
		}
		indices, err := src.ReadIndices(a)
		if err != nil {
			return prim, fmt.Errorf("indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= count {
				return prim, fmt.Errorf("indices: %w: %d >= %d", ErrIndexRange, idx, count)
			}
		}
		prim.Indices = indices
		prim.Indexed = true
	} else {
		prim.Indices = make([]uint32, count)
		for i := range prim.Indices {
			prim.Indices[i] = uint32(i)
		}
	}

	if normals == nil && opts.GenerateNormals {
		GenerateNormals(prim.Vertices, Triangles(prim.Mode, prim.Indices))
	}

	return prim, nil
}

// readAttribute decodes attr as floats. It returns nil when the primitive
// does not reference attr.
func readAttribute(src Source, p gltf.Primitive, attr gltf.Attribute, widths ...int) ([]float32, error) {
	idx, ok := p.Attribute(attr)
	if !ok {
		return nil, nil
	}
	a, ok := src.Accessor(idx)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %d", attr, gltf.ErrUnknownAccessor, idx)
	}

	n := a.Type.Components()
	accepted := false
	for _, w := range widths {
		if !a.Type.IsMatrix() && n == w {
			accepted = true
		}
	}
	if !accepted {
		return nil, fmt.Errorf("%s: %w: %s", attr, ErrAttributeShape, a.Type)
	}

	data, err := src.ReadFloats(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", attr, err)
	}
	if data == nil {
		data = []float32{}
	}
	return data, nil
}

func fill(vertices []Vertex, data []float32, attr gltf.Attribute, width int, set func(*Vertex, []float32)) error {
	if data == nil {
		return nil
	}
	if len(data) != len(vertices)*width {
		return fmt.Errorf("%s: %w: %d != %d", attr, ErrAttributeCount, len(data)/width, len(vertices))
	}
	for i := range vertices {
		set(&vertices[i], data[i*width:(i+1)*width])
	}
	return nil
}
