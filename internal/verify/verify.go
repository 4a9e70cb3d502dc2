// Package verify cross-checks decoded model data against an independent
// glTF reader.
package verify

import (
	"fmt"
	"os"

	qgltf "github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfview/internal/logger"
	"github.com/Faultbox/gltfview/pkg/gltf"
)

// Tolerance is the largest difference accepted between two decoded values.
const Tolerance = 1e-5

var modes = map[qgltf.PrimitiveMode]gltf.Mode{
	qgltf.PrimitivePoints:        gltf.ModePoints,
	qgltf.PrimitiveLines:         gltf.ModeLines,
	qgltf.PrimitiveLineLoop:      gltf.ModeLineLoop,
	qgltf.PrimitiveLineStrip:     gltf.ModeLineStrip,
	qgltf.PrimitiveTriangles:     gltf.ModeTriangles,
	qgltf.PrimitiveTriangleStrip: gltf.ModeTriangleStrip,
	qgltf.PrimitiveTriangleFan:   gltf.ModeTriangleFan,
}

// Mismatch describes one disagreement between the two readers.
type Mismatch struct {
	Mesh      int
	Primitive int
	Attribute string
	Detail    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("mesh %d primitive %d %s: %s", m.Mesh, m.Primitive, m.Attribute, m.Detail)
}

// Report summarizes a comparison.
type Report struct {
	Primitives int // primitives visited
	Checked    int // attribute and index arrays compared
	Mismatches []Mismatch
}

// OK reports whether no mismatch was found.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0
}

func (r *Report) add(mesh, prim int, attr, format string, args ...any) {
	r.Mismatches = append(r.Mismatches, Mismatch{
		Mesh:      mesh,
		Primitive: prim,
		Attribute: attr,
		Detail:    fmt.Sprintf(format, args...),
	})
}

// File opens path with the reference reader and compares it against l.
// Buffers are read from l.Dir(), the same directory the loader used.
func File(l *gltf.Loader, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reference open: %w", err)
	}
	defer f.Close()

	doc := new(qgltf.Document)
	if err := qgltf.NewDecoderFS(f, os.DirFS(l.Dir())).Decode(doc); err != nil {
		return nil, fmt.Errorf("reference decode: %w", err)
	}
	return Compare(l, doc), nil
}

// Compare checks POSITION, NORMAL, TEXCOORD_0 and indices of every
// primitive both readers know about.
func Compare(l *gltf.Loader, doc *qgltf.Document) *Report {
	r := &Report{}
	meshes := l.Meshes()
	if len(meshes) != len(doc.Meshes) {
		r.add(-1, -1, "meshes", "count %d != reference %d", len(meshes), len(doc.Meshes))
	}

	for mi := 0; mi < min(len(meshes), len(doc.Meshes)); mi++ {
		ours, theirs := meshes[mi].Primitives, doc.Meshes[mi].Primitives
		if len(ours) != len(theirs) {
			r.add(mi, -1, "primitives", "count %d != reference %d", len(ours), len(theirs))
		}
		for pi := 0; pi < min(len(ours), len(theirs)); pi++ {
			r.Primitives++
			comparePrimitive(r, l, doc, mi, pi, ours[pi], theirs[pi])
		}
	}

	logger.Debug("verify finished",
		zap.Int("primitives", r.Primitives),
		zap.Int("checked", r.Checked),
		zap.Int("mismatches", len(r.Mismatches)))
	return r
}

func comparePrimitive(r *Report, l *gltf.Loader, doc *qgltf.Document, mi, pi int, ours gltf.Primitive, theirs *qgltf.Primitive) {
	if want, ok := modes[theirs.Mode]; !ok || want != ours.Mode {
		r.add(mi, pi, "mode", "%s != reference %d", ours.Mode, theirs.Mode)
	}

	attrs := []struct {
		attr gltf.Attribute
		name string
		read func(*qgltf.Accessor) ([]float32, error)
	}{
		{gltf.AttrPosition, qgltf.POSITION, func(a *qgltf.Accessor) ([]float32, error) {
			v, err := modeler.ReadPosition(doc, a, nil)
			return flatten3(v), err
		}},
		{gltf.AttrNormal, qgltf.NORMAL, func(a *qgltf.Accessor) ([]float32, error) {
			v, err := modeler.ReadNormal(doc, a, nil)
			return flatten3(v), err
		}},
		{gltf.AttrTexCoord0, qgltf.TEXCOORD_0, func(a *qgltf.Accessor) ([]float32, error) {
			v, err := modeler.ReadTextureCoord(doc, a, nil)
			return flatten2(v), err
		}},
	}

	for _, at := range attrs {
		idx, ok := ours.Attribute(at.attr)
		refIdx, refOK := theirs.Attributes[at.name]
		if ok != refOK {
			r.add(mi, pi, at.name, "present %t != reference %t", ok, refOK)
			continue
		}
		if !ok {
			continue
		}
		if refIdx < 0 || refIdx >= len(doc.Accessors) {
			r.add(mi, pi, at.name, "reference accessor %d out of range", refIdx)
			continue
		}

		a, found := l.Accessor(idx)
		if !found {
			r.add(mi, pi, at.name, "accessor %d not loaded", idx)
			continue
		}
		got, err := l.ReadFloats(a)
		if err != nil {
			r.add(mi, pi, at.name, "read: %v", err)
			continue
		}
		want, err := at.read(doc.Accessors[refIdx])
		if err != nil {
			r.add(mi, pi, at.name, "reference read: %v", err)
			continue
		}
		r.Checked++
		if detail := diffFloats(got, want); detail != "" {
			r.add(mi, pi, at.name, "%s", detail)
		}
	}

	compareIndices(r, l, doc, mi, pi, ours, theirs)
}

func compareIndices(r *Report, l *gltf.Loader, doc *qgltf.Document, mi, pi int, ours gltf.Primitive, theirs *qgltf.Primitive) {
	const name = "indices"
	if ours.Indices.Valid() != (theirs.Indices != nil) {
		r.add(mi, pi, name, "present %t != reference %t", ours.Indices.Valid(), theirs.Indices != nil)
		return
	}
	if !ours.Indices.Valid() {
		return
	}
	if *theirs.Indices < 0 || *theirs.Indices >= len(doc.Accessors) {
		r.add(mi, pi, name, "reference accessor %d out of range", *theirs.Indices)
		return
	}

	a, found := l.Accessor(ours.Indices)
	if !found {
		r.add(mi, pi, name, "accessor %d not loaded", ours.Indices)
		return
	}
	got, err := l.ReadIndices(a)
	if err != nil {
		r.add(mi, pi, name, "read: %v", err)
		return
	}
	want, err := modeler.ReadIndices(doc, doc.Accessors[*theirs.Indices], nil)
	if err != nil {
		r.add(mi, pi, name, "reference read: %v", err)
		return
	}

	r.Checked++
	if len(got) != len(want) {
		r.add(mi, pi, name, "length %d != reference %d", len(got), len(want))
		return
	}
	for i := range got {
		if got[i] != want[i] {
			r.add(mi, pi, name, "element %d: %d != reference %d", i, got[i], want[i])
			return
		}
	}
}

func diffFloats(got, want []float32) string {
	if len(got) != len(want) {
		return fmt.Sprintf("length %d != reference %d", len(got), len(want))
	}
	for i := range got {
		d := got[i] - want[i]
		if d > Tolerance || d < -Tolerance {
			return fmt.Sprintf("component %d: %g != reference %g", i, got[i], want[i])
		}
	}
	return ""
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, e := range v {
		out = append(out, e[:]...)
	}
	return out
}

func flatten2(v [][2]float32) []float32 {
	out := make([]float32, 0, len(v)*2)
	for _, e := range v {
		out = append(out, e[:]...)
	}
	return out
}
