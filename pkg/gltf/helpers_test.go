package gltf

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeModel writes a manifest and its buffer files into a temp directory
// and returns the manifest path and the directory.
func writeModel(t *testing.T, manifest string, bins map[string][]byte) (string, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.gltf")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0644))
	for name, data := range bins {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}
	return path, dir
}

// openModel writes and opens a model, failing the test on any defect.
func openModel(t *testing.T, manifest string, bins map[string][]byte) *Loader {
	t.Helper()

	path, dir := writeModel(t, manifest, bins)
	l, err := Open(path, dir)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l
}

// sequence returns n bytes counting up from 0.
func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func f32le(vals ...float32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func u16le(vals ...uint16) []byte {
	b := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return b
}

func u32le(vals ...uint32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	return b
}

// scenarioManifest is one buffer split into a vertex view and an index view.
const scenarioManifest = `{
	"asset": {"version": "2.0", "generator": "test"},
	"buffers": [{"uri": "model.bin", "byteLength": 72}],
	"bufferViews": [
		{"buffer": 0, "byteOffset": 0, "byteLength": 36, "target": 34962},
		{"buffer": 0, "byteOffset": 36, "byteLength": 36, "target": 34963}
	],
	"accessors": [
		{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
		{"bufferView": 1, "componentType": 5123, "count": 18, "type": "SCALAR"}
	],
	"meshes": [
		{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}
	]
}`
