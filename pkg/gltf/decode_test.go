package gltf

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadElements_Interleaved(t *testing.T) {
	// Two vertices of position (VEC3) + normal (VEC3), 24-byte stride.
	payload := f32le(
		1, 2, 3, 0, 0, 1,
		4, 5, 6, 0, 1, 0,
	)
	l := openModel(t, `{
		"buffers": [{"uri": "a.bin", "byteLength": 48}],
		"bufferViews": [{"buffer": 0, "byteLength": 48, "byteStride": 24, "target": 34962}],
		"accessors": [
			{"bufferView": 0, "byteOffset": 0, "componentType": 5126, "count": 2, "type": "VEC3"},
			{"bufferView": 0, "byteOffset": 12, "componentType": 5126, "count": 2, "type": "VEC3"}
		]
	}`, map[string][]byte{"a.bin": payload})

	pos, _ := l.Accessor(0)
	nrm, _ := l.Accessor(1)

	packed, err := l.ReadElements(pos)
	require.NoError(t, err)
	assert.Equal(t, f32le(1, 2, 3, 4, 5, 6), packed)

	floats, err := l.ReadFloats(nrm)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1, 0, 1, 0}, floats)

	// GetData still returns the whole window from the accessor offset.
	raw, err := l.GetData(nrm)
	require.NoError(t, err)
	assert.Len(t, raw, 36)
}

func TestReadElements_CountExceedsView(t *testing.T) {
	l := openModel(t, `{
		"buffers": [{"uri": "a.bin", "byteLength": 12}],
		"bufferViews": [{"buffer": 0, "byteLength": 12}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 2, "type": "VEC3"}]
	}`, map[string][]byte{"a.bin": f32le(1, 2, 3)})

	a, _ := l.Accessor(0)
	_, err := l.ReadElements(a)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReadElements_StrideOverflow(t *testing.T) {
	l := openModel(t, `{
		"buffers": [{"uri": "a.bin", "byteLength": 16}],
		"bufferViews": [{"buffer": 0, "byteLength": 16, "byteStride": 12}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 4097, "type": "VEC3"}]
	}`, map[string][]byte{"a.bin": sequence(16)})

	// Strides past the parser's range must still be rejected without
	// (count-1)*stride wrapping around.
	l.bufferViews[0].ByteStride = 1 << 52

	a, _ := l.Accessor(0)
	var err error
	assert.NotPanics(t, func() {
		_, err = l.ReadElements(a)
	})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReadElements_StrideShorterThanElement(t *testing.T) {
	l := openModel(t, `{
		"buffers": [{"uri": "a.bin", "byteLength": 24}],
		"bufferViews": [{"buffer": 0, "byteLength": 24, "byteStride": 4}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 2, "type": "VEC3"}]
	}`, map[string][]byte{"a.bin": sequence(24)})

	a, _ := l.Accessor(0)
	_, err := l.ReadElements(a)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReadElements_NegativeFields(t *testing.T) {
	l := openModel(t, `{
		"buffers": [{"uri": "a.bin", "byteLength": 8}],
		"bufferViews": [{"buffer": 0, "byteLength": 8}],
		"accessors": [{"bufferView": 0, "componentType": 5121, "count": 8, "type": "SCALAR"}]
	}`, map[string][]byte{"a.bin": sequence(8)})

	a, _ := l.Accessor(0)

	neg := a
	neg.Count = -1
	_, err := l.ReadElements(neg)
	assert.ErrorIs(t, err, ErrOutOfRange)

	neg = a
	neg.ByteOffset = -4
	_, err = l.GetData(neg)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReadElements_Empty(t *testing.T) {
	l := openModel(t, `{
		"buffers": [{"uri": "a.bin", "byteLength": 4}],
		"bufferViews": [{"buffer": 0, "byteLength": 4}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 0, "type": "SCALAR"}]
	}`, map[string][]byte{"a.bin": f32le(1)})

	a, _ := l.Accessor(0)
	packed, err := l.ReadElements(a)
	require.NoError(t, err)
	assert.Empty(t, packed)
}

func TestReadFloats_Components(t *testing.T) {
	tests := []struct {
		name       string
		ct         ComponentType
		normalized bool
		data       []byte
		want       []float32
	}{
		{"byte", ComponentByte, false, []byte{0x80, 0x7F, 0x00}, []float32{-128, 127, 0}},
		{"byte normalized", ComponentByte, true, []byte{0x80, 0x7F, 0x00}, []float32{-1, 1, 0}},
		{"ubyte normalized", ComponentUnsignedByte, true, []byte{0, 255, 51}, []float32{0, 1, 0.2}},
		{"short normalized", ComponentShort, true, u16le(0x8000, 0x7FFF, 0), []float32{-1, 1, 0}},
		{"ushort", ComponentUnsignedShort, false, u16le(0, 65535, 7), []float32{0, 65535, 7}},
		{"ushort normalized", ComponentUnsignedShort, true, u16le(0, 65535, 0), []float32{0, 1, 0}},
		{"uint", ComponentUnsignedInt, false, u32le(0, 1, 70000), []float32{0, 1, 70000}},
		{"float", ComponentFloat, false, f32le(-1.5, 0, 2.25), []float32{-1.5, 0, 2.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Accessor{ComponentType: tt.ct, Normalized: tt.normalized, Count: 3, Type: TypeScalar}
			got := decodeFloats(a, tt.data)
			assert.InDeltaSlice(t, tt.want, got, 1e-6)
		})
	}
}

func TestReadFloats_MatrixColumnPadding(t *testing.T) {
	// MAT2 of unsigned bytes: each 2-byte column is padded to 4 bytes.
	a := Accessor{ComponentType: ComponentUnsignedByte, Count: 2, Type: TypeMat2}
	assert.Equal(t, 8, a.ElementSize())

	data := []byte{
		1, 2, 0, 0, 3, 4, 0, 0,
		5, 6, 0, 0, 7, 8, 0, 0,
	}
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, decodeFloats(a, data))

	// MAT3 of shorts: 6-byte columns padded to 8.
	m3 := Accessor{ComponentType: ComponentShort, Count: 1, Type: TypeMat3}
	assert.Equal(t, 24, m3.ElementSize())

	// MAT4 of floats needs no padding.
	m4 := Accessor{ComponentType: ComponentFloat, Count: 1, Type: TypeMat4}
	assert.Equal(t, 64, m4.ElementSize())
}

func TestReadIndices(t *testing.T) {
	tests := []struct {
		name string
		code int
		data []byte
	}{
		{"ubyte", 5121, []byte{0, 1, 2, 2, 1, 3}},
		{"ushort", 5123, u16le(0, 1, 2, 2, 1, 3)},
		{"uint", 5125, u32le(0, 1, 2, 2, 1, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest := `{
				"buffers": [{"uri": "a.bin", "byteLength": ` + strconv.Itoa(len(tt.data)) + `}],
				"bufferViews": [{"buffer": 0, "byteLength": ` + strconv.Itoa(len(tt.data)) + `, "target": 34963}],
				"accessors": [{"bufferView": 0, "componentType": ` + strconv.Itoa(tt.code) + `, "count": 6, "type": "SCALAR"}]
			}`
			l := openModel(t, manifest, map[string][]byte{"a.bin": tt.data})

			a, _ := l.Accessor(0)
			got, err := l.ReadIndices(a)
			require.NoError(t, err)
			assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, got)
		})
	}
}

func TestReadIndices_Rejects(t *testing.T) {
	l := openModel(t, scenarioManifest, map[string][]byte{"model.bin": sequence(72)})

	floats, _ := l.Accessor(0)
	_, err := l.ReadIndices(floats)
	assert.ErrorIs(t, err, ErrComponentType)

	vec := Accessor{BufferView: 1, ComponentType: ComponentUnsignedShort, Count: 1, Type: TypeVec2}
	_, err = l.ReadIndices(vec)
	assert.ErrorIs(t, err, ErrAccessorType)
}

func TestReadFloats_Scenario(t *testing.T) {
	payload := append(f32le(0, 0, 0, 1, 0, 0, 0, 1, 0), u16le(0, 1, 2, 0, 1, 2, 0, 1, 2, 0, 1, 2, 0, 1, 2, 0, 1, 2)...)
	l := openModel(t, scenarioManifest, map[string][]byte{"model.bin": payload})

	pos, _ := l.Accessor(0)
	floats, err := l.ReadFloats(pos)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, floats)

	idx, _ := l.Accessor(1)
	indices, err := l.ReadIndices(idx)
	require.NoError(t, err)
	assert.Len(t, indices, 18)
	assert.Equal(t, []uint32{0, 1, 2}, indices[:3])
}
