package gltf

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetData_LengthIsViewLength(t *testing.T) {
	tests := []struct {
		componentType int
		count         int
		typ           string
	}{
		{5126, 3, "VEC3"},
		{5126, 1, "SCALAR"},
		{5123, 18, "SCALAR"},
		{5121, 2, "VEC4"},
		{5120, 0, "MAT4"},
		{5125, 1000, "VEC2"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d_%s", tt.componentType, tt.count, tt.typ), func(t *testing.T) {
			manifest := fmt.Sprintf(`{
				"buffers": [{"uri": "a.bin", "byteLength": 64}],
				"bufferViews": [{"buffer": 0, "byteOffset": 10, "byteLength": 40}],
				"accessors": [{"bufferView": 0, "componentType": %d, "count": %d, "type": %q}]
			}`, tt.componentType, tt.count, tt.typ)
			l := openModel(t, manifest, map[string][]byte{"a.bin": sequence(64)})

			data, err := l.AccessorData(0)
			require.NoError(t, err)
			assert.Len(t, data, 40)
		})
	}
}

func TestGetData_RoundTrip(t *testing.T) {
	payload := sequence(100)
	for _, off := range []int{0, 1, 17, 60} {
		t.Run(fmt.Sprintf("offset_%d", off), func(t *testing.T) {
			const length = 40
			manifest := fmt.Sprintf(`{
				"buffers": [{"uri": "a.bin", "byteLength": 100}],
				"bufferViews": [{"buffer": 0, "byteOffset": %d, "byteLength": %d}],
				"accessors": [{"bufferView": 0, "byteOffset": 0, "componentType": 5121, "count": 1, "type": "SCALAR"}]
			}`, off, length)
			l := openModel(t, manifest, map[string][]byte{"a.bin": payload})

			data, err := l.AccessorData(0)
			require.NoError(t, err)
			assert.Equal(t, payload[off:off+length], data)
		})
	}
}

func TestGetData_AccessorOffsetTrimsStart(t *testing.T) {
	l := openModel(t, `{
		"buffers": [{"uri": "a.bin", "byteLength": 32}],
		"bufferViews": [{"buffer": 0, "byteOffset": 8, "byteLength": 16, "byteStride": 8}],
		"accessors": [
			{"bufferView": 0, "byteOffset": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
			{"bufferView": 0, "byteOffset": 4, "componentType": 5126, "count": 2, "type": "SCALAR"}
		]
	}`, map[string][]byte{"a.bin": sequence(32)})

	first, err := l.AccessorData(0)
	require.NoError(t, err)
	assert.Equal(t, sequence(32)[8:24], first)

	// Interleaved accessors are not de-interleaved: the second one gets the
	// rest of the view from its own offset.
	second, err := l.AccessorData(1)
	require.NoError(t, err)
	assert.Equal(t, sequence(32)[12:24], second)
}

func TestGetData_Idempotent(t *testing.T) {
	l := openModel(t, scenarioManifest, map[string][]byte{"model.bin": sequence(72)})
	a, _ := l.Accessor(0)

	first, err := l.GetData(a)
	require.NoError(t, err)
	first[0] = 0xFF

	second, err := l.GetData(a)
	require.NoError(t, err)
	assert.Equal(t, sequence(72)[:36], second)
}

func TestGetData_Errors(t *testing.T) {
	path, dir := writeModel(t, `{
		"buffers": [{"uri": "a.bin", "byteLength": 16}, {"byteLength": 4}],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 8, "byteLength": 16},
			{"buffer": 5, "byteLength": 4},
			{"buffer": 1, "byteLength": 4},
			{"buffer": 0, "byteOffset": 0, "byteLength": 4}
		],
		"accessors": []
	}`, map[string][]byte{"a.bin": sequence(16)})

	l, err := Open(path, dir)
	require.Error(t, err)

	tests := []struct {
		name     string
		accessor Accessor
		wantErr  error
	}{
		{"no buffer view", Accessor{BufferView: NoIndex}, ErrUnresolvable},
		{"unknown buffer view", Accessor{BufferView: 9}, ErrUnknownBufferView},
		{"view past payload", Accessor{BufferView: 0}, ErrOutOfRange},
		{"unknown buffer", Accessor{BufferView: 1}, ErrUnknownBuffer},
		{"payload not loaded", Accessor{BufferView: 2}, ErrPayloadMissing},
		{"offset past view end", Accessor{BufferView: 3, ByteOffset: 5}, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := l.GetData(tt.accessor)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, data)
		})
	}

	t.Run("offset at view end is empty", func(t *testing.T) {
		data, err := l.GetData(Accessor{BufferView: 3, ByteOffset: 4})
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("unknown accessor", func(t *testing.T) {
		_, err := l.AccessorData(0)
		assert.ErrorIs(t, err, ErrUnknownAccessor)
	})
}

func TestGetData_ConcurrentReaders(t *testing.T) {
	l := openModel(t, scenarioManifest, map[string][]byte{"model.bin": sequence(72)})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx := Index(i % 2)
			for j := 0; j < 100; j++ {
				data, err := l.AccessorData(idx)
				if err != nil {
					errs <- err
					return
				}
				if len(data) != 36 || data[0] != byte(36*int(idx)) {
					errs <- fmt.Errorf("accessor %d: unexpected data", idx)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
