package gltf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ReadElements returns exactly a.Count elements of a.ElementSize() bytes,
// gathered from the accessor's buffer view with its byte stride applied.
// The result is tightly packed, so interleaved views come back
// de-interleaved.
func (l *Loader) ReadElements(a Accessor) ([]byte, error) {
	if err := checkShape(a); err != nil {
		return nil, err
	}

	window, err := l.window(a)
	if err != nil {
		return nil, err
	}

	size := a.ElementSize()
	stride := size
	if view, _ := lookup(l.bufferViews, a.BufferView); view.ByteStride > 0 {
		stride = view.ByteStride
	}

	if stride < size {
		return nil, fmt.Errorf("%w: stride %d is shorter than a %d-byte element", ErrOutOfRange, stride, size)
	}
	if a.Count < 0 {
		return nil, fmt.Errorf("%w: count %d", ErrOutOfRange, a.Count)
	}
	if a.Count == 0 {
		return []byte{}, nil
	}
	// Compare by division so huge strides or counts cannot overflow.
	if len(window) < size || a.Count-1 > (len(window)-size)/stride {
		return nil, fmt.Errorf("%w: %d elements of %d bytes at stride %d do not fit %d bytes",
			ErrOutOfRange, a.Count, size, stride, len(window))
	}

	out := make([]byte, a.Count*size)
	for i := 0; i < a.Count; i++ {
		copy(out[i*size:(i+1)*size], window[i*stride:])
	}
	return out, nil
}

// ReadFloats decodes every component of the accessor to float32, in
// element order and column-major order within matrices. Integer components
// are mapped to [0,1] or [-1,1] when the accessor is normalized and
// converted as plain numbers otherwise.
func (l *Loader) ReadFloats(a Accessor) ([]float32, error) {
	packed, err := l.ReadElements(a)
	if err != nil {
		return nil, err
	}
	return decodeFloats(a, packed), nil
}

// ReadIndices decodes an index accessor. Only SCALAR accessors of unsigned
// 1-, 2- or 4-byte components are accepted; the component encoding sets
// the index width.
func (l *Loader) ReadIndices(a Accessor) ([]uint32, error) {
	switch a.ComponentType {
	case ComponentUnsignedByte, ComponentUnsignedShort, ComponentUnsignedInt:
	default:
		return nil, fmt.Errorf("%w: %s for indices", ErrComponentType, a.ComponentType)
	}
	if a.Type != TypeScalar {
		return nil, fmt.Errorf("%w: %s for indices", ErrAccessorType, a.Type)
	}

	packed, err := l.ReadElements(a)
	if err != nil {
		return nil, err
	}

	width := a.ComponentType.Size()
	out := make([]uint32, a.Count)
	for i := range out {
		b := packed[i*width:]
		switch width {
		case 1:
			out[i] = uint32(b[0])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(b))
		default:
			out[i] = binary.LittleEndian.Uint32(b)
		}
	}
	return out, nil
}

func checkShape(a Accessor) error {
	if a.ComponentType.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrComponentType, a.ComponentType)
	}
	if a.Type.Components() == 0 {
		return fmt.Errorf("%w: %s", ErrAccessorType, a.Type)
	}
	return nil
}

func decodeFloats(a Accessor, packed []byte) []float32 {
	cols, rows := a.Type.Columns(), a.Type.Rows()
	n := cols * rows
	size := a.ComponentType.Size()
	elem := a.ElementSize()
	colStride := a.columnStride()

	out := make([]float32, a.Count*n)
	for e := 0; e < a.Count; e++ {
		for c := 0; c < cols; c++ {
			for r := 0; r < rows; r++ {
				off := e*elem + c*colStride + r*size
				out[e*n+c*rows+r] = component(a.ComponentType, a.Normalized, packed[off:])
			}
		}
	}
	return out
}

// component decodes one little-endian component.
func component(ct ComponentType, normalized bool, b []byte) float32 {
	switch ct {
	case ComponentByte:
		v := float32(int8(b[0]))
		if normalized {
			return max(v/127, -1)
		}
		return v
	case ComponentUnsignedByte:
		v := float32(b[0])
		if normalized {
			return v / 255
		}
		return v
	case ComponentShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return max(v/32767, -1)
		}
		return v
	case ComponentUnsignedShort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case ComponentUnsignedInt:
		v := binary.LittleEndian.Uint32(b)
		if normalized {
			return float32(float64(v) / math.MaxUint32)
		}
		return float32(v)
	case ComponentFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	default:
		return 0
	}
}
