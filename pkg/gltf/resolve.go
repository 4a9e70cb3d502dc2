package gltf

import (
	"bytes"
	"fmt"
)

// GetData returns a copy of the bytes an accessor designates.
//
// The result is the accessor's buffer view window, starting at the
// accessor's extra byte offset:
//
//	payload[view.ByteOffset+a.ByteOffset : view.ByteOffset+view.ByteLength]
//
// Its length does not depend on a.Count, a.ComponentType or a.Type, and
// view.ByteStride is not applied: accessors that share an interleaved view
// all receive the rest of that view. No component decoding happens. Use
// ReadElements, ReadFloats or ReadIndices for element-bounded,
// stride-aware reads.
//
// Unresolvable references fail with ErrUnresolvable, ErrUnknownBufferView,
// ErrUnknownBuffer, ErrPayloadMissing or ErrOutOfRange; an empty result
// always means an empty window.
func (l *Loader) GetData(a Accessor) ([]byte, error) {
	window, err := l.window(a)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(window), nil
}

// AccessorData resolves accessor i with GetData.
func (l *Loader) AccessorData(i Index) ([]byte, error) {
	a, ok := lookup(l.accessors, i)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAccessor, i)
	}
	return l.GetData(a)
}

// window returns the accessor's byte window without copying.
func (l *Loader) window(a Accessor) ([]byte, error) {
	if !a.BufferView.Valid() {
		return nil, ErrUnresolvable
	}

	view, ok := lookup(l.bufferViews, a.BufferView)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBufferView, a.BufferView)
	}

	if _, ok := lookup(l.buffers, view.Buffer); !ok {
		return nil, fmt.Errorf("%w: %d (buffer view %d)", ErrUnknownBuffer, view.Buffer, a.BufferView)
	}

	payload, ok := l.payloads.view(view.Buffer)
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", ErrPayloadMissing, view.Buffer)
	}

	start := view.ByteOffset + a.ByteOffset
	end := view.ByteOffset + view.ByteLength
	if a.ByteOffset < 0 || start > end || end > len(payload) {
		return nil, fmt.Errorf("%w: [%d, %d) in buffer %d of %d bytes",
			ErrOutOfRange, start, end, view.Buffer, len(payload))
	}
	return payload[start:end], nil
}
