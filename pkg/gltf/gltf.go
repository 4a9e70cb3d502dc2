// Package gltf loads glTF 2.0 scene manifests and resolves accessor data
// out of their external binary buffers.
//
// A manifest describes where vertex and index data lives through three
// levels of indirection: buffer -> buffer view (byte window) -> accessor
// (typed, shaped view). Open parses the manifest once, loads every
// referenced buffer, and returns a Loader whose tables never change
// afterwards, so it can be shared between goroutines without locking.
//
// Loading is best effort. Problems in individual records are collected as
// *Defect values and the rest of the manifest is still used; lookups that
// cannot be resolved later fail with an explicit error.
package gltf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Option configures a Loader.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used to report defects while loading.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Loader holds the parsed entity tables and the loaded buffer payloads.
type Loader struct {
	dir         string
	asset       Asset
	accessors   []Accessor
	bufferViews []BufferView
	buffers     []Buffer
	meshes      []Mesh
	payloads    *PayloadStore
	err         error
	unreadable  bool
}

// Open reads the manifest at path and loads its buffers relative to dir.
// An empty dir means the manifest's own directory.
//
// The returned Loader is never nil. The error is nil when the manifest was
// loaded cleanly and otherwise combines every defect found. Readable
// reports whether the manifest document itself could be read; when it
// could not, every table is empty.
func Open(path, dir string, opts ...Option) (*Loader, error) {
	if dir == "" {
		dir = filepath.Dir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		l := &Loader{dir: dir, payloads: newPayloadStore(), unreadable: true}
		p := newParser(l, opts)
		p.defect("", -1, "", fmt.Errorf("%w: %w", ErrManifestOpen, err))
		return l, l.err
	}

	return Parse(data, dir, opts...)
}

// Parse builds a Loader from manifest bytes, loading buffers relative to dir.
// Errors are reported the same way as for Open.
func Parse(data []byte, dir string, opts ...Option) (*Loader, error) {
	l := &Loader{dir: dir, payloads: newPayloadStore()}
	p := newParser(l, opts)
	p.parse(data)
	return l, l.err
}

// Dir returns the directory buffers were resolved against.
func (l *Loader) Dir() string {
	return l.dir
}

// Asset returns the manifest's asset metadata.
func (l *Loader) Asset() Asset {
	return l.asset
}

// Readable reports whether the manifest document was opened and decoded.
// Defects in individual sections or records do not make it unreadable.
func (l *Loader) Readable() bool {
	return !l.unreadable
}

// Err returns all load defects combined, or nil.
func (l *Loader) Err() error {
	return l.err
}

// Defects returns each load defect individually.
func (l *Loader) Defects() []error {
	return multierr.Errors(l.err)
}

// BufferPath returns the file buffer i is loaded from. It reports false for
// unknown buffers, buffers without a uri and embedded data uris.
func (l *Loader) BufferPath(i Index) (string, bool) {
	b, ok := lookup(l.buffers, i)
	if !ok || b.URI == "" || strings.HasPrefix(b.URI, "data:") {
		return "", false
	}
	return resolvePath(l.dir, b.URI), true
}

// Payloads returns the read-only binary payload store.
func (l *Loader) Payloads() *PayloadStore {
	return l.payloads
}

// Accessor returns accessor i.
func (l *Loader) Accessor(i Index) (Accessor, bool) {
	a, ok := lookup(l.accessors, i)
	return a.clone(), ok
}

// BufferView returns buffer view i.
func (l *Loader) BufferView(i Index) (BufferView, bool) {
	return lookup(l.bufferViews, i)
}

// Buffer returns buffer i.
func (l *Loader) Buffer(i Index) (Buffer, bool) {
	return lookup(l.buffers, i)
}

// Mesh returns mesh i.
func (l *Loader) Mesh(i Index) (Mesh, bool) {
	m, ok := lookup(l.meshes, i)
	return m.clone(), ok
}

// Accessors returns a copy of the accessor table in key order.
func (l *Loader) Accessors() []Accessor {
	out := make([]Accessor, len(l.accessors))
	for i, a := range l.accessors {
		out[i] = a.clone()
	}
	return out
}

// BufferViews returns a copy of the buffer view table in key order.
func (l *Loader) BufferViews() []BufferView {
	return append([]BufferView(nil), l.bufferViews...)
}

// Buffers returns a copy of the buffer table in key order.
func (l *Loader) Buffers() []Buffer {
	return append([]Buffer(nil), l.buffers...)
}

// Meshes returns a copy of the mesh table in key order.
func (l *Loader) Meshes() []Mesh {
	out := make([]Mesh, len(l.meshes))
	for i, m := range l.meshes {
		out[i] = m.clone()
	}
	return out
}

func lookup[T any](table []T, i Index) (T, bool) {
	if i < 0 || int(i) >= len(table) {
		var zero T
		return zero, false
	}
	return table[i], true
}
