package gltf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// PayloadStore owns the raw bytes of every loaded buffer, keyed by buffer
// index. It is filled while the manifest is parsed and never changes after.
type PayloadStore struct {
	blobs map[Index][]byte
}

func newPayloadStore() *PayloadStore {
	return &PayloadStore{
		blobs: make(map[Index][]byte),
	}
}

// load reads the buffer at uri, relative to dir, into the slot idx.
func (s *PayloadStore) load(idx Index, dir, uri string) error {
	data, err := readURI(dir, uri)
	if err != nil {
		return err
	}
	s.blobs[idx] = data
	return nil
}

// view returns the stored bytes without copying. Callers must not modify them.
func (s *PayloadStore) view(idx Index) ([]byte, bool) {
	data, ok := s.blobs[idx]
	return data, ok
}

// Get returns a copy of the payload for buffer idx.
func (s *PayloadStore) Get(idx Index) ([]byte, bool) {
	data, ok := s.blobs[idx]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

// Has reports whether buffer idx has a loaded payload.
func (s *PayloadStore) Has(idx Index) bool {
	_, ok := s.blobs[idx]
	return ok
}

// Size returns the payload length of buffer idx.
func (s *PayloadStore) Size(idx Index) (int, bool) {
	data, ok := s.blobs[idx]
	return len(data), ok
}

// Len returns the number of loaded payloads.
func (s *PayloadStore) Len() int {
	return len(s.blobs)
}

// TotalBytes returns the combined size of all loaded payloads.
func (s *PayloadStore) TotalBytes() int {
	total := 0
	for _, data := range s.blobs {
		total += len(data)
	}
	return total
}

// readURI loads a buffer uri. Relative references are percent-decoded and
// resolved against dir; base64 data URIs are decoded in place.
func readURI(dir, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri)
	}

	data, err := os.ReadFile(resolvePath(dir, uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPayloadOpen, err)
	}
	return data, nil
}

// resolvePath maps a relative buffer uri to a file below dir.
func resolvePath(dir, uri string) string {
	path, err := url.PathUnescape(uri)
	if err != nil {
		path = uri
	}
	return filepath.Join(dir, filepath.FromSlash(path))
}

func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: data uri without payload", ErrPayloadOpen)
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: data uri is not base64 encoded", ErrPayloadOpen)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding data uri: %w", ErrPayloadOpen, err)
	}
	return data, nil
}
