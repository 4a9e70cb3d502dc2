package gltf

import (
	"errors"
	"fmt"
)

// Load-time errors. These are recorded as defects; the loader stays usable.
var (
	ErrManifestOpen     = errors.New("cannot open manifest")
	ErrManifestParse    = errors.New("malformed manifest")
	ErrInvalidField     = errors.New("invalid field value")
	ErrUnknownCode      = errors.New("unrecognized enumeration code")
	ErrBufferViewBounds = errors.New("buffer view exceeds buffer length")
	ErrPayloadOpen      = errors.New("cannot load buffer payload")
	ErrPayloadSize      = errors.New("buffer payload shorter than declared byteLength")
	ErrNoURI            = errors.New("buffer has no uri")
)

// Resolution errors returned by GetData and the typed readers.
var (
	ErrUnresolvable      = errors.New("accessor has no buffer view")
	ErrUnknownAccessor   = errors.New("unknown accessor")
	ErrUnknownBufferView = errors.New("unknown buffer view")
	ErrUnknownBuffer     = errors.New("unknown buffer")
	ErrPayloadMissing    = errors.New("buffer payload not loaded")
	ErrOutOfRange        = errors.New("byte range outside buffer payload")
	ErrComponentType     = errors.New("unsupported component type")
	ErrAccessorType      = errors.New("unsupported accessor type")
)

// Defect is a recoverable problem found while loading a manifest.
// Index is -1 for document- or section-level defects.
type Defect struct {
	Section string
	Index   int
	Field   string
	Err     error
}

func (d *Defect) Error() string {
	switch {
	case d.Section == "":
		return d.Err.Error()
	case d.Index < 0 && d.Field == "":
		return fmt.Sprintf("%s: %v", d.Section, d.Err)
	case d.Index < 0:
		return fmt.Sprintf("%s.%s: %v", d.Section, d.Field, d.Err)
	case d.Field == "":
		return fmt.Sprintf("%s[%d]: %v", d.Section, d.Index, d.Err)
	default:
		return fmt.Sprintf("%s[%d].%s: %v", d.Section, d.Index, d.Field, d.Err)
	}
}

func (d *Defect) Unwrap() error {
	return d.Err
}
