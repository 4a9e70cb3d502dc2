package gltf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Manifest section names, in processing order.
const (
	sectionAsset       = "asset"
	sectionAccessors   = "accessors"
	sectionBufferViews = "bufferViews"
	sectionBuffers     = "buffers"
	sectionMeshes      = "meshes"
)

type parser struct {
	l   *Loader
	log *zap.Logger
}

func newParser(l *Loader, opts []Option) *parser {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &parser{l: l, log: o.log}
}

// defect records a recoverable problem and logs it.
func (p *parser) defect(section string, index int, field string, err error) {
	d := &Defect{Section: section, Index: index, Field: field, Err: err}
	p.l.err = multierr.Append(p.l.err, d)
	p.log.Warn("manifest defect",
		zap.String("section", section),
		zap.Int("index", index),
		zap.String("field", field),
		zap.Error(err),
	)
}

func (p *parser) parse(data []byte) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		p.l.unreadable = true
		p.defect("", -1, "", fmt.Errorf("%w: %w", ErrManifestParse, err))
		return
	}

	if raw, ok := doc[sectionAsset]; ok && !isNull(raw) {
		p.l.asset = p.parseAsset(p.record(sectionAsset, -1, raw))
	}

	p.l.accessors = parseSection(p, doc, sectionAccessors, p.parseAccessor)
	p.l.bufferViews = parseSection(p, doc, sectionBufferViews, p.parseBufferView)
	p.l.buffers = parseSection(p, doc, sectionBuffers, p.parseBuffer)
	p.loadPayloads()
	p.checkBufferViews()
	p.l.meshes = parseSection(p, doc, sectionMeshes, p.parseMesh)

	p.log.Info("manifest loaded",
		zap.Int("accessors", len(p.l.accessors)),
		zap.Int("bufferViews", len(p.l.bufferViews)),
		zap.Int("buffers", len(p.l.buffers)),
		zap.Int("payloads", p.l.payloads.Len()),
		zap.Int("meshes", len(p.l.meshes)),
		zap.Int("defects", len(multierr.Errors(p.l.err))),
	)
}

// parseSection decodes one top-level array. Every array slot gets a table
// entry, even a malformed one, so keys keep matching manifest positions.
func parseSection[T any](p *parser, doc map[string]json.RawMessage, name string, parse func(*record) T) []T {
	raw, ok := doc[name]
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		p.defect(name, -1, "", fmt.Errorf("%w: section is not an array", ErrManifestParse))
		return nil
	}

	table := make([]T, len(items))
	for i, item := range items {
		table[i] = parse(p.record(name, i, item))
	}
	return table
}

func (p *parser) parseAsset(r *record) Asset {
	return Asset{
		Version:    r.text("version"),
		MinVersion: r.text("minVersion"),
		Generator:  r.text("generator"),
	}
}

func (p *parser) parseAccessor(r *record) Accessor {
	a := Accessor{
		Name:       r.text("name"),
		BufferView: r.ref("bufferView"),
		ByteOffset: r.integer("byteOffset", 0),
		Normalized: r.flag("normalized", false),
		Count:      r.integer("count", 0),
		Max:        r.floats("max"),
		Min:        r.floats("min"),
	}

	if !r.has("bufferView") {
		r.fail("bufferView", ErrUnresolvable)
	}

	if code, ok := r.code("componentType"); ok {
		a.ComponentType = componentTypeFromCode(code)
		if a.ComponentType == ComponentUnknown {
			r.fail("componentType", fmt.Errorf("%w: %d", ErrUnknownCode, code))
		}
	} else {
		r.require("componentType")
	}

	if tag, ok := r.lookupString("type"); ok {
		a.Type = accessorTypeFromTag(tag)
		if a.Type == TypeUnknown {
			r.fail("type", fmt.Errorf("%w: %q", ErrUnknownCode, tag))
		}
	} else {
		r.require("type")
	}

	r.require("count")
	return a
}

func (p *parser) parseBufferView(r *record) BufferView {
	bv := BufferView{
		Name:       r.text("name"),
		Buffer:     r.ref("buffer"),
		ByteOffset: r.integer("byteOffset", 0),
		ByteLength: r.integer("byteLength", 0),
		ByteStride: r.stride("byteStride"),
		Target:     TargetNone,
	}
	r.require("buffer")
	r.require("byteLength")

	if code, ok := r.code("target"); ok {
		bv.Target = targetFromCode(code)
		if bv.Target == TargetUnknown {
			r.fail("target", fmt.Errorf("%w: %d", ErrUnknownCode, code))
		}
	}
	return bv
}

func (p *parser) parseBuffer(r *record) Buffer {
	b := Buffer{
		Name:       r.text("name"),
		URI:        r.text("uri"),
		ByteLength: r.integer("byteLength", 0),
	}
	r.require("byteLength")
	return b
}

func (p *parser) parseMesh(r *record) Mesh {
	m := Mesh{Name: r.text("name")}

	items, ok := r.array("primitives")
	if !ok {
		return m
	}

	section := fmt.Sprintf("%s[%d].primitives", sectionMeshes, r.index)
	m.Primitives = make([]Primitive, len(items))
	for i, item := range items {
		m.Primitives[i] = p.parsePrimitive(p.record(section, i, item))
	}
	return m
}

func (p *parser) parsePrimitive(r *record) Primitive {
	prim := Primitive{
		Attributes: make(map[Attribute]Index),
		Indices:    r.ref("indices"),
		Material:   r.ref("material"),
		Mode:       DefaultMode,
	}

	if attrs, ok := r.object("attributes"); ok {
		for _, name := range slices.Sorted(maps.Keys(attrs)) {
			attr, known := attributeFromName(name)
			if !known {
				continue
			}
			if idx := r.indexValue("attributes."+name, attrs[name]); idx.Valid() {
				prim.Attributes[attr] = idx
			}
		}
	} else {
		r.require("attributes")
	}

	if code, ok := r.code("mode"); ok {
		prim.Mode = modeFromCode(code)
		if prim.Mode == ModeUnknown {
			r.fail("mode", fmt.Errorf("%w: %d", ErrUnknownCode, code))
		}
	}
	return prim
}

// loadPayloads reads every buffer that has a uri into the payload store.
func (p *parser) loadPayloads() {
	for i, b := range p.l.buffers {
		idx := Index(i)
		if b.URI == "" {
			p.defect(sectionBuffers, i, "uri", ErrNoURI)
			continue
		}

		if err := p.l.payloads.load(idx, p.l.dir, b.URI); err != nil {
			p.defect(sectionBuffers, i, "uri", err)
			continue
		}

		size, _ := p.l.payloads.Size(idx)
		if size < b.ByteLength {
			p.defect(sectionBuffers, i, "byteLength",
				fmt.Errorf("%w: have %d, declared %d", ErrPayloadSize, size, b.ByteLength))
		}

		p.log.Debug("buffer loaded",
			zap.Int("buffer", i),
			zap.String("uri", shortURI(b.URI)),
			zap.Int("bytes", size),
		)
	}
}

// checkBufferViews verifies each view fits inside its declared buffer.
func (p *parser) checkBufferViews() {
	for i, bv := range p.l.bufferViews {
		if !bv.Buffer.Valid() {
			continue
		}
		b, ok := lookup(p.l.buffers, bv.Buffer)
		if !ok {
			p.defect(sectionBufferViews, i, "buffer", fmt.Errorf("%w: %d", ErrUnknownBuffer, bv.Buffer))
			continue
		}
		if end := bv.ByteOffset + bv.ByteLength; end > b.ByteLength {
			p.defect(sectionBufferViews, i, "byteLength",
				fmt.Errorf("%w: ends at %d, buffer %d is %d bytes", ErrBufferViewBounds, end, bv.Buffer, b.ByteLength))
		}
	}
}

// record is one JSON object from the manifest with defensive field readers.
// Absent or null fields yield defaults; wrong-typed fields are reported
// and also yield defaults.
type record struct {
	p       *parser
	section string
	index   int
	fields  map[string]json.RawMessage
}

func (p *parser) record(section string, index int, raw json.RawMessage) *record {
	r := &record{p: p, section: section, index: index}
	if err := json.Unmarshal(raw, &r.fields); err != nil {
		p.defect(section, index, "", fmt.Errorf("%w: record is not an object", ErrManifestParse))
	}
	return r
}

func (r *record) fail(field string, err error) {
	r.p.defect(r.section, r.index, field, err)
}

func (r *record) invalid(field string, raw json.RawMessage) {
	r.fail(field, fmt.Errorf("%w: %s", ErrInvalidField, snippet(raw)))
}

func (r *record) require(field string) {
	if !r.has(field) {
		r.fail(field, fmt.Errorf("%w: missing", ErrInvalidField))
	}
}

func (r *record) lookup(field string) (json.RawMessage, bool) {
	raw, ok := r.fields[field]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func (r *record) has(field string) bool {
	_, ok := r.lookup(field)
	return ok
}

// number decodes an integral JSON number.
func (r *record) number(field string, raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		r.invalid(field, raw)
		return 0, false
	}
	return int(f), true
}

// integer reads a non-negative integer field.
func (r *record) integer(field string, def int) int {
	raw, ok := r.lookup(field)
	if !ok {
		return def
	}
	v, ok := r.number(field, raw)
	if !ok {
		return def
	}
	if v < 0 {
		r.invalid(field, raw)
		return def
	}
	return v
}

// stride reads a vertex stride. Valid strides are multiples of 4 in
// [4, 252]; anything else is a defect and falls back to tightly packed.
func (r *record) stride(field string) int {
	raw, ok := r.lookup(field)
	if !ok {
		return 0
	}
	v, ok := r.number(field, raw)
	if !ok {
		return 0
	}
	if v < 4 || v > 252 || v%4 != 0 {
		r.invalid(field, raw)
		return 0
	}
	return v
}

// code reads an integer enumeration code; any integral value is accepted.
func (r *record) code(field string) (int, bool) {
	raw, ok := r.lookup(field)
	if !ok {
		return 0, false
	}
	return r.number(field, raw)
}

func (r *record) ref(field string) Index {
	raw, ok := r.lookup(field)
	if !ok {
		return NoIndex
	}
	return r.indexValue(field, raw)
}

func (r *record) indexValue(field string, raw json.RawMessage) Index {
	v, ok := r.number(field, raw)
	if !ok {
		return NoIndex
	}
	if v < 0 {
		r.invalid(field, raw)
		return NoIndex
	}
	return Index(v)
}

func (r *record) flag(field string, def bool) bool {
	raw, ok := r.lookup(field)
	if !ok {
		return def
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		r.invalid(field, raw)
		return def
	}
	return v
}

func (r *record) lookupString(field string) (string, bool) {
	raw, ok := r.lookup(field)
	if !ok {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		r.invalid(field, raw)
		return "", false
	}
	return v, true
}

func (r *record) text(field string) string {
	v, _ := r.lookupString(field)
	return v
}

func (r *record) floats(field string) []float32 {
	raw, ok := r.lookup(field)
	if !ok {
		return nil
	}
	var v []float64
	if err := json.Unmarshal(raw, &v); err != nil {
		r.invalid(field, raw)
		return nil
	}
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

func (r *record) array(field string) ([]json.RawMessage, bool) {
	raw, ok := r.lookup(field)
	if !ok {
		return nil, false
	}
	var v []json.RawMessage
	if err := json.Unmarshal(raw, &v); err != nil {
		r.invalid(field, raw)
		return nil, false
	}
	return v, true
}

func (r *record) object(field string) (map[string]json.RawMessage, bool) {
	raw, ok := r.lookup(field)
	if !ok {
		return nil, false
	}
	var v map[string]json.RawMessage
	if err := json.Unmarshal(raw, &v); err != nil {
		r.invalid(field, raw)
		return nil, false
	}
	return v, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// snippet shortens a raw JSON value for error messages.
func snippet(raw json.RawMessage) string {
	const limit = 32
	s := string(bytes.TrimSpace(raw))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// shortURI keeps data URIs out of log lines.
func shortURI(uri string) string {
	if len(uri) > 64 {
		return uri[:64] + "..."
	}
	return uri
}
