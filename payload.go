package rda

import (
	"github.com/creachadair/mds/value"
	"github.com/danderson/rda/fragments"
)

// parsePayload makes v the decoding of payload, a value at the given
// level.
//
// Every node keeps the unescaped form of its whole payload as its
// scalar, so that containers can still be read as scalars. Levels
// that the header declares a delimiter for are split further.
func (v *Value) parsePayload(d *fragments.Decoder, payload string, level int) {
	v.elems = nil
	v.scalar = value.Just(d.Value(payload))
	if level >= len(d.Delimiters) {
		return
	}
	for _, sec := range d.Sections(payload, d.Delimiters[level]) {
		c := v.newChild(value.Absent[string]())
		c.parsePayload(d, sec, level+1)
		v.elems = append(v.elems, c)
	}
}

// String returns the compact RDA encoding of v: a header declaring
// the delimiters v needs, followed by v's payload.
//
// If v has dimension 0, String returns v's scalar verbatim, without
// a header or escaping.
func (v *Value) String() string {
	return v.encode(false)
}

// Formatted returns a human-readable RDA encoding of v, with one
// value per line, indentation by depth and quoted values. The output
// decodes back to the same tree as [Value.String].
func (v *Value) Formatted() string {
	return v.encode(true)
}

// Minimal trims v with [Value.TrimSoloBranch], then returns its
// compact encoding.
func (v *Value) Minimal() string {
	v.TrimSoloBranch()
	return v.String()
}

// Delimiters returns the delimiters used to encode v, one per level
// of v's dimension, starting with the delimiter between v's own
// children.
func (v *Value) Delimiters() string {
	return string(v.delimitersInUse(v.Encoding()))
}

func (v *Value) delimitersInUse(enc *Encoding) []rune {
	return enc.slice(v.Level(), v.Dimension())
}

func (v *Value) encode(quoted bool) string {
	if v.Dimension() == 0 {
		return v.Scalar()
	}
	enc := v.Encoding()
	e := fragments.Encoder{
		Escape:     enc.escape,
		Delimiters: v.delimitersInUse(enc),
		Quoted:     quoted,
	}
	e.Header()
	if quoted {
		e.Newline(" ")
	}
	v.appendPayload(&e, enc, v.Level())
	return e.String()
}

// appendPayload writes the payload of v, a value at the given level,
// to e.
//
// Trailing dummy children are not written. A container whose
// children are all dummies is written as a scalar.
func (v *Value) appendPayload(e *fragments.Encoder, enc *Encoding, level int) {
	last := v.lastNonDummy()
	if last < 0 {
		if s, ok := v.scalar.GetOK(); ok {
			e.Value(s)
		}
		return
	}

	delim := enc.delimiter(level)
	for i, c := range v.elems[:last+1] {
		if e.Quoted {
			v.writeLayout(e, i)
		}
		if i > 0 {
			e.Rune(delim)
		}
		c.appendPayload(e, enc, level+1)
	}
}

// writeLayout writes the layout text that goes before v's i-th child
// in the formatted encoding.
func (v *Value) writeLayout(e *fragments.Encoder, i int) {
	switch {
	case i > 0:
		e.Newline(v.indent())
	case len(v.elems) > 1 && v.parent != nil:
		e.Write(fragments.Indent)
	}
}

func (v *Value) indent() string {
	if v.parent == nil || len(v.parent.elems) == 1 {
		return ""
	}
	return v.parent.indent() + fragments.Indent
}
