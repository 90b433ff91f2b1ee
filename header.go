package rda

import (
	"slices"
	"unicode/utf8"

	"github.com/creachadair/mds/value"
	"github.com/danderson/rda/fragments"
)

// Parse decodes an RDA string.
//
// Parse never fails. A string that does not start with a valid RDA
// header decodes as a scalar holding the whole string, and a string
// whose header is valid always decodes to a tree, however its
// payload is laid out.
//
// Both the compact form produced by [Value.String] and the formatted
// form produced by [Value.Formatted] are accepted.
func Parse(s string) *Value {
	enc, payload, ok := parseHeader(s)
	if !ok {
		debugf("no header in %q, decoding as scalar", s)
		return &Value{
			enc:    defaultEncoding(),
			scalar: value.Just(s),
		}
	}

	ret := &Value{enc: enc}
	d := fragments.Decoder{
		Escape:     enc.escape,
		Delimiters: enc.delims,
		Quoted:     fragments.IsQuoted(payload),
	}
	debugf("header delimiters=%q escape=%q quoted=%v", string(enc.delims), enc.escape, d.Quoted)
	ret.parsePayload(&d, payload, 0)
	return ret
}

// parseHeader returns the encoding declared by the header of s, and
// the payload that follows the header. ok is false if s has no valid
// header.
//
// A header is a run of distinct characters ending with a repeat of
// its first character: the delimiters, then the escape character,
// then the first delimiter again. Scanning gives up as soon as it
// sees a character that cannot be part of a header, or a repeat of
// anything other than the first character.
func parseHeader(s string) (enc *Encoding, payload string, ok bool) {
	var seen []rune
	for i, c := range s {
		if fragments.IsReserved(c) {
			return nil, "", false
		}
		if !slices.Contains(seen, c) {
			seen = append(seen, c)
			continue
		}
		if c != seen[0] || len(seen) < 2 {
			return nil, "", false
		}
		n := len(seen) - 1
		if n > MaxDimension {
			return nil, "", false
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		return &Encoding{
			delims: slices.Clone(seen[:n]),
			escape: seen[n],
		}, s[i+size:], true
	}
	return nil, "", false
}

// MarshalText implements [encoding.TextMarshaler]. The output is the
// compact encoding of v.
func (v *Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler]. The input is
// decoded with [Parse].
func (v *Value) UnmarshalText(bs []byte) error {
	return v.replace(Parse(string(bs)))
}

// replace makes v hold the content of the root src. src must not be
// used afterwards.
func (v *Value) replace(src *Value) error {
	if v.parent == nil {
		v.enc = src.Encoding()
	} else if err := v.Encoding().Extend(v.Level() + src.Dimension()); err != nil {
		return err
	}
	v.scalar = src.scalar
	v.elems = src.elems
	for _, c := range v.elems {
		c.parent = v
	}
	return nil
}
