package fragments

import (
	"unicode"
	"unicode/utf8"
)

// A Decoder splits and unescapes RDA payloads.
type Decoder struct {
	// Escape is the escape character of the payload being decoded.
	Escape rune
	// Delimiters is the full delimiter table of the payload being
	// decoded. Every delimiter, whatever its level, is recognized as
	// an escapable character by [Decoder.Value].
	Delimiters []rune
	// Quoted reports whether the payload uses the formatted (V2)
	// layout, where values are padded with whitespace and may be
	// enclosed in double quotes.
	Quoted bool
}

// Sections splits payload at each unescaped occurrence of delim.
//
// The returned sections are still escaped, and escape sequences for
// other delimiters are preserved verbatim so that the sections can be
// split further. An empty payload yields a single empty section, and
// a trailing delimiter yields a trailing empty section.
func (d *Decoder) Sections(payload string, delim rune) []string {
	if payload == "" {
		return []string{""}
	}

	var (
		ret      []string
		escaping bool
		start    int
	)
	for i, c := range payload {
		if c == d.Escape {
			escaping = !escaping
			continue
		}
		if !escaping && c == delim {
			ret = append(ret, payload[start:i])
			start = i + utf8.RuneLen(c)
		}
		escaping = false
	}
	return append(ret, payload[start:])
}

// Value returns the unescaped value of payload.
func (d *Decoder) Value(payload string) string {
	return Unescape(payload, d.Delimiters, d.Escape, d.Quoted)
}

// IsQuoted reports whether payload is laid out in the formatted (V2)
// layout, i.e. whether its first line contains only whitespace.
func IsQuoted(payload string) bool {
	for _, c := range payload {
		if c == '\n' {
			return true
		}
		if !unicode.IsSpace(c) {
			return false
		}
	}
	return false
}
