package fragments

import (
	"unicode"
	"unicode/utf8"
)

const (
	// LineBreak separates siblings in the formatted (V2) layout.
	LineBreak = "\r\n"
	// Indent is one level of indentation in the formatted (V2)
	// layout.
	Indent = "  "
)

// An Encoder provides utilities to write an RDA string to a byte
// slice.
//
// Methods escape values as needed, except for [Encoder.Write] and
// [Encoder.Rune] which output their input verbatim.
type Encoder struct {
	// Escape is the escape character.
	Escape rune
	// Delimiters is the set of delimiters in scope for the value
	// being encoded. Occurrences of these in values get escaped.
	Delimiters []rune
	// Quoted selects the formatted (V2) layout, where values are
	// enclosed in double quotes.
	Quoted bool
	// Out is the encoded output.
	Out []byte
}

// Write writes s as-is to the output. It is the caller's
// responsibility to ensure correct escaping.
func (e *Encoder) Write(s string) {
	e.Out = append(e.Out, s...)
}

// Rune writes r as-is to the output.
func (e *Encoder) Rune(r rune) {
	e.Out = utf8.AppendRune(e.Out, r)
}

// Value writes the escaped form of s to the output.
func (e *Encoder) Value(s string) {
	e.Write(Escape(s, e.Delimiters, e.Escape, e.Quoted))
}

// Header writes the self-describing header for [Encoder.Delimiters]
// and [Encoder.Escape]: the delimiters in level order, the escape
// character, and a repeat of the first delimiter.
//
// Header writes nothing if there are no delimiters.
func (e *Encoder) Header() {
	if len(e.Delimiters) == 0 {
		return
	}
	for _, d := range e.Delimiters {
		e.Rune(d)
	}
	e.Rune(e.Escape)
	e.Rune(e.Delimiters[0])
}

// Newline writes a line break followed by indent.
func (e *Encoder) Newline(indent string) {
	e.Write(LineBreak)
	e.Write(indent)
}

// String returns the output accumulated so far.
func (e *Encoder) String() string {
	return string(e.Out)
}

// IsReserved reports whether r can never be a delimiter or escape
// character: whitespace, control and format characters, and the
// double quote all carry meaning in the formatted layout.
func IsReserved(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.C, r) || r == DoubleQuote
}
