// Package rda implements RDA, the Recursive Delimited Array encoding.
//
// RDA encodes a tree of strings as a single line of text. An encoded
// value starts with a header that declares the delimiter to use at
// each nesting level, followed by the escape character, followed by
// a repeat of the first delimiter:
//
//	|;,\|a,b;c|d
//
// The header above declares three levels, delimited by '|', ';' and
// ',', with '\' as the escape character. The payload "a,b;c|d"
// decodes to the tree [[[a, b], c], d].
//
// Because the encoding carries its own delimiter table, any string
// can be stored without escaping it for a particular level: the
// escape character only needs to precede delimiters and escape
// characters that appear in values.
//
// A tree grows on demand. Reading or writing a child beyond the end
// of a container fills the gap with dummies, placeholders that hold
// no data and are left out of the encoding when they trail. A scalar
// that gets a child becomes a container whose first child holds the
// former scalar. Each new nesting level gets a delimiter from
// [DefaultDelimiters], so a tree is limited to [MaxDimension] levels.
//
// [Value.String] produces the compact encoding. [Value.Formatted]
// produces an equivalent multi-line form with quoted values and
// indentation, which [Parse] also accepts.
//
// Go values can be converted to and from trees with [Marshal] and
// [Unmarshal].
package rda
