// Package fragments provides low-level encoding and decoding helpers
// to construct and parse RDA payloads.
//
// The provided encoder and decoder are very low level, and do not
// encode any tree semantics. They know how to escape and unescape a
// single value, and how to split a payload into the sections
// separated by one delimiter. It is the caller's responsibility to
// pick the right delimiter for each nesting level.
//
// You should not need to use this package at all, unless you are
// writing your own RDA tooling that works on payload strings
// directly.
package fragments
