package rda

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/creachadair/mds/mapset"
	"github.com/danderson/rda/fragments"
)

// DefaultDelimiters is the pool of delimiter characters, in the order
// in which they are assigned to nesting levels.
const DefaultDelimiters = "|;,^:~$&#=*.'@_%/!?><+-{}[]()`0123456789"

// DefaultEscape is the escape character of trees that don't specify
// one.
const DefaultEscape = '\\'

// MaxDimension is the deepest nesting an RDA tree can have. It is
// bounded by the size of the [DefaultDelimiters] pool.
var MaxDimension = utf8.RuneCountInString(DefaultDelimiters)

// An Encoding is the delimiter table of an RDA tree: one delimiter
// per nesting level, plus an escape character.
//
// An Encoding is shared by every node of a tree. It only ever grows:
// once a level's delimiter has been picked, it never changes.
type Encoding struct {
	delims []rune
	escape rune
}

// NewEncoding returns an Encoding with the given delimiters, one per
// level starting at the outermost, and escape character.
//
// Delimiters and the escape character must be distinct, and must not
// be whitespace, control characters or double quotes.
func NewEncoding(delimiters string, escape rune) (*Encoding, error) {
	ds := []rune(delimiters)
	if len(ds) > MaxDimension {
		return nil, CapacityError{len(ds), MaxDimension}
	}
	seen := mapset.New[rune]()
	for _, r := range append(ds, escape) {
		if fragments.IsReserved(r) {
			return nil, fmt.Errorf("invalid encoding character %q", r)
		}
		if seen.Has(r) {
			return nil, fmt.Errorf("duplicate encoding character %q", r)
		}
		seen.Add(r)
	}
	return &Encoding{ds, escape}, nil
}

func defaultEncoding() *Encoding {
	return &Encoding{escape: DefaultEscape}
}

// Delimiters returns the delimiters of the table, outermost level
// first.
func (e *Encoding) Delimiters() string {
	return string(e.delims)
}

// Escape returns the escape character.
func (e *Encoding) Escape() rune {
	return e.escape
}

// Len returns the number of levels the table currently covers.
func (e *Encoding) Len() int {
	return len(e.delims)
}

// Clone returns a copy of e.
func (e *Encoding) Clone() *Encoding {
	return &Encoding{slices.Clone(e.delims), e.escape}
}

// Extend makes sure e provides delimiters for at least levels nesting
// levels, picking new delimiters from [DefaultDelimiters] in order
// and skipping characters that are already in use.
//
// If the table cannot grow that far, Extend returns a
// [CapacityError] and leaves e unchanged.
func (e *Encoding) Extend(levels int) error {
	if levels <= len(e.delims) {
		return nil
	}
	if levels > MaxDimension {
		return CapacityError{levels, MaxDimension}
	}

	used := mapset.New(e.delims...)
	used.Add(e.escape)
	next := slices.Clone(e.delims)
	for _, c := range DefaultDelimiters {
		if len(next) == levels {
			break
		}
		if used.Has(c) {
			continue
		}
		next = append(next, c)
		used.Add(c)
	}
	if len(next) < levels {
		return CapacityError{levels, MaxDimension}
	}

	debugf("extended delimiters %q -> %q", string(e.delims), string(next))
	e.delims = next
	return nil
}

// delimiter returns the delimiter for the given level.
func (e *Encoding) delimiter(level int) rune {
	return e.delims[level]
}

// slice returns the delimiters for levels [from, from+n).
func (e *Encoding) slice(from, n int) []rune {
	return e.delims[from : from+n]
}

// IsCapacityError reports whether err is, or wraps, a [CapacityError].
func IsCapacityError(err error) bool {
	var ce CapacityError
	return errors.As(err, &ce)
}
