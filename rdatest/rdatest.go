// Package rdatest provides helpers for testing code that produces or
// consumes RDA values.
package rdatest

import (
	"testing"

	"github.com/danderson/rda"
	"github.com/google/go-cmp/cmp"
)

// MustParse decodes s, and checks that the result survives a round
// trip through both encodings with [CheckRoundTrip].
func MustParse(t testing.TB, s string) *rda.Value {
	t.Helper()
	ret := rda.Parse(s)
	CheckRoundTrip(t, ret)
	return ret
}

// CheckRoundTrip reports a test error if the compact or formatted
// encoding of v does not decode to the same content as v.
func CheckRoundTrip(t testing.TB, v *rda.Value) {
	t.Helper()
	check := func(kind, enc string) {
		got := rda.Parse(enc)
		if got.ContentEqual(v) {
			return
		}
		t.Errorf("%s encoding does not round trip\n  encoded: %q\n(-got+want):\n%s", kind, enc, cmp.Diff(Shape(got), Shape(v)))
	}
	check("compact", v.String())
	check("formatted", v.Formatted())
}

// Shape returns the content of v as plain Go values, for use in test
// comparisons and diffs. Scalars become strings, containers become
// []any of their children, and dummies become nil.
func Shape(v *rda.Value) any {
	if v.IsDummy() {
		return nil
	}
	if v.Len() == 0 {
		return v.Scalar()
	}
	ret := make([]any, 0, v.Len())
	for _, c := range v.All() {
		ret = append(ret, Shape(c))
	}
	for len(ret) > 0 && ret[len(ret)-1] == nil {
		ret = ret[:len(ret)-1]
	}
	return ret
}
