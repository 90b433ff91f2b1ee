package rda_test

import (
	"errors"
	"fmt"
	"net/netip"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/danderson/rda"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type Simple struct {
	A string
	B int
}

type Tagged struct {
	A string
	B string `rda:"3"`
	C string
	D string `rda:"-"`
}

type Base struct {
	ID string
}

type Embedded struct {
	Base
	Name string
}

type EmbeddedPtr struct {
	*Base
	Name string
}

type Node struct {
	Name string
	Kids []*Node
}

type Ptrs struct {
	A *string
	B string
}

type Celsius float64

func (c Celsius) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(c), 'f', 1, 64) + "C"), nil
}

func (c *Celsius) UnmarshalText(bs []byte) error {
	f, err := strconv.ParseFloat(strings.TrimSuffix(string(bs), "C"), 64)
	if err != nil {
		return err
	}
	*c = Celsius(f)
	return nil
}

type Pair struct {
	K, V string
}

func (p Pair) MarshalRDA() (*rda.Value, error) {
	return rda.Scalar(p.K + "=" + p.V), nil
}

func (p *Pair) UnmarshalRDA(tree *rda.Value) error {
	k, v, ok := strings.Cut(tree.Scalar(), "=")
	if !ok {
		return fmt.Errorf("missing '=' in %q", tree.Scalar())
	}
	p.K, p.V = k, v
	return nil
}

type Quoted struct {
	S string
}

func (q *Quoted) MarshalRDA() (*rda.Value, error) {
	return rda.Scalar("<" + q.S + ">"), nil
}

type Failing struct{}

var errFailing = errors.New("failing marshaler")

func (Failing) MarshalRDA() (*rda.Value, error) {
	return nil, errFailing
}

type DupIndex struct {
	A string `rda:"1"`
	B string `rda:"1"`
}

type DupImplicit struct {
	A string
	B string `rda:"0"`
}

type BadTag struct {
	A string `rda:"first"`
}

type WithFunc struct {
	F func()
}

type WithTree struct {
	Name  string
	Extra *rda.Value
}

func ptrTo[T any](v T) *T {
	return &v
}

func TestMarshalUnmarshal(t *testing.T) {
	type testCase struct {
		name       string
		wantDecode any
		toEncode   any
		enc        string
	}
	ok := func(name string, want any, enc string) testCase {
		return testCase{name, want, want, enc}
	}
	asymmetric := func(name string, decoded, toEncode any, enc string) testCase {
		return testCase{name, decoded, toEncode, enc}
	}

	tests := []testCase{
		ok("string", "hello", "hello"),
		ok("empty string", "", ""),
		ok("bool", true, "true"),
		ok("int", 42, "42"),
		ok("int8", int8(-5), "-5"),
		ok("uint64", uint64(1<<63), "9223372036854775808"),
		ok("float64", 1.5, "1.5"),
		ok("float32", float32(0.1), "0.1"),
		ok("complex", 1+2i, "(1+2i)"),
		ok("bytes", []byte("xyz"), "xyz"),

		ok("[]string", []string{"a", "b"}, `|\|a|b`),
		ok("[]string escaped", []string{"a|b", `c\d`}, `|\|a\|b|c\\d`),
		ok("[][]string", [][]string{{"a", "b"}, {"c"}}, `|;\|a;b|c`),
		ok("array", [2]int{1, 2}, `|\|1|2`),

		ok("struct", Simple{"x", 3}, `|\|x|3`),
		ok("tagged struct", Tagged{A: "a", B: "b", C: "c"}, `|\|a|||b|c`),
		asymmetric("skipped field", Tagged{A: "a"}, Tagged{A: "a", D: "d"}, `|\|a||||`),
		ok("embedded", Embedded{Base{"1"}, "n"}, `|\|1|n`),
		ok("embedded ptr", EmbeddedPtr{&Base{"1"}, "n"}, `|\|1|n`),
		asymmetric("pointer", Ptrs{ptrTo(""), "b"}, Ptrs{nil, "b"}, `|\||b`),

		ok("map", map[string]int{"b": 2, "a": 1}, `|;\|a;1|b;2`),
		ok("int map", map[int]string{10: "x", 9: "y"}, `|;\|9;y|10;x`),
		ok("text map key", map[netip.Addr]string{
			netip.MustParseAddr("10.0.0.2"):  "a",
			netip.MustParseAddr("10.0.0.10"): "b",
		}, `|;\|10.0.0.10;b|10.0.0.2;a`),

		ok("text", Celsius(21.5), "21.5C"),
		ok("marshaler", []Pair{{"a", "1"}, {"b", "2"}}, `|\|a=1|b=2`),
		asymmetric("any", []any{"a", "1"}, []any{"a", 1, nil}, `|\|a|1`),

		ok("recursive", Node{
			Name: "root",
			Kids: []*Node{
				{Name: "a"},
				{Name: "b", Kids: []*Node{{Name: "c"}}},
			},
		}, `|;,^:\|root|a;b,c`),
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := rda.Marshal(tc.toEncode)
			if err != nil {
				t.Fatalf("Marshal failed: %v\n  val: %#v", err, tc.toEncode)
			}
			if got := tree.String(); got != tc.enc {
				t.Fatalf("Marshal wrong encoding:\n  val: %#v\n  got: %q\n want: %q", tc.toEncode, got, tc.enc)
			}

			v := reflect.New(reflect.TypeOf(tc.wantDecode))
			if err := rda.Unmarshal(rda.Parse(tc.enc), v.Interface()); err != nil {
				t.Fatalf("Unmarshal failed: %v\n  enc: %q", err, tc.enc)
			}
			if diff := cmp.Diff(v.Elem().Interface(), tc.wantDecode, cmpopts.EquateComparable(netip.Addr{})); diff != "" {
				t.Fatalf("Unmarshal wrong value (-got+want):\n%s", diff)
			}
		})
	}
}

func TestMarshalNil(t *testing.T) {
	tests := []any{
		nil,
		[]string(nil),
		[]string{},
		map[string]int(nil),
		(*Simple)(nil),
	}
	for _, in := range tests {
		got, err := rda.Marshal(in)
		if err != nil {
			t.Errorf("Marshal(%#v) failed: %v", in, err)
			continue
		}
		if !got.IsDummy() {
			t.Errorf("Marshal(%#v) = %q, want a dummy", in, got)
		}
		if s := got.String(); s != "" {
			t.Errorf("Marshal(%#v).String() = %q, want empty", in, s)
		}
	}
}

func TestMarshalAddressable(t *testing.T) {
	got, err := rda.Marshal([]Quoted{{"a"}, {"b"}})
	if err != nil {
		t.Fatal(err)
	}
	checkString(t, "addressable", got.String(), `|\|<a>|<b>`)

	// Not addressable, marshaled through a copy.
	got, err = rda.Marshal(Quoted{"c"})
	if err != nil {
		t.Fatal(err)
	}
	checkString(t, "copy", got.String(), "<c>")
}

func TestMarshalErrors(t *testing.T) {
	loop := &Node{Name: "loop"}
	loop.Kids = []*Node{loop}

	tests := []struct {
		name string
		in   any
	}{
		{"chan", make(chan int)},
		{"func", func() {}},
		{"func field", WithFunc{}},
		{"invalid map key", map[[2]int]string{}},
		{"duplicate index", DupIndex{}},
		{"duplicate implicit index", DupImplicit{}},
		{"bad tag", BadTag{}},
		{"cycle", loop},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := rda.Marshal(tc.in)
			if err == nil {
				t.Fatalf("Marshal succeeded, want error\n  got: %q", got)
			}
			var te rda.TypeError
			if !errors.As(err, &te) {
				t.Fatalf("Marshal error is %T (%v), want TypeError", err, err)
			}
		})
	}

	_, err := rda.Marshal([]Failing{{}})
	if !errors.Is(err, errFailing) {
		t.Errorf("Marshal([]Failing) = %v, want %v", err, errFailing)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tree := rda.Parse(`|\|a|b`)

	if err := rda.Unmarshal(tree, nil); err == nil {
		t.Error("Unmarshal into nil succeeded")
	}
	var s string
	if err := rda.Unmarshal(tree, s); err == nil {
		t.Error("Unmarshal into non-pointer succeeded")
	}
	if err := rda.Unmarshal(tree, (*string)(nil)); err == nil {
		t.Error("Unmarshal into nil pointer succeeded")
	}

	typeErrs := []any{
		new(chan int),
		new(fmt.Stringer),
		new(WithFunc),
		new(DupIndex),
		new(map[[2]int]string),
	}
	for _, target := range typeErrs {
		err := rda.Unmarshal(tree, target)
		var te rda.TypeError
		if !errors.As(err, &te) {
			t.Errorf("Unmarshal(%T) = %v, want TypeError", target, err)
		}
	}

	var i int
	if err := rda.Unmarshal(rda.Parse("abc"), &i); err == nil {
		t.Error("Unmarshal(\"abc\") into int succeeded")
	}
	var p Pair
	if err := rda.Unmarshal(rda.Parse("nope"), &p); err == nil {
		t.Error("Unmarshal(\"nope\") into Pair succeeded")
	}
}

func TestUnmarshalLenient(t *testing.T) {
	tests := []struct {
		name string
		in   *rda.Value
		want any
	}{
		{"scalar into struct", rda.Parse("Michael"), Simple{A: "Michael"}},
		{"short container into struct", rda.Parse(`|\|x`), Simple{A: "x"}},
		{"extra children", rda.Parse(`|\|x|1|extra`), Simple{A: "x", B: 1}},
		{"empty into int", rda.Parse(""), 0},
		{"empty into slice", rda.Parse(""), []string{}},
		{"scalar into slice", rda.Parse("x"), []string{"x"}},
		{"dummy into slice", rda.New(nil), []string(nil)},
		{"long into array", rda.Parse(`|\|a|b|c`), [2]string{"a", "b"}},
		{"short into array", rda.Parse(`|\|1`), [3]int{1, 0, 0}},
		{"deep scalar", rda.Parse(`|;,\|deep`), "deep"},
		{"list into any", rda.Parse(`|\|a|b`), any([]any{"a", "b"})},
		{"tree into any", rda.Parse(`|;\|a;b|c`), any([]any{[]any{"a", "b"}, []any{"c"}})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := reflect.New(reflect.TypeOf(tc.want))
			if err := rda.Unmarshal(tc.in, v.Interface()); err != nil {
				t.Fatalf("Unmarshal(%q) failed: %v", tc.in, err)
			}
			if diff := cmp.Diff(v.Elem().Interface(), tc.want); diff != "" {
				t.Errorf("Unmarshal(%q) wrong value (-got+want):\n%s", tc.in, diff)
			}
		})
	}

	// A dummy clears pointers that were already set.
	p := ptrTo("x")
	if err := rda.Unmarshal(rda.New(nil), &p); err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Errorf("Unmarshal(dummy) left pointer set to %q", *p)
	}
}

func TestMarshalRoundTripTree(t *testing.T) {
	in := Node{
		Name: "root",
		Kids: []*Node{
			{Name: "a", Kids: []*Node{{Name: "a1"}, {Name: "a2"}}},
			{Name: "b"},
		},
	}
	tree, err := rda.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	// Decoding the tree itself and its reparsed encodings gives
	// the same result.
	for _, src := range []*rda.Value{tree, rda.Parse(tree.String()), rda.Parse(tree.Formatted())} {
		var got Node
		if err := rda.Unmarshal(src, &got); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if diff := cmp.Diff(got, in); diff != "" {
			t.Errorf("Unmarshal(%q) wrong value (-got+want):\n%s", src, diff)
		}
	}
}

func TestValueField(t *testing.T) {
	extra := rda.Parse(`|\|x|y`)
	tree, err := rda.Marshal(WithTree{"n", extra})
	if err != nil {
		t.Fatal(err)
	}
	checkString(t, "marshal", tree.String(), `|;\|n|x;y`)
	checkString(t, "source untouched", extra.String(), `|\|x|y`)

	var got WithTree
	if err := rda.Unmarshal(tree, &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "n" {
		t.Errorf("Name = %q, want %q", got.Name, "n")
	}
	if got.Extra == nil {
		t.Fatal("Extra is nil")
	}
	checkString(t, "unmarshal", got.Extra.String(), `|\|x|y`)
	if got.Extra.Level() != 0 {
		t.Errorf("decoded subtree is at level %d, want a root", got.Extra.Level())
	}

	// Changing the decoded copy doesn't affect the source tree.
	got.Extra.At(0).SetScalar("changed")
	checkString(t, "source after change", tree.String(), `|;\|n|x;y`)
}
