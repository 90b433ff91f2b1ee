package rda_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/danderson/rda"
	"github.com/google/go-cmp/cmp"
)

func TestNewEncoding(t *testing.T) {
	tests := []struct {
		delims  string
		escape  rune
		wantErr bool
	}{
		{"", '\\', false},
		{"|", '\\', false},
		{"|;,", '^', false},
		{rda.DefaultDelimiters, '\\', false},
		{"||", '\\', true},
		{"|;", ';', true},
		{"| ", '\\', true},
		{"|\t", '\\', true},
		{`|"`, '\\', true},
		{"|", '\n', true},
		{"|\x00", '\\', true},
		{rda.DefaultDelimiters + "a", '\\', true},
	}
	for _, tc := range tests {
		enc, err := rda.NewEncoding(tc.delims, tc.escape)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NewEncoding(%q, %q) succeeded, want error", tc.delims, tc.escape)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewEncoding(%q, %q) failed: %v", tc.delims, tc.escape, err)
			continue
		}
		if got := enc.Delimiters(); got != tc.delims {
			t.Errorf("NewEncoding(%q, %q).Delimiters() = %q", tc.delims, tc.escape, got)
		}
		if got := enc.Escape(); got != tc.escape {
			t.Errorf("NewEncoding(%q, %q).Escape() = %q", tc.delims, tc.escape, got)
		}
	}
}

func TestNewEncodingTooLong(t *testing.T) {
	_, err := rda.NewEncoding(rda.DefaultDelimiters+"a", '\\')
	var ce rda.CapacityError
	if !errors.As(err, &ce) {
		t.Fatalf("NewEncoding error is %v, want CapacityError", err)
	}
	if diff := cmp.Diff(ce, rda.CapacityError{Levels: 41, Max: 40}); diff != "" {
		t.Errorf("wrong CapacityError (-got+want):\n%s", diff)
	}
}

func TestExtend(t *testing.T) {
	tests := []struct {
		delims string
		escape rune
		levels int
		want   string
	}{
		{"", '\\', 0, ""},
		{"", '\\', 1, "|"},
		{"", '\\', 3, "|;,"},
		{"|;,", '\\', 2, "|;,"},
		{"|", ';', 3, "|,^"},
		{"$", '\\', 3, "$|;"},
		{"", '|', 2, ";,"},
	}
	for _, tc := range tests {
		enc, err := rda.NewEncoding(tc.delims, tc.escape)
		if err != nil {
			t.Fatalf("NewEncoding(%q, %q) failed: %v", tc.delims, tc.escape, err)
		}
		if err := enc.Extend(tc.levels); err != nil {
			t.Errorf("NewEncoding(%q, %q).Extend(%d) failed: %v", tc.delims, tc.escape, tc.levels, err)
			continue
		}
		if got := enc.Delimiters(); got != tc.want {
			t.Errorf("NewEncoding(%q, %q).Extend(%d) = %q, want %q", tc.delims, tc.escape, tc.levels, got, tc.want)
		}
	}
}

func TestExtendCapacity(t *testing.T) {
	enc, err := rda.NewEncoding("|;", '\\')
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.Extend(rda.MaxDimension); err != nil {
		t.Fatalf("Extend(%d) failed: %v", rda.MaxDimension, err)
	}
	if got := enc.Len(); got != rda.MaxDimension {
		t.Errorf("Len() = %d, want %d", got, rda.MaxDimension)
	}

	err = enc.Extend(rda.MaxDimension + 1)
	if !rda.IsCapacityError(err) {
		t.Errorf("Extend(%d) = %v, want CapacityError", rda.MaxDimension+1, err)
	}

	// Using a pool character as the escape leaves one delimiter short.
	enc, err = rda.NewEncoding("", '|')
	if err != nil {
		t.Fatal(err)
	}
	err = enc.Extend(rda.MaxDimension)
	var ce rda.CapacityError
	if !errors.As(err, &ce) {
		t.Fatalf("Extend(%d) = %v, want CapacityError", rda.MaxDimension, err)
	}
	if got := enc.Len(); got != 0 {
		t.Errorf("failed Extend changed the table, Len() = %d", got)
	}
}

func TestIsCapacityError(t *testing.T) {
	ce := rda.CapacityError{Levels: 50, Max: 40}
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("nope"), false},
		{ce, true},
		{fmt.Errorf("wrapped: %w", ce), true},
	}
	for _, tc := range tests {
		if got := rda.IsCapacityError(tc.err); got != tc.want {
			t.Errorf("IsCapacityError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestNewWithEncoding(t *testing.T) {
	enc, err := rda.NewEncoding("#_", '/')
	if err != nil {
		t.Fatal(err)
	}
	v := rda.New(enc)
	mustSetPath(t, v, []int{0, 1}, "a#b")
	mustSetPath(t, v, []int{1}, "c/d")
	checkString(t, "custom encoding", v.String(), `#_/#_a/#b#c//d`)
	got := rda.Parse(v.String())
	if !got.ContentEqual(v) {
		t.Error("custom encoding does not round trip")
	}
}
