package rda

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// structField is the information about a struct field that needs to
// be marshaled/unmarshaled.
type structField struct {
	Name  string
	Index [][]int
	Type  reflect.Type
	// Pos is the index of the field's value in the struct's RDA
	// container.
	Pos int
}

// GetWithZero loads the struct field from structVal. If loading
// requires traversing a nil pointer into an embedded struct,
// GetWithZero returns a non-settable zero value of the field.
func (f *structField) GetWithZero(structVal reflect.Value) reflect.Value {
	v := structVal
	for i, hop := range f.Index {
		if i > 0 {
			if v.IsNil() {
				return reflect.Zero(f.Type)
			}
			v = v.Elem()
		}
		v = v.FieldByIndex(hop)
	}
	return v
}

// GetWithAlloc loads the struct field from structVal. If loading
// requires traversing a nil pointer into an embedded struct,
// GetWithAlloc allocates zero values appropriately. The returned
// [reflect.Value] is settable.
func (f *structField) GetWithAlloc(structVal reflect.Value) reflect.Value {
	v := structVal
	for i, hop := range f.Index {
		if i > 0 {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.FieldByIndex(hop)
	}
	return v
}

func (f *structField) String() string {
	kindStr := ""
	if ks := f.Type.Kind().String(); ks != f.Type.String() {
		kindStr = fmt.Sprintf(" (%s)", ks)
	}
	return fmt.Sprintf("%d: %s %s%s at %v", f.Pos, f.Name, f.Type, kindStr, f.Index)
}

// structInfo is the information about a struct relevant to
// marshaling/unmarshaling.
type structInfo struct {
	// Name is the struct's name, for use in diagnostics.
	Name string
	// Type is the struct's type, for use in diagnostics.
	Type reflect.Type

	// StructFields is the information about each struct field
	// eligible for RDA encoding/decoding, in declaration order.
	StructFields []*structField
}

func (s *structInfo) String() string {
	var ret strings.Builder
	fmt.Fprintf(&ret, "%s, fields:\n", s.Name)
	for _, f := range s.StructFields {
		ret.WriteString(f.String())
		ret.WriteByte('\n')
	}
	return ret.String()
}

var structInfos cache[*structInfo]

// getStructInfo returns the structInfo for t.
//
// Exported fields map to consecutive container indices in declaration
// order. A field tagged `rda:"N"` is stored at index N instead, and
// the fields after it continue from N+1. A field tagged `rda:"-"` is
// skipped.
//
// getStructInfo returns an error if t is not a struct, or if two
// fields claim the same index.
func getStructInfo(t reflect.Type) (*structInfo, error) {
	if ret, err := structInfos.Get(t); err == nil {
		return ret, nil
	} else if !errors.Is(err, errNotFound) {
		return nil, err
	}

	ret, err := deriveStructInfo(t)
	if err != nil {
		structInfos.SetErr(t, err)
		return nil, err
	}
	structInfos.Set(t, ret)
	debugf("struct info for %s", ret)
	return ret, nil
}

func deriveStructInfo(t reflect.Type) (*structInfo, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct", t)
	}

	ret := &structInfo{
		Name: t.String(),
		Type: t,
	}

	seen := map[int]string{}
	next := 0
	for field := range structFields(t, nil) {
		if !field.IsExported() {
			continue
		}
		pos, skip, err := parseStructTag(field)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", ret.Name, field.Name, err)
		}
		if skip {
			continue
		}
		if pos < 0 {
			pos = next
		}
		if prev, ok := seen[pos]; ok {
			return nil, fmt.Errorf("fields %s and %s of %s both use index %d", prev, field.Name, ret.Name, pos)
		}
		seen[pos] = field.Name
		next = pos + 1

		ret.StructFields = append(ret.StructFields, &structField{
			Name:  field.Name,
			Type:  field.Type,
			Index: allocSteps(t, field.Index),
			Pos:   pos,
		})
	}

	return ret, nil
}

// parseStructTag returns the information contained in field's "rda"
// struct tag. pos is -1 if the tag does not set an index.
func parseStructTag(field reflect.StructField) (pos int, skip bool, err error) {
	tag, ok := field.Tag.Lookup("rda")
	if !ok || tag == "" {
		return -1, false, nil
	}
	if tag == "-" {
		return -1, true, nil
	}
	pos, err = strconv.Atoi(tag)
	if err != nil || pos < 0 {
		return -1, false, fmt.Errorf("invalid rda struct tag %q, want a non-negative index or \"-\"", tag)
	}
	return pos, false, nil
}
