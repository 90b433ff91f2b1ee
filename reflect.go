package rda

import (
	"iter"
	"reflect"
)

// condAddr returns a pointer to v. If v is not addressable, the
// pointer is to a copy of v.
func condAddr(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v.Addr()
	}
	ret := reflect.New(v.Type())
	ret.Elem().Set(v)
	return ret
}

// isNil reports whether v is a nil pointer or interface.
func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// allocSteps partitions a multi-hop traversal of struct fields into
// segments that end at either the final value, or at a struct pointer
// that might be nil.
//
// This partition is used by [structField.GetWithZero] and
// [structField.GetWithAlloc] to load embedded struct fields that
// require traversing a nil pointer.
func allocSteps(t reflect.Type, idx []int) [][]int {
	var ret [][]int
	prev := 0
	t = t.Field(idx[0]).Type
	for i := 1; i < len(idx); i++ {
		if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
			// Hop through a struct pointer that might be nil, cut.
			ret = append(ret, idx[prev:i])
			prev = i
			t = t.Elem()
		}
		t = t.Field(idx[i]).Type
	}
	ret = append(ret, idx[prev:])
	return ret
}

// structFields iterates over the fields of t in declaration order.
// Untagged embedded structs, and pointers to them, are flattened into
// their own fields. The Index of each yielded field is the full path
// from t.
func structFields(t reflect.Type, idx []int) iter.Seq[reflect.StructField] {
	return func(yield func(reflect.StructField) bool) {
		for i := range t.NumField() {
			f := t.Field(i)
			idx = append(idx, i)
			if at := embeddedStruct(f); at != nil {
				for af := range structFields(at, idx) {
					if !yield(af) {
						return
					}
				}
				idx = idx[:len(idx)-1]
				continue
			}
			f.Index = append([]int(nil), idx...)
			if !yield(f) {
				return
			}
			idx = idx[:len(idx)-1]
		}
	}
}

// embeddedStruct returns the struct type that f embeds, or nil if f
// should be treated as a regular field.
func embeddedStruct(f reflect.StructField) reflect.Type {
	if !f.Anonymous {
		return nil
	}
	if _, tagged := f.Tag.Lookup("rda"); tagged {
		return nil
	}
	at := f.Type
	if at.Kind() == reflect.Pointer {
		at = at.Elem()
	}
	if at.Kind() != reflect.Struct {
		return nil
	}
	// Embedded types with their own codec are not flattened.
	if implementsAny(at, marshalerType, unmarshalerType) {
		return nil
	}
	return at
}

// implementsAny reports whether t or *t implements any of ifaces.
func implementsAny(t reflect.Type, ifaces ...reflect.Type) bool {
	pt := reflect.PointerTo(t)
	for _, i := range ifaces {
		if t.Implements(i) || pt.Implements(i) {
			return true
		}
	}
	return false
}
