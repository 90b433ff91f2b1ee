package rda

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
)

// Unmarshal stores the content of tree in the value pointed to by v.
// If v is nil or not a pointer, Unmarshal returns an error.
//
// Generally, Unmarshal applies the inverse of the rules used by
// [Marshal]. Unmarshal is lenient about the shape of tree: children
// that are missing or dummies decode as the zero value of their
// target, and children beyond what the target can hold are ignored.
//
// Unmarshal traverses the value v recursively. If an encountered
// value implements [Unmarshaler], Unmarshal calls UnmarshalRDA to
// unmarshal it. Otherwise, if it implements
// [encoding.TextUnmarshaler], Unmarshal calls UnmarshalText with the
// subtree's string value. Both methods are called through a pointer
// to the target, so they should have a pointer receiver.
//
// Otherwise, Unmarshal uses the following type-dependent default
// decodings:
//
// Boolean, integer, floating point and complex values are parsed from
// the subtree's string value with the corresponding strconv.Parse
// function. An empty string decodes as zero.
//
// String and byte slice values are set to the subtree's string value.
//
// Slice values are replaced with a new slice holding one element per
// child of the subtree, ignoring trailing dummies. A scalar subtree
// decodes as a slice with a single element, unless it holds the
// empty string, which decodes as an empty slice. Array values are
// filled from the subtree's children in order, and the remaining
// elements are set to zero.
//
// Struct values decode each field from the child at the field's
// container index, as described in [Marshal].
//
// Map values are replaced with a new map holding the subtree's
// [key, value] pairs. If a key appears more than once, the last value
// wins.
//
// Pointers decode as the value pointed to. Unmarshal allocates zero
// values as needed when it encounters nil pointers. A dummy subtree
// decodes as a nil pointer.
//
// Empty interface values decode as a string for scalar subtrees, and
// as an []any of the children for containers, with dummies decoding
// as nil.
//
// Channel, function, unsafe pointer and non-empty interface values
// cannot be decoded. Attempting to decode into such values causes
// Unmarshal to return a [TypeError].
func Unmarshal(tree *Value, v any) error {
	if v == nil {
		return fmt.Errorf("can't unmarshal into nil interface")
	}
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer {
		return fmt.Errorf("can't unmarshal into a non-pointer")
	}
	if val.IsNil() {
		return fmt.Errorf("can't unmarshal into a nil pointer")
	}
	dec, err := decoderFor(val.Type().Elem())
	if err != nil {
		return err
	}
	return dec(tree, val.Elem())
}

// Unmarshaler is the interface implemented by types that can
// unmarshal themselves from an RDA tree.
//
// UnmarshalRDA should have a pointer receiver, so that it can modify
// its target.
//
// The tree passed to UnmarshalRDA is owned by the caller. It must be
// copied with [Value.Clone] if it needs to be retained.
type Unmarshaler interface {
	UnmarshalRDA(tree *Value) error
}

// UnmarshalRDA implements [Unmarshaler]. It replaces v's content with
// a copy of tree.
func (v *Value) UnmarshalRDA(tree *Value) error {
	return v.replace(tree.Clone())
}

// decoderFunc stores src in v. src is nil if the tree has no value
// at the position being decoded.
type decoderFunc func(src *Value, v reflect.Value) error

var decoders cache[decoderFunc]

// decoderFor returns the decoder func for the given type, if the type
// can be decoded from an RDA tree.
func decoderFor(t reflect.Type) (decoderFunc, error) {
	if ret, err := decoders.Get(t); err == nil {
		return ret, nil
	} else if !errors.Is(err, errNotFound) {
		return nil, err
	}
	ret, err := newBuilder(deriveDecoder, forwardDecoder).get(t)
	if err != nil {
		decoders.SetErr(t, err)
		return nil, err
	}
	decoders.Set(t, ret)
	return ret, nil
}

func forwardDecoder(cell *decoderFunc) decoderFunc {
	return func(src *Value, v reflect.Value) error {
		return (*cell)(src, v)
	}
}

func deriveDecoder(b *builder[decoderFunc], t reflect.Type) (decoderFunc, error) {
	if t.Kind() != reflect.Pointer {
		if reflect.PointerTo(t).Implements(unmarshalerType) {
			return newUnmarshalDecoder(), nil
		} else if reflect.PointerTo(t).Implements(textUnmarshalerType) {
			return newTextDecoder(), nil
		}
	}

	switch t.Kind() {
	case reflect.Pointer:
		return newPtrDecoder(b, t)
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return nil, typeErr(t, "cannot decode into non-empty interface")
		}
		return newInterfaceDecoder(), nil
	case reflect.String:
		return newStringDecoder(), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && !implementsAny(t.Elem(), unmarshalerType, textUnmarshalerType) {
			return newBytesDecoder(), nil
		}
		return newSliceDecoder(b, t)
	case reflect.Array:
		return newArrayDecoder(b, t)
	case reflect.Struct:
		return newStructDecoder(b, t)
	case reflect.Map:
		return newMapDecoder(b, t)
	}
	if scalarKinds.Has(t.Kind()) {
		return newScalarDecoder(), nil
	}
	return nil, typeErr(t, "no rda mapping for type")
}

// absent reports whether src carries no data.
func absent(src *Value) bool {
	return src == nil || src.IsDummy()
}

// elementsOf returns the children that a list-like target should
// decode from src. It returns nil if src is absent.
func elementsOf(src *Value) []*Value {
	switch {
	case absent(src):
		return nil
	case len(src.elems) > 0:
		return src.children()
	case src.Scalar() == "":
		return []*Value{}
	default:
		return []*Value{src}
	}
}

func newUnmarshalDecoder() decoderFunc {
	return func(src *Value, v reflect.Value) error {
		if src == nil {
			src = &Value{}
		}
		return v.Addr().Interface().(Unmarshaler).UnmarshalRDA(src)
	}
}

func newTextDecoder() decoderFunc {
	return func(src *Value, v reflect.Value) error {
		if absent(src) {
			v.SetZero()
			return nil
		}
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(src.Scalar()))
	}
}

func newPtrDecoder(b *builder[decoderFunc], t reflect.Type) (decoderFunc, error) {
	elemDec, err := b.get(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(src *Value, v reflect.Value) error {
		if absent(src) {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(t.Elem()))
		}
		return elemDec(src, v.Elem())
	}
	return fn, nil
}

func newInterfaceDecoder() decoderFunc {
	return func(src *Value, v reflect.Value) error {
		if absent(src) {
			v.SetZero()
			return nil
		}
		v.Set(reflect.ValueOf(treeToAny(src)))
		return nil
	}
}

// treeToAny returns src as a string or []any.
func treeToAny(src *Value) any {
	if absent(src) {
		return nil
	}
	if len(src.elems) == 0 {
		return src.Scalar()
	}
	cs := src.children()
	ret := make([]any, len(cs))
	for i, c := range cs {
		ret[i] = treeToAny(c)
	}
	return ret
}

func newStringDecoder() decoderFunc {
	return func(src *Value, v reflect.Value) error {
		if src == nil {
			v.SetString("")
			return nil
		}
		v.SetString(src.Scalar())
		return nil
	}
}

func newScalarDecoder() decoderFunc {
	return func(src *Value, v reflect.Value) error {
		if src == nil || src.Scalar() == "" {
			v.SetZero()
			return nil
		}
		return parseScalar(src.Scalar(), v)
	}
}

func newBytesDecoder() decoderFunc {
	return func(src *Value, v reflect.Value) error {
		if absent(src) {
			v.SetZero()
			return nil
		}
		v.SetBytes([]byte(src.Scalar()))
		return nil
	}
}

func newSliceDecoder(b *builder[decoderFunc], t reflect.Type) (decoderFunc, error) {
	elemDec, err := b.get(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(src *Value, v reflect.Value) error {
		elems := elementsOf(src)
		if elems == nil {
			v.SetZero()
			return nil
		}
		ret := reflect.MakeSlice(t, len(elems), len(elems))
		for i, c := range elems {
			if err := elemDec(c, ret.Index(i)); err != nil {
				return err
			}
		}
		v.Set(ret)
		return nil
	}
	return fn, nil
}

func newArrayDecoder(b *builder[decoderFunc], t reflect.Type) (decoderFunc, error) {
	elemDec, err := b.get(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(src *Value, v reflect.Value) error {
		elems := elementsOf(src)
		for i := range v.Len() {
			var c *Value
			if i < len(elems) {
				c = elems[i]
			}
			if err := elemDec(c, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return fn, nil
}

func newStructDecoder(b *builder[decoderFunc], t reflect.Type) (decoderFunc, error) {
	fs, err := getStructInfo(t)
	if err != nil {
		return nil, typeErr(t, "getting struct info: %w", err)
	}
	fieldDecs := make([]decoderFunc, len(fs.StructFields))
	for i, f := range fs.StructFields {
		fieldDecs[i], err = b.get(f.Type)
		if err != nil {
			return nil, err
		}
	}

	fn := func(src *Value, v reflect.Value) error {
		for i, f := range fs.StructFields {
			var c *Value
			if src != nil {
				c, _ = src.Lookup(f.Pos)
			}
			if err := fieldDecs[i](c, f.GetWithAlloc(v)); err != nil {
				return fmt.Errorf("decoding %s.%s: %w", fs.Name, f.Name, err)
			}
		}
		return nil
	}
	return fn, nil
}

func newMapDecoder(b *builder[decoderFunc], t reflect.Type) (decoderFunc, error) {
	kt := t.Key()
	var keyDec func(s string, k reflect.Value) error
	switch {
	case reflect.PointerTo(kt).Implements(textUnmarshalerType):
		keyDec = func(s string, k reflect.Value) error {
			return k.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
		}
	case scalarKinds.Has(kt.Kind()):
		keyDec = parseScalar
	default:
		return nil, typeErr(t, "invalid map key type %s", kt)
	}

	valDec, err := b.get(t.Elem())
	if err != nil {
		return nil, err
	}

	fn := func(src *Value, v reflect.Value) error {
		if absent(src) {
			v.SetZero()
			return nil
		}
		ret := reflect.MakeMap(t)
		for _, pair := range elementsOf(src) {
			if pair.IsDummy() {
				continue
			}
			key := reflect.New(kt).Elem()
			if err := keyDec(pair.ValueAt(0), key); err != nil {
				return err
			}
			val := reflect.New(t.Elem()).Elem()
			c, _ := pair.Lookup(1)
			if err := valDec(c, val); err != nil {
				return err
			}
			ret.SetMapIndex(key, val)
		}
		v.Set(ret)
		return nil
	}
	return fn, nil
}
