package rda

import (
	"cmp"
	"encoding"
	"errors"
	"reflect"
	"slices"
)

// Marshal returns the RDA tree for v.
//
// Marshal traverses the value v recursively. If an encountered value
// implements [Marshaler], Marshal calls MarshalRDA on it to produce
// its subtree. Otherwise, if it implements [encoding.TextMarshaler],
// Marshal calls MarshalText and stores the result as a scalar.
//
// Otherwise, Marshal uses the following type-dependent default
// encodings:
//
// Boolean, integer, floating point, complex and string values encode
// as scalars, in the format of the corresponding strconv.Format
// function.
//
// Byte slices encode as a scalar holding the slice's bytes.
//
// Array and slice values encode as containers, one child per
// element. Nil and empty slices encode as dummies.
//
// Struct values encode as containers. Each exported struct field is
// stored at the next container index, in declaration order. A field
// tagged `rda:"N"` is stored at index N, and following fields
// continue from there. Fields tagged `rda:"-"` are skipped. Embedded
// struct fields are encoded as if their inner exported fields were
// fields in the outer struct.
//
// Map values encode as containers of [key, value] pairs, sorted by
// key. The map's key type must be a boolean, number or string type,
// or implement [encoding.TextMarshaler].
//
// Pointer and interface values encode as the value they hold. Nil
// pointers and interfaces encode as dummies.
//
// Channel, function and unsafe pointer values cannot be encoded.
// Attempting to encode such values causes Marshal to return a
// [TypeError]. Values nested deeper than [MaxDimension] levels,
// including cyclic data structures, also cause Marshal to return a
// [TypeError].
func Marshal(v any) (*Value, error) {
	if v == nil {
		return New(nil), nil
	}
	val := reflect.ValueOf(v)
	enc, err := encoderFor(val.Type())
	if err != nil {
		return nil, err
	}
	ret, err := enc(&encodeState{}, val)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		ret = New(nil)
	}
	return ret, nil
}

// Marshaler is the interface implemented by types that can marshal
// themselves into an RDA tree.
//
// The returned tree is adopted by the tree being built, with the
// usual semantics of [Value.Set]. MarshalRDA may return a nil Value
// to encode a dummy.
type Marshaler interface {
	MarshalRDA() (*Value, error)
}

// MarshalRDA implements [Marshaler]. It returns a copy of v.
func (v *Value) MarshalRDA() (*Value, error) {
	return v.Clone(), nil
}

// encoderFunc returns the subtree for v. A nil subtree with a nil
// error encodes a dummy.
type encoderFunc func(st *encodeState, v reflect.Value) (*Value, error)

// encodeState is the state of a single Marshal call.
type encodeState struct {
	depth int
}

// enter records that encoding is descending into a container of type
// t, and fails if the nesting is deeper than any tree can hold.
func (st *encodeState) enter(t reflect.Type) error {
	st.depth++
	if st.depth > MaxDimension {
		return typeErr(t, "value nested deeper than %d levels, possibly cyclic", MaxDimension)
	}
	return nil
}

func (st *encodeState) leave() {
	st.depth--
}

var encoders cache[encoderFunc]

// encoderFor returns the encoder func for the given type, if the type
// is representable as an RDA tree.
func encoderFor(t reflect.Type) (encoderFunc, error) {
	if ret, err := encoders.Get(t); err == nil {
		return ret, nil
	} else if !errors.Is(err, errNotFound) {
		return nil, err
	}
	ret, err := newBuilder(deriveEncoder, forwardEncoder).get(t)
	if err != nil {
		encoders.SetErr(t, err)
		return nil, err
	}
	encoders.Set(t, ret)
	return ret, nil
}

func forwardEncoder(cell *encoderFunc) encoderFunc {
	return func(st *encodeState, v reflect.Value) (*Value, error) {
		return (*cell)(st, v)
	}
}

func deriveEncoder(b *builder[encoderFunc], t reflect.Type) (encoderFunc, error) {
	// If a value's pointer type implements Marshaler, use it. Values
	// that aren't addressable get copied first.
	if t.Implements(marshalerType) {
		return newMarshalEncoder(), nil
	} else if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(marshalerType) {
		return newAddrEncoder(newMarshalEncoder()), nil
	}
	if t.Implements(textMarshalerType) {
		return newTextEncoder(), nil
	} else if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textMarshalerType) {
		return newAddrEncoder(newTextEncoder()), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return newPtrEncoder(b, t)
	case reflect.Interface:
		return newInterfaceEncoder(), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && !implementsAny(t.Elem(), marshalerType, textMarshalerType) {
			return newBytesEncoder(), nil
		}
		return newSliceEncoder(b, t)
	case reflect.Array:
		return newSliceEncoder(b, t)
	case reflect.Struct:
		return newStructEncoder(b, t)
	case reflect.Map:
		return newMapEncoder(b, t)
	}
	if scalarKinds.Has(t.Kind()) {
		return newScalarEncoder(), nil
	}
	return nil, typeErr(t, "no rda mapping for type")
}

func newAddrEncoder(ptr encoderFunc) encoderFunc {
	return func(st *encodeState, v reflect.Value) (*Value, error) {
		return ptr(st, condAddr(v))
	}
}

func newMarshalEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) (*Value, error) {
		if isNil(v) {
			return nil, nil
		}
		m := v.Interface().(Marshaler)
		return m.MarshalRDA()
	}
}

func newTextEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) (*Value, error) {
		if isNil(v) {
			return nil, nil
		}
		m := v.Interface().(encoding.TextMarshaler)
		bs, err := m.MarshalText()
		if err != nil {
			return nil, err
		}
		return Scalar(string(bs)), nil
	}
}

func newPtrEncoder(b *builder[encoderFunc], t reflect.Type) (encoderFunc, error) {
	elemEnc, err := b.get(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(st *encodeState, v reflect.Value) (*Value, error) {
		if v.IsNil() {
			return nil, nil
		}
		return elemEnc(st, v.Elem())
	}
	return fn, nil
}

func newInterfaceEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) (*Value, error) {
		if v.IsNil() {
			return nil, nil
		}
		inner := v.Elem()
		enc, err := encoderFor(inner.Type())
		if err != nil {
			return nil, err
		}
		return enc(st, inner)
	}
}

func newScalarEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) (*Value, error) {
		return Scalar(formatScalar(v)), nil
	}
}

func newBytesEncoder() encoderFunc {
	return func(st *encodeState, v reflect.Value) (*Value, error) {
		if v.IsNil() {
			return nil, nil
		}
		return Scalar(string(v.Bytes())), nil
	}
}

func newSliceEncoder(b *builder[encoderFunc], t reflect.Type) (encoderFunc, error) {
	elemEnc, err := b.get(t.Elem())
	if err != nil {
		return nil, err
	}
	fn := func(st *encodeState, v reflect.Value) (*Value, error) {
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}
		if err := st.enter(t); err != nil {
			return nil, err
		}
		defer st.leave()

		ret := &Value{}
		for i := range v.Len() {
			c, err := elemEnc(st, v.Index(i))
			if err != nil {
				return nil, err
			}
			if err := ret.Set(i, c); err != nil {
				return nil, err
			}
		}
		return ret, nil
	}
	return fn, nil
}

func newStructEncoder(b *builder[encoderFunc], t reflect.Type) (encoderFunc, error) {
	fs, err := getStructInfo(t)
	if err != nil {
		return nil, typeErr(t, "getting struct info: %w", err)
	}
	fieldEncs := make([]encoderFunc, len(fs.StructFields))
	for i, f := range fs.StructFields {
		fieldEncs[i], err = b.get(f.Type)
		if err != nil {
			return nil, err
		}
	}

	fn := func(st *encodeState, v reflect.Value) (*Value, error) {
		if err := st.enter(t); err != nil {
			return nil, err
		}
		defer st.leave()

		ret := &Value{}
		for i, f := range fs.StructFields {
			c, err := fieldEncs[i](st, f.GetWithZero(v))
			if err != nil {
				return nil, err
			}
			if err := ret.Set(f.Pos, c); err != nil {
				return nil, err
			}
		}
		return ret, nil
	}
	return fn, nil
}

// mapEntry is a map key and its string form.
type mapEntry struct {
	key reflect.Value
	str string
}

func newMapEncoder(b *builder[encoderFunc], t reflect.Type) (encoderFunc, error) {
	kt := t.Key()
	var (
		keyStr func(reflect.Value) (string, error)
		keyCmp func(a, b mapEntry) int
	)
	switch {
	case implementsAny(kt, textMarshalerType):
		keyStr = func(k reflect.Value) (string, error) {
			if !kt.Implements(textMarshalerType) {
				k = condAddr(k)
			}
			bs, err := k.Interface().(encoding.TextMarshaler).MarshalText()
			return string(bs), err
		}
		keyCmp = func(a, b mapEntry) int {
			return cmp.Compare(a.str, b.str)
		}
	case scalarKinds.Has(kt.Kind()):
		keyStr = func(k reflect.Value) (string, error) {
			return formatScalar(k), nil
		}
		cmpKeys := scalarCmp(kt)
		keyCmp = func(a, b mapEntry) int {
			return cmpKeys(a.key, b.key)
		}
	default:
		return nil, typeErr(t, "invalid map key type %s", kt)
	}

	valEnc, err := b.get(t.Elem())
	if err != nil {
		return nil, err
	}

	fn := func(st *encodeState, v reflect.Value) (*Value, error) {
		if v.IsNil() {
			return nil, nil
		}
		if err := st.enter(t); err != nil {
			return nil, err
		}
		defer st.leave()

		entries := make([]mapEntry, 0, v.Len())
		for _, k := range v.MapKeys() {
			s, err := keyStr(k)
			if err != nil {
				return nil, err
			}
			entries = append(entries, mapEntry{k, s})
		}
		slices.SortFunc(entries, keyCmp)

		ret := &Value{}
		for i, ent := range entries {
			val, err := valEnc(st, v.MapIndex(ent.key))
			if err != nil {
				return nil, err
			}
			pair := &Value{}
			if err := pair.SetValue(0, ent.str); err != nil {
				return nil, err
			}
			if err := pair.Set(1, val); err != nil {
				return nil, err
			}
			if err := ret.Set(i, pair); err != nil {
				return nil, err
			}
		}
		return ret, nil
	}
	return fn, nil
}
