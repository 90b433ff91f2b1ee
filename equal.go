package rda

// ContentEqual reports whether v and other hold the same content,
// regardless of their encodings.
//
// Containers are equal if they have the same number of children and
// their children are pairwise equal. Scalars are equal if their
// string values are equal, with absent values reading as "".
//
// ContentEqual compares content the way the wire format sees it:
// trailing dummy children are ignored, and a scalar is equal to a
// container whose only child is an equal scalar, just as
// [Value.Get] promotes a scalar to such a container. This makes a
// tree equal to the decoding of its own encoding.
func (v *Value) ContentEqual(other *Value) bool {
	a, b := v.children(), other.children()
	switch {
	case len(a) == 0 && len(b) == 0:
		return v.ownScalar() == other.ownScalar()
	case len(a) == 0:
		a = []*Value{v}
	case len(b) == 0:
		b = []*Value{other}
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].ContentEqual(b[i]) {
			return false
		}
	}
	return true
}

// ownScalar returns v's own scalar, ignoring any children.
func (v *Value) ownScalar() string {
	s, _ := v.scalar.GetOK()
	return s
}
