package rda

// Path returns the descendant of v addressed by indices, one index
// per level. An empty path returns v itself.
//
// Path calls [Value.Get] at each level, so it grows the tree as
// needed to make the addressed value exist.
func (v *Value) Path(indices ...int) (*Value, error) {
	cur := v
	for _, i := range indices {
		next, err := cur.Get(i)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// At is like [Value.Path], but panics if the path cannot be
// created. It simplifies code that builds trees of a known, small
// depth.
func (v *Value) At(indices ...int) *Value {
	ret, err := v.Path(indices...)
	if err != nil {
		panic(err)
	}
	return ret
}

// SetPath sets the scalar value of the descendant of v addressed by
// path to s, creating the descendant if needed. Only the addressed
// value is modified, its ancestors are reshaped only as much as
// [Value.Get] requires.
func (v *Value) SetPath(path []int, s string) error {
	target, err := v.Path(path...)
	if err != nil {
		return err
	}
	target.SetScalar(s)
	return nil
}

// Lookup returns the descendant of v addressed by indices, without
// modifying the tree. ok is false if the descendant does not exist
// yet.
//
// Lookup follows the same addressing rules as [Value.Path]: index 0
// of a scalar addresses the scalar itself.
func (v *Value) Lookup(indices ...int) (ret *Value, ok bool) {
	cur := v
	for _, i := range indices {
		switch {
		case i < 0:
			return nil, false
		case len(cur.elems) == 0:
			if i != 0 {
				return nil, false
			}
		case i < len(cur.elems):
			cur = cur.elems[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// ValueAt returns the string value of the descendant of v addressed
// by indices, without modifying the tree. Values that don't exist
// read as "".
func (v *Value) ValueAt(indices ...int) string {
	if c, ok := v.Lookup(indices...); ok {
		return c.Scalar()
	}
	return ""
}
