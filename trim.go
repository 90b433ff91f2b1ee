package rda

// TrimSoloBranch collapses every chain of single-child containers
// that ends in a scalar into that scalar, and reports whether v
// itself was collapsed.
//
// Trimming produces the most compact encoding of trees that use
// only a small part of their structure.
func (v *Value) TrimSoloBranch() bool {
	if len(v.elems) != 1 {
		for _, c := range v.elems {
			c.TrimSoloBranch()
		}
		return false
	}
	c := v.elems[0]
	if c.Dimension() == 0 || c.TrimSoloBranch() {
		v.SetScalar(c.Scalar())
		return true
	}
	return false
}

// Compress reduces the dimension of v's branches where possible: a
// container whose only non-dummy child is a scalar at index 0
// becomes that scalar. Compress works bottom up, so whole chains
// collapse in one call.
func (v *Value) Compress() {
	if len(v.elems) == 0 {
		return
	}
	for _, c := range v.elems {
		c.Compress()
	}
	for _, c := range v.elems[1:] {
		if !c.IsDummy() {
			return
		}
	}
	if c := v.elems[0]; c.Dimension() == 0 {
		v.SetScalar(c.Scalar())
	}
}
