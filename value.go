package rda

import (
	"errors"
	"fmt"
	"iter"

	"github.com/creachadair/mds/value"
)

// A Value is a node of an RDA tree.
//
// A Value is either a scalar, which holds a string, or a container,
// which holds an ordered list of child Values. A scalar's string may
// be absent: such a Value is a dummy, a placeholder created to fill
// the gap when an index beyond the end of a container is addressed.
//
// The root of a tree owns the tree's [Encoding]. Every other node
// reaches it through its parent.
//
// The zero Value is an empty root scalar using the default encoding.
//
// A Value is not safe for concurrent use. Use [Value.Clone] to give
// each goroutine its own copy.
type Value struct {
	// parent is the container this value is a child of, or nil for
	// the root. It is used to find the tree's Encoding and to compute
	// the value's level.
	parent *Value
	// enc is the root's delimiter table. Only meaningful on roots.
	enc *Encoding

	scalar value.Maybe[string]
	elems  []*Value
}

// New returns an empty tree using the given encoding. If enc is nil,
// the tree uses the default encoding.
func New(enc *Encoding) *Value {
	return &Value{enc: enc}
}

// Scalar returns a new scalar tree holding s.
func Scalar(s string) *Value {
	return &Value{scalar: value.Just(s)}
}

func (v *Value) newChild(scalar value.Maybe[string]) *Value {
	return &Value{parent: v, scalar: scalar}
}

func (v *Value) root() *Value {
	for v.parent != nil {
		v = v.parent
	}
	return v
}

// Encoding returns the delimiter table of the tree v belongs to.
func (v *Value) Encoding() *Encoding {
	r := v.root()
	if r.enc == nil {
		r.enc = defaultEncoding()
	}
	return r.enc
}

// Level returns the depth of v in its tree. The root is at level 0.
func (v *Value) Level() int {
	ret := 0
	for p := v.parent; p != nil; p = p.parent {
		ret++
	}
	return ret
}

// Dimension returns the maximum nesting depth below v. Scalars have
// dimension 0, and a container has one more than its deepest child.
func (v *Value) Dimension() int {
	ret := -1
	for _, c := range v.elems {
		ret = max(ret, c.Dimension())
	}
	return ret + 1
}

// Len returns the number of children of v, including dummies.
func (v *Value) Len() int {
	return len(v.elems)
}

// IsDummy reports whether v carries no data: it is a scalar with an
// absent value, or a container whose children are all dummies.
func (v *Value) IsDummy() bool {
	if len(v.elems) == 0 {
		_, ok := v.scalar.GetOK()
		return !ok
	}
	for _, c := range v.elems {
		if !c.IsDummy() {
			return false
		}
	}
	return true
}

// lastNonDummy returns the index of v's last child that is not a
// dummy, or -1 if there is none.
func (v *Value) lastNonDummy() int {
	i := len(v.elems) - 1
	for i >= 0 && v.elems[i].IsDummy() {
		i--
	}
	return i
}

// children returns v's children, minus trailing dummies.
func (v *Value) children() []*Value {
	return v.elems[:v.lastNonDummy()+1]
}

// Scalar returns v's string value. For a container, this is the
// string value of its first child. Absent values read as "".
func (v *Value) Scalar() string {
	if len(v.elems) > 0 {
		return v.elems[0].Scalar()
	}
	s, _ := v.scalar.GetOK()
	return s
}

// SetScalar makes v a scalar holding s. Any children of v are
// discarded.
func (v *Value) SetScalar(s string) {
	v.elems = nil
	v.scalar = value.Just(s)
}

// promote turns a scalar into a container whose only child holds the
// former scalar value. It is a no-op on containers.
func (v *Value) promote() {
	if len(v.elems) == 0 {
		v.elems = append(v.elems, v.newChild(v.scalar))
	}
}

// grow extends v's children with dummies so that index i exists.
func (v *Value) grow(i int) {
	for len(v.elems) <= i {
		v.elems = append(v.elems, v.newChild(value.Absent[string]()))
	}
}

var (
	errNegativeIndex = errors.New("negative index")
	errCycle         = errors.New("value is an ancestor of its new parent")
)

// Get returns v's child at index i.
//
// If v is a scalar, it first becomes a container whose child 0 holds
// the former scalar value. If i is beyond the end of v's children,
// dummies are appended to fill the gap. Get only fails if i is
// negative, or if the tree's [Encoding] cannot provide another
// nesting level.
func (v *Value) Get(i int) (*Value, error) {
	if i < 0 {
		return nil, fmt.Errorf("getting child %d: %w", i, errNegativeIndex)
	}
	if err := v.Encoding().Extend(v.Level() + 1); err != nil {
		return nil, err
	}
	v.promote()
	v.grow(i)
	return v.elems[i], nil
}

// Set stores child at index i of v, growing and promoting v like
// [Value.Get] does.
//
// The child is adopted, not copied: from now on it belongs to v's
// tree and uses v's tree's [Encoding]. Use [Value.Clone] to insert a
// copy instead. A nil child stores a dummy.
//
// If the tree's encoding cannot provide enough levels for child's
// dimension, Set returns a [CapacityError] and leaves v unchanged.
func (v *Value) Set(i int, child *Value) error {
	if i < 0 {
		return fmt.Errorf("setting child %d: %w", i, errNegativeIndex)
	}
	need := v.Level() + 1
	if child != nil {
		for p := v; p != nil; p = p.parent {
			if p == child {
				return fmt.Errorf("setting child %d: %w", i, errCycle)
			}
		}
		need += child.Dimension()
	}
	if err := v.Encoding().Extend(need); err != nil {
		return err
	}
	v.promote()
	v.grow(i)
	if child == nil {
		child = v.newChild(value.Absent[string]())
	} else {
		child.parent = v
		child.enc = nil
	}
	v.elems[i] = child
	return nil
}

// SetValue stores a scalar holding s at index i of v.
func (v *Value) SetValue(i int, s string) error {
	return v.Set(i, Scalar(s))
}

// AddValue appends a scalar holding s to v's children.
func (v *Value) AddValue(s string) error {
	return v.SetValue(len(v.elems), s)
}

// AddChild appends child to v's children. See [Value.Set] for
// details.
func (v *Value) AddChild(child *Value) error {
	return v.Set(len(v.elems), child)
}

// Values returns the string values of v's children. If v is a
// scalar, Values returns v's own value as the only element.
func (v *Value) Values() []string {
	if len(v.elems) == 0 {
		return []string{v.Scalar()}
	}
	ret := make([]string, 0, len(v.elems))
	for _, c := range v.elems {
		ret = append(ret, c.Scalar())
	}
	return ret
}

// SetValues replaces v's children with scalars holding vals. If vals
// is empty, v becomes a dummy.
func (v *Value) SetValues(vals []string) error {
	if len(vals) == 0 {
		v.elems = nil
		v.scalar = value.Absent[string]()
		return nil
	}
	if err := v.Encoding().Extend(v.Level() + 1); err != nil {
		return err
	}
	v.elems = make([]*Value, 0, len(vals))
	for _, s := range vals {
		v.elems = append(v.elems, v.newChild(value.Just(s)))
	}
	return nil
}

// All returns an iterator over v's children and their indices,
// including dummies.
func (v *Value) All() iter.Seq2[int, *Value] {
	return func(yield func(int, *Value) bool) {
		for i, c := range v.elems {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Clone returns a deep copy of v, as the root of a new tree with its
// own copy of v's encoding.
func (v *Value) Clone() *Value {
	ret := v.clone(nil)
	ret.enc = v.Encoding().Clone()
	return ret
}

func (v *Value) clone(parent *Value) *Value {
	ret := &Value{
		parent: parent,
		scalar: v.scalar,
	}
	if len(v.elems) > 0 {
		ret.elems = make([]*Value, len(v.elems))
		for i, c := range v.elems {
			ret.elems[i] = c.clone(ret)
		}
	}
	return ret
}
