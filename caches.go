package rda

import (
	"errors"
	"reflect"
	"sync"
)

var errNotFound = errors.New("cache entry not found")

// cache is a concurrency-safe map of values derived from
// reflect.Types. Derivation errors are cached as well, so that a bad
// type is only inspected once.
type cache[V any] struct {
	m sync.Map // reflect.Type -> cacheEntry[V]
}

type cacheEntry[V any] struct {
	val V
	err error
}

// Get returns the value or error cached for t. It returns errNotFound
// if t has no entry.
func (c *cache[V]) Get(t reflect.Type) (V, error) {
	ent, ok := c.m.Load(t)
	if !ok {
		var zero V
		return zero, errNotFound
	}
	e := ent.(cacheEntry[V])
	return e.val, e.err
}

// Set caches v for t.
func (c *cache[V]) Set(t reflect.Type, v V) {
	c.m.Store(t, cacheEntry[V]{val: v})
}

// SetErr caches err for t.
func (c *cache[V]) SetErr(t reflect.Type, err error) {
	c.m.Store(t, cacheEntry[V]{err: err})
}

// builder derives functions for a type and all the types it
// references, in a single pass.
//
// A type that refers back to itself, directly or through other types,
// gets a forwarding function for its inner references. Forwarders
// read their target from a cell that is filled in once the outer
// derivation completes, so a builder's results must not be used until
// its top-level get call has returned.
type builder[F any] struct {
	derive  func(b *builder[F], t reflect.Type) (F, error)
	forward func(cell *F) F

	cells map[reflect.Type]*F
	done  map[reflect.Type]bool
}

func newBuilder[F any](derive func(*builder[F], reflect.Type) (F, error), forward func(*F) F) *builder[F] {
	return &builder[F]{
		derive:  derive,
		forward: forward,
		cells:   map[reflect.Type]*F{},
		done:    map[reflect.Type]bool{},
	}
}

func (b *builder[F]) get(t reflect.Type) (F, error) {
	if cell, ok := b.cells[t]; ok {
		if b.done[t] {
			return *cell, nil
		}
		debugf("recursive reference to %s, forwarding", t)
		return b.forward(cell), nil
	}
	cell := new(F)
	b.cells[t] = cell
	ret, err := b.derive(b, t)
	if err != nil {
		var zero F
		return zero, err
	}
	*cell = ret
	b.done[t] = true
	return ret, nil
}
