// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0

// Package dres provides deferred results: placeholders for values that are produced later by the evaluation of a
// protocol tree.
package dres

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved is returned when a deferred result is read before the protocol producing it is done.
	ErrUnresolved = errors.New("unresolved result")
	// ErrAlreadyResolved is returned when a value is assigned twice to a single-assignment cell.
	ErrAlreadyResolved = errors.New("result already resolved")
)

// Deferred is a value of type T which may not exist yet.
type Deferred[T any] interface {
	// Get returns the value or an error wrapping ErrUnresolved if the value is not available yet.
	Get() (T, error)
}

// Must returns the value of d. It panics with the unresolved error if the value does not exist yet, reading a
// deferred result too early is a programming error.
func Must[T any](d Deferred[T]) T {
	v, err := d.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Resolved reports whether d can be read.
func Resolved[T any](d Deferred[T]) bool {
	_, err := d.Get()
	return err == nil
}

// Cell is a write-once, read-many deferred result.
type Cell[T any] struct {
	name  string
	value T
	set   bool
}

// NewCell returns an empty cell. The name shows up in the unresolved error.
func NewCell[T any](name string) *Cell[T] {
	return &Cell[T]{name: name}
}

// Set assigns the value of the cell.
func (c *Cell[T]) Set(v T) error {
	if c.set {
		return fmt.Errorf("%s: %w", c.label(), ErrAlreadyResolved)
	}
	c.value = v
	c.set = true
	return nil
}

// Get returns the value of the cell.
func (c *Cell[T]) Get() (T, error) {
	if !c.set {
		var zero T
		return zero, fmt.Errorf("%s: %w", c.label(), ErrUnresolved)
	}
	return c.value, nil
}

func (c *Cell[T]) label() string {
	if c.name == "" {
		return "cell"
	}
	return c.name
}

type known[T any] struct {
	value T
}

func (k known[T]) Get() (T, error) {
	return k.value, nil
}

// Known returns an already resolved deferred result.
func Known[T any](v T) Deferred[T] {
	return known[T]{value: v}
}

// Func is a deferred result computed on every read.
type Func[T any] func() (T, error)

// Get calls the function.
func (f Func[T]) Get() (T, error) {
	return f()
}

type memo[T any] struct {
	f     func() (T, error)
	value T
}

// Memo returns a deferred result computed by f on the first successful read and cached afterwards. Reads failing
// because an input is unresolved are retried on the next read.
func Memo[T any](f func() (T, error)) Deferred[T] {
	return &memo[T]{f: f}
}

func (m *memo[T]) Get() (T, error) {
	if m.f == nil {
		return m.value, nil
	}
	v, err := m.f()
	if err != nil {
		return v, err
	}
	m.value, m.f = v, nil
	return v, nil
}

// Map returns a deferred result applying f to the value of d once d is resolved. The value is computed once.
func Map[T, U any](d Deferred[T], f func(T) U) Deferred[U] {
	return Memo(func() (U, error) {
		v, err := d.Get()
		if err != nil {
			var zero U
			return zero, err
		}
		return f(v), nil
	})
}

// Map2 combines two deferred results.
func Map2[T, U, V any](a Deferred[T], b Deferred[U], f func(T, U) V) Deferred[V] {
	return Memo(func() (V, error) {
		var zero V
		x, err := a.Get()
		if err != nil {
			return zero, err
		}
		y, err := b.Get()
		if err != nil {
			return zero, err
		}
		return f(x, y), nil
	})
}

// All collects a slice of deferred results into a deferred slice.
func All[T any](ds []Deferred[T]) Deferred[[]T] {
	return Func[[]T](func() ([]T, error) {
		out := make([]T, len(ds))
		for i, d := range ds {
			v, err := d.Get()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	})
}

// Forward is a deferred result whose target is bound after the forward itself was handed out.
// The builder returns forwards for computations which have not been built yet.
type Forward[T any] struct {
	target Deferred[T]
}

// Bind sets the target of the forward.
func (f *Forward[T]) Bind(d Deferred[T]) error {
	if f.target != nil {
		return fmt.Errorf("forward: %w", ErrAlreadyResolved)
	}
	f.target = d
	return nil
}

// Bound reports whether the target is set.
func (f *Forward[T]) Bound() bool {
	return f.target != nil
}

// Get returns the value of the target.
func (f *Forward[T]) Get() (T, error) {
	if f.target == nil {
		var zero T
		return zero, fmt.Errorf("computation not built yet: %w", ErrUnresolved)
	}
	return f.target.Get()
}
