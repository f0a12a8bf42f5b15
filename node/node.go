// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package node holds nested configuration fragments whose settings
// stay raw strings until the fragment is materialized.
package node

import (
	"errors"
	"fmt"
	"sort"

	"github.com/z5labs/multilang/convert"
)

// ClassKey is the setting naming the implementation of a Named node.
// A bare node path, e.g. "kinesisCredentialsProvider", is bound to it.
const ClassKey = "class"

// ErrEmptyKey is returned when setting a value without a name.
var ErrEmptyKey = errors.New("node setting name must not be empty")

// ErrNoImplementation is returned when materializing a Named node
// whose ClassKey was never set.
var ErrNoImplementation = errors.New("implementation type name is not set")

// Node stores the raw settings of a strategy of type T.
//
// The zero value is ready to use.
type Node[T any] struct {
	settings map[string]string
}

// Set stores value under name without converting it.
func (n *Node[T]) Set(name, value string) error {
	if name == "" {
		return ErrEmptyKey
	}
	if n.settings == nil {
		n.settings = make(map[string]string)
	}
	n.settings[name] = value
	return nil
}

// Get returns the raw value stored under name.
func (n *Node[T]) Get(name string) (string, bool) {
	v, ok := n.settings[name]
	return v, ok
}

// Names returns the names of every stored setting in lexical order.
func (n *Node[T]) Names() []string {
	names := make([]string, 0, len(n.settings))
	for name := range n.settings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored settings.
func (n *Node[T]) Len() int {
	return len(n.settings)
}

// Materialize converts every stored setting onto a copy of defaults.
// Names matching no field of T are returned as unused. The node
// itself is never modified so Materialize may be called repeatedly.
func (n *Node[T]) Materialize(r *convert.Registry, defaults T) (v T, unused []string, err error) {
	v = defaults
	if len(n.settings) == 0 {
		return v, nil, nil
	}

	unused, err = r.Decode(n.settings, &v)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return v, unused, nil
}

// Named stores the implementation name of a pluggable T, plus any
// other settings given alongside it.
//
// The zero value is ready to use.
type Named[T any] struct {
	Node[T]
}

// TypeName returns the implementation name, if one was set.
func (n *Named[T]) TypeName() (string, bool) {
	name, ok := n.Get(ClassKey)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// MaterializeError occurs when a Named node can not be turned into
// an instance of its implementation type.
type MaterializeError struct {
	TypeName string
	Cause    error
}

// Error implements the error interface.
func (e MaterializeError) Error() string {
	return fmt.Sprintf("failed to materialize %q: %s", e.TypeName, e.Cause)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e MaterializeError) Unwrap() error {
	return e.Cause
}

// Materialize converts the implementation name to an instance of T
// using r, which must know T as a convert.NamedType. Every setting
// other than ClassKey is returned as unused.
func (n *Named[T]) Materialize(r *convert.Registry) (v T, unused []string, err error) {
	name, ok := n.TypeName()
	if !ok {
		return v, nil, MaterializeError{Cause: ErrNoImplementation}
	}

	err = r.Convert(name, &v)
	if err != nil {
		return v, nil, MaterializeError{TypeName: name, Cause: err}
	}

	for _, setting := range n.Names() {
		if setting != ClassKey {
			unused = append(unused, setting)
		}
	}
	return v, unused, nil
}
