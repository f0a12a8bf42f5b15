// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package factory maps implementation names to constructors.
//
// It stands in for loading a class by name: every supported
// implementation is registered explicitly, up front.
package factory

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/z5labs/multilang/internal/try"
)

// ErrUnknownImplementation is wrapped by a ResolutionError when no
// constructor has been registered under the requested name.
var ErrUnknownImplementation = errors.New("unknown implementation type")

// ResolutionError occurs when an implementation name can not be
// turned into an instance.
type ResolutionError struct {
	Name  string
	Cause error
}

// Error implements the error interface.
func (e ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve implementation %q: %s", e.Name, e.Cause)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e ResolutionError) Unwrap() error {
	return e.Cause
}

// Constructor builds an instance from the arguments following the
// implementation name, e.g. "ProfileCredentialsProvider|dev" passes "dev".
type Constructor[T any] func(args ...string) (T, error)

// Registry is a closed set of named constructors for T.
//
// Registration is expected to happen once at startup; a Registry is
// not safe for concurrent registration and instantiation.
type Registry[T any] struct {
	ctors map[string]Constructor[T]
}

// New returns an empty Registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		ctors: make(map[string]Constructor[T]),
	}
}

// Register adds ctor under name and any aliases. Registering a
// name twice replaces the earlier constructor.
func (r *Registry[T]) Register(ctor Constructor[T], name string, aliases ...string) {
	r.ctors[name] = ctor
	for _, alias := range aliases {
		r.ctors[alias] = ctor
	}
}

// Names returns every registered name in lexical order.
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instantiate looks up the constructor for typeName and calls it.
// typeName may carry pipe separated arguments: "name|arg1|arg2".
// Failures, including panics raised by the constructor, are
// returned as a ResolutionError.
func (r *Registry[T]) Instantiate(typeName string) (v T, err error) {
	name, args := parse(typeName)

	ctor, ok := r.ctors[name]
	if !ok {
		return v, ResolutionError{Name: name, Cause: ErrUnknownImplementation}
	}

	v, err = construct(ctor, args)
	if err != nil {
		var zero T
		return zero, ResolutionError{Name: name, Cause: err}
	}
	return v, nil
}

func construct[T any](ctor Constructor[T], args []string) (_ T, err error) {
	defer try.Recover(&err)

	return ctor(args...)
}

func parse(typeName string) (string, []string) {
	parts := strings.Split(typeName, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts[0], parts[1:]
}
