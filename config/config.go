// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"sort"

	"github.com/z5labs/multilang/config/key"

	"github.com/spf13/cast"
)

// Store represents a general key value structure.
type Store interface {
	Set(key.Keyer, any) error
}

// Source defines valid config sources as those who can
// serialize themselves into a key value like structure.
type Source interface {
	Apply(Store) error
}

// Settings is the flat set of raw daemon settings, keyed by
// dotted property path. Values are kept as the strings they
// were given as; converting them is left to the binder.
type Settings map[string]string

// Read applies every Source, in order, to a fresh Settings.
// Subsequent sources override previous sources.
func Read(srcs ...Source) (Settings, error) {
	s := make(Settings)
	for _, src := range srcs {
		err := src.Apply(s)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// UnsupportedValueError occurs when a Source tries setting
// a value which has no string representation e.g. a list.
type UnsupportedValueError struct {
	Key   string
	Value any
	Cause error
}

// Error implements the error interface.
func (e UnsupportedValueError) Error() string {
	return fmt.Sprintf("config value for %s can not be represented as a string: %v", e.Key, e.Value)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e UnsupportedValueError) Unwrap() error {
	return e.Cause
}

// EmptyKeyError occurs when a Source tries setting a value without a key.
type EmptyKeyError struct {
	Value any
}

// Error implements the error interface.
func (e EmptyKeyError) Error() string {
	return fmt.Sprintf("attempted to set value to an empty key: %v", e.Value)
}

// Set implements the Store interface. Nested keys are flattened
// into their dotted form.
func (s Settings) Set(k key.Keyer, v any) error {
	name := k.Key()
	if name == "" {
		return EmptyKeyError{Value: v}
	}

	str, err := cast.ToStringE(v)
	if err != nil {
		return UnsupportedValueError{Key: name, Value: v, Cause: err}
	}
	s[name] = str
	return nil
}

// Apply implements the Source interface so Settings can be
// layered on top of other sources.
func (s Settings) Apply(store Store) error {
	for _, name := range s.Keys() {
		err := store.Set(key.Name(name), s[name])
		if err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the setting names in lexical order.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value represents a configuration value that may or may not be set.
// This distinguishes between "not set" and "set to zero value".
type Value[T any] struct {
	value T
	set   bool
}

// ValueOf returns a Value which has been set to v.
func ValueOf[T any](v T) Value[T] {
	return Value[T]{value: v, set: true}
}

// Value returns the underlying value and whether or not it was set.
func (v Value[T]) Value() (T, bool) {
	return v.value, v.set
}

// IsSet reports whether the value was explicitly set.
func (v Value[T]) IsSet() bool {
	return v.set
}

// Or returns the underlying value if set, otherwise def.
func (v Value[T]) Or(def T) T {
	if !v.set {
		return def
	}
	return v.value
}
