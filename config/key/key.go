// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key provides types for strongly typed keys in key value pairs.
package key

import (
	"strings"
)

// Keyer is a common interface all value key types must implement.
type Keyer interface {
	Key() string
}

// Chain represents nested keys.
type Chain []Keyer

// Parse splits a dotted property path, e.g. "fanoutConfig.consumerArn",
// into a Chain. Empty segments are kept so callers can reject them.
func Parse(path string) Chain {
	parts := strings.Split(path, ".")
	chain := make(Chain, len(parts))
	for i, part := range parts {
		chain[i] = Name(part)
	}
	return chain
}

// Key implements the [Keyer] interface.
func (k Chain) Key() string {
	ss := make([]string, len(k))
	for i := 0; i < len(k); i++ {
		ss[i] = k[i].Key()
	}
	return strings.Join(ss, ".")
}

// Head returns the first segment of the chain or an empty
// Name if the chain is empty.
func (k Chain) Head() Name {
	if len(k) == 0 {
		return ""
	}
	return Name(k[0].Key())
}

// Tail returns every segment after the head. The returned
// Chain is empty if there's nothing after the head.
func (k Chain) Tail() Chain {
	if len(k) < 2 {
		return Chain{}
	}
	return k[1:]
}

// Name represents a single key. Name can be used other keys.
type Name string

// Key implements the [Keyer] interface.
func (k Name) Key() string {
	return string(k)
}
