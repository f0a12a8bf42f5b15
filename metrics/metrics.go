// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package metrics holds the settings of the worker's metrics publisher.
package metrics

import (
	"fmt"
	"strings"
	"time"
)

// Level controls how many metrics are published.
type Level int

const (
	LevelNone Level = iota
	LevelSummary
	LevelDetailed
)

// String implements the fmt.Stringer interface.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelSummary:
		return "SUMMARY"
	case LevelDetailed:
		return "DETAILED"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// UnknownLevelError occurs when a metrics level is not one of
// NONE, SUMMARY or DETAILED.
type UnknownLevelError struct {
	Value string
}

// Error implements the error interface.
func (e UnknownLevelError) Error() string {
	return fmt.Sprintf("unknown metrics level: %s", e.Value)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (l *Level) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch strings.ToUpper(s) {
	case "NONE":
		*l = LevelNone
	case "SUMMARY":
		*l = LevelSummary
	case "DETAILED":
		*l = LevelDetailed
	default:
		return UnknownLevelError{Value: s}
	}
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Dimensions is the set of dimensions metrics are published with.
type Dimensions []string

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// The text is a comma separated list; blank entries are dropped.
func (d *Dimensions) UnmarshalText(b []byte) error {
	parts := strings.Split(string(b), ",")
	dims := make(Dimensions, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dims = append(dims, part)
	}
	*d = dims
	return nil
}

// Config is the metrics configuration of a worker.
type Config struct {
	Level             Level      `yaml:"level"`
	BufferTimeMillis  int64      `yaml:"bufferTimeMillis"`
	MaxQueueSize      int        `yaml:"maxQueueSize"`
	EnabledDimensions Dimensions `yaml:"enabledDimensions"`
}

// DefaultConfig returns the metrics settings used for anything
// not configured.
func DefaultConfig() Config {
	return Config{
		Level:             LevelDetailed,
		BufferTimeMillis:  10000,
		MaxQueueSize:      10000,
		EnabledDimensions: Dimensions{"Operation", "ShardId"},
	}
}

// BufferTime returns BufferTimeMillis as a time.Duration.
func (c Config) BufferTime() time.Duration {
	return time.Duration(c.BufferTimeMillis) * time.Millisecond
}
