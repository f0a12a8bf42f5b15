// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/z5labs/multilang/config/key"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceFunc func(Store) error

func (f sourceFunc) Apply(store Store) error {
	return f(store)
}

type storeFunc func(key.Keyer, any) error

func (f storeFunc) Set(k key.Keyer, v any) error {
	return f(k, v)
}

type readFunc func([]byte) (int, error)

func (f readFunc) Read(b []byte) (int, error) {
	return f(b)
}

func TestRead(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if one of the Sources fails to apply itself to the store", func(t *testing.T) {
			srcErr := errors.New("failed to apply config")
			src := sourceFunc(func(s Store) error {
				return srcErr
			})

			_, err := Read(src)
			if !assert.ErrorIs(t, err, srcErr) {
				return
			}
		})
	})

	t.Run("will return empty Settings", func(t *testing.T) {
		t.Run("if no sources are provided", func(t *testing.T) {
			s, err := Read()
			if !assert.Nil(t, err) {
				return
			}
			if !assert.NotNil(t, s) {
				return
			}
			if !assert.Len(t, s, 0) {
				return
			}
		})
	})

	t.Run("will override config values", func(t *testing.T) {
		t.Run("if multiple sources are provided", func(t *testing.T) {
			s, err := Read(
				FromProperties(strings.NewReader("streamName = alice")),
				FromYaml(strings.NewReader("streamName: bob")),
			)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "bob", s["streamName"]) {
				return
			}
		})
	})

	t.Run("will be idempotent", func(t *testing.T) {
		t.Run("if Settings are used as the source", func(t *testing.T) {
			s, err := Read(Map{"streamName": "orders", "maxRecords": 10})
			if !assert.Nil(t, err) {
				return
			}

			s2, err := Read(s)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, s, s2) {
				return
			}
		})
	})
}

func TestSettings_Set(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the key is empty", func(t *testing.T) {
			s := make(Settings)
			err := s.Set(key.Chain{}, "world")

			var ierr EmptyKeyError
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
			if !assert.NotEmpty(t, ierr.Error()) {
				return
			}
		})

		t.Run("if the value has no string form", func(t *testing.T) {
			s := make(Settings)
			err := s.Set(key.Name("metricsEnabledDimensions"), []any{"Operation"})

			var ierr UnsupportedValueError
			if !assert.ErrorAs(t, err, &ierr) {
				return
			}
			if !assert.Equal(t, "metricsEnabledDimensions", ierr.Key) {
				return
			}
			if !assert.NotEmpty(t, ierr.Error()) {
				return
			}
		})
	})

	t.Run("will stringify values", func(t *testing.T) {
		testCases := []struct {
			name     string
			value    any
			expected string
		}{
			{name: "int", value: 10, expected: "10"},
			{name: "bool", value: true, expected: "true"},
			{name: "string", value: "fanout", expected: "fanout"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				s := make(Settings)
				err := s.Set(key.Chain{key.Name("a"), key.Name("b")}, tc.value)
				require.NoError(t, err)
				require.Equal(t, tc.expected, s["a.b"])
			})
		}
	})
}

func TestSettings_Keys(t *testing.T) {
	s := Settings{"b": "1", "a": "2", "c": "3"}
	require.Equal(t, []string{"a", "b", "c"}, s.Keys())
}

func TestValue(t *testing.T) {
	testCases := []struct {
		name        string
		value       Value[int]
		expectedVal int
		expectedOk  bool
		or          int
	}{
		{
			name:        "set value",
			value:       ValueOf(42),
			expectedVal: 42,
			expectedOk:  true,
			or:          42,
		},
		{
			name:        "set to zero value",
			value:       ValueOf(0),
			expectedVal: 0,
			expectedOk:  true,
			or:          0,
		},
		{
			name:        "unset value",
			value:       Value[int]{},
			expectedVal: 0,
			expectedOk:  false,
			or:          7,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			val, ok := tc.value.Value()
			require.Equal(t, tc.expectedOk, ok)
			require.Equal(t, tc.expectedOk, tc.value.IsSet())
			require.Equal(t, tc.expectedVal, val)
			require.Equal(t, tc.or, tc.value.Or(7))
		})
	}
}
