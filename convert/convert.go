// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package convert turns raw string settings into typed values.
package convert

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// TagName is the struct tag used to map setting names onto fields.
const TagName = "config"

// ErrEmptyValue is returned when an empty string is given for a
// non-string target.
var ErrEmptyValue = errors.New("empty value")

// ConversionError occurs when a string value can not be parsed
// as the type of the field it's being assigned to.
type ConversionError struct {
	// Key is the setting name, if known.
	Key   string
	Value string
	Type  string
	Cause error
}

// Error implements the error interface.
func (e ConversionError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("failed to convert %q to %s: %s", e.Value, e.Type, e.Cause)
	}
	return fmt.Sprintf("failed to convert %s value %q to %s: %s", e.Key, e.Value, e.Type, e.Cause)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e ConversionError) Unwrap() error {
	return e.Cause
}

// InvalidTargetError occurs when the conversion target isn't a non-nil pointer.
type InvalidTargetError struct {
	Target any
}

// Error implements the error interface.
func (e InvalidTargetError) Error() string {
	return fmt.Sprintf("conversion target must be a non-nil pointer: %T", e.Target)
}

// Option configures a Registry.
type Option func(*Registry)

// NamedType registers instantiate as the conversion for every target
// of type T. The string value is treated as the name of an
// implementation of T.
func NamedType[T any](instantiate func(name string) (T, error)) Option {
	target := reflect.TypeOf((*T)(nil)).Elem()
	return func(r *Registry) {
		r.hooks = append(r.hooks, mapstructure.DecodeHookFuncType(func(f reflect.Type, t reflect.Type, data any) (any, error) {
			if t != target || f.Kind() != reflect.String {
				return nil, errInvalidDecodeCondition
			}
			return instantiate(data.(string))
		}))
	}
}

// Registry converts strings to base 10 integers, booleans, durations,
// enumerated values (any encoding.TextUnmarshaler) and named
// implementation types registered with NamedType.
//
// A Registry holds no state besides its hooks and is safe
// for concurrent use.
type Registry struct {
	hooks []mapstructure.DecodeHookFunc
}

// New returns a Registry with the default conversions plus any
// provided by opts.
func New(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	r.hooks = append(r.hooks,
		emptyStringHookFunc(),
		textUnmarshalerHookFunc(),
		timeDurationHookFunc(),
		intHookFunc(),
		boolHookFunc(),
	)
	return r
}

// Convert parses value as the type target points to and stores the
// result in it. target is left untouched if conversion fails.
func (r *Registry) Convert(value string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return InvalidTargetError{Target: target}
	}
	t := rv.Elem().Type()

	tmp := reflect.New(t)
	if u, ok := tmp.Interface().(encoding.TextUnmarshaler); ok {
		err := u.UnmarshalText([]byte(value))
		if err != nil {
			return ConversionError{Value: value, Type: t.String(), Cause: err}
		}
		rv.Elem().Set(tmp.Elem())
		return nil
	}

	dec, err := r.decoder(tmp.Interface(), nil)
	if err != nil {
		return err
	}
	err = dec.Decode(strings.TrimSpace(value))
	if err != nil {
		return ConversionError{Value: value, Type: t.String(), Cause: unwrapCoercion(err)}
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

// Decode converts each named value onto the field of the struct
// target points to whose config tag matches the name exactly.
// Names matching no field are returned, sorted, instead of failing.
func (r *Registry) Decode(values map[string]string, target any) (unused []string, err error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, InvalidTargetError{Target: target}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var md mapstructure.Metadata
		dec, err := r.decoder(target, &md)
		if err != nil {
			return nil, err
		}

		err = dec.Decode(map[string]any{name: values[name]})
		if err != nil {
			return nil, ConversionError{
				Key:   name,
				Value: values[name],
				Type:  fieldType(rv.Elem().Type(), name),
				Cause: unwrapCoercion(err),
			}
		}
		unused = append(unused, md.Unused...)
	}
	return unused, nil
}

func (r *Registry) decoder(result any, md *mapstructure.Metadata) (*mapstructure.Decoder, error) {
	return mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		Result:           result,
		Metadata:         md,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
		DecodeHook: composeDecodeHooks(r.hooks...),
	})
}

func fieldType(t reflect.Type, name string) string {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get(TagName) == name {
			return f.Type.String()
		}
	}
	return "unknown"
}

func unwrapCoercion(err error) error {
	var terr TypeCoercionError
	if errors.As(err, &terr) {
		return terr.Cause
	}
	return err
}
