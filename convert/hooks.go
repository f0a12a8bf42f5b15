// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package convert

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

var errInvalidDecodeCondition = errors.New("invalid decode condition")

// TypeCoercionError occurs when a decode hook accepts a value
// for a target type but then fails to produce it.
type TypeCoercionError struct {
	from  reflect.Value
	to    reflect.Value
	Cause error
}

// Error implements the error interface.
func (e TypeCoercionError) Error() string {
	return fmt.Sprintf("failed to coerce value from %s to %s: %s", e.from.Type(), e.to.Type(), e.Cause)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e TypeCoercionError) Unwrap() error {
	return e.Cause
}

// composeDecodeHooks runs hooks in order. The first hook not
// rejecting the condition wins.
func composeDecodeHooks(hs ...mapstructure.DecodeHookFunc) mapstructure.DecodeHookFuncValue {
	return func(f, t reflect.Value) (any, error) {
		for _, h := range hs {
			v, err := mapstructure.DecodeHookExec(h, f, t)
			if err == nil {
				return v, nil
			}
			if err == errInvalidDecodeCondition {
				continue
			}
			return nil, TypeCoercionError{
				from:  f,
				to:    t,
				Cause: err,
			}
		}
		return f.Interface(), nil
	}
}

func emptyStringHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || data.(string) != "" {
			return nil, errInvalidDecodeCondition
		}
		switch t.Kind() {
		case reflect.String, reflect.Interface, reflect.Struct, reflect.Map:
			return nil, errInvalidDecodeCondition
		}
		return nil, ErrEmptyValue
	}
}

func textUnmarshalerHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return nil, errInvalidDecodeCondition
		}
		result := reflect.New(t)
		u, ok := result.Interface().(encoding.TextUnmarshaler)
		if !ok {
			return nil, errInvalidDecodeCondition
		}
		err := u.UnmarshalText([]byte(data.(string)))
		if err != nil {
			return nil, err
		}
		return result.Elem().Interface(), nil
	}
}

func timeDurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return nil, errInvalidDecodeCondition
		}

		switch f.Kind() {
		case reflect.String:
			return time.ParseDuration(data.(string))
		case reflect.Int:
			return time.Duration(int64(data.(int))), nil
		default:
			return nil, errInvalidDecodeCondition
		}
	}
}

// intHookFunc parses base 10 only. Plain int and uint targets hold
// 32 bit values, the range of the daemon's integer settings.
func intHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return nil, errInvalidDecodeCondition
		}
		s := strings.TrimSpace(data.(string))

		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, intBits(t))
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(n).Convert(t).Interface(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			n, err := strconv.ParseUint(s, 10, intBits(t))
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(n).Convert(t).Interface(), nil
		default:
			return nil, errInvalidDecodeCondition
		}
	}
}

func intBits(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Int, reflect.Uint:
		return 32
	default:
		return t.Bits()
	}
}

// ErrInvalidBool is returned for a boolean setting which is none of
// true, yes, y, on, 1, false, no, n, off or 0.
var ErrInvalidBool = errors.New("invalid boolean value")

func boolHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Bool {
			return nil, errInvalidDecodeCondition
		}

		switch strings.ToLower(strings.TrimSpace(data.(string))) {
		case "true", "yes", "y", "on", "1":
			return reflect.ValueOf(true).Convert(t).Interface(), nil
		case "false", "no", "n", "off", "0":
			return reflect.ValueOf(false).Convert(t).Interface(), nil
		default:
			return nil, ErrInvalidBool
		}
	}
}
