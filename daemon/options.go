// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package daemon

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/z5labs/multilang/convert"
	"github.com/z5labs/multilang/credentials"
	"github.com/z5labs/multilang/factory"
	"github.com/z5labs/multilang/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// UnknownKeyPolicy decides what happens to a setting no field or
// node claims.
type UnknownKeyPolicy int

const (
	// FailOnUnknownKeys rejects unknown settings with a BindingError.
	FailOnUnknownKeys UnknownKeyPolicy = iota

	// IgnoreUnknownKeys logs a warning and drops unknown settings.
	IgnoreUnknownKeys
)

// String implements the fmt.Stringer interface.
func (p UnknownKeyPolicy) String() string {
	if p == IgnoreUnknownKeys {
		return "ignore"
	}
	return "fail"
}

// UnknownPolicyError occurs when an UnknownKeyPolicy is parsed from
// anything other than "fail" or "ignore".
type UnknownPolicyError struct {
	Value string
}

// Error implements the error interface.
func (e UnknownPolicyError) Error() string {
	return fmt.Sprintf("unknown key policy must be fail or ignore: %s", e.Value)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (p *UnknownKeyPolicy) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch strings.ToLower(s) {
	case "fail":
		*p = FailOnUnknownKeys
	case "ignore":
		*p = IgnoreUnknownKeys
	default:
		return UnknownPolicyError{Value: s}
	}
	return nil
}

type options struct {
	logHandler  slog.Handler
	unknownKeys UnknownKeyPolicy
	credentials *factory.Registry[aws.CredentialsProvider]
}

// Option configures a Binder or Resolver.
type Option interface {
	applyOption(*options)
}

type optionFunc func(*options)

func (f optionFunc) applyOption(o *options) {
	f(o)
}

// LogHandler sets the handler log records are written to.
// Records are discarded by default.
func LogHandler(h slog.Handler) Option {
	return optionFunc(func(o *options) {
		o.logHandler = h
	})
}

// UnknownKeys sets the policy for settings nothing recognizes.
// The default is FailOnUnknownKeys.
func UnknownKeys(p UnknownKeyPolicy) Option {
	return optionFunc(func(o *options) {
		o.unknownKeys = p
	})
}

// CredentialsProviders replaces the registry credentials provider
// names are resolved against. The default is credentials.Registry().
func CredentialsProviders(r *factory.Registry[aws.CredentialsProvider]) Option {
	return optionFunc(func(o *options) {
		o.credentials = r
	})
}

func newOptions(opts ...Option) *options {
	o := &options{
		logHandler:  logging.NoopHandler{},
		unknownKeys: FailOnUnknownKeys,
	}
	for _, opt := range opts {
		opt.applyOption(o)
	}
	if o.credentials == nil {
		o.credentials = credentials.Registry()
	}
	return o
}

func (o *options) logger() *slog.Logger {
	return logging.New(o.logHandler)
}

func (o *options) converter() *convert.Registry {
	return convert.New(
		convert.NamedType(credentials.Instantiator(o.credentials)),
	)
}
