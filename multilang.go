// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package multilang

import (
	"context"
	"fmt"

	"github.com/z5labs/multilang/config"
	"github.com/z5labs/multilang/daemon"
	"github.com/z5labs/multilang/internal/try"
)

// Load reads the provided config sources into flat settings, binds
// them onto a fresh daemon.Configuration and resolves it. Later
// sources override earlier ones. opts configure both the binder and
// the resolver.
func Load(ctx context.Context, opts []daemon.Option, srcs ...config.Source) (_ daemon.Resolved, err error) {
	defer try.Recover(&err)

	settings, err := config.Read(srcs...)
	if err != nil {
		return daemon.Resolved{}, ConfigReadError{Cause: err}
	}

	cfg := daemon.NewConfiguration()
	err = daemon.NewBinder(opts...).BindAll(cfg, settings)
	if err != nil {
		return daemon.Resolved{}, ConfigBindError{Cause: err}
	}

	resolved, err := daemon.NewResolver(opts...).Resolve(ctx, cfg)
	if err != nil {
		return daemon.Resolved{}, ConfigResolveError{Cause: err}
	}
	return resolved, nil
}

// ConfigReadError
type ConfigReadError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigReadError) Error() string {
	return fmt.Sprintf("failed to read config source(s): %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigReadError) Unwrap() error {
	return e.Cause
}

// ConfigBindError
type ConfigBindError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigBindError) Error() string {
	return fmt.Sprintf("failed to bind settings: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigBindError) Unwrap() error {
	return e.Cause
}

// ConfigResolveError
type ConfigResolveError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigResolveError) Error() string {
	return fmt.Sprintf("failed to resolve configuration: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigResolveError) Unwrap() error {
	return e.Cause
}
