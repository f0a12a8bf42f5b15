// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"strings"

	"github.com/z5labs/multilang/config/key"
)

// Env represents a Source where its underlying values
// are extracted from environment variables.
//
// Only variables starting with the configured prefix are
// considered. The prefix is stripped and a double underscore
// separates nested keys, e.g. MULTILANG_fanoutConfig__consumerArn
// becomes fanoutConfig.consumerArn.
type Env struct {
	prefix  string
	environ func() []string
	exclude map[string]struct{}
}

// FromEnv returns a Source which will apply its config
// from the environment variables available to the
// current process.
func FromEnv(prefix string) Env {
	return Env{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// Exclude returns a copy of src which skips the variables with
// the given full names, prefix included.
func (src Env) Exclude(names ...string) Env {
	exclude := make(map[string]struct{}, len(src.exclude)+len(names))
	for name := range src.exclude {
		exclude[name] = struct{}{}
	}
	for _, name := range names {
		exclude[name] = struct{}{}
	}
	src.exclude = exclude
	return src
}

// Apply implements the Source interface.
func (src Env) Apply(store Store) error {
	for _, pair := range src.environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if _, skip := src.exclude[k]; skip {
			continue
		}
		name, ok := strings.CutPrefix(k, src.prefix)
		if !ok || name == "" {
			continue
		}

		err := store.Set(key.Parse(strings.ReplaceAll(name, "__", ".")), v)
		if err != nil {
			return err
		}
	}
	return nil
}
