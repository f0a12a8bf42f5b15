// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package multilang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/z5labs/multilang/config"
	"github.com/z5labs/multilang/config/key"
	"github.com/z5labs/multilang/convert"
	"github.com/z5labs/multilang/daemon"
	"github.com/z5labs/multilang/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceFunc func(config.Store) error

func (f sourceFunc) Apply(store config.Store) error {
	return f(store)
}

var required = config.Map{
	"applicationName":            "orders-app",
	"streamName":                 "orders",
	"kinesisCredentialsProvider": "DefaultCredentialsProvider",
}

func TestLoad(t *testing.T) {
	t.Run("will resolve nested yaml settings", func(t *testing.T) {
		yaml := strings.NewReader(`
applicationName: orders-app
streamName: orders
kinesisCredentialsProvider:
  class: DefaultCredentialsProvider
retrievalMode: polling
pollingConfig:
  maxRecords: 25
`)

		resolved, err := Load(context.Background(), nil, config.FromYaml(yaml))
		require.NoError(t, err)

		pc, ok := resolved.Retrieval().Polling()
		require.True(t, ok)
		require.Equal(t, 25, pc.MaxRecords)
	})

	t.Run("will return a ConfigReadError", func(t *testing.T) {
		t.Run("if a source fails to apply", func(t *testing.T) {
			srcErr := errors.New("failed to read")
			_, err := Load(context.Background(), nil, sourceFunc(func(config.Store) error {
				return srcErr
			}))

			var rerr ConfigReadError
			if !assert.ErrorAs(t, err, &rerr) {
				return
			}
			if !assert.ErrorIs(t, err, srcErr) {
				return
			}
			if !assert.NotEmpty(t, rerr.Error()) {
				return
			}
		})
	})

	t.Run("will return a ConfigBindError", func(t *testing.T) {
		t.Run("if the retrieval mode is unknown", func(t *testing.T) {
			_, err := Load(context.Background(), nil, required, config.Map{
				"retrievalMode": "streaming",
			})

			var berr ConfigBindError
			if !assert.ErrorAs(t, err, &berr) {
				return
			}

			var cerr convert.ConversionError
			if !assert.ErrorAs(t, err, &cerr) {
				return
			}

			var uerr retrieval.UnknownRetrievalTypeError
			if !assert.ErrorAs(t, err, &uerr) {
				return
			}
			if !assert.Contains(t, berr.Error(), "Unknown retrieval type: streaming") {
				return
			}
		})

		t.Run("if a setting is unknown", func(t *testing.T) {
			_, err := Load(context.Background(), nil, required, config.Map{
				"notASetting": true,
			})

			var berr daemon.BindingError
			if !assert.ErrorAs(t, err, &berr) {
				return
			}
		})
	})

	t.Run("will ignore unknown settings", func(t *testing.T) {
		t.Run("if configured to", func(t *testing.T) {
			opts := []daemon.Option{daemon.UnknownKeys(daemon.IgnoreUnknownKeys)}
			_, err := Load(context.Background(), opts, required, config.Map{
				"notASetting": true,
			})
			require.NoError(t, err)
		})
	})

	t.Run("will return a ConfigResolveError", func(t *testing.T) {
		t.Run("if a required setting is missing", func(t *testing.T) {
			_, err := Load(context.Background(), nil, config.Map{
				"applicationName": "orders-app",
			})

			var rerr ConfigResolveError
			if !assert.ErrorAs(t, err, &rerr) {
				return
			}

			var verr daemon.ValidationError
			if !assert.ErrorAs(t, err, &verr) {
				return
			}
			if !assert.Equal(t, "streamName", verr.Field) {
				return
			}
		})
	})

	t.Run("will recover a panicking source", func(t *testing.T) {
		_, err := Load(context.Background(), nil, sourceFunc(func(s config.Store) error {
			panic("boom")
		}))
		require.Error(t, err)
	})

	t.Run("will let later sources override earlier ones", func(t *testing.T) {
		resolved, err := Load(context.Background(), nil, required, sourceFunc(func(s config.Store) error {
			return s.Set(key.Name("streamName"), "payments")
		}))
		require.NoError(t, err)
		require.Equal(t, "payments", resolved.Retrieval().StreamName)
	})
}
