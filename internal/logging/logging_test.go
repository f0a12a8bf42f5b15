// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type otelRecord struct {
	Message string `json:"msg"`
	OTel    struct {
		TraceID string `json:"trace_id"`
		SpanID  string `json:"span_id"`
	} `json:"otel"`
}

func TestHandler_Handle(t *testing.T) {
	t.Run("will not add trace id and span id", func(t *testing.T) {
		t.Run("if the span context is invalid", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			log.InfoContext(ctx, "test")

			var record otelRecord
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "test", record.Message) {
				return
			}
			if !assert.Empty(t, record.OTel.TraceID) {
				return
			}
			if !assert.Empty(t, record.OTel.SpanID) {
				return
			}
		})
	})

	t.Run("will add trace id and span id", func(t *testing.T) {
		t.Run("if the span context is valid", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

			exporter, err := stdouttrace.New(stdouttrace.WithWriter(io.Discard))
			if !assert.Nil(t, err) {
				return
			}
			tp := sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(exporter),
				sdktrace.WithResource(resource.Default()),
			)
			defer tp.Shutdown(context.Background())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			spanCtx, span := tp.Tracer("logging").Start(ctx, "test")
			defer span.End()
			if !assert.True(t, span.SpanContext().IsValid()) {
				return
			}

			log.InfoContext(spanCtx, "test")

			var record otelRecord
			err = json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, span.SpanContext().TraceID().String(), record.OTel.TraceID) {
				t.Log(buf.String())
				return
			}
			if !assert.Equal(t, span.SpanContext().SpanID().String(), record.OTel.SpanID) {
				t.Log(buf.String())
				return
			}
		})
	})

	t.Run("will mask sensitive attributes", func(t *testing.T) {
		t.Run("if they are logged directly", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

			log.Info("bound", slog.String("awsSecretKey", "hunter2"), slog.String("streamName", "orders"))

			var record map[string]any
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, Mask, record["awsSecretKey"]) {
				return
			}
			if !assert.Equal(t, "orders", record["streamName"]) {
				return
			}
		})

		t.Run("if they are nested in a group", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))

			log.Info("bound", slog.Group("setting", slog.String("sessionToken", "abc")))

			var record struct {
				Setting map[string]any `json:"setting"`
			}
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, Mask, record.Setting["sessionToken"]) {
				return
			}
		})

		t.Run("if they are added with WithAttrs", func(t *testing.T) {
			var buf bytes.Buffer
			var h slog.Handler = NewHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))
			h = h.WithAttrs([]slog.Attr{slog.String("password", "hunter2")})

			slog.New(h).Info("hello world")

			var record map[string]any
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, Mask, record["password"]) {
				return
			}
		})
	})
}

func TestNewHandler(t *testing.T) {
	t.Run("will discard records", func(t *testing.T) {
		t.Run("if the handler is nil", func(t *testing.T) {
			h := NewHandler(nil)
			if !assert.False(t, h.Enabled(context.Background(), slog.LevelError)) {
				return
			}
			if !assert.Nil(t, slog.New(h).Handler().Handle(context.Background(), slog.Record{})) {
				return
			}
		})
	})

	t.Run("will not wrap a Handler twice", func(t *testing.T) {
		h := NewHandler(slog.NewTextHandler(io.Discard, nil))
		if !assert.Same(t, h, NewHandler(h)) {
			return
		}
	})
}

func TestSensitive(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{name: "AWS_SECRET_ACCESS_KEY", expected: true},
		{name: "awsAccessKeyId", expected: true},
		{name: "dbPassword", expected: true},
		{name: "sessionToken", expected: true},
		{name: "fanoutConfig.consumerArn", expected: false},
		{name: "streamName", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Sensitive(tc.name))
		})
	}
}
