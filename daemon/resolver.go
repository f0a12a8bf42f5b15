// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/z5labs/multilang/convert"
	"github.com/z5labs/multilang/factory"
	"github.com/z5labs/multilang/internal/logging"
	"github.com/z5labs/multilang/metrics"
	"github.com/z5labs/multilang/node"
	"github.com/z5labs/multilang/retrieval"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ValidationError occurs when a setting is missing or out of range
// once binding is done.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// NodeError occurs when a nested node fails to materialize.
type NodeError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e NodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e NodeError) Unwrap() error {
	return e.Cause
}

// Resolver turns a bound Configuration into a Resolved.
type Resolver struct {
	log         *slog.Logger
	conv        *convert.Registry
	unknownKeys UnknownKeyPolicy
}

// NewResolver returns a Resolver configured by opts.
func NewResolver(opts ...Option) *Resolver {
	o := newOptions(opts...)
	return &Resolver{
		log:         o.logger(),
		conv:        o.converter(),
		unknownKeys: o.unknownKeys,
	}
}

// Resolve validates c, materializes its credentials providers and
// the one retrieval strategy selected, and freezes the result.
// c is only read so resolving it again returns an equal Resolved.
func (r *Resolver) Resolve(ctx context.Context, c *Configuration) (_ Resolved, err error) {
	spanCtx, span := otel.Tracer("daemon").Start(ctx, "Resolver.Resolve")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	err = validate(c)
	if err != nil {
		r.log.ErrorContext(spanCtx, "invalid configuration", logging.Error(err))
		return Resolved{}, err
	}

	clients, err := r.resolveClients(spanCtx, c)
	if err != nil {
		r.log.ErrorContext(spanCtx, "failed to resolve credentials providers", logging.Error(err))
		return Resolved{}, err
	}

	mode := retrieval.ResolveMode(c.retrievalMode, c.maxRecords.IsSet())
	span.SetAttributes(attribute.String("retrieval.mode", mode.String()))

	strategy, err := r.resolveStrategy(spanCtx, c, mode)
	if err != nil {
		r.log.ErrorContext(spanCtx, "failed to resolve retrieval strategy", logging.Error(err))
		return Resolved{}, err
	}

	l := c.lease
	l.TableName = c.applicationName
	l.WorkerID = c.workerID

	m := c.metrics
	m.EnabledDimensions = append(metrics.Dimensions(nil), c.metrics.EnabledDimensions...)

	r.log.InfoContext(
		spanCtx,
		"resolved configuration",
		slog.String("application_name", c.applicationName),
		slog.String("stream_name", c.streamName),
		slog.String("retrieval_mode", mode.String()),
	)
	return Resolved{
		applicationName: c.applicationName,
		lease:           l,
		retrieval: retrieval.Config{
			StreamName:      c.streamName,
			InitialPosition: c.initialPosition,
			Strategy:        strategy,
		},
		metrics:    m,
		processing: c.processing,
		clients:    clients,
	}, nil
}

func (r *Resolver) resolveClients(ctx context.Context, c *Configuration) (ClientConfig, error) {
	kinesisCreds, err := r.resolveCredentials(ctx, kinesisCredentialsPath, &c.kinesisCredentials, nil)
	if err != nil {
		return ClientConfig{}, err
	}
	dynamoDBCreds, err := r.resolveCredentials(ctx, dynamoDBCredentialsPath, &c.dynamoDBCredentials, kinesisCreds)
	if err != nil {
		return ClientConfig{}, err
	}
	cloudWatchCreds, err := r.resolveCredentials(ctx, cloudWatchCredentialsPath, &c.cloudWatchCredentials, kinesisCreds)
	if err != nil {
		return ClientConfig{}, err
	}

	return ClientConfig{
		Region:                c.regionName,
		KinesisEndpoint:       c.kinesisEndpoint,
		DynamoDBEndpoint:      c.dynamoDBEndpoint,
		KinesisCredentials:    kinesisCreds,
		DynamoDBCredentials:   dynamoDBCreds,
		CloudWatchCredentials: cloudWatchCreds,
	}, nil
}

// resolveCredentials falls back to def when n names no
// implementation. Without a def that is a factory.ResolutionError.
func (r *Resolver) resolveCredentials(ctx context.Context, path string, n *node.Named[aws.CredentialsProvider], def aws.CredentialsProvider) (aws.CredentialsProvider, error) {
	p, unused, err := n.Materialize(r.conv)
	if errors.Is(err, node.ErrNoImplementation) {
		if def != nil {
			return def, nil
		}
		return nil, NodeError{Path: path, Cause: factory.ResolutionError{Cause: node.ErrNoImplementation}}
	}
	if err != nil {
		return nil, NodeError{Path: path, Cause: err}
	}

	err = r.checkUnused(ctx, path, unused)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Resolver) resolveStrategy(ctx context.Context, c *Configuration, mode retrieval.Mode) (retrieval.Strategy, error) {
	switch mode {
	case retrieval.ModePolling:
		pc, unused, err := c.polling.Materialize(r.conv, retrieval.DefaultPollingConfig())
		if err != nil {
			return nil, NodeError{Path: pollingPath, Cause: err}
		}
		err = r.checkUnused(ctx, pollingPath, unused)
		if err != nil {
			return nil, err
		}
		if n, ok := c.maxRecords.Value(); ok {
			pc.MaxRecords = n
		}
		if n, ok := c.idleTimeBetweenReads.Value(); ok {
			pc.IdleTimeBetweenReadsInMillis = n
		}
		return pc, validatePolling(pc)
	default:
		fc, unused, err := c.fanOut.Materialize(r.conv, retrieval.DefaultFanOutConfig())
		if err != nil {
			return nil, NodeError{Path: fanOutPath, Cause: err}
		}
		err = r.checkUnused(ctx, fanOutPath, unused)
		if err != nil {
			return nil, err
		}
		return fc, validateFanOut(fc)
	}
}

func (r *Resolver) checkUnused(ctx context.Context, prefix string, unused []string) error {
	for _, name := range unused {
		path := prefix + "." + name
		if r.unknownKeys == FailOnUnknownKeys {
			return BindingError{Path: path, Cause: ErrUnknownPath}
		}
		r.log.WarnContext(ctx, "ignoring unknown setting", slog.String("path", path))
	}
	return nil
}

func validate(c *Configuration) error {
	if c.applicationName == "" {
		return ValidationError{Field: "applicationName", Reason: "is required"}
	}
	if c.streamName == "" {
		return ValidationError{Field: "streamName", Reason: "is required"}
	}

	return firstError(
		positive("maxLeasesForWorker", int64(c.lease.MaxLeasesForWorker)),
		positive("maxLeasesToStealAtOneTime", int64(c.lease.MaxLeasesToStealAtOneTime)),
		nonNegative("failoverTimeMillis", c.lease.FailoverTimeMillis),
		nonNegative("shardSyncIntervalMillis", c.lease.ShardSyncIntervalMillis),
		positive("initialLeaseTableReadCapacity", int64(c.lease.InitialLeaseTableReadCapacity)),
		positive("initialLeaseTableWriteCapacity", int64(c.lease.InitialLeaseTableWriteCapacity)),
		nonNegative("parentShardPollIntervalMillis", c.processing.ParentShardPollIntervalMillis),
		nonNegative("taskBackoffTimeMillis", c.processing.TaskBackoffTimeMillis),
		nonNegative("shutdownGraceMillis", c.processing.ShutdownGraceMillis),
		nonNegative("metricsBufferTimeMillis", c.metrics.BufferTimeMillis),
		positive("metricsMaxQueueSize", int64(c.metrics.MaxQueueSize)),
	)
}

func validatePolling(c retrieval.PollingConfig) error {
	return firstError(
		positive("maxRecords", int64(c.MaxRecords)),
		nonNegative("idleTimeBetweenReadsInMillis", c.IdleTimeBetweenReadsInMillis),
		nonNegative(pollingPath+".retryGetRecordsInSeconds", int64(c.RetryGetRecordsInSeconds)),
		nonNegative(pollingPath+".maxGetRecordsThreadPool", int64(c.MaxGetRecordsThreadPool)),
	)
}

func validateFanOut(c retrieval.FanOutConfig) error {
	return firstError(
		nonNegative(fanOutPath+".maxDescribeStreamSummaryRetries", int64(c.MaxDescribeStreamSummaryRetries)),
		nonNegative(fanOutPath+".maxDescribeStreamConsumerRetries", int64(c.MaxDescribeStreamConsumerRetries)),
		nonNegative(fanOutPath+".registerStreamConsumerRetries", int64(c.RegisterStreamConsumerRetries)),
		nonNegative(fanOutPath+".retryBackoffMillis", c.RetryBackoffMillis),
	)
}

func positive(name string, n int64) error {
	if n > 0 {
		return nil
	}
	return ValidationError{Field: name, Reason: fmt.Sprintf("must be greater than zero: %d", n)}
}

func nonNegative(name string, n int64) error {
	if n >= 0 {
		return nil
	}
	return ValidationError{Field: name, Reason: fmt.Sprintf("must not be negative: %d", n)}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
