// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/z5labs/multilang/config"
	"github.com/z5labs/multilang/config/key"
	"github.com/z5labs/multilang/convert"
	"github.com/z5labs/multilang/metrics"
	"github.com/z5labs/multilang/node"
	"github.com/z5labs/multilang/retrieval"
)

// ErrUnknownPath is wrapped by a BindingError when a setting names
// neither a field nor a nested node.
var ErrUnknownPath = errors.New("unknown setting")

// BindingError occurs when a setting can not be bound to the
// Configuration.
type BindingError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e BindingError) Error() string {
	return fmt.Sprintf("failed to bind setting %s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e BindingError) Unwrap() error {
	return e.Cause
}

type setter func(*convert.Registry, *Configuration, string) error

// field converts into the field itself. Convert leaves it
// untouched on failure.
func field[T any](f func(*Configuration) *T) setter {
	return func(r *convert.Registry, c *Configuration, value string) error {
		return r.Convert(value, f(c))
	}
}

func optional[T any](f func(*Configuration) *config.Value[T]) setter {
	return func(r *convert.Registry, c *Configuration, value string) error {
		var v T
		err := r.Convert(value, &v)
		if err != nil {
			return err
		}
		*f(c) = config.ValueOf(v)
		return nil
	}
}

var scalars = map[string]setter{
	"applicationName":    field(func(c *Configuration) *string { return &c.applicationName }),
	"streamName":         field(func(c *Configuration) *string { return &c.streamName }),
	"workerId":           field(func(c *Configuration) *string { return &c.workerID }),
	"regionName":         field(func(c *Configuration) *string { return &c.regionName }),
	"kinesisEndpoint":    field(func(c *Configuration) *string { return &c.kinesisEndpoint }),
	"dynamoDBEndpoint":   field(func(c *Configuration) *string { return &c.dynamoDBEndpoint }),
	"executableName":     field(func(c *Configuration) *string { return &c.processing.ExecutableName }),
	"processingLanguage": field(func(c *Configuration) *string { return &c.processing.ProcessingLanguage }),

	"initialPositionInStream": field(func(c *Configuration) *retrieval.InitialPosition { return &c.initialPosition }),
	"retrievalMode":           field(func(c *Configuration) *retrieval.Mode { return &c.retrievalMode }),

	"maxRecords":                   optional(func(c *Configuration) *config.Value[int] { return &c.maxRecords }),
	"idleTimeBetweenReadsInMillis": optional(func(c *Configuration) *config.Value[int64] { return &c.idleTimeBetweenReads }),

	"maxLeasesForWorker":               field(func(c *Configuration) *int { return &c.lease.MaxLeasesForWorker }),
	"maxLeasesToStealAtOneTime":        field(func(c *Configuration) *int { return &c.lease.MaxLeasesToStealAtOneTime }),
	"failoverTimeMillis":               field(func(c *Configuration) *int64 { return &c.lease.FailoverTimeMillis }),
	"shardSyncIntervalMillis":          field(func(c *Configuration) *int64 { return &c.lease.ShardSyncIntervalMillis }),
	"cleanupLeasesUponShardCompletion": field(func(c *Configuration) *bool { return &c.lease.CleanupLeasesUponShardCompletion }),
	"initialLeaseTableReadCapacity":    field(func(c *Configuration) *int { return &c.lease.InitialLeaseTableReadCapacity }),
	"initialLeaseTableWriteCapacity":   field(func(c *Configuration) *int { return &c.lease.InitialLeaseTableWriteCapacity }),

	"callProcessRecordsEvenForEmptyRecordList":  field(func(c *Configuration) *bool { return &c.processing.CallProcessRecordsEvenForEmptyRecordList }),
	"parentShardPollIntervalMillis":             field(func(c *Configuration) *int64 { return &c.processing.ParentShardPollIntervalMillis }),
	"taskBackoffTimeMillis":                     field(func(c *Configuration) *int64 { return &c.processing.TaskBackoffTimeMillis }),
	"shutdownGraceMillis":                       field(func(c *Configuration) *int64 { return &c.processing.ShutdownGraceMillis }),
	"validateSequenceNumberBeforeCheckpointing": field(func(c *Configuration) *bool { return &c.processing.ValidateSequenceNumberBeforeCheckpointing }),

	"metricsLevel":             field(func(c *Configuration) *metrics.Level { return &c.metrics.Level }),
	"metricsBufferTimeMillis":  field(func(c *Configuration) *int64 { return &c.metrics.BufferTimeMillis }),
	"metricsMaxQueueSize":      field(func(c *Configuration) *int { return &c.metrics.MaxQueueSize }),
	"metricsEnabledDimensions": field(func(c *Configuration) *metrics.Dimensions { return &c.metrics.EnabledDimensions }),
}

type settable interface {
	Set(name, value string) error
}

const (
	kinesisCredentialsPath    = "kinesisCredentialsProvider"
	dynamoDBCredentialsPath   = "dynamoDBCredentialsProvider"
	cloudWatchCredentialsPath = "cloudWatchCredentialsProvider"
	fanOutPath                = "fanoutConfig"
	pollingPath               = "pollingConfig"
)

var nodes = map[string]func(*Configuration) settable{
	kinesisCredentialsPath:    func(c *Configuration) settable { return &c.kinesisCredentials },
	dynamoDBCredentialsPath:   func(c *Configuration) settable { return &c.dynamoDBCredentials },
	cloudWatchCredentialsPath: func(c *Configuration) settable { return &c.cloudWatchCredentials },
	fanOutPath:                func(c *Configuration) settable { return &c.fanOut },
	pollingPath:               func(c *Configuration) settable { return &c.polling },
}

// aliases maps legacy top-level names onto their current name.
var aliases = map[string]string{
	"AWSCredentialsProvider":           kinesisCredentialsPath,
	"AWSCredentialsProviderDynamoDB":   dynamoDBCredentialsPath,
	"AWSCredentialsProviderCloudWatch": cloudWatchCredentialsPath,
}

// Paths returns every recognized top-level setting name, including
// nested node names and legacy aliases, in lexical order.
func Paths() []string {
	paths := make([]string, 0, len(scalars)+len(nodes)+len(aliases))
	for p := range scalars {
		paths = append(paths, p)
	}
	for p := range nodes {
		paths = append(paths, p)
	}
	for p := range aliases {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Binder assigns raw settings to a Configuration.
type Binder struct {
	log         *slog.Logger
	conv        *convert.Registry
	unknownKeys UnknownKeyPolicy
}

// NewBinder returns a Binder configured by opts.
func NewBinder(opts ...Option) *Binder {
	o := newOptions(opts...)
	return &Binder{
		log:         o.logger(),
		conv:        o.converter(),
		unknownKeys: o.unknownKeys,
	}
}

// Bind assigns value to the setting at the dotted path. Scalars are
// converted immediately, so an invalid value fails here and leaves c
// unchanged. Nested node settings are stored as is; a bare node path
// sets the node's implementation name.
func (b *Binder) Bind(c *Configuration, path, value string) error {
	chain := key.Parse(path)
	head := chain.Head().Key()
	if canonical, ok := aliases[head]; ok {
		head = canonical
	}

	if set, ok := scalars[head]; ok && len(chain) == 1 {
		err := set(b.conv, c, value)
		if err != nil {
			return bindError(path, err)
		}
		b.log.Debug("bound setting", slog.String(path, value))
		return nil
	}

	if get, ok := nodes[head]; ok {
		name := node.ClassKey
		if len(chain) > 1 {
			name = chain.Tail().Key()
		}
		err := get(c).Set(name, value)
		if err != nil {
			return BindingError{Path: path, Cause: err}
		}
		b.log.Debug("bound setting", slog.String(path, value))
		return nil
	}

	return unknownKey(b.log, b.unknownKeys, path)
}

// BindAll binds every setting in lexical order of their paths and
// stops at the first failure.
func (b *Binder) BindAll(c *Configuration, settings config.Settings) error {
	for _, path := range settings.Keys() {
		err := b.Bind(c, path, settings[path])
		if err != nil {
			return err
		}
	}
	return nil
}

func bindError(path string, err error) error {
	var cerr convert.ConversionError
	if errors.As(err, &cerr) {
		cerr.Key = path
		return cerr
	}
	return BindingError{Path: path, Cause: err}
}

func unknownKey(log *slog.Logger, policy UnknownKeyPolicy, path string) error {
	if policy == FailOnUnknownKeys {
		return BindingError{Path: path, Cause: ErrUnknownPath}
	}
	log.Warn("ignoring unknown setting", slog.String("path", path))
	return nil
}
