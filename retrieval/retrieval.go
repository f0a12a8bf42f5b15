// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package retrieval decides how records are read from a stream
// and holds the settings of each way of reading them.
package retrieval

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
)

// Mode selects a retrieval strategy.
type Mode int

const (
	// ModeUnset is the only Mode never chosen by the caller.
	ModeUnset Mode = iota
	ModeFanOut
	ModePolling
)

// String implements the fmt.Stringer interface.
func (m Mode) String() string {
	switch m {
	case ModeFanOut:
		return "FANOUT"
	case ModePolling:
		return "POLLING"
	default:
		return "UNSET"
	}
}

// UnknownRetrievalTypeError occurs when a retrieval mode is given
// which is neither fanout nor polling.
type UnknownRetrievalTypeError struct {
	Value string
}

// Error implements the error interface.
func (e UnknownRetrievalTypeError) Error() string {
	return fmt.Sprintf("Unknown retrieval type: %s", e.Value)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// Matching is case-insensitive. m is left untouched on failure.
func (m *Mode) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch strings.ToUpper(s) {
	case "FANOUT":
		*m = ModeFanOut
	case "POLLING":
		*m = ModePolling
	default:
		return UnknownRetrievalTypeError{Value: s}
	}
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ResolveMode picks the strategy to materialize. An explicit mode
// always wins. Otherwise setting the polling batch size selects
// polling and everything else falls back to fan-out.
func ResolveMode(explicit Mode, pollingFieldIsSet bool) Mode {
	switch {
	case explicit == ModeFanOut || explicit == ModePolling:
		return explicit
	case pollingFieldIsSet:
		return ModePolling
	default:
		return ModeFanOut
	}
}

// InitialPosition is where a worker starts reading a shard it has
// no checkpoint for.
type InitialPosition types.ShardIteratorType

const (
	PositionLatest      = InitialPosition(types.ShardIteratorTypeLatest)
	PositionTrimHorizon = InitialPosition(types.ShardIteratorTypeTrimHorizon)
)

// UnknownInitialPositionError occurs when an initial position is
// neither LATEST nor TRIM_HORIZON.
type UnknownInitialPositionError struct {
	Value string
}

// Error implements the error interface.
func (e UnknownInitialPositionError) Error() string {
	return fmt.Sprintf("unknown initial position in stream: %s", e.Value)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (p *InitialPosition) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch InitialPosition(strings.ToUpper(s)) {
	case PositionLatest:
		*p = PositionLatest
	case PositionTrimHorizon:
		*p = PositionTrimHorizon
	default:
		return UnknownInitialPositionError{Value: s}
	}
	return nil
}

// ShardIteratorType returns the iterator type a GetShardIterator
// call should be made with.
func (p InitialPosition) ShardIteratorType() types.ShardIteratorType {
	return types.ShardIteratorType(p)
}

// Strategy is either a FanOutConfig or a PollingConfig.
type Strategy interface {
	Mode() Mode
}

// FanOutConfig configures enhanced fan-out retrieval.
type FanOutConfig struct {
	ConsumerArn                      string `config:"consumerArn" yaml:"consumerArn,omitempty"`
	ConsumerName                     string `config:"consumerName" yaml:"consumerName,omitempty"`
	MaxDescribeStreamSummaryRetries  int    `config:"maxDescribeStreamSummaryRetries" yaml:"maxDescribeStreamSummaryRetries"`
	MaxDescribeStreamConsumerRetries int    `config:"maxDescribeStreamConsumerRetries" yaml:"maxDescribeStreamConsumerRetries"`
	RegisterStreamConsumerRetries    int    `config:"registerStreamConsumerRetries" yaml:"registerStreamConsumerRetries"`
	RetryBackoffMillis               int64  `config:"retryBackoffMillis" yaml:"retryBackoffMillis"`
}

// DefaultFanOutConfig returns the fan-out settings used for
// anything not configured.
func DefaultFanOutConfig() FanOutConfig {
	return FanOutConfig{
		MaxDescribeStreamSummaryRetries:  10,
		MaxDescribeStreamConsumerRetries: 10,
		RegisterStreamConsumerRetries:    10,
		RetryBackoffMillis:               1000,
	}
}

// Mode implements the Strategy interface.
func (FanOutConfig) Mode() Mode { return ModeFanOut }

// RetryBackoff returns RetryBackoffMillis as a time.Duration.
func (c FanOutConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMillis) * time.Millisecond
}

// DefaultMaxRecords is the polling batch size used when none is given.
const DefaultMaxRecords = 10000

// PollingConfig configures GetRecords based retrieval.
type PollingConfig struct {
	MaxRecords                   int   `config:"maxRecords" yaml:"maxRecords"`
	IdleTimeBetweenReadsInMillis int64 `config:"idleTimeBetweenReadsInMillis" yaml:"idleTimeBetweenReadsInMillis"`

	// RetryGetRecordsInSeconds and MaxGetRecordsThreadPool are
	// zero unless configured.
	RetryGetRecordsInSeconds int `config:"retryGetRecordsInSeconds" yaml:"retryGetRecordsInSeconds,omitempty"`
	MaxGetRecordsThreadPool  int `config:"maxGetRecordsThreadPool" yaml:"maxGetRecordsThreadPool,omitempty"`
}

// DefaultPollingConfig returns the polling settings used for
// anything not configured.
func DefaultPollingConfig() PollingConfig {
	return PollingConfig{
		MaxRecords:                   DefaultMaxRecords,
		IdleTimeBetweenReadsInMillis: 1000,
	}
}

// Mode implements the Strategy interface.
func (PollingConfig) Mode() Mode { return ModePolling }

// IdleTimeBetweenReads returns IdleTimeBetweenReadsInMillis as a time.Duration.
func (c PollingConfig) IdleTimeBetweenReads() time.Duration {
	return time.Duration(c.IdleTimeBetweenReadsInMillis) * time.Millisecond
}

// Config is the resolved retrieval configuration. Strategy is
// always exactly one of FanOutConfig or PollingConfig.
type Config struct {
	StreamName      string
	InitialPosition InitialPosition
	Strategy        Strategy
}

// FanOut returns the fan-out strategy, if it was selected.
func (c Config) FanOut() (FanOutConfig, bool) {
	fc, ok := c.Strategy.(FanOutConfig)
	return fc, ok
}

// Polling returns the polling strategy, if it was selected.
func (c Config) Polling() (PollingConfig, bool) {
	pc, ok := c.Strategy.(PollingConfig)
	return pc, ok
}
