// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package daemon

import (
	"time"

	"github.com/z5labs/multilang/config"
	"github.com/z5labs/multilang/lease"
	"github.com/z5labs/multilang/metrics"
	"github.com/z5labs/multilang/node"
	"github.com/z5labs/multilang/retrieval"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProcessingConfig configures how the record processor subprocess
// is run and checkpointed.
type ProcessingConfig struct {
	ExecutableName                            string `yaml:"executableName,omitempty"`
	ProcessingLanguage                        string `yaml:"processingLanguage,omitempty"`
	CallProcessRecordsEvenForEmptyRecordList  bool   `yaml:"callProcessRecordsEvenForEmptyRecordList"`
	ParentShardPollIntervalMillis             int64  `yaml:"parentShardPollIntervalMillis"`
	TaskBackoffTimeMillis                     int64  `yaml:"taskBackoffTimeMillis"`
	ShutdownGraceMillis                       int64  `yaml:"shutdownGraceMillis"`
	ValidateSequenceNumberBeforeCheckpointing bool   `yaml:"validateSequenceNumberBeforeCheckpointing"`
}

// DefaultProcessingConfig returns the processing settings used for
// anything not configured.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		ParentShardPollIntervalMillis:             10000,
		TaskBackoffTimeMillis:                     500,
		ValidateSequenceNumberBeforeCheckpointing: true,
	}
}

// ShutdownGrace returns ShutdownGraceMillis as a time.Duration.
func (c ProcessingConfig) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceMillis) * time.Millisecond
}

// Configuration is the daemon configuration while settings are
// still being bound to it. It is turned into a Resolved by a
// Resolver and is not safe for concurrent use.
type Configuration struct {
	applicationName string
	streamName      string
	workerID        string

	regionName       string
	kinesisEndpoint  string
	dynamoDBEndpoint string

	initialPosition retrieval.InitialPosition
	retrievalMode   retrieval.Mode

	// maxRecords doubles as the signal for polling retrieval so
	// whether it was set matters, not just its value.
	maxRecords           config.Value[int]
	idleTimeBetweenReads config.Value[int64]

	lease      lease.Config
	metrics    metrics.Config
	processing ProcessingConfig

	kinesisCredentials    node.Named[aws.CredentialsProvider]
	dynamoDBCredentials   node.Named[aws.CredentialsProvider]
	cloudWatchCredentials node.Named[aws.CredentialsProvider]

	fanOut  node.Node[retrieval.FanOutConfig]
	polling node.Node[retrieval.PollingConfig]
}

// NewConfiguration returns a Configuration holding every default.
func NewConfiguration() *Configuration {
	return &Configuration{
		initialPosition: retrieval.PositionLatest,
		retrievalMode:   retrieval.ModeUnset,
		lease:           lease.DefaultConfig(),
		metrics:         metrics.DefaultConfig(),
		processing:      DefaultProcessingConfig(),
	}
}

// RetrievalMode returns the explicitly configured retrieval mode,
// which is retrieval.ModeUnset unless retrievalMode was bound.
func (c *Configuration) RetrievalMode() retrieval.Mode {
	return c.retrievalMode
}

// MaxRecords returns the configured polling batch size, if set.
func (c *Configuration) MaxRecords() (int, bool) {
	return c.maxRecords.Value()
}
