// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package lease holds the settings which govern how workers share
// the shards of a stream.
package lease

import (
	"math"
	"time"
)

// Config is the lease management configuration of a worker.
type Config struct {
	// TableName is the lease table, named after the application.
	TableName string `yaml:"tableName"`
	WorkerID  string `yaml:"workerId,omitempty"`

	MaxLeasesForWorker               int   `yaml:"maxLeasesForWorker"`
	MaxLeasesToStealAtOneTime        int   `yaml:"maxLeasesToStealAtOneTime"`
	FailoverTimeMillis               int64 `yaml:"failoverTimeMillis"`
	ShardSyncIntervalMillis          int64 `yaml:"shardSyncIntervalMillis"`
	CleanupLeasesUponShardCompletion bool  `yaml:"cleanupLeasesUponShardCompletion"`
	InitialLeaseTableReadCapacity    int   `yaml:"initialLeaseTableReadCapacity"`
	InitialLeaseTableWriteCapacity   int   `yaml:"initialLeaseTableWriteCapacity"`
}

// DefaultConfig returns the lease settings used for anything not
// configured. A worker may hold any number of leases by default.
func DefaultConfig() Config {
	return Config{
		MaxLeasesForWorker:               math.MaxInt32,
		MaxLeasesToStealAtOneTime:        1,
		FailoverTimeMillis:               10000,
		ShardSyncIntervalMillis:          60000,
		CleanupLeasesUponShardCompletion: true,
		InitialLeaseTableReadCapacity:    10,
		InitialLeaseTableWriteCapacity:   10,
	}
}

// FailoverTime returns FailoverTimeMillis as a time.Duration.
func (c Config) FailoverTime() time.Duration {
	return time.Duration(c.FailoverTimeMillis) * time.Millisecond
}

// ShardSyncInterval returns ShardSyncIntervalMillis as a time.Duration.
func (c Config) ShardSyncInterval() time.Duration {
	return time.Duration(c.ShardSyncIntervalMillis) * time.Millisecond
}
