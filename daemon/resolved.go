// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package daemon

import (
	"github.com/z5labs/multilang/credentials"
	"github.com/z5labs/multilang/lease"
	"github.com/z5labs/multilang/metrics"
	"github.com/z5labs/multilang/retrieval"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
)

// ClientConfig holds what the daemon's AWS clients are built from.
type ClientConfig struct {
	Region           string
	KinesisEndpoint  string
	DynamoDBEndpoint string

	KinesisCredentials    aws.CredentialsProvider
	DynamoDBCredentials   aws.CredentialsProvider
	CloudWatchCredentials aws.CredentialsProvider
}

// AWSConfig returns an aws.Config for the given credentials and
// endpoint. Credentials are cached until they expire.
func (c ClientConfig) AWSConfig(creds aws.CredentialsProvider, endpoint string) aws.Config {
	cfg := aws.Config{
		Region:      c.Region,
		Credentials: aws.NewCredentialsCache(creds),
	}
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}
	return cfg
}

// KinesisClient builds a client from the Kinesis region, endpoint
// and credentials. No request is made.
func (c ClientConfig) KinesisClient(optFns ...func(*kinesis.Options)) *kinesis.Client {
	return kinesis.NewFromConfig(c.AWSConfig(c.KinesisCredentials, c.KinesisEndpoint), optFns...)
}

// Resolved is the frozen daemon configuration. It is safe for
// concurrent use.
type Resolved struct {
	applicationName string
	lease           lease.Config
	retrieval       retrieval.Config
	metrics         metrics.Config
	processing      ProcessingConfig
	clients         ClientConfig
}

// ApplicationName returns the logical application of the daemon.
func (r Resolved) ApplicationName() string {
	return r.applicationName
}

// Lease returns the lease management configuration.
func (r Resolved) Lease() lease.Config {
	return r.lease
}

// Retrieval returns the retrieval configuration. It holds exactly
// one strategy.
func (r Resolved) Retrieval() retrieval.Config {
	return r.retrieval
}

// Metrics returns the metrics configuration.
func (r Resolved) Metrics() metrics.Config {
	m := r.metrics
	m.EnabledDimensions = append(metrics.Dimensions(nil), m.EnabledDimensions...)
	return m
}

// Processing returns the record processor configuration.
func (r Resolved) Processing() ProcessingConfig {
	return r.processing
}

// Clients returns the AWS client configuration.
func (r Resolved) Clients() ClientConfig {
	c := r.clients
	c.KinesisCredentials = credentials.Clone(c.KinesisCredentials)
	c.DynamoDBCredentials = credentials.Clone(c.DynamoDBCredentials)
	c.CloudWatchCredentials = credentials.Clone(c.CloudWatchCredentials)
	return c
}
