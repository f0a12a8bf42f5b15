// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package multilang resolves the configuration of a multi-language
// stream processing daemon.
//
// The daemon is configured with flat, loosely typed settings, most
// commonly a Java style properties file:
//
//	applicationName = orders-app
//	streamName = orders
//	kinesisCredentialsProvider = DefaultCredentialsProvider
//	fanoutConfig.consumerArn = arn:aws:kinesis:us-east-1:123456789012:stream/orders/consumer/orders-app:1
//
// Load turns such settings into a frozen daemon.Resolved holding the
// lease, retrieval, metrics and credentials configuration.
//
// # Settings
//
// Settings are read by the [config] package from properties, YAML or
// JSON files, environment variables or plain maps. Nested YAML and
// JSON documents are flattened into dotted paths.
//
// # Retrieval
//
// Exactly one retrieval strategy is resolved. An explicit
// retrievalMode of fanout or polling always wins. Without one,
// setting maxRecords selects polling and anything else selects
// enhanced fan-out.
//
// # Unknown settings
//
// Settings nothing recognizes fail resolution by default. Use
// daemon.UnknownKeys(daemon.IgnoreUnknownKeys) to log and drop them
// instead.
package multilang
