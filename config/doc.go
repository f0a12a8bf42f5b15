// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config reads raw daemon settings from one or more sources.
//
// Every Source flattens itself into dotted setting names, e.g.
// fanoutConfig.consumerArn, with string values. Nothing in this
// package knows which names are valid or what type they convert
// to; that's the job of the daemon binder.
//
//	settings, err := config.Read(
//	    config.FromProperties(f),
//	    config.FromEnv("MULTILANG_"),
//	)
package config
