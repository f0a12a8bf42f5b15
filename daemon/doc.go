// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package daemon resolves the flat settings of a multi-language
// stream processing daemon into a frozen configuration.
//
// Settings are bound onto a Configuration one dotted path at a time
// by a Binder. Each recognized path has an explicit setter; paths
// under a nested node, e.g. "fanoutConfig.consumerArn", are stored
// raw on that node. A Resolver then validates the Configuration,
// decides between fan-out and polling retrieval, materializes the
// nodes it needs and returns a Resolved.
//
//	c := daemon.NewConfiguration()
//	err := daemon.NewBinder().BindAll(c, settings)
//	if err != nil {
//		return err
//	}
//	resolved, err := daemon.NewResolver().Resolve(ctx, c)
package daemon
