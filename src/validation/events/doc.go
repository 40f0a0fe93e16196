// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package events provides the publish/subscribe channel validators use to
// report which cryptographic algorithms were exercised and where.
//
// A [Manager] is owned by one validator chain builder, so concurrent
// validation sessions do not see each other's events unless they share a
// manager on purpose. Handlers receive every event and filter by type.
//
// The package also ships two ready-made handlers: [UsageStatistics], an
// in-memory aggregator that can be merged across sessions, and
// [MetricsHandler], which exports usage counters to Prometheus.
package events
