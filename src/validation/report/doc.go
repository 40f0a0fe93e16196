// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package report provides the append-only validation report shared by every
// validator in a validation session.
//
// A [ValidationReport] is an ordered list of [ReportItem] findings. Each item
// is either informational ([Info]) or a failure ([Invalid]); the report is
// valid as long as no item is invalid. Child validators fold their findings
// into a parent report with [ValidationReport.Merge].
//
// Reports are owned by a single session and are not safe for concurrent
// writers.
package report
