// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides abstraction and implementation for logging operations.
// It defines the Logger interface and three implementations: CLILogger for
// human-readable command-line output, JSONLogger for structured JSON lines
// (used by the MCP server, where stdout carries the protocol), and NopLogger,
// the default of the validation engine.
//
// Validators never report findings through a logger; findings go to the
// validation report. Loggers only carry diagnostics such as a failed OCSP
// fetch that was downgraded to "no evidence".
package logger
