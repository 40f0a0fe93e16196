// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the X.509 trust validator.
// It implements a Cobra-based CLI with a validate command, which walks a certificate
// toward the configured trust anchors and checks revocation from supplied or fetched
// OCSP responses and CRLs, and an algorithms command, which reports the AdES and
// ETSI TS 119 312 standing of signature algorithms. Reports can be rendered as a
// markdown table, JSON or plain text. The package integrates with the logger package
// for diagnostics.
package cli
