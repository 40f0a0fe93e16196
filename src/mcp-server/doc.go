// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver exposes the X.509 trust validator over the Model Context
// Protocol ([MCP]) on stdio.
//
// The server offers two tools:
//   - validate_certificate_chain: runs a validation session and returns the
//     report as JSON, text or a markdown table
//   - check_algorithm_compliance: reports the AdES and ETSI TS 119 312
//     standing of signature algorithms
//
// and four resources:
//   - info://version
//   - config://template
//   - config://validation-properties
//   - metrics://algorithm-usage
//
// Trust bundles, the validation properties file and the HTTP retrieval
// settings come from the file named by MCP_X509_TRUST_CONFIG_FILE.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
