// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// x509-trust-mcp is a Model Context Protocol (MCP) server that exposes X.509
// chain and revocation validation to AI assistants and automation clients
// over stdio.
//
// # Installation
//
//	go install github.com/H0llyW00dzZ/x509-trust-validator/cmd/x509-trust-mcp@latest
//
// # Environment Variables
//
//	MCP_X509_TRUST_CONFIG_FILE  Path to the server configuration (JSON or YAML)
//
// # MCP Tools
//
//   - validate_certificate_chain: Validate a certificate chain and its revocation status
//   - check_algorithm_compliance: Look up algorithms in the AdES and ETSI TS 119 312 tables
//
// # MCP Resources
//
//   - info://version: Version and capabilities info
//   - config://template: Server configuration template
//   - config://validation-properties: Effective validation policy
//   - metrics://algorithm-usage: Algorithm usage counters
//   - status://server-status: Trust material and CRL cache statistics
//   - docs://validation-guide: Validation guide
package main
