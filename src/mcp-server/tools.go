// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createTools creates and returns all MCP tool definitions with their handlers.
//
// Returns:
//   - A slice of ToolDefinition for tools without environment dependencies
//   - A slice of ToolDefinitionWithEnv for tools that validate against the
//     configured trust material
//
// The function defines the following tools:
//   - validate_certificate_chain: Validates a certificate chain and its revocation status
//   - check_algorithm_compliance: Reports AdES and ETSI TS 119 312 standing of algorithms
func createTools() ([]ToolDefinition, []ToolDefinitionWithEnv) {
	tools := []ToolDefinition{
		{
			Tool: mcp.NewTool("check_algorithm_compliance",
				mcp.WithDescription("Report whether signature and digest algorithms are allowed for AdES validation and by ETSI TS 119 312"),
				mcp.WithString("algorithms",
					mcp.Required(),
					mcp.Description("Comma-separated algorithm names (e.g. 'ECDSA-SHA256', 'sha224WithRSAEncryption') or dotted OIDs"),
				),
				mcp.WithString("profile",
					mcp.Description("Additional profile to check against: 'none', 'ades' or 'etsi-ts-119-312' (default: none)"),
					mcp.DefaultString("none"),
				),
			),
			Handler: handleCheckAlgorithmCompliance,
			Role:    "complianceChecker",
		},
	}

	toolsWithEnv := []ToolDefinitionWithEnv{
		{
			Tool: mcp.NewTool("validate_certificate_chain",
				mcp.WithDescription("Validate an X.509 certificate chain against the configured trust anchors and check revocation with OCSP responses and CRLs"),
				mcp.WithString("certificate",
					mcp.Required(),
					mcp.Description("Certificate file path or base64-encoded certificate data (PEM, DER or PKCS#7); extra certificates help build the chain"),
				),
				mcp.WithString("trusted",
					mcp.Description("Comma-separated file paths or base64 bundles to trust in addition to the configured ones"),
				),
				mcp.WithString("known",
					mcp.Description("Comma-separated file paths or base64 bundles of untrusted certificates for chain building"),
				),
				mcp.WithString("crls",
					mcp.Description("Comma-separated CRL file paths or base64-encoded CRLs (PEM or DER)"),
				),
				mcp.WithString("ocsp_responses",
					mcp.Description("Comma-separated OCSP response file paths or base64-encoded DER responses"),
				),
				mcp.WithString("date",
					mcp.Description("Validation date in RFC 3339 (default: now)"),
				),
				mcp.WithBoolean("historical",
					mcp.Description("Treat the supplied evidence as historical (default: false)"),
					mcp.DefaultBool(false),
				),
				mcp.WithString("source",
					mcp.Description("Role of the certificate: 'signer-cert', 'timestamp', 'ocsp-issuer' or 'crl-issuer' (default: signer-cert)"),
					mcp.DefaultString("signer-cert"),
				),
				mcp.WithBoolean("online",
					mcp.Description("Fetch OCSP responses and CRLs named in the certificates (default: from config)"),
				),
				mcp.WithString("format",
					mcp.Description("Report format: 'json', 'text' or 'table' (default: from config)"),
				),
			),
			Handler: handleValidateCertificateChain,
			Role:    "chainValidator",
		},
	}

	return tools, toolsWithEnv
}
