// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// createResources returns the static resources and those served from the
// [Environment].
func createResources() ([]server.ServerResource, []ResourceDefinitionWithEnv) {
	resources := []server.ServerResource{
		{
			Resource: mcp.NewResource("info://version", "Server Version",
				mcp.WithResourceDescription("Server name, version and the tools and compliance profiles it offers"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleVersionResource,
		},
		{
			Resource: mcp.NewResource("config://template", "Configuration Template",
				mcp.WithResourceDescription("Example MCP_X509_TRUST_CONFIG_FILE contents with every setting"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleConfigResource,
		},
		{
			Resource: mcp.NewResource("docs://validation-guide", "Validation Guide",
				mcp.WithResourceDescription("How the chain walk, revocation checks and report items fit together"),
				mcp.WithMIMEType("text/markdown"),
			),
			Handler: handleValidationGuideResource,
		},
	}

	resourcesWithEnv := []ResourceDefinitionWithEnv{
		{
			Resource: mcp.NewResource("config://validation-properties", "Validation Properties",
				mcp.WithResourceDescription("Effective validation policy: rules, revocation order, limits and compliance profile"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handlePropertiesResource,
		},
		{
			Resource: mcp.NewResource("metrics://algorithm-usage", "Algorithm Usage Metrics",
				mcp.WithResourceDescription("Prometheus counters of algorithms observed in validations since startup"),
				mcp.WithMIMEType("text/plain"),
			),
			Handler: handleAlgorithmUsageResource,
		},
		{
			Resource: mcp.NewResource("status://server-status", "Server Status",
				mcp.WithResourceDescription("Loaded trust material and CRL cache statistics"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: handleStatusResource,
		},
	}

	return resources, resourcesWithEnv
}
