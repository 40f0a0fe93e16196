// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/common/expfmt"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/mcp-server/templates"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/version"
)

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// handleVersionResource provides server metadata and capabilities.
func handleVersionResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tools, toolsWithEnv := createTools()
	var names []string
	for _, t := range tools {
		names = append(names, t.Tool.Name)
	}
	for _, t := range toolsWithEnv {
		names = append(names, t.Tool.Name)
	}

	return jsonResource("info://version", map[string]any{
		"name":               ServerName,
		"version":            version.Version,
		"type":               "MCP Server",
		"tools":              names,
		"reportFormats":      []string{"json", "text", "table"},
		"complianceProfiles": []string{"none", "ades", "etsi-ts-119-312"},
	})
}

// handleConfigResource provides a configuration template showing every
// setting with its default.
func handleConfigResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	example := defaultConfig()
	example.Validation.PropertiesFile = "validation.yaml"
	example.Trust.CA = []string{"roots.pem"}
	example.Trust.OCSP = []string{"ocsp-responders.pem"}
	example.Trust.Known = []string{"intermediates.pem"}
	return jsonResource("config://template", example)
}

// handleValidationGuideResource serves the embedded validation guide.
func handleValidationGuideResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	content, err := templates.MagicEmbed.ReadFile("validation-guide.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read validation guide: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "docs://validation-guide",
			MIMEType: "text/markdown",
			Text:     string(content),
		},
	}, nil
}

// handlePropertiesResource provides the effective validation policy.
func handlePropertiesResource(ctx context.Context, request mcp.ReadResourceRequest, env *Environment) ([]mcp.ResourceContents, error) {
	return jsonResource("config://validation-properties", env.Properties)
}

// handleAlgorithmUsageResource renders the algorithm usage counters in the
// Prometheus text exposition format.
func handleAlgorithmUsageResource(ctx context.Context, request mcp.ReadResourceRequest, env *Environment) ([]mcp.ResourceContents, error) {
	families, err := env.Registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	var sb strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&sb, mf); err != nil {
			return nil, fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	if sb.Len() == 0 {
		sb.WriteString("# no algorithm usage recorded yet\n")
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "metrics://algorithm-usage",
			MIMEType: "text/plain",
			Text:     sb.String(),
		},
	}, nil
}

// handleStatusResource provides server health, loaded trust material and
// CRL cache statistics.
func handleStatusResource(ctx context.Context, request mcp.ReadResourceRequest, env *Environment) ([]mcp.ResourceContents, error) {
	roles := make(map[string]int, len(env.Trusted))
	for role, certs := range env.Trusted {
		roles[role.String()] = len(certs)
	}

	return jsonResource("status://server-status", map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"server":    ServerName,
		"version":   env.Version,
		"trust": map[string]any{
			"trusted": env.trustedCount(),
			"byRole":  roles,
			"known":   len(env.Known),
		},
		"crlCache": env.CRLCache.Metrics(),
		"online":   env.Config.Defaults.Online,
	})
}
