// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is announced to MCP clients during initialization.
const ServerName = "X.509 Trust Validator"

// ErrNoEnvironment is returned by [ServerBuilder.Build] when tools or
// resources need an [Environment] that was never set.
var ErrNoEnvironment = errors.New("mcpserver: environment required")

// ToolHandler defines the signature for tool handlers that matches [MCP]
// server expectations.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolHandlerWithEnv defines tool handlers that need the shared
// [Environment]: trust bundles, policy, CRL cache and metrics.
type ToolHandlerWithEnv func(ctx context.Context, request mcp.CallToolRequest, env *Environment) (*mcp.CallToolResult, error)

// ResourceHandlerWithEnv is the resource counterpart of [ToolHandlerWithEnv].
type ResourceHandlerWithEnv func(ctx context.Context, request mcp.ReadResourceRequest, env *Environment) ([]mcp.ResourceContents, error)

// ToolDefinition holds a tool definition and its handler.
// Role names the tool in the instructions template.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandler
	Role    string
}

// ToolDefinitionWithEnv holds a tool definition whose handler receives the
// [Environment].
type ToolDefinitionWithEnv struct {
	Tool    mcp.Tool
	Handler ToolHandlerWithEnv
	Role    string
}

// ResourceDefinitionWithEnv holds a resource whose handler receives the
// [Environment].
type ResourceDefinitionWithEnv struct {
	Resource mcp.Resource
	Handler  ResourceHandlerWithEnv
}

// ServerDependencies holds all dependencies needed to create the MCP server.
type ServerDependencies struct {
	Env              *Environment
	Version          string
	Instructions     string
	Tools            []ToolDefinition
	ToolsWithEnv     []ToolDefinitionWithEnv
	Resources        []server.ServerResource
	ResourcesWithEnv []ResourceDefinitionWithEnv
}

// ServerBuilder helps construct the [MCP] server with proper dependencies
// using a fluent interface.
//
// Example:
//
//	s, err := NewServerBuilder().
//	    WithEnvironment(env).
//	    WithVersion("1.0.0").
//	    WithDefaultTools().
//	    WithDefaultResources().
//	    Build()
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type ServerBuilder struct{ deps ServerDependencies }

// NewServerBuilder creates a new server builder with default empty dependencies.
func NewServerBuilder() *ServerBuilder { return &ServerBuilder{} }

// WithEnvironment sets the state passed to environment-aware handlers.
func (b *ServerBuilder) WithEnvironment(env *Environment) *ServerBuilder {
	b.deps.Env = env
	return b
}

// WithVersion sets the server version string announced to clients.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.deps.Version = version
	return b
}

// WithInstructions sets the instructions returned on initialization.
func (b *ServerBuilder) WithInstructions(instructions string) *ServerBuilder {
	b.deps.Instructions = instructions
	return b
}

// WithTools adds tool definitions that don't need the environment.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.deps.Tools = append(b.deps.Tools, tools...)
	return b
}

// WithToolsWithEnv adds tool definitions whose handlers receive the environment.
func (b *ServerBuilder) WithToolsWithEnv(tools ...ToolDefinitionWithEnv) *ServerBuilder {
	b.deps.ToolsWithEnv = append(b.deps.ToolsWithEnv, tools...)
	return b
}

// WithResources adds static resources.
func (b *ServerBuilder) WithResources(resources ...server.ServerResource) *ServerBuilder {
	b.deps.Resources = append(b.deps.Resources, resources...)
	return b
}

// WithResourcesWithEnv adds resources whose handlers receive the environment.
func (b *ServerBuilder) WithResourcesWithEnv(resources ...ResourceDefinitionWithEnv) *ServerBuilder {
	b.deps.ResourcesWithEnv = append(b.deps.ResourcesWithEnv, resources...)
	return b
}

// WithDefaultTools adds the validator tools.
func (b *ServerBuilder) WithDefaultTools() *ServerBuilder {
	tools, toolsWithEnv := createTools()
	b.deps.Tools = append(b.deps.Tools, tools...)
	b.deps.ToolsWithEnv = append(b.deps.ToolsWithEnv, toolsWithEnv...)
	return b
}

// WithDefaultResources adds the validator resources.
func (b *ServerBuilder) WithDefaultResources() *ServerBuilder {
	resources, resourcesWithEnv := createResources()
	b.deps.Resources = append(b.deps.Resources, resources...)
	b.deps.ResourcesWithEnv = append(b.deps.ResourcesWithEnv, resourcesWithEnv...)
	return b
}

// Build creates the [MCP] server with all configured dependencies.
//
// Returns:
//   - A pointer to the configured MCPServer instance
//   - [ErrNoEnvironment] if an environment-aware handler was added without
//     an environment
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
func (b *ServerBuilder) Build() (*server.MCPServer, error) {
	env := b.deps.Env
	if env == nil && (len(b.deps.ToolsWithEnv) > 0 || len(b.deps.ResourcesWithEnv) > 0) {
		return nil, ErrNoEnvironment
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
	}
	if b.deps.Instructions != "" {
		opts = append(opts, server.WithInstructions(b.deps.Instructions))
	}
	s := server.NewMCPServer(ServerName, b.deps.Version, opts...)

	for _, tool := range b.deps.Tools {
		s.AddTool(tool.Tool, tool.Handler)
	}
	for _, tool := range b.deps.ToolsWithEnv {
		s.AddTool(tool.Tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return tool.Handler(ctx, request, env)
		})
	}

	for _, resource := range b.deps.Resources {
		s.AddResource(resource.Resource, resource.Handler)
	}
	for _, resource := range b.deps.ResourcesWithEnv {
		s.AddResource(resource.Resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return resource.Handler(ctx, request, env)
		})
	}

	return s, nil
}
