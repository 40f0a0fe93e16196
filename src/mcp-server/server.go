// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/logger"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/version"
)

var appVersion = version.Version // default version

// GetVersion returns the current version of the MCP server, as set by [Run].
func GetVersion() string {
	return appVersion
}

// NewServer loads the configuration at configPath (or from
// MCP_X509_TRUST_CONFIG_FILE when empty) and builds the MCP server.
//
// Returns:
//   - *server.MCPServer: The server with every tool and resource registered
//   - *Environment: The shared state, whose CRL cache the caller should run
//   - error: Configuration, trust bundle or template errors
func NewServer(configPath, version string, log logger.Logger) (*server.MCPServer, *Environment, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	env, err := NewEnvironment(config, version, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load trust material: %w", err)
	}

	tools, toolsWithEnv := createTools()
	instructions, err := loadInstructions(tools, toolsWithEnv, env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load instructions: %w", err)
	}

	s, err := NewServerBuilder().
		WithEnvironment(env).
		WithVersion(version).
		WithInstructions(instructions).
		WithTools(tools...).
		WithToolsWithEnv(toolsWithEnv...).
		WithDefaultResources().
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build server: %w", err)
	}
	return s, env, nil
}

// Run starts the MCP server on stdio.
//
// Parameters:
//   - version: Version string to set for the server (e.g., "0.1.0")
//
// Returns:
//   - error: Server startup or runtime error, or graceful shutdown signal
//
// Server Lifecycle:
//  1. Load configuration and trust material
//  2. Start the CRL cache cleanup loop
//  3. Serve stdio until the client disconnects or SIGINT/SIGTERM arrives
//
// Diagnostics are written to stderr as JSON lines so stdout stays reserved
// for the protocol.
func Run(version string) error {
	return run(context.Background(), version, "", os.Stdin, os.Stdout, os.Stderr)
}

func run(parent context.Context, version, configPath string, in io.Reader, out, diag io.Writer) error {
	appVersion = version
	log := logger.NewJSONLogger(diag, false)

	s, env, err := NewServer(configPath, version, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	go env.CRLCache.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	stdioServer := server.NewStdioServer(s)

	errChan := make(chan error, 1)
	go func() {
		errChan <- stdioServer.Listen(ctx, in, out)
	}()

	select {
	case err := <-errChan:
		if ctx.Err() != nil {
			return fmt.Errorf("server shutdown: %w", ctx.Err())
		}
		return err
	case <-ctx.Done():
		return fmt.Errorf("server shutdown: %w", ctx.Err())
	}
}
