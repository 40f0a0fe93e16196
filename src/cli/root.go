// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/logger"
)

// DefaultName is the program name used when argv[0] is unavailable.
const DefaultName = "x509-trust-validator"

// ErrValidationFailed is returned when the validation report is not valid.
// The report itself has already been written.
var ErrValidationFailed = errors.New("certificate chain is not valid")

// NewRootCommand builds the command tree.
//
// Parameters:
//   - version: Version reported by --version and sent in the HTTP User-Agent
//   - log: Logger for retrieval diagnostics
//
// Returns:
//   - *cobra.Command: Root command with the validate and algorithms subcommands
func NewRootCommand(version string, log logger.Logger) *cobra.Command {
	if log == nil {
		log = logger.NopLogger{}
	}

	rootCmd := &cobra.Command{
		Use:           posix.ExecutableName(DefaultName),
		Short:         "X.509 trust chain and revocation validator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newValidateCommand(version, log))
	rootCmd.AddCommand(newAlgorithmsCommand())
	return rootCmd
}

// Execute runs the root command with the process arguments.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return NewRootCommand(version, log).ExecuteContext(ctx)
}
