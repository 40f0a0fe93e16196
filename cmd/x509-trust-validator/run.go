// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/cli"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/logger"
	verpkg "github.com/H0llyW00dzZ/x509-trust-validator/src/version"
)

var version string // set by ldflags or defaults to the version package

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

// exitCode maps the result of a run to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrValidationFailed):
		return 1
	default:
		return 2
	}
}

func main() {
	log := logger.NewCLILogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, version, log)
	}()

	var err error
	select {
	case <-sigs:
		log.Println("\nReceived termination signal. Exiting...")
		cancel()
		// Validation reports the interruption itself; wait for it.
		err = <-done
	case err = <-done:
	}

	// The report has already been written for a failed validation.
	if err != nil && !errors.Is(err, cli.ErrValidationFailed) {
		log.Printf("Error: %v", err)
	}
	os.Exit(exitCode(err))
}
