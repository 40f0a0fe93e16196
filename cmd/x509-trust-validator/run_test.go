// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/cli"
	verpkg "github.com/H0llyW00dzZ/x509-trust-validator/src/version"
)

func TestVersionInit(t *testing.T) {
	assert.NotEmpty(t, version, "version should not be empty after init")

	if version != verpkg.Version {
		// set by ldflags
		t.Logf("version set by ldflags: %s (package version: %s)", version, verpkg.Version)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Valid", nil, 0},
		{"Invalid Report", cli.ErrValidationFailed, 1},
		{"Wrapped Invalid Report", fmt.Errorf("validate: %w", cli.ErrValidationFailed), 1},
		{"Bad Input", errors.New("failed to read certificate"), 2},
		{"Interrupted", context.Canceled, 2},
		{"Wrapped Interrupted", fmt.Errorf("validation interrupted: %w", context.Canceled), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
