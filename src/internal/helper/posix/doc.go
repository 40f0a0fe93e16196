// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides small process helpers shared by the command-line
// entry points.
//
// [ExecutableName] derives the program name from argv[0] so usage strings
// match however the binary was installed or renamed:
//
//	rootCmd := &cobra.Command{Use: posix.ExecutableName(cli.DefaultName)}
package posix
