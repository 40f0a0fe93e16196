// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package testpki builds throwaway PKI hierarchies for tests: certificates,
// CRLs and OCSP responses signed by in-memory ECDSA keys.
//
// It is only imported from _test.go files.
package testpki
