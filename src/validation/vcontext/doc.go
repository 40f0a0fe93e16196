// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package vcontext describes who is validating what, for which purpose, and
// at which notion of time.
//
// A [ValidationContext] is an immutable value. Deriving a child context
// (for example when the chain walk moves from a certificate to its issuer)
// returns a new value that remembers its parent, so validators can ask
// questions about the path that led to them without sharing mutable state.
package vcontext
