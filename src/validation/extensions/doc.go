// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package extensions provides immutable predicates over X.509 certificate
// extensions. Validators use them to express "this certificate must carry
// extension X with value Y" without decoding extensions themselves.
//
// Every matcher is total: a missing or undecodable extension is reported as
// a mismatch rather than an error.
package extensions
