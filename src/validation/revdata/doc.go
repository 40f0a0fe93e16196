// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package revdata decodes revocation evidence into the shapes the
// validators consume.
//
// OCSP responses are decoded into [BasicOCSPResponse] values that keep every
// SingleResponse together with its full certificate identifier (issuer name
// hash, issuer key hash and serial number), the signed payload and the
// signature. CRLs are decoded with [crypto/x509] and returned as
// [x509.RevocationList].
//
// Decoding never verifies signatures; that is the validators' job.
package revdata
