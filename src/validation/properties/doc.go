// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package properties holds the validation policy: per-context rules for
// revocation freshness, online fetching, continue-after-failure and
// required certificate extensions, plus session-wide parameters such as
// the revocation evidence order and the algorithm compliance profile.
//
// A rule applies to the cartesian product of a validator set, a
// certificate-source set and a time-context set. When several rules match
// a context, the most recently added rule that sets the requested value
// wins. [NewSignatureValidationProperties] installs the default rules:
//
//	present     freshness 0    FetchIfNoOtherDataAvailable
//	historical  freshness 1m   FetchIfNoOtherDataAvailable
//	cert-issuer   keyUsage keyCertSign, basicConstraints CA
//	ocsp-issuer   extendedKeyUsage ocspSigning
//	crl-issuer    keyUsage cRLSign
//	timestamp     extendedKeyUsage timeStamping
//
// Policies can be loaded from YAML or JSON with [Load] or [Parse]. Every
// document is validated against an embedded JSON schema first.
package properties
