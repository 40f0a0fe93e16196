// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// x509-trust-validator validates an X.509 certificate chain and the
// revocation status of every certificate in it, then prints a validation
// report.
//
// # Installation
//
//	go install github.com/H0llyW00dzZ/x509-trust-validator/cmd/x509-trust-validator@latest
//
// # Usage
//
//	x509-trust-validator validate --cert CERTIFICATE [FLAGS]
//	x509-trust-validator algorithms NAME_OR_OID...
//
// # Exit Status
//
//	0  the report is VALID
//	1  the report is INVALID
//	2  the input could not be used, or the run was interrupted
//
// # Examples
//
// Validate a leaf against a root bundle using CRLs already on disk:
//
//	x509-trust-validator validate --trusted roots.pem --known inter.pem \
//	    --crl inter.crl --cert leaf.pem
//
// Fetch OCSP responses and CRLs named in the certificates:
//
//	x509-trust-validator validate --trusted roots.pem --online --cert leaf.pem
//
// Look up an algorithm in the compliance tables:
//
//	x509-trust-validator algorithms SHA224-RSA 1.2.840.10045.4.3.2
package main
