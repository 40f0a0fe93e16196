// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package validation implements X.509 trust chain and revocation
// validation "as of" a point in time.
//
// A [ValidatorChainBuilder] wires the validators together:
//
//	CertificateChainValidator
//	  └─ RevocationDataValidator
//	       ├─ OCSPValidator ─┐
//	       └─ CRLValidator  ─┴─ CertificateChainValidator (responder and CRL issuer chains)
//
// The chain validator walks from a certificate toward a trust anchor held
// in a [trust.TrustedCertificatesStore], checking validity, required
// extensions, the issuer signature, algorithm compliance and revocation at
// every hop. Every finding is appended to a [report.ValidationReport];
// the report is the only outcome channel. Failures of retrieval clients
// or decoders are logged and treated as missing evidence.
//
// Example:
//
//	store := trust.NewTrustedCertificatesStore()
//	store.AddCATrustedCertificates(root)
//	store.AddKnownCertificates(intermediate)
//
//	b := validation.NewValidatorChainBuilder().
//		WithTrustedCertificatesStore(store).
//		WithOcspClient(fetch.NewOCSPClient(nil))
//
//	r := b.CertificateChainValidator().Validate(ctx, report.New(),
//		vcontext.New(vcontext.SignatureValidator, vcontext.SignerCert, vcontext.Present),
//		leaf, time.Now())
//	fmt.Println(r.ValidationResult())
//
// Passing a nil report or certificate to a validator is a programming
// error and panics with a "validation:" prefixed message.
package validation
