// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validation

import (
	"context"
	"crypto"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/report"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/revdata"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

// Check names used on report items.
const (
	CheckCertificate = "Certificate check."
	CheckRevocation  = "Revocation data check."
	CheckOCSP        = "OCSP response check."
	CheckCRL         = "CRL response check."
)

// SignatureVerifier verifies a signature over signed with pub.
type SignatureVerifier interface {
	Verify(signed, signature []byte, pub crypto.PublicKey, alg x509.SignatureAlgorithm) error
}

// DefaultSignatureVerifier verifies with crypto/x509.
type DefaultSignatureVerifier struct{}

// Verify implements [SignatureVerifier].
func (DefaultSignatureVerifier) Verify(signed, signature []byte, pub crypto.PublicKey, alg x509.SignatureAlgorithm) error {
	return (&x509.Certificate{PublicKey: pub}).CheckSignature(alg, signed, signature)
}

// OcspClient retrieves an encoded OCSP response about cert.
type OcspClient interface {
	GetEncoded(ctx context.Context, cert, issuer *x509.Certificate) ([]byte, error)
}

// CrlClient retrieves the encoded CRLs that may cover cert.
type CrlClient interface {
	GetEncoded(ctx context.Context, cert *x509.Certificate) ([][]byte, error)
}

// RevocationOutcome is the result of evaluating revocation evidence.
type RevocationOutcome int

const (
	// NotApplicable means the evidence is not about the certificate, or the
	// check was skipped.
	NotApplicable RevocationOutcome = iota
	// Indeterminate means the evidence could not establish a status.
	Indeterminate
	// Good means the certificate was not revoked at the validation date.
	Good
	// Revoked means the certificate was revoked at the validation date.
	Revoked
)

func (o RevocationOutcome) String() string {
	switch o {
	case NotApplicable:
		return "not-applicable"
	case Indeterminate:
		return "indeterminate"
	case Good:
		return "good"
	case Revoked:
		return "revoked"
	}
	return fmt.Sprintf("RevocationOutcome(%d)", int(o))
}

// Definitive reports whether o settles the revocation status.
func (o RevocationOutcome) Definitive() bool { return o == Good || o == Revoked }

// CertificateChainValidator validates a certificate and its issuers.
type CertificateChainValidator interface {
	// Validate walks from cert toward a trust anchor as of date, appending
	// findings to r, and returns r.
	Validate(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate, date time.Time) *report.ValidationReport
}

// RevocationDataValidator establishes the revocation status of one
// certificate from every available evidence source.
type RevocationDataValidator interface {
	Validate(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate, date time.Time) RevocationOutcome
	AddOcspClient(c OcspClient) RevocationDataValidator
	AddCrlClient(c CrlClient) RevocationDataValidator
}

// OCSPValidator evaluates one OCSP single response.
type OCSPValidator interface {
	Validate(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate,
		single *revdata.SingleResponse, basic *revdata.BasicOCSPResponse, generationDate, validationDate time.Time) RevocationOutcome
}

// CRLValidator evaluates one CRL.
type CRLValidator interface {
	Validate(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate,
		crl *x509.RevocationList, validationDate, generationDate time.Time) RevocationOutcome
}

// Factories build validators for a builder.
type (
	CertificateChainValidatorFactory func(*ValidatorChainBuilder) CertificateChainValidator
	RevocationDataValidatorFactory   func(*ValidatorChainBuilder) RevocationDataValidator
	OCSPValidatorFactory             func(*ValidatorChainBuilder) OCSPValidator
	CRLValidatorFactory              func(*ValidatorChainBuilder) CRLValidator
)

func mustReport(r *report.ValidationReport) {
	if r == nil {
		panic("validation: nil report")
	}
}

func mustCertificate(cert *x509.Certificate) {
	if cert == nil {
		panic("validation: nil certificate")
	}
}
