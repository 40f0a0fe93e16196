// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validation

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/report"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/revdata"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

type certificateChainValidator struct {
	b *ValidatorChainBuilder
}

// NewCertificateChainValidator is the default [CertificateChainValidatorFactory].
func NewCertificateChainValidator(b *ValidatorChainBuilder) CertificateChainValidator {
	return &certificateChainValidator{b: b}
}

// Validate walks from cert toward a trust anchor.
//
// Parameters:
//   - ctx: Cancels the walk and any online revocation retrieval
//   - r: Report findings are appended to; must not be nil
//   - vc: Context of the caller; the walk runs as the chain validator
//   - cert: Certificate to validate; must not be nil
//   - date: Instant the chain must be valid at
//
// Returns:
//   - r, for chaining
//
// Each hop checks trust, validity, required extensions, the issuer
// signature, algorithm compliance and revocation, then moves to the issuer
// with source CertIssuer. The walk ends at a trust anchor, at the first
// fatal finding, on a repeated certificate or after MaxChainLength hops.
func (v *certificateChainValidator) Validate(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate, date time.Time) *report.ValidationReport {
	mustReport(r)
	mustCertificate(cert)

	maxLen := v.b.Properties().MaxChainLength()
	visited := make(map[[sha256.Size]byte]struct{})
	hop := vc.WithValidatorContext(vcontext.CertificateChainValidator)

	for depth := 0; ; depth++ {
		if err := ctx.Err(); err != nil {
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate, "certificate chain validation was interrupted", err, report.Invalid))
			return r
		}

		fp := sha256.Sum256(cert.Raw)
		if _, seen := visited[fp]; seen {
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate, "circular issuer chain", nil, report.Invalid))
			return r
		}
		if depth >= maxLen {
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate,
				fmt.Sprintf("chain too long: more than %d certificates", maxLen), nil, report.Invalid))
			return r
		}
		visited[fp] = struct{}{}

		issuer := v.validateHop(ctx, r, hop, cert, date)
		if issuer == nil {
			return r
		}
		cert = issuer
		hop = hop.WithCertificateSource(vcontext.CertIssuer)
	}
}

// validateHop checks one certificate and returns its verified issuer, or
// nil when the walk ends here.
func (v *certificateChainValidator) validateHop(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate, date time.Time) *x509.Certificate {
	store := v.b.TrustedCertificatesStore()
	props := v.b.Properties()
	verifier := v.b.SignatureVerifier()

	role := roleFor(vc.CertificateSource())
	if store.TrustedFor(role, cert) {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate,
			fmt.Sprintf("certificate is trusted for %s", role), nil, report.Info))
		return nil
	}
	for _, other := range []trust.Role{trust.CA, trust.OCSP, trust.CRL, trust.Timestamp} {
		if other != role && store.TrustedFor(other, cert) {
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate,
				fmt.Sprintf("certificate is trusted for %s but is used as %s; validating its chain", other, vc.CertificateSource()), nil, report.Info))
			break
		}
	}

	if date.Before(cert.NotBefore) {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate,
			fmt.Sprintf("certificate is not yet valid at %s (valid from %s)", formatDate(date), formatDate(cert.NotBefore)), nil, report.Invalid))
		return nil
	}
	if date.After(cert.NotAfter) {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate,
			fmt.Sprintf("certificate expired at %s, before %s", formatDate(cert.NotAfter), formatDate(date)), nil, report.Invalid))
		return nil
	}

	missing := false
	for _, ext := range props.GetRequiredExtensions(vc) {
		if !ext.ExistsInCertificate(cert) {
			missing = true
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate,
				fmt.Sprintf("required %s is missing for a certificate used as %s", ext, vc.CertificateSource()), nil, report.Invalid))
		}
	}
	if missing && !props.GetContinueAfterFailure(vc) {
		return nil
	}

	if isSelfSigned(verifier, cert) {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate, "self-signed certificate is not trusted", nil, report.Invalid))
		return nil
	}

	candidates := issuerCandidates(store, cert)
	if len(candidates) == 0 {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate, "issuer certificate not found", nil, report.Invalid))
		return nil
	}
	verified := verifiedIssuers(verifier, cert, candidates)
	if len(verified) == 0 {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCertificate,
			fmt.Sprintf("certificate signature could not be verified by any of %d issuer candidates", len(candidates)), nil, report.Invalid))
		return nil
	}

	alg := cert.SignatureAlgorithm
	if !v.b.auditAlgorithm(r, cert, CheckCertificate, events.LocationCertificateCheck, alg.String(), oidText(revdata.SignatureAlgorithmOID(alg))) {
		return nil
	}

	outcome := v.b.RevocationDataValidator().Validate(ctx, r, vc.WithValidatorContext(vcontext.RevocationDataValidator), cert, date)
	if outcome == Revoked {
		return nil
	}

	return preferredIssuer(store, verified)
}
