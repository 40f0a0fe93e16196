// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validation

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/extensions"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/report"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/revdata"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

type ocspValidator struct {
	b *ValidatorChainBuilder
}

// NewOCSPValidator is the default [OCSPValidatorFactory].
func NewOCSPValidator(b *ValidatorChainBuilder) OCSPValidator {
	return &ocspValidator{b: b}
}

// Validate evaluates single, taken from basic, as evidence about cert at
// validationDate. generationDate is the trusted instant the response was
// obtained at; delegated responder chains are validated as of that instant.
//
// A response about another certificate is not applicable and adds nothing
// to r.
func (v *ocspValidator) Validate(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate,
	single *revdata.SingleResponse, basic *revdata.BasicOCSPResponse, generationDate, validationDate time.Time) RevocationOutcome {
	mustReport(r)
	mustCertificate(cert)
	if single == nil || basic == nil {
		panic("validation: nil OCSP response")
	}

	vc = vc.WithValidatorContext(vcontext.OCSPValidator)

	issuer := v.matchingIssuer(cert, single, basic)
	if issuer == nil {
		return NotApplicable
	}

	responder, ok := v.resolveResponder(ctx, r, vc, cert, issuer, basic, generationDate)
	if !ok {
		return Indeterminate
	}
	if responder == nil {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckOCSP,
			"OCSP response signature could not be verified by the issuer, a trusted responder or a delegated responder", nil, report.Invalid))
		return Indeterminate
	}

	if !v.b.auditAlgorithm(r, cert, CheckOCSP, events.LocationOCSPCheck, basic.SignatureAlgorithm.String(), oidText(basic.SignatureAlgorithmOID)) {
		return Indeterminate
	}

	props := v.b.Properties()
	if !withinFreshness(validationDate, single.ThisUpdate, single.NextUpdate, props.DefaultGracePeriod(), props.GetFreshness(vc)) {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckOCSP,
			fmt.Sprintf("OCSP response (thisUpdate %s) is not usable at %s and is ignored", formatDate(single.ThisUpdate), formatDate(validationDate)), nil, report.Info))
		return Indeterminate
	}

	switch single.Status {
	case revdata.Good:
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckOCSP, "certificate status is good according to OCSP", nil, report.Info))
		return Good
	case revdata.Revoked:
		if single.RevokedAt.After(validationDate) {
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckOCSP,
				fmt.Sprintf("certificate was revoked at %s, after the validation date", formatDate(single.RevokedAt)), nil, report.Info))
			return Good
		}
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckOCSP,
			fmt.Sprintf("certificate was revoked at %s (reason: %s)", formatDate(single.RevokedAt), single.RevocationReason), nil, report.Invalid))
		return Revoked
	default:
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckOCSP, "certificate status is unknown to the OCSP responder", nil, report.Info))
		return Indeterminate
	}
}

// matchingIssuer returns the issuer candidate the CertID was computed from.
// Only candidates whose key verifies cert's signature are considered.
func (v *ocspValidator) matchingIssuer(cert *x509.Certificate, single *revdata.SingleResponse, basic *revdata.BasicOCSPResponse) *x509.Certificate {
	candidates := issuerCandidates(v.b.TrustedCertificatesStore(), cert)
	for _, c := range basic.Certificates {
		if bytes.Equal(c.RawSubject, cert.RawIssuer) && !containsCertificate(candidates, c) {
			candidates = append(candidates, c)
		}
	}
	for _, c := range verifiedIssuers(v.b.SignatureVerifier(), cert, candidates) {
		if single.CertID.Matches(cert, c) {
			return c
		}
	}
	return nil
}

func (v *ocspValidator) signs(basic *revdata.BasicOCSPResponse, cert *x509.Certificate) bool {
	return v.b.SignatureVerifier().Verify(basic.TBSResponseData, basic.Signature, cert.PublicKey, basic.SignatureAlgorithm) == nil
}

// resolveResponder finds the certificate that signed basic: the issuer,
// then certificates trusted for OCSP, then embedded delegated responders
// whose chain validates. ok is false when a delegate signed the response
// but its chain did not validate.
func (v *ocspValidator) resolveResponder(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert, issuer *x509.Certificate,
	basic *revdata.BasicOCSPResponse, generationDate time.Time) (responder *x509.Certificate, ok bool) {
	if v.signs(basic, issuer) {
		return issuer, true
	}

	store := v.b.TrustedCertificatesStore()
	for _, c := range store.TrustedCertificates(trust.OCSP) {
		if basic.ResponderMatches(c) && v.signs(basic, c) {
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckOCSP, "OCSP response is signed by a trusted responder", nil, report.Info))
			return c, true
		}
	}

	verifier := v.b.SignatureVerifier()
	for _, c := range basic.Certificates {
		if !bytes.Equal(c.RawIssuer, issuer.RawSubject) || !signedBy(verifier, c, issuer) {
			continue
		}
		if !extensions.OCSPSigning().ExistsInCertificate(c) || !v.signs(basic, c) {
			continue
		}

		child := report.New()
		responderCtx := vc.WithValidatorContext(vcontext.CertificateChainValidator).
			WithCertificateSource(vcontext.OCSPIssuer).
			WithTimeBasedContext(vcontext.Present)
		v.b.CertificateChainValidator().Validate(ctx, child, responderCtx, c, generationDate)

		if !child.IsValid() {
			r.Merge(downgraded(child))
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckOCSP,
				"OCSP responder certificate chain is not valid; the response is ignored", nil, report.Info))
			return nil, false
		}
		r.Merge(child)
		return c, true
	}
	return nil, true
}
