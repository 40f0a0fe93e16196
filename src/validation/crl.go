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

type crlValidator struct {
	b *ValidatorChainBuilder
}

// NewCRLValidator is the default [CRLValidatorFactory].
func NewCRLValidator(b *ValidatorChainBuilder) CRLValidator {
	return &crlValidator{b: b}
}

// Validate evaluates crl as evidence about cert at validationDate.
//
// Only CRLs issued under cert's issuer name apply. The CRL must be signed
// by the certificate's issuer, by a certificate trusted for CRLs, or by a
// known delegate carrying cRLSign whose chain validates as of
// generationDate.
func (v *crlValidator) Validate(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate,
	crl *x509.RevocationList, validationDate, generationDate time.Time) RevocationOutcome {
	mustReport(r)
	mustCertificate(cert)
	if crl == nil {
		panic("validation: nil CRL")
	}

	if !bytes.Equal(crl.RawIssuer, cert.RawIssuer) {
		return NotApplicable
	}
	vc = vc.WithValidatorContext(vcontext.CRLValidator)

	signer, ok := v.resolveIssuer(ctx, r, vc, cert, crl, generationDate)
	if !ok {
		return Indeterminate
	}
	if signer == nil {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCRL,
			fmt.Sprintf("CRL signature could not be verified (issuer %s)", crl.Issuer), nil, report.Invalid))
		return Indeterminate
	}

	if !v.b.auditAlgorithm(r, cert, CheckCRL, events.LocationCRLCheck, crl.SignatureAlgorithm.String(), oidText(revdata.SignatureAlgorithmOID(crl.SignatureAlgorithm))) {
		return Indeterminate
	}

	props := v.b.Properties()
	if !withinFreshness(validationDate, crl.ThisUpdate, crl.NextUpdate, props.DefaultGracePeriod(), props.GetFreshness(vc)) {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCRL,
			fmt.Sprintf("CRL (thisUpdate %s) is not usable at %s and is ignored", formatDate(crl.ThisUpdate), formatDate(validationDate)), nil, report.Info))
		return Indeterminate
	}

	entry, found := revdata.FindRevokedEntry(crl, cert.SerialNumber)
	switch {
	case !found:
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCRL, "certificate not found on CRL", nil, report.Info))
		return Good
	case entry.RevocationTime.After(validationDate):
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCRL,
			fmt.Sprintf("certificate was revoked at %s, after the validation date", formatDate(entry.RevocationTime)), nil, report.Info))
		return Good
	default:
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckCRL,
			fmt.Sprintf("certificate was revoked at %s (reason: %s)", formatDate(entry.RevocationTime), revdata.RevocationReason(entry.ReasonCode)), nil, report.Invalid))
		return Revoked
	}
}

func (v *crlValidator) signs(crl *x509.RevocationList, cert *x509.Certificate) bool {
	return v.b.SignatureVerifier().Verify(crl.RawTBSRevocationList, crl.Signature, cert.PublicKey, crl.SignatureAlgorithm) == nil
}

// resolveIssuer finds the certificate that signed crl. ok is false when a
// delegate signed it but its chain did not validate.
func (v *crlValidator) resolveIssuer(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate,
	crl *x509.RevocationList, generationDate time.Time) (signer *x509.Certificate, ok bool) {
	store := v.b.TrustedCertificatesStore()
	verifier := v.b.SignatureVerifier()

	candidates := issuerCandidates(store, cert)
	for _, c := range verifiedIssuers(verifier, cert, candidates) {
		if v.signs(crl, c) {
			return c, true
		}
	}

	name := trust.NameKey(crl.Issuer)
	for _, c := range store.CertificatesTrustedFor(trust.CRL, name) {
		if v.signs(crl, c) {
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckCRL, "CRL is signed by a trusted CRL issuer", nil, report.Info))
			return c, true
		}
	}

	crlSign := extensions.NewKeyUsageExtension(x509.KeyUsageCRLSign)
	for _, c := range candidates {
		if !crlSign.ExistsInCertificate(c) || !v.signs(crl, c) {
			continue
		}

		child := report.New()
		delegateCtx := vc.WithValidatorContext(vcontext.CertificateChainValidator).
			WithCertificateSource(vcontext.CRLIssuer).
			WithTimeBasedContext(vcontext.Present)
		v.b.CertificateChainValidator().Validate(ctx, child, delegateCtx, c, generationDate)

		if !child.IsValid() {
			r.Merge(downgraded(child))
			r.AddReportItem(report.NewCertificateReportItem(cert, CheckCRL,
				"CRL issuer certificate chain is not valid; the CRL is ignored", nil, report.Info))
			return nil, false
		}
		r.Merge(child)
		return c, true
	}
	return nil, true
}
