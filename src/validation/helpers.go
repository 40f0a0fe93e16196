// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validation

import (
	"bytes"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/properties"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/report"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

// signedBy reports whether issuer's key verifies cert's signature.
func signedBy(v SignatureVerifier, cert, issuer *x509.Certificate) bool {
	return v.Verify(cert.RawTBSCertificate, cert.Signature, issuer.PublicKey, cert.SignatureAlgorithm) == nil
}

// isSelfSigned reports whether cert names and verifies itself.
func isSelfSigned(v SignatureVerifier, cert *x509.Certificate) bool {
	return bytes.Equal(cert.RawIssuer, cert.RawSubject) && signedBy(v, cert, cert)
}

// issuerCandidates returns the CA-trusted, then known certificates whose
// subject is cert's issuer.
func issuerCandidates(store *trust.TrustedCertificatesStore, cert *x509.Certificate) []*x509.Certificate {
	name := trust.NameKey(cert.Issuer)
	out := store.CertificatesTrustedFor(trust.CA, name)
	for _, c := range store.GetKnownCertificates(name) {
		if !containsCertificate(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func containsCertificate(list []*x509.Certificate, cert *x509.Certificate) bool {
	for _, c := range list {
		if c.Equal(cert) {
			return true
		}
	}
	return false
}

// verifiedIssuers filters candidates down to those that signed cert.
func verifiedIssuers(v SignatureVerifier, cert *x509.Certificate, candidates []*x509.Certificate) []*x509.Certificate {
	var out []*x509.Certificate
	for _, c := range candidates {
		if signedBy(v, cert, c) {
			out = append(out, c)
		}
	}
	return out
}

// preferredIssuer picks the first verified issuer that is trusted as a CA,
// falling back to the first verified one. verified must not be empty.
func preferredIssuer(store *trust.TrustedCertificatesStore, verified []*x509.Certificate) *x509.Certificate {
	for _, c := range verified {
		if store.TrustedFor(trust.CA, c) {
			return c
		}
	}
	return verified[0]
}

// roleFor maps the role a certificate plays to the trust it needs.
func roleFor(source vcontext.CertificateSource) trust.Role {
	switch source {
	case vcontext.CertIssuer:
		return trust.CA
	case vcontext.OCSPIssuer:
		return trust.OCSP
	case vcontext.CRLIssuer:
		return trust.CRL
	case vcontext.Timestamp:
		return trust.Timestamp
	default:
		return trust.General
	}
}

// withinFreshness reports whether date falls in
// [thisUpdate, (nextUpdate or thisUpdate+grace) + freshness].
func withinFreshness(date, thisUpdate, nextUpdate time.Time, grace, freshness time.Duration) bool {
	if nextUpdate.IsZero() {
		nextUpdate = thisUpdate.Add(grace)
	}
	return !date.Before(thisUpdate) && !date.After(nextUpdate.Add(freshness))
}

// downgraded copies r's items with every status set to INFO.
func downgraded(r *report.ValidationReport) *report.ValidationReport {
	out := report.New()
	for _, item := range r.Logs() {
		out.AddReportItem(report.NewCertificateReportItem(item.Certificate, item.CheckName, item.Message, item.Err, report.Info))
	}
	return out
}

// auditAlgorithm dispatches an algorithm usage event and applies the
// configured compliance profile. It reports whether processing continues.
func (b *ValidatorChainBuilder) auditAlgorithm(r *report.ValidationReport, cert *x509.Certificate, check, location, name, oid string) bool {
	b.GetEventManager().Dispatch(events.NewAlgorithmUsageEvent(name, oid, location))

	props := b.Properties()
	profile := props.AlgorithmCompliance()
	if profile == nil || profile.Allows(name, oid) {
		return true
	}

	msg := fmt.Sprintf("algorithm %s is not allowed by the %s profile", name, profile.Name())
	switch props.AlgorithmViolation() {
	case properties.ViolationInfo:
		r.AddReportItem(report.NewCertificateReportItem(cert, check, msg, nil, report.Info))
		return true
	case properties.ViolationFatal:
		r.AddReportItem(report.NewCertificateReportItem(cert, check, msg, nil, report.Invalid))
		return false
	default:
		r.AddReportItem(report.NewCertificateReportItem(cert, check, msg, nil, report.Invalid))
		return true
	}
}

func oidText(oid asn1.ObjectIdentifier) string {
	if len(oid) == 0 {
		return ""
	}
	return oid.String()
}

func formatDate(t time.Time) string { return t.UTC().Format(time.RFC3339) }
