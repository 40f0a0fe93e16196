// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validation

import (
	"context"
	"crypto/x509"
	"slices"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/extensions"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/properties"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/report"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/revdata"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

type revocationDataValidator struct {
	b *ValidatorChainBuilder

	mu          sync.RWMutex
	ocspClients []OcspClient
	crlClients  []CrlClient
}

// NewRevocationDataValidator is the default [RevocationDataValidatorFactory].
// It starts with the clients registered on b.
func NewRevocationDataValidator(b *ValidatorChainBuilder) RevocationDataValidator {
	return &revocationDataValidator{
		b:           b,
		ocspClients: b.OcspClients(),
		crlClients:  b.CrlClients(),
	}
}

func (v *revocationDataValidator) AddOcspClient(c OcspClient) RevocationDataValidator {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ocspClients = append(v.ocspClients, c)
	return v
}

func (v *revocationDataValidator) AddCrlClient(c CrlClient) RevocationDataValidator {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.crlClients = append(v.crlClients, c)
	return v
}

// evidence is one piece of revocation data ready for evaluation.
type evidence struct {
	kind           properties.EvidenceKind
	thisUpdate     time.Time
	generationDate time.Time
	timeContext    vcontext.TimeBasedContext

	single *revdata.SingleResponse
	basic  *revdata.BasicOCSPResponse
	crl    *x509.RevocationList
}

// Validate establishes the revocation status of cert at date.
//
// The check is skipped for trusted and self-signed certificates, for OCSP
// responders carrying id-pkix-ocsp-nocheck and once MaxRevocationNesting
// OCSP/CRL validations are already stacked in vc. Otherwise offline
// evidence and, depending on the online fetching mode, online evidence
// are evaluated in RevocationOrder, newest first within each kind, until
// one is definitive.
func (v *revocationDataValidator) Validate(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate, date time.Time) RevocationOutcome {
	mustReport(r)
	mustCertificate(cert)

	vc = vc.WithValidatorContext(vcontext.RevocationDataValidator)
	props := v.b.Properties()

	if skip := v.skipReason(vc, cert, props); skip != "" {
		r.AddReportItem(report.NewCertificateReportItem(cert, CheckRevocation, skip, nil, report.Info))
		return NotApplicable
	}

	order := props.RevocationOrder()
	var outcome RevocationOutcome

	switch props.GetRevocationOnlineFetching(vc) {
	case properties.AlwaysFetch:
		all := append(v.offlineEvidence(order), v.onlineEvidence(ctx, cert, order)...)
		outcome = v.evaluate(ctx, r, vc, cert, date, sortEvidence(all, order))
	case properties.NeverFetch:
		outcome = v.evaluate(ctx, r, vc, cert, date, sortEvidence(v.offlineEvidence(order), order))
	default:
		outcome = v.evaluate(ctx, r, vc, cert, date, sortEvidence(v.offlineEvidence(order), order))
		if !outcome.Definitive() {
			online := v.evaluate(ctx, r, vc, cert, date, sortEvidence(v.onlineEvidence(ctx, cert, order), order))
			outcome = max(outcome, online)
		}
	}

	if outcome.Definitive() {
		return outcome
	}

	status := report.Info
	if props.IndeterminateRevocationFatal() {
		status = report.Invalid
	}
	r.AddReportItem(report.NewCertificateReportItem(cert, CheckRevocation, "revocation status could not be determined", nil, status))
	return Indeterminate
}

func (v *revocationDataValidator) skipReason(vc vcontext.ValidationContext, cert *x509.Certificate, props *properties.SignatureValidationProperties) string {
	switch {
	case vc.CertificateSource() == vcontext.Trusted:
		return "revocation check skipped for a trusted certificate"
	case isSelfSigned(v.b.SignatureVerifier(), cert):
		return "revocation check skipped for a self-signed certificate"
	case vc.CertificateSource() == vcontext.OCSPIssuer && extensions.OCSPNoCheck().ExistsInCertificate(cert):
		return "revocation check skipped for an OCSP responder carrying id-pkix-ocsp-nocheck"
	case vc.CountValidatorContext(vcontext.OCSPValidator, vcontext.CRLValidator) >= props.MaxRevocationNesting():
		return "revocation check skipped: revocation data validation is nested too deeply"
	}
	return ""
}

func (v *revocationDataValidator) clients() ([]OcspClient, []CrlClient) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.ocspClients), slices.Clone(v.crlClients)
}

func (v *revocationDataValidator) offlineEvidence(order []properties.EvidenceKind) []evidence {
	ocspClients, crlClients := v.clients()
	var out []evidence

	if slices.Contains(order, properties.OCSP) {
		for _, c := range ocspClients {
			vc, ok := c.(*ValidationOcspClient)
			if !ok {
				continue
			}
			for _, info := range vc.Responses() {
				out = append(out, evidence{
					kind:           properties.OCSP,
					thisUpdate:     info.Single.ThisUpdate,
					generationDate: info.TrustedGenerationDate,
					timeContext:    info.TimeBasedContext,
					single:         info.Single,
					basic:          info.Basic,
				})
			}
		}
	}

	if slices.Contains(order, properties.CRL) {
		for _, c := range crlClients {
			vc, ok := c.(*ValidationCrlClient)
			if !ok {
				continue
			}
			for _, info := range vc.Crls() {
				out = append(out, evidence{
					kind:           properties.CRL,
					thisUpdate:     info.CRL.ThisUpdate,
					generationDate: info.TrustedGenerationDate,
					timeContext:    info.TimeBasedContext,
					crl:            info.CRL,
				})
			}
		}
	}
	return out
}

// onlineEvidence queries every non-offline client. Failures are logged
// and yield no evidence.
func (v *revocationDataValidator) onlineEvidence(ctx context.Context, cert *x509.Certificate, order []properties.EvidenceKind) []evidence {
	ocspClients, crlClients := v.clients()
	log := v.b.Logger()
	now := v.b.Now()
	var out []evidence

	if slices.Contains(order, properties.OCSP) && hasOnline(ocspClients) {
		issuers := verifiedIssuers(v.b.SignatureVerifier(), cert, issuerCandidates(v.b.TrustedCertificatesStore(), cert))
		if len(issuers) == 0 {
			log.Printf("ocsp: no issuer available to query status of %s", cert.Subject)
		}
		for _, c := range ocspClients {
			if _, offline := c.(*ValidationOcspClient); offline || len(issuers) == 0 {
				continue
			}
			der, err := c.GetEncoded(ctx, cert, issuers[0])
			if err != nil {
				log.Printf("ocsp: retrieval for %s failed: %v", cert.Subject, err)
				continue
			}
			if len(der) == 0 {
				continue
			}
			basic, err := revdata.ParseOCSP(der)
			if err != nil {
				log.Printf("ocsp: response for %s could not be decoded: %v", cert.Subject, err)
				continue
			}
			for i := range basic.Responses {
				out = append(out, evidence{
					kind:           properties.OCSP,
					thisUpdate:     basic.Responses[i].ThisUpdate,
					generationDate: now,
					timeContext:    vcontext.Present,
					single:         &basic.Responses[i],
					basic:          basic,
				})
			}
		}
	}

	if slices.Contains(order, properties.CRL) {
		for _, c := range crlClients {
			if _, offline := c.(*ValidationCrlClient); offline {
				continue
			}
			blobs, err := c.GetEncoded(ctx, cert)
			if err != nil {
				log.Printf("crl: retrieval for %s failed: %v", cert.Subject, err)
				continue
			}
			for _, blob := range blobs {
				crl, err := revdata.ParseCRL(blob)
				if err != nil {
					log.Printf("crl: CRL for %s could not be decoded: %v", cert.Subject, err)
					continue
				}
				out = append(out, evidence{
					kind:           properties.CRL,
					thisUpdate:     crl.ThisUpdate,
					generationDate: now,
					timeContext:    vcontext.Present,
					crl:            crl,
				})
			}
		}
	}
	return out
}

func hasOnline(clients []OcspClient) bool {
	for _, c := range clients {
		if _, offline := c.(*ValidationOcspClient); !offline {
			return true
		}
	}
	return false
}

// sortEvidence orders ev by kind rank, then newest thisUpdate first.
func sortEvidence(ev []evidence, order []properties.EvidenceKind) []evidence {
	slices.SortStableFunc(ev, func(a, b evidence) int {
		if ra, rb := slices.Index(order, a.kind), slices.Index(order, b.kind); ra != rb {
			return ra - rb
		}
		return b.thisUpdate.Compare(a.thisUpdate)
	})
	return ev
}

func (v *revocationDataValidator) evaluate(ctx context.Context, r *report.ValidationReport, vc vcontext.ValidationContext, cert *x509.Certificate, date time.Time, ev []evidence) RevocationOutcome {
	outcome := NotApplicable
	for _, e := range ev {
		if ctx.Err() != nil {
			break
		}

		// Freshness is judged in the time context the evidence was
		// gathered in, not the caller's.
		evCtx := vc.WithTimeBasedContext(e.timeContext)
		var o RevocationOutcome
		switch e.kind {
		case properties.OCSP:
			o = v.b.OCSPValidator().Validate(ctx, r, evCtx, cert, e.single, e.basic, e.generationDate, date)
		case properties.CRL:
			o = v.b.CRLValidator().Validate(ctx, r, evCtx, cert, e.crl, date, e.generationDate)
		}

		if o.Definitive() {
			return o
		}
		outcome = max(outcome, o)
	}
	return outcome
}
