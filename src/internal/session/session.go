// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package session

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/logger"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/fetch"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/properties"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/report"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/revdata"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

// ErrNoCertificate is returned when a request has nothing to validate.
var ErrNoCertificate = errors.New("session: no certificate to validate")

// Request describes one validation.
type Request struct {
	Certificate *x509.Certificate

	// Trusted maps a role to the certificates trusted for it.
	Trusted map[trust.Role][]*x509.Certificate
	// Known certificates may be used to build the chain but are not trusted.
	Known []*x509.Certificate

	// CRLs and OCSPResponses are caller supplied evidence, DER or PEM.
	CRLs          [][]byte
	OCSPResponses [][]byte

	// Date is the validation date; zero means now.
	Date       time.Time
	Historical bool
	Source     vcontext.CertificateSource

	// Properties is the policy; nil means the defaults.
	Properties *properties.SignatureValidationProperties

	// Online enables the HTTP retrieval clients.
	Online   bool
	HTTP     *fetch.HTTPConfig
	CRLCache *fetch.CRLCache

	// Handlers receive every event dispatched during the session.
	Handlers []events.Handler
	Logger   logger.Logger
}

// Result is the outcome of [Run].
type Result struct {
	ID         uuid.UUID                `json:"sessionId"`
	Subject    string                   `json:"subject"`
	Date       time.Time                `json:"validationDate"`
	Context    string                   `json:"context"`
	Report     *report.ValidationReport `json:"report"`
	Algorithms []events.Observation     `json:"algorithms"`
	Statistics *events.UsageStatistics  `json:"-"`
	Result     report.ValidationResult  `json:"result"`
}

// Run validates req.Certificate and returns the session result. Errors are
// returned only for unusable inputs; validation findings are in the report.
func Run(ctx context.Context, req Request) (*Result, error) {
	if req.Certificate == nil {
		return nil, ErrNoCertificate
	}

	store := trust.NewTrustedCertificatesStore()
	for role, certs := range req.Trusted {
		store.AddTrustedCertificates(role, certs...)
	}
	store.AddKnownCertificates(req.Known...)

	props := req.Properties
	if props == nil {
		props = properties.NewSignatureValidationProperties()
	}

	log := req.Logger
	if log == nil {
		log = logger.NopLogger{}
	}

	if req.Online {
		fetched, err := fetch.NewIssuerClient(req.HTTP).Complete(ctx, req.Certificate, func(c *x509.Certificate) bool {
			name := trust.NameKey(c.Issuer)
			return len(store.GetKnownCertificates(name)) > 0 ||
				len(store.GetGenerallyTrustedCertificates(name)) > 0 ||
				len(store.GetCertificatesTrustedForCA(name)) > 0
		}, props.MaxChainLength())
		if err != nil {
			log.Printf("issuer retrieval for %s: %v", req.Certificate.Subject, err)
		}
		store.AddKnownCertificates(fetched...)
	}

	stats := events.NewUsageStatistics()
	mgr := events.NewManager()
	mgr.Register(stats)
	for _, h := range req.Handlers {
		mgr.Register(h)
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}
	tc := vcontext.Present
	if req.Historical {
		tc = vcontext.Historical
	}

	b := validation.NewValidatorChainBuilder().
		WithTrustedCertificatesStore(store).
		WithProperties(props).
		WithEventManager(mgr).
		WithLogger(log)

	if len(req.CRLs) > 0 {
		offline := validation.NewValidationCrlClient()
		for i, data := range req.CRLs {
			crl, err := revdata.ParseCRL(data)
			if err != nil {
				return nil, fmt.Errorf("session: CRL %d: %w", i+1, err)
			}
			offline.AddCrl(crl, date, tc)
		}
		b.WithCrlClient(offline)
	}
	if len(req.OCSPResponses) > 0 {
		offline := validation.NewValidationOcspClient()
		for i, data := range req.OCSPResponses {
			basic, err := revdata.ParseOCSP(data)
			if err != nil {
				return nil, fmt.Errorf("session: OCSP response %d: %w", i+1, err)
			}
			offline.AddResponse(basic, date, tc)
		}
		b.WithOcspClient(offline)
	}
	if req.Online {
		b.WithOcspClient(fetch.NewOCSPClient(req.HTTP))
		b.WithCrlClient(fetch.NewCRLClient(req.HTTP, req.CRLCache))
	}

	vc := vcontext.New(vcontext.SignatureValidator, req.Source, tc)
	r := b.CertificateChainValidator().Validate(ctx, report.New(), vc, req.Certificate, date)

	return &Result{
		ID:         uuid.New(),
		Subject:    req.Certificate.Subject.String(),
		Date:       date.UTC(),
		Context:    vc.String(),
		Report:     r,
		Algorithms: stats.Observations(),
		Statistics: stats,
		Result:     r.ValidationResult(),
	}, nil
}
