// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package fetch

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	x509certs "github.com/H0llyW00dzZ/x509-trust-validator/src/internal/x509/certs"
)

var (
	// ErrNoIssuerURL is returned for a certificate without an http(s)
	// caIssuers location.
	ErrNoIssuerURL = errors.New("fetch: no caIssuers location")
	// ErrIssuerMismatch is returned when nothing downloaded from a caIssuers
	// location signed the certificate.
	ErrIssuerMismatch = errors.New("fetch: downloaded certificate did not issue the certificate")
)

// IssuerClient downloads missing issuer certificates from the caIssuers
// locations in a certificate's Authority Information Access extension.
//
// Downloaded certificates are never trusted; they only help build the chain.
type IssuerClient struct {
	config  *HTTPConfig
	decoder *x509certs.Decoder
}

// NewIssuerClient returns a client using cfg. A nil cfg gets defaults.
func NewIssuerClient(cfg *HTTPConfig) *IssuerClient {
	if cfg == nil {
		cfg = NewHTTPConfig("")
	}
	return &IssuerClient{config: cfg, decoder: x509certs.New()}
}

// Fetch returns the certificate that issued cert, taken from the first
// caIssuers location serving one. The location may hold DER, PEM or a
// PKCS#7 bundle.
func (c *IssuerClient) Fetch(ctx context.Context, cert *x509.Certificate) (*x509.Certificate, error) {
	var errs []error
	for _, loc := range cert.IssuingCertificateURL {
		u, err := url.Parse(loc)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create issuer request: %w", err))
			continue
		}
		body, err := c.config.do(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("issuer %w", err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		candidates, err := c.decoder.DecodeMultiple(body)
		if err != nil {
			errs = append(errs, fmt.Errorf("issuer from %s: %w", loc, err))
			continue
		}
		for _, candidate := range candidates {
			if cert.CheckSignatureFrom(candidate) == nil {
				return candidate, nil
			}
		}
		errs = append(errs, fmt.Errorf("%w at %s", ErrIssuerMismatch, loc))
	}

	if len(errs) == 0 {
		return nil, ErrNoIssuerURL
	}
	return nil, errors.Join(errs...)
}

// Complete walks from cert toward a root, downloading each issuer for which
// hasIssuer reports false. It stops at a self-issued certificate, at a
// certificate without a caIssuers location, or after limit downloads.
//
// The certificates downloaded before an error are returned with it.
func (c *IssuerClient) Complete(ctx context.Context, cert *x509.Certificate, hasIssuer func(*x509.Certificate) bool, limit int) ([]*x509.Certificate, error) {
	var out []*x509.Certificate
	current := cert
	for len(out) < limit {
		if bytes.Equal(current.RawIssuer, current.RawSubject) || hasIssuer(current) || len(current.IssuingCertificateURL) == 0 {
			break
		}
		issuer, err := c.Fetch(ctx, current)
		if err != nil {
			return out, err
		}
		out = append(out, issuer)
		current = issuer
	}
	return out, nil
}
