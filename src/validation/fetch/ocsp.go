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

	"golang.org/x/crypto/ocsp"
)

// OCSPClient queries the OCSP responders named in a certificate.
type OCSPClient struct {
	config *HTTPConfig
}

// NewOCSPClient returns a client using cfg. A nil cfg gets defaults.
func NewOCSPClient(cfg *HTTPConfig) *OCSPClient {
	if cfg == nil {
		cfg = NewHTTPConfig("")
	}
	return &OCSPClient{config: cfg}
}

// GetEncoded asks each responder listed in cert.OCSPServer in turn and
// returns the first encoded OCSPResponse received. It returns nil without
// error when cert names no responder.
//
// The request identifies cert by a SHA-1 CertID, which every responder is
// required to support.
func (c *OCSPClient) GetEncoded(ctx context.Context, cert, issuer *x509.Certificate) ([]byte, error) {
	if len(cert.OCSPServer) == 0 {
		return nil, nil
	}

	reqData, err := ocsp.CreateRequest(cert, issuer, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCSP request: %w", err)
	}

	var errs []error
	for _, server := range cert.OCSPServer {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, server, bytes.NewReader(reqData))
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create OCSP HTTP request: %w", err))
			continue
		}
		req.Header.Set("Content-Type", "application/ocsp-request")
		req.Header.Set("Accept", "application/ocsp-response")

		body, err := c.config.do(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("OCSP %w", err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return body, nil
	}
	return nil, errors.Join(errs...)
}
