// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validation

import (
	"bytes"
	"context"
	"crypto/x509"
	"slices"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/revdata"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

// OcspResponseValidationInfo is caller-supplied OCSP evidence together
// with the trusted date it was obtained at.
type OcspResponseValidationInfo struct {
	Single                *revdata.SingleResponse
	Basic                 *revdata.BasicOCSPResponse
	TrustedGenerationDate time.Time
	TimeBasedContext      vcontext.TimeBasedContext
}

// CrlValidationInfo is a caller-supplied CRL together with the trusted
// date it was obtained at.
type CrlValidationInfo struct {
	CRL                   *x509.RevocationList
	TrustedGenerationDate time.Time
	TimeBasedContext      vcontext.TimeBasedContext
}

// ValidationOcspClient holds OCSP evidence gathered outside the validator,
// e.g. from a document security store. Added to a [RevocationDataValidator]
// it is treated as offline evidence.
type ValidationOcspClient struct {
	mu        sync.RWMutex
	responses []OcspResponseValidationInfo
}

// NewValidationOcspClient returns an empty client.
func NewValidationOcspClient() *ValidationOcspClient { return &ValidationOcspClient{} }

// AddResponse stores every single response of basic.
func (c *ValidationOcspClient) AddResponse(basic *revdata.BasicOCSPResponse, generationDate time.Time, tc vcontext.TimeBasedContext) *ValidationOcspClient {
	if basic == nil {
		return c
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range basic.Responses {
		c.responses = append(c.responses, OcspResponseValidationInfo{
			Single:                &basic.Responses[i],
			Basic:                 basic,
			TrustedGenerationDate: generationDate,
			TimeBasedContext:      tc,
		})
	}
	return c
}

// Responses returns the stored evidence.
func (c *ValidationOcspClient) Responses() []OcspResponseValidationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.responses)
}

// GetEncoded returns the encoded basic response about cert, or nil.
func (c *ValidationOcspClient) GetEncoded(_ context.Context, cert, issuer *x509.Certificate) ([]byte, error) {
	for _, info := range c.Responses() {
		if info.Single.CertID.Matches(cert, issuer) {
			return info.Basic.Raw, nil
		}
	}
	return nil, nil
}

// ValidationCrlClient holds CRLs gathered outside the validator.
type ValidationCrlClient struct {
	mu   sync.RWMutex
	crls []CrlValidationInfo
}

// NewValidationCrlClient returns an empty client.
func NewValidationCrlClient() *ValidationCrlClient { return &ValidationCrlClient{} }

// AddCrl stores crl.
func (c *ValidationCrlClient) AddCrl(crl *x509.RevocationList, generationDate time.Time, tc vcontext.TimeBasedContext) *ValidationCrlClient {
	if crl == nil {
		return c
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crls = append(c.crls, CrlValidationInfo{CRL: crl, TrustedGenerationDate: generationDate, TimeBasedContext: tc})
	return c
}

// Crls returns the stored evidence.
func (c *ValidationCrlClient) Crls() []CrlValidationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.crls)
}

// GetEncoded returns the encoded CRLs issued under cert's issuer name.
func (c *ValidationCrlClient) GetEncoded(_ context.Context, cert *x509.Certificate) ([][]byte, error) {
	var out [][]byte
	for _, info := range c.Crls() {
		if bytes.Equal(info.CRL.RawIssuer, cert.RawIssuer) {
			out = append(out, info.CRL.Raw)
		}
	}
	return out, nil
}
