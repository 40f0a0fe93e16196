// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package fetch

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/revdata"
)

// CRLClient downloads the CRLs named in a certificate's distribution
// points.
type CRLClient struct {
	config *HTTPConfig
	cache  *CRLCache
}

// NewCRLClient returns a client using cfg and cache. A nil cfg gets
// defaults; a nil cache disables caching.
func NewCRLClient(cfg *HTTPConfig, cache *CRLCache) *CRLClient {
	if cfg == nil {
		cfg = NewHTTPConfig("")
	}
	return &CRLClient{config: cfg, cache: cache}
}

// GetEncoded returns the DER of every CRL that could be retrieved from
// cert.CRLDistributionPoints. Only http and https points are followed.
// An error is returned only when nothing could be retrieved.
func (c *CRLClient) GetEncoded(ctx context.Context, cert *x509.Certificate) ([][]byte, error) {
	var (
		out  [][]byte
		errs []error
	)
	for _, point := range cert.CRLDistributionPoints {
		u, err := url.Parse(point)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}

		der, err := c.fetch(ctx, point)
		if err != nil {
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		out = append(out, der)
	}

	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (c *CRLClient) fetch(ctx context.Context, point string) ([]byte, error) {
	if c.cache != nil {
		if der, ok := c.cache.Get(point); ok {
			return der, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, point, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create CRL request: %w", err)
	}
	body, err := c.config.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CRL %w", err)
	}

	// Decoding here normalises PEM to DER and yields nextUpdate for the cache.
	crl, err := revdata.ParseCRL(body)
	if err != nil {
		return nil, fmt.Errorf("CRL from %s: %w", point, err)
	}
	if c.cache != nil {
		c.cache.Set(point, crl.Raw, crl.NextUpdate)
	}
	return crl.Raw, nil
}
