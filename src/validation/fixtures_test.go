// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validation_test

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/x509/testpki"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/report"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/revdata"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

var date = testpki.Epoch

// pki is a three level hierarchy: a CA-trusted root, a known intermediate
// and a signer certificate.
type pki struct {
	root, inter, leaf *testpki.Entity
	store             *trust.TrustedCertificatesStore
}

func newPKI(t *testing.T) *pki {
	t.Helper()
	root := testpki.NewRoot(t, "Test Root CA")
	inter := root.IssueCA(t, "Test Intermediate CA")
	leaf := inter.IssueLeaf(t, "signer.example")

	store := trust.NewTrustedCertificatesStore()
	store.AddCATrustedCertificates(root.Cert)
	store.AddKnownCertificates(inter.Cert)

	return &pki{root: root, inter: inter, leaf: leaf, store: store}
}

func (p *pki) builder() *validation.ValidatorChainBuilder {
	return validation.NewValidatorChainBuilder().
		WithTrustedCertificatesStore(p.store).
		WithClock(func() time.Time { return date })
}

func signerContext() vcontext.ValidationContext {
	return vcontext.New(vcontext.SignatureValidator, vcontext.SignerCert, vcontext.Present)
}

func chainContext() vcontext.ValidationContext {
	return vcontext.New(vcontext.CertificateChainValidator, vcontext.SignerCert, vcontext.Present)
}

func parseCRL(t *testing.T, der []byte) *x509.RevocationList {
	t.Helper()
	crl, err := revdata.ParseCRL(der)
	require.NoError(t, err)
	return crl
}

func parseOCSP(t *testing.T, der []byte) *revdata.BasicOCSPResponse {
	t.Helper()
	basic, err := revdata.ParseOCSPResponse(der)
	require.NoError(t, err)
	return basic
}

// crls is offline CRL evidence obtained at date.
func crls(t *testing.T, ders ...[]byte) *validation.ValidationCrlClient {
	t.Helper()
	c := validation.NewValidationCrlClient()
	for _, der := range ders {
		c.AddCrl(parseCRL(t, der), date, vcontext.Present)
	}
	return c
}

// responses is offline OCSP evidence obtained at date.
func responses(t *testing.T, ders ...[]byte) *validation.ValidationOcspClient {
	t.Helper()
	c := validation.NewValidationOcspClient()
	for _, der := range ders {
		c.AddResponse(parseOCSP(t, der), date, vcontext.Present)
	}
	return c
}

func messages(items []*report.ReportItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Message)
	}
	return out
}

func hasMessage(r *report.ValidationReport, substr string) bool {
	for _, m := range messages(r.Logs()) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// onlineOCSP serves a fixed response and counts calls.
type onlineOCSP struct {
	der   []byte
	err   error
	calls atomic.Int32
}

func (c *onlineOCSP) GetEncoded(context.Context, *x509.Certificate, *x509.Certificate) ([]byte, error) {
	c.calls.Add(1)
	return c.der, c.err
}

// onlineCRL serves fixed CRLs and counts calls.
type onlineCRL struct {
	ders  [][]byte
	err   error
	calls atomic.Int32
}

func (c *onlineCRL) GetEncoded(context.Context, *x509.Certificate) ([][]byte, error) {
	c.calls.Add(1)
	return c.ders, c.err
}

var errUnreachable = errors.New("responder unreachable")

// recordingLogger keeps every line.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *recordingLogger) Println(v ...any) { l.Printf("%v", v) }

func (l *recordingLogger) SetOutput(io.Writer) {}

func (l *recordingLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
