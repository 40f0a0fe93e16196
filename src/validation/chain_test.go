// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validation_test

import (
	"context"
	"crypto/x509"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/x509/testpki"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/properties"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/report"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

const rsaSHA256 = "1.2.840.113549.1.1.11"

func validate(b *validation.ValidatorChainBuilder, cert *x509.Certificate) *report.ValidationReport {
	return b.CertificateChainValidator().Validate(context.Background(), report.New(), signerContext(), cert, date)
}

func TestCertificateChainValidator(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Generally Trusted Signer",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				p.store.AddGenerallyTrustedCertificates(p.leaf.Cert)

				r := validate(p.builder(), p.leaf.Cert)
				require.Equal(t, 1, r.Len())
				assert.True(t, r.IsValid())
				item := r.Logs()[0]
				assert.Equal(t, report.Info, item.Status)
				assert.Equal(t, validation.CheckCertificate, item.CheckName)
				assert.Contains(t, item.Message, "trusted")
			},
		},
		{
			name: "Issuer Not Found",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				b := validation.NewValidatorChainBuilder().WithClock(func() time.Time { return date })

				r := validate(b, p.leaf.Cert)
				require.Equal(t, 1, r.Len())
				assert.False(t, r.IsValid())
				assert.Equal(t, "issuer certificate not found", r.Logs()[0].Message)
				assert.Same(t, p.leaf.Cert, r.Logs()[0].Certificate)
			},
		},
		{
			name: "Full Chain With CRLs",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				stats := events.NewUsageStatistics()
				mgr := events.NewManager()
				mgr.Register(stats)

				b := p.builder().
					WithEventManager(mgr).
					WithCrlClient(crls(t,
						p.root.CRL(t, testpki.CRLOptions{}),
						p.inter.CRL(t, testpki.CRLOptions{}),
					))

				r := validate(b, p.leaf.Cert)
				assert.True(t, r.IsValid(), r.String())
				assert.Empty(t, r.Failures())
				assert.True(t, hasMessage(r, "certificate not found on CRL"))
				assert.True(t, hasMessage(r, "certificate is trusted for ca"))
				assert.Equal(t, 4, stats.Total())

				locations := map[string]int{}
				for _, o := range stats.Observations() {
					locations[o.UsageLocation] += o.Count
				}
				assert.Equal(t, 2, locations[events.LocationCertificateCheck])
				assert.Equal(t, 2, locations[events.LocationCRLCheck])
			},
		},
		{
			name: "Without Revocation Data",
			testFunc: func(t *testing.T) {
				p := newPKI(t)

				r := validate(p.builder(), p.leaf.Cert)
				assert.True(t, r.IsValid(), r.String())
				assert.True(t, hasMessage(r, "revocation status could not be determined"))
			},
		},
		{
			name: "Expired Certificate",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				leaf := p.inter.Issue(t, testpki.Options{
					CommonName: "expired.example",
					NotBefore:  date.AddDate(-2, 0, 0),
					NotAfter:   date.AddDate(0, 0, -1),
				})

				r := validate(p.builder(), leaf.Cert)
				require.Len(t, r.Failures(), 1)
				assert.Contains(t, r.Failures()[0].Message, "expired")
				assert.Equal(t, 1, r.Len())
			},
		},
		{
			name: "Not Yet Valid Certificate",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				leaf := p.inter.Issue(t, testpki.Options{
					CommonName: "future.example",
					NotBefore:  date.AddDate(0, 0, 1),
					NotAfter:   date.AddDate(1, 0, 0),
				})

				r := validate(p.builder(), leaf.Cert)
				require.Len(t, r.Failures(), 1)
				assert.Contains(t, r.Failures()[0].Message, "not yet valid")
			},
		},
		{
			name: "Historical Validation Of Expired Certificate",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				leaf := p.inter.Issue(t, testpki.Options{
					CommonName: "expired.example",
					NotBefore:  date.AddDate(-2, 0, 0),
					NotAfter:   date.AddDate(0, 0, -1),
				})

				r := p.builder().CertificateChainValidator().Validate(context.Background(), report.New(),
					signerContext(), leaf.Cert, date.AddDate(0, 0, -2))
				for _, f := range r.Failures() {
					assert.NotContains(t, f.Message, "expired")
				}
			},
		},
		{
			name: "Missing Key Usage Continues By Default",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				weak := p.root.Issue(t, testpki.Options{CommonName: "Weak CA", CA: true, KeyUsage: x509.KeyUsageCRLSign})
				leaf := weak.IssueLeaf(t, "weak.example")
				p.store.AddKnownCertificates(weak.Cert)

				r := validate(p.builder(), leaf.Cert)
				require.Len(t, r.Failures(), 1)
				assert.Contains(t, r.Failures()[0].Message, "is missing")
				assert.Same(t, weak.Cert, r.Failures()[0].Certificate)
				assert.True(t, hasMessage(r, "certificate is trusted for ca"))
			},
		},
		{
			name: "Missing Key Usage Stops When Configured",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				weak := p.root.Issue(t, testpki.Options{CommonName: "Weak CA", CA: true, KeyUsage: x509.KeyUsageCRLSign})
				leaf := weak.IssueLeaf(t, "weak.example")
				p.store.AddKnownCertificates(weak.Cert)

				b := p.builder()
				b.Properties().SetContinueAfterFailure(vcontext.AllValidators(), vcontext.AllSources(), false)

				r := validate(b, leaf.Cert)
				require.Len(t, r.Failures(), 1)
				assert.False(t, hasMessage(r, "certificate is trusted for ca"))
			},
		},
		{
			name: "Untrusted Self-Signed Certificate",
			testFunc: func(t *testing.T) {
				stranger := testpki.NewRoot(t, "Stranger Root")
				b := validation.NewValidatorChainBuilder().WithClock(func() time.Time { return date })

				r := validate(b, stranger.Cert)
				require.Equal(t, 1, r.Len())
				assert.Equal(t, "self-signed certificate is not trusted", r.Logs()[0].Message)
				assert.Equal(t, report.Invalid, r.Logs()[0].Status)
			},
		},
		{
			name: "Same Name Impostor Issuer",
			testFunc: func(t *testing.T) {
				genuine := testpki.NewRoot(t, "Shared Name Root")
				impostor := testpki.NewRoot(t, "Shared Name Root")
				inter := genuine.IssueCA(t, "Victim Intermediate")

				store := trust.NewTrustedCertificatesStore()
				store.AddCATrustedCertificates(impostor.Cert)
				b := validation.NewValidatorChainBuilder().
					WithTrustedCertificatesStore(store).
					WithClock(func() time.Time { return date })

				r := validate(b, inter.Cert)
				require.Len(t, r.Failures(), 1)
				assert.Contains(t, r.Failures()[0].Message, "signature could not be verified")
			},
		},
		{
			name: "Key Rollover",
			testFunc: func(t *testing.T) {
				opts := testpki.Options{
					CommonName: "Rollover Root",
					CA:         true,
					KeyUsage:   x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
				}
				oldRoot := testpki.NewSelfSigned(t, opts)
				newRoot := testpki.NewSelfSigned(t, opts)
				inter := newRoot.IssueCA(t, "Rolled Intermediate")
				leaf := inter.IssueLeaf(t, "rolled.example")

				store := trust.NewTrustedCertificatesStore()
				store.AddCATrustedCertificates(oldRoot.Cert, newRoot.Cert)
				store.AddKnownCertificates(inter.Cert)
				b := validation.NewValidatorChainBuilder().
					WithTrustedCertificatesStore(store).
					WithClock(func() time.Time { return date })

				r := validate(b, leaf.Cert)
				assert.True(t, r.IsValid(), r.String())

				var anchor *x509.Certificate
				for _, item := range r.Logs() {
					if item.Message == "certificate is trusted for ca" {
						anchor = item.Certificate
					}
				}
				require.NotNil(t, anchor)
				assert.True(t, anchor.Equal(newRoot.Cert))
			},
		},
		{
			name: "Trusted Issuer Preferred Over Cross Certificate",
			testFunc: func(t *testing.T) {
				root := testpki.NewRoot(t, "Cross Signed Root")
				bridge := testpki.NewRoot(t, "Bridge Root")
				cross := bridge.Issue(t, testpki.Options{
					CommonName: "Cross Signed Root",
					CA:         true,
					KeyUsage:   x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
					Key:        root.Key,
				})
				inter := root.IssueCA(t, "Cross Intermediate")
				leaf := inter.IssueLeaf(t, "cross.example")

				store := trust.NewTrustedCertificatesStore()
				store.AddKnownCertificates(cross.Cert, inter.Cert)
				store.AddCATrustedCertificates(root.Cert)
				b := validation.NewValidatorChainBuilder().
					WithTrustedCertificatesStore(store).
					WithClock(func() time.Time { return date })

				r := validate(b, leaf.Cert)
				assert.True(t, r.IsValid(), r.String())
				assert.False(t, hasMessage(r, "issuer certificate not found"))

				var anchor *x509.Certificate
				for _, item := range r.Logs() {
					if item.Message == "certificate is trusted for ca" {
						anchor = item.Certificate
					}
				}
				require.NotNil(t, anchor)
				assert.True(t, anchor.Equal(root.Cert))
			},
		},
		{
			name: "Chain Too Long",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				b := p.builder()
				require.NoError(t, b.Properties().SetMaxChainLength(2))

				r := validate(b, p.leaf.Cert)
				require.Len(t, r.Failures(), 1)
				assert.Contains(t, r.Failures()[0].Message, "chain too long")
				assert.Same(t, p.root.Cert, r.Failures()[0].Certificate)
			},
		},
		{
			name: "Circular Issuer Chain",
			testFunc: func(t *testing.T) {
				a := testpki.NewRoot(t, "Loop A")
				bCA := a.IssueCA(t, "Loop B")
				a2 := bCA.Issue(t, testpki.Options{
					CommonName: "Loop A",
					CA:         true,
					KeyUsage:   x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
					Key:        a.Key,
				})

				store := trust.NewTrustedCertificatesStore()
				store.AddKnownCertificates(bCA.Cert, a2.Cert)
				b := validation.NewValidatorChainBuilder().
					WithTrustedCertificatesStore(store).
					WithClock(func() time.Time { return date })

				r := validate(b, bCA.Cert)
				require.Len(t, r.Failures(), 1)
				assert.Equal(t, "circular issuer chain", r.Failures()[0].Message)
			},
		},
		{
			name: "Revoked Signer Stops The Walk",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				crl := p.inter.CRL(t, testpki.CRLOptions{
					Entries: []x509.RevocationListEntry{testpki.Revoked(p.leaf.Cert, date.Add(-2*time.Hour), 1)},
				})

				r := validate(p.builder().WithCrlClient(crls(t, crl)), p.leaf.Cert)
				require.Len(t, r.Failures(), 1)
				assert.Contains(t, r.Failures()[0].Message, "keyCompromise")
				assert.Equal(t, validation.CheckCRL, r.Failures()[0].CheckName)
				assert.False(t, hasMessage(r, "certificate is trusted for ca"))
			},
		},
		{
			name: "Revoked After Validation Date",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				crl := p.inter.CRL(t, testpki.CRLOptions{
					ThisUpdate: date.Add(-time.Hour),
					Entries:    []x509.RevocationListEntry{testpki.Revoked(p.leaf.Cert, date.Add(-30*time.Minute), 1)},
				})

				r := p.builder().WithCrlClient(crls(t, crl)).CertificateChainValidator().
					Validate(context.Background(), report.New(), signerContext(), p.leaf.Cert, date.Add(-45*time.Minute))
				assert.True(t, r.IsValid(), r.String())
				assert.True(t, hasMessage(r, "after the validation date"))
			},
		},
		{
			name: "Interrupted",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				ctx, cancel := context.WithCancel(context.Background())
				cancel()

				r := p.builder().CertificateChainValidator().Validate(ctx, report.New(), signerContext(), p.leaf.Cert, date)
				require.Len(t, r.Failures(), 1)
				assert.Equal(t, "certificate chain validation was interrupted", r.Failures()[0].Message)
				assert.ErrorIs(t, r.Failures()[0].Err, context.Canceled)
			},
		},
		{
			name: "Nil Arguments Panic",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				v := p.builder().CertificateChainValidator()

				assert.PanicsWithValue(t, "validation: nil report", func() {
					v.Validate(context.Background(), nil, signerContext(), p.leaf.Cert, date)
				})
				assert.PanicsWithValue(t, "validation: nil certificate", func() {
					v.Validate(context.Background(), report.New(), signerContext(), nil, date)
				})
			},
		},
		{
			name: "Report Is Returned For Chaining",
			testFunc: func(t *testing.T) {
				p := newPKI(t)
				r := report.New()
				assert.Same(t, r, p.builder().CertificateChainValidator().Validate(context.Background(), r, signerContext(), p.leaf.Cert, date))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestCertificateChainValidatorAlgorithmCompliance(t *testing.T) {
	profile := events.NewComplianceProfile("rsa-only", rsaSHA256)

	tests := []struct {
		name       string
		severity   properties.ViolationSeverity
		valid      bool
		reachRoot  bool
		violations int
	}{
		{name: "Info", severity: properties.ViolationInfo, valid: true, reachRoot: true, violations: 2},
		{name: "Invalid", severity: properties.ViolationInvalid, valid: false, reachRoot: true, violations: 2},
		{name: "Fatal", severity: properties.ViolationFatal, valid: false, reachRoot: false, violations: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPKI(t)
			b := p.builder()
			b.Properties().SetAlgorithmCompliance(profile, tt.severity)

			r := validate(b, p.leaf.Cert)
			assert.Equal(t, tt.valid, r.IsValid(), r.String())
			assert.Equal(t, tt.reachRoot, hasMessage(r, "certificate is trusted for ca"))

			n := 0
			for _, m := range messages(r.Logs()) {
				if strings.Contains(m, "not allowed by the rsa-only profile") {
					n++
				}
			}
			assert.Equal(t, tt.violations, n)
		})
	}
}

func TestCertificateChainValidatorTrustedForOtherRole(t *testing.T) {
	p := newPKI(t)
	p.store.AddOcspTrustedCertificates(p.leaf.Cert)

	r := validate(p.builder(), p.leaf.Cert)
	assert.True(t, r.IsValid(), r.String())
	assert.True(t, hasMessage(r, "is trusted for ocsp but is used as signer-cert"))
	assert.True(t, hasMessage(r, "certificate is trusted for ca"))
}

func TestCertificateChainValidatorResponderContext(t *testing.T) {
	p := newPKI(t)
	responder := p.inter.IssueOCSPResponder(t, "ocsp.example")
	p.store.AddOcspTrustedCertificates(responder.Cert)

	vc := vcontext.New(vcontext.OCSPValidator, vcontext.OCSPIssuer, vcontext.Present)
	r := p.builder().CertificateChainValidator().Validate(context.Background(), report.New(), vc, responder.Cert, date)
	require.Equal(t, 1, r.Len())
	assert.Equal(t, "certificate is trusted for ocsp", r.Logs()[0].Message)
}
