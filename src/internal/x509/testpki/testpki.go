// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package testpki

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ocsp"
)

// Epoch is the reference instant fixtures are built around.
var Epoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

var serialCounter atomic.Int64

// Entity is a certificate together with its private key.
type Entity struct {
	Cert *x509.Certificate
	Key  crypto.Signer
}

// Options describes a certificate to issue. Zero values pick sensible
// defaults: a serial from a counter and a validity of Epoch±1 year.
type Options struct {
	CommonName            string
	Serial                int64
	NotBefore             time.Time
	NotAfter              time.Time
	CA                    bool
	NoBasicConstraints    bool
	MaxPathLen            int
	MaxPathLenZero        bool
	KeyUsage              x509.KeyUsage
	ExtKeyUsage           []x509.ExtKeyUsage
	UnknownExtKeyUsage    []asn1.ObjectIdentifier
	ExtraExtensions       []pkix.Extension
	OCSPServer            []string
	CRLDistributionPoints []string
	IssuingCertificateURL []string
	// Key overrides the generated key, to model key rollover or reuse.
	Key crypto.Signer
}

func newKey(t testing.TB) crypto.Signer {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func (o Options) template() *x509.Certificate {
	serial := o.Serial
	if serial == 0 {
		serial = serialCounter.Add(1) + 1000
	}
	notBefore, notAfter := o.NotBefore, o.NotAfter
	if notBefore.IsZero() {
		notBefore = Epoch.AddDate(-1, 0, 0)
	}
	if notAfter.IsZero() {
		notAfter = Epoch.AddDate(1, 0, 0)
	}
	ski := make([]byte, 20)
	_, _ = rand.Read(ski)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serial),
		SubjectKeyId:          ski,
		Subject:               pkix.Name{CommonName: o.CommonName, Organization: []string{"Test PKI"}},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              o.KeyUsage,
		ExtKeyUsage:           o.ExtKeyUsage,
		UnknownExtKeyUsage:    o.UnknownExtKeyUsage,
		ExtraExtensions:       o.ExtraExtensions,
		OCSPServer:            o.OCSPServer,
		CRLDistributionPoints: o.CRLDistributionPoints,
		IssuingCertificateURL: o.IssuingCertificateURL,
	}
	if !o.NoBasicConstraints {
		tmpl.BasicConstraintsValid = true
		tmpl.IsCA = o.CA
		if o.CA {
			tmpl.MaxPathLen = o.MaxPathLen
			tmpl.MaxPathLenZero = o.MaxPathLenZero
			if o.MaxPathLen == 0 && !o.MaxPathLenZero {
				tmpl.MaxPathLen = -1
			}
		}
	}
	return tmpl
}

// NewRoot creates a self-signed CA certificate.
func NewRoot(t testing.TB, cn string) *Entity {
	t.Helper()
	return NewSelfSigned(t, Options{
		CommonName: cn,
		CA:         true,
		KeyUsage:   x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
	})
}

// NewSelfSigned creates a self-signed certificate from opts.
func NewSelfSigned(t testing.TB, opts Options) *Entity {
	t.Helper()
	key := opts.Key
	if key == nil {
		key = newKey(t)
	}
	tmpl := opts.template()
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &Entity{Cert: cert, Key: key}
}

// Issue signs a new certificate described by opts with e's key.
func (e *Entity) Issue(t testing.TB, opts Options) *Entity {
	t.Helper()
	key := opts.Key
	if key == nil {
		key = newKey(t)
	}
	der, err := x509.CreateCertificate(rand.Reader, opts.template(), e.Cert, key.Public(), e.Key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &Entity{Cert: cert, Key: key}
}

// IssueCA issues an intermediate CA certificate.
func (e *Entity) IssueCA(t testing.TB, cn string) *Entity {
	t.Helper()
	return e.Issue(t, Options{
		CommonName: cn,
		CA:         true,
		KeyUsage:   x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	})
}

// IssueLeaf issues an end-entity signing certificate.
func (e *Entity) IssueLeaf(t testing.TB, cn string) *Entity {
	t.Helper()
	return e.Issue(t, Options{
		CommonName: cn,
		KeyUsage:   x509.KeyUsageDigitalSignature | x509.KeyUsageContentCommitment,
	})
}

// IssueOCSPResponder issues a delegated OCSP signing certificate.
func (e *Entity) IssueOCSPResponder(t testing.TB, cn string) *Entity {
	t.Helper()
	return e.Issue(t, Options{
		CommonName:  cn,
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageOCSPSigning},
	})
}

// CRLOptions describes a CRL issued by an entity.
type CRLOptions struct {
	Number     int64
	ThisUpdate time.Time
	NextUpdate time.Time
	Entries    []x509.RevocationListEntry
}

// Revoked builds a CRL entry for cert.
func Revoked(cert *x509.Certificate, at time.Time, reason int) x509.RevocationListEntry {
	return x509.RevocationListEntry{
		SerialNumber:   cert.SerialNumber,
		RevocationTime: at,
		ReasonCode:     reason,
	}
}

// CRL issues a DER encoded CRL signed by e.
func (e *Entity) CRL(t testing.TB, opts CRLOptions) []byte {
	t.Helper()
	if opts.Number == 0 {
		opts.Number = 1
	}
	if opts.ThisUpdate.IsZero() {
		opts.ThisUpdate = Epoch.Add(-time.Hour)
	}
	if opts.NextUpdate.IsZero() {
		opts.NextUpdate = opts.ThisUpdate.Add(7 * 24 * time.Hour)
	}
	der, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:                    big.NewInt(opts.Number),
		ThisUpdate:                opts.ThisUpdate,
		NextUpdate:                opts.NextUpdate,
		RevokedCertificateEntries: opts.Entries,
	}, e.Cert, e.Key)
	require.NoError(t, err)
	return der
}

// OCSPOptions describes an OCSP response about a single certificate.
type OCSPOptions struct {
	Status           int
	ThisUpdate       time.Time
	NextUpdate       time.Time
	RevokedAt        time.Time
	RevocationReason int
	// Responder signs the response; the issuer signs it when nil.
	Responder *Entity
	// Embed includes the responder certificate in the response.
	Embed bool
}

// OCSPResponse issues a DER encoded OCSP response for cert, issued by e.
func (e *Entity) OCSPResponse(t testing.TB, cert *x509.Certificate, opts OCSPOptions) []byte {
	t.Helper()
	if opts.ThisUpdate.IsZero() {
		opts.ThisUpdate = Epoch.Add(-time.Hour)
	}
	signer := e
	if opts.Responder != nil {
		signer = opts.Responder
	}
	tmpl := ocsp.Response{
		Status:           opts.Status,
		SerialNumber:     cert.SerialNumber,
		ThisUpdate:       opts.ThisUpdate,
		NextUpdate:       opts.NextUpdate,
		RevokedAt:        opts.RevokedAt,
		RevocationReason: opts.RevocationReason,
	}
	if opts.Embed {
		tmpl.Certificate = signer.Cert
	}
	der, err := ocsp.CreateResponse(e.Cert, signer.Cert, tmpl, signer.Key)
	require.NoError(t, err)
	return der
}
