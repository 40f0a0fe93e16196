// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package extensions

import (
	"bytes"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"strings"
)

// Well-known extension and purpose identifiers.
var (
	OIDKeyUsage         = asn1.ObjectIdentifier{2, 5, 29, 15}
	OIDBasicConstraints = asn1.ObjectIdentifier{2, 5, 29, 19}
	OIDExtendedKeyUsage = asn1.ObjectIdentifier{2, 5, 29, 37}
	OIDOCSPNoCheck      = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 5}

	// OIDAnyExtendedKeyUsage makes a certificate eligible for every purpose.
	OIDAnyExtendedKeyUsage = asn1.ObjectIdentifier{2, 5, 29, 37, 0}
	OIDServerAuth          = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 1}
	OIDClientAuth          = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 2}
	OIDCodeSigning         = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 3}
	OIDTimeStamping        = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 8}
	OIDOCSPSigning         = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 9}
)

// Extension is implemented by every matcher in this package.
type Extension interface {
	// ExistsInCertificate reports whether cert satisfies the matcher.
	ExistsInCertificate(cert *x509.Certificate) bool
	// OID returns the extension identifier the matcher inspects.
	OID() asn1.ObjectIdentifier
	fmt.Stringer
}

// findExtension returns the raw value of the extension with the given OID.
func findExtension(cert *x509.Certificate, oid asn1.ObjectIdentifier) ([]byte, bool) {
	if cert == nil {
		return nil, false
	}
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oid) {
			return ext.Value, true
		}
	}
	return nil, false
}

// CertificateExtension matches an extension by OID and, optionally, by its
// exact DER value.
type CertificateExtension struct {
	oid      asn1.ObjectIdentifier
	expected []byte
}

// NewCertificateExtension matches certificates carrying oid. A nil expected
// value matches any value.
func NewCertificateExtension(oid asn1.ObjectIdentifier, expected []byte) *CertificateExtension {
	e := &CertificateExtension{oid: append(asn1.ObjectIdentifier(nil), oid...)}
	if expected != nil {
		e.expected = append([]byte{}, expected...)
	}
	return e
}

// OCSPNoCheck matches the id-pkix-ocsp-nocheck extension.
func OCSPNoCheck() *CertificateExtension { return NewCertificateExtension(OIDOCSPNoCheck, nil) }

// OID returns the matched extension identifier.
func (e *CertificateExtension) OID() asn1.ObjectIdentifier { return e.oid }

// ExistsInCertificate implements [Extension].
func (e *CertificateExtension) ExistsInCertificate(cert *x509.Certificate) bool {
	value, ok := findExtension(cert, e.oid)
	if !ok {
		return false
	}
	return e.expected == nil || bytes.Equal(value, e.expected)
}

func (e *CertificateExtension) String() string {
	if e.expected == nil {
		return fmt.Sprintf("extension %s", e.oid)
	}
	return fmt.Sprintf("extension %s = %X", e.oid, e.expected)
}

// KeyUsageExtension requires a superset of the given key usage bits.
type KeyUsageExtension struct {
	usage x509.KeyUsage
}

// NewKeyUsageExtension combines the given bits into one requirement.
func NewKeyUsageExtension(usages ...x509.KeyUsage) *KeyUsageExtension {
	var u x509.KeyUsage
	for _, bit := range usages {
		u |= bit
	}
	return &KeyUsageExtension{usage: u}
}

// OID returns the key usage extension identifier.
func (e *KeyUsageExtension) OID() asn1.ObjectIdentifier { return OIDKeyUsage }

// Usage returns the combined requested bits.
func (e *KeyUsageExtension) Usage() x509.KeyUsage { return e.usage }

// ExistsInCertificate implements [Extension].
func (e *KeyUsageExtension) ExistsInCertificate(cert *x509.Certificate) bool {
	if _, ok := findExtension(cert, OIDKeyUsage); !ok {
		return false
	}
	return cert.KeyUsage&e.usage == e.usage
}

var keyUsageNames = []struct {
	bit  x509.KeyUsage
	name string
}{
	{x509.KeyUsageDigitalSignature, "digitalSignature"},
	{x509.KeyUsageContentCommitment, "nonRepudiation"},
	{x509.KeyUsageKeyEncipherment, "keyEncipherment"},
	{x509.KeyUsageDataEncipherment, "dataEncipherment"},
	{x509.KeyUsageKeyAgreement, "keyAgreement"},
	{x509.KeyUsageCertSign, "keyCertSign"},
	{x509.KeyUsageCRLSign, "cRLSign"},
	{x509.KeyUsageEncipherOnly, "encipherOnly"},
	{x509.KeyUsageDecipherOnly, "decipherOnly"},
}

// KeyUsageFromName maps an RFC 5280 key usage name to its bit.
func KeyUsageFromName(name string) (x509.KeyUsage, bool) {
	for _, ku := range keyUsageNames {
		if strings.EqualFold(ku.name, name) {
			return ku.bit, true
		}
	}
	return 0, false
}

func (e *KeyUsageExtension) String() string {
	var names []string
	for _, ku := range keyUsageNames {
		if e.usage&ku.bit != 0 {
			names = append(names, ku.name)
		}
	}
	return "key usage [" + strings.Join(names, ", ") + "]"
}

// ExtendedKeyUsageExtension requires at least one of the given purposes,
// or the any-purpose wildcard.
type ExtendedKeyUsageExtension struct {
	purposes []asn1.ObjectIdentifier
}

// NewExtendedKeyUsageExtension matches certificates listing any of purposes.
func NewExtendedKeyUsageExtension(purposes ...asn1.ObjectIdentifier) *ExtendedKeyUsageExtension {
	e := &ExtendedKeyUsageExtension{}
	for _, p := range purposes {
		e.purposes = append(e.purposes, append(asn1.ObjectIdentifier(nil), p...))
	}
	return e
}

// OCSPSigning requires the id-kp-OCSPSigning purpose.
func OCSPSigning() *ExtendedKeyUsageExtension { return NewExtendedKeyUsageExtension(OIDOCSPSigning) }

// TimeStamping requires the id-kp-timeStamping purpose.
func TimeStamping() *ExtendedKeyUsageExtension {
	return NewExtendedKeyUsageExtension(OIDTimeStamping)
}

// OID returns the extended key usage extension identifier.
func (e *ExtendedKeyUsageExtension) OID() asn1.ObjectIdentifier { return OIDExtendedKeyUsage }

// ExistsInCertificate implements [Extension].
func (e *ExtendedKeyUsageExtension) ExistsInCertificate(cert *x509.Certificate) bool {
	raw, ok := findExtension(cert, OIDExtendedKeyUsage)
	if !ok {
		return false
	}
	var actual []asn1.ObjectIdentifier
	if rest, err := asn1.Unmarshal(raw, &actual); err != nil || len(rest) != 0 {
		return false
	}
	for _, a := range actual {
		if a.Equal(OIDAnyExtendedKeyUsage) {
			return true
		}
	}
	for _, want := range e.purposes {
		for _, a := range actual {
			if a.Equal(want) {
				return true
			}
		}
	}
	return false
}

func (e *ExtendedKeyUsageExtension) String() string {
	parts := make([]string, len(e.purposes))
	for i, p := range e.purposes {
		parts[i] = p.String()
	}
	return "extended key usage [" + strings.Join(parts, ", ") + "]"
}

// BasicConstraintsExtension requires either an exact CA flag or an exact
// path length constraint.
type BasicConstraintsExtension struct {
	ca         bool
	pathLength int
	byLength   bool
}

type basicConstraints struct {
	IsCA       bool `asn1:"optional"`
	MaxPathLen int  `asn1:"optional,default:-1"`
}

// NewBasicConstraintsExtension requires the CA flag to equal ca.
func NewBasicConstraintsExtension(ca bool) *BasicConstraintsExtension {
	return &BasicConstraintsExtension{ca: ca}
}

// NewBasicConstraintsPathLength requires the path length constraint to
// equal n. A negative n matches a CA certificate without a constraint.
func NewBasicConstraintsPathLength(n int) *BasicConstraintsExtension {
	if n < 0 {
		n = -1
	}
	return &BasicConstraintsExtension{pathLength: n, byLength: true}
}

// OID returns the basic constraints extension identifier.
func (e *BasicConstraintsExtension) OID() asn1.ObjectIdentifier { return OIDBasicConstraints }

// ExistsInCertificate implements [Extension].
func (e *BasicConstraintsExtension) ExistsInCertificate(cert *x509.Certificate) bool {
	raw, ok := findExtension(cert, OIDBasicConstraints)
	if !ok {
		return false
	}
	var bc basicConstraints
	if rest, err := asn1.Unmarshal(raw, &bc); err != nil || len(rest) != 0 {
		return false
	}
	if e.byLength {
		if !bc.IsCA {
			return false
		}
		return bc.MaxPathLen == e.pathLength
	}
	return bc.IsCA == e.ca
}

func (e *BasicConstraintsExtension) String() string {
	if e.byLength {
		return fmt.Sprintf("basic constraints pathLen=%d", e.pathLength)
	}
	return fmt.Sprintf("basic constraints CA=%t", e.ca)
}
