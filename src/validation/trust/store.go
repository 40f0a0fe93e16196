// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package trust

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"sync"
)

// Role is a purpose a certificate can be trusted for.
type Role int

const (
	// General trust implies every other role.
	General Role = iota
	OCSP
	CRL
	Timestamp
	CA

	roleCount
)

var roleNames = [...]string{"general", "ocsp", "crl", "timestamp", "ca"}

func (r Role) String() string {
	if r >= 0 && r < roleCount {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole is the inverse of [Role.String].
func ParseRole(s string) (Role, error) {
	for i, n := range roleNames {
		if n == s {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("trust: unknown role %q", s)
}

// NameKey returns the index key for a distinguished name.
func NameKey(name pkix.Name) string { return name.String() }

type index map[string][]*x509.Certificate

func (ix index) add(cert *x509.Certificate) {
	key := NameKey(cert.Subject)
	for _, c := range ix[key] {
		if c.Equal(cert) {
			return
		}
	}
	ix[key] = append(ix[key], cert)
}

func (ix index) contains(cert *x509.Certificate) bool {
	for _, c := range ix[NameKey(cert.Subject)] {
		if c.Equal(cert) {
			return true
		}
	}
	return false
}

// TrustedCertificatesStore indexes trust anchors by role and subject name.
//
// Thread Safety: Safe for concurrent use. Mutations are expected between
// validation sessions, never during one.
type TrustedCertificatesStore struct {
	mu      sync.RWMutex
	trusted [roleCount]index
	known   index
}

// NewTrustedCertificatesStore returns an empty store.
func NewTrustedCertificatesStore() *TrustedCertificatesStore {
	s := &TrustedCertificatesStore{known: index{}}
	for i := range s.trusted {
		s.trusted[i] = index{}
	}
	return s
}

// AddTrustedCertificates registers certs as trusted for role. Nil entries
// are ignored and duplicates are stored once.
func (s *TrustedCertificatesStore) AddTrustedCertificates(role Role, certs ...*x509.Certificate) {
	if role < 0 || role >= roleCount {
		panic(fmt.Sprintf("trust: invalid role %d", int(role)))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range certs {
		if c != nil {
			s.trusted[role].add(c)
		}
	}
}

// AddGenerallyTrustedCertificates trusts certs for every role.
func (s *TrustedCertificatesStore) AddGenerallyTrustedCertificates(certs ...*x509.Certificate) {
	s.AddTrustedCertificates(General, certs...)
}

// AddOcspTrustedCertificates trusts certs as OCSP responders.
func (s *TrustedCertificatesStore) AddOcspTrustedCertificates(certs ...*x509.Certificate) {
	s.AddTrustedCertificates(OCSP, certs...)
}

// AddCrlTrustedCertificates trusts certs as CRL issuers.
func (s *TrustedCertificatesStore) AddCrlTrustedCertificates(certs ...*x509.Certificate) {
	s.AddTrustedCertificates(CRL, certs...)
}

// AddTimestampTrustedCertificates trusts certs as timestamp authorities.
func (s *TrustedCertificatesStore) AddTimestampTrustedCertificates(certs ...*x509.Certificate) {
	s.AddTrustedCertificates(Timestamp, certs...)
}

// AddCATrustedCertificates trusts certs as certificate issuers.
func (s *TrustedCertificatesStore) AddCATrustedCertificates(certs ...*x509.Certificate) {
	s.AddTrustedCertificates(CA, certs...)
}

// AddKnownCertificates registers certs for issuer resolution only.
func (s *TrustedCertificatesStore) AddKnownCertificates(certs ...*x509.Certificate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range certs {
		if c != nil {
			s.known.add(c)
		}
	}
}

// TrustedFor reports whether cert is trusted for role. General trust
// satisfies every role.
func (s *TrustedCertificatesStore) TrustedFor(role Role, cert *x509.Certificate) bool {
	if cert == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.trusted[General].contains(cert) {
		return true
	}
	if role <= General || role >= roleCount {
		return false
	}
	return s.trusted[role].contains(cert)
}

// CertificatesTrustedFor returns the certificates with the given subject
// name that are trusted for role, generally trusted ones first.
func (s *TrustedCertificatesStore) CertificatesTrustedFor(role Role, subjectName string) []*x509.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]*x509.Certificate(nil), s.trusted[General][subjectName]...)
	if role > General && role < roleCount {
		for _, c := range s.trusted[role][subjectName] {
			if !containsCert(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// TrustedCertificates returns every certificate trusted for role,
// generally trusted ones first. Used where no subject name is available,
// e.g. OCSP responders identified by key hash.
func (s *TrustedCertificatesStore) TrustedCertificates(role Role) []*x509.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*x509.Certificate
	indices := []index{s.trusted[General]}
	if role > General && role < roleCount {
		indices = append(indices, s.trusted[role])
	}
	for _, ix := range indices {
		for _, certs := range ix {
			for _, c := range certs {
				if !containsCert(out, c) {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func containsCert(list []*x509.Certificate, cert *x509.Certificate) bool {
	for _, c := range list {
		if c.Equal(cert) {
			return true
		}
	}
	return false
}

// IsCertificateGenerallyTrusted reports general trust.
func (s *TrustedCertificatesStore) IsCertificateGenerallyTrusted(cert *x509.Certificate) bool {
	return s.TrustedFor(General, cert)
}

// IsCertificateTrustedForOcsp reports trust as an OCSP responder.
func (s *TrustedCertificatesStore) IsCertificateTrustedForOcsp(cert *x509.Certificate) bool {
	return s.TrustedFor(OCSP, cert)
}

// IsCertificateTrustedForCrl reports trust as a CRL issuer.
func (s *TrustedCertificatesStore) IsCertificateTrustedForCrl(cert *x509.Certificate) bool {
	return s.TrustedFor(CRL, cert)
}

// IsCertificateTrustedForTimestamp reports trust as a timestamp authority.
func (s *TrustedCertificatesStore) IsCertificateTrustedForTimestamp(cert *x509.Certificate) bool {
	return s.TrustedFor(Timestamp, cert)
}

// IsCertificateTrustedForCA reports trust as a certificate issuer.
func (s *TrustedCertificatesStore) IsCertificateTrustedForCA(cert *x509.Certificate) bool {
	return s.TrustedFor(CA, cert)
}

// GetGenerallyTrustedCertificates returns generally trusted certificates
// with the given subject name.
func (s *TrustedCertificatesStore) GetGenerallyTrustedCertificates(subjectName string) []*x509.Certificate {
	return s.CertificatesTrustedFor(General, subjectName)
}

// GetCertificatesTrustedForOcsp looks up OCSP responders by subject name.
func (s *TrustedCertificatesStore) GetCertificatesTrustedForOcsp(subjectName string) []*x509.Certificate {
	return s.CertificatesTrustedFor(OCSP, subjectName)
}

// GetCertificatesTrustedForCrl looks up CRL issuers by subject name.
func (s *TrustedCertificatesStore) GetCertificatesTrustedForCrl(subjectName string) []*x509.Certificate {
	return s.CertificatesTrustedFor(CRL, subjectName)
}

// GetCertificatesTrustedForTimestamp looks up timestamp authorities by
// subject name.
func (s *TrustedCertificatesStore) GetCertificatesTrustedForTimestamp(subjectName string) []*x509.Certificate {
	return s.CertificatesTrustedFor(Timestamp, subjectName)
}

// GetCertificatesTrustedForCA looks up certificate issuers by subject name.
func (s *TrustedCertificatesStore) GetCertificatesTrustedForCA(subjectName string) []*x509.Certificate {
	return s.CertificatesTrustedFor(CA, subjectName)
}

// GetKnownCertificates returns known, not necessarily trusted, certificates
// with the given subject name.
func (s *TrustedCertificatesStore) GetKnownCertificates(subjectName string) []*x509.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*x509.Certificate(nil), s.known[subjectName]...)
}

// AllCertificates returns every certificate in the store once, trusted
// ones first.
func (s *TrustedCertificatesStore) AllCertificates() []*x509.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*x509.Certificate
	for _, ix := range append(s.trusted[:], s.known) {
		for _, certs := range ix {
			for _, c := range certs {
				if !containsCert(out, c) {
					out = append(out, c)
				}
			}
		}
	}
	return out
}
