// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package events

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ComplianceProfile is a static allow-list of algorithms.
type ComplianceProfile struct {
	name    string
	allowed map[string]struct{}
	aliases map[string]string
}

// algorithm is one allow-list row: an OID and the names it is known by.
type algorithm struct {
	oid   string
	names []string
}

var folder = cases.Fold()

// normalizeName folds case and drops separators so that "SHA-256",
// "sha256" and "Sha_256" collide.
func normalizeName(name string) string {
	folded := folder.String(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '/', '.':
			return -1
		}
		return r
	}, folded)
}

func newProfile(name string, rows ...[]algorithm) *ComplianceProfile {
	p := &ComplianceProfile{
		name:    name,
		allowed: make(map[string]struct{}),
		aliases: make(map[string]string),
	}
	for _, group := range rows {
		for _, a := range group {
			p.allowed[a.oid] = struct{}{}
			for _, n := range a.names {
				p.aliases[normalizeName(n)] = a.oid
			}
		}
	}
	return p
}

// NewComplianceProfile builds a custom allow-list from dotted OIDs.
// Custom profiles match by OID only.
func NewComplianceProfile(name string, oids ...string) *ComplianceProfile {
	rows := make([]algorithm, 0, len(oids))
	for _, oid := range oids {
		rows = append(rows, algorithm{oid: oid})
	}
	return newProfile(name, rows)
}

// Name returns the profile identifier.
func (p *ComplianceProfile) Name() string { return p.name }

// Allows matches oid when present, otherwise name.
func (p *ComplianceProfile) Allows(name, oid string) bool {
	if p == nil {
		return true
	}
	if oid != "" {
		_, ok := p.allowed[oid]
		return ok
	}
	_, ok := p.aliases[normalizeName(name)]
	return ok
}

var (
	strongDigests = []algorithm{
		{"2.16.840.1.101.3.4.2.1", []string{"SHA-256", "SHA256"}},
		{"2.16.840.1.101.3.4.2.2", []string{"SHA-384", "SHA384"}},
		{"2.16.840.1.101.3.4.2.3", []string{"SHA-512", "SHA512"}},
		{"2.16.840.1.101.3.4.2.6", []string{"SHA-512/256", "SHA512-256"}},
		{"2.16.840.1.101.3.4.2.8", []string{"SHA3-256"}},
		{"2.16.840.1.101.3.4.2.9", []string{"SHA3-384"}},
		{"2.16.840.1.101.3.4.2.10", []string{"SHA3-512"}},
		{"2.16.840.1.101.3.4.2.12", []string{"SHAKE256"}},
	}
	strongSignatures = []algorithm{
		{"1.2.840.113549.1.1.11", []string{"SHA256-RSA", "sha256WithRSAEncryption", "SHA256withRSA"}},
		{"1.2.840.113549.1.1.12", []string{"SHA384-RSA", "sha384WithRSAEncryption", "SHA384withRSA"}},
		{"1.2.840.113549.1.1.13", []string{"SHA512-RSA", "sha512WithRSAEncryption", "SHA512withRSA"}},
		{"1.2.840.113549.1.1.10", []string{"RSASSA-PSS", "SHA256-RSAPSS", "SHA384-RSAPSS", "SHA512-RSAPSS"}},
		{"1.2.840.10045.4.3.2", []string{"ECDSA-SHA256", "ecdsa-with-SHA256", "SHA256withECDSA"}},
		{"1.2.840.10045.4.3.3", []string{"ECDSA-SHA384", "ecdsa-with-SHA384", "SHA384withECDSA"}},
		{"1.2.840.10045.4.3.4", []string{"ECDSA-SHA512", "ecdsa-with-SHA512", "SHA512withECDSA"}},
		{"2.16.840.1.101.3.4.3.14", []string{"id-rsassa-pkcs1-v1_5-with-sha3-256", "SHA3-256withRSA"}},
		{"2.16.840.1.101.3.4.3.15", []string{"id-rsassa-pkcs1-v1_5-with-sha3-384", "SHA3-384withRSA"}},
		{"2.16.840.1.101.3.4.3.16", []string{"id-rsassa-pkcs1-v1_5-with-sha3-512", "SHA3-512withRSA"}},
		{"2.16.840.1.101.3.4.3.10", []string{"id-ecdsa-with-sha3-256", "SHA3-256withECDSA"}},
		{"2.16.840.1.101.3.4.3.11", []string{"id-ecdsa-with-sha3-384", "SHA3-384withECDSA"}},
		{"2.16.840.1.101.3.4.3.12", []string{"id-ecdsa-with-sha3-512", "SHA3-512withECDSA"}},
		{"1.3.101.112", []string{"Ed25519"}},
		{"1.3.101.113", []string{"Ed448"}},
	}
	// Still accepted for AdES validation, dropped by TS 119 312.
	legacyAlgorithms = []algorithm{
		{"2.16.840.1.101.3.4.2.4", []string{"SHA-224", "SHA224"}},
		{"2.16.840.1.101.3.4.2.5", []string{"SHA-512/224", "SHA512-224"}},
		{"2.16.840.1.101.3.4.2.7", []string{"SHA3-224"}},
		{"1.2.840.113549.1.1.14", []string{"SHA224-RSA", "sha224WithRSAEncryption", "SHA224withRSA"}},
		{"1.2.840.10045.4.3.1", []string{"ECDSA-SHA224", "ecdsa-with-SHA224", "SHA224withECDSA"}},
		{"2.16.840.1.101.3.4.3.13", []string{"id-rsassa-pkcs1-v1_5-with-sha3-224", "SHA3-224withRSA"}},
		{"2.16.840.1.101.3.4.3.9", []string{"id-ecdsa-with-sha3-224", "SHA3-224withECDSA"}},
	}
)

var (
	// AdES is the allow-list applied to AdES signature validation.
	AdES = newProfile("ades", strongDigests, strongSignatures, legacyAlgorithms)
	// EtsiTs119312 is the ETSI TS 119 312 cryptographic suites allow-list.
	EtsiTs119312 = newProfile("etsi-ts-119-312", strongDigests, strongSignatures)
)

// ProfileByName resolves "none", "ades" or "etsi-ts-119-312". "none"
// yields a nil profile, which allows everything.
func ProfileByName(name string) (*ComplianceProfile, error) {
	switch normalizeName(name) {
	case "", "none":
		return nil, nil
	case normalizeName(AdES.name):
		return AdES, nil
	case normalizeName(EtsiTs119312.name):
		return EtsiTs119312, nil
	}
	return nil, fmt.Errorf("events: unknown compliance profile %q", name)
}
