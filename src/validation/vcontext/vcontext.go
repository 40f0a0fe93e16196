// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package vcontext

import (
	"fmt"
	"strings"
)

// ValidatorContext names the validator performing a check.
type ValidatorContext int

const (
	CertificateChainValidator ValidatorContext = iota
	RevocationDataValidator
	OCSPValidator
	CRLValidator
	SignatureValidator
	TimestampValidator
)

var validatorNames = map[ValidatorContext]string{
	CertificateChainValidator: "chain",
	RevocationDataValidator:   "revocation",
	OCSPValidator:             "ocsp",
	CRLValidator:              "crl",
	SignatureValidator:        "signature",
	TimestampValidator:        "timestamp",
}

func (v ValidatorContext) String() string {
	if s, ok := validatorNames[v]; ok {
		return s
	}
	return fmt.Sprintf("ValidatorContext(%d)", int(v))
}

// CertificateSource names the role a certificate plays in the validation.
type CertificateSource int

const (
	SignerCert CertificateSource = iota
	CertIssuer
	Timestamp
	OCSPIssuer
	CRLIssuer
	Trusted
)

var sourceNames = map[CertificateSource]string{
	SignerCert: "signer-cert",
	CertIssuer: "cert-issuer",
	Timestamp:  "timestamp",
	OCSPIssuer: "ocsp-issuer",
	CRLIssuer:  "crl-issuer",
	Trusted:    "trusted",
}

func (s CertificateSource) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return fmt.Sprintf("CertificateSource(%d)", int(s))
}

// TimeBasedContext says whether validation happens as of now or as of a
// past instant.
type TimeBasedContext int

const (
	Present TimeBasedContext = iota
	Historical
)

var timeNames = map[TimeBasedContext]string{
	Present:    "present",
	Historical: "historical",
}

func (c TimeBasedContext) String() string {
	if n, ok := timeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("TimeBasedContext(%d)", int(c))
}

// ParseValidatorContext is the inverse of [ValidatorContext.String].
func ParseValidatorContext(s string) (ValidatorContext, error) {
	for v, n := range validatorNames {
		if strings.EqualFold(n, s) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("vcontext: unknown validator %q", s)
}

// ParseCertificateSource is the inverse of [CertificateSource.String].
func ParseCertificateSource(s string) (CertificateSource, error) {
	for v, n := range sourceNames {
		if strings.EqualFold(n, s) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("vcontext: unknown certificate source %q", s)
}

// ParseTimeBasedContext is the inverse of [TimeBasedContext.String].
func ParseTimeBasedContext(s string) (TimeBasedContext, error) {
	for v, n := range timeNames {
		if strings.EqualFold(n, s) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("vcontext: unknown time context %q", s)
}

// ValidationContext is an immutable description of one validation step.
// The zero value is not useful; build one with [New].
type ValidationContext struct {
	validator ValidatorContext
	source    CertificateSource
	time      TimeBasedContext
	parent    *ValidationContext
}

// New returns a root context.
func New(validator ValidatorContext, source CertificateSource, tc TimeBasedContext) ValidationContext {
	return ValidationContext{validator: validator, source: source, time: tc}
}

// ValidatorContext returns the validator role.
func (c ValidationContext) ValidatorContext() ValidatorContext { return c.validator }

// CertificateSource returns the certificate role.
func (c ValidationContext) CertificateSource() CertificateSource { return c.source }

// TimeBasedContext returns the time context.
func (c ValidationContext) TimeBasedContext() TimeBasedContext { return c.time }

// Parent returns the context this one was derived from.
func (c ValidationContext) Parent() (ValidationContext, bool) {
	if c.parent == nil {
		return ValidationContext{}, false
	}
	return *c.parent, true
}

func (c ValidationContext) derive() ValidationContext {
	parent := c
	return ValidationContext{validator: c.validator, source: c.source, time: c.time, parent: &parent}
}

// WithValidatorContext derives a child context with another validator role.
func (c ValidationContext) WithValidatorContext(v ValidatorContext) ValidationContext {
	child := c.derive()
	child.validator = v
	return child
}

// WithCertificateSource derives a child context with another certificate role.
func (c ValidationContext) WithCertificateSource(s CertificateSource) ValidationContext {
	child := c.derive()
	child.source = s
	return child
}

// WithTimeBasedContext derives a child context with another time context.
func (c ValidationContext) WithTimeBasedContext(tc TimeBasedContext) ValidationContext {
	child := c.derive()
	child.time = tc
	return child
}

// Depth counts the ancestors of c.
func (c ValidationContext) Depth() int {
	n := 0
	for p := c.parent; p != nil; p = p.parent {
		n++
	}
	return n
}

// ChainContainsSource reports whether c or any ancestor has one of sources.
func (c ValidationContext) ChainContainsSource(sources ...CertificateSource) bool {
	for cur := &c; cur != nil; cur = cur.parent {
		for _, s := range sources {
			if cur.source == s {
				return true
			}
		}
	}
	return false
}

// CountValidatorContext counts how many distinct hops into one of the given
// validator roles lie on the path from the root to c. Consecutive contexts
// with the same role count once.
func (c ValidationContext) CountValidatorContext(validators ...ValidatorContext) int {
	matches := func(v ValidatorContext) bool {
		for _, want := range validators {
			if v == want {
				return true
			}
		}
		return false
	}
	n := 0
	for cur := &c; cur != nil; cur = cur.parent {
		if !matches(cur.validator) {
			continue
		}
		if cur.parent != nil && cur.parent.validator == cur.validator {
			continue
		}
		n++
	}
	return n
}

func (c ValidationContext) String() string {
	return fmt.Sprintf("%s/%s/%s", c.validator, c.source, c.time)
}
