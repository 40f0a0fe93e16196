// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package properties

import (
	"crypto/x509"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/extensions"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

// Defaults for the session-wide parameters.
const (
	DefaultMaxChainLength       = 16
	DefaultMaxRevocationNesting = 2
	DefaultGracePeriod          = 30 * time.Minute
	DefaultHistoricalFreshness  = time.Minute
)

// OnlineFetching controls when online revocation clients are consulted.
type OnlineFetching int

const (
	// FetchIfNoOtherDataAvailable consults online clients only when the
	// caller-supplied evidence gave no definitive answer.
	FetchIfNoOtherDataAvailable OnlineFetching = iota
	// AlwaysFetch consults online clients in addition to supplied evidence.
	AlwaysFetch
	// NeverFetch only uses caller-supplied evidence.
	NeverFetch
)

var fetchingNames = map[OnlineFetching]string{
	FetchIfNoOtherDataAvailable: "fetch-if-no-other-data",
	AlwaysFetch:                 "always",
	NeverFetch:                  "never",
}

func (f OnlineFetching) String() string {
	if n, ok := fetchingNames[f]; ok {
		return n
	}
	return fmt.Sprintf("OnlineFetching(%d)", int(f))
}

// ParseOnlineFetching is the inverse of [OnlineFetching.String].
func ParseOnlineFetching(s string) (OnlineFetching, error) {
	for f, n := range fetchingNames {
		if strings.EqualFold(n, s) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown online fetching mode %q", ErrInvalidConfig, s)
}

// EvidenceKind is a kind of revocation evidence.
type EvidenceKind int

const (
	OCSP EvidenceKind = iota
	CRL
)

func (k EvidenceKind) String() string {
	switch k {
	case OCSP:
		return "ocsp"
	case CRL:
		return "crl"
	}
	return fmt.Sprintf("EvidenceKind(%d)", int(k))
}

// ParseEvidenceKind is the inverse of [EvidenceKind.String].
func ParseEvidenceKind(s string) (EvidenceKind, error) {
	switch strings.ToLower(s) {
	case "ocsp":
		return OCSP, nil
	case "crl":
		return CRL, nil
	}
	return 0, fmt.Errorf("%w: unknown evidence kind %q", ErrInvalidConfig, s)
}

// ViolationSeverity is how a rejected algorithm is reported.
type ViolationSeverity int

const (
	// ViolationInvalid records an INVALID item and keeps walking the chain.
	ViolationInvalid ViolationSeverity = iota
	// ViolationInfo records an INFO item.
	ViolationInfo
	// ViolationFatal records an INVALID item and stops the chain walk.
	ViolationFatal
)

func (s ViolationSeverity) String() string {
	switch s {
	case ViolationInvalid:
		return "invalid"
	case ViolationInfo:
		return "info"
	case ViolationFatal:
		return "fatal"
	}
	return fmt.Sprintf("ViolationSeverity(%d)", int(s))
}

// ParseViolationSeverity is the inverse of [ViolationSeverity.String].
func ParseViolationSeverity(s string) (ViolationSeverity, error) {
	switch strings.ToLower(s) {
	case "invalid":
		return ViolationInvalid, nil
	case "info":
		return ViolationInfo, nil
	case "fatal":
		return ViolationFatal, nil
	}
	return 0, fmt.Errorf("%w: unknown algorithm violation severity %q", ErrInvalidConfig, s)
}

// Rule sets policy values for every context in Validators × Sources × Times.
// Nil fields leave the value to older rules.
type Rule struct {
	Validators vcontext.ValidatorContexts
	Sources    vcontext.CertificateSources
	Times      vcontext.TimeBasedContexts

	Freshness            *time.Duration
	OnlineFetching       *OnlineFetching
	ContinueAfterFailure *bool
	// RequiredExtensions is used when non-nil; an empty slice clears
	// requirements set by older rules.
	RequiredExtensions []extensions.Extension
}

func (r Rule) matches(ctx vcontext.ValidationContext) bool {
	return ctx.Matches(r.Validators, r.Sources, r.Times)
}

// SignatureValidationProperties is the validation policy.
//
// It is safe for concurrent use; validators only read it.
type SignatureValidationProperties struct {
	mu sync.RWMutex

	rules []Rule

	revocationOrder              []EvidenceKind
	indeterminateRevocationFatal bool
	maxChainLength               int
	maxRevocationNesting         int
	gracePeriod                  time.Duration
	compliance                   *events.ComplianceProfile
	violation                    ViolationSeverity
}

// NewSignatureValidationProperties returns the default policy.
func NewSignatureValidationProperties() *SignatureValidationProperties {
	p := &SignatureValidationProperties{
		revocationOrder:      []EvidenceKind{OCSP, CRL},
		maxChainLength:       DefaultMaxChainLength,
		maxRevocationNesting: DefaultMaxRevocationNesting,
		gracePeriod:          DefaultGracePeriod,
		violation:            ViolationInvalid,
	}

	all := vcontext.AllValidators()
	p.SetFreshness(all, vcontext.TimesOf(vcontext.Present), 0)
	p.SetFreshness(all, vcontext.TimesOf(vcontext.Historical), DefaultHistoricalFreshness)
	p.SetRevocationOnlineFetching(all, vcontext.AllSources(), vcontext.AllTimes(), FetchIfNoOtherDataAvailable)
	p.SetContinueAfterFailure(all, vcontext.AllSources(), true)

	p.SetRequiredExtensions(vcontext.SourcesOf(vcontext.CertIssuer),
		extensions.NewKeyUsageExtension(x509.KeyUsageCertSign),
		extensions.NewBasicConstraintsExtension(true))
	p.SetRequiredExtensions(vcontext.SourcesOf(vcontext.OCSPIssuer), extensions.OCSPSigning())
	p.SetRequiredExtensions(vcontext.SourcesOf(vcontext.CRLIssuer), extensions.NewKeyUsageExtension(x509.KeyUsageCRLSign))
	p.SetRequiredExtensions(vcontext.SourcesOf(vcontext.Timestamp), extensions.TimeStamping())

	return p
}

// AddRule appends r. It takes precedence over every older rule.
func (p *SignatureValidationProperties) AddRule(r Rule) *SignatureValidationProperties {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.RequiredExtensions != nil {
		r.RequiredExtensions = slices.Clone(r.RequiredExtensions)
	}
	p.rules = append(p.rules, r)
	return p
}

// Rules returns a copy of the rule list, oldest first.
func (p *SignatureValidationProperties) Rules() []Rule {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.rules)
}

// SetFreshness sets the freshness allowance for revocation data.
func (p *SignatureValidationProperties) SetFreshness(vs vcontext.ValidatorContexts, ts vcontext.TimeBasedContexts, d time.Duration) *SignatureValidationProperties {
	return p.AddRule(Rule{Validators: vs, Sources: vcontext.AllSources(), Times: ts, Freshness: &d})
}

// SetRevocationOnlineFetching sets when online revocation clients are used.
func (p *SignatureValidationProperties) SetRevocationOnlineFetching(vs vcontext.ValidatorContexts, ss vcontext.CertificateSources, ts vcontext.TimeBasedContexts, mode OnlineFetching) *SignatureValidationProperties {
	return p.AddRule(Rule{Validators: vs, Sources: ss, Times: ts, OnlineFetching: &mode})
}

// SetContinueAfterFailure sets whether non-fatal failures let the chain
// walk continue.
func (p *SignatureValidationProperties) SetContinueAfterFailure(vs vcontext.ValidatorContexts, ss vcontext.CertificateSources, b bool) *SignatureValidationProperties {
	return p.AddRule(Rule{Validators: vs, Sources: ss, Times: vcontext.AllTimes(), ContinueAfterFailure: &b})
}

// SetRequiredExtensions sets the extensions a certificate playing one of
// the given roles must carry.
func (p *SignatureValidationProperties) SetRequiredExtensions(ss vcontext.CertificateSources, exts ...extensions.Extension) *SignatureValidationProperties {
	if exts == nil {
		exts = []extensions.Extension{}
	}
	return p.AddRule(Rule{Validators: vcontext.AllValidators(), Sources: ss, Times: vcontext.AllTimes(), RequiredExtensions: exts})
}

// lookup returns the newest matching rule for which has reports true.
func (p *SignatureValidationProperties) lookup(ctx vcontext.ValidationContext, has func(Rule) bool) (Rule, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for i := len(p.rules) - 1; i >= 0; i-- {
		if r := p.rules[i]; has(r) && r.matches(ctx) {
			return r, true
		}
	}
	return Rule{}, false
}

// GetFreshness returns the freshness allowance for ctx.
func (p *SignatureValidationProperties) GetFreshness(ctx vcontext.ValidationContext) time.Duration {
	if r, ok := p.lookup(ctx, func(r Rule) bool { return r.Freshness != nil }); ok {
		return *r.Freshness
	}
	return 0
}

// GetRevocationOnlineFetching returns the online fetching mode for ctx.
func (p *SignatureValidationProperties) GetRevocationOnlineFetching(ctx vcontext.ValidationContext) OnlineFetching {
	if r, ok := p.lookup(ctx, func(r Rule) bool { return r.OnlineFetching != nil }); ok {
		return *r.OnlineFetching
	}
	return FetchIfNoOtherDataAvailable
}

// GetContinueAfterFailure reports whether the walk continues after a
// non-fatal failure in ctx.
func (p *SignatureValidationProperties) GetContinueAfterFailure(ctx vcontext.ValidationContext) bool {
	if r, ok := p.lookup(ctx, func(r Rule) bool { return r.ContinueAfterFailure != nil }); ok {
		return *r.ContinueAfterFailure
	}
	return true
}

// GetRequiredExtensions returns the extensions required in ctx.
func (p *SignatureValidationProperties) GetRequiredExtensions(ctx vcontext.ValidationContext) []extensions.Extension {
	if r, ok := p.lookup(ctx, func(r Rule) bool { return r.RequiredExtensions != nil }); ok {
		return slices.Clone(r.RequiredExtensions)
	}
	return nil
}

// RevocationOrder returns the order in which evidence kinds are evaluated.
func (p *SignatureValidationProperties) RevocationOrder() []EvidenceKind {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.revocationOrder)
}

// SetRevocationOrder sets the evidence order. Kinds may not repeat.
func (p *SignatureValidationProperties) SetRevocationOrder(order ...EvidenceKind) error {
	seen := map[EvidenceKind]bool{}
	for _, k := range order {
		if k != OCSP && k != CRL {
			return fmt.Errorf("%w: unknown evidence kind %d", ErrInvalidConfig, int(k))
		}
		if seen[k] {
			return fmt.Errorf("%w: duplicate evidence kind %s", ErrInvalidConfig, k)
		}
		seen[k] = true
	}
	if len(order) == 0 {
		return fmt.Errorf("%w: empty revocation order", ErrInvalidConfig)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.revocationOrder = slices.Clone(order)
	return nil
}

// IndeterminateRevocationFatal reports whether an undetermined revocation
// status is recorded as INVALID instead of INFO.
func (p *SignatureValidationProperties) IndeterminateRevocationFatal() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indeterminateRevocationFatal
}

// SetIndeterminateRevocationFatal sets [IndeterminateRevocationFatal].
func (p *SignatureValidationProperties) SetIndeterminateRevocationFatal(b bool) *SignatureValidationProperties {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indeterminateRevocationFatal = b
	return p
}

// MaxChainLength bounds the number of certificates in a walk.
func (p *SignatureValidationProperties) MaxChainLength() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxChainLength
}

// SetMaxChainLength sets [MaxChainLength]. n must be positive.
func (p *SignatureValidationProperties) SetMaxChainLength(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: maxChainLength must be positive, got %d", ErrInvalidConfig, n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxChainLength = n
	return nil
}

// MaxRevocationNesting bounds how many OCSP/CRL validator hops may be
// stacked before revocation checks of responder and CRL issuer
// certificates are skipped.
func (p *SignatureValidationProperties) MaxRevocationNesting() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxRevocationNesting
}

// SetMaxRevocationNesting sets [MaxRevocationNesting]. n must be positive.
func (p *SignatureValidationProperties) SetMaxRevocationNesting(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: maxRevocationNesting must be positive, got %d", ErrInvalidConfig, n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxRevocationNesting = n
	return nil
}

// DefaultGracePeriod is added to thisUpdate when evidence has no nextUpdate.
func (p *SignatureValidationProperties) DefaultGracePeriod() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gracePeriod
}

// SetDefaultGracePeriod sets [DefaultGracePeriod].
func (p *SignatureValidationProperties) SetDefaultGracePeriod(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: negative grace period %s", ErrInvalidConfig, d)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gracePeriod = d
	return nil
}

// AlgorithmCompliance returns the profile algorithms are checked against.
// Nil means no check.
func (p *SignatureValidationProperties) AlgorithmCompliance() *events.ComplianceProfile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.compliance
}

// SetAlgorithmCompliance sets the compliance profile and the severity of
// violations.
func (p *SignatureValidationProperties) SetAlgorithmCompliance(profile *events.ComplianceProfile, severity ViolationSeverity) *SignatureValidationProperties {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.compliance = profile
	p.violation = severity
	return p
}

// AlgorithmViolation returns the severity of compliance violations.
func (p *SignatureValidationProperties) AlgorithmViolation() ViolationSeverity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.violation
}
