// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package validation

import (
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/logger"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/properties"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
)

// ValidatorChainBuilder is the composition root of a validation session.
// It owns the trust store, the policy, the event manager and the
// validators, which are built lazily through overridable factories.
//
// Thread Safety: The With* methods are meant to be called during setup.
// Getters are safe for concurrent use.
type ValidatorChainBuilder struct {
	mu sync.Mutex

	store    *trust.TrustedCertificatesStore
	props    *properties.SignatureValidationProperties
	events   *events.Manager
	verifier SignatureVerifier
	log      logger.Logger
	clock    func() time.Time

	ocspClients []OcspClient
	crlClients  []CrlClient

	chainFactory      CertificateChainValidatorFactory
	revocationFactory RevocationDataValidatorFactory
	ocspFactory       OCSPValidatorFactory
	crlFactory        CRLValidatorFactory

	chain      CertificateChainValidator
	revocation RevocationDataValidator
	ocsp       OCSPValidator
	crl        CRLValidator
}

// NewValidatorChainBuilder returns a builder with an empty trust store,
// the default policy, a private event manager and the default validators.
func NewValidatorChainBuilder() *ValidatorChainBuilder {
	return &ValidatorChainBuilder{
		store:             trust.NewTrustedCertificatesStore(),
		props:             properties.NewSignatureValidationProperties(),
		events:            events.NewManager(),
		verifier:          DefaultSignatureVerifier{},
		log:               logger.NopLogger{},
		clock:             time.Now,
		chainFactory:      NewCertificateChainValidator,
		revocationFactory: NewRevocationDataValidator,
		ocspFactory:       NewOCSPValidator,
		crlFactory:        NewCRLValidator,
	}
}

// WithTrustedCertificatesStore sets the trust store.
func (b *ValidatorChainBuilder) WithTrustedCertificatesStore(s *trust.TrustedCertificatesStore) *ValidatorChainBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s != nil {
		b.store = s
	}
	return b
}

// WithProperties sets the validation policy.
func (b *ValidatorChainBuilder) WithProperties(p *properties.SignatureValidationProperties) *ValidatorChainBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p != nil {
		b.props = p
	}
	return b
}

// WithEventManager shares m instead of the builder's own manager.
func (b *ValidatorChainBuilder) WithEventManager(m *events.Manager) *ValidatorChainBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m != nil {
		b.events = m
	}
	return b
}

// WithSignatureVerifier replaces the signature primitive.
func (b *ValidatorChainBuilder) WithSignatureVerifier(v SignatureVerifier) *ValidatorChainBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v != nil {
		b.verifier = v
	}
	return b
}

// WithLogger sets the logger used for collaborator failures.
func (b *ValidatorChainBuilder) WithLogger(l logger.Logger) *ValidatorChainBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l != nil {
		b.log = l
	}
	return b
}

// WithClock sets the clock that stamps online evidence.
func (b *ValidatorChainBuilder) WithClock(now func() time.Time) *ValidatorChainBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now != nil {
		b.clock = now
	}
	return b
}

// WithOcspClient adds an OCSP client to the revocation validators built
// afterwards. A [*ValidationOcspClient] contributes offline evidence.
func (b *ValidatorChainBuilder) WithOcspClient(c OcspClient) *ValidatorChainBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ocspClients = append(b.ocspClients, c)
	return b
}

// WithCrlClient adds a CRL client to the revocation validators built
// afterwards. A [*ValidationCrlClient] contributes offline evidence.
func (b *ValidatorChainBuilder) WithCrlClient(c CrlClient) *ValidatorChainBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.crlClients = append(b.crlClients, c)
	return b
}

// WithCertificateChainValidatorFactory overrides how the chain validator is
// built. A nil factory restores the default.
func (b *ValidatorChainBuilder) WithCertificateChainValidatorFactory(f CertificateChainValidatorFactory) *ValidatorChainBuilder {
	if f == nil {
		f = NewCertificateChainValidator
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chainFactory, b.chain = f, nil
	return b
}

// WithRevocationDataValidatorFactory overrides how the revocation validator is built.
func (b *ValidatorChainBuilder) WithRevocationDataValidatorFactory(f RevocationDataValidatorFactory) *ValidatorChainBuilder {
	if f == nil {
		f = NewRevocationDataValidator
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revocationFactory, b.revocation = f, nil
	return b
}

// WithOCSPValidatorFactory overrides how the OCSP validator is built.
func (b *ValidatorChainBuilder) WithOCSPValidatorFactory(f OCSPValidatorFactory) *ValidatorChainBuilder {
	if f == nil {
		f = NewOCSPValidator
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ocspFactory, b.ocsp = f, nil
	return b
}

// WithCRLValidatorFactory overrides how the CRL validator is built.
func (b *ValidatorChainBuilder) WithCRLValidatorFactory(f CRLValidatorFactory) *ValidatorChainBuilder {
	if f == nil {
		f = NewCRLValidator
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.crlFactory, b.crl = f, nil
	return b
}

// TrustedCertificatesStore returns the trust store.
func (b *ValidatorChainBuilder) TrustedCertificatesStore() *trust.TrustedCertificatesStore {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store
}

// Properties returns the validation policy.
func (b *ValidatorChainBuilder) Properties() *properties.SignatureValidationProperties {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props
}

// GetEventManager returns the event manager validators dispatch to.
func (b *ValidatorChainBuilder) GetEventManager() *events.Manager {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events
}

// SignatureVerifier returns the signature primitive.
func (b *ValidatorChainBuilder) SignatureVerifier() SignatureVerifier {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.verifier
}

// Logger returns the logger.
func (b *ValidatorChainBuilder) Logger() logger.Logger {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log
}

// Now returns the current time according to the builder's clock.
func (b *ValidatorChainBuilder) Now() time.Time {
	b.mu.Lock()
	now := b.clock
	b.mu.Unlock()
	return now()
}

// OcspClients returns the OCSP clients registered on the builder.
func (b *ValidatorChainBuilder) OcspClients() []OcspClient {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]OcspClient(nil), b.ocspClients...)
}

// CrlClients returns the CRL clients registered on the builder.
func (b *ValidatorChainBuilder) CrlClients() []CrlClient {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]CrlClient(nil), b.crlClients...)
}

// memoize returns *slot, building it with build outside the lock on
// first use. Factories may call back into the builder.
func memoize[T comparable](b *ValidatorChainBuilder, slot *T, build func() T) T {
	var zero T

	b.mu.Lock()
	if v := *slot; v != zero {
		b.mu.Unlock()
		return v
	}
	b.mu.Unlock()

	v := build()

	b.mu.Lock()
	defer b.mu.Unlock()
	if *slot == zero {
		*slot = v
	}
	return *slot
}

// CertificateChainValidator returns the session's chain validator.
func (b *ValidatorChainBuilder) CertificateChainValidator() CertificateChainValidator {
	return memoize(b, &b.chain, func() CertificateChainValidator { return b.factories().chain(b) })
}

// RevocationDataValidator returns the session's revocation validator.
func (b *ValidatorChainBuilder) RevocationDataValidator() RevocationDataValidator {
	return memoize(b, &b.revocation, func() RevocationDataValidator { return b.factories().revocation(b) })
}

// OCSPValidator returns the session's OCSP validator.
func (b *ValidatorChainBuilder) OCSPValidator() OCSPValidator {
	return memoize(b, &b.ocsp, func() OCSPValidator { return b.factories().ocsp(b) })
}

// CRLValidator returns the session's CRL validator.
func (b *ValidatorChainBuilder) CRLValidator() CRLValidator {
	return memoize(b, &b.crl, func() CRLValidator { return b.factories().crl(b) })
}

type factorySet struct {
	chain      CertificateChainValidatorFactory
	revocation RevocationDataValidatorFactory
	ocsp       OCSPValidatorFactory
	crl        CRLValidatorFactory
}

func (b *ValidatorChainBuilder) factories() factorySet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return factorySet{b.chainFactory, b.revocationFactory, b.ocspFactory, b.crlFactory}
}
