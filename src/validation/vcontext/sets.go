// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package vcontext

// ValidatorContexts is a set of validator roles.
type ValidatorContexts uint32

// CertificateSources is a set of certificate roles.
type CertificateSources uint32

// TimeBasedContexts is a set of time contexts.
type TimeBasedContexts uint32

const (
	allValidators = ValidatorContexts(1<<(TimestampValidator+1) - 1)
	allSources    = CertificateSources(1<<(Trusted+1) - 1)
	allTimes      = TimeBasedContexts(1<<(Historical+1) - 1)
)

// AllValidators contains every validator role.
func AllValidators() ValidatorContexts { return allValidators }

// ValidatorsOf builds a set from the given roles.
func ValidatorsOf(vs ...ValidatorContext) ValidatorContexts {
	var s ValidatorContexts
	for _, v := range vs {
		s |= 1 << v
	}
	return s
}

// ValidatorsExcept contains every role but the given ones.
func ValidatorsExcept(vs ...ValidatorContext) ValidatorContexts {
	return allValidators &^ ValidatorsOf(vs...)
}

// Contains reports membership.
func (s ValidatorContexts) Contains(v ValidatorContext) bool { return s&(1<<v) != 0 }

// AllSources contains every certificate role.
func AllSources() CertificateSources { return allSources }

// SourcesOf builds a set from the given roles.
func SourcesOf(ss ...CertificateSource) CertificateSources {
	var s CertificateSources
	for _, v := range ss {
		s |= 1 << v
	}
	return s
}

// SourcesExcept contains every certificate role but the given ones.
func SourcesExcept(ss ...CertificateSource) CertificateSources {
	return allSources &^ SourcesOf(ss...)
}

// Contains reports membership.
func (s CertificateSources) Contains(v CertificateSource) bool { return s&(1<<v) != 0 }

// AllTimes contains both time contexts.
func AllTimes() TimeBasedContexts { return allTimes }

// TimesOf builds a set from the given time contexts.
func TimesOf(ts ...TimeBasedContext) TimeBasedContexts {
	var s TimeBasedContexts
	for _, v := range ts {
		s |= 1 << v
	}
	return s
}

// Contains reports membership.
func (s TimeBasedContexts) Contains(v TimeBasedContext) bool { return s&(1<<v) != 0 }

// Matches reports whether c falls inside all three sets.
func (c ValidationContext) Matches(vs ValidatorContexts, ss CertificateSources, ts TimeBasedContexts) bool {
	return vs.Contains(c.validator) && ss.Contains(c.source) && ts.Contains(c.time)
}
