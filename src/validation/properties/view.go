// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package properties

import (
	"encoding/json"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

type ruleView struct {
	Validators           []string  `json:"validators"`
	Sources              []string  `json:"sources"`
	TimeContexts         []string  `json:"timeContexts"`
	Freshness            string    `json:"freshness,omitempty"`
	OnlineFetching       string    `json:"onlineFetching,omitempty"`
	ContinueAfterFailure *bool     `json:"continueAfterFailure,omitempty"`
	RequiredExtensions   *[]string `json:"requiredExtensions,omitempty"`
}

type propertiesView struct {
	RevocationOrder              []string   `json:"revocationOrder"`
	IndeterminateRevocationFatal bool       `json:"indeterminateRevocationFatal"`
	MaxChainLength               int        `json:"maxChainLength"`
	MaxRevocationNesting         int        `json:"maxRevocationNesting"`
	DefaultGracePeriod           string     `json:"defaultGracePeriod"`
	AlgorithmCompliance          string     `json:"algorithmCompliance"`
	AlgorithmViolation           string     `json:"algorithmViolation"`
	Rules                        []ruleView `json:"rules"`
}

// MarshalJSON renders the effective policy. Extension requirements are
// rendered as descriptions, so the output is for display, not for [Parse].
func (p *SignatureValidationProperties) MarshalJSON() ([]byte, error) {
	view := propertiesView{
		IndeterminateRevocationFatal: p.IndeterminateRevocationFatal(),
		MaxChainLength:               p.MaxChainLength(),
		MaxRevocationNesting:         p.MaxRevocationNesting(),
		DefaultGracePeriod:           p.DefaultGracePeriod().String(),
		AlgorithmCompliance:          "none",
		AlgorithmViolation:           p.AlgorithmViolation().String(),
	}
	for _, k := range p.RevocationOrder() {
		view.RevocationOrder = append(view.RevocationOrder, k.String())
	}
	if profile := p.AlgorithmCompliance(); profile != nil {
		view.AlgorithmCompliance = profile.Name()
	}

	for _, r := range p.Rules() {
		rv := ruleView{
			Validators:           validatorNames(r.Validators),
			Sources:              sourceNames(r.Sources),
			TimeContexts:         timeNames(r.Times),
			ContinueAfterFailure: r.ContinueAfterFailure,
		}
		if r.Freshness != nil {
			rv.Freshness = r.Freshness.String()
		}
		if r.OnlineFetching != nil {
			rv.OnlineFetching = r.OnlineFetching.String()
		}
		if r.RequiredExtensions != nil {
			exts := make([]string, 0, len(r.RequiredExtensions))
			for _, e := range r.RequiredExtensions {
				exts = append(exts, e.String())
			}
			rv.RequiredExtensions = &exts
		}
		view.Rules = append(view.Rules, rv)
	}

	return json.Marshal(view)
}

func validatorNames(s vcontext.ValidatorContexts) []string {
	names := []string{}
	for v := vcontext.CertificateChainValidator; v <= vcontext.TimestampValidator; v++ {
		if s.Contains(v) {
			names = append(names, v.String())
		}
	}
	return names
}

func sourceNames(s vcontext.CertificateSources) []string {
	names := []string{}
	for src := vcontext.SignerCert; src <= vcontext.Trusted; src++ {
		if s.Contains(src) {
			names = append(names, src.String())
		}
	}
	return names
}

func timeNames(s vcontext.TimeBasedContexts) []string {
	names := []string{}
	for tc := vcontext.Present; tc <= vcontext.Historical; tc++ {
		if s.Contains(tc) {
			names = append(names, tc.String())
		}
	}
	return names
}
