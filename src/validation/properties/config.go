// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package properties

import (
	"crypto/x509"
	_ "embed"
	"encoding/asn1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/extensions"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

// ErrInvalidConfig is returned for documents that fail schema validation
// or carry values that cannot be applied.
var ErrInvalidConfig = errors.New("properties: invalid configuration")

// Format is a configuration file format.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// DetectFormat picks the format from the file extension; anything that is
// not .yaml or .yml is read as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Schema returns the JSON schema configuration documents are checked against.
func Schema() []byte { return schemaJSON }

type document struct {
	RevocationOrder              []string  `json:"revocationOrder" yaml:"revocationOrder"`
	IndeterminateRevocationFatal *bool     `json:"indeterminateRevocationFatal" yaml:"indeterminateRevocationFatal"`
	MaxChainLength               *int      `json:"maxChainLength" yaml:"maxChainLength"`
	MaxRevocationNesting         *int      `json:"maxRevocationNesting" yaml:"maxRevocationNesting"`
	DefaultGracePeriod           string    `json:"defaultGracePeriod" yaml:"defaultGracePeriod"`
	AlgorithmCompliance          string    `json:"algorithmCompliance" yaml:"algorithmCompliance"`
	AlgorithmViolation           string    `json:"algorithmViolation" yaml:"algorithmViolation"`
	Rules                        []docRule `json:"rules" yaml:"rules"`
}

type docRule struct {
	Validators           []string        `json:"validators" yaml:"validators"`
	Sources              []string        `json:"sources" yaml:"sources"`
	TimeContexts         []string        `json:"timeContexts" yaml:"timeContexts"`
	Freshness            string          `json:"freshness" yaml:"freshness"`
	OnlineFetching       string          `json:"onlineFetching" yaml:"onlineFetching"`
	ContinueAfterFailure *bool           `json:"continueAfterFailure" yaml:"continueAfterFailure"`
	RequiredExtensions   *[]docExtension `json:"requiredExtensions" yaml:"requiredExtensions"`
}

type docExtension struct {
	KeyUsage         []string `json:"keyUsage" yaml:"keyUsage"`
	ExtendedKeyUsage []string `json:"extendedKeyUsage" yaml:"extendedKeyUsage"`
	BasicConstraints *struct {
		CA         *bool `json:"ca" yaml:"ca"`
		PathLength *int  `json:"pathLength" yaml:"pathLength"`
	} `json:"basicConstraints" yaml:"basicConstraints"`
	OID   string `json:"oid" yaml:"oid"`
	Value string `json:"value" yaml:"value"`
}

// Load reads a policy file. The format follows the file extension.
func Load(path string) (*SignatureValidationProperties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read properties file: %w", err)
	}
	return Parse(data, DetectFormat(path))
}

// Parse decodes a policy document and applies it on top of the defaults.
func Parse(data []byte, format Format) (*SignatureValidationProperties, error) {
	var (
		generic any
		doc     document
	)

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to parse YAML properties: %w", err)
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML properties: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to parse JSON properties: %w", err)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON properties: %w", err)
		}
	}

	// An empty YAML file decodes to nil.
	if generic == nil {
		generic = map[string]any{}
	}
	if err := validateSchema(generic); err != nil {
		return nil, err
	}

	return doc.apply(NewSignatureValidationProperties())
}

func validateSchema(generic any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("properties: compile schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(generic))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return d, nil
}

func (d *document) apply(p *SignatureValidationProperties) (*SignatureValidationProperties, error) {
	if len(d.RevocationOrder) > 0 {
		order := make([]EvidenceKind, 0, len(d.RevocationOrder))
		for _, s := range d.RevocationOrder {
			k, err := ParseEvidenceKind(s)
			if err != nil {
				return nil, err
			}
			order = append(order, k)
		}
		if err := p.SetRevocationOrder(order...); err != nil {
			return nil, err
		}
	}
	if d.IndeterminateRevocationFatal != nil {
		p.SetIndeterminateRevocationFatal(*d.IndeterminateRevocationFatal)
	}
	if d.MaxChainLength != nil {
		if err := p.SetMaxChainLength(*d.MaxChainLength); err != nil {
			return nil, err
		}
	}
	if d.MaxRevocationNesting != nil {
		if err := p.SetMaxRevocationNesting(*d.MaxRevocationNesting); err != nil {
			return nil, err
		}
	}
	if d.DefaultGracePeriod != "" {
		g, err := parseDuration(d.DefaultGracePeriod)
		if err != nil {
			return nil, err
		}
		if err := p.SetDefaultGracePeriod(g); err != nil {
			return nil, err
		}
	}

	profile, err := events.ProfileByName(d.AlgorithmCompliance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	severity := ViolationInvalid
	if d.AlgorithmViolation != "" {
		if severity, err = ParseViolationSeverity(d.AlgorithmViolation); err != nil {
			return nil, err
		}
	}
	p.SetAlgorithmCompliance(profile, severity)

	for i, dr := range d.Rules {
		r, err := dr.rule()
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		p.AddRule(r)
	}
	return p, nil
}

func (dr docRule) rule() (Rule, error) {
	r := Rule{
		Validators: vcontext.AllValidators(),
		Sources:    vcontext.AllSources(),
		Times:      vcontext.AllTimes(),
	}

	if len(dr.Validators) > 0 {
		r.Validators = 0
		for _, s := range dr.Validators {
			v, err := vcontext.ParseValidatorContext(s)
			if err != nil {
				return Rule{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}
			r.Validators |= vcontext.ValidatorsOf(v)
		}
	}
	if len(dr.Sources) > 0 {
		r.Sources = 0
		for _, s := range dr.Sources {
			src, err := vcontext.ParseCertificateSource(s)
			if err != nil {
				return Rule{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}
			r.Sources |= vcontext.SourcesOf(src)
		}
	}
	if len(dr.TimeContexts) > 0 {
		r.Times = 0
		for _, s := range dr.TimeContexts {
			tc, err := vcontext.ParseTimeBasedContext(s)
			if err != nil {
				return Rule{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}
			r.Times |= vcontext.TimesOf(tc)
		}
	}

	if dr.Freshness != "" {
		f, err := parseDuration(dr.Freshness)
		if err != nil {
			return Rule{}, err
		}
		r.Freshness = &f
	}
	if dr.OnlineFetching != "" {
		mode, err := ParseOnlineFetching(dr.OnlineFetching)
		if err != nil {
			return Rule{}, err
		}
		r.OnlineFetching = &mode
	}
	r.ContinueAfterFailure = dr.ContinueAfterFailure

	if dr.RequiredExtensions != nil {
		r.RequiredExtensions = []extensions.Extension{}
		for _, de := range *dr.RequiredExtensions {
			ext, err := de.extension()
			if err != nil {
				return Rule{}, err
			}
			r.RequiredExtensions = append(r.RequiredExtensions, ext)
		}
	}
	return r, nil
}

var extendedKeyUsageNames = map[string]asn1.ObjectIdentifier{
	"any":          extensions.OIDAnyExtendedKeyUsage,
	"serverauth":   extensions.OIDServerAuth,
	"clientauth":   extensions.OIDClientAuth,
	"codesigning":  extensions.OIDCodeSigning,
	"timestamping": extensions.OIDTimeStamping,
	"ocspsigning":  extensions.OIDOCSPSigning,
}

// ParseOID parses a dotted object identifier.
func ParseOID(s string) (asn1.ObjectIdentifier, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: malformed OID %q", ErrInvalidConfig, s)
	}
	oid := make(asn1.ObjectIdentifier, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: malformed OID %q", ErrInvalidConfig, s)
		}
		oid[i] = n
	}
	return oid, nil
}

func (de docExtension) extension() (extensions.Extension, error) {
	switch {
	case len(de.KeyUsage) > 0:
		var usage x509.KeyUsage
		for _, name := range de.KeyUsage {
			bit, ok := extensions.KeyUsageFromName(name)
			if !ok {
				return nil, fmt.Errorf("%w: unknown key usage %q", ErrInvalidConfig, name)
			}
			usage |= bit
		}
		return extensions.NewKeyUsageExtension(usage), nil

	case len(de.ExtendedKeyUsage) > 0:
		purposes := make([]asn1.ObjectIdentifier, 0, len(de.ExtendedKeyUsage))
		for _, name := range de.ExtendedKeyUsage {
			if oid, ok := extendedKeyUsageNames[strings.ToLower(name)]; ok {
				purposes = append(purposes, oid)
				continue
			}
			oid, err := ParseOID(name)
			if err != nil {
				return nil, err
			}
			purposes = append(purposes, oid)
		}
		return extensions.NewExtendedKeyUsageExtension(purposes...), nil

	case de.BasicConstraints != nil:
		bc := de.BasicConstraints
		if bc.PathLength != nil {
			return extensions.NewBasicConstraintsPathLength(*bc.PathLength), nil
		}
		if bc.CA != nil {
			return extensions.NewBasicConstraintsExtension(*bc.CA), nil
		}
		return nil, fmt.Errorf("%w: empty basicConstraints", ErrInvalidConfig)

	case de.OID != "":
		oid, err := ParseOID(de.OID)
		if err != nil {
			return nil, err
		}
		var value []byte
		if de.Value != "" {
			if value, err = hex.DecodeString(de.Value); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}
		}
		return extensions.NewCertificateExtension(oid, value), nil
	}
	return nil, fmt.Errorf("%w: empty extension requirement", ErrInvalidConfig)
}
