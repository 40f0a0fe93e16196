// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package properties_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/x509/testpki"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/properties"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

const yamlPolicy = `
revocationOrder: [crl, ocsp]
indeterminateRevocationFatal: true
maxChainLength: 8
maxRevocationNesting: 1
defaultGracePeriod: 1h
algorithmCompliance: etsi-ts-119-312
algorithmViolation: fatal
rules:
  - validators: [ocsp, crl]
    timeContexts: [historical]
    freshness: 24h
  - sources: [signer-cert]
    onlineFetching: never
    continueAfterFailure: false
    requiredExtensions:
      - keyUsage: [digitalSignature]
      - oid: "1.3.6.1.5.5.7.48.1.5"
`

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "YAML document",
			testFunc: func(t *testing.T) {
				p, err := properties.Parse([]byte(yamlPolicy), properties.FormatYAML)
				require.NoError(t, err)

				assert.Equal(t, []properties.EvidenceKind{properties.CRL, properties.OCSP}, p.RevocationOrder())
				assert.True(t, p.IndeterminateRevocationFatal())
				assert.Equal(t, 8, p.MaxChainLength())
				assert.Equal(t, 1, p.MaxRevocationNesting())
				assert.Equal(t, time.Hour, p.DefaultGracePeriod())
				assert.Same(t, events.EtsiTs119312, p.AlgorithmCompliance())
				assert.Equal(t, properties.ViolationFatal, p.AlgorithmViolation())

				hist := vcontext.New(vcontext.CRLValidator, vcontext.CertIssuer, vcontext.Historical)
				assert.Equal(t, 24*time.Hour, p.GetFreshness(hist))
				assert.Equal(t, time.Duration(0), p.GetFreshness(hist.WithTimeBasedContext(vcontext.Present)))

				signer := vcontext.New(vcontext.CertificateChainValidator, vcontext.SignerCert, vcontext.Present)
				assert.Equal(t, properties.NeverFetch, p.GetRevocationOnlineFetching(signer))
				assert.False(t, p.GetContinueAfterFailure(signer))

				exts := p.GetRequiredExtensions(signer)
				require.Len(t, exts, 2)
				leaf := testpki.NewRoot(t, "Config Root").IssueLeaf(t, "config.example")
				assert.True(t, exts[0].ExistsInCertificate(leaf.Cert))
				assert.False(t, exts[1].ExistsInCertificate(leaf.Cert))
			},
		},
		{
			name: "JSON document",
			testFunc: func(t *testing.T) {
				doc := `{"maxChainLength": 4, "rules": [{"sources": ["cert-issuer"], "requiredExtensions": [{"basicConstraints": {"pathLength": 0}}]}]}`
				p, err := properties.Parse([]byte(doc), properties.FormatJSON)
				require.NoError(t, err)
				assert.Equal(t, 4, p.MaxChainLength())

				ctx := vcontext.New(vcontext.CertificateChainValidator, vcontext.CertIssuer, vcontext.Present)
				require.Len(t, p.GetRequiredExtensions(ctx), 1)
			},
		},
		{
			name: "empty document yields defaults",
			testFunc: func(t *testing.T) {
				p, err := properties.Parse(nil, properties.FormatYAML)
				require.NoError(t, err)
				assert.Equal(t, properties.DefaultMaxChainLength, p.MaxChainLength())
			},
		},
		{
			name: "schema violations",
			testFunc: func(t *testing.T) {
				for _, doc := range []string{
					`{"maxChainLength": 0}`,
					`{"unknownField": true}`,
					`{"revocationOrder": ["ocsp", "ocsp"]}`,
					`{"rules": [{"validators": ["nope"]}]}`,
					`{"rules": [{"freshness": "soon"}]}`,
					`{"rules": [{"requiredExtensions": [{}]}]}`,
					`{"algorithmCompliance": "fips"}`,
				} {
					_, err := properties.Parse([]byte(doc), properties.FormatJSON)
					assert.ErrorIs(t, err, properties.ErrInvalidConfig, doc)
				}
			},
		},
		{
			name: "semantic violations",
			testFunc: func(t *testing.T) {
				_, err := properties.Parse([]byte(`{"rules": [{"requiredExtensions": [{"keyUsage": ["teleport"]}]}]}`), properties.FormatJSON)
				assert.ErrorIs(t, err, properties.ErrInvalidConfig)
			},
		},
		{
			name: "malformed input",
			testFunc: func(t *testing.T) {
				_, err := properties.Parse([]byte(`{`), properties.FormatJSON)
				assert.Error(t, err)
				_, err = properties.Parse([]byte("a: [b"), properties.FormatYAML)
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlPolicy), 0o600))

	p, err := properties.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, p.MaxChainLength())

	assert.Equal(t, properties.FormatJSON, properties.DetectFormat("policy.JSON"))
	assert.Equal(t, properties.FormatYAML, properties.DetectFormat("policy.YAML"))

	_, err = properties.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalJSON(t *testing.T) {
	p, err := properties.Parse([]byte(yamlPolicy), properties.FormatYAML)
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var view map[string]any
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, "etsi-ts-119-312", view["algorithmCompliance"])
	assert.Equal(t, []any{"crl", "ocsp"}, view["revocationOrder"])
	assert.Equal(t, "1h0m0s", view["defaultGracePeriod"])
	assert.NotEmpty(t, view["rules"])
	assert.True(t, json.Valid(properties.Schema()))
}
