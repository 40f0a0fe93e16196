// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"crypto/x509"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	x509certs "github.com/H0llyW00dzZ/x509-trust-validator/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/logger"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/fetch"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/properties"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
)

// Environment is the state shared by every tool and resource handler: the
// configuration, the trust material loaded from it, and the process-wide
// metrics and CRL cache.
type Environment struct {
	Config     *Config
	Version    string
	Logger     logger.Logger
	Properties *properties.SignatureValidationProperties
	Trusted    map[trust.Role][]*x509.Certificate
	Known      []*x509.Certificate
	HTTP       *fetch.HTTPConfig
	CRLCache   *fetch.CRLCache
	Registry   *prometheus.Registry
	Metrics    *events.MetricsHandler
}

// NewEnvironment loads the bundles and properties named by config.
//
// Parameters:
//   - config: Server configuration; nil uses the defaults
//   - version: Server version, sent in the HTTP User-Agent
//   - log: Logger for retrieval diagnostics; nil discards them
//
// Returns:
//   - *Environment: Ready to serve tool calls
//   - error: If a bundle or the properties file cannot be loaded
func NewEnvironment(config *Config, version string, log logger.Logger) (*Environment, error) {
	if config == nil {
		config = defaultConfig()
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	env := &Environment{
		Config:     config,
		Version:    version,
		Logger:     log,
		Properties: properties.NewSignatureValidationProperties(),
		Trusted:    make(map[trust.Role][]*x509.Certificate),
		Registry:   prometheus.NewRegistry(),
	}
	env.Metrics = events.NewMetricsHandler(env.Registry)

	if path := config.Validation.PropertiesFile; path != "" {
		props, err := properties.Load(path)
		if err != nil {
			return nil, err
		}
		env.Properties = props
	}

	decoder := x509certs.New()
	bundles := []struct {
		role  trust.Role
		paths []string
	}{
		{trust.General, config.Trust.General},
		{trust.CA, config.Trust.CA},
		{trust.OCSP, config.Trust.OCSP},
		{trust.CRL, config.Trust.CRL},
		{trust.Timestamp, config.Trust.Timestamp},
	}
	for _, bundle := range bundles {
		if len(bundle.paths) == 0 {
			continue
		}
		certs, err := decoder.LoadFiles(bundle.paths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s trust bundle: %w", bundle.role, err)
		}
		env.Trusted[bundle.role] = certs
	}
	if len(config.Trust.Known) > 0 {
		certs, err := decoder.LoadFiles(config.Trust.Known...)
		if err != nil {
			return nil, fmt.Errorf("failed to load known certificates: %w", err)
		}
		env.Known = certs
	}

	env.HTTP = fetch.NewHTTPConfig(version)
	env.HTTP.Timeout = time.Duration(config.Defaults.Timeout) * time.Second
	env.HTTP.RateLimit = config.Fetch.RateLimit
	env.HTTP.Burst = config.Fetch.Burst
	if config.Fetch.MaxResponseBytes > 0 {
		env.HTTP.MaxResponseSize = config.Fetch.MaxResponseBytes
	}

	cache := config.Fetch.CRLCache
	env.CRLCache = fetch.NewCRLCache(&fetch.CRLCacheConfig{
		MaxSize:         cache.MaxSize,
		MaxAge:          time.Duration(cache.MaxAgeMinutes) * time.Minute,
		CleanupInterval: time.Duration(cache.CleanupIntervalMinutes) * time.Minute,
	})

	log.Printf("loaded %d trust bundle role(s) and %d known certificate(s)", len(env.Trusted), len(env.Known))
	return env, nil
}

// trustedCount is the number of trusted certificates across all roles.
func (e *Environment) trustedCount() int {
	n := 0
	for _, certs := range e.Trusted {
		n += len(certs)
	}
	return n
}
