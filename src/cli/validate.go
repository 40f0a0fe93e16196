// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/session"
	x509certs "github.com/H0llyW00dzZ/x509-trust-validator/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/logger"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/fetch"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/properties"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

type validateOptions struct {
	cert        string
	trusted     []string
	trustedCA   []string
	trustedOCSP []string
	trustedCRL  []string
	trustedTSA  []string
	known       []string
	crls        []string
	ocsp        []string
	date        string
	historical  bool
	source      string
	config      string
	online      bool
	timeout     time.Duration
	format      string
	output      string
}

func newValidateCommand(version string, log logger.Logger) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate --cert CERT [FLAGS]",
		Short: "Validate a certificate chain and its revocation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts, version, log)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.cert, "cert", "c", "", "certificate to validate (PEM, DER or PKCS#7) [required]")
	f.StringSliceVar(&opts.trusted, "trusted", nil, "generally trusted certificate bundles")
	f.StringSliceVar(&opts.trustedCA, "trusted-ca", nil, "bundles trusted as certificate issuers")
	f.StringSliceVar(&opts.trustedOCSP, "trusted-ocsp", nil, "bundles trusted as OCSP responders")
	f.StringSliceVar(&opts.trustedCRL, "trusted-crl", nil, "bundles trusted as CRL issuers")
	f.StringSliceVar(&opts.trustedTSA, "trusted-tsa", nil, "bundles trusted as timestamp authorities")
	f.StringSliceVarP(&opts.known, "known", "k", nil, "untrusted bundles used to build the chain")
	f.StringSliceVar(&opts.crls, "crl", nil, "CRL files (PEM or DER)")
	f.StringSliceVar(&opts.ocsp, "ocsp", nil, "OCSP response files (DER)")
	f.StringVarP(&opts.date, "date", "d", "", "validation date in RFC 3339 (default: now)")
	f.BoolVar(&opts.historical, "historical", false, "treat the supplied evidence as historical")
	f.StringVar(&opts.source, "source", vcontext.SignerCert.String(), "role of the certificate (signer-cert, timestamp, ocsp-issuer, crl-issuer)")
	f.StringVar(&opts.config, "config", "", "validation properties file (YAML or JSON)")
	f.BoolVar(&opts.online, "online", false, "fetch OCSP responses and CRLs named in the certificates")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP timeout for online retrieval")
	f.StringVarP(&opts.format, "format", "f", session.FormatTable, "output format: table, json or text")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to OUTPUT_FILE (default: stdout)")
	_ = cmd.MarkFlagRequired("cert")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions, version string, log logger.Logger) error {
	if err := session.CheckFormat(opts.format); err != nil {
		return err
	}

	req, err := buildRequest(opts, version, log)
	if err != nil {
		return err
	}

	res, err := session.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if err := res.Render(out, opts.format); err != nil {
		return err
	}
	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("validation interrupted: %w", err)
	}
	if !res.Report.IsValid() {
		return ErrValidationFailed
	}
	return nil
}

func buildRequest(opts *validateOptions, version string, log logger.Logger) (session.Request, error) {
	decoder := x509certs.New()

	leafs, err := decoder.LoadFile(opts.cert)
	if err != nil {
		return session.Request{}, fmt.Errorf("error reading certificate: %w", err)
	}

	req := session.Request{
		Certificate: leafs[0],
		Trusted:     make(map[trust.Role][]*x509.Certificate),
		Historical:  opts.historical,
		Logger:      log,
	}

	// Extra certificates in the input bundle help build the chain.
	req.Known = append(req.Known, leafs[1:]...)

	bundles := []struct {
		role  trust.Role
		paths []string
	}{
		{trust.General, opts.trusted},
		{trust.CA, opts.trustedCA},
		{trust.OCSP, opts.trustedOCSP},
		{trust.CRL, opts.trustedCRL},
		{trust.Timestamp, opts.trustedTSA},
	}
	for _, bundle := range bundles {
		if len(bundle.paths) == 0 {
			continue
		}
		certs, err := decoder.LoadFiles(bundle.paths...)
		if err != nil {
			return session.Request{}, fmt.Errorf("error reading %s trust bundle: %w", bundle.role, err)
		}
		req.Trusted[bundle.role] = certs
	}

	if len(opts.known) > 0 {
		certs, err := decoder.LoadFiles(opts.known...)
		if err != nil {
			return session.Request{}, fmt.Errorf("error reading known certificates: %w", err)
		}
		req.Known = append(req.Known, certs...)
	}

	if req.CRLs, err = readFiles(opts.crls); err != nil {
		return session.Request{}, err
	}
	if req.OCSPResponses, err = readFiles(opts.ocsp); err != nil {
		return session.Request{}, err
	}

	if opts.date != "" {
		if req.Date, err = time.Parse(time.RFC3339, opts.date); err != nil {
			return session.Request{}, fmt.Errorf("invalid --date: %w", err)
		}
	}

	if req.Source, err = vcontext.ParseCertificateSource(opts.source); err != nil {
		return session.Request{}, fmt.Errorf("invalid --source: %w", err)
	}

	if opts.config != "" {
		if req.Properties, err = properties.Load(opts.config); err != nil {
			return session.Request{}, err
		}
	}

	if opts.online {
		req.Online = true
		req.HTTP = fetch.NewHTTPConfig(version)
		req.HTTP.Timeout = opts.timeout
		req.CRLCache = fetch.NewCRLCache(nil)
	}

	return req, nil
}

func readFiles(paths []string) ([][]byte, error) {
	var out [][]byte
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", p, err)
		}
		out = append(out, data)
	}
	return out, nil
}
