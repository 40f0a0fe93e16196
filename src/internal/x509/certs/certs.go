// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrNoCertificates indicates that the input held no certificate at all.
	ErrNoCertificates = errors.New("x509certs: no certificates found")

	// ErrInvalidBlockType indicates a PEM block that is neither a certificate nor PKCS7.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse a certificate.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")
)

const (
	blockCertificate = "CERTIFICATE"
	blockPKCS7       = "PKCS7"
)

// Decoder decodes certificate bundles.
type Decoder struct {
	// Accepted PEM block types besides CERTIFICATE and PKCS7 that are
	// silently skipped, e.g. a private key stored next to the chain.
	skip map[string]struct{}
}

// New creates a Decoder that skips nothing.
func New() *Decoder { return &Decoder{skip: map[string]struct{}{}} }

// Skip marks PEM block types to ignore instead of rejecting.
func (d *Decoder) Skip(types ...string) *Decoder {
	for _, t := range types {
		d.skip[t] = struct{}{}
	}
	return d
}

// IsPEM reports whether data starts with a PEM block.
func IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// Decode returns the first certificate in data.
func (d *Decoder) Decode(data []byte) (*x509.Certificate, error) {
	certs, err := d.DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	return certs[0], nil
}

// DecodeMultiple returns every certificate in data, in order.
// PEM input may mix CERTIFICATE and PKCS7 blocks. Binary input is tried as
// concatenated DER certificates first and as a PKCS7 bundle second.
func (d *Decoder) DecodeMultiple(data []byte) ([]*x509.Certificate, error) {
	var (
		certs []*x509.Certificate
		err   error
	)

	if IsPEM(data) {
		certs, err = d.decodePEM(data)
	} else {
		certs, err = decodeBinary(data)
	}
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, ErrNoCertificates
	}

	return certs, nil
}

func (d *Decoder) decodePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest

		switch block.Type {
		case blockCertificate:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
			}
			certs = append(certs, cert)
		case blockPKCS7:
			bundle, err := decodePKCS7(block.Bytes)
			if err != nil {
				return nil, err
			}
			certs = append(certs, bundle...)
		default:
			if _, ok := d.skip[block.Type]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidBlockType, block.Type)
			}
		}
	}

	return certs, nil
}

func decodeBinary(data []byte) ([]*x509.Certificate, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoCertificates
	}

	certs, err := x509.ParseCertificates(data)
	if err == nil {
		return certs, nil
	}

	return decodePKCS7(data)
}

func decodePKCS7(data []byte) ([]*x509.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsePKCS7, err)
	}
	if p.Content.SignedData.Certificates == nil || len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificates
	}
	return p.Content.SignedData.Certificates, nil
}

// LoadFile decodes every certificate in the named file.
func (d *Decoder) LoadFile(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("x509certs: read %s: %w", path, err)
	}

	certs, err := d.DecodeMultiple(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return certs, nil
}

// LoadFiles decodes and concatenates the certificates of every named file.
func (d *Decoder) LoadFiles(paths ...string) ([]*x509.Certificate, error) {
	var all []*x509.Certificate
	for _, p := range paths {
		certs, err := d.LoadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, certs...)
	}
	return all, nil
}

// EncodePEM encodes certificates as concatenated PEM blocks.
func EncodePEM(certs ...*x509.Certificate) []byte {
	var buf bytes.Buffer
	for _, cert := range certs {
		_ = pem.Encode(&buf, &pem.Block{Type: blockCertificate, Bytes: cert.Raw})
	}
	return buf.Bytes()
}

// EncodeDER concatenates the DER encodings of certs.
func EncodeDER(certs ...*x509.Certificate) []byte {
	var out []byte
	for _, cert := range certs {
		out = append(out, cert.Raw...)
	}
	return out
}
