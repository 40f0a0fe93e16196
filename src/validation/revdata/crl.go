// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revdata

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
)

const crlBlockType = "X509 CRL"

// ParseCRL decodes a PEM ("X509 CRL") or DER encoded CRL.
func ParseCRL(data []byte) (*x509.RevocationList, error) {
	if block, _ := pem.Decode(data); block != nil {
		if block.Type != crlBlockType {
			return nil, fmt.Errorf("revdata: unexpected PEM block %q", block.Type)
		}
		data = block.Bytes
	}
	crl, err := x509.ParseRevocationList(data)
	if err != nil {
		return nil, fmt.Errorf("revdata: decoding CRL: %w", err)
	}
	return crl, nil
}

// FindRevokedEntry returns the entry for serial, if any.
func FindRevokedEntry(crl *x509.RevocationList, serial *big.Int) (x509.RevocationListEntry, bool) {
	for _, entry := range crl.RevokedCertificateEntries {
		if entry.SerialNumber != nil && entry.SerialNumber.Cmp(serial) == 0 {
			return entry, true
		}
	}
	return x509.RevocationListEntry{}, false
}
