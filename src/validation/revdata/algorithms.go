// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revdata

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
)

var (
	oidSHA1   = asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}
	oidSHA256 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
	oidSHA384 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}
	oidSHA512 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 3}

	oidRSAPSS = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 10}
)

var hashByOID = []struct {
	oid  asn1.ObjectIdentifier
	hash crypto.Hash
}{
	{oidSHA1, crypto.SHA1},
	{oidSHA256, crypto.SHA256},
	{oidSHA384, crypto.SHA384},
	{oidSHA512, crypto.SHA512},
}

// HashFromOID maps a digest algorithm identifier to a [crypto.Hash].
func HashFromOID(oid asn1.ObjectIdentifier) (crypto.Hash, bool) {
	for _, h := range hashByOID {
		if h.oid.Equal(oid) {
			return h.hash, true
		}
	}
	return 0, false
}

// HashOID is the inverse of [HashFromOID].
func HashOID(h crypto.Hash) (asn1.ObjectIdentifier, bool) {
	for _, e := range hashByOID {
		if e.hash == h {
			return e.oid, true
		}
	}
	return nil, false
}

var signatureAlgorithms = []struct {
	alg x509.SignatureAlgorithm
	oid asn1.ObjectIdentifier
}{
	{x509.MD2WithRSA, asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 2}},
	{x509.MD5WithRSA, asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 4}},
	{x509.SHA1WithRSA, asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 5}},
	{x509.SHA256WithRSA, asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}},
	{x509.SHA384WithRSA, asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}},
	{x509.SHA512WithRSA, asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}},
	{x509.SHA256WithRSAPSS, oidRSAPSS},
	{x509.SHA384WithRSAPSS, oidRSAPSS},
	{x509.SHA512WithRSAPSS, oidRSAPSS},
	{x509.DSAWithSHA1, asn1.ObjectIdentifier{1, 2, 840, 10040, 4, 3}},
	{x509.DSAWithSHA256, asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 3, 2}},
	{x509.ECDSAWithSHA1, asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 1}},
	{x509.ECDSAWithSHA256, asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}},
	{x509.ECDSAWithSHA384, asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 3}},
	{x509.ECDSAWithSHA512, asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 4}},
	{x509.PureEd25519, asn1.ObjectIdentifier{1, 3, 101, 112}},
}

// SignatureAlgorithmOID returns the identifier of a signature algorithm,
// or nil for [x509.UnknownSignatureAlgorithm].
func SignatureAlgorithmOID(alg x509.SignatureAlgorithm) asn1.ObjectIdentifier {
	for _, e := range signatureAlgorithms {
		if e.alg == alg {
			return e.oid
		}
	}
	return nil
}

type pssParameters struct {
	Hash pkix.AlgorithmIdentifier `asn1:"explicit,tag:0,optional"`
}

// SignatureAlgorithmFromAI maps an AlgorithmIdentifier to a
// [x509.SignatureAlgorithm], reading RSASSA-PSS parameters to pick the hash.
func SignatureAlgorithmFromAI(ai pkix.AlgorithmIdentifier) x509.SignatureAlgorithm {
	if ai.Algorithm.Equal(oidRSAPSS) {
		var params pssParameters
		if _, err := asn1.Unmarshal(ai.Parameters.FullBytes, &params); err != nil {
			return x509.UnknownSignatureAlgorithm
		}
		h, _ := HashFromOID(params.Hash.Algorithm)
		switch h {
		case crypto.SHA256:
			return x509.SHA256WithRSAPSS
		case crypto.SHA384:
			return x509.SHA384WithRSAPSS
		case crypto.SHA512:
			return x509.SHA512WithRSAPSS
		}
		return x509.UnknownSignatureAlgorithm
	}
	for _, e := range signatureAlgorithms {
		if e.oid.Equal(ai.Algorithm) {
			return e.alg
		}
	}
	return x509.UnknownSignatureAlgorithm
}
