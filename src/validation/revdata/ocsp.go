// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revdata

import (
	"bytes"
	"crypto"
	_ "crypto/sha1" // CertID digests
	_ "crypto/sha256"
	_ "crypto/sha512"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/ocsp"
)

var (
	// ErrNotBasicResponse is returned for OCSP responses of a type other
	// than id-pkix-ocsp-basic.
	ErrNotBasicResponse = errors.New("revdata: OCSP response is not a basic response")
	// ErrTrailingData is returned when DER input has bytes after the value.
	ErrTrailingData = errors.New("revdata: trailing data after DER value")
	// ErrUnsupportedHash is returned when a CertID uses an unknown digest.
	ErrUnsupportedHash = errors.New("revdata: unsupported CertID hash algorithm")
)

var idPKIXOCSPBasic = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 1}

// RFC 6960 structures. Field tags mirror the module.
type responseASN1 struct {
	Status   asn1.Enumerated
	Response responseBytes `asn1:"explicit,tag:0,optional"`
}

type responseBytes struct {
	ResponseType asn1.ObjectIdentifier
	Response     []byte
}

type basicResponseASN1 struct {
	TBSResponseData    responseDataASN1
	SignatureAlgorithm pkix.AlgorithmIdentifier
	Signature          asn1.BitString
	Certificates       []asn1.RawValue `asn1:"explicit,tag:0,optional"`
}

type responseDataASN1 struct {
	Raw                asn1.RawContent
	Version            int `asn1:"optional,default:0,explicit,tag:0"`
	RawResponderID     asn1.RawValue
	ProducedAt         time.Time `asn1:"generalized"`
	Responses          []singleResponseASN1
	ResponseExtensions []pkix.Extension `asn1:"explicit,tag:1,optional"`
}

type singleResponseASN1 struct {
	CertID           certIDASN1
	Good             asn1.Flag        `asn1:"tag:0,optional"`
	Revoked          revokedInfoASN1  `asn1:"tag:1,optional"`
	Unknown          asn1.Flag        `asn1:"tag:2,optional"`
	ThisUpdate       time.Time        `asn1:"generalized"`
	NextUpdate       time.Time        `asn1:"generalized,explicit,tag:0,optional"`
	SingleExtensions []pkix.Extension `asn1:"explicit,tag:1,optional"`
}

type revokedInfoASN1 struct {
	RevocationTime time.Time       `asn1:"generalized"`
	Reason         asn1.Enumerated `asn1:"explicit,tag:0,optional"`
}

type certIDASN1 struct {
	HashAlgorithm pkix.AlgorithmIdentifier
	NameHash      []byte
	IssuerKeyHash []byte
	SerialNumber  *big.Int
}

// CertStatus is the status asserted by a SingleResponse.
type CertStatus int

const (
	Good    CertStatus = ocsp.Good
	Revoked CertStatus = ocsp.Revoked
	Unknown CertStatus = ocsp.Unknown
)

func (s CertStatus) String() string {
	switch s {
	case Good:
		return "good"
	case Revoked:
		return "revoked"
	case Unknown:
		return "unknown"
	}
	return fmt.Sprintf("CertStatus(%d)", int(s))
}

// RevocationReason is an RFC 5280 CRLReason code.
type RevocationReason int

var reasonNames = map[RevocationReason]string{
	ocsp.Unspecified:          "unspecified",
	ocsp.KeyCompromise:        "keyCompromise",
	ocsp.CACompromise:         "cACompromise",
	ocsp.AffiliationChanged:   "affiliationChanged",
	ocsp.Superseded:           "superseded",
	ocsp.CessationOfOperation: "cessationOfOperation",
	ocsp.CertificateHold:      "certificateHold",
	ocsp.RemoveFromCRL:        "removeFromCRL",
	ocsp.PrivilegeWithdrawn:   "privilegeWithdrawn",
	ocsp.AACompromise:         "aACompromise",
}

func (r RevocationReason) String() string {
	if n, ok := reasonNames[r]; ok {
		return n
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// CertID identifies the certificate a SingleResponse is about.
type CertID struct {
	HashAlgorithm  crypto.Hash
	IssuerNameHash []byte
	IssuerKeyHash  []byte
	SerialNumber   *big.Int
}

// SingleResponse is the status of one certificate.
type SingleResponse struct {
	CertID           CertID
	Status           CertStatus
	RevokedAt        time.Time
	RevocationReason RevocationReason
	ThisUpdate       time.Time
	// NextUpdate is zero when the responder did not set it.
	NextUpdate time.Time
	Extensions []pkix.Extension
}

// BasicOCSPResponse is a decoded id-pkix-ocsp-basic response.
type BasicOCSPResponse struct {
	Raw []byte
	// TBSResponseData is the signed payload.
	TBSResponseData       []byte
	ProducedAt            time.Time
	RawResponderName      []byte
	ResponderKeyHash      []byte
	Responses             []SingleResponse
	Certificates          []*x509.Certificate
	SignatureAlgorithm    x509.SignatureAlgorithm
	SignatureAlgorithmOID asn1.ObjectIdentifier
	Signature             []byte
	Extensions            []pkix.Extension
}

// ParseOCSPResponse decodes a full OCSPResponse. Responses whose status is
// not successful yield an [ocsp.ResponseError].
func ParseOCSPResponse(der []byte) (*BasicOCSPResponse, error) {
	var resp responseASN1
	rest, err := asn1.Unmarshal(der, &resp)
	if err != nil {
		return nil, fmt.Errorf("revdata: decoding OCSP response: %w", err)
	}
	if len(rest) > 0 {
		return nil, ErrTrailingData
	}
	if status := ocsp.ResponseStatus(resp.Status); status != ocsp.Success {
		return nil, ocsp.ResponseError{Status: status}
	}
	if !resp.Response.ResponseType.Equal(idPKIXOCSPBasic) {
		return nil, ErrNotBasicResponse
	}
	return ParseBasicOCSPResponse(resp.Response.Response)
}

// ParseBasicOCSPResponse decodes a bare BasicOCSPResponse.
func ParseBasicOCSPResponse(der []byte) (*BasicOCSPResponse, error) {
	var basic basicResponseASN1
	rest, err := asn1.Unmarshal(der, &basic)
	if err != nil {
		return nil, fmt.Errorf("revdata: decoding basic OCSP response: %w", err)
	}
	if len(rest) > 0 {
		return nil, ErrTrailingData
	}

	out := &BasicOCSPResponse{
		Raw:                   append([]byte(nil), der...),
		TBSResponseData:       basic.TBSResponseData.Raw,
		ProducedAt:            basic.TBSResponseData.ProducedAt,
		SignatureAlgorithm:    SignatureAlgorithmFromAI(basic.SignatureAlgorithm),
		SignatureAlgorithmOID: basic.SignatureAlgorithm.Algorithm,
		Signature:             basic.Signature.RightAlign(),
		Extensions:            basic.TBSResponseData.ResponseExtensions,
	}

	rid := basic.TBSResponseData.RawResponderID
	switch rid.Tag {
	case 1:
		out.RawResponderName = rid.Bytes
	case 2:
		if _, err := asn1.Unmarshal(rid.Bytes, &out.ResponderKeyHash); err != nil {
			return nil, fmt.Errorf("revdata: decoding responder key hash: %w", err)
		}
	default:
		return nil, fmt.Errorf("revdata: invalid responder ID tag %d", rid.Tag)
	}

	for i, raw := range basic.Certificates {
		cert, err := x509.ParseCertificate(raw.FullBytes)
		if err != nil {
			return nil, fmt.Errorf("revdata: embedded certificate %d: %w", i, err)
		}
		out.Certificates = append(out.Certificates, cert)
	}

	for i, sr := range basic.TBSResponseData.Responses {
		single, err := decodeSingle(sr)
		if err != nil {
			return nil, fmt.Errorf("revdata: single response %d: %w", i, err)
		}
		out.Responses = append(out.Responses, single)
	}
	return out, nil
}

func decodeSingle(sr singleResponseASN1) (SingleResponse, error) {
	h, ok := HashFromOID(sr.CertID.HashAlgorithm.Algorithm)
	if !ok {
		return SingleResponse{}, ErrUnsupportedHash
	}
	single := SingleResponse{
		CertID: CertID{
			HashAlgorithm:  h,
			IssuerNameHash: sr.CertID.NameHash,
			IssuerKeyHash:  sr.CertID.IssuerKeyHash,
			SerialNumber:   sr.CertID.SerialNumber,
		},
		ThisUpdate: sr.ThisUpdate,
		NextUpdate: sr.NextUpdate,
		Extensions: sr.SingleExtensions,
	}
	switch {
	case bool(sr.Good):
		single.Status = Good
	case bool(sr.Unknown):
		single.Status = Unknown
	default:
		single.Status = Revoked
		single.RevokedAt = sr.Revoked.RevocationTime
		single.RevocationReason = RevocationReason(sr.Revoked.Reason)
	}
	return single, nil
}

// ParseOCSP accepts either a full OCSPResponse or a bare BasicOCSPResponse.
func ParseOCSP(der []byte) (*BasicOCSPResponse, error) {
	basic, err := ParseOCSPResponse(der)
	if err == nil {
		return basic, nil
	}
	var respErr ocsp.ResponseError
	if errors.As(err, &respErr) || errors.Is(err, ErrNotBasicResponse) {
		return nil, err
	}
	if basic, berr := ParseBasicOCSPResponse(der); berr == nil {
		return basic, nil
	}
	return nil, err
}

// NewCertID computes the identifier of cert as issued by issuer.
func NewCertID(h crypto.Hash, cert, issuer *x509.Certificate) (CertID, error) {
	if !h.Available() {
		return CertID{}, ErrUnsupportedHash
	}
	nameHash, keyHash, err := issuerHashes(h, cert.RawIssuer, issuer)
	if err != nil {
		return CertID{}, err
	}
	return CertID{
		HashAlgorithm:  h,
		IssuerNameHash: nameHash,
		IssuerKeyHash:  keyHash,
		SerialNumber:   new(big.Int).Set(cert.SerialNumber),
	}, nil
}

func issuerHashes(h crypto.Hash, rawIssuer []byte, issuer *x509.Certificate) (nameHash, keyHash []byte, err error) {
	var spki struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(issuer.RawSubjectPublicKeyInfo, &spki); err != nil {
		return nil, nil, fmt.Errorf("revdata: decoding issuer public key: %w", err)
	}
	hn := h.New()
	hn.Write(rawIssuer)
	nameHash = hn.Sum(nil)

	hk := h.New()
	hk.Write(spki.PublicKey.RightAlign())
	keyHash = hk.Sum(nil)
	return nameHash, keyHash, nil
}

// Matches reports whether id identifies cert issued by issuer, hashing with
// the algorithm declared in id.
func (id CertID) Matches(cert, issuer *x509.Certificate) bool {
	if cert == nil || issuer == nil || id.SerialNumber == nil {
		return false
	}
	if id.SerialNumber.Cmp(cert.SerialNumber) != 0 {
		return false
	}
	if !id.HashAlgorithm.Available() {
		return false
	}
	nameHash, keyHash, err := issuerHashes(id.HashAlgorithm, cert.RawIssuer, issuer)
	if err != nil {
		return false
	}
	return bytes.Equal(nameHash, id.IssuerNameHash) && bytes.Equal(keyHash, id.IssuerKeyHash)
}

// ResponderMatches reports whether cert is the responder named in the
// response's ResponderID.
func (b *BasicOCSPResponse) ResponderMatches(cert *x509.Certificate) bool {
	if len(b.RawResponderName) > 0 {
		return bytes.Equal(b.RawResponderName, cert.RawSubject)
	}
	if len(b.ResponderKeyHash) > 0 {
		_, keyHash, err := issuerHashes(crypto.SHA1, nil, cert)
		return err == nil && bytes.Equal(keyHash, b.ResponderKeyHash)
	}
	return false
}
