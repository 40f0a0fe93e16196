// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package events

import (
	"fmt"
	"strings"
)

// Event is anything published through a [Manager].
type Event interface {
	// EventType names the kind of event, for handlers that filter.
	EventType() string
}

// AlgorithmUsageEventType is the [Event.EventType] of [AlgorithmUsageEvent].
const AlgorithmUsageEventType = "algorithm-usage"

// Usage locations reported by the validators.
const (
	LocationCertificateCheck = "Certificate check."
	LocationOCSPCheck        = "OCSP response check."
	LocationCRLCheck         = "CRL response check."
)

// AlgorithmUsageEvent records one use of a cryptographic algorithm.
type AlgorithmUsageEvent struct {
	Name          string
	OID           string
	UsageLocation string
}

// NewAlgorithmUsageEvent creates an event. oid may be empty.
func NewAlgorithmUsageEvent(name, oid, location string) *AlgorithmUsageEvent {
	return &AlgorithmUsageEvent{Name: name, OID: oid, UsageLocation: location}
}

// NewAlgorithmQuery builds a location-less event for a compliance lookup.
// Dotted-decimal input is taken as an OID and anything else as a name.
func NewAlgorithmQuery(nameOrOID string) *AlgorithmUsageEvent {
	if isDottedOID(nameOrOID) {
		return NewAlgorithmUsageEvent("", nameOrOID, "")
	}
	return NewAlgorithmUsageEvent(nameOrOID, "", "")
}

func isDottedOID(s string) bool {
	if !strings.Contains(s, ".") {
		return false
	}
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// EventType implements [Event].
func (e *AlgorithmUsageEvent) EventType() string { return AlgorithmUsageEventType }

// IsAllowedAccordingToAdES reports whether the algorithm is on the AdES
// allow-list.
func (e *AlgorithmUsageEvent) IsAllowedAccordingToAdES() bool {
	return AdES.Allows(e.Name, e.OID)
}

// IsAllowedAccordingToEtsiTs119312 reports whether the algorithm is on the
// ETSI TS 119 312 allow-list.
func (e *AlgorithmUsageEvent) IsAllowedAccordingToEtsiTs119312() bool {
	return EtsiTs119312.Allows(e.Name, e.OID)
}

func (e *AlgorithmUsageEvent) String() string {
	if e.OID == "" {
		return fmt.Sprintf("%s at %q", e.Name, e.UsageLocation)
	}
	return fmt.Sprintf("%s (%s) at %q", e.Name, e.OID, e.UsageLocation)
}
