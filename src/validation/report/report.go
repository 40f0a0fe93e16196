// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package report

import (
	"crypto/x509"
	"fmt"
	"strings"
)

// ReportItemStatus is the severity of a single finding.
type ReportItemStatus int

const (
	// Info marks a finding that does not affect validity.
	Info ReportItemStatus = iota
	// Invalid marks a finding that makes the whole report invalid.
	Invalid
)

// String returns the upper-case status name.
func (s ReportItemStatus) String() string {
	switch s {
	case Info:
		return "INFO"
	case Invalid:
		return "INVALID"
	default:
		return fmt.Sprintf("ReportItemStatus(%d)", int(s))
	}
}

// MarshalText renders the status as its name.
func (s ReportItemStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ValidationResult is the aggregate verdict of a report.
type ValidationResult string

const (
	// Valid means no item in the report is [Invalid].
	Valid ValidationResult = "VALID"
	// NotValid means at least one item is [Invalid].
	NotValid ValidationResult = "INVALID"
)

// ReportItem is a single finding produced by a validator.
type ReportItem struct {
	CheckName   string
	Message     string
	Err         error
	Status      ReportItemStatus
	Certificate *x509.Certificate
}

// NewReportItem creates a finding that is not tied to a certificate.
func NewReportItem(checkName, message string, err error, status ReportItemStatus) *ReportItem {
	return &ReportItem{
		CheckName: checkName,
		Message:   message,
		Err:       err,
		Status:    status,
	}
}

// NewCertificateReportItem creates a finding about a specific certificate.
func NewCertificateReportItem(cert *x509.Certificate, checkName, message string, err error, status ReportItemStatus) *ReportItem {
	item := NewReportItem(checkName, message, err, status)
	item.Certificate = cert
	return item
}

// String formats the item on one line.
func (i *ReportItem) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s", i.Status, i.CheckName, i.Message)
	if i.Certificate != nil {
		fmt.Fprintf(&sb, " (subject=%q serial=%s)", i.Certificate.Subject.String(), i.Certificate.SerialNumber)
	}
	if i.Err != nil {
		fmt.Fprintf(&sb, ": %v", i.Err)
	}
	return sb.String()
}

// ValidationReport accumulates findings in the order they are reported.
type ValidationReport struct {
	items []*ReportItem
}

// New returns an empty, valid report.
func New() *ValidationReport { return &ValidationReport{} }

// AddReportItem appends an item and returns the report for chaining.
// It panics if item is nil.
func (r *ValidationReport) AddReportItem(item *ReportItem) *ValidationReport {
	if item == nil {
		panic("report: nil report item")
	}
	r.items = append(r.items, item)
	return r
}

// Merge appends every item of other, preserving order.
func (r *ValidationReport) Merge(other *ValidationReport) *ValidationReport {
	if other == nil {
		return r
	}
	r.items = append(r.items, other.items...)
	return r
}

// Logs returns all items in insertion order.
func (r *ValidationReport) Logs() []*ReportItem {
	out := make([]*ReportItem, len(r.items))
	copy(out, r.items)
	return out
}

// Failures returns the [Invalid] items in insertion order.
func (r *ValidationReport) Failures() []*ReportItem {
	var out []*ReportItem
	for _, item := range r.items {
		if item.Status == Invalid {
			out = append(out, item)
		}
	}
	return out
}

// Len reports the number of items.
func (r *ValidationReport) Len() int { return len(r.items) }

// IsValid reports whether no item is [Invalid]. An empty report is valid.
func (r *ValidationReport) IsValid() bool {
	for _, item := range r.items {
		if item.Status == Invalid {
			return false
		}
	}
	return true
}

// ValidationResult maps [ValidationReport.IsValid] to a verdict.
func (r *ValidationReport) ValidationResult() ValidationResult {
	if r.IsValid() {
		return Valid
	}
	return NotValid
}

// String renders the verdict followed by one line per item.
func (r *ValidationReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ValidationReport: %s\n", r.ValidationResult())
	for _, item := range r.items {
		sb.WriteString("  ")
		sb.WriteString(item.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
