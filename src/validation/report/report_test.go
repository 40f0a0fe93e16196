// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package report

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(name string, status ReportItemStatus) *ReportItem {
	return NewReportItem(name, name+" message", nil, status)
}

func checkNames(r *ValidationReport) []string {
	var names []string
	for _, it := range r.Logs() {
		names = append(names, it.CheckName)
	}
	return names
}

func TestValidationReport(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "empty report is valid",
			testFunc: func(t *testing.T) {
				r := New()
				assert.True(t, r.IsValid())
				assert.Equal(t, Valid, r.ValidationResult())
				assert.Empty(t, r.Failures())
				assert.Empty(t, r.Logs())
			},
		},
		{
			name: "info items keep report valid",
			testFunc: func(t *testing.T) {
				r := New().AddReportItem(item("a", Info)).AddReportItem(item("b", Info))
				assert.True(t, r.IsValid())
				assert.Len(t, r.Logs(), 2)
			},
		},
		{
			name: "single invalid item invalidates report",
			testFunc: func(t *testing.T) {
				r := New().AddReportItem(item("a", Info)).AddReportItem(item("b", Invalid))
				assert.False(t, r.IsValid())
				assert.Equal(t, NotValid, r.ValidationResult())
				require.Len(t, r.Failures(), 1)
				assert.Equal(t, "b", r.Failures()[0].CheckName)
			},
		},
		{
			name: "logs returns a copy",
			testFunc: func(t *testing.T) {
				r := New().AddReportItem(item("a", Info))
				logs := r.Logs()
				logs[0] = item("tampered", Invalid)
				assert.True(t, r.IsValid())
				assert.Equal(t, []string{"a"}, checkNames(r))
			},
		},
		{
			name: "nil item panics",
			testFunc: func(t *testing.T) {
				assert.Panics(t, func() { New().AddReportItem(nil) })
			},
		},
		{
			name: "merge preserves order",
			testFunc: func(t *testing.T) {
				a := New().AddReportItem(item("a1", Info))
				b := New().AddReportItem(item("b1", Invalid)).AddReportItem(item("b2", Info))
				a.Merge(b)
				assert.Equal(t, []string{"a1", "b1", "b2"}, checkNames(a))
				assert.False(t, a.IsValid())
				assert.Equal(t, []string{"b1", "b2"}, checkNames(b))
			},
		},
		{
			name: "merge is associative",
			testFunc: func(t *testing.T) {
				build := func() (*ValidationReport, *ValidationReport, *ValidationReport) {
					return New().AddReportItem(item("a", Info)),
						New().AddReportItem(item("b", Invalid)).AddReportItem(item("b2", Info)),
						New().AddReportItem(item("c", Info))
				}

				a1, b1, c1 := build()
				left := a1.Merge(b1).Merge(c1)

				a2, b2, c2 := build()
				right := a2.Merge(b2.Merge(c2))

				assert.Equal(t, checkNames(left), checkNames(right))
				assert.Equal(t, left.IsValid(), right.IsValid())
			},
		},
		{
			name: "merge nil is a no-op",
			testFunc: func(t *testing.T) {
				r := New().AddReportItem(item("a", Info))
				r.Merge(nil)
				assert.Equal(t, 1, r.Len())
			},
		},
		{
			name: "string contains certificate and error",
			testFunc: func(t *testing.T) {
				cert := &x509.Certificate{Subject: pkix.Name{CommonName: "leaf"}, SerialNumber: big.NewInt(42)}
				r := New().AddReportItem(NewCertificateReportItem(cert, "Certificate check.", "expired", errors.New("boom"), Invalid))
				s := r.String()
				assert.Contains(t, s, "INVALID")
				assert.Contains(t, s, "CN=leaf")
				assert.Contains(t, s, "serial=42")
				assert.Contains(t, s, "boom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestReportRendering(t *testing.T) {
	cert := &x509.Certificate{Subject: pkix.Name{CommonName: "leaf"}, SerialNumber: big.NewInt(7)}
	r := New().
		AddReportItem(NewCertificateReportItem(cert, "Certificate check.", "Certificate is trusted", nil, Info)).
		AddReportItem(NewReportItem("Revocation data check.", "no evidence", errors.New("timeout"), Invalid))

	t.Run("table", func(t *testing.T) {
		out := r.RenderTable()
		assert.Contains(t, out, "Status")
		assert.Contains(t, out, "leaf")
		assert.Contains(t, out, "no evidence: timeout")
		assert.Equal(t, "No findings to display", New().RenderTable())
	})

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(r)
		require.NoError(t, err)

		var decoded struct {
			Result string `json:"result"`
			Items  []struct {
				Check        string `json:"check"`
				Status       string `json:"status"`
				Error        string `json:"error"`
				SerialNumber string `json:"serialNumber"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "INVALID", decoded.Result)
		require.Len(t, decoded.Items, 2)
		assert.Equal(t, "INFO", decoded.Items[0].Status)
		assert.Equal(t, "7", decoded.Items[0].SerialNumber)
		assert.Equal(t, "timeout", decoded.Items[1].Error)
	})
}
