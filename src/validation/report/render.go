// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package report

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderTable renders the report items as a markdown table.
//
// Each row carries the item's position, status, check name, the subject of
// the certificate the finding is about (if any), and the message including
// any attached error.
//
// Returns:
//   - string: Markdown table, or a short notice for an empty report
func (r *ValidationReport) RenderTable() string {
	if len(r.items) == 0 {
		return "No findings to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	headers := []string{"#", "Status", "Check", "Certificate", "Message"}
	table.Header(headers)

	var rows [][]string
	for i, item := range r.items {
		subject := "-"
		if item.Certificate != nil {
			subject = item.Certificate.Subject.CommonName
			if subject == "" {
				subject = item.Certificate.Subject.String()
			}
		}
		msg := item.Message
		if item.Err != nil {
			msg += ": " + item.Err.Error()
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			item.Status.String(),
			item.CheckName,
			subject,
			msg,
		})
	}

	table.Bulk(rows)
	table.Render()

	return buf.String()
}

type jsonItem struct {
	Check        string           `json:"check"`
	Status       ReportItemStatus `json:"status"`
	Message      string           `json:"message"`
	Error        string           `json:"error,omitempty"`
	Subject      string           `json:"subject,omitempty"`
	SerialNumber string           `json:"serialNumber,omitempty"`
}

type jsonReport struct {
	Result ValidationResult `json:"result"`
	Items  []jsonItem       `json:"items"`
}

// MarshalJSON encodes the verdict and the ordered item list.
func (r *ValidationReport) MarshalJSON() ([]byte, error) {
	out := jsonReport{Result: r.ValidationResult(), Items: make([]jsonItem, 0, len(r.items))}
	for _, item := range r.items {
		ji := jsonItem{
			Check:   item.CheckName,
			Status:  item.Status,
			Message: item.Message,
		}
		if item.Err != nil {
			ji.Error = item.Err.Error()
		}
		if item.Certificate != nil {
			ji.Subject = item.Certificate.Subject.String()
			ji.SerialNumber = item.Certificate.SerialNumber.String()
		}
		out.Items = append(out.Items, ji)
	}
	return json.Marshal(out)
}
