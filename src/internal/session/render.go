// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Report formats accepted by [Result.Render].
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatText  = "text"
)

// ErrUnknownFormat is returned for a format other than the Format constants.
var ErrUnknownFormat = errors.New("session: unknown output format")

// CheckFormat returns [ErrUnknownFormat] unless format is supported.
func CheckFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON, FormatText:
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

// Render writes the result to w. JSON carries the session metadata and the
// algorithm observations; text is the bare report; table adds a short
// header above the markdown findings table.
func (r *Result) Render(w io.Writer, format string) error {
	if err := CheckFormat(format); err != nil {
		return err
	}

	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	case FormatText:
		_, err = io.WriteString(w, r.Report.String())
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Session: %s\n", r.ID)
		fmt.Fprintf(&sb, "Subject: %s\n", r.Subject)
		fmt.Fprintf(&sb, "Date: %s (%s)\n", r.Date.Format(time.RFC3339), r.Context)
		fmt.Fprintf(&sb, "Result: %s\n\n", r.Result)
		sb.WriteString(r.Report.RenderTable())
		sb.WriteString("\n")
		_, err = io.WriteString(w, sb.String())
	}
	if err != nil {
		return fmt.Errorf("session: writing report: %w", err)
	}
	return nil
}
