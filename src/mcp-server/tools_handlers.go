// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/session"
	x509certs "github.com/H0llyW00dzZ/x509-trust-validator/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/trust"
	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/vcontext"
)

// readInput reads a file path, falling back to base64 data.
func readInput(input string) ([]byte, error) {
	input = strings.TrimSpace(input)
	if data, err := os.ReadFile(input); err == nil {
		return data, nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(input); err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("not a valid file path or base64 data")
}

// readInputs splits a comma-separated list and reads every element.
func readInputs(list string) ([][]byte, error) {
	var out [][]byte
	for i, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		data, err := readInput(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// readCertificates decodes every certificate in a comma-separated list.
func readCertificates(decoder *x509certs.Decoder, list string) ([]*x509.Certificate, error) {
	inputs, err := readInputs(list)
	if err != nil {
		return nil, err
	}
	var out []*x509.Certificate
	for i, data := range inputs {
		certs, err := decoder.DecodeMultiple(data)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		out = append(out, certs...)
	}
	return out, nil
}

// handleValidateCertificateChain runs one validation session.
//
// Parameters:
//   - ctx: Context for cancellation; bounded by the configured timeout
//   - request: MCP tool call request with the certificate, evidence and options
//   - env: Shared trust material, policy, CRL cache and metrics
//
// Returns:
//   - The rendered report. An INVALID verdict is a normal result, not a tool error.
//   - A tool error result for unusable input
func handleValidateCertificateChain(ctx context.Context, request mcp.CallToolRequest, env *Environment) (*mcp.CallToolResult, error) {
	certInput, err := request.RequireString("certificate")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("certificate parameter required: %v", err)), nil
	}

	format := request.GetString("format", env.Config.Defaults.Format)
	if format == "" {
		format = env.Config.Defaults.Format
	}
	if err := session.CheckFormat(format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	decoder := x509certs.New()
	certData, err := readInput(certInput)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read certificate: %v", err)), nil
	}
	certs, err := decoder.DecodeMultiple(certData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode certificate: %v", err)), nil
	}

	req := session.Request{
		Certificate: certs[0],
		Trusted:     make(map[trust.Role][]*x509.Certificate, len(env.Trusted)+1),
		Known:       append(append([]*x509.Certificate(nil), env.Known...), certs[1:]...),
		Historical:  request.GetBool("historical", false),
		Properties:  env.Properties,
		Online:      request.GetBool("online", env.Config.Defaults.Online),
		HTTP:        env.HTTP,
		CRLCache:    env.CRLCache,
		Handlers:    []events.Handler{env.Metrics},
		Logger:      env.Logger,
	}
	for role, certs := range env.Trusted {
		req.Trusted[role] = certs
	}

	if list := request.GetString("trusted", ""); list != "" {
		extra, err := readCertificates(decoder, list)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read trusted certificates: %v", err)), nil
		}
		req.Trusted[trust.General] = append(append([]*x509.Certificate(nil), req.Trusted[trust.General]...), extra...)
	}
	if list := request.GetString("known", ""); list != "" {
		extra, err := readCertificates(decoder, list)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read known certificates: %v", err)), nil
		}
		req.Known = append(req.Known, extra...)
	}
	if list := request.GetString("crls", ""); list != "" {
		if req.CRLs, err = readInputs(list); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read CRLs: %v", err)), nil
		}
	}
	if list := request.GetString("ocsp_responses", ""); list != "" {
		if req.OCSPResponses, err = readInputs(list); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read OCSP responses: %v", err)), nil
		}
	}
	if date := request.GetString("date", ""); date != "" {
		if req.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date: %v", err)), nil
		}
	}
	if req.Source, err = vcontext.ParseCertificateSource(request.GetString("source", vcontext.SignerCert.String())); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(env.Config.Defaults.Timeout)*time.Second)
	defer cancel()

	res, err := session.Run(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation failed to start: %v", err)), nil
	}
	env.Logger.Printf("session %s: %s is %s", res.ID, res.Subject, res.Result)

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()
	if err := res.Render(buf, format); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// algorithmStanding is one row of check_algorithm_compliance.
type algorithmStanding struct {
	Algorithm    string `json:"algorithm"`
	AdES         bool   `json:"ades"`
	EtsiTs119312 bool   `json:"etsiTs119312"`
	Profile      *bool  `json:"allowedByProfile,omitempty"`
}

// handleCheckAlgorithmCompliance looks up each algorithm in the built-in
// compliance profiles and, when requested, one more named profile.
func handleCheckAlgorithmCompliance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := request.RequireString("algorithms")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("algorithms parameter required: %v", err)), nil
	}

	profile, err := events.ProfileByName(request.GetString("profile", "none"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var rows []algorithmStanding
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ev := events.NewAlgorithmQuery(name)
		row := algorithmStanding{
			Algorithm:    name,
			AdES:         ev.IsAllowedAccordingToAdES(),
			EtsiTs119312: ev.IsAllowedAccordingToEtsiTs119312(),
		}
		if profile != nil {
			allowed := profile.Allows(ev.Name, ev.OID)
			row.Profile = &allowed
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return mcp.NewToolResultError("no algorithms given"), nil
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compliance result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
