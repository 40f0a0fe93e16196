// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/validation/events"
)

func newAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms NAME_OR_OID...",
		Short: "Report the AdES and ETSI TS 119 312 standing of signature algorithms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
			)
			table.Header([]string{"Algorithm", "AdES", "ETSI TS 119 312"})

			var rows [][]string
			for _, arg := range args {
				ev := events.NewAlgorithmQuery(arg)
				rows = append(rows, []string{arg, yesNo(ev.IsAllowedAccordingToAdES()), yesNo(ev.IsAllowedAccordingToEtsiTs119312())})
			}
			table.Bulk(rows)
			table.Render()
			return nil
		},
	}
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
