// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refcheck/internal/acquire"
	"github.com/pdiddy/refcheck/internal/report"
	"github.com/pdiddy/refcheck/pkg/types"
)

// formatEvents prints the raw event stream as JSON lines.
const formatEvents = "events"

var verifyCmd = &cobra.Command{
	Use:   "verify <paper>",
	Short: "Verify the references of one PDF",
	Long: `Verify runs the full pipeline over one paper and prints the result. The
paper is a local PDF path, an arXiv ID, a DOI (the open-access copy listed
by OpenAlex is preferred), or a PDF URL. Progress messages go to stderr.

Formats: table (default), json, yaml, csl (CSL-YAML of the parsed
references), or events (one JSON event per line, as the service streams
them).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")
		format, _ := cmd.Flags().GetString("format")
		if format != formatEvents && !slices.Contains(report.Formats, report.Format(format)) {
			return fmt.Errorf("unknown format %q", format)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		fetcher := acquire.NewFetcher(a.cfg.Lookup, a.cfg.Server.MaxUploadBytes, a.logger)
		paper, err := fetcher.Fetch(ctx, args[0])
		if err != nil {
			return err
		}

		events := a.service.Start(ctx, model, paper.Data)

		if format == formatEvents {
			return printEvents(events)
		}

		r, err := report.Collect(events, func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		})
		if err != nil {
			return err
		}
		return report.Write(os.Stdout, r, report.Format(format))
	},
}

func printEvents(events <-chan types.Event) error {
	enc := json.NewEncoder(os.Stdout)
	var failed string
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
		if ev.Type == types.EventError {
			failed = ev.MessageText()
		}
	}
	if failed != "" {
		return fmt.Errorf("%w: %s", report.ErrRunFailed, failed)
	}
	return nil
}

func init() {
	verifyCmd.Flags().String("model", "", "language model to use (default from config)")
	verifyCmd.Flags().String("format", string(report.FormatTable), "output format: table, json, yaml, csl, events")

	rootCmd.AddCommand(verifyCmd)
}
