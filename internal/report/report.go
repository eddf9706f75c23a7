// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report gathers a finished run's events into a Report and renders
// it as a table, JSON, YAML, or CSL-YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refcheck/pkg/types"
)

// ErrRunFailed is returned by Collect when the stream ended with an error event.
var ErrRunFailed = errors.New("verification run failed")

// ErrIncomplete is returned by Collect when the stream closed without a
// terminal event.
var ErrIncomplete = errors.New("verification stream ended early")

// Format names an output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSL   Format = "csl"
)

// Formats lists the renderings Write supports.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatCSL}

// Report is the outcome of one run.
type Report struct {
	Model      string               `json:"model" yaml:"model"`
	Metadata   *types.PaperMetadata `json:"metadata" yaml:"metadata"`
	References []types.Reference    `json:"references" yaml:"references"`
	Summary    types.Summary        `json:"summary" yaml:"summary"`
}

// Collect drains events into a Report. Each status message is passed to
// onStatus when it is non-nil. An error event yields ErrRunFailed wrapping
// its message; the partial report is still returned.
func Collect(events <-chan types.Event, onStatus func(string)) (Report, error) {
	var r Report
	for ev := range events {
		switch ev.Type {
		case types.EventStatus:
			msg := ev.MessageText()
			if model, ok := strings.CutPrefix(msg, "Using model: "); ok {
				r.Model = model
			}
			if onStatus != nil {
				onStatus(msg)
			}
		case types.EventMetadata:
			if m, ok := ev.Payload.(types.PaperMetadata); ok {
				r.Metadata = &m
			}
		case types.EventReference:
			if ref, ok := ev.Payload.(types.Reference); ok {
				r.References = append(r.References, ref)
			}
		case types.EventSummary:
			if s, ok := ev.Payload.(types.Summary); ok {
				r.Summary = s
			}
		case types.EventError:
			return r, fmt.Errorf("%w: %s", ErrRunFailed, ev.MessageText())
		case types.EventEnd:
			return r, nil
		}
	}
	return r, ErrIncomplete
}

// Write renders r to w in format f.
func Write(w io.Writer, r Report, f Format) error {
	switch f {
	case FormatTable, "":
		FormatText(r, w)
		return nil
	case FormatJSON:
		return WriteJSON(r, w)
	case FormatYAML:
		return WriteYAML(r, w)
	case FormatCSL:
		return WriteCSL(r.References, w)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// WriteJSON writes r as indented JSON.
func WriteJSON(r Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes r as YAML.
func WriteYAML(r Report, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(r)
}
