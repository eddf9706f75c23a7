// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one verification batch over an uploaded document
// and reports progress as an ordered stream of events.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pdiddy/refcheck/internal/document"
	"github.com/pdiddy/refcheck/internal/extract"
	"github.com/pdiddy/refcheck/internal/logging"
	"github.com/pdiddy/refcheck/pkg/types"
)

// Status messages emitted between phases.
const (
	msgReading       = "Reading and parsing PDF..."
	msgMetadata      = "Extracting paper metadata..."
	msgNoReferences  = "No references section found."
	msgRescue        = "Checking for parsing errors and attempting rescue..."
	msgFormat        = "Analyzing reference formats..."
	msgComplete      = "Verification process complete."
	titlePreviewSize = 50
)

// Parser structures citations with the oracle.
type Parser interface {
	Parse(ctx context.Context, raw string) types.Reference
	Rescue(ctx context.Context, raw string) (string, bool)
	AnalyzeFormat(ctx context.Context, ref types.Reference) *string
	ExtractMetadata(ctx context.Context, firstPage string) *types.PaperMetadata
}

// Verifier decides a parsed reference's status.
type Verifier interface {
	Verify(ctx context.Context, ref types.Reference) (types.Reference, error)
}

// Orchestrator runs batches. It holds no per-run state, so one value can
// serve concurrent runs as long as its collaborators can.
type Orchestrator struct {
	// Model names the oracle model for the opening status message.
	Model     string
	Parser    Parser
	Verifier  Verifier
	Extractor document.Extractor
	Pacing    types.PacingConfig
	Logger    *log.Logger
}

// Run processes data and streams events on the returned channel. The
// channel is closed after an end or error event, or as soon as ctx is
// cancelled; no external call is started after cancellation.
func (o *Orchestrator) Run(ctx context.Context, data []byte) <-chan types.Event {
	out := make(chan types.Event)
	r := &run{
		Orchestrator: o,
		ctx:          ctx,
		out:          out,
		logger:       logging.OrDiscard(o.Logger).With("run", uuid.NewString()),
	}
	go func() {
		defer close(out)
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("run panicked", "panic", p)
				r.emit(types.ErrorEvent(fmt.Sprintf("An unexpected error occurred: %v", p)))
			}
		}()
		r.execute(data)
	}()
	return out
}

// ErrorStream returns a closed-after-one-event stream carrying msg. It
// reports setup failures that happen before a run can start.
func ErrorStream(msg string) <-chan types.Event {
	out := make(chan types.Event, 1)
	out <- types.ErrorEvent(msg)
	close(out)
	return out
}

// run is the state of one batch. Only its own goroutine touches it.
type run struct {
	*Orchestrator
	ctx     context.Context
	out     chan<- types.Event
	logger  *log.Logger
	refs    []types.Reference
	summary types.Summary
}

// emit sends ev unless the subscriber has gone away.
func (r *run) emit(ev types.Event) bool {
	select {
	case r.out <- ev:
		return true
	case <-r.ctx.Done():
		return false
	}
}

func (r *run) status(msg string) bool {
	return r.emit(types.StatusEvent(msg))
}

// pause waits d, returning false if the run was cancelled meanwhile.
func (r *run) pause(d time.Duration) bool {
	if d <= 0 {
		return r.ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-r.ctx.Done():
		return false
	}
}

func (r *run) execute(data []byte) {
	start := time.Now()
	if !r.status("Using model: "+r.Model) || !r.status(msgReading) {
		return
	}

	doc, err := r.Extractor.Extract(r.ctx, data)
	if err != nil {
		if r.ctx.Err() != nil {
			return
		}
		r.logger.Error("reading document", "err", err)
		r.emit(types.ErrorEvent(fmt.Sprintf("An unexpected error occurred: %v", err)))
		return
	}
	r.logger.Info("document read", "pages", len(doc.Pages), "bytes", len(data))

	if !r.status(msgMetadata) {
		return
	}
	if meta := r.Parser.ExtractMetadata(r.ctx, doc.FirstPage()); meta != nil && !meta.IsEmpty() {
		if !r.emit(types.MetadataEvent(*meta)) {
			return
		}
	}

	section := extract.FindReferencesSection(doc.FullText())
	if section == "" {
		r.logger.Info("no references section")
		if r.status(msgNoReferences) && r.emit(types.SummaryEvent(r.summary)) {
			r.emit(types.EndEvent(msgComplete))
		}
		return
	}

	citations := extract.SplitCitations(section)
	r.summary.Total = len(citations)
	if !r.parse(citations) || !r.rescue() || !r.analyzeFormats() || !r.verify() {
		r.logger.Info("run cancelled", "processed", r.summary.Processed(), "total", r.summary.Total)
		return
	}

	if r.summary.Total == 0 && !r.emit(types.SummaryEvent(r.summary)) {
		return
	}
	r.logger.Info("run complete",
		"total", r.summary.Total,
		"verified", r.summary.Verified,
		"not_found", r.summary.NotFound,
		"format_error", r.summary.FormatError,
		"elapsed", time.Since(start).Round(time.Millisecond))
	r.emit(types.EndEvent(msgComplete))
}

func (r *run) parse(citations []string) bool {
	n := len(citations)
	if !r.status(fmt.Sprintf("Found %d references. Starting parsing...", n)) {
		return false
	}
	r.refs = make([]types.Reference, 0, n)
	for i, raw := range citations {
		if !r.status(fmt.Sprintf("Parsing reference %d/%d...", i+1, n)) {
			return false
		}
		r.refs = append(r.refs, r.Parser.Parse(r.ctx, raw))
		if !r.pause(r.Pacing.ParseDelay) {
			return false
		}
	}
	return true
}

func (r *run) rescue() bool {
	if !r.status(msgRescue) {
		return false
	}
	for i := range r.refs {
		if r.refs[i].HasTitle() {
			continue
		}
		if r.ctx.Err() != nil {
			return false
		}
		if title, ok := r.Parser.Rescue(r.ctx, r.refs[i].RawText); ok {
			r.refs[i].Title = types.StringPtr(title)
			if !r.status(fmt.Sprintf("Rescued title for reference %d!", i+1)) {
				return false
			}
		}
	}
	return true
}

func (r *run) analyzeFormats() bool {
	if !r.status(msgFormat) {
		return false
	}
	for i := range r.refs {
		if r.ctx.Err() != nil {
			return false
		}
		r.refs[i].FormatSuggestion = r.Parser.AnalyzeFormat(r.ctx, r.refs[i])
		if !r.pause(r.Pacing.FormatDelay) {
			return false
		}
	}
	return true
}

func (r *run) verify() bool {
	n := len(r.refs)
	for i, ref := range r.refs {
		msg := fmt.Sprintf("Verifying reference %d/%d: %s...", i+1, n, preview(ref.TitleText()))
		if !r.status(msg) {
			return false
		}

		verified, err := r.Verifier.Verify(r.ctx, ref)
		if err != nil {
			if r.ctx.Err() != nil {
				return false
			}
			r.logger.Warn("verifying reference", "index", i+1, "err", err)
		}
		r.refs[i] = verified
		r.summary.Record(verified.Status)
		r.logger.Debug("reference verified", "index", i+1, "status", verified.Status.String(), "score", verified.VerificationScore)

		if !r.emit(types.ReferenceEvent(verified)) || !r.emit(types.SummaryEvent(r.summary)) {
			return false
		}
		if !r.pause(r.Pacing.VerifyDelay) {
			return false
		}
	}
	return true
}

// preview returns the first titlePreviewSize runes of title.
func preview(title string) string {
	if runes := []rune(title); len(runes) > titlePreviewSize {
		return string(runes[:titlePreviewSize])
	}
	return title
}
