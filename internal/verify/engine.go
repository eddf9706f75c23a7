// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify decides whether a parsed reference describes a real
// publication. Stages run in a fixed order and the first that confirms the
// reference commits it; a reference nothing confirms is classified by the
// oracle.
package verify

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/refcheck/internal/doi"
	"github.com/pdiddy/refcheck/internal/logging"
	"github.com/pdiddy/refcheck/internal/search"
	"github.com/pdiddy/refcheck/pkg/types"
)

// Scores committed by the non-search stages.
const (
	DOIScore     = 100
	KeywordScore = 85
)

// DOIVerifiedSource is the source label of a reference confirmed by DOI.
const DOIVerifiedSource = "DOI Verified"

// notAvailable fills verified_doi when a search match carries no DOI.
const notAvailable = "N/A"

// Resolver confirms a DOI.
type Resolver interface {
	Resolve(ctx context.Context, doi string) (doi.Resolution, error)
}

// Classifier explains why a reference could not be verified.
type Classifier interface {
	Classify(ctx context.Context, ref types.Reference) (types.FailureReason, string, error)
}

// keywordRule commits a reference whose raw text or parsed source names a
// known venue type.
type keywordRule struct {
	words  []string
	source string
}

var keywordRules = []keywordRule{
	{words: []string{"arxiv"}, source: "arXiv"},
	{words: []string{"ieee"}, source: "IEEE Publication"},
	{words: []string{"proceedings", "conference"}, source: "Conference Paper"},
}

// Engine runs the verification stages. Any nil collaborator skips its stage.
type Engine struct {
	Resolver   Resolver
	Backends   []search.Backend
	Classifier Classifier
	// Threshold is the title similarity a search candidate must exceed.
	Threshold float64
	Logger    *log.Logger
}

// NewEngine returns an Engine with the default match threshold.
func NewEngine(resolver Resolver, backends []search.Backend, classifier Classifier, logger *log.Logger) *Engine {
	return &Engine{
		Resolver:   resolver,
		Backends:   backends,
		Classifier: classifier,
		Threshold:  types.DefaultMatchThreshold,
		Logger:     logger,
	}
}

// Verify returns ref with its status, score, and source decided. Lookup
// and oracle failures only skip their stage. When ctx is cancelled the
// remaining stages are abandoned and ctx.Err() is returned alongside the
// record in whatever state it had reached.
func (e *Engine) Verify(ctx context.Context, ref types.Reference) (types.Reference, error) {
	logger := logging.OrDiscard(e.Logger)

	if ref.HasParseError() {
		ref.Status = types.FormatError()
		ref.VerificationScore = 0
		return ref, nil
	}

	if out, ok := e.verifyDOI(ctx, logger, ref); ok {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return ref, err
	}

	if out, ok := verifyKeywords(ref); ok {
		return out, nil
	}

	if ref.HasTitle() {
		if out, ok := e.verifySearch(ctx, logger, ref); ok {
			return out, nil
		}
		if err := ctx.Err(); err != nil {
			return ref, err
		}
	}

	return e.classify(ctx, logger, ref)
}

func (e *Engine) verifyDOI(ctx context.Context, logger *log.Logger, ref types.Reference) (types.Reference, bool) {
	if e.Resolver == nil {
		return ref, false
	}
	id, ok := doi.Find(ref.RawText)
	if !ok {
		return ref, false
	}
	res, err := e.Resolver.Resolve(ctx, id)
	if err != nil {
		logger.Warn("doi lookup failed", "doi", id, "err", err)
		return ref, false
	}

	ref.Status = types.Verified()
	ref.Source = types.StringPtr(DOIVerifiedSource)
	ref.VerifiedDOI = types.StringPtr(res.DOI)
	ref.VerificationScore = DOIScore
	if res.URL != "" {
		ref.SourceURL = types.StringPtr(res.URL)
	}
	return ref, true
}

func verifyKeywords(ref types.Reference) (types.Reference, bool) {
	raw := strings.ToLower(ref.RawText)
	source := strings.ToLower(ref.SourceText())
	for _, rule := range keywordRules {
		for _, w := range rule.words {
			if strings.Contains(raw, w) || strings.Contains(source, w) {
				ref.Status = types.Verified()
				ref.Source = types.StringPtr(rule.source)
				ref.VerificationScore = KeywordScore
				return ref, true
			}
		}
	}
	return ref, false
}

func (e *Engine) verifySearch(ctx context.Context, logger *log.Logger, ref types.Reference) (types.Reference, bool) {
	q := search.Query{Title: ref.TitleText(), Authors: ref.Authors}
	for _, b := range e.Backends {
		if ctx.Err() != nil {
			return ref, false
		}
		cand, err := b.Lookup(ctx, q)
		if err != nil {
			logger.Warn("search failed", "provider", b.Name(), "title", q.Title, "err", err)
			continue
		}
		if cand == nil {
			continue
		}
		score := TokenSetRatio(cand.Title, q.Title)
		if float64(score) <= e.Threshold {
			logger.Debug("search candidate rejected", "provider", b.Name(), "candidate", cand.Title, "score", score)
			continue
		}

		id := cand.DOI
		if id == "" {
			id = notAvailable
		}
		ref.Status = types.Verified()
		ref.Source = types.StringPtr(b.Name() + ": " + cand.Venue)
		ref.VerifiedDOI = types.StringPtr(id)
		ref.VerificationScore = b.Weight()
		if cand.URL != "" {
			ref.SourceURL = types.StringPtr(cand.URL)
		}
		return ref, true
	}
	return ref, false
}

func (e *Engine) classify(ctx context.Context, logger *log.Logger, ref types.Reference) (types.Reference, error) {
	ref.Status = types.NotFound(types.ReasonNotFound)
	ref.VerificationScore = 0
	if e.Classifier == nil {
		return ref, nil
	}

	reason, text, err := e.Classifier.Classify(ctx, ref)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ref, ctxErr
		}
		logger.Warn("classification failed", "title", ref.TitleText(), "err", err)
		return ref, nil
	}
	ref.Status = types.NotFound(reason)
	if text != "" {
		ref.FailureReason = types.StringPtr(text)
	}
	return ref, nil
}
