// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/refcheck/internal/document"
	"github.com/pdiddy/refcheck/internal/extract"
	"github.com/pdiddy/refcheck/internal/logging"
	"github.com/pdiddy/refcheck/internal/oracle"
	"github.com/pdiddy/refcheck/internal/search"
	"github.com/pdiddy/refcheck/internal/verify"
	"github.com/pdiddy/refcheck/pkg/types"
)

// OracleFactory builds the oracle for a model name. *oracle.Registry
// satisfies it.
type OracleFactory interface {
	New(model string, cfg types.OracleConfig) (oracle.Oracle, error)
}

// Service starts runs for a requested model. The lookup side (resolver,
// backends, extractor) is shared by every run; the oracle, parser, and
// engine are built per run.
type Service struct {
	Oracles   OracleFactory
	Oracle    types.OracleConfig
	Resolver  verify.Resolver
	Backends  []search.Backend
	Extractor document.Extractor
	Pacing    types.PacingConfig
	// Threshold overrides the search match threshold when positive.
	Threshold float64
	Logger    *log.Logger
}

// Start begins a run over data with model, or the configured default when
// model is empty. An unknown or unconfigured model yields a stream holding
// a single error event.
func (s *Service) Start(ctx context.Context, model string, data []byte) <-chan types.Event {
	logger := logging.OrDiscard(s.Logger)
	if model == "" {
		model = s.Oracle.DefaultModel
	}
	if model == "" {
		model = types.DefaultModel
	}

	o, err := s.Oracles.New(model, s.Oracle)
	if err != nil {
		logger.Warn("cannot start run", "model", model, "err", err)
		return ErrorStream(fmt.Sprintf("An unexpected error occurred: %v", err))
	}

	parser := extract.NewParser(o, logger)
	engine := verify.NewEngine(s.Resolver, s.Backends, parser, logger)
	if s.Threshold > 0 {
		engine.Threshold = s.Threshold
	}

	orch := &Orchestrator{
		Model:     model,
		Parser:    parser,
		Verifier:  engine,
		Extractor: s.Extractor,
		Pacing:    s.Pacing,
		Logger:    logger,
	}
	return orch.Run(ctx, data)
}
