// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refcheck/internal/document"
	"github.com/pdiddy/refcheck/internal/oracle"
	"github.com/pdiddy/refcheck/internal/search"
	"github.com/pdiddy/refcheck/pkg/types"
)

// scriptedOracle answers by prompt kind.
func scriptedOracle() oracle.Oracle {
	return oracle.Func(func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "first page"):
			return `{"title": "A Paper About Things", "authors": ["Jane Doe"], "year": 2024, "affiliation": null}`, nil
		case strings.Contains(prompt, "Parse the raw academic citation"):
			if strings.Contains(prompt, "Title One") {
				return `{"authors": ["A. Author"], "year": 2020, "title": "Title One", "source": "Journal of Things"}`, nil
			}
			return "I could not parse that.", nil
		case strings.Contains(prompt, "Previous parsing failed"):
			return "", errors.New("rate limited")
		case strings.Contains(prompt, "could not be found"):
			return "Potential Fabrication", nil
		default:
			return "None", nil
		}
	})
}

type fakeFactory struct {
	o     oracle.Oracle
	err   error
	model string
}

func (f *fakeFactory) New(model string, _ types.OracleConfig) (oracle.Oracle, error) {
	f.model = model
	return f.o, f.err
}

type titleBackend struct{}

func (titleBackend) Name() string    { return "CrossRef" }
func (titleBackend) Weight() float64 { return 95 }
func (titleBackend) Lookup(_ context.Context, q search.Query) (*search.Candidate, error) {
	if q.Title == "Title One" {
		return &search.Candidate{Title: "Title One", Venue: "Journal of Things", DOI: "10.1000/one"}, nil
	}
	return nil, nil
}

func TestService_Start(t *testing.T) {
	f := &fakeFactory{o: scriptedOracle()}
	s := &Service{
		Oracles:   f,
		Oracle:    types.DefaultConfig().Oracle,
		Backends:  []search.Backend{titleBackend{}},
		Extractor: fakeExtractor{doc: document.Document{Pages: []string{paperText}}},
	}

	events := collect(t, s.Start(context.Background(), "", nil))
	assert.Equal(t, types.DefaultModel, f.model)
	assert.Equal(t, "Using model: "+types.DefaultModel, events[0].MessageText())
	assert.Equal(t, 1, countType(events, types.EventMetadata))

	var refs []types.Reference
	for _, ev := range events {
		if ev.Type == types.EventReference {
			refs = append(refs, ev.Payload.(types.Reference))
		}
	}
	require.Len(t, refs, 2)

	assert.True(t, refs[0].Status.IsVerified())
	assert.Equal(t, "CrossRef: Journal of Things", refs[0].SourceText())
	assert.Equal(t, 95.0, refs[0].VerificationScore)
	assert.Nil(t, refs[0].FormatSuggestion)

	assert.True(t, refs[1].Status.IsFormatError())
	assert.True(t, refs[1].HasParseError())
	assert.Equal(t, 0.0, refs[1].VerificationScore)

	last := events[len(events)-1]
	assert.Equal(t, types.EventEnd, last.Type)
}

func TestService_UnsupportedModel(t *testing.T) {
	s := &Service{Oracles: oracle.NewRegistry(nil)}

	events := collect(t, s.Start(context.Background(), "gpt-imaginary", nil))
	require.Len(t, events, 1)
	assert.Equal(t, types.EventError, events[0].Type)
	assert.Contains(t, events[0].MessageText(), "unsupported model")
}

func TestService_UnconfiguredModel(t *testing.T) {
	s := &Service{Oracles: oracle.NewRegistry(nil), Oracle: types.OracleConfig{}}

	events := collect(t, s.Start(context.Background(), "deepseek-chat", nil))
	require.Len(t, events, 1)
	assert.Contains(t, events[0].MessageText(), "DEEPSEEK_API_KEY")
}
