// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns document text into structured references: it
// locates the references section, splits it into raw citations, and uses
// the oracle to parse, rescue, and annotate each one.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/refcheck/internal/logging"
	"github.com/pdiddy/refcheck/internal/oracle"
	"github.com/pdiddy/refcheck/pkg/types"
)

// ErrMalformedResponse reports an oracle reply with no decodable JSON object.
var ErrMalformedResponse = errors.New("malformed oracle response")

// metadataTextLimit caps how much first-page text goes into the metadata prompt.
const metadataTextLimit = 4000

// Parser runs the citation prompts against an Oracle. Oracle failures
// never escape: each method degrades to "no answer".
type Parser struct {
	oracle oracle.Oracle
	logger *log.Logger
}

// NewParser returns a Parser. A nil logger discards.
func NewParser(o oracle.Oracle, logger *log.Logger) *Parser {
	return &Parser{oracle: o, logger: logging.OrDiscard(logger)}
}

// parsedCitation is the JSON object the parse prompt asks for.
type parsedCitation struct {
	Authors flexStrings `json:"authors"`
	Year    flexYear    `json:"year"`
	Title   flexText    `json:"title"`
	Source  flexText    `json:"source"`
}

// Parse structures one raw citation. On any failure the reference gets
// status FormatError and a title starting with types.ParseErrorPrefix.
func (p *Parser) Parse(ctx context.Context, raw string) types.Reference {
	ref := types.NewReference(raw)

	prompt, err := renderPrompt(parsePromptTmpl, struct{ Citation string }{raw})
	if err != nil {
		return parseFailure(ref, err)
	}

	reply, err := p.oracle.Complete(ctx, prompt)
	if err != nil {
		p.logger.Warn("parse: oracle call failed", "err", err)
		return parseFailure(ref, err)
	}

	var parsed parsedCitation
	if err := DecodeJSONObject(reply, &parsed); err != nil {
		p.logger.Warn("parse: malformed reply", "err", err)
		return parseFailure(ref, err)
	}

	ref.Authors = parsed.Authors
	ref.Year = parsed.Year.ptr()
	ref.Title = parsed.Title.ptr()
	ref.Source = parsed.Source.ptr()
	return ref
}

func parseFailure(ref types.Reference, err error) types.Reference {
	ref.Status = types.FormatError()
	ref.Title = types.StringPtr(fmt.Sprintf("%s: %v", types.ParseErrorPrefix, err))
	return ref
}

// Rescue asks for the title alone. It reports false when the oracle fails
// or returns nothing.
func (p *Parser) Rescue(ctx context.Context, raw string) (string, bool) {
	prompt, err := renderPrompt(rescuePromptTmpl, struct{ Citation string }{raw})
	if err != nil {
		return "", false
	}
	reply, err := p.oracle.Complete(ctx, prompt)
	if err != nil {
		p.logger.Warn("rescue: oracle call failed", "err", err)
		return "", false
	}
	title := strings.TrimSpace(reply)
	return title, title != ""
}

// AnalyzeFormat returns an advisory suggestion about missing or
// abbreviated fields, or nil when the oracle finds none or fails.
func (p *Parser) AnalyzeFormat(ctx context.Context, ref types.Reference) *string {
	year := "null"
	if ref.Year != nil {
		year = strconv.Itoa(*ref.Year)
	}
	data := struct{ Authors, Year, Title, Source string }{
		Authors: jsonText(ref.Authors),
		Year:    year,
		Title:   jsonText(ref.Title),
		Source:  jsonText(ref.Source),
	}
	prompt, err := renderPrompt(formatPromptTmpl, data)
	if err != nil {
		return nil
	}

	reply, err := p.oracle.Complete(ctx, prompt)
	if err != nil {
		p.logger.Warn("format: oracle call failed", "err", err)
		return nil
	}
	suggestion := strings.TrimSpace(reply)
	if suggestion == "" || strings.Contains(strings.ToLower(suggestion), "none") {
		return nil
	}
	return &suggestion
}

// Classify asks the oracle why ref could not be verified. It returns the
// reason mapped onto the closed set and the oracle's raw reply.
func (p *Parser) Classify(ctx context.Context, ref types.Reference) (types.FailureReason, string, error) {
	reasons := make([]string, len(types.FailureReasons))
	for i, r := range types.FailureReasons {
		reasons[i] = string(r)
	}
	prompt, err := renderPrompt(classifyPromptTmpl, struct {
		Reasons         []string
		Citation, Title string
	}{reasons, ref.RawText, ref.TitleText()})
	if err != nil {
		return types.ReasonNotFound, "", fmt.Errorf("rendering classify prompt: %w", err)
	}

	reply, err := p.oracle.Complete(ctx, prompt)
	if err != nil {
		return types.ReasonNotFound, "", fmt.Errorf("classifying reference: %w", err)
	}
	reply = strings.TrimSpace(reply)
	return types.ParseFailureReason(reply), reply, nil
}

// paperMetadata is the JSON object the metadata prompt asks for.
type paperMetadata struct {
	Title       flexText    `json:"title"`
	Authors     flexStrings `json:"authors"`
	Year        flexYear    `json:"year"`
	Affiliation flexText    `json:"affiliation"`
}

// ExtractMetadata asks for the paper's own title, authors, year, and
// affiliation from its first page. It returns nil on any failure.
func (p *Parser) ExtractMetadata(ctx context.Context, firstPage string) *types.PaperMetadata {
	text := firstPage
	if r := []rune(text); len(r) > metadataTextLimit {
		text = string(r[:metadataTextLimit])
	}

	prompt, err := renderPrompt(metadataPromptTmpl, struct{ Text string }{text})
	if err != nil {
		return nil
	}
	reply, err := p.oracle.Complete(ctx, prompt)
	if err != nil {
		p.logger.Warn("metadata: oracle call failed", "err", err)
		return nil
	}

	var parsed paperMetadata
	if err := DecodeJSONObject(reply, &parsed); err != nil {
		p.logger.Warn("metadata: malformed reply", "err", err)
		return nil
	}
	return &types.PaperMetadata{
		Title:       parsed.Title.ptr(),
		Authors:     parsed.Authors,
		Year:        parsed.Year.ptr(),
		Affiliation: parsed.Affiliation.ptr(),
	}
}

// DecodeJSONObject decodes the span from the first "{" to the last "}" of
// text into v. Replies holding several objects are not disambiguated; the
// combined span usually fails to decode and is reported as malformed.
func DecodeJSONObject(text string, v any) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return fmt.Errorf("%w: no JSON object found in the AI response", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// flexStrings accepts a JSON list, a single string, or null.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*f = nil
	case string:
		if s := strings.TrimSpace(v); s != "" {
			*f = flexStrings{s}
		}
	case []any:
		out := make(flexStrings, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		*f = out
	default:
		return fmt.Errorf("authors: unexpected %T", raw)
	}
	return nil
}

// flexText accepts a string, a list of strings (joined with "; "), or null.
// Blank values count as absent.
type flexText struct {
	value string
	set   bool
}

func (f *flexText) UnmarshalJSON(data []byte) error {
	var list flexStrings
	if err := list.UnmarshalJSON(data); err != nil {
		var n json.Number
		if json.Unmarshal(data, &n) == nil {
			*f = flexText{value: n.String(), set: true}
			return nil
		}
		return err
	}
	if len(list) == 0 {
		*f = flexText{}
		return nil
	}
	*f = flexText{value: strings.Join(list, "; "), set: true}
	return nil
}

func (f flexText) ptr() *string {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

// yearRe finds a plausible four-digit year inside a string.
var yearRe = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2})\b`)

// flexYear accepts a number, a string containing a year, or null. Values
// with no recognizable year are treated as absent.
type flexYear struct {
	value int
	set   bool
}

func (f *flexYear) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = flexYear{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		if n > 0 {
			*f = flexYear{value: int(n), set: true}
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if y, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && y > 0 {
		*f = flexYear{value: y, set: true}
		return nil
	}
	if m := yearRe.FindString(s); m != "" {
		y, _ := strconv.Atoi(m)
		*f = flexYear{value: y, set: true}
	}
	return nil
}

func (f flexYear) ptr() *int {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}
