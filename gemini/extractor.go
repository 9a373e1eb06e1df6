// Package gemini implements scholarmail.Extractor on top of Google Gemini.
// Responses are constrained to a JSON schema describing an array of search
// results, so the model output decodes straight into candidates.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/scholarmail"
	"google.golang.org/genai"
)

// DefaultModel is used when the request config names no model.
const DefaultModel = "gemini-2.5-flash"

var _ scholarmail.Extractor = (*Extractor)(nil)

// Extractor implements scholarmail.Extractor using Google Gemini.
type Extractor struct {
	client    *genai.Client
	converter scholarmail.Converter
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConverter converts the email body with c before it is sent to the
// model.
func WithConverter(c scholarmail.Converter) Option {
	return func(e *Extractor) {
		e.converter = c
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *genai.Client, opts ...Option) *Extractor {
	e := &Extractor{client: client}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract asks the model for the search results contained in req.HTML.
func (e *Extractor) Extract(ctx context.Context, req scholarmail.ExtractRequest) ([]scholarmail.Candidate, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return nil, scholarmail.Errorf(scholarmail.EINVALID, "email body required")
	}
	if req.Config.Format != "" && req.Config.Format != scholarmail.FormatJSON {
		return nil, scholarmail.Errorf(scholarmail.EINVALID, "unsupported output format %q", req.Config.Format)
	}

	prompt, err := BuildUserPrompt(e.converter, req.HTML)
	if err != nil {
		return nil, err
	}

	if req.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Config.Timeout)
		defer cancel()
	}

	model := req.Config.Model
	if model == "" {
		model = DefaultModel
	}

	result, err := e.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(req.Config, req.Instruction),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if result == nil {
		return nil, scholarmail.Errorf(scholarmail.EEXTRACT, "gemini returned nil result")
	}

	return scholarmail.ParseCandidates(result.Text())
}

// BuildConfig returns the GenerateContentConfig for an extraction call.
func BuildConfig(cfg scholarmail.ExtractorConfig, instruction string) *genai.GenerateContentConfig {
	if instruction == "" {
		instruction = scholarmail.DefaultInstruction
	}
	temp := cfg.Temperature
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	}
}

// ResponseSchema describes the array of search results the model must
// return. Only the title is required; the year is an integer so the model
// cannot return free text there.
func ResponseSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":               str("Title of the publication."),
				"original_url":        str("Link of the result as it appears in the email."),
				"authors":             str("Comma-separated author list."),
				"journal_name":        str("Journal, conference or publisher."),
				"year_of_publication": {Type: genai.TypeInteger, Description: "Four-digit year of publication."},
				"snippet":             str("Text snippet shown below the result."),
			},
			PropertyOrdering: []string{"title", "original_url", "authors", "journal_name", "year_of_publication", "snippet"},
			Required:         []string{"title"},
		},
	}
}

// BuildUserPrompt returns the user message carrying the email body,
// converted with conv when it is not nil.
func BuildUserPrompt(conv scholarmail.Converter, html string) (string, error) {
	if conv == nil {
		return html, nil
	}
	md, err := conv.Convert(html)
	if err != nil {
		return "", fmt.Errorf("convert email body: %w", err)
	}
	return md, nil
}
