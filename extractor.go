package scholarmail

import (
	"context"
	"time"
)

// DefaultInstruction is the fixed extraction instruction sent to
// language-model backends.
const DefaultInstruction = "You are an AI assistant specialized in processing Google Scholar search engine result pages and returning structured JSON data. " +
	"Always provide your response as valid, well-formatted JSON without any additional text or comments. " +
	"Focus on extracting and organizing the most relevant information from Google Scholar search engine result pages, " +
	"including title, original url, authors, name of journal, year of publication, snippet. " +
	"Return a JSON array of objects with the keys title, original_url, authors, journal_name, year_of_publication and snippet."

// FormatJSON requests JSON output from a backend.
const FormatJSON = "json"

// ExtractorConfig holds the generation settings of an extraction backend.
// It is passed explicitly with every request so several configurations can
// coexist in one process.
type ExtractorConfig struct {
	// Model identifies the backend model, e.g. "gemini-2.5-flash".
	Model string

	// Temperature is pinned to 0 for the most deterministic output.
	Temperature float32

	// Format is the output-format hint; only FormatJSON is supported.
	Format string

	// Endpoint is the backend service URL. Empty means the backend default.
	Endpoint string

	// Timeout bounds a single extraction call. Zero means no timeout
	// beyond the caller's context.
	Timeout time.Duration
}

// ExtractRequest is the input to a structured extraction.
type ExtractRequest struct {
	HTML        string
	Instruction string
	Config      ExtractorConfig
}

// Extractor turns a sanitized digest document into candidate citation records.
//
// The output is best-effort: missing fields, non-numeric years and an empty
// result are all valid. Errors mean the backend failed (unreachable, timed
// out or returned an unparseable response).
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) ([]Candidate, error)
}

// Validator checks that a sanitized email body has the shape of a Google
// Scholar alert before it is sent for extraction. It returns nil when the
// body looks valid.
type Validator interface {
	Validate(emailID, html string) *FormatError
}

// MediaClassifier assigns a media type to candidates that are not regular
// articles. It returns an empty string for articles.
type MediaClassifier interface {
	Classify(c Candidate) string
}

// Limiter throttles calls to an extraction backend.
// *rate.Limiter from golang.org/x/time/rate satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}
