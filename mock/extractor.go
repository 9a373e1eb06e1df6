package mock

import (
	"context"

	"github.com/fwojciec/scholarmail"
)

var _ scholarmail.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of scholarmail.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, req scholarmail.ExtractRequest) ([]scholarmail.Candidate, error)
}

func (e *Extractor) Extract(ctx context.Context, req scholarmail.ExtractRequest) ([]scholarmail.Candidate, error) {
	return e.ExtractFn(ctx, req)
}

var _ scholarmail.Validator = (*Validator)(nil)

// Validator is a mock implementation of scholarmail.Validator.
type Validator struct {
	ValidateFn func(emailID, html string) *scholarmail.FormatError
}

func (v *Validator) Validate(emailID, html string) *scholarmail.FormatError {
	return v.ValidateFn(emailID, html)
}

var _ scholarmail.MediaClassifier = (*MediaClassifier)(nil)

// MediaClassifier is a mock implementation of scholarmail.MediaClassifier.
type MediaClassifier struct {
	ClassifyFn func(c scholarmail.Candidate) string
}

func (m *MediaClassifier) Classify(c scholarmail.Candidate) string {
	return m.ClassifyFn(c)
}

var _ scholarmail.Limiter = (*Limiter)(nil)

// Limiter is a mock implementation of scholarmail.Limiter.
type Limiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitFn(ctx)
}
