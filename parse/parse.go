// Package parse provides the extraction pipeline. It selects unprocessed
// digest emails, sanitizes and validates their bodies, delegates extraction
// to a structured extractor, stores the resulting search results and moves
// every email it picks up into a terminal state.
package parse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/scholarmail"
	"golang.org/x/sync/errgroup"
)

// Log messages written onto emails when they reach a terminal state.
const (
	EmailParsedMessage  = "Email parsed successfully."
	extractFailedPrefix = "Extraction failed: "
	readFailedPrefix    = "Reading email body failed: "
)

// Status is the terminal state an email was moved to.
type Status int

const (
	// StatusParsed means extraction ran; zero or more results were stored.
	StatusParsed Status = iota

	// StatusFormatError means the body did not look like a Google Scholar alert.
	StatusFormatError

	// StatusFailed means the body could not be read or the extractor failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusParsed:
		return "parsed"
	case StatusFormatError:
		return "format_error"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome describes how a single email was handled.
type Outcome struct {
	EmailID    string
	Status     Status
	Candidates int
	Stored     int
	Failed     int

	// Err is the FormatError or extraction error behind a non-parsed status.
	Err error
}

// Result summarizes a pipeline run.
type Result struct {
	Emails       int
	Parsed       int
	FormatErrors int
	Failed       int
	Stored       int
	StoreFailed  int

	// MarkFailed counts emails whose terminal state could not be written.
	// They remain selectable and will be picked up again by the next run.
	MarkFailed int
}

func (r *Result) add(out *Outcome, err error) {
	if err != nil {
		r.MarkFailed++
	}
	if out == nil {
		return
	}
	switch out.Status {
	case StatusParsed:
		r.Parsed++
	case StatusFormatError:
		r.FormatErrors++
	case StatusFailed:
		r.Failed++
	}
	r.Stored += out.Stored
	r.StoreFailed += out.Failed
}

// Parser orchestrates extraction of search results from digest emails.
type Parser struct {
	Store     scholarmail.Store
	Extractor scholarmail.Extractor

	// Validator rejects bodies that are not Google Scholar alerts before
	// extraction. Optional.
	Validator scholarmail.Validator

	// Classifier assigns media types to non-article results. Optional.
	Classifier scholarmail.MediaClassifier

	// Limiter throttles extraction calls. Optional.
	Limiter scholarmail.Limiter

	// Config is passed to the extractor with every request.
	Config scholarmail.ExtractorConfig

	// Instruction defaults to scholarmail.DefaultInstruction.
	Instruction string

	// Concurrency is the number of emails processed at once. Each email is
	// handled start to finish by a single worker. Defaults to 1.
	Concurrency int

	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Run processes every unprocessed, non-spam email once.
func (p *Parser) Run(ctx context.Context) (*Result, error) {
	ids, err := p.UnprocessedEmailIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("find unprocessed emails: %w", err)
	}

	result := &Result{Emails: len(ids)}
	p.logger().Info("parse run started", "emails", len(ids))

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out, err := p.ProcessEmail(ctx, id)
			mu.Lock()
			result.add(out, err)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	p.logger().Info("parse run finished",
		"emails", result.Emails,
		"parsed", result.Parsed,
		"format_errors", result.FormatErrors,
		"failed", result.Failed,
		"stored", result.Stored,
		"store_failed", result.StoreFailed,
		"mark_failed", result.MarkFailed,
	)

	return result, ctx.Err()
}

// UnprocessedEmailIDs returns the IDs of emails that are neither processed
// nor flagged as spam.
func (p *Parser) UnprocessedEmailIDs(ctx context.Context) ([]string, error) {
	recs, err := p.Store.Select(ctx, scholarmail.EmailCollection, scholarmail.UnprocessedEmailFilter(), scholarmail.IDField)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		if id := rec.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// EmailBody returns the HTML body of an email. An email without an HTML
// part yields an empty string.
// Returns ENOTFOUND if the email does not exist.
func (p *Parser) EmailBody(ctx context.Context, emailID string) (string, error) {
	recs, err := p.Store.Select(ctx, scholarmail.EmailCollection, scholarmail.Filter{scholarmail.IDField: emailID}, "body.text_html")
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "", scholarmail.Errorf(scholarmail.ENOTFOUND, "email %q not found", emailID)
	}
	return recs[0].String("body.text_html"), nil
}

// ProcessEmail runs the full pipeline for one email and moves it to a
// terminal state. The returned error is non-nil only when the terminal
// state could not be written (or the email does not exist); extraction and
// format problems are reported through the Outcome.
func (p *Parser) ProcessEmail(ctx context.Context, emailID string) (*Outcome, error) {
	log := p.logger().With("email", emailID)
	out := &Outcome{EmailID: emailID}

	body, err := p.EmailBody(ctx, emailID)
	if scholarmail.ErrorCode(err) == scholarmail.ENOTFOUND {
		return nil, err
	} else if err != nil {
		log.Error("read email body", "err", err)
		out.Status, out.Err = StatusFailed, err
		return out, p.markEmail(ctx, emailID, failedUpdate(readFailedPrefix+err.Error()))
	}

	html := Sanitize(body)

	if p.Validator != nil {
		if ferr := p.Validator.Validate(emailID, html); ferr != nil {
			log.Warn("email is not a Google Scholar alert", "reason", ferr.Reason)
			out.Status, out.Err = StatusFormatError, ferr
			return out, p.markEmail(ctx, emailID, formatErrorUpdate(ferr))
		}
	}

	candidates, err := p.extract(ctx, html)
	if err != nil {
		log.Error("extract search results", "err", err)
		out.Status, out.Err = StatusFailed, err
		return out, p.markEmail(ctx, emailID, failedUpdate(extractFailedPrefix+err.Error()))
	}
	out.Candidates = len(candidates)

	for _, c := range candidates {
		sr := scholarmail.NewSearchResult(emailID, c, p.classify(c), p.now())
		id, err := p.StoreSearchResult(ctx, sr)
		if err != nil {
			log.Warn("store search result", "title", c.Title, "err", err)
			out.Failed++
			continue
		}
		log.Debug("search result stored", "id", id)
		out.Stored++
	}

	out.Status = StatusParsed
	return out, p.markEmail(ctx, emailID, parsedUpdate())
}

func (p *Parser) extract(ctx context.Context, html string) ([]scholarmail.Candidate, error) {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for extraction slot: %w", err)
		}
	}
	return p.Extractor.Extract(ctx, scholarmail.ExtractRequest{
		HTML:        html,
		Instruction: p.instruction(),
		Config:      p.Config,
	})
}

// StoreSearchResult inserts a search result and returns its generated ID.
// The success log message is attached before the insert; if the insert
// fails it is replaced with the failure reason.
func (p *Parser) StoreSearchResult(ctx context.Context, sr *scholarmail.SearchResult) (string, error) {
	if err := sr.Validate(); err != nil {
		return "", err
	}

	sr.LogMessage = scholarmail.SearchResultParsedMessage
	id, err := p.Store.InsertOne(ctx, scholarmail.SearchResultCollection, sr.Record())
	if err != nil {
		sr.LogMessage = fmt.Sprintf("Storing search result failed: %v", err)
		return "", err
	}
	sr.ID = id
	return id, nil
}

// UpdateSearchResults applies a partial update to the search results
// matching filter and returns the number matched. updated_at is refreshed
// unless set explicitly.
func (p *Parser) UpdateSearchResults(ctx context.Context, set scholarmail.Record, filter scholarmail.Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, scholarmail.Errorf(scholarmail.EINVALID, "search result update requires a filter")
	}
	upd := scholarmail.Record{"updated_at": p.now().UTC().Format(scholarmail.TimeFormat)}
	for k, v := range set {
		upd[k] = v
	}
	return p.Store.UpdateByFilter(ctx, scholarmail.SearchResultCollection, upd, filter)
}

// SearchResult retrieves a stored search result by ID.
// Returns ENOTFOUND if it does not exist.
func (p *Parser) SearchResult(ctx context.Context, id string) (*scholarmail.SearchResult, error) {
	rec, err := p.Store.SelectOne(ctx, scholarmail.SearchResultCollection, id)
	if err != nil {
		return nil, err
	}
	return scholarmail.SearchResultFromRecord(rec)
}

// markEmail writes a terminal state onto an email, filtered by ID alone.
// A failure here leaves the email selectable, so it is logged at error level.
func (p *Parser) markEmail(ctx context.Context, emailID string, set scholarmail.Record) error {
	set["updated_at"] = p.now().UTC().Format(scholarmail.TimeFormat)
	n, err := p.Store.UpdateByFilter(ctx, scholarmail.EmailCollection, set, scholarmail.Filter{scholarmail.IDField: emailID})
	if err == nil && n == 0 {
		err = scholarmail.Errorf(scholarmail.ENOTFOUND, "email %q not found", emailID)
	}
	if err != nil {
		p.logger().Error("mark email processed; it will be selected again",
			"email", emailID,
			"err", err,
		)
		return fmt.Errorf("mark email %s processed: %w", emailID, err)
	}
	return nil
}

func parsedUpdate() scholarmail.Record {
	return scholarmail.Record{
		"is_processed":             true,
		"is_google_scholar_format": true,
		"log_message":              EmailParsedMessage,
	}
}

func formatErrorUpdate(ferr *scholarmail.FormatError) scholarmail.Record {
	return scholarmail.Record{
		"is_processed":             true,
		"is_parsed":                ferr.IsParsed,
		"is_google_scholar_format": ferr.IsGoogleScholarFormat,
		"log_message":              ferr.Reason,
	}
}

func failedUpdate(message string) scholarmail.Record {
	return scholarmail.Record{
		"is_processed":             true,
		"is_parsed":                false,
		"is_google_scholar_format": false,
		"log_message":              message,
	}
}

func (p *Parser) classify(c scholarmail.Candidate) string {
	if p.Classifier == nil {
		return ""
	}
	return p.Classifier.Classify(c)
}

func (p *Parser) instruction() string {
	if p.Instruction != "" {
		return p.Instruction
	}
	return scholarmail.DefaultInstruction
}

func (p *Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}
