package scholarmail

import "time"

// Email represents an inbound message believed to carry a Google Scholar
// alert digest. Emails are owned by the mail-ingestion side; the pipeline
// only reads them and updates their processing flags.
type Email struct {
	ID          string
	Body        EmailBody
	IsProcessed bool
	IsSpam      bool

	// IsGoogleScholarFormat is nil until the email has been inspected.
	IsGoogleScholarFormat *bool
	LogMessage            string
}

// EmailBody holds the text variants of an email body.
type EmailBody struct {
	TextHTML string
}

// Eligible reports whether the email should be picked up for extraction.
func (e *Email) Eligible() bool {
	return !e.IsProcessed && !e.IsSpam
}

// EmailFromRecord converts a stored document into an Email.
func EmailFromRecord(rec Record) *Email {
	e := &Email{
		ID:          rec.ID(),
		Body:        EmailBody{TextHTML: rec.String("body.text_html")},
		IsProcessed: rec.Bool("is_processed"),
		IsSpam:      rec.Bool("is_spam"),
		LogMessage:  rec.String("log_message"),
	}
	if v, ok := rec.Lookup("is_google_scholar_format"); ok {
		if b, ok := v.(bool); ok {
			e.IsGoogleScholarFormat = &b
		}
	}
	return e
}

// NewEmailRecord returns the document for a freshly received, unprocessed email.
func NewEmailRecord(textHTML string, now time.Time) Record {
	return Record{
		"created_at":   now.UTC().Format(TimeFormat),
		"updated_at":   now.UTC().Format(TimeFormat),
		"body":         map[string]any{"text_html": textHTML},
		"is_processed": false,
		"is_spam":      false,
	}
}

// UnprocessedEmailFilter selects emails eligible for extraction.
func UnprocessedEmailFilter() Filter {
	return Filter{"is_processed": false, "is_spam": false}
}
