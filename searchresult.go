package scholarmail

import (
	"time"
)

// TimeFormat is the layout used for persisted timestamps.
const TimeFormat = time.RFC3339

// SearchResultParsedMessage is attached to every successfully stored search result.
const SearchResultParsedMessage = "Search result parsed successfully."

// Media types assigned to non-article search results.
const (
	MediaTypeBook     = "book"
	MediaTypeCitation = "citation"
	MediaTypeDataset  = "dataset"
	MediaTypePreprint = "preprint"
)

// Link wraps the URL of a search result.
type Link struct {
	URL string
}

// SearchResult is a citation extracted from a digest email.
type SearchResult struct {
	ID        string
	EmailID   string
	Title     string
	Author    string
	Publisher string
	Year      string
	Text      string
	Link      Link

	// MediaType is empty for regular articles. When set, the stored
	// document carries a media_type field; otherwise the field is absent.
	MediaType string

	LogMessage  string
	IsProcessed bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate returns an error if the search result contains invalid fields.
func (s *SearchResult) Validate() error {
	if s.EmailID == "" {
		return Errorf(EINVALID, "search result email ID required")
	}
	return nil
}

// NewSearchResult maps an extracted candidate onto a search result for the
// given email. Missing candidate fields map to empty strings.
func NewSearchResult(emailID string, c Candidate, mediaType string, now time.Time) *SearchResult {
	now = now.UTC().Truncate(time.Second)
	return &SearchResult{
		EmailID:     emailID,
		Title:       c.Title,
		Author:      c.Authors,
		Publisher:   c.JournalName,
		Year:        c.YearOfPublication,
		Text:        c.Snippet,
		Link:        Link{URL: c.OriginalURL},
		MediaType:   mediaType,
		LogMessage:  SearchResultParsedMessage,
		IsProcessed: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Record returns the stored document shape of the search result.
// The ID is not included; stores assign it on insert.
func (s *SearchResult) Record() Record {
	rec := Record{
		"created_at":   s.CreatedAt.UTC().Format(TimeFormat),
		"updated_at":   s.UpdatedAt.UTC().Format(TimeFormat),
		"email":        Ref(s.EmailID),
		"title":        s.Title,
		"author":       s.Author,
		"publisher":    s.Publisher,
		"year":         s.Year,
		"text":         s.Text,
		"link":         map[string]any{"url": s.Link.URL},
		"log_message":  s.LogMessage,
		"is_processed": s.IsProcessed,
	}
	if s.MediaType != "" {
		rec["media_type"] = s.MediaType
	}
	return rec
}

// SearchResultFromRecord converts a stored document into a SearchResult.
func SearchResultFromRecord(rec Record) (*SearchResult, error) {
	s := &SearchResult{
		ID:          rec.ID(),
		EmailID:     rec.String("email"),
		Title:       rec.String("title"),
		Author:      rec.String("author"),
		Publisher:   rec.String("publisher"),
		Year:        rec.String("year"),
		Text:        rec.String("text"),
		Link:        Link{URL: rec.String("link.url")},
		MediaType:   rec.String("media_type"),
		LogMessage:  rec.String("log_message"),
		IsProcessed: rec.Bool("is_processed"),
	}

	var err error
	if s.CreatedAt, err = parseTime(rec, "created_at"); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(rec, "updated_at"); err != nil {
		return nil, err
	}
	return s, nil
}

func parseTime(rec Record, field string) (time.Time, error) {
	v, ok := rec.Lookup(field)
	if !ok || v == nil {
		return time.Time{}, nil
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC(), nil
	}
	t, err := time.Parse(TimeFormat, rec.String(field))
	if err != nil {
		return time.Time{}, Errorf(EINVALID, "failed to parse %s: %v", field, err)
	}
	return t, nil
}

// SearchResultsByEmailFilter selects the search results extracted from an email.
func SearchResultsByEmailFilter(emailID string) Filter {
	return Filter{"email": Ref(emailID)}
}
