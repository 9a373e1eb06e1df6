package goquery

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scholarmail"
)

// snippetSelector matches the abstract excerpt under a result.
const snippetSelector = ".gse_alrt_sni"

var (
	// trailingYear matches a venue line ending in a publication year,
	// e.g. "Scientific Reports, 2025".
	trailingYear = regexp.MustCompile(`(?:^|,?\s+)((?:19|20)\d{2})$`)

	whitespace = regexp.MustCompile(`\s+`)
)

// kindTags are title prefixes that describe what a result is. Format tags
// such as [PDF] or [HTML] are dropped.
var kindTags = map[string]bool{
	"[BOOK]":     true,
	"[CITATION]": true,
}

var _ scholarmail.Extractor = (*Extractor)(nil)

// Extractor reads search results directly from alert markup. It ignores
// the instruction and model settings of the request.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns one candidate per result title in req.HTML.
func (e *Extractor) Extract(ctx context.Context, req scholarmail.ExtractRequest) ([]scholarmail.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		return nil, scholarmail.Errorf(scholarmail.EEXTRACT, "failed to parse HTML: %v", err)
	}

	var candidates []scholarmail.Candidate
	titles(doc).Each(func(_ int, a *goquery.Selection) {
		candidates = append(candidates, candidateFromTitle(a))
	})
	return candidates, nil
}

func candidateFromTitle(a *goquery.Selection) scholarmail.Candidate {
	c := scholarmail.Candidate{
		Title:       clean(a.Text()),
		OriginalURL: strings.TrimSpace(a.AttrOr("href", "")),
	}

	heading := a.Closest("h3")
	if heading.Length() == 0 {
		return c
	}

	heading.Find("span").Each(func(_ int, s *goquery.Selection) {
		if tag := strings.ToUpper(clean(s.Text())); kindTags[tag] {
			c.Title = tag + " " + c.Title
		}
	})

	following := heading.NextUntil("h3")
	c.Snippet = clean(following.Filter(snippetSelector).First().Text())

	byline := following.Filter("div").Not(snippetSelector).First()
	c.Authors, c.JournalName, c.YearOfPublication = splitByline(clean(byline.Text()))
	return c
}

// splitByline splits "authors - venue, year" into its parts. Any part may be
// missing.
func splitByline(line string) (authors, journal, year string) {
	if line == "" {
		return "", "", ""
	}
	parts := strings.Split(line, " - ")
	authors = strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		return authors, "", ""
	}
	venue := strings.TrimSpace(parts[1])
	if m := trailingYear.FindStringSubmatchIndex(venue); m != nil {
		year = venue[m[2]:m[3]]
		venue = venue[:m[0]]
	}
	return authors, strings.TrimSpace(strings.TrimSuffix(venue, ",")), year
}

// clean collapses whitespace, including non-breaking spaces.
func clean(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
