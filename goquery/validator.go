// Package goquery inspects Google Scholar alert markup with goquery. It
// provides the shape Validator run before extraction and a deterministic
// Extractor that reads results straight from the alert layout.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scholarmail"
)

// Selectors for result titles. Current alerts mark titles with
// gse_alrt_title; older ones only link to scholar.google from an h3.
const (
	titleSelector       = "a.gse_alrt_title"
	legacyTitleSelector = `h3 a[href*="scholar.google"]`
)

var _ scholarmail.Validator = (*Validator)(nil)

// Validator rejects email bodies that do not contain Google Scholar results.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns a FormatError when html has no Google Scholar result
// titles.
func (v *Validator) Validate(emailID, html string) *scholarmail.FormatError {
	if strings.TrimSpace(html) == "" {
		return scholarmail.NewFormatError(emailID, "email body is empty")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return scholarmail.NewFormatError(emailID, "email body is not parseable HTML: "+err.Error())
	}

	if titles(doc).Length() == 0 {
		return scholarmail.NewFormatError(emailID, "no Google Scholar result titles found")
	}
	return nil
}

// titles returns the result title anchors in document order.
func titles(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find(titleSelector); sel.Length() > 0 {
		return sel
	}
	return doc.Find(legacyTitleSelector)
}
