package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/scholarmail"
	"gopkg.in/yaml.v3"
)

// searchResultView is the printed form of a search result.
type searchResultView struct {
	ID          string `yaml:"id" json:"id"`
	Email       string `yaml:"email" json:"email"`
	Title       string `yaml:"title" json:"title"`
	Author      string `yaml:"author" json:"author"`
	Publisher   string `yaml:"publisher" json:"publisher"`
	Year        string `yaml:"year" json:"year"`
	Text        string `yaml:"text" json:"text"`
	Link        string `yaml:"link" json:"link"`
	MediaType   string `yaml:"media_type,omitempty" json:"media_type,omitempty"`
	LogMessage  string `yaml:"log_message" json:"log_message"`
	IsProcessed bool   `yaml:"is_processed" json:"is_processed"`
	CreatedAt   string `yaml:"created_at" json:"created_at"`
	UpdatedAt   string `yaml:"updated_at" json:"updated_at"`
}

func newSearchResultView(sr *scholarmail.SearchResult) searchResultView {
	return searchResultView{
		ID:          sr.ID,
		Email:       sr.EmailID,
		Title:       sr.Title,
		Author:      sr.Author,
		Publisher:   sr.Publisher,
		Year:        sr.Year,
		Text:        sr.Text,
		Link:        sr.Link.URL,
		MediaType:   sr.MediaType,
		LogMessage:  sr.LogMessage,
		IsProcessed: sr.IsProcessed,
		CreatedAt:   sr.CreatedAt.UTC().Format(scholarmail.TimeFormat),
		UpdatedAt:   sr.UpdatedAt.UTC().Format(scholarmail.TimeFormat),
	}
}

func writeFormatted(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}
