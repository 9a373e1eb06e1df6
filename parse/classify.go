package parse

import (
	"net/url"
	"strings"

	"github.com/fwojciec/scholarmail"
)

var _ scholarmail.MediaClassifier = (*HostClassifier)(nil)

// HostClassifier marks candidates as non-article media based on the host of
// their link and on the bracketed type prefix Google Scholar puts in front
// of some titles.
type HostClassifier struct {
	Preprints map[string]bool
	Datasets  map[string]bool
}

// NewHostClassifier returns a HostClassifier with well-known preprint and
// dataset hosts.
func NewHostClassifier() *HostClassifier {
	return &HostClassifier{
		Preprints: map[string]bool{
			"arxiv.org":          true,
			"biorxiv.org":        true,
			"medrxiv.org":        true,
			"chemrxiv.org":       true,
			"preprints.org":      true,
			"researchsquare.com": true,
			"ssrn.com":           true,
			"osf.io":             true,
		},
		Datasets: map[string]bool{
			"zenodo.org":        true,
			"figshare.com":      true,
			"datadryad.org":     true,
			"dataverse.org":     true,
			"pangaea.de":        true,
			"kaggle.com":        true,
			"data.mendeley.com": true,
		},
	}
}

// Classify returns the media type of c, or an empty string for articles.
func (h *HostClassifier) Classify(c scholarmail.Candidate) string {
	title := strings.ToUpper(strings.TrimSpace(c.Title))
	switch {
	case strings.HasPrefix(title, "[BOOK]"):
		return scholarmail.MediaTypeBook
	case strings.HasPrefix(title, "[CITATION]"):
		return scholarmail.MediaTypeCitation
	}

	host := targetHost(c.OriginalURL)
	if host == "" {
		return ""
	}
	if matchHost(h.Datasets, host) {
		return scholarmail.MediaTypeDataset
	}
	if matchHost(h.Preprints, host) {
		return scholarmail.MediaTypePreprint
	}
	return ""
}

// targetHost returns the host a link points to, following Google Scholar
// redirect links (scholar_url?url=...) to their destination.
func targetHost(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Hostname(), "scholar.google.com") {
		if target := u.Query().Get("url"); target != "" {
			if tu, err := url.Parse(target); err == nil {
				u = tu
			}
		}
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// matchHost reports whether host or one of its parent domains is in hosts.
func matchHost(hosts map[string]bool, host string) bool {
	for host != "" {
		if hosts[host] {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
	return false
}
