package scholarmail

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms sanitized HTML into Markdown. Backends use it to
	// shrink prompts while keeping link targets.
	Convert(html string) (string, error)
}
