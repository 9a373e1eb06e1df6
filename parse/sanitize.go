package parse

import "regexp"

var (
	// escapedQuote matches one or more backslashes followed by a double
	// quote, left behind by JSON-style escaping of the stored body.
	escapedQuote = regexp.MustCompile(`\\+"`)

	headBlock   = regexp.MustCompile(`(?is)<head\b[^>]*>.*?</head\s*>`)
	scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlock  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
)

// Sanitize prepares a raw email body for extraction. It unescapes quotes
// and removes complete <head>, <script> and <style> blocks. Tags without a
// matching close tag are left in place; this is a pattern-based strip, not
// an HTML parser.
func Sanitize(raw string) string {
	s := escapedQuote.ReplaceAllLiteralString(raw, `"`)
	s = headBlock.ReplaceAllLiteralString(s, "")
	s = scriptBlock.ReplaceAllLiteralString(s, "")
	s = styleBlock.ReplaceAllLiteralString(s, "")
	return s
}
