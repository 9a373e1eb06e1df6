package mock

import "github.com/fwojciec/scholarmail"

var _ scholarmail.Converter = (*Converter)(nil)

// Converter is a mock implementation of scholarmail.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
