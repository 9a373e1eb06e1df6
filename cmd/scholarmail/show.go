package main

import (
	"fmt"

	"github.com/fwojciec/scholarmail"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	sr, err := deps.Parser.SearchResult(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scholarmail.ErrorMessage(err))
		return err
	}

	return writeFormatted(deps.Stdout, c.Format, newSearchResultView(sr))
}
