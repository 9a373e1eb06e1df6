package main

import (
	"fmt"

	"github.com/fwojciec/scholarmail"
)

// Run executes the results command.
func (c *ResultsCmd) Run(deps *Dependencies) error {
	recs, err := deps.Store.Select(deps.Ctx, scholarmail.SearchResultCollection, scholarmail.SearchResultsByEmailFilter(c.EmailID))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scholarmail.ErrorMessage(err))
		return err
	}

	views := make([]searchResultView, 0, len(recs))
	for _, rec := range recs {
		sr, err := scholarmail.SearchResultFromRecord(rec)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scholarmail.ErrorMessage(err))
			return err
		}
		views = append(views, newSearchResultView(sr))
	}

	if c.Format != "text" {
		return writeFormatted(deps.Stdout, c.Format, views)
	}

	if len(views) == 0 {
		fmt.Fprintf(deps.Stdout, "No search results for email %s.\n", c.EmailID)
		return nil
	}
	for _, v := range views {
		year := v.Year
		if year == "" {
			year = "----"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", v.ID, year, v.Title)
	}
	return nil
}
