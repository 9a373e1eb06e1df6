package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/scholarmail"
	"github.com/fwojciec/scholarmail/parse"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	res, err := deps.Parser.Run(deps.Ctx)
	if res != nil && deps.Metrics != nil {
		deps.Metrics.ObserveRun(res, deps.now())
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scholarmail.ErrorMessage(err))
		return err
	}

	printSummary(deps.Stdout, res)
	return nil
}

func printSummary(w io.Writer, res *parse.Result) {
	if res.Emails == 0 {
		fmt.Fprintln(w, "No unprocessed emails.")
		return
	}
	fmt.Fprintf(w, "Processed %d emails: %d parsed, %d format errors, %d failed\n",
		res.Emails, res.Parsed, res.FormatErrors, res.Failed)
	fmt.Fprintf(w, "Stored %d search results", res.Stored)
	if res.StoreFailed > 0 {
		fmt.Fprintf(w, " (%d failed)", res.StoreFailed)
	}
	fmt.Fprintln(w)
	if res.MarkFailed > 0 {
		fmt.Fprintf(w, "Warning: %d emails could not be marked processed and will be retried\n", res.MarkFailed)
	}
}
