package main

import (
	"fmt"

	"github.com/fwojciec/webtext"
	"github.com/fwojciec/webtext/batch"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	results := deps.Batch.FetchAll(deps.Ctx, c.URLs, nil)
	for _, r := range results {
		if !r.OK() {
			fmt.Fprintf(deps.Stderr, "skip %s: %s\n", r.URL, r.ErrorString())
		}
	}

	if deps.TokenCounter != nil {
		if n, err := deps.TokenCounter.CountTokens(deps.Ctx, webtext.FormatResults(results)); err == nil {
			fmt.Fprintf(deps.Stderr, "Context: %s\n", batch.FormatTokens(n))
		}
	}

	answer, err := deps.Asker.Ask(deps.Ctx, results, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webtext.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer)
	return nil
}
