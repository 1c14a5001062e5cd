package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/webtext"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.ID == "" {
		return c.list(deps)
	}

	if c.Delete {
		if err := deps.History.DeleteBatch(deps.Ctx, c.ID); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", webtext.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Deleted batch %s\n", c.ID)
		return nil
	}

	b, err := deps.History.FindBatchByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webtext.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	fmt.Fprintf(deps.Stdout, "Batch %s (%s)\n", b.ID, b.CreatedAt.Local().Format(time.DateTime))
	for _, r := range b.Results {
		if r.OK() {
			fmt.Fprintf(deps.Stdout, "  ok      %s  %s\n", r.URL, r.Title)
			continue
		}
		fmt.Fprintf(deps.Stdout, "  failed  %s  %s: %s\n", r.URL, webtext.ErrorCode(r.Err), r.ErrorString())
	}
	return nil
}

func (c *HistoryCmd) list(deps *Dependencies) error {
	batches, err := deps.History.FindBatches(deps.Ctx, webtext.BatchFilter{Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webtext.ErrorMessage(err))
		return err
	}

	if len(batches) == 0 {
		fmt.Fprintln(deps.Stdout, "No batches recorded. Use 'webtext fetch --record' to record one.")
		return nil
	}

	for _, b := range batches {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d URLs  %d failed\n",
			b.ID, b.CreatedAt.Local().Format(time.DateTime), len(b.Results), b.Failed())
	}
	return nil
}
