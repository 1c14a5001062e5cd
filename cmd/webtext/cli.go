package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/webtext"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Batch        webtext.BatchFetcher
	Sitemaps     webtext.SitemapService
	History      webtext.HistoryService
	Asker        webtext.Asker
	TokenCounter webtext.TokenCounter

	// NewStore opens a ResultStore writing to dir/name with extension ext.
	NewStore func(dir, name, ext string) webtext.ResultStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log every request to stderr"`

	Fetch   FetchCmd   `cmd:"" help:"Fetch URLs and print their text"`
	Ask     AskCmd     `cmd:"" help:"Fetch URLs and ask a question about them"`
	History HistoryCmd `cmd:"" help:"List recorded batches or show one"`
}

// FetchFlags configures the fetch pipeline shared by fetch and ask.
type FetchFlags struct {
	Concurrency int           `short:"c" default:"5" help:"Maximum concurrent requests"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Timeout per URL"`
	Format      string        `enum:"text,markdown" default:"text" help:"Text format (text, markdown)"`
	Extract     string        `enum:"none,trafilatura,readability" default:"none" help:"Main content extraction (none, trafilatura, readability)"`
	Retries     int           `default:"0" help:"Retries per URL after a failed attempt"`
	RPS         float64       `name:"rps" default:"0" help:"Requests per second per host (0 for unlimited)"`
	UserAgent   string        `name:"user-agent" help:"User-Agent header sent with requests"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	URLs    []string `arg:"" optional:"" name:"url" help:"URLs to fetch"`
	File    string   `short:"f" help:"Read URLs from file, one per line"`
	Sitemap string   `help:"Read URLs from a sitemap"`
	Include []string `help:"Keep sitemap URLs matching regex (repeatable)"`
	Exclude []string `help:"Drop sitemap URLs matching regex (repeatable)"`
	JSON    bool     `name:"json" help:"Print results as JSON"`
	Out     string   `help:"Write each page to a file below this directory"`
	Name    string   `default:"pages" help:"Output directory name below --out"`
	Record  bool     `help:"Record the batch in the history database"`

	FetchFlags `embed:""`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string   `arg:"" help:"Question to ask about the pages"`
	URLs     []string `arg:"" name:"url" help:"URLs to answer from"`

	FetchFlags `embed:""`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	ID     string `arg:"" optional:"" help:"Batch ID to show"`
	Limit  int    `default:"20" help:"Number of batches to list"`
	Delete bool   `help:"Delete the batch instead of showing it"`
	JSON   bool   `name:"json" help:"Print the batch as JSON"`
}
