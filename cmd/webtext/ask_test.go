package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/webtext"
	main "github.com/fwojciec/webtext/cmd/webtext"
	"github.com/fwojciec/webtext/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("asks question using fetched pages", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Batch: &mock.BatchFetcher{
				FetchAllFn: func(_ context.Context, urls []string, _ webtext.FetchProgressFunc) []*webtext.Result {
					return []*webtext.Result{
						{URL: urls[0], Title: "Hooks", Text: "useState is a React Hook."},
						{URL: urls[1], Err: webtext.Errorf(webtext.ESTATUS, "HTTP 500 for %s", urls[1])},
					}
				},
			},
			Asker: &mock.Asker{
				AskFn: func(_ context.Context, results []*webtext.Result, question string) (string, error) {
					assert.Len(t, results, 2)
					assert.Equal(t, "What is useState?", question)
					return "useState is a React Hook.", nil
				},
			},
		}

		cmd := &main.AskCmd{
			Question: "What is useState?",
			URLs:     []string{"https://react.dev/hooks", "https://react.dev/broken"},
		}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "useState is a React Hook.")
		assert.Contains(t, stderr.String(), "skip https://react.dev/broken: HTTP 500")
	})

	t.Run("returns asker error", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Batch: &mock.BatchFetcher{
				FetchAllFn: func(_ context.Context, urls []string, _ webtext.FetchProgressFunc) []*webtext.Result {
					return []*webtext.Result{{URL: urls[0], Err: webtext.Errorf(webtext.ETIMEOUT, "slow")}}
				},
			},
			Asker: &mock.Asker{
				AskFn: func(_ context.Context, _ []*webtext.Result, _ string) (string, error) {
					return "", webtext.Errorf(webtext.EINVALID, "no page text to answer from")
				},
			},
		}

		err := (&main.AskCmd{Question: "q", URLs: []string{"https://example.com"}}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "no page text")
	})
}
