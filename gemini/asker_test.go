package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/webtext"
	"github.com/fwojciec/webtext/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsker_Ask_ReturnsErrorWhenQuestionEmpty(t *testing.T) {
	t.Parallel()

	asker := gemini.NewAsker(nil, "") // nil client ok for this test

	_, err := asker.Ask(context.Background(), []*webtext.Result{{URL: "https://example.com", Text: "x"}}, "  ")

	require.Error(t, err)
	assert.Equal(t, webtext.EINVALID, webtext.ErrorCode(err))
	assert.Contains(t, webtext.ErrorMessage(err), "question required")
}

func TestAsker_Ask_ReturnsErrorWhenNoText(t *testing.T) {
	t.Parallel()

	asker := gemini.NewAsker(nil, "")
	results := []*webtext.Result{
		{URL: "https://example.com/a", Err: webtext.Errorf(webtext.ETIMEOUT, "slow")},
		{URL: "https://example.com/b", Text: "   "},
	}

	_, err := asker.Ask(context.Background(), results, "what is this?")

	require.Error(t, err)
	assert.Equal(t, webtext.EINVALID, webtext.ErrorCode(err))
	assert.Contains(t, webtext.ErrorMessage(err), "no page text")
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "helpful assistant")
}

func TestBuildConfig_SetsTemperature(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.4, *config.Temperature, 0.001)
}

func TestBuildUserPrompt(t *testing.T) {
	t.Parallel()

	pages := webtext.FormatResults([]*webtext.Result{
		{URL: "https://htmx.org/docs", Title: "Getting Started", Text: "HTMX is a library."},
	})

	prompt := gemini.BuildUserPrompt(pages, "What is HTMX?")

	assert.Contains(t, prompt, "<pages>")
	assert.Contains(t, prompt, "## Page: Getting Started")
	assert.Contains(t, prompt, "Source: https://htmx.org/docs")
	assert.Contains(t, prompt, "HTMX is a library.")
	assert.Contains(t, prompt, "</pages>")
	assert.Contains(t, prompt, "Question: What is HTMX?")
	assert.NotContains(t, prompt, "You are a helpful assistant")
}
