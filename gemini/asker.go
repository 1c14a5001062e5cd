// Package gemini answers questions about fetched pages using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/webtext"
	"google.golang.org/genai"
)

// DefaultModel is the model used by Asker and TokenCounter.
const DefaultModel = "gemini-2.5-flash"

// Ensure Asker implements webtext.Asker at compile time.
var _ webtext.Asker = (*Asker)(nil)

// Asker implements webtext.Asker using Google Gemini.
type Asker struct {
	client *genai.Client
	model  string
}

// NewAsker creates a new Asker. An empty model selects DefaultModel.
func NewAsker(client *genai.Client, model string) *Asker {
	if model == "" {
		model = DefaultModel
	}
	return &Asker{client: client, model: model}
}

// Ask answers question using the text of the successful results.
func (a *Asker) Ask(ctx context.Context, results []*webtext.Result, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", webtext.Errorf(webtext.EINVALID, "question required")
	}

	pages := webtext.FormatResults(results)
	if pages == "" {
		return "", webtext.Errorf(webtext.EINVALID, "no page text to answer from")
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(pages, question)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", webtext.Errorf(webtext.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a helpful assistant answering questions about the web pages provided. Answer based only on those pages and cite the Source URL you used. If the answer is not in the pages, say so.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt wraps formatted page text and the question into a prompt.
func BuildUserPrompt(pages, question string) string {
	var sb strings.Builder
	sb.WriteString("<pages>\n")
	sb.WriteString(pages)
	sb.WriteString("\n</pages>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
