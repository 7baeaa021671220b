package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bodul/wordsearch/wordbank"
	"github.com/bodul/wordsearch/wordsearch"
	"google.golang.org/genai"
)

const suggestPrompt = `You write vocabulary lists for a word search game played by 10 year olds.

Theme: %q

Give %d different single English words about this theme, each between 3 and %d letters,
letters A-Z only (no spaces, hyphens or accents), each with a one sentence definition
a 10 year old understands.

Answer ONLY with JSON of the form:
[{"word": "BANK", "definition": "A safe place to keep your money"}, ...]`

// wordSuggester produces vocabulary for a theme the word bank does not know.
type wordSuggester interface {
	SuggestWords(ctx context.Context, theme string, count, maxLen int) ([]wordbank.Entry, error)
}

// SuggestWords asks Gemini for count themed words of at most maxLen letters.
// Entries that do not fit the grid are dropped.
func (g *GeminiClient) SuggestWords(ctx context.Context, theme string, count, maxLen int) ([]wordbank.Entry, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: fmt.Sprintf(suggestPrompt, theme, count, maxLen)},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.7)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}
	return parseSuggestions(text, maxLen)
}

// parseSuggestions decodes the model answer and keeps the usable entries.
func parseSuggestions(text string, maxLen int) ([]wordbank.Entry, error) {
	var raw []wordbank.Entry
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse words JSON: %w\nraw response: %s", err, text)
	}

	seen := make(map[string]bool)
	out := make([]wordbank.Entry, 0, len(raw))
	for _, e := range raw {
		w, err := wordsearch.Normalize(e.Word)
		if err != nil || utf8.RuneCountInString(w) > maxLen || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, wordbank.Entry{Word: w, Definition: strings.TrimSpace(e.Definition)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable words in gemini response: %s", text)
	}
	return out, nil
}
