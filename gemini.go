package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const suggestPrompt = `Propose %d mots pour une grille de mots croisés pédagogique sur le thème : %q.

Réponds au format JSON suivant :
{
  "words": [
    {"text": "MOT", "clue": "Définition courte"},
    ...
  ]
}

Règles :
- Un seul mot par entrée, sans espace ni chiffre, entre 3 et 12 lettres.
- Les mots doivent partager des lettres entre eux pour pouvoir se croiser.
- Chaque définition tient en une phrase et ne contient pas le mot.
- Réponds UNIQUEMENT avec le JSON, sans commentaire ni markdown.`

// SuggestWords asks Gemini Flash for count words on theme. Entries that do
// not normalize to a single word are dropped.
func (g *GeminiClient) SuggestWords(ctx context.Context, theme string, count int) ([]WordEntry, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: fmt.Sprintf(suggestPrompt, count, theme)}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.7)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "gemini generate")
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("empty gemini response")
	}
	return parseSuggestions(text, count)
}

// parseSuggestions decodes the model answer and keeps at most limit usable
// entries (never more than maxWords).
func parseSuggestions(text string, limit int) ([]WordEntry, error) {
	var out struct {
		Words []WordEntry `json:"words"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, errors.Wrapf(err, "parse suggestions JSON\nraw response: %s", text)
	}
	if limit <= 0 || limit > maxWords {
		limit = maxWords
	}

	words := make([]WordEntry, 0, min(len(out.Words), limit))
	for _, w := range out.Words {
		if len(words) == limit {
			break
		}
		clue := strings.TrimSpace(w.Clue)
		if clue == "" || utf8.RuneCountInString(clue) > maxClueLen {
			continue
		}
		normalized, err := NormalizeWord(w.Text)
		if err != nil || utf8.RuneCountInString(normalized) > maxWordLen {
			continue
		}
		words = append(words, WordEntry{Text: normalized, Clue: clue})
	}
	if len(words) == 0 {
		return nil, errors.Wrap(ErrEmptyWordList, "gemini suggestions")
	}
	return words, nil
}
