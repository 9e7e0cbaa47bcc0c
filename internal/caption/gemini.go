package caption

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

//go:embed schema.json
var captionSchema string

const geminiPrompt = `You write short Facebook captions for a community news page.
Given the article below, write one caption in the article's language.
Keep it under %d characters, factual, no emoji spam, no invented details.
End the caption with this line exactly: %s%s
Then append on a new line: %s

Title: %s

Body:
%s

Respond as JSON: {"caption": "..."}`

// GeminiSource asks Gemini for a caption and validates the JSON reply
// against the embedded schema. Callers should fall back to Build when it
// returns an error.
type GeminiSource struct {
	client *genai.Client
	model  string
}

// NewGeminiSource creates a Gemini-backed caption source.
func NewGeminiSource(ctx context.Context, apiKey, model string) (*GeminiSource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiSource{client: client, model: model}, nil
}

// Caption implements Source.
func (s *GeminiSource) Caption(ctx context.Context, title, body, link string) (string, error) {
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"

	prompt := fmt.Sprintf(geminiPrompt, SnippetLimit, readMoreLabel, link, hashtags, title, body)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate caption: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	text = cleanJSONBlock(text)

	if err := validateCaptionJSON(text); err != nil {
		return "", err
	}

	var parsed struct {
		Caption string `json:"caption"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse caption JSON: %w", err)
	}
	return truncate(strings.TrimSpace(parsed.Caption), PlatformLimit), nil
}

// Close releases the underlying client.
func (s *GeminiSource) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// validateCaptionJSON checks the model reply against the embedded schema.
func validateCaptionJSON(jsonContent string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(captionSchema),
		gojsonschema.NewStringLoader(jsonContent),
	)
	if err != nil {
		return fmt.Errorf("caption schema validation failed: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("caption JSON invalid: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// extractText joins the text parts of a Gemini response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
