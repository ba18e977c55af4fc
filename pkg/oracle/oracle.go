// Package oracle asks an OpenAI-compatible completion service for status
// fields about a title and defensively parses whatever text comes back.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"entracker/pkg/media"
)

var (
	// ErrUnavailable indicates the completion service could not be reached.
	ErrUnavailable = errors.New("oracle unavailable")
	// ErrMalformedOutput indicates the completion text held no parseable
	// JSON object. Recoverable; the caller reports it and moves on.
	ErrMalformedOutput = errors.New("oracle returned malformed output")
)

const DefaultModel = "sonar-pro"

type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api   completionAPI
	model string
}

// New creates a synthesizer against an OpenAI-compatible endpoint.
func New(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Synthesize sends a single non-streaming completion request for the title
// and extracts the status fields from the response text.
func (c *Client) Synthesize(ctx context.Context, t media.Type, name string) (media.Fields, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: promptFor(t, name),
	})
	if err != nil {
		return media.Fields{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return media.Fields{}, fmt.Errorf("%w: empty completion", ErrMalformedOutput)
	}

	return parseFields(resp.Choices[0].Message.Content)
}

func promptFor(t media.Type, name string) []openai.ChatCompletionMessage {
	system := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: "You are a media information assistant. Your response MUST strictly be a JSON object with specific keys and formats. Do not include any text, notes, or explanations outside of the final JSON object.",
	}

	user := fmt.Sprintf("Get details for the %s: %q. ", t, name)
	if t.IsMovie() {
		user += `JSON keys: "next_part" (string, "Yes" or "No"), "expected_on" (string, "Month Year" if the next release is in the future, or "Available" if it has already been released, or "N/A").`
	} else {
		user += `JSON keys: "series_status" (string, "On Going" or "Completed"), "next_season" (string, "Yes" or "No"), "expected_on" (string, "Month Year" or "Available" or "N/A").`
	}

	return []openai.ChatCompletionMessage{
		system,
		{Role: openai.ChatMessageRoleUser, Content: user},
	}
}

type rawFields struct {
	SeriesStatus string `json:"series_status"`
	NextSeason   string `json:"next_season"`
	NextPart     string `json:"next_part"`
	ExpectedOn   string `json:"expected_on"`
}

func parseFields(content string) (media.Fields, error) {
	span, err := ExtractJSON(content)
	if err != nil {
		return media.Fields{}, err
	}

	var raw rawFields
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return media.Fields{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	fields := media.Fields{
		NextSeason: raw.NextSeason,
		NextPart:   raw.NextPart,
		ExpectedOn: raw.ExpectedOn,
	}
	if raw.SeriesStatus != "" {
		fields.SeriesStatus = NormalizeStatus(raw.SeriesStatus)
	}

	return fields, nil
}
