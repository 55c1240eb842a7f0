package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gpt-4o-mini"

// SystemPrompt instructs the model to write segment advisories
const SystemPrompt = `You are a road safety advisor for commercial and private drivers. Your task is to turn a scored route segment into short, practical guidance.

Instructions:
- Use only the hazards listed in the input. Do not invent hazards.
- Write for a driver about to enter the segment.
- Keep the summary to one sentence, max 160 chars, no coordinates.
- Give 2 to 6 precautions, each an imperative sentence, most important first.
- For HIGH risk segments the first precaution must tell the driver to reduce speed.

Hazard kinds:
- sharp_turns: magnitude is the number of sharp turns in the segment
- elevation: magnitude is the elevation change in meters
- weather: current adverse weather near the segment
- road_quality: magnitude is how far below a perfect 10 the road surface scores

Return valid JSON object with these exact fields:
- summary (string)
- precautions (array of strings)`

// AdvisorySchema defines the JSON schema for structured advisory output
var AdvisorySchema = openai.ChatCompletionResponseFormatJSONSchema{
	Name:   "segment_advisory",
	Strict: true,
	Schema: json.RawMessage(`{
		"type": "object",
		"properties": {
			"summary": {
				"type": "string",
				"description": "One sentence describing the hazards of the segment"
			},
			"precautions": {
				"type": "array",
				"items": { "type": "string" },
				"description": "Imperative driver precautions, most important first"
			}
		},
		"required": ["summary", "precautions"],
		"additionalProperties": false
	}`),
}

// OpenAIAdvisor generates advisories with the OpenAI chat completions API
type OpenAIAdvisor struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

type structuredAdvisory struct {
	Summary     string   `json:"summary"`
	Precautions []string `json:"precautions"`
}

// NewOpenAIAdvisor creates an OpenAI-backed advisor. An empty baseURL uses
// the public API.
func NewOpenAIAdvisor(apiKey, model, baseURL string) *OpenAIAdvisor {
	if model == "" {
		model = DefaultModel
	}
	if apiKey == "" {
		return &OpenAIAdvisor{model: model, now: time.Now}
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIAdvisor{
		client: openai.NewClientWithConfig(config),
		model:  model,
		now:    time.Now,
	}
}

// Advise implements Advisor
func (a *OpenAIAdvisor) Advise(ctx context.Context, req Request) (Advisory, error) {
	if a.client == nil {
		return Advisory{}, errors.New("OpenAI client not initialized - missing API key")
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt(req),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type:       openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &AdvisorySchema,
		},
		Temperature: 0.3,
		MaxTokens:   600,
	})
	if err != nil {
		return Advisory{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Advisory{}, errors.New("no response from OpenAI API")
	}

	var structured structuredAdvisory
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &structured); err != nil {
		return Advisory{}, fmt.Errorf("failed to parse OpenAI JSON response: %w", err)
	}

	structured.Summary = strings.TrimSpace(structured.Summary)
	if structured.Summary == "" || len(structured.Precautions) == 0 {
		return Advisory{}, errors.New("OpenAI response missing summary or precautions")
	}

	return Advisory{
		Level:       req.Level,
		Summary:     structured.Summary,
		Precautions: structured.Precautions,
		Source:      SourceOpenAI,
		GeneratedAt: a.now(),
	}, nil
}

func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk level: %s (score %.2f)\n", req.Level, req.Score)
	fmt.Fprintf(&b, "Terrain: %s\n", req.Terrain)
	fmt.Fprintf(&b, "Segment length: %.1f km\n", req.LengthMeters/1000)
	b.WriteString("Hazards:\n")
	for _, f := range req.Factors {
		fmt.Fprintf(&b, "- %s: magnitude %.1f", f.Kind, f.Magnitude)
		if f.Detail.Weather != nil {
			fmt.Fprintf(&b, " (%s, %.0fC)", f.Detail.Weather.Description, f.Detail.Weather.TemperatureC)
		}
		b.WriteString("\n")
	}
	return b.String()
}
