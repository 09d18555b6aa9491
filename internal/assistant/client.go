// Package assistant generates draft milestone plans from a free-text
// event description using an OpenAI-compatible chat model. The model's
// output is advisory; everything it produces is parsed defensively and
// reviewed by the user before it touches an event or template.
package assistant

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are an experienced nonprofit event planner. Given a description of an event, produce a practical milestone plan.

Respond with exactly two blocks and nothing else:

<templateName>a short reusable name for this kind of event</templateName>
<milestones>
[
  {"title": "...", "description": "...", "category": "VENUE", "daysBeforeEvent": 90, "estimatedHours": 4}
]
</milestones>

Rules:
- category must be one of VENUE, CATERING, MARKETING, LOGISTICS, PERMITS, SPONSORS, VOLUNTEERS, GENERAL.
- daysBeforeEvent is a non-negative integer; larger means earlier.
- 8 to 15 milestones, ordered from earliest to latest.
- estimatedHours may be omitted when unclear.`

// Client calls the chat completion API to draft milestone plans.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates an assistant client. baseURL overrides the API host
// for compatible providers; empty means the default OpenAI endpoint.
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// GeneratePlan asks the model for a milestone plan for the described
// event and parses the response. Returns an error when the API call fails
// or the response cannot be parsed.
func (c *Client) GeneratePlan(ctx context.Context, description string) (*Plan, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: description},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty response")
	}
	return ParsePlan(resp.Choices[0].Message.Content)
}
