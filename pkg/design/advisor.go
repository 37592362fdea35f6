package design

import (
	"context"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bannerlord/bannerlord/pkg/errors"
)

// systemPrompt frames the completion model as a banner design expert and
// asks for the structured JSON shape [ParseResponse] understands.
const systemPrompt = `You are an expert banner designer and creative director with deep knowledge of:
- Visual design principles (hierarchy, balance, contrast, alignment)
- Color theory and harmonious color schemes
- Typography and font pairing
- Layout and composition
- Brand design and marketing effectiveness

When a user provides a banner request, analyze their needs and provide:
1. **Design Concept**: Overall visual direction and mood
2. **Color Scheme**: 3-5 specific colors with hex codes that work together
3. **Typography**: Font style recommendations (serif/sans-serif, weight, size hierarchy)
4. **Layout**: Text positioning and alignment suggestions
5. **Image Generation Prompt**: A detailed, optimized prompt for generating the banner background/imagery using AI image generation with layout guidance

Be specific, creative, and practical. Focus on designs that are visually striking and achieve the user's goals.
Format your response as structured JSON with these keys: concept, colors, typography, layout, image_prompt, controlnet_hints.`

// Advisor is the external design-advice collaborator.
// Implementations may be slow or fail; the orchestrator treats advisor
// failures as advisory and degrades to [DefaultGuidance].
type Advisor interface {
	// Design returns the raw advisor response for a banner request.
	Design(ctx context.Context, userPrompt string) (string, error)

	// Refine returns a revised response given the original request and
	// user feedback on a previous design.
	Refine(ctx context.Context, originalPrompt, feedback string) (string, error)
}

// OpenAIAdvisor implements Advisor against an OpenAI-compatible chat
// completion endpoint.
type OpenAIAdvisor struct {
	client *openai.Client
	model  string
}

// OpenAIOption configures an OpenAIAdvisor.
type OpenAIOption func(*openai.ClientConfig, *OpenAIAdvisor)

// WithBaseURL points the advisor at a non-default (OpenAI-compatible)
// endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(cfg *openai.ClientConfig, _ *OpenAIAdvisor) {
		if url != "" {
			cfg.BaseURL = url
		}
	}
}

// WithModel overrides the completion model (default GPT-4).
func WithModel(model string) OpenAIOption {
	return func(_ *openai.ClientConfig, a *OpenAIAdvisor) {
		if model != "" {
			a.model = model
		}
	}
}

// WithHTTPClient supplies a pre-configured HTTP client (timeouts, TLS).
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(cfg *openai.ClientConfig, _ *OpenAIAdvisor) {
		if hc != nil {
			cfg.HTTPClient = hc
		}
	}
}

// NewOpenAIAdvisor creates an advisor using the given API key.
// Returns UNAUTHORIZED when the key is empty.
func NewOpenAIAdvisor(apiKey string, opts ...OpenAIOption) (*OpenAIAdvisor, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized,
			"OpenAI API key is required (set OPENAI_API_KEY or configure advisor.api_key)")
	}

	cfg := openai.DefaultConfig(apiKey)
	a := &OpenAIAdvisor{model: openai.GPT4}
	for _, opt := range opts {
		opt(&cfg, a)
	}
	a.client = openai.NewClientWithConfig(cfg)
	return a, nil
}

// Design implements Advisor.
func (a *OpenAIAdvisor) Design(ctx context.Context, userPrompt string) (string, error) {
	prompt := "Design a banner with the following requirements:\n\n" + userPrompt + `

Provide a complete design specification including concept, colors (with hex codes),
typography recommendations, layout/alignment suggestions, and a detailed image generation
prompt optimized for AI image generation with layout guidance.`

	return a.complete(ctx, prompt)
}

// Refine implements Advisor.
func (a *OpenAIAdvisor) Refine(ctx context.Context, originalPrompt, feedback string) (string, error) {
	prompt := "Original banner request: " + originalPrompt +
		"\n\nUser feedback/modification request: " + feedback +
		"\n\nPlease refine the banner design based on this feedback while maintaining design principles."

	return a.complete(ctx, prompt)
}

func (a *OpenAIAdvisor) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.7,
		MaxTokens:   2000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNetwork, err, "design advisor request failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ErrCodeNetwork, "design advisor returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
