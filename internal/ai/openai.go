package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client  *openai.Client
	model   string
	persona string
}

func NewOpenAIProvider(apiKey, model, persona string) *OpenAIProvider {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	p := &OpenAIProvider{model: model, persona: persona}
	if strings.TrimSpace(apiKey) != "" {
		p.client = openai.NewClient(apiKey)
	}
	return p
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, message string) (string, error) {
	if p.client == nil {
		return "", errors.New("openai: api key not configured")
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.persona},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
