package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type CohereProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Persona string
	Client  *http.Client
}

type cohereGenReq struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type cohereGenResp struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
	Message string `json:"message,omitempty"`
}

func NewCohereProvider(baseURL, apiKey, model, persona string) *CohereProvider {
	if baseURL == "" {
		baseURL = "https://api.cohere.ai"
	}
	if model == "" {
		model = "command-light"
	}
	return &CohereProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Persona: persona,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *CohereProvider) Name() string { return "cohere" }

func (p *CohereProvider) Generate(ctx context.Context, message string) (string, error) {
	if p.Client == nil {
		return "", errors.New("cohere: http client is nil")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return "", errors.New("cohere: api key not configured")
	}

	reqBody := cohereGenReq{
		Model:       p.Model,
		Prompt:      fmt.Sprintf("%s\n\nRespond empathetically to: %s", p.Persona, message),
		MaxTokens:   100,
		Temperature: 0.7,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/v1/generate", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("cohere: status %d", resp.StatusCode)
	}

	var decoded cohereGenResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Message != "" {
		return "", errors.New(decoded.Message)
	}
	if len(decoded.Generations) == 0 {
		return "", errors.New("cohere: empty response")
	}
	return strings.TrimSpace(decoded.Generations[0].Text), nil
}
