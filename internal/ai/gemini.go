package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type GeminiProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Persona string
	Client  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenReq struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		TopK            int     `json:"topK"`
		TopP            float64 `json:"topP"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiGenResp struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type geminiModelsResp struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func NewGeminiProvider(baseURL, apiKey, model, persona string) *GeminiProvider {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Persona: persona,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

// listModels hits the capability endpoint. A key with no usable models means
// generation would fail anyway, so the caller skips the generate call.
func (p *GeminiProvider) listModels(ctx context.Context) (int, error) {
	u := fmt.Sprintf("%s/models?key=%s", strings.TrimRight(p.BaseURL, "/"), url.QueryEscape(p.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("gemini: list models status %d", resp.StatusCode)
	}
	var decoded geminiModelsResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, err
	}
	return len(decoded.Models), nil
}

func (p *GeminiProvider) Generate(ctx context.Context, message string) (string, error) {
	if p.Client == nil {
		return "", errors.New("gemini: http client is nil")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return "", errors.New("gemini: api key not configured")
	}

	n, err := p.listModels(ctx)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", errors.New("gemini: no models available")
	}

	var reqBody geminiGenReq
	reqBody.Contents = []geminiContent{{Parts: []geminiPart{{
		Text: fmt.Sprintf("%s\n\nUser: %s", p.Persona, message),
	}}}}
	reqBody.GenerationConfig.Temperature = 0.9
	reqBody.GenerationConfig.TopK = 1
	reqBody.GenerationConfig.TopP = 1
	reqBody.GenerationConfig.MaxOutputTokens = 2048

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(p.BaseURL, "/"), p.Model, url.QueryEscape(p.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errors.New("gemini: rate limited")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("gemini: %s", msg)
	}

	var decoded geminiGenResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: unexpected response structure")
	}
	return strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text), nil
}
