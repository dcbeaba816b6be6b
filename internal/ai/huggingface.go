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

// HuggingFaceProvider calls the hosted inference API for a conversational
// model. The API works without a token at a reduced quota, so a missing key
// does not disable it.
type HuggingFaceProvider struct {
	URL     string
	APIKey  string
	Persona string
	Client  *http.Client
}

type hfInferReq struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		MaxLength   int     `json:"max_length"`
		Temperature float64 `json:"temperature"`
		DoSample    bool    `json:"do_sample"`
	} `json:"parameters"`
}

type hfInferResp []struct {
	GeneratedText string `json:"generated_text"`
}

func NewHuggingFaceProvider(url, apiKey, persona string) *HuggingFaceProvider {
	if url == "" {
		url = "https://api-inference.huggingface.co/models/microsoft/DialoGPT-medium"
	}
	return &HuggingFaceProvider{
		URL:     url,
		APIKey:  apiKey,
		Persona: persona,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HuggingFaceProvider) Name() string { return "huggingface" }

func (p *HuggingFaceProvider) Generate(ctx context.Context, message string) (string, error) {
	if p.Client == nil {
		return "", errors.New("huggingface: http client is nil")
	}

	prompt := fmt.Sprintf("%s\n\nUser says %q. Respond with empathy and helpful advice.", p.Persona, message)

	var reqBody hfInferReq
	reqBody.Inputs = prompt
	reqBody.Parameters.MaxLength = 100
	reqBody.Parameters.Temperature = 0.7
	reqBody.Parameters.DoSample = true

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("huggingface: status %d", resp.StatusCode)
	}

	var decoded hfInferResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded) == 0 || decoded[0].GeneratedText == "" {
		return "", errors.New("huggingface: empty response")
	}

	// The model echoes the prompt back; strip it and reject stubs.
	reply := strings.TrimSpace(strings.TrimPrefix(decoded[0].GeneratedText, prompt))
	if len(reply) <= 10 {
		return "", errors.New("huggingface: reply too short")
	}
	return reply, nil
}
