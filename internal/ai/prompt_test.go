package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Every provider prepends the same persona preamble to its prompt.

func TestHuggingFacePromptCarriesPersona(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		var req hfInferReq
		if err := json.Unmarshal(b, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		resp := hfInferResp{{GeneratedText: req.Inputs + " Here is a long supportive reply for you."}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider(srv.URL, "", "shared persona preamble")
	reply, err := p.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(gotBody, "shared persona preamble") {
		t.Fatalf("prompt missing persona, body = %s", gotBody)
	}
	if strings.Contains(reply, "shared persona preamble") {
		t.Fatalf("prompt echo not stripped from reply %q", reply)
	}
}

func TestCoherePromptCarriesPersona(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req cohereGenReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(cohereGenResp{
			Generations: []struct {
				Text string `json:"text"`
			}{{Text: "I hear you."}},
		})
	}))
	defer srv.Close()

	p := NewCohereProvider(srv.URL, "test-key", "", "shared persona preamble")
	if _, err := p.Generate(context.Background(), "hello"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(gotPrompt, "shared persona preamble") {
		t.Fatalf("prompt does not start with persona: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "hello") {
		t.Fatalf("prompt missing user message: %q", gotPrompt)
	}
}
