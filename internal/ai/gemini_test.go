package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiNoKeyIsLocalFailure(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	p := NewGeminiProvider(srv.URL, "", "gemini-1.5-flash", "persona")
	if _, err := p.Generate(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error without api key")
	}
	if hits != 0 {
		t.Fatalf("missing key must not reach the network, got %d requests", hits)
	}
}

func TestGeminiZeroModelsSkipsGeneration(t *testing.T) {
	var genHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/models"):
			w.Write([]byte(`{"models":[]}`))
		default:
			genHits++
			w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	p := NewGeminiProvider(srv.URL, "test-key", "gemini-1.5-flash", "persona")
	if _, err := p.Generate(context.Background(), "hi"); err == nil {
		t.Fatalf("expected unavailable error when no models are listed")
	}
	if genHits != 0 {
		t.Fatalf("generate endpoint must not be called, got %d requests", genHits)
	}
}

func TestGeminiGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/models"):
			w.Write([]byte(`{"models":[{"name":"models/gemini-1.5-flash"}]}`))
		case strings.Contains(r.URL.Path, ":generateContent"):
			w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"You are not alone."}]}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewGeminiProvider(srv.URL, "test-key", "gemini-1.5-flash", "persona")
	text, err := p.Generate(context.Background(), "I feel low")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "You are not alone." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGeminiRateLimitIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/models") {
			w.Write([]byte(`{"models":[{"name":"models/gemini-1.5-flash"}]}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewGeminiProvider(srv.URL, "test-key", "gemini-1.5-flash", "persona")
	if _, err := p.Generate(context.Background(), "hi"); err == nil {
		t.Fatalf("429 must surface as an error for the chain to absorb")
	}
}

func TestGeminiMalformedBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/models") {
			w.Write([]byte(`{"models":[{"name":"models/gemini-1.5-flash"}]}`))
			return
		}
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider(srv.URL, "test-key", "gemini-1.5-flash", "persona")
	if _, err := p.Generate(context.Background(), "hi"); err == nil {
		t.Fatalf("missing text field must surface as an error")
	}
}
