package chat

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/mannsakha/sakha-server/internal/fallback"
	"github.com/mannsakha/sakha-server/internal/ratelimit"
)

type fakeChain struct {
	text   string
	source string
	ok     bool
	calls  int
}

func (f *fakeChain) Resolve(ctx context.Context, message string) (string, string, bool) {
	_ = ctx
	_ = message
	f.calls++
	return f.text, f.source, f.ok
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func newTestService(chain ProviderChain, gate Gate) *Service {
	return NewService(chain, gate, fallback.NewEngine(rand.New(rand.NewSource(1))), nil)
}

func TestResolveRejectsEmptyMessage(t *testing.T) {
	chain := &fakeChain{ok: true, text: "hi", source: "gemini"}
	svc := newTestService(chain, allowAll{})

	for _, msg := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Resolve(context.Background(), "1.2.3.4", msg); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("Resolve(%q) error = %v, want ErrEmptyMessage", msg, err)
		}
	}
	if chain.calls != 0 {
		t.Fatalf("providers must not be consulted for invalid input")
	}
}

func TestResolveProviderSuccess(t *testing.T) {
	chain := &fakeChain{ok: true, text: "OK", source: "gemini"}
	svc := newTestService(chain, allowAll{})

	reply, err := svc.Resolve(context.Background(), "1.2.3.4", "I feel low")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if reply.Text != "OK" || reply.Source != "gemini" {
		t.Fatalf("got text=%q source=%q", reply.Text, reply.Source)
	}
	if reply.Category != "" {
		t.Fatalf("provider replies carry no category, got %q", reply.Category)
	}
	if reply.Timestamp.IsZero() {
		t.Fatalf("timestamp must be set")
	}
}

func TestResolveFallsBackToClassifier(t *testing.T) {
	chain := &fakeChain{ok: false}
	svc := newTestService(chain, allowAll{})

	reply, err := svc.Resolve(context.Background(), "1.2.3.4", "I feel so anxious about my exam")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if reply.Source != SourceFallback {
		t.Fatalf("source = %q, want fallback", reply.Source)
	}
	if reply.Category != fallback.CategoryAnxiety {
		t.Fatalf("category = %q, want anxiety", reply.Category)
	}
	if reply.Text == "" {
		t.Fatalf("fallback reply must be non-empty")
	}
}

func TestResolveRateLimitedSkipsProviders(t *testing.T) {
	chain := &fakeChain{ok: true, text: "OK", source: "gemini"}
	svc := newTestService(chain, denyAll{})

	const msg = "am I going too fast"
	reply, err := svc.Resolve(context.Background(), "1.2.3.4", msg)
	if err != nil {
		t.Fatalf("rate-limited request must still succeed, got %v", err)
	}
	if reply.Source != SourceFallback {
		t.Fatalf("source = %q, want fallback", reply.Source)
	}
	if chain.calls != 0 {
		t.Fatalf("providers must not be consulted when rate limited")
	}

	found := false
	for _, c := range fallback.RateLimitReplies(msg) {
		if reply.Text == c {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("rate-limit reply %q not in candidate set", reply.Text)
	}
}

func TestResolveEleventhRequestDegrades(t *testing.T) {
	chain := &fakeChain{ok: true, text: "OK", source: "gemini"}
	limiter := ratelimit.New(time.Minute, 10)
	svc := newTestService(chain, limiter)

	for i := 0; i < 10; i++ {
		reply, err := svc.Resolve(context.Background(), "9.9.9.9", "hello")
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if reply.Source != "gemini" {
			t.Fatalf("request %d source = %q, want gemini", i+1, reply.Source)
		}
	}

	reply, err := svc.Resolve(context.Background(), "9.9.9.9", "hello")
	if err != nil {
		t.Fatalf("11th request: %v", err)
	}
	if chain.calls != 10 {
		t.Fatalf("chain calls = %d, want 10: the 11th request must bypass providers", chain.calls)
	}

	found := false
	for _, c := range fallback.RateLimitReplies("hello") {
		if reply.Text == c {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("11th request must get the rate-limit canned reply, got %q", reply.Text)
	}
}

func TestResolveTotalResponseGuarantee(t *testing.T) {
	svc := newTestService(&fakeChain{ok: false}, allowAll{})

	for _, msg := range []string{"hello", "x", "I want to contribute", "random words here"} {
		reply, err := svc.Resolve(context.Background(), "", msg)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", msg, err)
		}
		if len(reply.Text) == 0 {
			t.Fatalf("Resolve(%q) produced an empty reply", msg)
		}
	}
}
