package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	name  string
	reply string
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(ctx context.Context, message string) (string, error) {
	_ = ctx
	_ = message
	p.calls++
	return p.reply, p.err
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("quota exceeded")}
	b := &fakeProvider{name: "b", reply: "OK"}
	cLast := &fakeProvider{name: "c", reply: "never"}

	chain := NewChain(nil, time.Second, a, b, cLast)

	text, source, ok := chain.Resolve(context.Background(), "hi")
	if !ok {
		t.Fatalf("expected a reply")
	}
	if source != "b" || text != "OK" {
		t.Fatalf("got text=%q source=%q, want OK from b", text, source)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("a and b should each be tried exactly once, got a=%d b=%d", a.calls, b.calls)
	}
	if cLast.calls != 0 {
		t.Fatalf("provider after the first success must not be called")
	}
}

func TestChainTreatsEmptyReplyAsAbsent(t *testing.T) {
	a := &fakeProvider{name: "a", reply: "   "}
	b := &fakeProvider{name: "b", reply: "real answer"}

	chain := NewChain(nil, time.Second, a, b)

	text, source, ok := chain.Resolve(context.Background(), "hi")
	if !ok || source != "b" || text != "real answer" {
		t.Fatalf("blank reply should fall through, got text=%q source=%q ok=%v", text, source, ok)
	}
}

func TestChainExhausted(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("down")}
	b := &fakeProvider{name: "b", err: errors.New("also down")}

	chain := NewChain(nil, time.Second, a, b)

	_, _, ok := chain.Resolve(context.Background(), "hi")
	if ok {
		t.Fatalf("chain with no working provider must report absence")
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("every provider should be tried exactly once, got a=%d b=%d", a.calls, b.calls)
	}
}

func TestChainNoRetrySameProvider(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("transient")}
	b := &fakeProvider{name: "b", reply: "OK"}

	chain := NewChain(nil, time.Second, a, b)
	chain.Resolve(context.Background(), "hi")

	if a.calls != 1 {
		t.Fatalf("a failed once and must not be retried, calls=%d", a.calls)
	}
}
