// Package chat resolves one user message into exactly one reply: providers
// first, canned fallback when none of them answer.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mannsakha/sakha-server/internal/fallback"
)

// ErrEmptyMessage is the only user-visible validation failure the resolver
// produces.
var ErrEmptyMessage = errors.New("message is required")

// SourceFallback tags every reply that did not come from a provider,
// including the rate-limit degraded path.
const SourceFallback = "fallback"

// ProviderChain is the provider side of the pipeline.
type ProviderChain interface {
	Resolve(ctx context.Context, message string) (text, source string, ok bool)
}

// Gate admits or rejects a request before any provider is consulted.
type Gate interface {
	Allow(clientID string) bool
}

type Reply struct {
	Text      string
	Source    string
	Category  fallback.Category
	Timestamp time.Time
}

type Service struct {
	chain  ProviderChain
	gate   Gate
	engine *fallback.Engine
	logger *zap.Logger
}

func NewService(chain ProviderChain, gate Gate, engine *fallback.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = fallback.NewEngine(nil)
	}
	return &Service{chain: chain, gate: gate, engine: engine, logger: logger}
}

// Resolve runs Validate -> RateCheck -> ProviderChain -> ClassifierFallback.
// Every syntactically valid message gets a reply; the only error returned is
// ErrEmptyMessage.
func (s *Service) Resolve(ctx context.Context, clientID, message string) (*Reply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	if s.gate != nil && !s.gate.Allow(clientID) {
		s.logger.Info("rate limited, degrading to canned reply",
			zap.String("client", clientID))
		return &Reply{
			Text:      s.engine.RateLimited(message),
			Source:    SourceFallback,
			Timestamp: time.Now().UTC(),
		}, nil
	}

	if s.chain != nil {
		if text, source, ok := s.chain.Resolve(ctx, message); ok {
			return &Reply{
				Text:      text,
				Source:    source,
				Timestamp: time.Now().UTC(),
			}, nil
		}
	}

	text, cat := s.engine.Respond(message)
	return &Reply{
		Text:      text,
		Source:    SourceFallback,
		Category:  cat,
		Timestamp: time.Now().UTC(),
	}, nil
}
