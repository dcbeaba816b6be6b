package ai

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Chain walks an ordered list of providers and returns the first non-empty
// reply. Provider failures never leave this package: they are logged and the
// chain moves on. Providers are tried strictly in order, one at a time, so a
// later provider is never paid for when an earlier one succeeds.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *zap.Logger
}

func NewChain(logger *zap.Logger, timeout time.Duration, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// Resolve returns the reply text and the name of the provider that produced
// it. ok is false when every provider came up empty.
func (c *Chain) Resolve(ctx context.Context, message string) (text, source string, ok bool) {
	for _, p := range c.providers {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		reply, err := p.Generate(cctx, message)
		cancel()

		if err != nil {
			c.logger.Warn("provider unavailable",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		reply = strings.TrimSpace(reply)
		if reply == "" {
			c.logger.Warn("provider returned empty reply",
				zap.String("provider", p.Name()))
			continue
		}
		return reply, p.Name(), true
	}
	return "", "", false
}
