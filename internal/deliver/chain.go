// Package deliver puts recognized text into the foreground application by
// trying injection strategies in order until one succeeds.
package deliver

import (
	"context"
	"log/slog"
)

// Strategy names.
const (
	NameSimulatedPaste = "simulated-paste"
	NameKeyEvents      = "key-events"
	NameTypeCharacters = "type-characters"
	NameClipboardOnly  = "clipboard-only"
)

// Strategy is one way of delivering text. A nil error is success.
type Strategy interface {
	Name() string
	Deliver(ctx context.Context, text string) error
}

// Attempt records one strategy's outcome.
type Attempt struct {
	Name string
	Err  error
}

// Report describes a chain run. Strategy is the strategy that succeeded.
type Report struct {
	Strategy string
	Attempts []Attempt
}

// ClipboardOnly reports whether the text only reached the clipboard.
func (r Report) ClipboardOnly() bool { return r.Strategy == NameClipboardOnly }

// Chain tries strategies in order. Its last link is always clipboard-only,
// so a run always ends in success.
type Chain struct {
	strategies []Strategy
	log        *slog.Logger
}

// NewChain builds a chain of strategies followed by clipboard-only on clip.
// Nil strategies are skipped.
func NewChain(clip Clipboard, strategies ...Strategy) *Chain {
	c := &Chain{log: slog.With("component", "deliver")}
	for _, s := range strategies {
		if s != nil {
			c.strategies = append(c.strategies, s)
		}
	}
	c.strategies = append(c.strategies, &ClipboardOnly{Clip: clip})
	return c
}

// Names lists the strategies in order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Deliver runs the chain for non-empty text.
func (c *Chain) Deliver(ctx context.Context, text string) Report {
	var rep Report
	for _, s := range c.strategies {
		err := s.Deliver(ctx, text)
		rep.Attempts = append(rep.Attempts, Attempt{Name: s.Name(), Err: err})
		if err == nil {
			rep.Strategy = s.Name()
			c.log.Info("text delivered", "strategy", s.Name(), "chars", len([]rune(text)))
			return rep
		}
		c.log.Warn("delivery strategy failed", "strategy", s.Name(), "error", err)
	}
	return rep
}
