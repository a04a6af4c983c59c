package deliver

import (
	"context"
	"log/slog"
	"time"
)

// Clipboard is read/write access to the clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// PasteKeys synthesizes the platform paste combination.
type PasteKeys interface {
	Paste() error
}

// Typer injects one Unicode character.
type Typer interface {
	TypeRune(r rune) error
}

// Paste writes text to the clipboard and synthesizes the paste combination.
type Paste struct {
	name    string
	Clip    Clipboard
	Keys    PasteKeys
	Delay   time.Duration
	Restore bool
}

// NewSimulatedPaste pastes via the primary key injector.
func NewSimulatedPaste(clip Clipboard, keys PasteKeys, delay time.Duration, restore bool) *Paste {
	return &Paste{name: NameSimulatedPaste, Clip: clip, Keys: keys, Delay: delay, Restore: restore}
}

// NewKeyEvents pastes via a second key injector.
func NewKeyEvents(clip Clipboard, keys PasteKeys, delay time.Duration) *Paste {
	return &Paste{name: NameKeyEvents, Clip: clip, Keys: keys, Delay: delay}
}

func (p *Paste) Name() string { return p.name }

func (p *Paste) Deliver(ctx context.Context, text string) error {
	var prev string
	var havePrev bool
	if p.Restore {
		if s, err := p.Clip.ReadAll(); err == nil {
			prev, havePrev = s, true
		}
	}
	if err := p.Clip.WriteAll(text); err != nil {
		return err
	}
	if err := sleep(ctx, p.Delay); err != nil {
		return err
	}
	if err := p.Keys.Paste(); err != nil {
		return err
	}
	if havePrev {
		// The target reads the clipboard asynchronously after the keystroke.
		if err := sleep(ctx, p.Delay); err == nil {
			_ = p.Clip.WriteAll(prev)
		}
	}
	return nil
}

// TypeChars injects text one character at a time.
type TypeChars struct {
	Typer    Typer
	Interval time.Duration
}

func (t *TypeChars) Name() string { return NameTypeCharacters }

func (t *TypeChars) Deliver(ctx context.Context, text string) error {
	for i, r := range []rune(text) {
		if i > 0 {
			if err := sleep(ctx, t.Interval); err != nil {
				return err
			}
		}
		if err := t.Typer.TypeRune(r); err != nil {
			return err
		}
	}
	return nil
}

// ClipboardOnly leaves the text on the clipboard for a manual paste. It
// always succeeds; a failed write is only logged.
type ClipboardOnly struct {
	Clip Clipboard
}

func (c *ClipboardOnly) Name() string { return NameClipboardOnly }

func (c *ClipboardOnly) Deliver(ctx context.Context, text string) error {
	if c.Clip == nil {
		slog.Warn("no clipboard available, text not delivered", "component", "deliver")
		return nil
	}
	if err := c.Clip.WriteAll(text); err != nil {
		slog.Warn("clipboard write failed", "component", "deliver", "error", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
