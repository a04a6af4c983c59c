package deliver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Mode selects which strategies run before clipboard-only.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModePaste     Mode = "paste"
	ModeType      Mode = "type"
	ModeClipboard Mode = "clipboard"
)

var modeOrder = []Mode{ModeAuto, ModePaste, ModeType, ModeClipboard}

// ParseMode parses a DELIVERY value.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range modeOrder {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown delivery mode %q", s)
}

// Surfaces are the OS input surfaces. Any injector may be nil when it failed
// to initialize; its strategy is then left out.
type Surfaces struct {
	Clipboard Clipboard
	Paste     PasteKeys
	KeyEvents PasteKeys
	Typer     Typer
}

// Settings tunes the strategies.
type Settings struct {
	PasteDelay       time.Duration
	TypeInterval     time.Duration
	RestoreClipboard bool
}

// Deliverer runs the chain of the current mode.
type Deliverer struct {
	mu     sync.Mutex
	mode   Mode
	chains map[Mode]*Chain
}

// NewDeliverer builds one chain per mode.
func NewDeliverer(mode Mode, s Surfaces, set Settings) *Deliverer {
	var paste, keyEvents, typeChars Strategy
	if s.Paste != nil {
		paste = NewSimulatedPaste(s.Clipboard, s.Paste, set.PasteDelay, set.RestoreClipboard)
	}
	if s.KeyEvents != nil {
		keyEvents = NewKeyEvents(s.Clipboard, s.KeyEvents, set.PasteDelay)
	}
	if s.Typer != nil {
		typeChars = &TypeChars{Typer: s.Typer, Interval: set.TypeInterval}
	}
	return &Deliverer{
		mode: mode,
		chains: map[Mode]*Chain{
			ModeAuto:      NewChain(s.Clipboard, paste, keyEvents, typeChars),
			ModePaste:     NewChain(s.Clipboard, paste),
			ModeType:      NewChain(s.Clipboard, typeChars),
			ModeClipboard: NewChain(s.Clipboard),
		},
	}
}

func (d *Deliverer) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Cycle advances to the next mode and returns it.
func (d *Deliverer) Cycle() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, m := range modeOrder {
		if m == d.mode {
			d.mode = modeOrder[(i+1)%len(modeOrder)]
			return d.mode
		}
	}
	d.mode = ModeAuto
	return d.mode
}

// Chain returns the chain for the current mode.
func (d *Deliverer) Chain() *Chain {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chains[d.mode]
}

func (d *Deliverer) Deliver(ctx context.Context, text string) Report {
	return d.Chain().Deliver(ctx, text)
}
