// Package notify plays acknowledgment tones and shows desktop notifications.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Tone is a beep frequency and duration.
type Tone struct {
	Freq     float64
	Duration int // ms
}

var (
	// Injected is played after text was typed or pasted.
	Injected = Tone{Freq: 800, Duration: 150}
	// ClipboardOnly is played when the text only reached the clipboard.
	ClipboardOnly = Tone{Freq: 600, Duration: 100}
)

// Notifier gates acknowledgments on the BEEP and NOTIFICATION settings.
type Notifier struct {
	Beeps         bool
	Notifications bool
}

// Beep plays t if beeps are enabled. Failures are logged and ignored.
func (n Notifier) Beep(t Tone) {
	if !n.Beeps {
		return
	}
	if err := beeep.Beep(t.Freq, t.Duration); err != nil {
		slog.Debug("beep failed", "component", "notify", "error", err)
	}
}

// Notify shows a desktop notification if enabled.
func (n Notifier) Notify(title, message string) {
	if !n.Notifications {
		return
	}
	Notify(title, message)
}

// Notify shows a desktop notification unconditionally.
func Notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		slog.Debug("notification failed", "component", "notify", "error", err)
	}
}
