// Package inject synthesizes keyboard input into the foreground application.
package inject

import (
	"fmt"
	"runtime"
	"time"

	"github.com/micmonay/keybd_event"
)

// Keybd sends the paste combination through keybd_event.
type Keybd struct {
	kb keybd_event.KeyBonding
}

// NewKeybd prepares a key bonding for Ctrl+V (Cmd+V on macOS).
func NewKeybd() (*Keybd, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("keybd: %w", err)
	}
	if runtime.GOOS == "linux" {
		// uinput needs time before the virtual device accepts events.
		time.Sleep(2 * time.Second)
	}
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	kb.SetKeys(keybd_event.VK_V)
	return &Keybd{kb: kb}, nil
}

// Paste presses and releases the paste combination.
func (k *Keybd) Paste() error {
	if err := k.kb.Launching(); err != nil {
		return fmt.Errorf("keybd paste: %w", err)
	}
	return nil
}
