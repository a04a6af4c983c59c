// Package clipboard exposes the system clipboard.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// System is the OS clipboard.
type System struct{}

// Supported reports whether a clipboard backend is available (on Linux this
// needs xclip, xsel or wl-clipboard).
func Supported() bool { return !clipboard.Unsupported }

func (System) ReadAll() (string, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return s, nil
}

func (System) WriteAll(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Memory is an in-process clipboard, used when no system backend exists.
type Memory struct {
	text string
}

func (m *Memory) ReadAll() (string, error) { return m.text, nil }

func (m *Memory) WriteAll(text string) error {
	m.text = text
	return nil
}
