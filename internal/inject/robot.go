package inject

import (
	"fmt"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// Robot injects input through robotgo.
type Robot struct{}

func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

// Paste taps the paste combination.
func (Robot) Paste() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("robotgo paste: %v", r)
		}
	}()
	if err := robotgo.KeyTap("v", pasteModifier()); err != nil {
		return fmt.Errorf("robotgo paste: %w", err)
	}
	return nil
}

// TypeRune injects a single Unicode character.
func (Robot) TypeRune(r rune) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("robotgo type %q: %v", r, p)
		}
	}()
	robotgo.TypeStr(string(r))
	return nil
}
