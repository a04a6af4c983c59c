package hotkey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JumpAttacker/JWhisper/internal/ptt"
)

// Mods is a modifier mask. The bit values match the Win32 MOD_* flags.
type Mods uint32

const (
	ModAlt   Mods = 0x0001
	ModCtrl  Mods = 0x0002
	ModShift Mods = 0x0004
	ModSuper Mods = 0x0008
)

// Spec is a parsed hotkey: modifiers plus one key token such as "f9",
// "space", "a" or "numpad0".
type Spec struct {
	Mods Mods
	Key  string
}

// Name is the canonical form, e.g. "ctrl+shift+space". Listeners report
// events under this name.
func (s Spec) Name() ptt.Key {
	var parts []string
	if s.Mods&ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if s.Mods&ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if s.Mods&ModShift != 0 {
		parts = append(parts, "shift")
	}
	if s.Mods&ModSuper != 0 {
		parts = append(parts, "super")
	}
	parts = append(parts, s.Key)
	return ptt.Key(strings.Join(parts, "+"))
}

var aliases = map[string]string{
	"escape":     "esc",
	"return":     "enter",
	"num0":       "numpad0",
	"num1":       "numpad1",
	"num2":       "numpad2",
	"num3":       "numpad3",
	"num4":       "numpad4",
	"num5":       "numpad5",
	"num6":       "numpad6",
	"num7":       "numpad7",
	"num8":       "numpad8",
	"num9":       "numpad9",
	"kp0":        "numpad0",
	"kp1":        "numpad1",
	"kp2":        "numpad2",
	"kp3":        "numpad3",
	"kp4":        "numpad4",
	"kp5":        "numpad5",
	"kp6":        "numpad6",
	"kp7":        "numpad7",
	"kp8":        "numpad8",
	"kp9":        "numpad9",
	"plus":       "add",
	"kpadd":      "add",
	"minus":      "subtract",
	"kpsubtract": "subtract",
}

var named = map[string]bool{
	"esc": true, "space": true, "enter": true, "tab": true, "backspace": true,
	"insert": true, "delete": true, "home": true, "end": true, "pageup": true,
	"pagedown": true, "left": true, "up": true, "right": true, "down": true,
	"add": true, "subtract": true,
}

// Parse accepts strings like "F9", "alt+q", "ctrl+shift+space", "numpad0".
func Parse(s string) (Spec, error) {
	if strings.TrimSpace(s) == "" {
		return Spec{}, fmt.Errorf("empty key")
	}
	parts := strings.Split(s, "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.ToLower(parts[i]))
	}
	var spec Spec
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "alt", "menu", "option":
			spec.Mods |= ModAlt
		case "ctrl", "control":
			spec.Mods |= ModCtrl
		case "shift":
			spec.Mods |= ModShift
		case "win", "meta", "super", "cmd":
			spec.Mods |= ModSuper
		default:
			return Spec{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
	}

	key := parts[len(parts)-1]
	if a, ok := aliases[key]; ok {
		key = a
	}
	switch {
	case len(key) == 1 && (key[0] >= 'a' && key[0] <= 'z' || key[0] >= '0' && key[0] <= '9'):
	case named[key]:
	case strings.HasPrefix(key, "numpad") && len(key) == len("numpad0") && key[6] >= '0' && key[6] <= '9':
	case strings.HasPrefix(key, "f"):
		n, err := strconv.Atoi(key[1:])
		if err != nil || n < 1 || n > 24 {
			return Spec{}, fmt.Errorf("unsupported key token: %s", s)
		}
	default:
		return Spec{}, fmt.Errorf("unsupported key token: %s", s)
	}
	spec.Key = key
	return spec, nil
}

// functionKey returns n for "fN".
func functionKey(key string) (int, bool) {
	if !strings.HasPrefix(key, "f") {
		return 0, false
	}
	n, err := strconv.Atoi(key[1:])
	if err != nil || n < 1 || n > 24 {
		return 0, false
	}
	return n, true
}
