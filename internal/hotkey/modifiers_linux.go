package hotkey

import "golang.design/x/hotkey"

// X11 maps Alt to Mod1 and Super to Mod4.
func modifiers(m Mods) []hotkey.Modifier {
	var out []hotkey.Modifier
	if m&ModCtrl != 0 {
		out = append(out, hotkey.ModCtrl)
	}
	if m&ModAlt != 0 {
		out = append(out, hotkey.Mod1)
	}
	if m&ModShift != 0 {
		out = append(out, hotkey.ModShift)
	}
	if m&ModSuper != 0 {
		out = append(out, hotkey.Mod4)
	}
	return out
}
