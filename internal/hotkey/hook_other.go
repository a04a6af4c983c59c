//go:build !windows

package hotkey

import (
	"fmt"
	"log/slog"
	"strings"

	hook "github.com/robotn/gohook"
)

// libuiohook modifier mask bits.
const (
	maskShift = 1<<0 | 1<<4
	maskCtrl  = 1<<1 | 1<<5
	maskMeta  = 1<<2 | 1<<6
	maskAlt   = 1<<3 | 1<<7
)

var hookNames = map[string]string{
	"numpad0":  "num0",
	"numpad1":  "num1",
	"numpad2":  "num2",
	"numpad3":  "num3",
	"numpad4":  "num4",
	"numpad5":  "num5",
	"numpad6":  "num6",
	"numpad7":  "num7",
	"numpad8":  "num8",
	"numpad9":  "num9",
	"add":      "num+",
	"subtract": "num-",
	"pageup":   "page up",
	"pagedown": "page down",
}

func hookKeycode(key string) (uint16, error) {
	name := key
	if n, ok := hookNames[key]; ok {
		name = n
	}
	if code, ok := hook.Keycode[name]; ok {
		return code, nil
	}
	if code, ok := hook.Keycode[strings.ToUpper(name)]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("no keycode for %q", key)
}

func modsFromMask(mask uint16) Mods {
	var m Mods
	if mask&maskShift != 0 {
		m |= ModShift
	}
	if mask&maskCtrl != 0 {
		m |= ModCtrl
	}
	if mask&maskMeta != 0 {
		m |= ModSuper
	}
	if mask&maskAlt != 0 {
		m |= ModAlt
	}
	return m
}

// startHook listens to the global event stream through gohook. Presses are
// observed, not swallowed.
func startHook(specs []Spec, h Handler, debug bool) (func(), error) {
	lookup := make(map[uint16][]Spec)
	for _, s := range specs {
		code, err := hookKeycode(s.Key)
		if err != nil {
			return nil, err
		}
		lookup[code] = append(lookup[code], s)
	}

	log := slog.With("component", "hotkey")
	events := pump(h, debug)
	stream := hook.Start()
	log.Info("keyboard hook started (gohook)")

	go func() {
		defer close(events)
		held := make(map[uint16]Spec)
		for ev := range stream {
			switch ev.Kind {
			case hook.KeyHold, hook.KeyDown:
				if s, ok := held[ev.Keycode]; ok {
					send(events, event{key: s.Name(), down: true})
					continue
				}
				mods := modsFromMask(ev.Mask)
				for _, s := range lookup[ev.Keycode] {
					if mods&s.Mods == s.Mods {
						held[ev.Keycode] = s
						send(events, event{key: s.Name(), down: true})
						break
					}
				}
			case hook.KeyUp:
				if s, ok := held[ev.Keycode]; ok {
					delete(held, ev.Keycode)
					send(events, event{key: s.Name(), down: false})
				}
			}
		}
		log.Debug("keyboard hook stopped")
	}()

	return hook.End, nil
}
