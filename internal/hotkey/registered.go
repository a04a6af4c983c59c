package hotkey

import (
	"fmt"
	"log/slog"
	"time"

	"golang.design/x/hotkey"

	"github.com/JumpAttacker/JWhisper/internal/ptt"
)

// repeatGrace is how long a release is held back waiting for an X11
// autorepeat press of the same key.
const repeatGrace = 50 * time.Millisecond

var registeredNamed = map[string]hotkey.Key{
	"esc":    hotkey.KeyEscape,
	"space":  hotkey.KeySpace,
	"enter":  hotkey.KeyReturn,
	"tab":    hotkey.KeyTab,
	"delete": hotkey.KeyDelete,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
}

var registeredFunction = []hotkey.Key{
	hotkey.KeyF1, hotkey.KeyF2, hotkey.KeyF3, hotkey.KeyF4, hotkey.KeyF5,
	hotkey.KeyF6, hotkey.KeyF7, hotkey.KeyF8, hotkey.KeyF9, hotkey.KeyF10,
	hotkey.KeyF11, hotkey.KeyF12, hotkey.KeyF13, hotkey.KeyF14, hotkey.KeyF15,
	hotkey.KeyF16, hotkey.KeyF17, hotkey.KeyF18, hotkey.KeyF19, hotkey.KeyF20,
}

var registeredLetters = []hotkey.Key{
	hotkey.KeyA, hotkey.KeyB, hotkey.KeyC, hotkey.KeyD, hotkey.KeyE, hotkey.KeyF,
	hotkey.KeyG, hotkey.KeyH, hotkey.KeyI, hotkey.KeyJ, hotkey.KeyK, hotkey.KeyL,
	hotkey.KeyM, hotkey.KeyN, hotkey.KeyO, hotkey.KeyP, hotkey.KeyQ, hotkey.KeyR,
	hotkey.KeyS, hotkey.KeyT, hotkey.KeyU, hotkey.KeyV, hotkey.KeyW, hotkey.KeyX,
	hotkey.KeyY, hotkey.KeyZ,
}

var registeredDigits = []hotkey.Key{
	hotkey.Key0, hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4,
	hotkey.Key5, hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9,
}

func registeredKey(key string) (hotkey.Key, error) {
	if len(key) == 1 {
		switch ch := key[0]; {
		case ch >= 'a' && ch <= 'z':
			return registeredLetters[ch-'a'], nil
		case ch >= '0' && ch <= '9':
			return registeredDigits[ch-'0'], nil
		}
	}
	if k, ok := registeredNamed[key]; ok {
		return k, nil
	}
	if n, ok := functionKey(key); ok && n <= len(registeredFunction) {
		return registeredFunction[n-1], nil
	}
	return 0, fmt.Errorf("key %q cannot be registered as a global hotkey; set HOTKEY_HOOK=true", key)
}

// startRegistered registers each spec as an OS global hotkey and forwards
// its Keydown and Keyup channels.
func startRegistered(specs []Spec, h Handler, debug bool) (func(), error) {
	log := slog.With("component", "hotkey")
	events := pump(h, debug)

	var registered []*hotkey.Hotkey
	unregister := func() {
		for _, hk := range registered {
			_ = hk.Unregister()
		}
	}
	for _, s := range specs {
		key, err := registeredKey(s.Key)
		if err != nil {
			unregister()
			return nil, err
		}
		hk := hotkey.New(modifiers(s.Mods), key)
		if err := hk.Register(); err != nil {
			unregister()
			return nil, fmt.Errorf("register hotkey '%s': %w", s.Name(), err)
		}
		registered = append(registered, hk)
		if debug {
			log.Debug("registered hotkey", "key", s.Name())
		}
		go forward(hk, s, events)
	}
	log.Info("registered global hotkeys", "count", len(registered))
	return unregister, nil
}

func forward(hk *hotkey.Hotkey, s Spec, events chan<- event) {
	coalesce(s.Name(), hk.Keydown(), hk.Keyup(), events, repeatGrace)
}

// coalesce forwards down and up events for key. With autorepeat on, X11
// reports a held key as a stream of release/press pairs; a release followed
// by a press within grace is dropped together with that press.
func coalesce(key ptt.Key, down, up <-chan hotkey.Event, events chan<- event, grace time.Duration) {
	var timer *time.Timer
	var pending <-chan time.Time
	stopPending := func() bool {
		if pending == nil {
			return false
		}
		timer.Stop()
		pending = nil
		return true
	}
	defer func() {
		if stopPending() {
			send(events, event{key: key, down: false})
		}
	}()
	for {
		select {
		case _, ok := <-down:
			if !ok {
				return
			}
			if stopPending() {
				continue
			}
			send(events, event{key: key, down: true})
		case _, ok := <-up:
			if !ok {
				return
			}
			stopPending()
			timer = time.NewTimer(grace)
			pending = timer.C
		case <-pending:
			pending = nil
			send(events, event{key: key, down: false})
		}
	}
}
