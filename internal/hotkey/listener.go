// Package hotkey turns global key presses into push-to-talk key events.
package hotkey

import (
	"log/slog"

	"github.com/JumpAttacker/JWhisper/internal/ptt"
)

// Handler receives key events under the Spec.Name of the matched hotkey.
type Handler interface {
	OnKeyDown(key ptt.Key)
	OnKeyUp(key ptt.Key)
}

// Options selects the listener backend.
type Options struct {
	// Hook uses a low-level keyboard hook instead of registered hotkeys.
	Hook  bool
	Debug bool
}

// Listen starts listening for specs. The returned function stops the listener.
// An error here is fatal for the caller: without input there is nothing to do.
func Listen(specs []Spec, h Handler, opts Options) (func(), error) {
	if opts.Hook {
		return startHook(specs, h, opts.Debug)
	}
	return startRegistered(specs, h, opts.Debug)
}

type event struct {
	key  ptt.Key
	down bool
}

// pump delivers events to h in order on its own goroutine, so OS callbacks
// never wait on the handler.
func pump(h Handler, debug bool) chan<- event {
	ch := make(chan event, 64)
	log := slog.With("component", "hotkey")
	go func() {
		for ev := range ch {
			if debug {
				log.Debug("key event", "key", ev.key, "down", ev.down)
			}
			if ev.down {
				h.OnKeyDown(ev.key)
			} else {
				h.OnKeyUp(ev.key)
			}
		}
	}()
	return ch
}

// send drops a press if the pump is full rather than stall the OS hook.
// Releases are never dropped: a lost release would leave capture running.
func send(ch chan<- event, ev event) {
	if !ev.down {
		ch <- ev
		return
	}
	select {
	case ch <- ev:
	default:
		slog.Warn("hotkey event dropped", "component", "hotkey", "key", ev.key)
	}
}
