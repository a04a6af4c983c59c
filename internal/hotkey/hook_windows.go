//go:build windows

package hotkey

import (
	"fmt"
	"log/slog"
	"runtime"
	"syscall"
	"time"
	"unsafe"
)

var vkNamed = map[string]uint32{
	"esc":       0x1B,
	"space":     0x20,
	"enter":     0x0D,
	"tab":       0x09,
	"backspace": 0x08,
	"insert":    0x2D,
	"delete":    0x2E,
	"home":      0x24,
	"end":       0x23,
	"pageup":    0x21,
	"pagedown":  0x22,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
	"add":       0x6B,
	"subtract":  0x6D,
}

// virtualKey maps a parsed key token to a Win32 virtual-key code.
func virtualKey(key string) (uint32, error) {
	if len(key) == 1 {
		ch := key[0]
		if ch >= 'a' && ch <= 'z' {
			return uint32(ch - 'a' + 'A'), nil
		}
		if ch >= '0' && ch <= '9' {
			return uint32(ch), nil
		}
	}
	if v, ok := vkNamed[key]; ok {
		return v, nil
	}
	if n, ok := functionKey(key); ok {
		return 0x70 + uint32(n-1), nil
	}
	if len(key) == len("numpad0") && key[:6] == "numpad" {
		return 0x60 + uint32(key[6]-'0'), nil
	}
	return 0, fmt.Errorf("no virtual key for %q", key)
}

type msgT struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt_x    int32
	Pt_y    int32
}

// startHook installs a WH_KEYBOARD_LL hook. Matching presses and their
// releases are swallowed so the foreground application never sees them.
func startHook(specs []Spec, h Handler, debug bool) (func(), error) {
	type candidate struct {
		spec Spec
		mods Mods
	}
	lookup := make(map[uint32][]candidate)
	for _, s := range specs {
		vk, err := virtualKey(s.Key)
		if err != nil {
			return nil, err
		}
		lookup[vk] = append(lookup[vk], candidate{spec: s, mods: s.Mods})
	}

	log := slog.With("component", "hotkey")
	events := pump(h, debug)
	errCh := make(chan error, 1)
	threadCh := make(chan uintptr, 1)

	user32 := syscall.NewLazyDLL("user32.dll")
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	procPostThreadMessageW := user32.NewProc("PostThreadMessageW")

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		procSetWindowsHookExW := user32.NewProc("SetWindowsHookExW")
		procUnhookWindowsHookEx := user32.NewProc("UnhookWindowsHookEx")
		procCallNextHookEx := user32.NewProc("CallNextHookEx")
		procGetMessageW := user32.NewProc("GetMessageW")
		procGetAsyncKeyState := user32.NewProc("GetAsyncKeyState")
		procGetCurrentThreadId := kernel32.NewProc("GetCurrentThreadId")

		const (
			WH_KEYBOARD_LL = 13
			WM_KEYDOWN     = 0x0100
			WM_KEYUP       = 0x0101
			WM_SYSKEYDOWN  = 0x0104
			WM_SYSKEYUP    = 0x0105
			LLKHF_INJECTED = 0x10
			VK_SHIFT       = 0x10
			VK_CONTROL     = 0x11
			VK_MENU        = 0x12
			VK_LWIN        = 0x5B
			VK_RWIN        = 0x5C
		)

		type KBDLLHOOKSTRUCT struct {
			vkCode      uint32
			scanCode    uint32
			flags       uint32
			time        uint32
			dwExtraInfo uintptr
		}

		held := func(vk uintptr) bool {
			st, _, _ := procGetAsyncKeyState.Call(vk)
			return st&0x8000 != 0
		}
		modsSatisfied := func(required Mods) bool {
			if required&ModCtrl != 0 && !held(VK_CONTROL) {
				return false
			}
			if required&ModAlt != 0 && !held(VK_MENU) {
				return false
			}
			if required&ModShift != 0 && !held(VK_SHIFT) {
				return false
			}
			if required&ModSuper != 0 && !held(VK_LWIN) && !held(VK_RWIN) {
				return false
			}
			return true
		}

		// vk -> name of the hotkey whose press was swallowed
		swallowed := make(map[uint32]Spec)

		callback := syscall.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
			if int32(nCode) < 0 {
				ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
				return ret
			}
			msg := uint32(wParam)
			k := (*KBDLLHOOKSTRUCT)(unsafe.Pointer(lParam))
			vk := k.vkCode

			if k.flags&LLKHF_INJECTED != 0 {
				ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
				return ret
			}

			switch msg {
			case WM_KEYDOWN, WM_SYSKEYDOWN:
				if s, ok := swallowed[vk]; ok {
					// auto-repeat of a held hotkey
					send(events, event{key: s.Name(), down: true})
					return 1
				}
				for _, c := range lookup[vk] {
					if modsSatisfied(c.mods) {
						swallowed[vk] = c.spec
						send(events, event{key: c.spec.Name(), down: true})
						return 1
					}
				}
			case WM_KEYUP, WM_SYSKEYUP:
				if s, ok := swallowed[vk]; ok {
					delete(swallowed, vk)
					send(events, event{key: s.Name(), down: false})
					return 1
				}
			}
			ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
			return ret
		})

		hook, _, _ := procSetWindowsHookExW.Call(uintptr(WH_KEYBOARD_LL), callback, 0, 0)
		if hook == 0 {
			errCh <- fmt.Errorf("SetWindowsHookExW failed")
			return
		}
		tid, _, _ := procGetCurrentThreadId.Call()
		threadCh <- tid
		log.Info("low-level hook installed (WH_KEYBOARD_LL)")
		errCh <- nil

		var m msgT
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(ret) == -1 {
				log.Error("GetMessageW error; exiting low-level hook loop")
				break
			}
			if ret == 0 {
				break
			}
		}
		procUnhookWindowsHookEx.Call(hook)
		close(events)
		log.Debug("low-level hook uninstalled")
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	case <-time.After(2 * time.Second):
		return nil, fmt.Errorf("timeout installing low-level hook")
	}
	tid := <-threadCh
	stop := func() {
		const WM_QUIT = 0x0012
		procPostThreadMessageW.Call(tid, WM_QUIT, 0, 0)
	}
	return stop, nil
}
