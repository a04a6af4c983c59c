package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JumpAttacker/JWhisper/internal/asr"
	"github.com/JumpAttacker/JWhisper/internal/asr/whispercpp"
	"github.com/JumpAttacker/JWhisper/internal/clipboard"
	"github.com/JumpAttacker/JWhisper/internal/config"
	"github.com/JumpAttacker/JWhisper/internal/deliver"
	"github.com/JumpAttacker/JWhisper/internal/inject"
)

// NewEngine creates the recognition backend selected by ENGINE.
func NewEngine(cfg config.Config) (asr.Engine, error) {
	switch strings.ToLower(cfg.Engine) {
	case "http":
		e, err := asr.NewHTTPEngine(cfg, asr.NewHTTPClient(cfg))
		if err != nil {
			return nil, err
		}
		return e, nil
	case "whisper":
		e, err := whispercpp.New(cfg.ModelPath, cfg.Threads, cfg.AudioThreshold)
		if err != nil {
			return nil, err
		}
		slog.Info("whisper model loaded", "component", "asr", "model", cfg.ModelPath)
		return e, nil
	}
	return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
}

// NewDeliverer sets up the OS input surfaces. An injector that fails to
// initialize is left out of the chain; the clipboard falls back to memory.
func NewDeliverer(cfg config.Config) (*deliver.Deliverer, error) {
	mode, err := deliver.ParseMode(cfg.Delivery)
	if err != nil {
		return nil, err
	}
	log := slog.With("component", "deliver")

	var clip deliver.Clipboard = clipboard.System{}
	if !clipboard.Supported() {
		log.Warn("no system clipboard backend (install xclip, xsel or wl-clipboard); using in-process clipboard")
		clip = &clipboard.Memory{}
	}
	s := deliver.Surfaces{
		Clipboard: clip,
		KeyEvents: inject.Robot{},
		Typer:     inject.Robot{},
	}
	if kb, err := inject.NewKeybd(); err != nil {
		log.Warn("simulated paste unavailable", "error", err)
	} else {
		s.Paste = kb
	}

	d := deliver.NewDeliverer(mode, s, deliver.Settings{
		PasteDelay:       ms(cfg.PasteDelayMs),
		TypeInterval:     ms(cfg.TypeIntervalMs),
		RestoreClipboard: cfg.RestoreClipboard,
	})
	log.Info("delivery ready", "mode", mode, "chain", d.Chain().Names())
	return d, nil
}
