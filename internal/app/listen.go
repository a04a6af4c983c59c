package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JumpAttacker/JWhisper/internal/asr"
	"github.com/JumpAttacker/JWhisper/internal/config"
	"github.com/JumpAttacker/JWhisper/internal/hotkey"
	"github.com/JumpAttacker/JWhisper/internal/notify"
	"github.com/JumpAttacker/JWhisper/internal/ptt"
	"github.com/JumpAttacker/JWhisper/internal/record"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// RunListenMode captures continuously and dictates while the push-to-talk
// key is held. It returns when ctx ends or the quit key is pressed. Errors
// are fatal startup failures.
func RunListenMode(ctx context.Context, cfg config.Config) error {
	log := slog.With("component", "main")
	cleanupOldTempFiles(config.TempDir(&cfg))

	specs, keys, err := keySpecs(cfg)
	if err != nil {
		return err
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("recognition engine: %w", err)
	}
	defer engine.Close()

	deliverer, err := NewDeliverer(cfg)
	if err != nil {
		return err
	}
	notifier := notify.Notifier{Beeps: cfg.Beep, Notifications: cfg.Notification}
	pipeline := NewPipeline(cfg, asr.NewDispatcher(engine, DecodeOptions(cfg)), deliverer, notifier)

	buf := record.NewBuffer(cfg.MaxRecordSec * record.SampleRate)
	src := record.NewPortAudioSource(cfg.InputDevice, cfg.FramesPerBuffer, cfg.RECORD_DEBUG)
	if err := src.Start(buf.OnFrame); err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	defer src.Close()

	ctrl := ptt.New(ctx, keys, buf, pipeline,
		ptt.WithDebug(cfg.HOTKEY_DEBUG),
		ptt.WithCycle(func() {
			m := deliverer.Cycle()
			log.Info("delivery mode changed", "mode", m, "chain", deliverer.Chain().Names())
			notifier.Notify(appName, "Delivery mode: "+string(m))
		}),
	)
	unlisten, err := hotkey.Listen(specs, ctrl, hotkey.Options{Hook: cfg.HotKeyHook, Debug: cfg.HOTKEY_DEBUG})
	if err != nil {
		ctrl.Stop()
		return fmt.Errorf("hotkey listener: %w", err)
	}
	stop := sync.OnceFunc(unlisten)
	defer stop()

	log.Info("ready", "hold", keys.Talk, "cycle", keys.Cycle, "quit", keys.Quit, "mode", deliverer.Mode())
	notifier.Notify(appName, fmt.Sprintf("Ready. Hold %s to dictate.", keys.Talk))

	if cfg.RECORD_DEBUG {
		go func() {
			t := time.NewTicker(10 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctrl.Done():
					return
				case <-t.C:
					src.Health()
				}
			}
		}()
	}

	<-ctrl.Done()
	log.Info("shutting down")
	stop()
	ctrl.Wait()
	return nil
}

// keySpecs parses the configured keys. Empty cycle and quit keys are skipped.
func keySpecs(cfg config.Config) ([]hotkey.Spec, ptt.Keys, error) {
	var specs []hotkey.Spec
	var keys ptt.Keys
	for _, k := range []struct {
		spec string
		dst  *ptt.Key
	}{
		{cfg.PTTKey, &keys.Talk},
		{cfg.CycleKey, &keys.Cycle},
		{cfg.QuitKey, &keys.Quit},
	} {
		if k.spec == "" {
			continue
		}
		s, err := hotkey.Parse(k.spec)
		if err != nil {
			return nil, ptt.Keys{}, fmt.Errorf("invalid hotkey '%s': %w", k.spec, err)
		}
		*k.dst = s.Name()
		specs = append(specs, s)
	}
	if keys.Talk == "" {
		return nil, ptt.Keys{}, fmt.Errorf("PTT_KEY is required")
	}
	if keys.Cycle != "" && keys.Cycle == keys.Talk {
		return nil, ptt.Keys{}, fmt.Errorf("CYCLE_KEY must differ from PTT_KEY (both are %s)", keys.Talk)
	}
	if keys.Quit != "" && (keys.Quit == keys.Talk || keys.Quit == keys.Cycle) {
		return nil, ptt.Keys{}, fmt.Errorf("QUIT_KEY must differ from PTT_KEY and CYCLE_KEY (%s)", keys.Quit)
	}
	return specs, keys, nil
}
