package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.design/x/hotkey/mainthread"

	"github.com/JumpAttacker/JWhisper/internal/app"
	"github.com/JumpAttacker/JWhisper/internal/config"
	"github.com/JumpAttacker/JWhisper/internal/notify"
)

const defaultConfigPath = "config.json"

func usage() {
	programName := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, `Usage: %s [options]

Push-to-talk dictation: hold the talk key, speak, release. The recognized text
is pasted or typed into the focused application.

Options:
[Modes]
  -config <string>
        config file (JSON). Without it ./config.json is read; if that does not
        exist and no flags are given, a default config.json is written.
  -file <string>
        transcribe an existing audio file (any format ffmpeg reads) and exit
  -output <string>
        transcript path for -file (default: <input name>.txt)
  -list-devices
        print audio input devices and exit
  -mic-test
        record a few seconds and report input levels
  -seconds <int>
        duration of -mic-test (default 3)

[Recognition]
  -engine <whisper|http>          default: whisper (build with -tags whisper)
  -model-path <string>            ggml model for the whisper engine
  -language <string>              forced language code, empty = auto-detect
  -prompt <string>                priming prompt, only used with -language
  -beam-size <int> -best-of <int> -temperature <float> -vad-filter <bool>
  -threads <int>

[HTTP engine]
  -api-endpoint -token -model -text-path -segments-path -extra-config
  -request-timeout <int> -enable-http2 <bool> -verify-ssl <bool>

[Capture and gate]
  -input-device <index|name>      default: system default input
  -frames-per-buffer <int>        160..480, default 320 (20 ms)
  -max-record-sec <int>           default 120
  -min-speech-sec <float>         default 0.5
  -audio-threshold <float>        default 0.001
  -normalize <bool>               default true

[Keys]
  -ptt-key <string>               default f9 (hold to talk)
  -cycle-key <string>             default f10 (auto -> paste -> type -> clipboard)
  -quit-key <string>              default none
  -hotkeyhook <bool>              use a low-level keyboard hook

  Keys are case-insensitive, modifiers joined with '+': ctrl, alt, shift, super.
  Examples: "f9", "ctrl+shift+space", "numpad0".

[Delivery]
  -delivery <auto|paste|type|clipboard>
  -paste-delay-ms <int> -type-interval-ms <int> -restore-clipboard <bool>
  -beep <bool> -notification <bool>

[Cache and logging]
  -cache-dir <string> -keep-cache <bool>
  -log-level <debug|info|warn|error>
  -record-debug <bool> -hotkey-debug <bool> -upload-debug <bool>

Precedence: flags > config file > defaults.

Examples:
  %s -language ru
  %s -engine http -api-endpoint https://api.example/v1/audio/transcriptions -token sk-xxx
  %s -file meeting.m4a -output meeting.txt
`, programName, programName, programName, programName)
}

func main() {
	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ExitOnError)
	fs.Usage = usage
	configPath := fs.String("config", "", "path to config JSON")
	filePath := fs.String("file", "", "transcribe an existing audio file")
	outputPath := fs.String("output", "", "transcript path for -file")
	listDevices := fs.Bool("list-devices", false, "list input devices")
	micTest := fs.Bool("mic-test", false, "record and report input levels")
	seconds := fs.Int("seconds", 3, "mic test duration")
	fv := config.BindFlags(fs)
	_ = fs.Parse(os.Args[1:])

	if *listDevices {
		if err := app.ListDevices(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "list devices: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, created, err := loadConfig(*configPath, fv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("default config created at %s. Please edit it and re-run.\n", defaultConfigPath)
		return
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	config.InitCacheDir(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *micTest:
		err = app.RunMicTest(ctx, cfg, *seconds, os.Stdout)
	case *filePath != "":
		err = app.RunFileMode(ctx, cfg, *filePath, *outputPath)
	default:
		// Registered hotkeys on macOS must be serviced from the main thread.
		mainthread.Init(func() { err = app.RunListenMode(ctx, cfg) })
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", "error", err)
		if *filePath == "" && !*micTest {
			notify.Notify("JWhisper", err.Error())
		}
		os.Exit(1)
	}
}

// loadConfig resolves the config file and applies flags.
// - -config given: load it, fail on error.
// - else ./config.json exists: load it.
// - else no flags set: write a default config.json and report created.
// - else: defaults overridden by flags.
func loadConfig(path string, fv *config.FlagValues) (config.Config, bool, error) {
	var cfg config.Config
	switch {
	case path != "":
		c, err := config.Load(path)
		if err != nil {
			return cfg, false, fmt.Errorf("failed to load '%s': %w", path, err)
		}
		cfg = c
	default:
		_, err := os.Stat(defaultConfigPath)
		switch {
		case err == nil:
			c, err := config.Load(defaultConfigPath)
			if err != nil {
				return cfg, false, fmt.Errorf("failed to load existing %s: %w", defaultConfigPath, err)
			}
			cfg = c
		case os.IsNotExist(err):
			if !fv.AnySet() {
				if err := config.SaveDefault(defaultConfigPath); err != nil {
					return cfg, false, fmt.Errorf("failed to write default config: %w", err)
				}
				return cfg, true, nil
			}
			cfg = config.DefaultConfig()
		default:
			return cfg, false, fmt.Errorf("failed to stat %s: %w", defaultConfigPath, err)
		}
	}
	config.ApplyFlags(&cfg, fv)
	if err := config.Validate(&cfg); err != nil {
		return cfg, false, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, false, nil
}
