package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(&cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.MinSpeechSec != 0.5 {
		t.Fatalf("expected MIN_SPEECH_SEC 0.5, got %v", cfg.MinSpeechSec)
	}
	if cfg.AudioThreshold != 0.001 {
		t.Fatalf("expected AUDIO_THRESHOLD 0.001, got %v", cfg.AudioThreshold)
	}
	if cfg.Language != "" {
		t.Fatalf("expected auto-detect by default, got %q", cfg.Language)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"engine":        func(c *Config) { c.Engine = "cloud" },
		"http endpoint": func(c *Config) { c.Engine = "http"; c.APIEndpoint = "" },
		"delivery":      func(c *Config) { c.Delivery = "telepathy" },
		"frames":        func(c *Config) { c.FramesPerBuffer = 4096 },
		"threshold":     func(c *Config) { c.AudioThreshold = -1 },
		"same keys":     func(c *Config) { c.CycleKey = "F9" },
		"log level":     func(c *Config) { c.LogLevel = "loud" },
		"extra config":  func(c *Config) { c.ExtraConfig = "{not json" },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := Validate(&cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fv := BindFlags(fs)
	if err := fs.Parse([]string{"-language", "ru", "-audio-threshold", "0.01", "-vad-filter", "no"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !fv.AnySet() {
		t.Fatalf("expected AnySet")
	}

	cfg := DefaultConfig()
	cfg.PTTKey = "f8"
	ApplyFlags(&cfg, fv)

	if cfg.Language != "ru" {
		t.Fatalf("expected language ru, got %q", cfg.Language)
	}
	if cfg.AudioThreshold != 0.01 {
		t.Fatalf("expected threshold 0.01, got %v", cfg.AudioThreshold)
	}
	if cfg.VADFilter {
		t.Fatalf("expected vad filter off")
	}
	if cfg.PTTKey != "f8" {
		t.Fatalf("unset flag overwrote PTT_KEY: %q", cfg.PTTKey)
	}
}

func TestFlagsRejectBadValues(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	BindFlags(fs)
	if err := fs.Parse([]string{"-beam-size", "wide"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadAndSaveDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := SaveDefault(path); err != nil {
		t.Fatalf("SaveDefault failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"LANGUAGE":"ru","AUDIO_THRESHOLD":0.01}`), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Language != "ru" || cfg.AudioThreshold != 0.01 {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.PTTKey != "f9" {
		t.Fatalf("missing keys should keep defaults, got PTT_KEY %q", cfg.PTTKey)
	}
}
