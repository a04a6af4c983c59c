package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds configurable parameters.
type Config struct {
	Engine      string  `json:"ENGINE"`
	ModelPath   string  `json:"MODEL_PATH"`
	Language    string  `json:"LANGUAGE"`
	Prompt      string  `json:"PROMPT"`
	BeamSize    int     `json:"BEAM_SIZE"`
	BestOf      int     `json:"BEST_OF"`
	Temperature float64 `json:"TEMPERATURE"`
	VADFilter   bool    `json:"VAD_FILTER"`
	Threads     int     `json:"THREADS"`

	APIEndpoint    string `json:"API_ENDPOINT"`
	Token          string `json:"TOKEN"`
	Model          string `json:"MODEL"`
	TEXTPath       string `json:"TEXT_PATH"`
	SegmentsPath   string `json:"SEGMENTS_PATH"`
	ExtraConfig    string `json:"ExtraConfig"`
	RequestTimeout int    `json:"REQUEST_TIMEOUT"`
	EnableHTTP2    bool   `json:"ENABLE_HTTP2"`
	VerifySSL      bool   `json:"VERIFY_SSL"`

	InputDevice     string `json:"INPUT_DEVICE"`
	FramesPerBuffer int    `json:"FRAMES_PER_BUFFER"`
	MaxRecordSec    int    `json:"MAX_RECORD_SEC"`

	MinSpeechSec   float64 `json:"MIN_SPEECH_SEC"`
	AudioThreshold float64 `json:"AUDIO_THRESHOLD"`
	Normalize      bool    `json:"NORMALIZE"`

	HotKeyHook bool   `json:"HOTKEY_HOOK"`
	PTTKey     string `json:"PTT_KEY"`
	CycleKey   string `json:"CYCLE_KEY"`
	QuitKey    string `json:"QUIT_KEY"`

	Delivery         string `json:"DELIVERY"`
	PasteDelayMs     int    `json:"PASTE_DELAY_MS"`
	TypeIntervalMs   int    `json:"TYPE_INTERVAL_MS"`
	RestoreClipboard bool   `json:"RESTORE_CLIPBOARD"`

	CacheDir     string `json:"CACHE_DIR"`
	KeepCache    bool   `json:"KEEP_CACHE"`
	Beep         bool   `json:"BEEP"`
	Notification bool   `json:"NOTIFICATION"`

	LogLevel     string `json:"LOG_LEVEL"`
	RECORD_DEBUG bool   `json:"RECORD_DEBUG"`
	HOTKEY_DEBUG bool   `json:"HOTKEY_DEBUG"`
	UPLOAD_DEBUG bool   `json:"UPLOAD_DEBUG"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Engine:      "whisper",
		ModelPath:   "models/ggml-small.bin",
		Language:    "",
		Prompt:      "",
		BeamSize:    5,
		BestOf:      5,
		Temperature: 0,
		VADFilter:   true,
		Threads:     0,

		APIEndpoint:    "",
		Token:          "",
		Model:          "",
		TEXTPath:       "text",
		SegmentsPath:   "segments",
		ExtraConfig:    "",
		RequestTimeout: 30,
		EnableHTTP2:    true,
		VerifySSL:      true,

		InputDevice:     "",
		FramesPerBuffer: 320,
		MaxRecordSec:    120,

		MinSpeechSec:   0.5,
		AudioThreshold: 0.001,
		Normalize:      true,

		HotKeyHook: false,
		PTTKey:     "f9",
		CycleKey:   "f10",
		QuitKey:    "",

		Delivery:         "auto",
		PasteDelayMs:     100,
		TypeIntervalMs:   10,
		RestoreClipboard: false,

		CacheDir:     "",
		KeepCache:    false,
		Beep:         true,
		Notification: false,

		LogLevel:     "info",
		RECORD_DEBUG: false,
		HOTKEY_DEBUG: false,
		UPLOAD_DEBUG: false,
	}
}

// Load loads config from JSON file if provided.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveDefault writes a default config JSON to the provided path.
func SaveDefault(path string) error {
	cfg := DefaultConfig()
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate verifies config fields and returns an error if any value is invalid.
func Validate(cfg *Config) error {
	switch strings.ToLower(cfg.Engine) {
	case "whisper":
		if cfg.ModelPath == "" {
			return fmt.Errorf("MODEL_PATH is required for ENGINE=whisper")
		}
	case "http":
		if cfg.APIEndpoint == "" {
			return fmt.Errorf("API_ENDPOINT is required for ENGINE=http")
		}
	default:
		return fmt.Errorf("invalid ENGINE: %s (allowed: whisper, http)", cfg.Engine)
	}
	if cfg.BeamSize < 1 {
		return fmt.Errorf("invalid BEAM_SIZE: %d (must be >= 1)", cfg.BeamSize)
	}
	if cfg.BestOf < 1 {
		return fmt.Errorf("invalid BEST_OF: %d (must be >= 1)", cfg.BestOf)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 1 {
		return fmt.Errorf("invalid TEMPERATURE: %v (allowed 0..1)", cfg.Temperature)
	}
	if cfg.Threads < 0 {
		return fmt.Errorf("invalid THREADS: %d (must be >= 0)", cfg.Threads)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT: %d (must be > 0)", cfg.RequestTimeout)
	}

	// 10..30 ms at 16 kHz keeps the capture callback cadence real-time.
	if cfg.FramesPerBuffer < 160 || cfg.FramesPerBuffer > 480 {
		return fmt.Errorf("invalid FRAMES_PER_BUFFER: %d (allowed 160..480)", cfg.FramesPerBuffer)
	}
	if cfg.MaxRecordSec <= 0 {
		return fmt.Errorf("invalid MAX_RECORD_SEC: %d (must be > 0)", cfg.MaxRecordSec)
	}
	if cfg.MinSpeechSec < 0 {
		return fmt.Errorf("invalid MIN_SPEECH_SEC: %v (must be >= 0)", cfg.MinSpeechSec)
	}
	if cfg.AudioThreshold < 0 || cfg.AudioThreshold >= 1 {
		return fmt.Errorf("invalid AUDIO_THRESHOLD: %v (allowed 0..1)", cfg.AudioThreshold)
	}

	if strings.TrimSpace(cfg.PTTKey) == "" {
		return fmt.Errorf("PTT_KEY is required")
	}
	if cfg.CycleKey != "" && strings.EqualFold(cfg.CycleKey, cfg.PTTKey) {
		return fmt.Errorf("CYCLE_KEY must differ from PTT_KEY")
	}
	if cfg.QuitKey != "" && strings.EqualFold(cfg.QuitKey, cfg.PTTKey) {
		return fmt.Errorf("QUIT_KEY must differ from PTT_KEY")
	}

	allowedDelivery := map[string]bool{"auto": true, "paste": true, "type": true, "clipboard": true}
	if !allowedDelivery[strings.ToLower(cfg.Delivery)] {
		return fmt.Errorf("invalid DELIVERY: %s (allowed: auto, paste, type, clipboard)", cfg.Delivery)
	}
	if cfg.PasteDelayMs < 0 {
		return fmt.Errorf("invalid PASTE_DELAY_MS: %d (must be >= 0)", cfg.PasteDelayMs)
	}
	if cfg.TypeIntervalMs < 0 {
		return fmt.Errorf("invalid TYPE_INTERVAL_MS: %d (must be >= 0)", cfg.TypeIntervalMs)
	}

	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.ExtraConfig != "" {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(cfg.ExtraConfig), &m); err != nil {
			return fmt.Errorf("invalid ExtraConfig JSON: %w", err)
		}
	}
	return nil
}

// ParseLogLevel maps LOG_LEVEL to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL: %s (allowed: debug, info, warn, error)", s)
}

// InitCacheDir validates/creates the configured cache directory.
// It mutates cfg.CacheDir to an absolute path or clears it on failure.
func InitCacheDir(cfg *Config) {
	if cfg.CacheDir == "" {
		return
	}
	log := slog.With("component", "config")
	abs, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		log.Warn("cache-dir path invalid, falling back to temp dir", "dir", cfg.CacheDir, "error", err)
		cfg.CacheDir = ""
		return
	}
	info, err := os.Stat(abs)
	if err == nil {
		if !info.IsDir() {
			log.Warn("cache-dir exists but is not a directory, falling back to temp dir", "dir", abs)
			cfg.CacheDir = ""
			return
		}
		cfg.CacheDir = abs
		log.Info("using existing cache-dir", "dir", abs)
		return
	}
	if os.IsNotExist(err) {
		if err := os.MkdirAll(abs, 0755); err != nil {
			log.Warn("cannot create cache-dir, falling back to temp dir", "dir", abs, "error", err)
			cfg.CacheDir = ""
			return
		}
		cfg.CacheDir = abs
		log.Info("created cache-dir", "dir", abs)
		return
	}
	log.Warn("cannot access cache-dir, falling back to temp dir", "dir", abs, "error", err)
	cfg.CacheDir = ""
}

// TempDir returns the directory to use for temporary files.
func TempDir(cfg *Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	return os.TempDir()
}
