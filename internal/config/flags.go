package config

import (
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FlagValues records which config flags were explicitly set on the command line.
// Only set flags are applied, so a config file value survives an absent flag.
type FlagValues struct {
	applied map[string]func(*Config)
}

// overrideFlag is a flag.Value that turns a parsed value into a Config mutation.
type overrideFlag struct {
	name   string
	fv     *FlagValues
	parse  func(string) (func(*Config), error)
	latest string
}

func (o *overrideFlag) String() string {
	if o == nil {
		return ""
	}
	return o.latest
}

func (o *overrideFlag) Set(v string) error {
	apply, err := o.parse(v)
	if err != nil {
		return err
	}
	o.latest = v
	o.fv.applied[o.name] = apply
	return nil
}

func parseBoolExt(v string) (bool, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean: %s", v)
}

func stringField(set func(*Config, string)) func(string) (func(*Config), error) {
	return func(v string) (func(*Config), error) {
		return func(c *Config) { set(c, v) }, nil
	}
}

func intField(set func(*Config, int)) func(string) (func(*Config), error) {
	return func(v string) (func(*Config), error) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		return func(c *Config) { set(c, n) }, nil
	}
}

func floatField(set func(*Config, float64)) func(string) (func(*Config), error) {
	return func(v string) (func(*Config), error) {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		return func(c *Config) { set(c, n) }, nil
	}
}

func boolField(set func(*Config, bool)) func(string) (func(*Config), error) {
	return func(v string) (func(*Config), error) {
		b, err := parseBoolExt(v)
		if err != nil {
			return nil, err
		}
		return func(c *Config) { set(c, b) }, nil
	}
}

// BindFlags registers all config flags and returns the tracker.
func BindFlags(fs *flag.FlagSet) *FlagValues {
	fv := &FlagValues{applied: make(map[string]func(*Config))}
	bind := func(name, usage string, parse func(string) (func(*Config), error)) {
		fs.Var(&overrideFlag{name: name, fv: fv, parse: parse}, name, usage)
	}

	bind("engine", "recognition engine (whisper, http)", stringField(func(c *Config, v string) { c.Engine = v }))
	bind("model-path", "whisper.cpp ggml model file", stringField(func(c *Config, v string) { c.ModelPath = v }))
	bind("language", "forced language code; empty for auto-detect", stringField(func(c *Config, v string) { c.Language = v }))
	bind("prompt", "priming prompt used when a language is forced", stringField(func(c *Config, v string) { c.Prompt = v }))
	bind("beam-size", "beam width", intField(func(c *Config, v int) { c.BeamSize = v }))
	bind("best-of", "number of candidates", intField(func(c *Config, v int) { c.BestOf = v }))
	bind("temperature", "decoding temperature (0 = deterministic)", floatField(func(c *Config, v float64) { c.Temperature = v }))
	bind("vad-filter", "trim silence before recognition (true/false)", boolField(func(c *Config, v bool) { c.VADFilter = v }))
	bind("threads", "recognition threads (0 = engine default)", intField(func(c *Config, v int) { c.Threads = v }))

	bind("api-endpoint", "ASR endpoint URL for -engine http", stringField(func(c *Config, v string) { c.APIEndpoint = v }))
	bind("token", "Authorization token", stringField(func(c *Config, v string) { c.Token = v }))
	bind("model", "model name sent to the ASR endpoint", stringField(func(c *Config, v string) { c.Model = v }))
	bind("text-path", "JSON path to extract text", stringField(func(c *Config, v string) { c.TEXTPath = v }))
	bind("segments-path", "JSON path to the segments array", stringField(func(c *Config, v string) { c.SegmentsPath = v }))
	bind("extra-config", "extra JSON config to merge into request payload", stringField(func(c *Config, v string) { c.ExtraConfig = v }))
	bind("request-timeout", "request timeout seconds", intField(func(c *Config, v int) { c.RequestTimeout = v }))
	bind("enable-http2", "enable HTTP/2 (true/false)", boolField(func(c *Config, v bool) { c.EnableHTTP2 = v }))
	bind("verify-ssl", "verify TLS certificates (true/false)", boolField(func(c *Config, v bool) { c.VerifySSL = v }))

	bind("input-device", "input device index or name substring", stringField(func(c *Config, v string) { c.InputDevice = v }))
	bind("frames-per-buffer", "capture frame length in samples", intField(func(c *Config, v int) { c.FramesPerBuffer = v }))
	bind("max-record-sec", "maximum utterance length in seconds", intField(func(c *Config, v int) { c.MaxRecordSec = v }))

	bind("min-speech-sec", "minimum utterance duration in seconds", floatField(func(c *Config, v float64) { c.MinSpeechSec = v }))
	bind("audio-threshold", "minimum mean absolute level", floatField(func(c *Config, v float64) { c.AudioThreshold = v }))
	bind("normalize", "boost quiet utterances (true/false)", boolField(func(c *Config, v bool) { c.Normalize = v }))

	bind("hotkeyhook", "use low-level keyboard hook (true/false)", boolField(func(c *Config, v bool) { c.HotKeyHook = v }))
	bind("ptt-key", "push-to-talk key", stringField(func(c *Config, v string) { c.PTTKey = v }))
	bind("cycle-key", "delivery mode cycle key", stringField(func(c *Config, v string) { c.CycleKey = v }))
	bind("quit-key", "exit key (empty disables)", stringField(func(c *Config, v string) { c.QuitKey = v }))

	bind("delivery", "delivery mode (auto, paste, type, clipboard)", stringField(func(c *Config, v string) { c.Delivery = v }))
	bind("paste-delay-ms", "delay between clipboard write and paste", intField(func(c *Config, v int) { c.PasteDelayMs = v }))
	bind("type-interval-ms", "delay between typed characters", intField(func(c *Config, v int) { c.TypeIntervalMs = v }))
	bind("restore-clipboard", "restore clipboard after paste (true/false)", boolField(func(c *Config, v bool) { c.RestoreClipboard = v }))

	bind("cache-dir", "cache directory", stringField(func(c *Config, v string) { c.CacheDir = v }))
	bind("keep-cache", "keep utterance audio and transcripts (true/false)", boolField(func(c *Config, v bool) { c.KeepCache = v }))
	bind("beep", "acknowledge delivery with a beep (true/false)", boolField(func(c *Config, v bool) { c.Beep = v }))
	bind("notification", "enable notifications (true/false)", boolField(func(c *Config, v bool) { c.Notification = v }))

	bind("log-level", "log level (debug, info, warn, error)", stringField(func(c *Config, v string) { c.LogLevel = v }))
	bind("record-debug", "enable record debug output (true/false)", boolField(func(c *Config, v bool) { c.RECORD_DEBUG = v }))
	bind("hotkey-debug", "enable hotkey debug output (true/false)", boolField(func(c *Config, v bool) { c.HOTKEY_DEBUG = v }))
	bind("upload-debug", "enable upload debug output (true/false)", boolField(func(c *Config, v bool) { c.UPLOAD_DEBUG = v }))

	return fv
}

// ApplyFlags applies present flags to the config in name order.
func ApplyFlags(cfg *Config, fv *FlagValues) {
	names := make([]string, 0, len(fv.applied))
	for name := range fv.applied {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fv.applied[name](cfg)
	}
}

// AnySet reports whether any config flag was explicitly set by the user.
func (fv *FlagValues) AnySet() bool {
	return len(fv.applied) > 0
}
