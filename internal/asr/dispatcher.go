package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// ErrNoText means the utterance produced nothing to deliver.
var ErrNoText = errors.New("no text recognized")

// defaultPrompts prime the decoder when a language is forced and no prompt is configured.
var defaultPrompts = map[string]string{
	"ru": "Это русская речь.",
}

// Transcript is the result of one dispatch.
type Transcript struct {
	Text     string
	Language string
	Segments int
	Elapsed  time.Duration
}

// Dispatcher runs one utterance through an engine. It never retries: the
// audio is gone after capture and a retry would replay the same failure.
type Dispatcher struct {
	engine Engine
	opts   Options
	log    *slog.Logger
}

// NewDispatcher creates a dispatcher. The priming prompt in opts is only sent
// when opts.Language forces a language.
func NewDispatcher(engine Engine, opts Options) *Dispatcher {
	return &Dispatcher{
		engine: engine,
		opts:   opts,
		log:    slog.With("component", "asr"),
	}
}

// EffectiveOptions returns the options actually sent to the engine.
func (d *Dispatcher) EffectiveOptions() Options {
	opts := d.opts
	opts.Language = strings.TrimSpace(strings.ToLower(opts.Language))
	if opts.Language == "auto" {
		opts.Language = ""
	}
	if opts.Language == "" {
		opts.Prompt = ""
	} else if opts.Prompt == "" {
		opts.Prompt = defaultPrompts[opts.Language]
	}
	return opts
}

// Transcribe returns the joined, trimmed text or an error wrapping ErrNoText.
func (d *Dispatcher) Transcribe(ctx context.Context, samples []float32) (Transcript, error) {
	start := time.Now()
	opts := d.EffectiveOptions()
	d.log.Debug("transcribing",
		"samples", len(samples),
		"language", langOrAuto(opts.Language),
		"beamSize", opts.BeamSize,
		"temperature", opts.Temperature)

	segs, err := d.engine.Transcribe(ctx, samples, opts)
	if err != nil {
		return Transcript{Elapsed: time.Since(start)}, fmt.Errorf("%w: engine: %v", ErrNoText, err)
	}

	tr := Transcript{Language: opts.Language}
	var parts []string
	for {
		seg, err := segs.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			tr.Elapsed = time.Since(start)
			return tr, fmt.Errorf("%w: reading segments: %v", ErrNoText, err)
		}
		tr.Segments++
		if tr.Language == "" && seg.Language != "" {
			tr.Language = seg.Language
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}

	tr.Text = strings.TrimSpace(strings.Join(parts, " "))
	tr.Elapsed = time.Since(start)
	if tr.Text == "" {
		return tr, fmt.Errorf("%w: %d empty segments", ErrNoText, tr.Segments)
	}
	return tr, nil
}

func langOrAuto(lang string) string {
	if lang == "" {
		return "auto"
	}
	return lang
}
