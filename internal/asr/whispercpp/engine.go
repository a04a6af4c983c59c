//go:build whisper

// Package whispercpp runs recognition in-process with whisper.cpp.
package whispercpp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/JumpAttacker/JWhisper/internal/asr"
	"github.com/JumpAttacker/JWhisper/internal/gate"
)

// Available reports whether the binary was built with whisper.cpp support.
const Available = true

// vadFrame is the silence-trim analysis window (20 ms at 16 kHz).
const vadFrame = 320

// Engine wraps a loaded ggml model. Calls to Transcribe are serialized.
type Engine struct {
	mu        sync.Mutex
	model     whisper.Model
	threads   uint
	threshold float64
	log       *slog.Logger
}

// New loads the model at modelPath. threads <= 0 keeps the library default.
// threshold is the RMS level below which leading and trailing frames are
// trimmed when Options.VADFilter is set.
func New(modelPath string, threads int, threshold float64) (*Engine, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}
	e := &Engine{model: model, threshold: threshold, log: slog.With("component", "whisper")}
	if threads > 0 {
		e.threads = uint(threads)
	}
	return e, nil
}

func (e *Engine) Transcribe(ctx context.Context, samples []float32, opts asr.Options) (asr.Segments, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}
	lang := opts.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("whisper: set language %q: %w", lang, err)
	}
	if opts.Prompt != "" {
		wctx.SetInitialPrompt(opts.Prompt)
	}
	if opts.BeamSize > 0 {
		wctx.SetBeamSize(opts.BeamSize)
	}
	wctx.SetTemperature(opts.Temperature)
	if e.threads > 0 {
		wctx.SetThreads(e.threads)
	}

	if opts.VADFilter {
		trimmed := gate.TrimSilence(samples, vadFrame, e.threshold)
		e.log.Debug("silence trimmed", "before", len(samples), "after", len(trimmed))
		samples = trimmed
	}
	if len(samples) == 0 {
		return asr.SliceSegments(nil), nil
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process: %w", err)
	}

	detected := wctx.DetectedLanguage()
	var out []asr.Segment
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: next segment: %w", err)
		}
		out = append(out, asr.Segment{
			Text:     seg.Text,
			Language: detected,
			Start:    seg.Start,
			End:      seg.End,
		})
	}
	return asr.SliceSegments(out), nil
}

// Close releases the model.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.Close()
	e.model = nil
	return err
}
