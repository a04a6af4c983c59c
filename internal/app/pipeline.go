// Package app wires capture, gating, recognition and delivery into the
// listen, file and diagnostic modes.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/JumpAttacker/JWhisper/internal/asr"
	"github.com/JumpAttacker/JWhisper/internal/config"
	"github.com/JumpAttacker/JWhisper/internal/deliver"
	"github.com/JumpAttacker/JWhisper/internal/gate"
	"github.com/JumpAttacker/JWhisper/internal/notify"
	"github.com/JumpAttacker/JWhisper/internal/record"
)

const appName = "JWhisper"

// Deliverer puts text into the foreground application.
type Deliverer interface {
	Deliver(ctx context.Context, text string) deliver.Report
}

// Acker plays the cosmetic acknowledgments.
type Acker interface {
	Beep(t notify.Tone)
	Notify(title, message string)
}

// Pipeline processes one finished capture session:
// gate, recognition, delivery, acknowledgment and cache.
type Pipeline struct {
	gate       gate.Config
	dispatcher *asr.Dispatcher
	delivery   Deliverer
	ack        Acker
	cache      *Cache
	log        *slog.Logger
}

// NewPipeline builds a pipeline from config.
func NewPipeline(cfg config.Config, d *asr.Dispatcher, del Deliverer, ack Acker) *Pipeline {
	return &Pipeline{
		gate:       GateConfig(cfg),
		dispatcher: d,
		delivery:   del,
		ack:        ack,
		cache:      NewCache(cfg),
		log:        slog.With("component", "pipeline"),
	}
}

// GateConfig extracts the gate thresholds.
func GateConfig(cfg config.Config) gate.Config {
	return gate.Config{
		SampleRate:   record.SampleRate,
		MinSpeechSec: cfg.MinSpeechSec,
		Threshold:    cfg.AudioThreshold,
		Normalize:    cfg.Normalize,
	}
}

// DecodeOptions extracts the recognition options.
func DecodeOptions(cfg config.Config) asr.Options {
	return asr.Options{
		Language:    cfg.Language,
		Prompt:      cfg.Prompt,
		BeamSize:    cfg.BeamSize,
		BestOf:      cfg.BestOf,
		Temperature: float32(cfg.Temperature),
		VADFilter:   cfg.VADFilter,
	}
}

// Process implements ptt.Processor.
func (p *Pipeline) Process(ctx context.Context, s *record.Session) {
	log := p.log.With("session", s.ID)
	if n := s.Dropped(); n > 0 {
		log.Warn("recording hit the length cap, tail dropped", "droppedSamples", n)
	}
	entry := CacheEntry{ID: s.ID, Started: s.Started, Duration: s.Duration().Seconds()}
	samples := s.Samples()

	res, err := gate.Check(p.gate, samples)
	if err != nil {
		var rej *gate.Rejection
		if errors.As(err, &rej) {
			entry.Mean, entry.Max = rej.Stats.Mean, rej.Stats.Max
		}
		entry.Status = "rejected: " + err.Error()
		log.Info("utterance rejected", "reason", err)
		p.cache.Save(entry, samples)
		return
	}
	entry.Mean, entry.Max = res.Stats.Mean, res.Stats.Max
	if res.Normalized {
		log.Debug("quiet utterance normalized", "peak", res.Stats.Max, "gain", res.Gain)
	}

	tr, err := p.dispatcher.Transcribe(ctx, res.Samples)
	entry.Language = tr.Language
	if err != nil {
		entry.Status = "no text: " + err.Error()
		log.Info("no text recognized", "error", err, "elapsed", tr.Elapsed)
		p.ack.Notify(appName, "No text recognized")
		p.cache.Save(entry, res.Samples)
		return
	}
	entry.Text = tr.Text
	log.Info("recognized", "text", tr.Text, "language", tr.Language, "segments", tr.Segments, "elapsed", tr.Elapsed.Round(time.Millisecond))

	rep := p.delivery.Deliver(ctx, tr.Text)
	entry.Strategy = rep.Strategy
	entry.Status = "delivered"
	if rep.ClipboardOnly() {
		p.ack.Beep(notify.ClipboardOnly)
		p.ack.Notify(appName, "Text copied to clipboard")
	} else {
		p.ack.Beep(notify.Injected)
	}
	p.cache.Save(entry, res.Samples)
}
