// Package gate decides whether a captured utterance is worth sending to the
// recognizer and boosts quiet speech into a usable range.
package gate

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Rejection reasons. Match with errors.Is.
var (
	ErrEmpty    = errors.New("empty recording")
	ErrTooShort = errors.New("recording too short")
	ErrTooQuiet = errors.New("audio level too low")
)

const (
	// quietPeak is the peak below which an accepted utterance gets normalized.
	quietPeak = 0.1
	// targetPeak is the peak a normalized utterance is scaled to.
	targetPeak = 0.5
)

// Config holds gate thresholds.
type Config struct {
	SampleRate   int
	MinSpeechSec float64
	Threshold    float64
	Normalize    bool
}

// Stats describes an utterance.
type Stats struct {
	Samples  int
	Duration time.Duration
	Mean     float64
	Max      float64
}

// Result is an utterance that passed the gate.
type Result struct {
	Samples    []float32
	Stats      Stats
	Normalized bool
	Gain       float64
}

// Rejection explains why an utterance was dropped. It is a diagnostic, not a failure.
type Rejection struct {
	Reason error
	Stats  Stats
	Limit  float64
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ErrTooShort:
		return fmt.Sprintf("%v (%.2fs < %.2fs)", r.Reason, r.Stats.Duration.Seconds(), r.Limit)
	case ErrTooQuiet:
		return fmt.Sprintf("%v (mean %.4f < %.4f, max %.4f)", r.Reason, r.Stats.Mean, r.Limit, r.Stats.Max)
	}
	return r.Reason.Error()
}

func (r *Rejection) Unwrap() error { return r.Reason }

// Check validates samples and returns either a ready utterance or a *Rejection.
// samples is never modified.
func Check(cfg Config, samples []float32) (Result, error) {
	st := Stats{Samples: len(samples)}
	if len(samples) == 0 {
		return Result{}, &Rejection{Reason: ErrEmpty, Stats: st}
	}

	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	sec := float64(len(samples)) / float64(rate)
	st.Duration = time.Duration(sec * float64(time.Second))
	if sec < cfg.MinSpeechSec {
		return Result{}, &Rejection{Reason: ErrTooShort, Stats: st, Limit: cfg.MinSpeechSec}
	}

	st.Mean, st.Max = Levels(samples)
	if st.Mean < cfg.Threshold {
		return Result{}, &Rejection{Reason: ErrTooQuiet, Stats: st, Limit: cfg.Threshold}
	}

	res := Result{Samples: samples, Stats: st, Gain: 1}
	if cfg.Normalize && st.Max > 0 && st.Max < quietPeak {
		res.Gain = targetPeak / st.Max
		res.Samples = scale(samples, res.Gain)
		res.Normalized = true
	}
	return res, nil
}

// Levels returns the mean and max absolute amplitude.
func Levels(samples []float32) (mean, max float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		a := math.Abs(float64(s))
		sum += a
		if a > max {
			max = a
		}
	}
	return sum / float64(len(samples)), max
}

func scale(samples []float32, gain float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(float64(s) * gain)
	}
	return out
}
