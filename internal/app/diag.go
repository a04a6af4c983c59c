package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JumpAttacker/JWhisper/internal/config"
	"github.com/JumpAttacker/JWhisper/internal/gate"
	"github.com/JumpAttacker/JWhisper/internal/record"
)

// ListDevices prints input devices.
func ListDevices(w io.Writer) error {
	devices, err := record.ListDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(w, "no input devices found")
		return nil
	}
	for _, d := range devices {
		mark := " "
		if d.Default {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %2d  %s (channels=%d, default rate=%.0f Hz)\n", mark, d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}
	return nil
}

// RunMicTest records for the given duration and reports levels against the gate.
func RunMicTest(ctx context.Context, cfg config.Config, seconds int, w io.Writer) error {
	if seconds <= 0 {
		seconds = 3
	}
	buf := record.NewBuffer((seconds + 1) * record.SampleRate)
	src := record.NewPortAudioSource(cfg.InputDevice, cfg.FramesPerBuffer, cfg.RECORD_DEBUG)
	if err := src.Start(buf.OnFrame); err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	defer src.Close()

	fmt.Fprintf(w, "Recording %d seconds, speak now...\n", seconds)
	buf.Start(time.Now())
	t := time.NewTimer(time.Duration(seconds) * time.Second)
	select {
	case <-ctx.Done():
		t.Stop()
		buf.Stop()
		return ctx.Err()
	case <-t.C:
	}
	s := buf.Stop()
	overflows, _ := src.Health()

	reportLevels(w, cfg, s.Samples(), overflows)
	return nil
}

func reportLevels(w io.Writer, cfg config.Config, samples []float32, overflows int64) {
	mean, peak := gate.Levels(samples)
	fmt.Fprintf(w, "samples:   %d (%.2fs)\n", len(samples), float64(len(samples))/record.SampleRate)
	fmt.Fprintf(w, "mean level: %.6f\n", mean)
	fmt.Fprintf(w, "max level:  %.6f\n", peak)
	if overflows > 0 {
		fmt.Fprintf(w, "input overflows: %d\n", overflows)
	}
	switch {
	case len(samples) == 0:
		fmt.Fprintln(w, "no audio captured: check the input device")
	case mean < cfg.AudioThreshold:
		fmt.Fprintf(w, "level below AUDIO_THRESHOLD (%.4f): utterances will be rejected; check the microphone or lower the threshold\n", cfg.AudioThreshold)
	case mean < 0.01:
		fmt.Fprintln(w, "level is low: speak closer to the microphone or raise input gain")
	default:
		fmt.Fprintln(w, "level OK")
	}
	if _, err := gate.Check(GateConfig(cfg), samples); err != nil {
		fmt.Fprintf(w, "gate: %v\n", err)
	} else {
		fmt.Fprintln(w, "gate: accepted")
	}
}
