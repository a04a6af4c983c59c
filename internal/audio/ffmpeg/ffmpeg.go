// Package ffmpeg shells out to ffmpeg to bring arbitrary audio files into the
// capture format before they are gated and transcribed.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Binary is the ffmpeg executable looked up on PATH.
var Binary = "ffmpeg"

// Args builds the ffmpeg argument list that converts inPath into a mono
// 16-bit PCM WAV at rate.
func Args(inPath, outPath string, rate int) []string {
	return []string{
		"-y",
		"-i", inPath,
		"-ac", "1",
		"-ar", strconv.Itoa(rate),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		outPath,
	}
}

// ToPCM converts inPath into a mono 16-bit PCM WAV at rate.
func ToPCM(ctx context.Context, inPath, outPath string, rate int, debug bool) error {
	args := Args(inPath, outPath, rate)
	if debug {
		slog.Debug("executing ffmpeg", "component", "ffmpeg", "command", Binary+" "+strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w\n%s", err, stderr.String())
	}
	return nil
}
