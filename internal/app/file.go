package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JumpAttacker/JWhisper/internal/asr"
	"github.com/JumpAttacker/JWhisper/internal/audio/ffmpeg"
	"github.com/JumpAttacker/JWhisper/internal/audio/wavfile"
	"github.com/JumpAttacker/JWhisper/internal/config"
	"github.com/JumpAttacker/JWhisper/internal/gate"
	"github.com/JumpAttacker/JWhisper/internal/record"
)

// RunFileMode transcribes an existing audio file and writes the text to outputPath
// (default: <input base>.txt in the working directory).
func RunFileMode(ctx context.Context, cfg config.Config, inputPath string, outputPath string) error {
	tempDir := config.TempDir(&cfg)
	cleanupOldTempFiles(tempDir)

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("file '%s' stat failed: %w", inputPath, err)
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	text, err := transcribeFile(ctx, cfg, asr.NewDispatcher(engine, DecodeOptions(cfg)), inputPath, tempDir)
	if err != nil {
		return err
	}

	outPath := outputPath
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		outPath = filepath.Join(".", base+".txt")
	}
	if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
		return err
	}
	slog.Info("transcript written", "component", "file", "path", outPath, "chars", len([]rune(text)))
	return nil
}

func transcribeFile(ctx context.Context, cfg config.Config, d *asr.Dispatcher, inputPath, tempDir string) (string, error) {
	tempWav := tempOutputPath(tempDir)
	defer os.Remove(tempWav)
	if err := ffmpeg.ToPCM(ctx, inputPath, tempWav, record.SampleRate, cfg.RECORD_DEBUG); err != nil {
		return "", err
	}
	samples, rate, err := wavfile.Read(tempWav)
	if err != nil {
		return "", err
	}
	if rate != record.SampleRate {
		return "", fmt.Errorf("decoded sample rate %d, want %d", rate, record.SampleRate)
	}

	res, err := gate.Check(GateConfig(cfg), samples)
	if err != nil {
		return "", err
	}
	tr, err := d.Transcribe(ctx, res.Samples)
	if err != nil {
		return "", err
	}

	cache := NewCache(cfg)
	cache.Save(CacheEntry{
		ID:       uuid.NewString(),
		Started:  time.Now(),
		Duration: res.Stats.Duration.Seconds(),
		Mean:     res.Stats.Mean,
		Max:      res.Stats.Max,
		Language: tr.Language,
		Text:     tr.Text,
		Status:   "file: " + filepath.Base(inputPath),
	}, res.Samples)
	return tr.Text, nil
}

func tempOutputPath(dir string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	if dir == "" {
		cwd, _ := os.Getwd()
		dir = cwd
	}
	return filepath.Join(dir, asr.TempPrefix+id+".wav")
}
