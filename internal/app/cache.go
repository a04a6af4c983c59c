package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JumpAttacker/JWhisper/internal/asr"
	"github.com/JumpAttacker/JWhisper/internal/audio/wavfile"
	"github.com/JumpAttacker/JWhisper/internal/config"
	"github.com/JumpAttacker/JWhisper/internal/record"
)

// CacheEntry is the JSON record stored next to a cached utterance.
type CacheEntry struct {
	ID       string    `json:"id"`
	Started  time.Time `json:"started"`
	Duration float64   `json:"duration_sec"`
	Mean     float64   `json:"mean_level"`
	Max      float64   `json:"max_level"`
	Language string    `json:"language,omitempty"`
	Text     string    `json:"text,omitempty"`
	Strategy string    `json:"strategy,omitempty"`
	Status   string    `json:"status"`
}

// Cache keeps utterance audio and transcripts when KEEP_CACHE is on.
type Cache struct {
	dir  string
	keep bool
	log  *slog.Logger
}

func NewCache(cfg config.Config) *Cache {
	return &Cache{dir: cfg.CacheDir, keep: cfg.KeepCache, log: slog.With("component", "cache")}
}

// Enabled reports whether Save writes anything.
func (c *Cache) Enabled() bool { return c != nil && c.keep && c.dir != "" }

// Save writes audio-<timestamp>-<id>.wav and .json. Failures are logged.
func (c *Cache) Save(e CacheEntry, samples []float32) {
	if !c.Enabled() {
		return
	}
	id := strings.ReplaceAll(e.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	base := filepath.Join(c.dir, fmt.Sprintf("audio-%s-%s", e.Started.Format("2006-01-02-15.04.05"), id))

	if len(samples) > 0 {
		if err := wavfile.Write(base+".wav", samples, record.SampleRate); err != nil {
			c.log.Warn("failed to write wav", "path", base+".wav", "error", err)
		}
	}
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		c.log.Warn("failed to encode entry", "error", err)
		return
	}
	if err := os.WriteFile(base+".json", b, 0644); err != nil {
		c.log.Warn("failed to write json", "path", base+".json", "error", err)
	}
}

// cleanupOldTempFiles removes upload leftovers from an earlier run.
func cleanupOldTempFiles(dir string) {
	log := slog.With("component", "cleanup")
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("read dir failed", "dir", dir, "error", err)
		return
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, asr.TempPrefix) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			log.Warn("failed to remove", "path", path, "error", err)
		} else {
			log.Debug("removed stale temp file", "path", path)
		}
	}
}
