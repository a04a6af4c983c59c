//go:build !whisper

package whispercpp

import (
	"context"
	"errors"

	"github.com/JumpAttacker/JWhisper/internal/asr"
)

// Available reports whether the binary was built with whisper.cpp support.
const Available = false

// ErrUnavailable is returned when the binary was built without the whisper tag.
var ErrUnavailable = errors.New("whisper: built without whisper.cpp support (rebuild with -tags whisper or use ENGINE=http)")

type Engine struct{}

func New(modelPath string, threads int, threshold float64) (*Engine, error) {
	return nil, ErrUnavailable
}

func (e *Engine) Transcribe(ctx context.Context, samples []float32, opts asr.Options) (asr.Segments, error) {
	return nil, ErrUnavailable
}

func (e *Engine) Close() error { return nil }
