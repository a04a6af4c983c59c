// Package asr hands gated utterances to a speech-recognition engine and turns
// the returned segments into final text.
package asr

import (
	"context"
	"io"
	"time"
)

// Segment is the text recognized for one sub-span of an utterance.
type Segment struct {
	Text       string
	Language   string
	Confidence float32
	Start      time.Duration
	End        time.Duration
}

// Segments is a lazy, finite, ordered sequence of segments.
// Next returns io.EOF after the last segment.
type Segments interface {
	Next() (Segment, error)
}

// Options are the decoding parameters passed to an engine.
type Options struct {
	// Language is a language code; empty means auto-detect.
	Language    string
	Prompt      string
	BeamSize    int
	BestOf      int
	Temperature float32
	VADFilter   bool
}

// Engine is a speech-recognition backend. Samples are mono float32 at 16 kHz.
type Engine interface {
	Transcribe(ctx context.Context, samples []float32, opts Options) (Segments, error)
	Close() error
}

type sliceSegments struct {
	segs []Segment
	pos  int
}

// SliceSegments adapts an already materialized result to Segments.
func SliceSegments(segs []Segment) Segments {
	return &sliceSegments{segs: segs}
}

func (s *sliceSegments) Next() (Segment, error) {
	if s.pos >= len(s.segs) {
		return Segment{}, io.EOF
	}
	seg := s.segs[s.pos]
	s.pos++
	return seg, nil
}
