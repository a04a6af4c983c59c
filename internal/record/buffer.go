package record

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Fixed capture format. The recognition engines expect exactly this, so it is
// never negotiated with the device.
const (
	SampleRate = 16000
	Channels   = 1
)

// Session is the ordered set of frames captured between a start and a stop.
// Frames are only appended by Buffer.OnFrame while the session is live.
type Session struct {
	ID      string
	Started time.Time

	frames  [][]float32
	samples int
	dropped int
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Started: now,
	}
}

// Len returns the number of captured samples.
func (s *Session) Len() int { return s.samples }

// Frames returns the number of captured frames.
func (s *Session) Frames() int { return len(s.frames) }

// Dropped returns the number of samples discarded because the session hit its cap.
func (s *Session) Dropped() int { return s.dropped }

// Duration is the captured audio length at SampleRate.
func (s *Session) Duration() time.Duration {
	return time.Duration(s.samples) * time.Second / SampleRate
}

// Samples flattens the session into one utterance in append order.
func (s *Session) Samples() []float32 {
	out := make([]float32, 0, s.samples)
	for _, f := range s.frames {
		out = append(out, f...)
	}
	return out
}

// Buffer accumulates frames from the capture callback while recording is on.
// The recording flag and the live session are guarded by the same mutex and
// always change together.
type Buffer struct {
	mu         sync.Mutex
	recording  bool
	live       *Session
	maxSamples int
}

// NewBuffer creates a buffer. maxSamples <= 0 disables the per-session cap.
func NewBuffer(maxSamples int) *Buffer {
	return &Buffer{maxSamples: maxSamples}
}

// OnFrame is the capture callback. It copies frame because the audio backend
// reuses its buffer as soon as the callback returns.
func (b *Buffer) OnFrame(frame []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.recording || b.live == nil || len(frame) == 0 {
		return
	}
	s := b.live
	n := len(frame)
	if b.maxSamples > 0 && s.samples+n > b.maxSamples {
		room := b.maxSamples - s.samples
		if room <= 0 {
			s.dropped += n
			return
		}
		s.dropped += n - room
		n = room
	}
	cp := make([]float32, n)
	copy(cp, frame[:n])
	s.frames = append(s.frames, cp)
	s.samples += n
}

// Start replaces the live session with an empty one and turns recording on.
// It returns false if a session is already live.
func (b *Buffer) Start(now time.Time) (*Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.recording {
		return b.live, false
	}
	b.live = newSession(now)
	b.recording = true
	return b.live, true
}

// Stop turns recording off and hands the live session to the caller.
// It returns nil if nothing was recording.
func (b *Buffer) Stop() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.recording {
		return nil
	}
	s := b.live
	b.live = nil
	b.recording = false
	return s
}

// Recording reports whether frames are currently being kept.
func (b *Buffer) Recording() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording
}
