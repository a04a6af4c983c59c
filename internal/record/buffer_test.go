package record

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameOf(n int, v float32) []float32 {
	f := make([]float32, n)
	for i := range f {
		f[i] = v
	}
	return f
}

func TestBufferKeepsFramesInOrder(t *testing.T) {
	b := NewBuffer(0)
	_, ok := b.Start(time.Now())
	require.True(t, ok)

	lengths := []int{320, 160, 480, 320, 1}
	total := 0
	for i, n := range lengths {
		b.OnFrame(frameOf(n, float32(i)))
		total += n
	}

	s := b.Stop()
	require.NotNil(t, s)
	assert.Equal(t, total, s.Len())
	assert.Equal(t, len(lengths), s.Frames())

	samples := s.Samples()
	require.Len(t, samples, total)
	pos := 0
	for i, n := range lengths {
		for j := 0; j < n; j++ {
			require.Equal(t, float32(i), samples[pos], "sample %d", pos)
			pos++
		}
	}
}

func TestBufferDiscardsWhenNotRecording(t *testing.T) {
	b := NewBuffer(0)
	b.OnFrame(frameOf(320, 0.5))
	assert.Nil(t, b.Stop())

	b.Start(time.Now())
	b.OnFrame(frameOf(320, 0.5))
	s := b.Stop()
	require.NotNil(t, s)
	assert.Equal(t, 320, s.Len())

	b.OnFrame(frameOf(320, 0.5))
	assert.False(t, b.Recording())
}

func TestBufferCopiesFrames(t *testing.T) {
	b := NewBuffer(0)
	b.Start(time.Now())
	reused := frameOf(4, 0.25)
	b.OnFrame(reused)
	for i := range reused {
		reused[i] = -1
	}
	s := b.Stop()
	assert.Equal(t, []float32{0.25, 0.25, 0.25, 0.25}, s.Samples())
}

func TestBufferStartWhileRecordingIsNoop(t *testing.T) {
	b := NewBuffer(0)
	first := time.Unix(100, 0)
	s1, ok := b.Start(first)
	require.True(t, ok)
	b.OnFrame(frameOf(10, 0.1))

	s2, ok := b.Start(time.Unix(200, 0))
	assert.False(t, ok)
	assert.Same(t, s1, s2)

	s := b.Stop()
	assert.Equal(t, first, s.Started)
	assert.Equal(t, 10, s.Len())
}

func TestBufferCapDropsOverflow(t *testing.T) {
	b := NewBuffer(500)
	b.Start(time.Now())
	b.OnFrame(frameOf(320, 0.1))
	b.OnFrame(frameOf(320, 0.1))
	b.OnFrame(frameOf(320, 0.1))
	s := b.Stop()
	assert.Equal(t, 500, s.Len())
	assert.Equal(t, 460, s.Dropped())
}

func TestBufferConcurrentCaptureAndSwap(t *testing.T) {
	b := NewBuffer(0)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		frame := frameOf(16, 0.3)
		for {
			select {
			case <-stop:
				return
			default:
				b.OnFrame(frame)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		b.Start(time.Now())
		s := b.Stop()
		require.NotNil(t, s)
		assert.Zero(t, s.Len()%16, "torn frame in session")
		assert.Equal(t, s.Len(), len(s.Samples()))
	}
	close(stop)
	wg.Wait()
}

func TestSessionDuration(t *testing.T) {
	b := NewBuffer(0)
	b.Start(time.Now())
	b.OnFrame(frameOf(SampleRate/2, 0.1))
	assert.Equal(t, 500*time.Millisecond, b.Stop().Duration())
}
