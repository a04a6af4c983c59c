package ptt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JumpAttacker/JWhisper/internal/record"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type collector struct {
	mu       sync.Mutex
	sessions []*record.Session
	release  chan struct{}
}

func (c *collector) Process(ctx context.Context, s *record.Session) {
	if c.release != nil {
		<-c.release
	}
	c.mu.Lock()
	c.sessions = append(c.sessions, s)
	c.mu.Unlock()
}

func (c *collector) got() []*record.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*record.Session(nil), c.sessions...)
}

var keys = Keys{Talk: "f9", Cycle: "f10", Quit: "esc"}

func newTestController(t *testing.T, proc Processor, opts ...Option) (*Controller, *record.Buffer, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	buf := record.NewBuffer(16000 * 10)
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	c := New(context.Background(), keys, buf, proc, opts...)
	t.Cleanup(c.Stop)
	return c, buf, clock
}

func TestPressReleaseProcessesOnce(t *testing.T) {
	proc := &collector{}
	c, buf, _ := newTestController(t, proc)

	c.OnKeyDown("f9")
	require.Equal(t, Recording, c.State())
	buf.OnFrame(make([]float32, 320))
	buf.OnFrame(make([]float32, 320))
	c.OnKeyUp("f9")
	c.Wait()

	got := proc.got()
	require.Len(t, got, 1)
	assert.Equal(t, 640, got[0].Len())
	assert.Equal(t, Idle, c.State())
	assert.False(t, buf.Recording())
}

func TestRepeatedKeyDownDoesNotResetSession(t *testing.T) {
	proc := &collector{}
	c, buf, clock := newTestController(t, proc)

	c.OnKeyDown("f9")
	started := clock.Now()
	buf.OnFrame(make([]float32, 320))
	clock.Advance(300 * time.Millisecond)
	c.OnKeyDown("f9")
	c.OnKeyDown("f9")
	buf.OnFrame(make([]float32, 320))
	c.OnKeyUp("f9")
	c.Wait()

	got := proc.got()
	require.Len(t, got, 1)
	assert.Equal(t, started, got[0].Started)
	assert.Equal(t, 640, got[0].Len())
}

func TestKeyUpWithoutKeyDownStillStopsRecording(t *testing.T) {
	proc := &collector{}
	c, buf, _ := newTestController(t, proc)

	// Recording started outside the controller's view, e.g. focus change mid-press.
	_, ok := buf.Start(time.Now())
	require.True(t, ok)
	buf.OnFrame(make([]float32, 160))

	c.OnKeyUp("f9")
	c.Wait()

	assert.False(t, buf.Recording())
	require.Len(t, proc.got(), 1)
}

func TestOtherKeysAreIgnored(t *testing.T) {
	proc := &collector{}
	c, buf, _ := newTestController(t, proc)

	c.OnKeyDown("a")
	assert.Equal(t, Idle, c.State())
	assert.False(t, buf.Recording())

	c.OnKeyDown("f9")
	c.OnKeyUp("a")
	assert.Equal(t, Recording, c.State())

	c.OnKeyUp("f9")
	c.OnKeyUp("f9")
	c.Wait()
	assert.Len(t, proc.got(), 1)
}

func TestPressWhileBusyIsIgnored(t *testing.T) {
	proc := &collector{release: make(chan struct{})}
	c, buf, _ := newTestController(t, proc)

	c.OnKeyDown("f9")
	c.OnKeyUp("f9")
	require.True(t, c.Busy())

	c.OnKeyDown("f9")
	assert.Equal(t, Idle, c.State())
	assert.False(t, buf.Recording())
	c.OnKeyUp("f9")

	close(proc.release)
	c.Wait()
	assert.False(t, c.Busy())
	assert.Len(t, proc.got(), 1)

	c.OnKeyDown("f9")
	assert.Equal(t, Recording, c.State())
}

func TestCycleKeyDebounced(t *testing.T) {
	var cycles int
	c, _, _ := newTestController(t, &collector{}, WithCycle(func() { cycles++ }))

	c.OnKeyDown("f10")
	c.OnKeyDown("f10")
	c.OnKeyUp("f10")
	c.OnKeyDown("f10")
	assert.Equal(t, 2, cycles)
}

func TestQuitKeyCancelsRunContext(t *testing.T) {
	c, buf, _ := newTestController(t, &collector{})

	c.OnKeyDown("esc")
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("quit key did not cancel the run context")
	}

	c.OnKeyDown("f9")
	assert.False(t, buf.Recording(), "no recording after quit")
}

func TestReleaseAfterShutdownDiscardsSession(t *testing.T) {
	proc := &collector{}
	c, buf, _ := newTestController(t, proc)

	c.OnKeyDown("f9")
	buf.OnFrame(make([]float32, 320))
	c.Stop()
	c.OnKeyUp("f9")
	c.Wait()

	assert.Empty(t, proc.got())
	assert.False(t, c.Busy())
	assert.False(t, buf.Recording(), "capture stops even after shutdown")
	assert.Equal(t, Idle, c.State())
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, Key("f9"), NormalizeKey(" F9 "))
	assert.Equal(t, "recording", Recording.String())
	assert.Equal(t, "idle", Idle.String())
}
