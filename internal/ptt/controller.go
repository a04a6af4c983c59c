// Package ptt implements the push-to-talk state machine. Platform listeners
// feed it key events; it starts and stops capture and hands each finished
// session to a Processor on a worker goroutine.
package ptt

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JumpAttacker/JWhisper/internal/record"
)

// Key is a normalized key name such as "f9".
type Key string

// NormalizeKey lowercases and trims a key name.
func NormalizeKey(s string) Key {
	return Key(strings.ToLower(strings.TrimSpace(s)))
}

// State of the controller.
type State int

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

// Recorder is the capture buffer as seen by the controller.
type Recorder interface {
	Start(now time.Time) (*record.Session, bool)
	Stop() *record.Session
	Recording() bool
}

// Processor consumes a finished session. It runs on the worker goroutine.
type Processor interface {
	Process(ctx context.Context, s *record.Session)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, s *record.Session)

func (f ProcessorFunc) Process(ctx context.Context, s *record.Session) { f(ctx, s) }

// Keys selects the keys the controller reacts to. Empty CycleKey or QuitKey
// disables that action.
type Keys struct {
	Talk  Key
	Cycle Key
	Quit  Key
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.clock = now }
}

// WithCycle sets the callback run when the cycle key is pressed.
func WithCycle(fn func()) Option {
	return func(c *Controller) { c.onCycle = fn }
}

// WithDebug logs every key event at debug level.
func WithDebug(on bool) Option {
	return func(c *Controller) { c.debug = on }
}

// Controller is the push-to-talk state machine. It is safe for concurrent use.
type Controller struct {
	keys  Keys
	rec   Recorder
	proc  Processor
	clock func() time.Time

	onCycle func()
	debug   bool
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	pressed  map[Key]bool
	inFlight bool
	wg       sync.WaitGroup
}

// New creates a controller. Cancelling ctx, or pressing the quit key, ends
// the run context handed to the processor; see Done.
func New(ctx context.Context, keys Keys, rec Recorder, proc Processor, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		keys:    keys,
		rec:     rec,
		proc:    proc,
		clock:   time.Now,
		log:     slog.With("component", "ptt"),
		ctx:     ctx,
		cancel:  cancel,
		pressed: make(map[Key]bool),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether an utterance is still being processed.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Done is closed when the controller's run context ends.
func (c *Controller) Done() <-chan struct{} { return c.ctx.Done() }

// Stop cancels the run context.
func (c *Controller) Stop() { c.cancel() }

// Wait blocks until no utterance is in flight. Once the run context has
// ended no new utterance is started, so Wait is safe to call concurrently
// with key events after Done is closed.
func (c *Controller) Wait() {
	// A release that saw a live context has registered its worker by the
	// time the lock is free.
	c.mu.Lock()
	c.mu.Unlock()
	c.wg.Wait()
}

// OnKeyDown handles a key press. Repeated presses of a held key are ignored.
func (c *Controller) OnKeyDown(key Key) {
	if c.debug {
		c.log.Debug("key down", "key", key)
	}
	c.mu.Lock()
	if c.pressed[key] {
		c.mu.Unlock()
		return
	}
	switch key {
	case c.keys.Talk:
		c.pressed[key] = true
		c.startLocked()
		c.mu.Unlock()
	case c.keys.Cycle:
		if key == "" {
			c.mu.Unlock()
			return
		}
		c.pressed[key] = true
		c.mu.Unlock()
		if c.onCycle != nil {
			c.onCycle()
		}
	case c.keys.Quit:
		if key == "" {
			c.mu.Unlock()
			return
		}
		c.pressed[key] = true
		c.mu.Unlock()
		c.log.Info("quit key pressed")
		c.cancel()
	default:
		c.mu.Unlock()
	}
}

func (c *Controller) startLocked() {
	if c.state == Recording {
		return
	}
	if c.inFlight {
		c.log.Info("previous utterance still processing, press ignored")
		return
	}
	if c.ctx.Err() != nil {
		return
	}
	s, ok := c.rec.Start(c.clock())
	if !ok {
		return
	}
	c.state = Recording
	c.log.Info("recording started", "session", s.ID)
}

// OnKeyUp handles a key release. Releasing the talk key hands the session
// to the processor unless the run context has ended.
func (c *Controller) OnKeyUp(key Key) {
	if c.debug {
		c.log.Debug("key up", "key", key)
	}
	c.mu.Lock()
	if key == "" || key != c.keys.Talk {
		delete(c.pressed, key)
		c.mu.Unlock()
		return
	}
	delete(c.pressed, key)
	// A release without a tracked press still stops a live recording.
	if c.state != Recording && !c.rec.Recording() {
		c.mu.Unlock()
		return
	}
	s := c.rec.Stop()
	c.state = Idle
	if s == nil {
		c.mu.Unlock()
		return
	}
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		c.log.Info("shutting down, recording discarded", "session", s.ID)
		return
	}
	c.inFlight = true
	c.wg.Add(1)
	c.mu.Unlock()

	c.log.Info("recording stopped", "session", s.ID, "duration", s.Duration(), "frames", s.Frames())
	go c.run(s)
}

func (c *Controller) run(s *record.Session) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("processor panic", "session", s.ID, "panic", r)
		}
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
		c.wg.Done()
	}()
	c.proc.Process(c.ctx, s)
}
