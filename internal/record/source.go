package record

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// Source is a continuous microphone stream delivering fixed-size frames.
type Source interface {
	Start(onFrame func([]float32)) error
	Stop() error
	Close() error
}

// Device describes an input-capable audio device.
type Device struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	Default           bool
}

// PortAudioSource captures mono float32 frames at SampleRate through PortAudio.
type PortAudioSource struct {
	device          string
	framesPerBuffer int
	debug           bool
	log             *slog.Logger

	mu     sync.Mutex
	stream *portaudio.Stream
	inited bool

	overflows atomic.Int64
	panics    atomic.Int64
}

// NewPortAudioSource creates a source. device is empty for the default input,
// a numeric index, or a case-insensitive name substring.
func NewPortAudioSource(device string, framesPerBuffer int, debug bool) *PortAudioSource {
	return &PortAudioSource{
		device:          device,
		framesPerBuffer: framesPerBuffer,
		debug:           debug,
		log:             slog.With("component", "record"),
	}
}

// Start opens the device and begins delivering frames to onFrame on the
// PortAudio callback thread. onFrame must not block.
func (s *PortAudioSource) Start(onFrame func([]float32)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return fmt.Errorf("audio source already started")
	}
	if !s.inited {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("portaudio init failed: %w", err)
		}
		s.inited = true
	}

	dev, err := s.resolveDevice()
	if err != nil {
		return err
	}
	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = Channels
	params.SampleRate = SampleRate
	params.FramesPerBuffer = s.framesPerBuffer

	callback := func(in []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		if flags&portaudio.InputOverflow != 0 {
			s.overflows.Add(1)
		}
		defer func() {
			if r := recover(); r != nil {
				s.panics.Add(1)
			}
		}()
		onFrame(in)
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return fmt.Errorf("open stream failed: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("start stream failed: %w", err)
	}
	s.stream = stream
	s.log.Info("audio capture started",
		"device", dev.Name,
		"sampleRate", SampleRate,
		"channels", Channels,
		"framesPerBuffer", s.framesPerBuffer)
	return nil
}

// Stop closes the stream. The source can be started again.
func (s *PortAudioSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil
	}
	stream := s.stream
	s.stream = nil
	if err := stream.Stop(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("stop stream failed: %w", err)
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("close stream failed: %w", err)
	}
	s.log.Info("audio capture stopped", "overflows", s.overflows.Load(), "callbackPanics", s.panics.Load())
	return nil
}

// Close stops the stream and releases PortAudio.
func (s *PortAudioSource) Close() error {
	err := s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inited {
		s.inited = false
		if terr := portaudio.Terminate(); terr != nil && err == nil {
			err = fmt.Errorf("portaudio terminate failed: %w", terr)
		}
	}
	return err
}

// Health returns counters collected on the callback thread and logs them when
// debugging is on. Safe to call from any goroutine.
func (s *PortAudioSource) Health() (overflows, panics int64) {
	overflows, panics = s.overflows.Load(), s.panics.Load()
	if s.debug && (overflows > 0 || panics > 0) {
		s.log.Debug("capture health", "overflows", overflows, "callbackPanics", panics)
	}
	return overflows, panics
}

func (s *PortAudioSource) resolveDevice() (*portaudio.DeviceInfo, error) {
	if s.device == "" {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("no default input device: %w", err)
		}
		return dev, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices failed: %w", err)
	}
	if idx, err := strconv.Atoi(s.device); err == nil {
		for _, d := range devices {
			if d.Index == idx && d.MaxInputChannels > 0 {
				return d, nil
			}
		}
		return nil, fmt.Errorf("input device %d not found", idx)
	}
	want := strings.ToLower(s.device)
	for _, d := range devices {
		if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), want) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("input device %q not found", s.device)
}

// ListDevices returns all input-capable devices.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices failed: %w", err)
	}
	def, _ := portaudio.DefaultInputDevice()
	var out []Device
	for _, d := range devices {
		if d.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, Device{
			Index:             d.Index,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			Default:           def != nil && def.Index == d.Index,
		})
	}
	return out, nil
}
