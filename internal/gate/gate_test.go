package gate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(n int, amp float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = amp
		} else {
			out[i] = -amp
		}
	}
	return out
}

var defaultCfg = Config{SampleRate: 16000, MinSpeechSec: 0.5, Threshold: 0.001, Normalize: true}

func TestCheckEmpty(t *testing.T) {
	_, err := Check(defaultCfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestCheckDuration(t *testing.T) {
	_, err := Check(defaultCfg, tone(4800, 0.2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooShort))

	var rej *Rejection
	require.True(t, errors.As(err, &rej))
	assert.InDelta(t, 0.3, rej.Stats.Duration.Seconds(), 1e-9)

	res, err := Check(defaultCfg, tone(9600, 0.2))
	require.NoError(t, err)
	assert.Len(t, res.Samples, 9600)
}

func TestCheckLoudness(t *testing.T) {
	_, err := Check(defaultCfg, tone(16000, 0.0005))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooQuiet))
	assert.Contains(t, err.Error(), "audio level too low")
}

func TestCheckNormalizesQuietSpeech(t *testing.T) {
	in := tone(16000, 0.05)
	res, err := Check(defaultCfg, in)
	require.NoError(t, err)
	assert.True(t, res.Normalized)
	assert.InDelta(t, 0.5/float64(float32(0.05)), res.Gain, 1e-9)

	_, max := Levels(res.Samples)
	assert.InDelta(t, 0.5, max, 1e-6)
	assert.Equal(t, float32(0.05), in[0], "input must not be modified")
}

func TestCheckPassesLoudSpeechThrough(t *testing.T) {
	in := tone(16000, 0.3)
	res, err := Check(defaultCfg, in)
	require.NoError(t, err)
	assert.False(t, res.Normalized)
	assert.Equal(t, in, res.Samples)
}

func TestCheckNormalizeDisabled(t *testing.T) {
	cfg := defaultCfg
	cfg.Normalize = false
	res, err := Check(cfg, tone(16000, 0.05))
	require.NoError(t, err)
	assert.False(t, res.Normalized)
}

func TestTrimSilence(t *testing.T) {
	samples := append(append(make([]float32, 1600), tone(3200, 0.3)...), make([]float32, 1600)...)
	trimmed := TrimSilence(samples, 320, 0.01)
	// one frame of context survives on each side
	assert.Len(t, trimmed, 3200+2*320)

	silent := make([]float32, 3200)
	assert.Len(t, TrimSilence(silent, 320, 0.01), 3200)
}
