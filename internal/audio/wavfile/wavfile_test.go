package wavfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utterance.wav")
	in := []float32{0, 0.5, -0.5, 1, -1, 1.7}

	require.NoError(t, Write(path, in, 16000))
	out, rate, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	require.Len(t, out, len(in))

	for i, want := range []float32{0, 0.5, -0.5, 1, -1, 1} {
		assert.InDelta(t, want, out[i], 1.0/16000, "sample %d", i)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}
