//go:build !whisper

package whispercpp

import (
	"errors"
	"testing"
)

func TestStubReportsUnavailable(t *testing.T) {
	if Available {
		t.Fatalf("stub must not report availability")
	}
	if _, err := New("models/ggml-small.bin", 0, 0.001); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
