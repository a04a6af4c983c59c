package ffmpeg

import (
	"context"
	"strings"
	"testing"
)

func TestArgsForceCaptureFormat(t *testing.T) {
	got := strings.Join(Args("in.mp3", "out.wav", 16000), " ")
	want := "-y -i in.mp3 -ac 1 -ar 16000 -c:a pcm_s16le -f wav out.wav"
	if got != want {
		t.Fatalf("unexpected args:\n got %s\nwant %s", got, want)
	}
}

func TestToPCMMissingBinary(t *testing.T) {
	old := Binary
	Binary = "ffmpeg-does-not-exist-for-test"
	defer func() { Binary = old }()

	if err := ToPCM(context.Background(), "in.mp3", "out.wav", 16000, false); err == nil {
		t.Fatalf("expected error for missing ffmpeg binary")
	}
}
