package deliver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	text     string
	writes   []string
	writeErr error
}

func (f *fakeClipboard) ReadAll() (string, error) { return f.text, nil }

func (f *fakeClipboard) WriteAll(text string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.text = text
	f.writes = append(f.writes, text)
	return nil
}

type fakeKeys struct {
	err   error
	calls int
}

func (f *fakeKeys) Paste() error {
	f.calls++
	return f.err
}

type fakeTyper struct {
	err   error
	typed []rune
}

func (f *fakeTyper) TypeRune(r rune) error {
	if f.err != nil {
		return f.err
	}
	f.typed = append(f.typed, r)
	return nil
}

// recording wraps a strategy and remembers the text it was given.
type recording struct {
	name string
	err  error
	got  []string
}

func (r *recording) Name() string { return r.name }

func (r *recording) Deliver(ctx context.Context, text string) error {
	r.got = append(r.got, text)
	return r.err
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	clip := &fakeClipboard{}
	a := &recording{name: "a"}
	b := &recording{name: "b"}

	rep := NewChain(clip, a, b).Deliver(context.Background(), "hello")

	assert.Equal(t, "a", rep.Strategy)
	assert.Len(t, rep.Attempts, 1)
	assert.Empty(t, b.got)
	assert.Empty(t, clip.writes)
}

func TestChainFallsThroughWithSameText(t *testing.T) {
	clip := &fakeClipboard{}
	a := &recording{name: "a", err: errors.New("paste blocked")}
	b := &recording{name: "b"}

	rep := NewChain(clip, a, b).Deliver(context.Background(), "привет мир")

	assert.Equal(t, "b", rep.Strategy)
	assert.Equal(t, []string{"привет мир"}, a.got)
	assert.Equal(t, []string{"привет мир"}, b.got)
	require.Len(t, rep.Attempts, 2)
	assert.Error(t, rep.Attempts[0].Err)
	assert.NoError(t, rep.Attempts[1].Err)
}

func TestChainEndsOnClipboard(t *testing.T) {
	clip := &fakeClipboard{text: "old"}
	paste := NewSimulatedPaste(clip, &fakeKeys{err: errors.New("no uinput")}, 0, false)
	typer := &TypeChars{Typer: &fakeTyper{err: errors.New("no display")}}

	rep := NewChain(clip, paste, typer).Deliver(context.Background(), "hello world")

	assert.True(t, rep.ClipboardOnly())
	assert.Len(t, rep.Attempts, 3)
	assert.Equal(t, "hello world", clip.text)
}

func TestClipboardOnlyCannotFail(t *testing.T) {
	clip := &fakeClipboard{writeErr: errors.New("no xclip")}
	rep := NewChain(clip).Deliver(context.Background(), "text")
	assert.Equal(t, NameClipboardOnly, rep.Strategy)

	rep = NewChain(nil).Deliver(context.Background(), "text")
	assert.Equal(t, NameClipboardOnly, rep.Strategy)
}

func TestPasteRestoresClipboard(t *testing.T) {
	clip := &fakeClipboard{text: "previous"}
	keys := &fakeKeys{}
	p := NewSimulatedPaste(clip, keys, time.Millisecond, true)

	require.NoError(t, p.Deliver(context.Background(), "dictated"))
	assert.Equal(t, 1, keys.calls)
	assert.Equal(t, []string{"dictated", "previous"}, clip.writes)
}

func TestPasteFailsWhenClipboardWriteFails(t *testing.T) {
	keys := &fakeKeys{}
	p := NewSimulatedPaste(&fakeClipboard{writeErr: errors.New("locked")}, keys, 0, false)
	assert.Error(t, p.Deliver(context.Background(), "x"))
	assert.Zero(t, keys.calls)
}

func TestTypeCharsTypesEveryRune(t *testing.T) {
	typer := &fakeTyper{}
	tc := &TypeChars{Typer: typer}
	require.NoError(t, tc.Deliver(context.Background(), "да, ok"))
	assert.Equal(t, []rune("да, ok"), typer.typed)
}

func TestTypeCharsHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tc := &TypeChars{Typer: &fakeTyper{}, Interval: time.Second}
	assert.ErrorIs(t, tc.Deliver(ctx, "ab"), context.Canceled)
}

func TestDelivererModes(t *testing.T) {
	s := Surfaces{
		Clipboard: &fakeClipboard{},
		Paste:     &fakeKeys{},
		KeyEvents: &fakeKeys{},
		Typer:     &fakeTyper{},
	}
	d := NewDeliverer(ModeAuto, s, Settings{})

	assert.Equal(t, []string{NameSimulatedPaste, NameKeyEvents, NameTypeCharacters, NameClipboardOnly}, d.Chain().Names())
	assert.Equal(t, ModePaste, d.Cycle())
	assert.Equal(t, []string{NameSimulatedPaste, NameClipboardOnly}, d.Chain().Names())
	assert.Equal(t, ModeType, d.Cycle())
	assert.Equal(t, []string{NameTypeCharacters, NameClipboardOnly}, d.Chain().Names())
	assert.Equal(t, ModeClipboard, d.Cycle())
	assert.Equal(t, []string{NameClipboardOnly}, d.Chain().Names())
	assert.Equal(t, ModeAuto, d.Cycle())
}

func TestDelivererSkipsMissingInjectors(t *testing.T) {
	d := NewDeliverer(ModeAuto, Surfaces{Clipboard: &fakeClipboard{}, Typer: &fakeTyper{}}, Settings{})
	assert.Equal(t, []string{NameTypeCharacters, NameClipboardOnly}, d.Chain().Names())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Type ")
	require.NoError(t, err)
	assert.Equal(t, ModeType, m)
	_, err = ParseMode("voice")
	assert.Error(t, err)
}
