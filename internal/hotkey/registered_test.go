package hotkey

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.design/x/hotkey"

	"github.com/JumpAttacker/JWhisper/internal/ptt"
	"github.com/JumpAttacker/JWhisper/internal/record"
)

func collect(events <-chan event, quiet time.Duration) []event {
	var got []event
	for {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-time.After(quiet):
			return got
		}
	}
}

func TestCoalesceAutorepeatIntoOnePressRelease(t *testing.T) {
	down, up := make(chan hotkey.Event), make(chan hotkey.Event)
	events := make(chan event, 16)
	go coalesce("f9", down, up, events, 200*time.Millisecond)

	// Held key with X11 autorepeat: every repeat is a release then a press.
	down <- hotkey.Event{}
	for i := 0; i < 5; i++ {
		up <- hotkey.Event{}
		down <- hotkey.Event{}
	}
	up <- hotkey.Event{}

	got := collect(events, 500*time.Millisecond)
	require.Len(t, got, 2)
	assert.Equal(t, event{key: "f9", down: true}, got[0])
	assert.Equal(t, event{key: "f9", down: false}, got[1])
	close(down)
}

func TestHeldKeyRecordsWholeUtterance(t *testing.T) {
	buf := record.NewBuffer(16000 * 10)
	sessions := make(chan *record.Session, 4)
	ctrl := ptt.New(context.Background(), ptt.Keys{Talk: "f9"}, buf,
		ptt.ProcessorFunc(func(_ context.Context, s *record.Session) { sessions <- s }))
	defer ctrl.Stop()

	down, up := make(chan hotkey.Event), make(chan hotkey.Event)
	go coalesce("f9", down, up, pump(ctrl, false), 200*time.Millisecond)

	down <- hotkey.Event{}
	require.Eventually(t, buf.Recording, time.Second, 5*time.Millisecond)
	buf.OnFrame(make([]float32, 16000))
	for i := 0; i < 2; i++ {
		up <- hotkey.Event{}
		down <- hotkey.Event{}
		buf.OnFrame(make([]float32, 16000))
	}
	up <- hotkey.Event{}

	select {
	case s := <-sessions:
		assert.Equal(t, 48000, s.Len())
	case <-time.After(2 * time.Second):
		t.Fatal("no session processed")
	}
	ctrl.Wait()
	assert.Empty(t, sessions)
	close(down)
}

func TestCoalesceKeepsSeparatePresses(t *testing.T) {
	down, up := make(chan hotkey.Event), make(chan hotkey.Event)
	events := make(chan event, 16)
	go coalesce("f9", down, up, events, 20*time.Millisecond)

	down <- hotkey.Event{}
	up <- hotkey.Event{}
	time.Sleep(150 * time.Millisecond)
	down <- hotkey.Event{}
	up <- hotkey.Event{}

	got := collect(events, 300*time.Millisecond)
	assert.Equal(t, []event{
		{key: "f9", down: true},
		{key: "f9", down: false},
		{key: "f9", down: true},
		{key: "f9", down: false},
	}, got)
	close(down)
}

func TestCoalesceFlushesPendingReleaseOnClose(t *testing.T) {
	down, up := make(chan hotkey.Event), make(chan hotkey.Event)
	events := make(chan event, 16)
	done := make(chan struct{})
	go func() {
		coalesce("f9", down, up, events, time.Hour)
		close(done)
	}()

	down <- hotkey.Event{}
	up <- hotkey.Event{}
	close(down)
	<-done

	got := collect(events, 50*time.Millisecond)
	assert.Equal(t, []event{{key: "f9", down: true}, {key: "f9", down: false}}, got)
}

func TestSendNeverDropsRelease(t *testing.T) {
	ch := make(chan event, 1)
	send(ch, event{key: "f9", down: true})
	send(ch, event{key: "f10", down: true}) // full: dropped

	sent := make(chan struct{})
	go func() {
		send(ch, event{key: "f9", down: false})
		close(sent)
	}()

	assert.Equal(t, event{key: "f9", down: true}, <-ch)
	assert.Equal(t, event{key: "f9", down: false}, <-ch)
	<-sent
}
