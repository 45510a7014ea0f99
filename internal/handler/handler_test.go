package handler

import (
	"sync"
	"testing"
	"time"

	"github.com/gluk-w/tabshell/internal/block"
	"github.com/gluk-w/tabshell/internal/ring"
	"github.com/gluk-w/tabshell/internal/session"
)

type recordingCollaborator struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingCollaborator) PresentRaw(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *recordingCollaborator) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

type recordingDetached struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingDetached) AppendDetached(isError bool, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
}

func TestLineHandlerFlushesOnTimer(t *testing.T) {
	messages := ring.New[string](100, 1)
	h := NewLineHandler(messages, nil)
	defer h.Stop()

	b := block.New(1, "sess", "ls", "/tmp")
	h.SetBlock(b)

	h.HandleOutput(session.OutputEvent{CleanText: "hello "})
	h.HandleOutput(session.OutputEvent{CleanText: "world"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.Output() == "hello world" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Output() = %q, want %q after timer flush", b.Output(), "hello world")
}

func TestLineHandlerFlushesImmediatelyPastThreshold(t *testing.T) {
	h := NewLineHandler(nil, nil)
	defer h.Stop()
	b := block.New(1, "sess", "cmd", "/tmp")
	h.SetBlock(b)

	for i := 0; i < flushThreshold+1; i++ {
		h.HandleOutput(session.OutputEvent{CleanText: "x"})
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(b.Output()) > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected an immediate flush once the pending buffer crossed the threshold")
}

func TestLineHandlerRoutesErrorChannelSeparately(t *testing.T) {
	h := NewLineHandler(nil, nil)
	b := block.New(1, "sess", "cmd", "/tmp")
	h.SetBlock(b)

	h.HandleOutput(session.OutputEvent{CleanText: "out", IsErrorChannel: false})
	h.HandleOutput(session.OutputEvent{CleanText: "err", IsErrorChannel: true})
	h.Stop()

	if b.Output() != "out" {
		t.Errorf("Output() = %q, want %q", b.Output(), "out")
	}
	if b.Error() != "err" {
		t.Errorf("Error() = %q, want %q", b.Error(), "err")
	}
}

func TestLineHandlerFallsBackToDetachedSinkWithNoBlock(t *testing.T) {
	detached := &recordingDetached{}
	h := NewLineHandler(nil, detached)
	h.HandleOutput(session.OutputEvent{CleanText: "floating"})
	h.Stop()

	if len(detached.lines) != 1 || detached.lines[0] != "floating" {
		t.Errorf("detached.lines = %v, want [floating]", detached.lines)
	}
}

func TestInteractiveHandlerForwardsRawText(t *testing.T) {
	collab := &recordingCollaborator{}
	h := NewInteractiveHandler(collab)
	h.HandleOutput(session.OutputEvent{RawText: "\x1b[31mred\x1b[0m"})

	got := collab.all()
	if len(got) != 1 || got[0] != "\x1b[31mred\x1b[0m" {
		t.Errorf("collaborator texts = %v", got)
	}
}

func TestDispatcherSwitchesModeAtomically(t *testing.T) {
	collab := &recordingCollaborator{}
	d := NewDispatcher(nil, nil, collab)
	defer d.Stop()

	b := block.New(1, "sess", "cmd", "/tmp")
	d.SetInFlightBlock(b)

	d.HandleOutput(session.OutputEvent{CleanText: "line-mode", RawText: "line-mode"})
	time.Sleep(80 * time.Millisecond)
	if b.Output() != "line-mode" {
		t.Errorf("Output() = %q before switching to interactive, want %q", b.Output(), "line-mode")
	}

	d.SetInteractive(true)
	d.HandleOutput(session.OutputEvent{CleanText: "interactive-mode", RawText: "interactive-mode"})

	if len(collab.all()) != 1 {
		t.Fatalf("collaborator received %d events, want 1", len(collab.all()))
	}
	if b.Output() != "line-mode" {
		t.Errorf("Output() changed after switching to interactive mode: %q", b.Output())
	}
}
