package handler

import (
	"sync"
	"sync/atomic"

	"github.com/gluk-w/tabshell/internal/block"
	"github.com/gluk-w/tabshell/internal/session"
)

// Dispatcher owns one session's "interactive mode" flag and routes every
// output event to whichever handler is currently active. Switching modes
// is a single atomic transition: readers of interactive() never observe a
// state where neither or both handlers are considered active.
type Dispatcher struct {
	interactive atomic.Bool

	mu   sync.RWMutex
	line *LineHandler
	intr *InteractiveHandler
}

// NewDispatcher builds a dispatcher starting in line-oriented mode.
func NewDispatcher(messages MessageSequence, detached DetachedSink, collaborator DisplayCollaborator) *Dispatcher {
	return &Dispatcher{
		line: NewLineHandler(messages, detached),
		intr: NewInteractiveHandler(collaborator),
	}
}

// HandleOutput is the subscriber callback registered against a session's
// output-event stream.
func (d *Dispatcher) HandleOutput(evt session.OutputEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.interactive.Load() {
		d.intr.HandleOutput(evt)
		return
	}
	d.line.HandleOutput(evt)
}

// SetInteractive flips the mode flag atomically. Callers must only invoke
// this from the UI dispatch context, per the spec's ownership rule.
func (d *Dispatcher) SetInteractive(on bool) {
	d.interactive.Store(on)
}

// IsInteractive reports the current mode.
func (d *Dispatcher) IsInteractive() bool {
	return d.interactive.Load()
}

// SetInFlightBlock assigns the block the line-oriented handler accumulates
// into; called by the session manager at command-dispatch time.
func (d *Dispatcher) SetInFlightBlock(b *block.Block) {
	d.line.SetBlock(b)
}

// Stop releases the line handler's timer and forces a final flush. The
// interactive handler owns no resources and needs no stop.
func (d *Dispatcher) Stop() {
	d.line.Stop()
}
