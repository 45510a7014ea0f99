package handler

import (
	"time"

	"github.com/gluk-w/tabshell/internal/ring"
	"github.com/gluk-w/tabshell/internal/session"
)

// DisplayCollaborator accepts raw (escape-intact) text for interactive
// rendering. The core does not dictate how it renders it.
type DisplayCollaborator interface {
	PresentRaw(text string)
}

// Handler routes one session's output events somewhere.
type Handler interface {
	HandleOutput(evt session.OutputEvent)
	// Stop flushes any buffered state and releases timers. Safe to call
	// more than once.
	Stop()
}

// flushThreshold forces an immediate flush once this many items are
// pending, independent of the periodic timer.
const flushThreshold = 100

// flushInterval is the periodic buffer-drain tick for the line-oriented
// handler.
const flushInterval = 50 * time.Millisecond

// DetachedSink receives clean text that arrives with no in-flight command
// block (the "detached message stream").
type DetachedSink interface {
	AppendDetached(isError bool, text string)
}

// MessageSequence is the flat mirrored message sequence kept in traditional
// (non-block) view, alongside the in-flight block's own output field.
type MessageSequence = *ring.Sequence[string]
