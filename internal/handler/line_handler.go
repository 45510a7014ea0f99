package handler

import (
	"strings"
	"sync"
	"time"

	"github.com/gluk-w/tabshell/internal/block"
	"github.com/gluk-w/tabshell/internal/session"
)

// pendingItem is one buffered output event awaiting flush.
type pendingItem struct {
	isError bool
	text    string
}

// LineHandler batches clean text from output events and merges it into the
// session's in-flight command block, or into a detached sink when no block
// is in flight.
type LineHandler struct {
	mu       sync.Mutex
	block    *block.Block
	pending  []pendingItem
	messages MessageSequence
	detached DetachedSink

	ticker   *time.Ticker
	stopOnce sync.Once
	done     chan struct{}
}

// NewLineHandler starts the 50ms flush timer immediately. SetBlock assigns
// (or clears, with nil) the in-flight block the handler accumulates into.
func NewLineHandler(messages MessageSequence, detached DetachedSink) *LineHandler {
	h := &LineHandler{
		messages: messages,
		detached: detached,
		ticker:   time.NewTicker(flushInterval),
		done:     make(chan struct{}),
	}
	go h.tickLoop()
	return h
}

func (h *LineHandler) tickLoop() {
	for {
		select {
		case <-h.ticker.C:
			h.flush()
		case <-h.done:
			return
		}
	}
}

// SetBlock changes the block this handler accumulates into. Passing nil
// makes output fall into the detached stream until a new block is set.
func (h *LineHandler) SetBlock(b *block.Block) {
	h.mu.Lock()
	h.block = b
	h.mu.Unlock()
}

// HandleOutput enqueues clean text onto the batch buffer, forcing an
// immediate flush once the buffer holds flushThreshold items.
func (h *LineHandler) HandleOutput(evt session.OutputEvent) {
	h.mu.Lock()
	h.pending = append(h.pending, pendingItem{isError: evt.IsErrorChannel, text: evt.CleanText})
	overflow := len(h.pending) >= flushThreshold
	h.mu.Unlock()

	if overflow {
		h.flush()
	}
}

// flush concatenates all pending stdout text into one string and all pending
// error-channel text into another, merges each into the in-flight block (or
// the detached sink), then mirrors into the flat message sequence.
func (h *LineHandler) flush() {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	b := h.block
	h.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	var out, errOut strings.Builder
	for _, p := range pending {
		if p.isError {
			errOut.WriteString(p.text)
		} else {
			out.WriteString(p.text)
		}
	}

	if out.Len() > 0 {
		h.merge(b, false, out.String())
	}
	if errOut.Len() > 0 {
		h.merge(b, true, errOut.String())
	}
}

func (h *LineHandler) merge(b *block.Block, isError bool, text string) {
	if b != nil {
		if isError {
			b.AppendError(text)
		} else {
			b.AppendOutput(text)
		}
	} else if h.detached != nil {
		h.detached.AppendDetached(isError, text)
	}

	if h.messages != nil {
		h.messages.Insert(text)
	}
}

// Stop halts the periodic timer and forces one final flush to drain
// whatever remains buffered. Safe to call more than once.
func (h *LineHandler) Stop() {
	h.stopOnce.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
	h.flush()
}
