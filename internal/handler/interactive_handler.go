package handler

import "github.com/gluk-w/tabshell/internal/session"

// InteractiveHandler forwards each output event's raw (escape-intact) text
// straight to the display collaborator. No block accumulation happens
// while this handler is active.
type InteractiveHandler struct {
	collaborator DisplayCollaborator
}

// NewInteractiveHandler wraps collaborator for use as a Handler.
func NewInteractiveHandler(collaborator DisplayCollaborator) *InteractiveHandler {
	return &InteractiveHandler{collaborator: collaborator}
}

func (h *InteractiveHandler) HandleOutput(evt session.OutputEvent) {
	if h.collaborator != nil {
		h.collaborator.PresentRaw(evt.RawText)
	}
}

// Stop is a no-op: InteractiveHandler buffers nothing and owns no timer.
func (h *InteractiveHandler) Stop() {}
