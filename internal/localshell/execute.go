package localshell

import (
	"strings"
	"sync"
	"time"

	"github.com/gluk-w/tabshell/internal/session"
)

// stabilityInterval is how long output must stay quiet before a command is
// considered finished.
const stabilityInterval = 500 * time.Millisecond

// hardCap bounds how long Execute waits even if output never quiesces.
const hardCap = 2 * time.Second

// Execute writes command followed by a newline and waits for output to
// quiesce, matching the C3 contract. A zero timeout uses
// session.DefaultCommandTimeout; the effective wait is capped at
// min(hardCap, timeout).
func (h *Host) Execute(command string, timeout time.Duration) session.CommandResult {
	start := time.Now()

	if h.State() != session.StateConnected {
		return session.DisconnectedResult("local shell is not connected")
	}

	if timeout <= 0 {
		timeout = session.DefaultCommandTimeout
	}
	waitCap := hardCap
	if timeout < waitCap {
		waitCap = timeout
	}

	var mu sync.Mutex
	var out strings.Builder
	var errOut strings.Builder
	lastActivity := time.Now()

	listener := func(clean string, isErr bool) {
		mu.Lock()
		defer mu.Unlock()
		lastActivity = time.Now()
		if isErr {
			errOut.WriteString(clean)
		} else {
			out.WriteString(clean)
		}
	}

	h.execListenersMu.Lock()
	h.execListeners = append(h.execListeners, listener)
	idx := len(h.execListeners) - 1
	h.execListenersMu.Unlock()
	defer func() {
		h.execListenersMu.Lock()
		h.execListeners[idx] = nil
		h.execListenersMu.Unlock()
	}()

	if err := h.Write(command + "\r\n"); err != nil {
		return session.CommandResult{Error: err.Error(), ExitCode: -1}
	}

	isTimeout := false
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		mu.Lock()
		quiet := time.Since(lastActivity)
		mu.Unlock()
		if quiet >= stabilityInterval {
			break
		}
		if time.Since(start) >= waitCap {
			isTimeout = true
			break
		}
	}

	mu.Lock()
	rawOutput := out.String()
	rawErr := errOut.String()
	mu.Unlock()

	cleanOutput := stripEchoAndTrailingPrompt(rawOutput, command)

	if newDir, isCD := resolveCDTarget(h.CurrentDirectory(), command); isCD {
		h.setCWD(newDir)
	}

	exitCode := 0
	if isTimeout {
		exitCode = -1
	}

	return session.CommandResult{
		Output:           cleanOutput,
		Error:            rawErr,
		ExitCode:         exitCode,
		Duration:         time.Since(start),
		CurrentDirectory: h.CurrentDirectory(),
		IsTimeout:        isTimeout,
	}
}

// stripEchoAndTrailingPrompt removes the echoed command line (the PTY
// echoes whatever was written to stdin) and a trailing empty prompt line
// from accumulated output.
func stripEchoAndTrailingPrompt(output, command string) string {
	lines := strings.Split(output, "\n")
	if len(lines) > 0 && strings.TrimRight(lines[0], "\r") == command {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
