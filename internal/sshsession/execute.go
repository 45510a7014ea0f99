package sshsession

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/gluk-w/tabshell/internal/session"
)

// Execute runs command on the persistent shell-stream channel using the
// prompt-marker protocol: the host writes `<command>; echo
// '###PROMPT_END###'$?`, then waits for the marker to appear in the
// accumulated output, parsing the digits immediately following it as the
// exit code. The echoed command line holds the marker too, followed by a
// quote, so only a marker followed by a digit ends the wait. Concurrent
// calls on the same host serialize through execMu.
func (h *Host) Execute(command string, timeout time.Duration) session.CommandResult {
	start := time.Now()

	if h.State() != session.StateConnected {
		return session.DisconnectedResult("ssh session is not connected")
	}
	if timeout <= 0 {
		timeout = session.DefaultCommandTimeout
	}

	h.execMu.Lock()
	defer h.execMu.Unlock()

	var mu sync.Mutex
	var buf strings.Builder
	done := make(chan struct{})
	var closeOnce sync.Once

	findMarker := func(text string) int {
		for from := 0; ; {
			i := strings.Index(text[from:], promptMarker)
			if i < 0 {
				return -1
			}
			end := from + i + len(promptMarker)
			if end < len(text) && text[end] >= '0' && text[end] <= '9' {
				return from + i
			}
			from = end
		}
	}

	listener := func(clean string, isErr bool) {
		mu.Lock()
		buf.WriteString(clean)
		text := buf.String()
		mu.Unlock()
		if findMarker(text) >= 0 {
			closeOnce.Do(func() { close(done) })
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

	cmdLine := command + "; echo '" + promptMarker + "'$?\n"
	if err := h.WriteRaw(cmdLine); err != nil {
		return session.CommandResult{Error: err.Error(), ExitCode: -1}
	}

	isTimeout := false
	select {
	case <-done:
	case <-time.After(timeout):
		isTimeout = true
	}

	mu.Lock()
	text := buf.String()
	mu.Unlock()

	echoedLine := strings.TrimSuffix(cmdLine, "\n")

	if isTimeout {
		return session.CommandResult{
			Output:           stripEchoedLine(text, echoedLine),
			ExitCode:         -1,
			IsTimeout:        true,
			Duration:         time.Since(start),
			CurrentDirectory: h.CurrentDirectory(),
		}
	}

	markerIdx := findMarker(text)
	before := text[:markerIdx]
	after := text[markerIdx+len(promptMarker):]
	exitCode := parseLeadingInt(after)

	if exitCode == 0 {
		h.syncWorkingDirectory()
	}

	return session.CommandResult{
		Output:           stripEchoedLine(before, echoedLine),
		ExitCode:         exitCode,
		Duration:         time.Since(start),
		CurrentDirectory: h.CurrentDirectory(),
	}
}

// ExecuteEphemeral runs command on a fresh exec channel instead of the
// persistent shell stream: simpler, but loses shell state (including cwd)
// between calls, so the current directory is manually re-applied via `cd`.
func (h *Host) ExecuteEphemeral(command string, timeout time.Duration) session.CommandResult {
	start := time.Now()

	h.mu.Lock()
	client := h.client
	cwd := h.cwd
	h.mu.Unlock()
	if client == nil {
		return session.DisconnectedResult("ssh session is not connected")
	}

	sess, err := client.NewSession()
	if err != nil {
		return session.CommandResult{Error: err.Error(), ExitCode: -1}
	}
	defer sess.Close()

	wrapped := command
	if cwd != "" {
		wrapped = "cd '" + cwd + "' 2>/dev/null; " + command
	}

	type result struct {
		output []byte
		err    error
	}
	resultCh := make(chan result, 1)
	go func() {
		out, runErr := sess.CombinedOutput(wrapped)
		resultCh <- result{out, runErr}
	}()

	select {
	case r := <-resultCh:
		exitCode := 0
		if r.err != nil {
			exitCode = exitStatusFromError(r.err)
		}
		return session.CommandResult{
			Output:           string(r.output),
			ExitCode:         exitCode,
			Duration:         time.Since(start),
			CurrentDirectory: cwd,
		}
	case <-time.After(timeout):
		sess.Close()
		return session.CommandResult{
			IsTimeout:        true,
			ExitCode:         -1,
			Duration:         time.Since(start),
			CurrentDirectory: cwd,
		}
	}
}

// syncWorkingDirectory runs pwd on a fresh ephemeral channel and updates the
// session-level cwd, per the C4 working-directory-tracking contract.
func (h *Host) syncWorkingDirectory() {
	h.mu.Lock()
	client := h.client
	h.mu.Unlock()
	if client == nil {
		return
	}
	sess, err := client.NewSession()
	if err != nil {
		return
	}
	defer sess.Close()
	out, err := sess.Output("pwd")
	if err != nil {
		return
	}
	dir := strings.TrimSpace(string(out))
	if dir != "" {
		h.setCWD(dir)
	}
}

// stripEchoedLine removes the terminal-echoed command line from the front of
// output, leaving the rest exactly as captured (including its trailing
// newline, if any).
func stripEchoedLine(output, echoedLine string) string {
	lines := strings.Split(output, "\n")
	if len(lines) > 0 && strings.TrimRight(lines[0], "\r") == echoedLine {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func parseLeadingInt(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0
	}
	return n
}

func exitStatusFromError(err error) int {
	if ee, ok := err.(*ssh.ExitError); ok {
		return ee.ExitStatus()
	}
	return -1
}
