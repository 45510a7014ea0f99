package localshell

import (
	"strings"
	"testing"
	"time"

	"github.com/gluk-w/tabshell/internal/session"
)

// TestPTYSmokeEchoHelloWorld is the spec's end-to-end PTY smoke scenario:
// start a local session, execute a command, and check the block would come
// back success with output containing the literal text.
func TestPTYSmokeEchoHelloWorld(t *testing.T) {
	h := New("sess-1", "bash", "/bin/sh", nil, "/tmp")
	if err := h.Connect(); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer h.Dispose()

	if h.State() != session.StateConnected {
		t.Fatalf("state = %s, want connected", h.State())
	}

	result := h.Execute("echo hello-world", 3*time.Second)
	if result.IsTimeout {
		t.Fatalf("unexpected timeout: %+v", result)
	}
	if !strings.Contains(result.Output, "hello-world") {
		t.Errorf("output = %q, want it to contain %q", result.Output, "hello-world")
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.ExitCode)
	}
	if result.Duration <= 0 {
		t.Error("duration should be positive")
	}
}

func TestExecuteOnDisconnectedSessionReturnsNegativeExitCode(t *testing.T) {
	h := New("sess-1", "bash", "/bin/sh", nil, "/tmp")
	result := h.Execute("echo hi", time.Second)
	if result.ExitCode >= 0 {
		t.Errorf("ExitCode = %d, want negative", result.ExitCode)
	}
	if result.Error == "" {
		t.Error("expected non-empty error describing disconnection")
	}
}

func TestResizeZeroZeroIsNoOp(t *testing.T) {
	h := New("sess-1", "bash", "/bin/sh", nil, "/tmp")
	if err := h.Connect(); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer h.Dispose()

	if err := h.Resize(0, 0); err != nil {
		t.Errorf("Resize(0,0) should be a no-op, got error: %v", err)
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	h := New("sess-1", "bash", "/bin/sh", nil, "/tmp")
	if err := h.Connect(); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := h.Dispose(); err != nil {
		t.Fatalf("first Dispose() error: %v", err)
	}
	if err := h.Dispose(); err != nil {
		t.Fatalf("second Dispose() error: %v", err)
	}
	if h.State() != session.StateDisconnected {
		t.Errorf("state after dispose = %s, want disconnected", h.State())
	}
}

func TestResolveCDTargetAbsoluteAndRelative(t *testing.T) {
	dir, ok := resolveCDTarget("/home/user", "cd /etc")
	if !ok || dir != "/etc" {
		t.Errorf("absolute cd: dir=%q ok=%v", dir, ok)
	}
	dir, ok = resolveCDTarget("/home/user", "cd projects")
	if !ok || dir != "/home/user/projects" {
		t.Errorf("relative cd: dir=%q ok=%v", dir, ok)
	}
	_, ok = resolveCDTarget("/home/user", "echo cd")
	if ok {
		t.Error("non-cd command should not be recognized as cd")
	}
}

func TestStripEchoAndTrailingPrompt(t *testing.T) {
	raw := "echo hello-world\r\nhello-world\n\n"
	got := stripEchoAndTrailingPrompt(raw, "echo hello-world")
	if got != "hello-world" {
		t.Errorf("stripEchoAndTrailingPrompt() = %q, want %q", got, "hello-world")
	}
}
