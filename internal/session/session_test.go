package session

import "testing"

func TestDisconnectedResultHasNegativeExitCode(t *testing.T) {
	r := DisconnectedResult("no active connection")
	if r.ExitCode >= 0 {
		t.Errorf("ExitCode = %d, want negative", r.ExitCode)
	}
	if r.Error == "" {
		t.Error("Error should be non-empty")
	}
}

func TestDefaultCommandTimeoutIsThirtySeconds(t *testing.T) {
	if DefaultCommandTimeout.Seconds() != 30 {
		t.Errorf("DefaultCommandTimeout = %v, want 30s", DefaultCommandTimeout)
	}
}
