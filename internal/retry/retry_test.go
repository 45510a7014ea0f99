package retry

import (
	"errors"
	"testing"

	"github.com/gluk-w/tabshell/internal/aiclient"
)

func TestIsDangerousMatchesConservativeSet(t *testing.T) {
	cases := []struct {
		command   string
		dangerous bool
	}{
		{"rm -rf /", true},
		{"rm -fr /", true},
		{"rm -rf /tmp/build", false},
		{"dd if=/dev/zero of=/dev/sda", true},
		{"dd if=/dev/zero of=/tmp/fill.img", false},
		{":(){ :|:& };:", true},
		{"mkfs.ext4 /dev/sda1", true},
		{"mkfs.ext4 /dev/sdb1", false},
		{"ls -la", false},
	}
	for _, c := range cases {
		if got := IsDangerous(c.command); got != c.dangerous {
			t.Errorf("IsDangerous(%q) = %v, want %v", c.command, got, c.dangerous)
		}
	}
}

func TestNextBlocksDangerousCommandBeforeAnythingElse(t *testing.T) {
	decision, err := Next("rm -rf /", "permission denied", 0, 3, nil, nil)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Action != ActionBlocked || !decision.IsDangerous {
		t.Fatalf("Next() = %+v, want blocked/dangerous", decision)
	}
}

func TestNextReportsTerminalFailureWhenAttemptsExhausted(t *testing.T) {
	decision, err := Next("curl example.com", "curl: command not found", 3, 3, nil, nil)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Action != ActionTerminalFailure {
		t.Fatalf("Next() = %+v, want terminal_failure", decision)
	}
}

func TestNextAppliesPermissionDeniedHeuristicBeforeCallingTranslator(t *testing.T) {
	translator := &recordingTranslator{}
	decision, err := Next("systemctl restart nginx", "Failed: permission denied", 0, 3, translator, nil)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Action != ActionRetry || decision.Command != "sudo systemctl restart nginx" {
		t.Fatalf("Next() = %+v, want sudo-prefixed retry", decision)
	}
	if translator.analyzeCalls != 0 {
		t.Errorf("translator.AnalyzeError called %d times, want 0 (local heuristic should short-circuit)", translator.analyzeCalls)
	}
}

func TestNextAppliesCommandNotFoundHeuristicForKnownBinary(t *testing.T) {
	decision, err := Next("jq .foo", "bash: jq: command not found", 0, 3, nil, nil)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Action != ActionRetry || decision.Command != "sudo apt-get install -y jq" {
		t.Fatalf("Next() = %+v, want install suggestion", decision)
	}
}

func TestNextFallsThroughToTranslatorWhenNoHeuristicApplies(t *testing.T) {
	translator := &recordingTranslator{
		fix: aiclient.FixResult{FixedCommand: "systemctl restart nginx.service", IsFixable: true, ErrorCause: "unit name mismatch"},
	}
	decision, err := Next("systemctl restart nginx", "Unit nginx.service not found.", 0, 3, translator, nil)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Action != ActionRetry || decision.Command != "systemctl restart nginx.service" {
		t.Fatalf("Next() = %+v, want translator-proposed retry", decision)
	}
	if translator.analyzeCalls != 1 {
		t.Errorf("translator.AnalyzeError called %d times, want 1", translator.analyzeCalls)
	}
}

func TestNextTreatsIdenticalFixedCommandAsTerminalFailure(t *testing.T) {
	translator := &recordingTranslator{
		fix: aiclient.FixResult{FixedCommand: "systemctl restart nginx", IsFixable: true},
	}
	decision, err := Next("systemctl restart nginx", "connection refused", 0, 3, translator, nil)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Action != ActionTerminalFailure {
		t.Fatalf("Next() = %+v, want terminal_failure for a no-op fix", decision)
	}
}

func TestNextBlocksWhenTranslatorProposesDangerousFix(t *testing.T) {
	translator := &recordingTranslator{
		fix: aiclient.FixResult{FixedCommand: "rm -rf /", IsFixable: true},
	}
	decision, err := Next("rm -rf ./build", "permission issue unrelated to sudo", 0, 3, translator, nil)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if decision.Action != ActionBlocked || !decision.IsDangerous {
		t.Fatalf("Next() = %+v, want blocked", decision)
	}
}

func TestNextPropagatesTranslatorError(t *testing.T) {
	translator := &recordingTranslator{err: errors.New("upstream unavailable")}
	_, err := Next("curl example.com", "some odd failure", 0, 3, translator, nil)
	if err == nil {
		t.Fatal("expected error from failing translator")
	}
}

type recordingTranslator struct {
	fix          aiclient.FixResult
	err          error
	analyzeCalls int
}

func (r *recordingTranslator) Translate(userInput string, ctx *aiclient.Context) (aiclient.TranslateResult, error) {
	return aiclient.TranslateResult{}, nil
}

func (r *recordingTranslator) AnalyzeError(command, stderr string, ctx *aiclient.Context) (aiclient.FixResult, error) {
	r.analyzeCalls++
	return r.fix, r.err
}
