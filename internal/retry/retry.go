package retry

import (
	"fmt"

	"github.com/gluk-w/tabshell/internal/aiclient"
)

// Action is the outcome of one Next call.
type Action string

const (
	ActionRetry          Action = "retry"
	ActionBlocked        Action = "blocked"
	ActionTerminalFailure Action = "terminal_failure"
)

// Decision is what the caller should do next: execute Command (ActionRetry),
// stop because the proposed command is dangerous (ActionBlocked), or give
// up (ActionTerminalFailure).
type Decision struct {
	Action         Action
	Command        string
	Cause          string
	Solution       string
	RequiredAction string
	IsDangerous    bool
}

// Next decides the next step given a failed command and its stderr.
// attemptsSoFar and maxAttempts bound the loop; translator may be nil, in
// which case only the local heuristics are tried. ctx is forwarded to the
// translator's AnalyzeError call for grounding and may be nil.
func Next(command, stderr string, attemptsSoFar, maxAttempts int, translator aiclient.Translator, ctx *aiclient.Context) (Decision, error) {
	if IsDangerous(command) {
		return Decision{Action: ActionBlocked, IsDangerous: true}, nil
	}

	if attemptsSoFar >= maxAttempts {
		return Decision{Action: ActionTerminalFailure}, nil
	}

	if fixed, ok := localAutoFix(command, stderr); ok {
		if IsDangerous(fixed) {
			return Decision{Action: ActionBlocked, IsDangerous: true}, nil
		}
		return Decision{Action: ActionRetry, Command: fixed}, nil
	}

	if translator == nil {
		return Decision{Action: ActionTerminalFailure}, nil
	}

	fix, err := translator.AnalyzeError(command, stderr, ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("retry: analyze_error: %w", err)
	}

	if !fix.IsFixable || fix.FixedCommand == "" || fix.FixedCommand == command {
		return Decision{
			Action:         ActionTerminalFailure,
			Cause:          fix.ErrorCause,
			Solution:       fix.Solution,
			RequiredAction: fix.RequiredAction,
		}, nil
	}

	if IsDangerous(fix.FixedCommand) {
		return Decision{Action: ActionBlocked, IsDangerous: true}, nil
	}

	return Decision{
		Action:   ActionRetry,
		Command:  fix.FixedCommand,
		Cause:    fix.ErrorCause,
		Solution: fix.Solution,
	}, nil
}
