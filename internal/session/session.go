// Package session defines the common contract shared by the local PTY host
// (internal/localshell) and the SSH host (internal/sshsession): state
// machine, output event shape, and command-result record (C5).
package session

import "time"

// Kind distinguishes the two host implementations and, for local shells, the
// particular shell flavor in use.
type Kind string

const (
	KindLocal Kind = "local"
	KindSSH   Kind = "ssh"
)

// State is the session lifecycle. Transitions only ever go forward along
// disconnected -> connecting -> connected -> (disconnected | error); dispose
// always ends at disconnected regardless of where it started.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)

// DefaultCommandTimeout is the universal execute() timeout used when the
// caller passes zero, resolving the spec's "pick one policy" open question
// in favor of a single value for both local and SSH paths.
const DefaultCommandTimeout = 30 * time.Second

// OutputEvent is a tagged chunk of session output, already run through the
// VT/ANSI decoder (internal/vt): CleanText has escapes stripped, RawText
// keeps them for an interactive renderer.
type OutputEvent struct {
	SessionID     string
	IsErrorChannel bool
	CleanText     string
	RawText       string
	Timestamp     time.Time
}

// CommandResult is returned by Execute.
type CommandResult struct {
	Output          string
	Error           string
	ExitCode        int
	Duration        time.Duration
	CurrentDirectory string
	IsTimeout       bool
}

// SpecialKey names a non-printable key forwarded during interactive mode.
type SpecialKey string

const (
	KeyTab       SpecialKey = "tab"
	KeyUp        SpecialKey = "up"
	KeyDown      SpecialKey = "down"
	KeyLeft      SpecialKey = "left"
	KeyRight     SpecialKey = "right"
	KeyCtrlC     SpecialKey = "ctrl-c"
	KeyEscape    SpecialKey = "escape"
	KeyEnter     SpecialKey = "enter"
)

// Session is the common contract implemented by localshell.Host and
// sshsession.Host. Disposal is idempotent; after Dispose the output channel
// produces no further events. State is the single source of truth for
// "connected" and must be set before any connected-state observer fires, so
// that observers never race a partially-connected session.
type Session interface {
	ID() string
	Kind() Kind
	DisplayName() string
	ShellType() string

	State() State
	OnStateChange(fn func(State)) (unsubscribe func())

	CurrentDirectory() string
	OnDirectoryChange(fn func(string)) (unsubscribe func())

	Output() <-chan OutputEvent

	Connect() error
	Disconnect() error

	// Execute runs command and waits for completion or timeout. A zero
	// timeout uses DefaultCommandTimeout.
	Execute(command string, timeout time.Duration) CommandResult

	WriteRaw(text string) error
	SendSpecialKey(key SpecialKey) error
	CancelCurrent()

	Dispose() error
}

// DisconnectedResult builds the CommandResult returned by Execute when
// called on a session that is not connected.
func DisconnectedResult(reason string) CommandResult {
	return CommandResult{
		Error:    "session is not connected: " + reason,
		ExitCode: -1,
	}
}
