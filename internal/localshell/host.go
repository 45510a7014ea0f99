package localshell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"

	"github.com/gluk-w/tabshell/internal/session"
	"github.com/gluk-w/tabshell/internal/vt"
)

// Default initial pseudo-console dimensions.
const (
	DefaultCols = 130
	DefaultRows = 40
)

// Host is a local PTY-backed session (C3).
type Host struct {
	id          string
	displayName string
	shellPath   string
	args        []string

	mu             sync.Mutex
	state          session.State
	stateObservers []func(session.State)
	cwd            string
	cwdObservers   []func(string)

	cmd           *exec.Cmd
	ptmx          *os.File
	fallback      bool
	fallbackStdin io.WriteCloser
	stderrR       io.ReadCloser

	decoder    *vt.Decoder
	errDecoder *vt.Decoder

	output chan session.OutputEvent

	execListenersMu sync.Mutex
	execListeners   []func(clean string, isErr bool)

	disposeOnce sync.Once
}

// New creates a Host that will spawn shellPath with args in workingDir when
// Connect is called. If shellPath is empty, the caller's default shell
// should be resolved by the scheduler before calling New.
func New(id, displayName, shellPath string, args []string, workingDir string) *Host {
	if workingDir == "" {
		workingDir, _ = os.Getwd()
	}
	return &Host{
		id:          id,
		displayName: displayName,
		shellPath:   shellPath,
		args:        args,
		state:       session.StateDisconnected,
		cwd:         workingDir,
		output:      make(chan session.OutputEvent, 256),
		decoder:     vt.NewDecoder(),
		errDecoder:  vt.NewDecoder(),
	}
}

func (h *Host) ID() string          { return h.id }
func (h *Host) Kind() session.Kind  { return session.KindLocal }
func (h *Host) DisplayName() string { return h.displayName }
func (h *Host) ShellType() string   { return filepath.Base(h.shellPath) }

// Pid returns the child shell's process ID, for resource sampling. The
// second return value is false before Connect or after Dispose.
func (h *Host) Pid() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil || h.cmd.Process == nil {
		return 0, false
	}
	return h.cmd.Process.Pid, true
}

// IsFallback reports whether this host is running in redirected-pipes mode
// because pseudo-console allocation was unavailable.
func (h *Host) IsFallback() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fallback
}

func (h *Host) State() session.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Host) setState(s session.State) {
	h.mu.Lock()
	h.state = s
	observers := append([]func(session.State){}, h.stateObservers...)
	h.mu.Unlock()
	for _, fn := range observers {
		if fn != nil {
			fn(s)
		}
	}
}

func (h *Host) OnStateChange(fn func(session.State)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stateObservers = append(h.stateObservers, fn)
	idx := len(h.stateObservers) - 1
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if idx < len(h.stateObservers) {
			h.stateObservers[idx] = nil
		}
	}
}

func (h *Host) CurrentDirectory() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cwd
}

func (h *Host) setCWD(dir string) {
	h.mu.Lock()
	h.cwd = dir
	observers := append([]func(string){}, h.cwdObservers...)
	h.mu.Unlock()
	for _, fn := range observers {
		if fn != nil {
			fn(dir)
		}
	}
}

func (h *Host) OnDirectoryChange(fn func(string)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cwdObservers = append(h.cwdObservers, fn)
	idx := len(h.cwdObservers) - 1
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if idx < len(h.cwdObservers) {
			h.cwdObservers[idx] = nil
		}
	}
}

func (h *Host) Output() <-chan session.OutputEvent { return h.output }

// Connect spawns the child process. It first attempts pseudo-console
// allocation; on failure it falls back to a redirected-pipes child,
// recording the mode on the session per the PTY-unavailable error-handling
// policy (recovered locally, informational only).
func (h *Host) Connect() error {
	h.setState(session.StateConnecting)

	cmd := exec.Command(h.shellPath, h.args...)
	cmd.Dir = h.cwd
	cmd.Env = os.Environ()

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: DefaultCols, Rows: DefaultRows})
	if err == nil {
		h.mu.Lock()
		h.cmd = cmd
		h.ptmx = ptmx
		h.fallback = false
		h.mu.Unlock()
		go h.readLoop(ptmx, false)
		h.setState(session.StateConnected)
		return nil
	}

	// PTY unavailable: fall back to plain redirected pipes.
	cmd = exec.Command(h.shellPath, h.args...)
	cmd.Dir = h.cwd
	cmd.Env = os.Environ()
	stdin, errIn := cmd.StdinPipe()
	if errIn != nil {
		h.setState(session.StateError)
		return fmt.Errorf("fallback stdin pipe: %w", errIn)
	}
	stdout, errOut := cmd.StdoutPipe()
	if errOut != nil {
		h.setState(session.StateError)
		return fmt.Errorf("fallback stdout pipe: %w", errOut)
	}
	stderr, errErr := cmd.StderrPipe()
	if errErr != nil {
		h.setState(session.StateError)
		return fmt.Errorf("fallback stderr pipe: %w", errErr)
	}
	if err := cmd.Start(); err != nil {
		h.setState(session.StateError)
		return fmt.Errorf("start fallback process: %w", err)
	}

	h.mu.Lock()
	h.cmd = cmd
	h.fallback = true
	h.fallbackStdin = stdin
	h.stderrR = stderr
	h.mu.Unlock()

	go h.readLoop(stdout, false)
	go h.readLoop(stderr, true)
	h.setState(session.StateConnected)
	return nil
}

func (h *Host) readLoop(r io.Reader, isErrChannel bool) {
	buf := make([]byte, 4096)
	decoder := h.decoder
	if isErrChannel {
		decoder = h.errDecoder
	}
	for {
		n, err := r.Read(buf)
		if n > 0 {
			clean, raw := decoder.Feed(buf[:n])
			evt := session.OutputEvent{
				SessionID:      h.id,
				IsErrorChannel: isErrChannel,
				CleanText:      clean,
				RawText:        raw,
				Timestamp:      time.Now(),
			}
			select {
			case h.output <- evt:
			default:
			}
			h.fanOutToExecListeners(clean, isErrChannel)
		}
		if err != nil {
			break
		}
	}
	if !isErrChannel {
		h.setState(session.StateDisconnected)
	}
}

func (h *Host) fanOutToExecListeners(clean string, isErr bool) {
	if clean == "" {
		return
	}
	h.execListenersMu.Lock()
	listeners := append([]func(string, bool){}, h.execListeners...)
	h.execListenersMu.Unlock()
	for _, fn := range listeners {
		fn(clean, isErr)
	}
}

// Write enqueues text to the child's stdin, unmodified: callers append
// CR/LF themselves when executing a command.
func (h *Host) Write(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writeLocked(text)
}

// WriteRaw is identical to Write; kept as a distinct method on the
// interface for interactive single-keystroke forwarding.
func (h *Host) WriteRaw(text string) error {
	return h.Write(text)
}

func (h *Host) writeLocked(text string) error {
	if h.fallback {
		if h.fallbackStdin == nil {
			return fmt.Errorf("session not connected")
		}
		_, err := io.WriteString(h.fallbackStdin, text)
		return err
	}
	if h.ptmx == nil {
		return fmt.Errorf("session not connected")
	}
	_, err := io.WriteString(h.ptmx, text)
	return err
}

// Resize forwards new dimensions to the pseudo-console. No-op in fallback
// mode, and resize(0,0) is always a no-op.
func (h *Host) Resize(cols, rows int) error {
	if cols == 0 && rows == 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fallback || h.ptmx == nil {
		return nil
	}
	return pty.Setsize(h.ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

// SendSpecialKey forwards a non-printable key as its terminal byte sequence.
func (h *Host) SendSpecialKey(key session.SpecialKey) error {
	seq, ok := specialKeySequences[key]
	if !ok {
		return fmt.Errorf("unsupported special key %q", key)
	}
	return h.Write(seq)
}

var specialKeySequences = map[session.SpecialKey]string{
	session.KeyTab:   "\t",
	session.KeyUp:    "\x1b[A",
	session.KeyDown:  "\x1b[B",
	session.KeyRight: "\x1b[C",
	session.KeyLeft:  "\x1b[D",
	session.KeyCtrlC: "\x03",
	session.KeyEscape: "\x1b",
	session.KeyEnter: "\r",
}

// CancelCurrent sends Ctrl-C in pseudo-console mode, or terminates the child
// in fallback mode (matching the weaker fallback contract).
func (h *Host) CancelCurrent() {
	h.mu.Lock()
	fallback := h.fallback
	cmd := h.cmd
	h.mu.Unlock()

	if !fallback {
		h.Write("\x03")
		return
	}
	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
}

// Disconnect is an alias for Dispose: this host type has no reconnect
// semantics separate from full teardown.
func (h *Host) Disconnect() error {
	return h.Dispose()
}

// Dispose terminates the child if running, closes all handles, and
// transitions to disconnected. Idempotent.
func (h *Host) Dispose() error {
	var err error
	h.disposeOnce.Do(func() {
		h.mu.Lock()
		cmd := h.cmd
		ptmx := h.ptmx
		stdin := h.fallbackStdin
		stderr := h.stderrR
		h.mu.Unlock()

		if cmd != nil && cmd.Process != nil {
			cmd.Process.Kill()
		}
		if ptmx != nil {
			ptmx.Close()
		}
		if stdin != nil {
			stdin.Close()
		}
		if stderr != nil {
			stderr.Close()
		}
		if cmd != nil {
			cmd.Wait()
		}
		h.setState(session.StateDisconnected)
		close(h.output)
	})
	return err
}

// resolveCDTarget computes the new working directory after a `cd` command,
// resolving a relative argument against the current cwd.
func resolveCDTarget(currentDir, command string) (string, bool) {
	fields := strings.Fields(strings.TrimSpace(command))
	if len(fields) == 0 || fields[0] != "cd" {
		return "", false
	}
	if len(fields) == 1 {
		home, err := os.UserHomeDir()
		if err != nil {
			return currentDir, true
		}
		return home, true
	}
	target := fields[1]
	if filepath.IsAbs(target) {
		return filepath.Clean(target), true
	}
	return filepath.Clean(filepath.Join(currentDir, target)), true
}
