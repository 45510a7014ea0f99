package sshsession

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/gluk-w/tabshell/internal/session"
	"github.com/gluk-w/tabshell/internal/sshkeys"
	"github.com/gluk-w/tabshell/internal/vt"
)

// promptMarker delimits command output in shell-stream mode. It is
// distinguishable enough that ordinary command output is vanishingly
// unlikely to emit it verbatim.
const promptMarker = "###PROMPT_END###"

// Host is an SSH-backed session (C4).
type Host struct {
	id          string
	displayName string
	cfg         Config

	mu             sync.Mutex
	state          session.State
	stateObservers []func(session.State)
	cwd            string
	cwdObservers   []func(string)

	client       *ssh.Client
	shellSession *ssh.Session
	shellStdin   io.WriteCloser
	lastFingerprint string

	decoder *vt.Decoder
	output  chan session.OutputEvent

	execMu          sync.Mutex
	execListenersMu sync.Mutex
	execListeners   []func(clean string, isErr bool)

	disposeOnce sync.Once
}

// New creates a Host for the given profile config. Connect must be called
// before any other operation.
func New(id, displayName string, cfg Config) *Host {
	return &Host{
		id:          id,
		displayName: displayName,
		cfg:         cfg.withDefaults(),
		state:       session.StateDisconnected,
		output:      make(chan session.OutputEvent, 256),
		decoder:     vt.NewDecoder(),
	}
}

func (h *Host) ID() string          { return h.id }
func (h *Host) Kind() session.Kind  { return session.KindSSH }
func (h *Host) DisplayName() string { return h.displayName }
func (h *Host) ShellType() string   { return h.cfg.ShellType }

// LastHostKeyFingerprint returns the fingerprint observed on the most
// recent connection, for the caller to persist as the next TOFU baseline.
func (h *Host) LastHostKeyFingerprint() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastFingerprint
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

// Client exposes the underlying *ssh.Client for the port-forwarding
// sub-manager (internal/tunnel), which needs to Dial/Listen through it.
func (h *Host) Client() *ssh.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.client
}

// Connect resolves credentials, dials the SSH transport, and opens the
// persistent shell-stream channel.
func (h *Host) Connect() error {
	h.setState(session.StateConnecting)

	auth, err := h.buildAuthMethods()
	if err != nil {
		h.setState(session.StateError)
		return fmt.Errorf("resolve credentials: %w", err)
	}

	hostKeyCallback, fingerprintOut := sshkeys.MakeHostKeyCallback(h.cfg.ExpectedHostKeyFingerprint)

	clientCfg := &ssh.ClientConfig{
		User:            h.cfg.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         h.cfg.HandshakeTimeout,
	}

	addr := net.JoinHostPort(h.cfg.Host, fmt.Sprintf("%d", h.cfg.Port))
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		h.setState(session.StateError)
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	h.mu.Lock()
	h.client = client
	h.lastFingerprint = *fingerprintOut
	h.mu.Unlock()

	if err := h.openShellStream(); err != nil {
		client.Close()
		h.setState(session.StateError)
		return fmt.Errorf("open shell stream: %w", err)
	}

	go h.keepaliveLoop()

	h.setState(session.StateConnected)
	return nil
}

func (h *Host) buildAuthMethods() ([]ssh.AuthMethod, error) {
	switch h.cfg.AuthMethod {
	case AuthPassword:
		return []ssh.AuthMethod{ssh.Password(h.cfg.Password)}, nil
	case AuthPrivateKey:
		signer, err := sshkeys.LoadSigner(h.cfg.PrivateKeyPath, h.cfg.Passphrase)
		if err != nil {
			return nil, err
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	default:
		return nil, fmt.Errorf("unknown auth method %q", h.cfg.AuthMethod)
	}
}

func (h *Host) openShellStream() error {
	sess, err := h.client.NewSession()
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := sess.RequestPty(h.cfg.ShellType, h.cfg.Rows, h.cfg.Cols, modes); err != nil {
		sess.Close()
		return fmt.Errorf("request pty: %w", err)
	}

	stdin, err := sess.StdinPipe()
	if err != nil {
		sess.Close()
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := sess.Shell(); err != nil {
		sess.Close()
		return fmt.Errorf("start shell: %w", err)
	}

	h.mu.Lock()
	h.shellSession = sess
	h.shellStdin = stdin
	h.mu.Unlock()

	go h.readLoop(stdout)
	return nil
}

func (h *Host) readLoop(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			clean, raw := h.decoder.Feed(buf[:n])
			evt := session.OutputEvent{
				SessionID: h.id,
				CleanText: clean,
				RawText:   raw,
				Timestamp: time.Now(),
			}
			select {
			case h.output <- evt:
			default:
			}
			h.fanOutToExecListeners(clean)
		}
		if err != nil {
			break
		}
	}
	h.setState(session.StateDisconnected)
}

func (h *Host) fanOutToExecListeners(clean string) {
	if clean == "" {
		return
	}
	h.execListenersMu.Lock()
	listeners := append([]func(string, bool){}, h.execListeners...)
	h.execListenersMu.Unlock()
	for _, fn := range listeners {
		if fn != nil {
			fn(clean, false)
		}
	}
}

func (h *Host) keepaliveLoop() {
	ticker := time.NewTicker(h.cfg.KeepaliveInterval)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.Lock()
		client := h.client
		h.mu.Unlock()
		if client == nil {
			return
		}
		if _, _, err := client.SendRequest("keepalive@tabshell", true, nil); err != nil {
			return
		}
		if h.State() != session.StateConnected {
			return
		}
	}
}

// WriteRaw forwards raw bytes (interactive keystrokes) to the shell stream.
func (h *Host) WriteRaw(text string) error {
	h.mu.Lock()
	stdin := h.shellStdin
	h.mu.Unlock()
	if stdin == nil {
		return fmt.Errorf("ssh session not connected")
	}
	_, err := io.WriteString(stdin, text)
	return err
}

var specialKeySequences = map[session.SpecialKey]string{
	session.KeyTab:    "\t",
	session.KeyUp:     "\x1b[A",
	session.KeyDown:   "\x1b[B",
	session.KeyRight:  "\x1b[C",
	session.KeyLeft:   "\x1b[D",
	session.KeyCtrlC:  "\x03",
	session.KeyEscape: "\x1b",
	session.KeyEnter:  "\r",
}

func (h *Host) SendSpecialKey(key session.SpecialKey) error {
	seq, ok := specialKeySequences[key]
	if !ok {
		return fmt.Errorf("unsupported special key %q", key)
	}
	return h.WriteRaw(seq)
}

func (h *Host) CancelCurrent() {
	h.WriteRaw("\x03")
}

func (h *Host) Disconnect() error {
	return h.Dispose()
}

// Dispose closes the shell stream and the underlying transport. Idempotent.
func (h *Host) Dispose() error {
	h.disposeOnce.Do(func() {
		h.mu.Lock()
		sess := h.shellSession
		client := h.client
		h.mu.Unlock()

		if sess != nil {
			sess.Close()
		}
		if client != nil {
			client.Close()
		}
		h.setState(session.StateDisconnected)
		close(h.output)
	})
	return nil
}
