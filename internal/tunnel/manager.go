package tunnel

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"sync"

	"github.com/armon/go-socks5"
	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/gluk-w/tabshell/internal/logutil"
)

// Manager owns the forwarding entries for one SSH connection.
type Manager struct {
	client *ssh.Client

	mu      sync.Mutex
	entries map[string]*Entry
}

// New creates a Manager bound to client. client may be replaced after a
// reconnect via Rebind before calling OnReconnect.
func New(client *ssh.Client) *Manager {
	return &Manager{client: client, entries: make(map[string]*Entry)}
}

// Rebind swaps in a freshly reconnected SSH client, used before restarting
// entries on reconnect.
func (m *Manager) Rebind(client *ssh.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = client
}

// List returns a snapshot of all entries.
func (m *Manager) List() []*Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out
}

// Start begins forwarding according to cfg, dispatching to the local,
// remote, or dynamic starter.
func (m *Manager) Start(cfg Config) (*Entry, error) {
	switch cfg.Type {
	case TypeLocal:
		return m.StartLocal(cfg)
	case TypeRemote:
		return m.StartRemote(cfg)
	case TypeDynamic:
		return m.StartDynamic(cfg)
	default:
		return nil, fmt.Errorf("unknown tunnel type %q", cfg.Type)
	}
}

// StartLocal opens a local bind and tunnels accepted connections to
// (RemoteHost, RemotePort) through the SSH transport (ssh -L equivalent).
func (m *Manager) StartLocal(cfg Config) (*Entry, error) {
	client := m.getClient()
	addr := fmt.Sprintf("%s:%d", cfg.LocalBind, cfg.LocalPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	id := uuid.New().String()
	entry := newEntry(id, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	entry.listener = listener
	entry.cancel = cancel
	entry.setRunning()
	m.add(entry)

	remoteAddr := fmt.Sprintf("%s:%d", cfg.RemoteHost, cfg.RemotePort)
	go func() {
		defer listener.Close()
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				entry.setError(err)
				return
			}
			remote, err := client.Dial("tcp", remoteAddr)
			if err != nil {
				log.Printf("[tunnel] dial %s through ssh failed: %v", logutil.SanitizeForLog(remoteAddr), err)
				conn.Close()
				continue
			}
			go bidirectionalCopy(ctx, conn, remote)
		}
	}()

	return entry, nil
}

// StartRemote asks the SSH peer to bind RemotePort and forward connections
// back to (127.0.0.1, LocalPort) (ssh -R equivalent).
func (m *Manager) StartRemote(cfg Config) (*Entry, error) {
	client := m.getClient()
	remoteAddr := fmt.Sprintf("%s:%d", cfg.RemoteHost, cfg.RemotePort)
	listener, err := client.Listen("tcp", remoteAddr)
	if err != nil {
		return nil, fmt.Errorf("remote listen on %s: %w", remoteAddr, err)
	}

	id := uuid.New().String()
	entry := newEntry(id, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	entry.listener = listener
	entry.cancel = cancel
	entry.setRunning()
	m.add(entry)

	localAddr := fmt.Sprintf("127.0.0.1:%d", cfg.LocalPort)
	go func() {
		defer listener.Close()
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				entry.setError(err)
				return
			}
			local, err := net.Dial("tcp", localAddr)
			if err != nil {
				log.Printf("[tunnel] dial local %s failed: %v", localAddr, err)
				conn.Close()
				continue
			}
			go bidirectionalCopy(ctx, conn, local)
		}
	}()

	return entry, nil
}

// StartDynamic opens a SOCKS5-capable local bind whose outbound dials are
// routed through the SSH transport.
func (m *Manager) StartDynamic(cfg Config) (*Entry, error) {
	client := m.getClient()
	addr := fmt.Sprintf("%s:%d", cfg.LocalBind, cfg.LocalPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	server, err := socks5.New(&socks5.Config{
		Dial: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return client.Dial(network, addr)
		},
	})
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("create socks5 server: %w", err)
	}

	id := uuid.New().String()
	entry := newEntry(id, cfg)
	_, cancel := context.WithCancel(context.Background())
	entry.listener = listener
	entry.cancel = cancel
	entry.setRunning()
	m.add(entry)

	go func() {
		err := server.Serve(listener)
		if err != nil {
			if status, _ := entry.Status(); status != StatusStopped {
				entry.setError(err)
			}
		}
	}()

	return entry, nil
}

// Stop closes the bind for id and marks it stopped.
func (m *Manager) Stop(id string) error {
	m.mu.Lock()
	entry, ok := m.entries[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("no tunnel entry %q", id)
	}
	entry.close()
	entry.setStopped()
	// A stopped entry is not running when a later drop happens, so
	// OnReconnect restarts it only if AutoStart is set.
	entry.mu.Lock()
	entry.wasRunning = false
	entry.mu.Unlock()
	return nil
}

// OnDisconnect closes every bind without forgetting the entries, so
// OnReconnect can decide which to restart.
func (m *Manager) OnDisconnect() {
	for _, e := range m.List() {
		wasRunning := e.WasRunning()
		e.close()
		e.mu.Lock()
		e.status = StatusStopped
		e.wasRunning = wasRunning
		e.mu.Unlock()
	}
}

// OnReconnect restarts every entry whose AutoStart is true, plus any entry
// that was running before the connection dropped (reported as
// "recoverable"). Rebind must be called first with the new client.
func (m *Manager) OnReconnect() []error {
	var errs []error
	for _, e := range m.List() {
		if !e.Config.AutoStart && !e.WasRunning() {
			continue
		}
		m.mu.Lock()
		delete(m.entries, e.ID)
		m.mu.Unlock()
		if _, err := m.Start(e.Config); err != nil {
			errs = append(errs, fmt.Errorf("restart tunnel %s: %w", e.ID, err))
		}
	}
	return errs
}

// CloseAll closes every bind and forgets all entries.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	entries := m.entries
	m.entries = make(map[string]*Entry)
	m.mu.Unlock()
	for _, e := range entries {
		e.close()
		e.setStopped()
	}
}

func (m *Manager) add(e *Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
}

func (m *Manager) getClient() *ssh.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}

// bidirectionalCopy pipes data between two connections until one side closes,
// errors, or ctx is cancelled.
func bidirectionalCopy(ctx context.Context, a, b net.Conn) {
	done := make(chan struct{}, 2)
	cp := func(dst, src net.Conn) {
		defer func() { done <- struct{}{} }()
		io.Copy(dst, src)
	}
	go cp(a, b)
	go cp(b, a)

	select {
	case <-done:
	case <-ctx.Done():
	}
	a.Close()
	b.Close()
	<-done
}
