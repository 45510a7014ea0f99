package scheduler

import (
	"sync"

	"github.com/gluk-w/tabshell/internal/session"
)

// ActivationAware is implemented by sessions (or their owning UI adapter)
// that want to pause/resume expensive observers when deselected/selected.
type ActivationAware interface {
	OnActivated()
	OnDeactivated()
}

// Orientation is how a split-pane pair is laid out.
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// pairInfo records a split-pane coupling. The pairing is layout-only: each
// side keeps its own independent session lifecycle.
type pairInfo struct {
	partner     string
	orientation Orientation
}

// Manager owns the ordered list of live sessions, the current selection,
// and split-pane layout pairs.
type Manager struct {
	mu       sync.Mutex
	order    []string
	sessions map[string]session.Session
	selected string
	pairs    map[string]pairInfo

	onChange []func()
}

// New builds an empty session manager. The tab order is an ordinary slice
// rather than a bounded internal/ring sequence: the spec calls this list
// "C1-style with large/effectively unbounded cap", and a real user never
// opens enough tabs to make eviction a concern, so there is no trim
// behavior to borrow here beyond the ordered-list-plus-change-notification
// shape itself.
func New() *Manager {
	return &Manager{
		sessions: make(map[string]session.Session),
		pairs:    make(map[string]pairInfo),
	}
}

// Add registers a new live session at the end of the tab order.
func (m *Manager) Add(s session.Session) {
	m.mu.Lock()
	id := s.ID()
	m.sessions[id] = s
	m.order = append(m.order, id)
	first := m.selected == ""
	m.mu.Unlock()

	if first {
		// Select's change notification also covers the insertion.
		m.Select(id)
		return
	}
	m.fireChange()
}

// Remove closes out bookkeeping for a session that has been disposed. It
// does not call Dispose itself — callers own the session's lifecycle.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	delete(m.pairs, id)
	for other, info := range m.pairs {
		if info.partner == id {
			delete(m.pairs, other)
		}
	}
	wasSelected := m.selected == id
	if wasSelected {
		m.selected = ""
		if len(m.order) > 0 {
			m.selected = m.order[0]
		}
	}
	next := m.selected
	m.mu.Unlock()

	if wasSelected && next != "" {
		m.fireActivation("", next)
	}
	m.fireChange()
}

// List returns the live sessions in tab order.
func (m *Manager) List() []session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]session.Session, 0, len(m.order))
	for _, id := range m.order {
		if s, ok := m.sessions[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Get returns the session with id, if still live.
func (m *Manager) Get(id string) (session.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Selected returns the currently selected session, or nil if none.
func (m *Manager) Selected() session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == "" {
		return nil
	}
	return m.sessions[m.selected]
}

// SelectedID returns the currently selected session's ID, or "".
func (m *Manager) SelectedID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Select changes the selection, firing on_deactivated on the previous
// selection and on_activated on the new one.
func (m *Manager) Select(id string) {
	m.mu.Lock()
	if _, ok := m.sessions[id]; !ok || m.selected == id {
		m.mu.Unlock()
		return
	}
	previous := m.selected
	m.selected = id
	m.mu.Unlock()

	m.fireActivation(previous, id)
	m.fireChange()
}

func (m *Manager) fireActivation(previousID, nextID string) {
	m.mu.Lock()
	prev := m.sessions[previousID]
	next := m.sessions[nextID]
	m.mu.Unlock()

	if aware, ok := prev.(ActivationAware); ok {
		aware.OnDeactivated()
	}
	if aware, ok := next.(ActivationAware); ok {
		aware.OnActivated()
	}
}

// Pair couples two sessions for split-pane layout. The pairing is purely
// presentational: each session's connection lifecycle stays independent.
func (m *Manager) Pair(primary, secondary string, orientation Orientation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[primary] = pairInfo{partner: secondary, orientation: orientation}
	m.pairs[secondary] = pairInfo{partner: primary, orientation: orientation}
}

// Unpair removes any split-pane coupling involving id.
func (m *Manager) Unpair(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if info, ok := m.pairs[id]; ok {
		delete(m.pairs, info.partner)
		delete(m.pairs, id)
	}
}

// PairedWith returns the partner session ID and orientation, if id is part
// of a split-pane pair.
func (m *Manager) PairedWith(id string) (partner string, orientation Orientation, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, found := m.pairs[id]
	return info.partner, info.orientation, found
}

// OnChange registers a callback fired whenever the tab list or selection
// changes.
func (m *Manager) OnChange(fn func()) (unsubscribe func()) {
	m.mu.Lock()
	idx := len(m.onChange)
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if idx < len(m.onChange) {
			m.onChange[idx] = nil
		}
	}
}

func (m *Manager) fireChange() {
	m.mu.Lock()
	fns := append([]func(){}, m.onChange...)
	m.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}
