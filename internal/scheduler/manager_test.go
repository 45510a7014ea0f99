package scheduler

import (
	"testing"
	"time"

	"github.com/gluk-w/tabshell/internal/session"
)

type fakeSession struct {
	id          string
	kind        session.Kind
	activated   int
	deactivated int
}

func (f *fakeSession) ID() string          { return f.id }
func (f *fakeSession) Kind() session.Kind  { return f.kind }
func (f *fakeSession) DisplayName() string { return f.id }
func (f *fakeSession) ShellType() string   { return "sh" }

func (f *fakeSession) State() session.State                                  { return session.StateConnected }
func (f *fakeSession) OnStateChange(fn func(session.State)) (unsubscribe func()) { return func() {} }

func (f *fakeSession) CurrentDirectory() string                                { return "/" }
func (f *fakeSession) OnDirectoryChange(fn func(string)) (unsubscribe func()) { return func() {} }

func (f *fakeSession) Output() <-chan session.OutputEvent { return nil }

func (f *fakeSession) Connect() error    { return nil }
func (f *fakeSession) Disconnect() error { return nil }

func (f *fakeSession) Execute(command string, timeout time.Duration) session.CommandResult {
	return session.CommandResult{}
}

func (f *fakeSession) WriteRaw(text string) error                 { return nil }
func (f *fakeSession) SendSpecialKey(key session.SpecialKey) error { return nil }
func (f *fakeSession) CancelCurrent()                              {}
func (f *fakeSession) Dispose() error                              { return nil }

func (f *fakeSession) OnActivated()   { f.activated++ }
func (f *fakeSession) OnDeactivated() { f.deactivated++ }

func TestAddSelectsFirstSessionAutomatically(t *testing.T) {
	m := New()
	a := &fakeSession{id: "a"}
	m.Add(a)

	if m.SelectedID() != "a" {
		t.Fatalf("SelectedID() = %q, want a", m.SelectedID())
	}
	if a.activated != 1 {
		t.Errorf("activated = %d, want 1", a.activated)
	}
}

func TestSelectFiresActivationHooks(t *testing.T) {
	m := New()
	a := &fakeSession{id: "a"}
	b := &fakeSession{id: "b"}
	m.Add(a)
	m.Add(b)

	m.Select("b")

	if a.deactivated != 1 {
		t.Errorf("a.deactivated = %d, want 1", a.deactivated)
	}
	if b.activated != 1 {
		t.Errorf("b.activated = %d, want 1", b.activated)
	}
	if m.SelectedID() != "b" {
		t.Errorf("SelectedID() = %q, want b", m.SelectedID())
	}
}

func TestSelectIsNoOpWhenAlreadySelected(t *testing.T) {
	m := New()
	a := &fakeSession{id: "a"}
	m.Add(a)
	m.Select("a")
	if a.activated != 1 {
		t.Errorf("activated = %d, want 1 (no repeat activation)", a.activated)
	}
}

func TestRemoveReselectsFirstRemainingSession(t *testing.T) {
	m := New()
	a := &fakeSession{id: "a"}
	b := &fakeSession{id: "b"}
	m.Add(a)
	m.Add(b)

	m.Remove("a")

	if m.SelectedID() != "b" {
		t.Fatalf("SelectedID() = %q, want b", m.SelectedID())
	}
	if b.activated != 1 {
		t.Errorf("b.activated = %d, want 1", b.activated)
	}
	if len(m.List()) != 1 {
		t.Errorf("List() len = %d, want 1", len(m.List()))
	}
}

func TestPairIsLayoutOnlyAndIndependentOfLifecycle(t *testing.T) {
	m := New()
	a := &fakeSession{id: "a"}
	b := &fakeSession{id: "b"}
	m.Add(a)
	m.Add(b)

	m.Pair("a", "b", OrientationVertical)

	partner, orientation, ok := m.PairedWith("a")
	if !ok || partner != "b" || orientation != OrientationVertical {
		t.Fatalf("PairedWith(a) = (%q, %q, %v)", partner, orientation, ok)
	}

	m.Remove("b")
	if _, ok := m.Get("a"); !ok {
		t.Error("removing b should not affect a's lifecycle")
	}
	if _, _, ok := m.PairedWith("a"); ok {
		t.Error("pairing should be cleared once the partner is removed")
	}
}

func TestOnChangeFiresOnAddSelectAndRemove(t *testing.T) {
	m := New()
	count := 0
	m.OnChange(func() { count++ })

	m.Add(&fakeSession{id: "a"})
	m.Add(&fakeSession{id: "b"})
	m.Select("b")
	m.Remove("a")

	if count != 4 {
		t.Errorf("OnChange fired %d times, want 4", count)
	}
}
