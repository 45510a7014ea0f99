package scheduler

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

const (
	resourceSampleInterval = time.Second
	spinnerInterval        = 100 * time.Millisecond
	elapsedInterval        = time.Second
	spinnerActiveWindow    = 500 * time.Millisecond
)

var spinnerFrames = [4]rune{'|', '/', '-', '\\'}

// ResourceSample is one 1s CPU/RSS reading for a session's child process.
type ResourceSample struct {
	SessionID  string
	CPUPercent float64
	RSSBytes   uint64
}

// pidProvider is implemented by session hosts that have a local child
// process to sample (internal/localshell.Host). SSH sessions have no local
// PID and are skipped by the resource sampler.
type pidProvider interface {
	Pid() (int, bool)
}

// Timers drives the three global tickers the spec assigns to the tab
// manager: a 1s resource sampler, a 100ms spinner animator gated on recent
// activity, and a 1s elapsed-time counter for an active AI-CLI child in the
// selected session.
type Timers struct {
	manager *Manager

	mu           sync.Mutex
	lastActivity map[string]time.Time
	spinnerFrame map[string]int
	aiActive     map[string]time.Time

	onResourceSample []func(ResourceSample)
	onSpinnerTick    []func(sessionID string, frame rune, active bool)
	onElapsedTick    []func(sessionID string, elapsed time.Duration)

	stop chan struct{}
	once sync.Once
}

// NewTimers builds a Timers bound to manager but does not start the
// tickers; call Start.
func NewTimers(manager *Manager) *Timers {
	return &Timers{
		manager:      manager,
		lastActivity: make(map[string]time.Time),
		spinnerFrame: make(map[string]int),
		aiActive:     make(map[string]time.Time),
		stop:         make(chan struct{}),
	}
}

// RecordActivity marks sessionID as having produced output just now, for
// the spinner's 500ms activity gate.
func (t *Timers) RecordActivity(sessionID string) {
	t.mu.Lock()
	t.lastActivity[sessionID] = time.Now()
	t.mu.Unlock()
}

// SetAICLIActive marks whether an interactive AI-CLI child is running in
// sessionID, starting or stopping the elapsed-time counter for it.
func (t *Timers) SetAICLIActive(sessionID string, active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if active {
		if _, already := t.aiActive[sessionID]; !already {
			t.aiActive[sessionID] = time.Now()
		}
	} else {
		delete(t.aiActive, sessionID)
	}
}

// OnResourceSample subscribes to 1s CPU/RSS readings.
func (t *Timers) OnResourceSample(fn func(ResourceSample)) {
	t.mu.Lock()
	t.onResourceSample = append(t.onResourceSample, fn)
	t.mu.Unlock()
}

// OnSpinnerTick subscribes to the 100ms spinner animator.
func (t *Timers) OnSpinnerTick(fn func(sessionID string, frame rune, active bool)) {
	t.mu.Lock()
	t.onSpinnerTick = append(t.onSpinnerTick, fn)
	t.mu.Unlock()
}

// OnElapsedTick subscribes to the 1s AI-CLI elapsed-time counter, fired
// only for the selected session while it has an active AI-CLI child.
func (t *Timers) OnElapsedTick(fn func(sessionID string, elapsed time.Duration)) {
	t.mu.Lock()
	t.onElapsedTick = append(t.onElapsedTick, fn)
	t.mu.Unlock()
}

// Start launches the three tickers in their own goroutines.
func (t *Timers) Start() {
	go t.runTicker(resourceSampleInterval, t.sampleResources)
	go t.runTicker(spinnerInterval, t.tickSpinner)
	go t.runTicker(elapsedInterval, t.tickElapsed)
}

// Stop halts all three tickers. Safe to call more than once.
func (t *Timers) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (t *Timers) runTicker(interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn()
		case <-t.stop:
			return
		}
	}
}

func (t *Timers) sampleResources() {
	for _, s := range t.manager.List() {
		provider, ok := s.(pidProvider)
		if !ok {
			continue
		}
		pid, ok := provider.Pid()
		if !ok {
			continue
		}
		proc, err := process.NewProcess(int32(pid))
		if err != nil {
			continue
		}
		cpuPercent, err := proc.CPUPercent()
		if err != nil {
			continue
		}
		memInfo, err := proc.MemoryInfo()
		if err != nil || memInfo == nil {
			continue
		}
		sample := ResourceSample{SessionID: s.ID(), CPUPercent: cpuPercent, RSSBytes: memInfo.RSS}

		t.mu.Lock()
		subs := append([]func(ResourceSample){}, t.onResourceSample...)
		t.mu.Unlock()
		for _, fn := range subs {
			fn(sample)
		}
	}
}

func (t *Timers) tickSpinner() {
	now := time.Now()
	t.mu.Lock()
	type tick struct {
		id     string
		frame  rune
		active bool
	}
	var ticks []tick
	for id, last := range t.lastActivity {
		active := now.Sub(last) <= spinnerActiveWindow
		if active {
			t.spinnerFrame[id] = (t.spinnerFrame[id] + 1) % len(spinnerFrames)
		}
		ticks = append(ticks, tick{id: id, frame: spinnerFrames[t.spinnerFrame[id]], active: active})
	}
	subs := append([]func(string, rune, bool){}, t.onSpinnerTick...)
	t.mu.Unlock()

	for _, tk := range ticks {
		for _, fn := range subs {
			fn(tk.id, tk.frame, tk.active)
		}
	}
}

func (t *Timers) tickElapsed() {
	selected := t.manager.SelectedID()
	if selected == "" {
		return
	}
	t.mu.Lock()
	startedAt, active := t.aiActive[selected]
	subs := append([]func(string, time.Duration){}, t.onElapsedTick...)
	t.mu.Unlock()

	if !active {
		return
	}
	elapsed := time.Since(startedAt)
	for _, fn := range subs {
		fn(selected, elapsed)
	}
}
