package session

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the monitor needs.
type Timer interface {
	Stop() bool
}

// Monitor keeps one pending inactivity check per session. Re-arming a
// session replaces its pending check.
type Monitor struct {
	threshold time.Duration
	check     func(sessionID string)
	afterFunc func(d time.Duration, f func()) Timer

	mu     sync.Mutex
	timers map[string]*pending
}

type pending struct {
	timer Timer
}

func NewMonitor(threshold time.Duration, check func(sessionID string)) *Monitor {
	return &Monitor{
		threshold: threshold,
		check:     check,
		afterFunc: func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
		timers:    map[string]*pending{},
	}
}

func (m *Monitor) Threshold() time.Duration { return m.threshold }

// Schedule cancels any pending check for sessionID and arms a new one.
func (m *Monitor) Schedule(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.timers[sessionID]; ok {
		p.timer.Stop()
	}
	p := &pending{}
	m.timers[sessionID] = p
	p.timer = m.afterFunc(m.threshold, func() { m.fire(sessionID, p) })
}

func (m *Monitor) Cancel(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.timers[sessionID]; ok {
		p.timer.Stop()
		delete(m.timers, sessionID)
	}
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.timers {
		p.timer.Stop()
		delete(m.timers, id)
	}
}

func (m *Monitor) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Monitor) fire(sessionID string, p *pending) {
	m.mu.Lock()
	current, ok := m.timers[sessionID]
	if !ok || current != p {
		m.mu.Unlock()
		return
	}
	delete(m.timers, sessionID)
	m.mu.Unlock()

	m.check(sessionID)
}
