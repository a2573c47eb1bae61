package walk

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultTickInterval  = 200 * time.Millisecond
	DefaultCompleteDelay = 500 * time.Millisecond
	DefaultHazardDelay   = 3 * time.Second
	progressStep         = 2
)

// Progress is the simulated walk progress, 0 to 100.
type Progress struct {
	Interval      time.Duration
	CompleteDelay time.Duration

	onTick     func(pct int)
	onComplete func()

	mu    sync.Mutex
	value int
	once  sync.Once
}

// NewProgress returns a progress bar using the default timings. Either
// callback may be nil.
func NewProgress(onTick func(pct int), onComplete func()) *Progress {
	return &Progress{
		Interval:      DefaultTickInterval,
		CompleteDelay: DefaultCompleteDelay,
		onTick:        onTick,
		onComplete:    onComplete,
	}
}

func (p *Progress) Value() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *Progress) Advance() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value += progressStep
	if p.value > 100 {
		p.value = 100
	}
	return p.value, p.value >= 100
}

// Run ticks until 100, waits CompleteDelay and calls onComplete. It returns
// ctx.Err() if cancelled first, in which case onComplete is not called.
func (p *Progress) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		pct, finished := p.Advance()
		if p.onTick != nil {
			p.onTick(pct)
		}
		if finished {
			break
		}
	}

	delay := time.NewTimer(p.CompleteDelay)
	defer delay.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-delay.C:
	}
	p.once.Do(func() {
		if p.onComplete != nil {
			p.onComplete()
		}
	})
	return nil
}

// HazardReveal shows the in-walk hazard alert once its delay elapses.
type HazardReveal struct {
	timer *time.Timer

	mu    sync.Mutex
	shown bool
}

func NewHazardReveal(after time.Duration, show func()) *HazardReveal {
	h := &HazardReveal{}
	h.timer = time.AfterFunc(after, func() {
		h.mu.Lock()
		h.shown = true
		h.mu.Unlock()
		if show != nil {
			show()
		}
	})
	return h
}

func (h *HazardReveal) Shown() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// Cancel stops a pending reveal. It reports false if the alert already fired.
func (h *HazardReveal) Cancel() bool {
	return h.timer.Stop()
}
