package progress

import (
	"sync"
	"time"
)

// The tracker is a cosmetic clock: there is no push channel from the server,
// so displayed progress is elapsed time against a nominal duration, capped
// strictly below 100 until the request actually resolves.
const (
	DefaultTick  = 200 * time.Millisecond
	DefaultTotal = 120 * time.Second

	ceiling      = 99
	failureFloor = 1
	lingerAfter  = 400 * time.Millisecond
)

// Tracker drives a percentage callback while one generation request is in
// flight. Start, then exactly one of Finish or Fail.
type Tracker struct {
	tick  time.Duration
	total time.Duration

	onUpdate func(pct int)
	onClear  func()

	mu      sync.Mutex
	pct     int
	started time.Time
	stop    chan struct{}
	stopped bool
}

// Option tweaks tracker timing, mainly for tests.
type Option func(*Tracker)

func WithTick(d time.Duration) Option {
	return func(t *Tracker) { t.tick = d }
}

func WithTotal(d time.Duration) Option {
	return func(t *Tracker) { t.total = d }
}

// WithClear registers a callback fired after the post-completion linger.
func WithClear(fn func()) Option {
	return func(t *Tracker) { t.onClear = fn }
}

func New(onUpdate func(pct int), opts ...Option) *Tracker {
	t := &Tracker{
		tick:     DefaultTick,
		total:    DefaultTotal,
		onUpdate: onUpdate,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.onUpdate == nil {
		t.onUpdate = func(int) {}
	}
	return t
}

// Start launches the ticker goroutine. The timer never blocks the request it
// decorates and carries no cancellation signal of its own.
func (t *Tracker) Start() {
	t.mu.Lock()
	t.started = time.Now()
	t.pct = 0
	t.mu.Unlock()
	t.onUpdate(0)

	go func() {
		ticker := time.NewTicker(t.tick)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				t.onUpdate(t.advance())
			}
		}
	}()
}

func (t *Tracker) advance() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Since(t.started)
	pct := int(float64(elapsed) / float64(t.total) * ceiling)
	if pct > ceiling {
		pct = ceiling
	}
	if pct > t.pct {
		t.pct = pct
	}
	return t.pct
}

// Percent returns the last displayed percentage.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pct
}

// Finish jumps to 100 and clears after a short linger. Only called once the
// server has actually responded with success.
func (t *Tracker) Finish() {
	t.halt()
	t.mu.Lock()
	t.pct = 100
	t.mu.Unlock()
	t.onUpdate(100)

	if t.onClear != nil {
		clear := t.onClear
		time.AfterFunc(lingerAfter, clear)
	}
}

// Fail freezes the bar at whatever had been reached, floored at 1, and
// returns that value for the history entry.
func (t *Tracker) Fail() int {
	t.halt()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pct < failureFloor {
		t.pct = failureFloor
	}
	return t.pct
}

func (t *Tracker) halt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.stopped = true
		close(t.stop)
	}
}
