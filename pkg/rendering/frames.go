package rendering

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/errors"
)

// FrameScheduler runs callbacks on the host's animation loop, one frame at
// a time, like requestAnimationFrame in a browser.
type FrameScheduler interface {
	// RequestFrame schedules fn to run at the next frame. It must not run
	// fn synchronously.
	RequestFrame(fn func())
}

// =============================================================================
// ManualFrames
// =============================================================================

// ManualFrames queues frame callbacks until the host steps them explicitly.
// It is the default scheduler and suits tests and batch renders.
type ManualFrames struct {
	pending []func()
}

// RequestFrame queues fn for the next Step.
func (m *ManualFrames) RequestFrame(fn func()) {
	m.pending = append(m.pending, fn)
}

// Step runs the callbacks queued so far. Callbacks they request run at the
// following Step. Reports whether anything ran.
func (m *ManualFrames) Step() bool {
	if len(m.pending) == 0 {
		return false
	}
	batch := m.pending
	m.pending = nil
	for _, fn := range batch {
		fn()
	}
	return true
}

// Drain steps until nothing is pending or max frames ran, and returns the
// number of frames stepped.
func (m *ManualFrames) Drain(max int) int {
	n := 0
	for n < max && m.Step() {
		n++
	}
	return n
}

// Pending returns the number of queued callbacks.
func (m *ManualFrames) Pending() int { return len(m.pending) }

// =============================================================================
// Loop
// =============================================================================

// Loop is a single goroutine that owns one or more rendering instances.
// Frames fire on a fixed interval; host code reaches the instances through
// [Loop.Do], which keeps all access on the loop goroutine.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
	interval time.Duration
	logger   *log.Logger

	mu     sync.Mutex
	frames []func()
}

// NewLoop starts a loop firing fps frames per second.
func NewLoop(fps int, logger *log.Logger) *Loop {
	if fps <= 0 {
		fps = 60
	}
	l := &Loop{
		tasks:    make(chan func()),
		done:     make(chan struct{}),
		interval: time.Second / time.Duration(fps),
		logger:   logger,
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ticker.C:
			l.mu.Lock()
			batch := l.frames
			l.frames = nil
			l.mu.Unlock()
			for _, fn := range batch {
				fn()
			}
		case <-l.done:
			return
		}
	}
}

// RequestFrame schedules fn for the next frame. Safe to call from any
// goroutine, including from inside a frame.
func (l *Loop) RequestFrame(fn func()) {
	l.mu.Lock()
	l.frames = append(l.frames, fn)
	l.mu.Unlock()
}

// Do runs fn on the loop goroutine and waits for it to return. It must not
// be called from the loop goroutine itself.
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	select {
	case l.tasks <- func() { defer close(finished); fn() }:
	case <-l.done:
		return errors.New(errors.ErrCodeClosed, "render loop stopped")
	}
	<-finished
	return nil
}

// Stop halts the loop. Pending frames are dropped. Stop is idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
		if l.logger != nil {
			l.logger.Debug("render loop stopped")
		}
	})
}
