package fieldstore

import "sync"

// JoinLatch is a counting join for fan-out work: Add before launching each
// sub-operation, Done when it finishes. The registered continuation fires
// exactly once, when the counter returns to zero after at least one Add —
// a latch that never saw an Add never completes.
//
// Unlike sync.WaitGroup, a continuation may be registered before, during, or
// after the counted work; completion is level-triggered on the first
// add-then-drain cycle. A latch is scoped to a single logical operation and
// is not reused.
type JoinLatch struct {
	mu      sync.Mutex
	count   int
	started bool
	fired   bool
	fn      func()
	done    chan struct{}
}

// NewJoinLatch returns an idle latch with the counter at zero.
func NewJoinLatch() *JoinLatch {
	return &JoinLatch{done: make(chan struct{})}
}

// Add increments the counter. It must be called before the sub-operation it
// accounts for is launched.
func (l *JoinLatch) Add() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fired {
		panic("fieldstore: JoinLatch reused after completion")
	}
	l.count++
	l.started = true
}

// Done decrements the counter, completing the latch when it reaches zero.
func (l *JoinLatch) Done() {
	l.mu.Lock()
	if l.count <= 0 {
		l.mu.Unlock()
		panic("fieldstore: JoinLatch Done without matching Add")
	}
	l.count--
	l.maybeCompleteLocked()
	l.mu.Unlock()
}

// Then registers the continuation. If the latch has already completed the
// continuation runs immediately on the calling goroutine.
func (l *JoinLatch) Then(fn func()) {
	l.mu.Lock()
	if l.fired {
		l.mu.Unlock()
		fn()
		return
	}
	l.fn = fn
	l.maybeCompleteLocked()
	l.mu.Unlock()
}

// Wait blocks until the latch completes.
func (l *JoinLatch) Wait() {
	<-l.done
}

// maybeCompleteLocked fires the continuation when an add/drain cycle has
// finished. Caller holds l.mu.
func (l *JoinLatch) maybeCompleteLocked() {
	if l.fired || !l.started || l.count != 0 {
		return
	}
	l.fired = true
	fn := l.fn
	close(l.done)
	if fn != nil {
		// Release the lock around user code.
		l.mu.Unlock()
		fn()
		l.mu.Lock()
	}
}
