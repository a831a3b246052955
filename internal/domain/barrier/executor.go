package barrier

import (
	"sync"
)

// Executor runs continuations on a chosen execution context.
type Executor interface {
	Execute(fn func())
}

// Inline runs fn on the calling goroutine.
type Inline struct{}

// Execute implements Executor.
func (Inline) Execute(fn func()) { fn() }

// Serial runs every submitted fn on one dedicated goroutine, in submission
// order. State touched only from continuations needs no further locking.
type Serial struct {
	tasks chan func()
	once  sync.Once
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewSerial starts the designated goroutine. backlog bounds how many tasks
// may wait before Execute blocks.
func NewSerial(backlog int) *Serial {
	if backlog < 1 {
		backlog = 1
	}
	s := &Serial{
		tasks: make(chan func(), backlog),
		done:  make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Serial) loop() {
	defer close(s.done)
	for fn := range s.tasks {
		fn()
	}
}

// Execute queues fn. After Close, fn runs inline so a continuation is never lost.
func (s *Serial) Execute(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		fn()
		return
	}
	s.tasks <- fn
}

// Close stops accepting tasks, drains the backlog and waits for the goroutine.
func (s *Serial) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.tasks)
		s.mu.Unlock()
	})
	<-s.done
}
