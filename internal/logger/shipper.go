package logger

import (
	"bytes"
	"sync"
	"sync/atomic"
	"time"
)

// defaultFlushTimeout bounds how long Stop keeps publishing queued lines.
const defaultFlushTimeout = 2 * time.Second

// Publisher sends one payload to a topic.
type Publisher interface {
	Send(payload []byte, topic string) error
}

// Shipper buffers formatted log lines in a bounded queue and publishes them
// from a single background goroutine while started. Lines written before
// Start stay queued and go out once shipping begins. When the queue is full
// the oldest line is dropped.
type Shipper struct {
	queue chan []byte

	dropped atomic.Uint64
	failed  atomic.Uint64

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool

	FlushTimeout time.Duration
}

// NewShipper returns a stopped shipper with room for size lines.
func NewShipper(size int) *Shipper {
	if size < 1 {
		size = 1
	}
	return &Shipper{
		queue:        make(chan []byte, size),
		FlushTimeout: defaultFlushTimeout,
	}
}

// Write implements zapcore.WriteSyncer. It never blocks.
func (s *Shipper) Write(p []byte) (int, error) {
	line := bytes.TrimRight(p, "\n")
	if len(line) == 0 {
		return len(p), nil
	}
	s.enqueue(append([]byte(nil), line...))
	return len(p), nil
}

// Sync implements zapcore.WriteSyncer.
func (s *Shipper) Sync() error { return nil }

func (s *Shipper) enqueue(line []byte) {
	for {
		select {
		case s.queue <- line:
			return
		default:
		}
		select {
		case <-s.queue:
			s.dropped.Add(1)
		default:
		}
	}
}

// Start launches the drain goroutine publishing to topic. onErr, if set,
// receives publish failures; it must not log through the shipping logger.
// Calling Start on a running shipper is a no-op.
func (s *Shipper) Start(pub Publisher, topic string, onErr func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	go s.run(pub, topic, onErr, s.stop, s.done)
}

// Stop publishes what is still queued, bounded by FlushTimeout, and stops
// the drain goroutine. Lines logged afterwards stay queued.
func (s *Shipper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stop)
	done := s.done
	s.running = false
	s.mu.Unlock()
	<-done
}

// Running reports whether the drain goroutine is active.
func (s *Shipper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Pending returns the number of queued lines.
func (s *Shipper) Pending() int { return len(s.queue) }

// Dropped returns how many lines were discarded because the queue was full.
func (s *Shipper) Dropped() uint64 { return s.dropped.Load() }

// Failed returns how many lines could not be published.
func (s *Shipper) Failed() uint64 { return s.failed.Load() }

func (s *Shipper) run(pub Publisher, topic string, onErr func(error), stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			s.flush(pub, topic, onErr, time.Now().Add(s.FlushTimeout))
			return
		case line := <-s.queue:
			s.publish(pub, topic, onErr, line)
		}
	}
}

func (s *Shipper) flush(pub Publisher, topic string, onErr func(error), deadline time.Time) {
	for time.Now().Before(deadline) {
		select {
		case line := <-s.queue:
			s.publish(pub, topic, onErr, line)
		default:
			return
		}
	}
}

func (s *Shipper) publish(pub Publisher, topic string, onErr func(error), line []byte) {
	if err := pub.Send(line, topic); err != nil {
		s.failed.Add(1)
		if onErr != nil {
			onErr(err)
		}
	}
}
