package logger

import (
	"io"
	"sync"
)

// asyncWriter decouples log formatting from sink IO: lines are queued and
// written to every sink by a single background goroutine.
type asyncWriter struct {
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once

	mu       sync.Mutex
	sinks    []io.Writer
	writeErr error
}

func newAsyncWriter(sinks []io.Writer, queueLen int) *asyncWriter {
	if queueLen <= 0 {
		queueLen = 256
	}
	w := &asyncWriter{
		queue:    make(chan []byte, queueLen),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
		sinks:    sinks,
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				close(w.done)
				return
			}
			w.writeAll(line)
		case ack := <-w.flushReq:
			// Drain everything enqueued before the Flush call, then ack.
			w.drain()
			ack <- w.err()
		}
	}
}

// Write enqueues one formatted line. It blocks when the queue is saturated
// rather than dropping logs.
func (w *asyncWriter) Write(line []byte) error {
	if err := w.err(); err != nil {
		return err
	}
	if len(line) == 0 {
		return nil
	}
	buf := make([]byte, len(line))
	copy(buf, line)
	w.queue <- buf
	return nil
}

// Flush waits until every line enqueued so far has reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushReq <- ack:
		return <-ack
	case <-w.done:
		return w.err()
	}
}

// Close drains the queue and reports the first write error encountered.
func (w *asyncWriter) Close() error {
	w.once.Do(func() {
		close(w.queue)
	})
	<-w.done
	return w.err()
}

func (w *asyncWriter) drain() {
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				return
			}
			w.writeAll(line)
		default:
			return
		}
	}
}

func (w *asyncWriter) writeAll(line []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if sink == nil {
			continue
		}
		if _, err := sink.Write(line); err != nil && w.writeErr == nil {
			w.writeErr = err
		}
	}
}

func (w *asyncWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeErr
}
