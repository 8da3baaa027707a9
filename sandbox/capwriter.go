package sandbox

import (
	"bytes"
	"sync"
)

// TruncationMarker is appended to a capped stream once its ceiling is hit.
const TruncationMarker = "\n... [output truncated]"

// capWriter buffers a process output stream up to a fixed ceiling. Bytes
// beyond the ceiling are discarded, and the first overflow fires the
// onExceed callback exactly once so the runner can terminate the process
// early instead of letting it print unboundedly.
type capWriter struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int
	truncated bool
	onExceed  func()
}

func newCapWriter(limit int, onExceed func()) *capWriter {
	return &capWriter{limit: limit, onExceed: onExceed}
}

// Write never returns an error: a capped stream must not abort the copy
// loop, only stop buffering.
func (w *capWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.truncated {
		return len(p), nil
	}

	remaining := w.limit - w.buf.Len()
	if len(p) <= remaining {
		w.buf.Write(p)
		return len(p), nil
	}

	if remaining > 0 {
		w.buf.Write(p[:remaining])
	}
	w.truncated = true
	if w.onExceed != nil {
		w.onExceed()
	}
	return len(p), nil
}

// Truncated reports whether the ceiling was hit.
func (w *capWriter) Truncated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.truncated
}

// String returns the buffered output, with the truncation marker appended
// when the ceiling was hit.
func (w *capWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.truncated {
		return w.buf.String() + TruncationMarker
	}
	return w.buf.String()
}
