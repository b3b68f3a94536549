package logging

import (
	"os"
	"sync"
)

// TailBuffer is a thread-safe writer that retains roughly the last `limit`
// bytes written to it. It trades exactness for simplicity: instead of a
// circular buffer it keeps two generations of up to limit/2 bytes each and
// drops the older generation when the current one fills. Retention is
// therefore between limit/2 and limit bytes, always the most recent writes.
type TailBuffer struct {
	mu    sync.Mutex
	prev  []byte
	cur   []byte
	half  int
	limit int
}

// NewTailBuffer creates a tail buffer retaining about `limit` bytes.
func NewTailBuffer(limit int) *TailBuffer {
	if limit <= 0 {
		limit = 1 << 20
	}
	half := limit / 2
	if half < 1 {
		half = 1
	}
	return &TailBuffer{
		cur:   make([]byte, 0, half),
		half:  half,
		limit: limit,
	}
}

// Write implements io.Writer and never fails.
func (t *TailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p)
	if n >= t.limit {
		// Oversized write: keep only its tail
		t.prev = nil
		t.cur = append(t.cur[:0], p[n-t.half:]...)
		return n, nil
	}

	t.cur = append(t.cur, p...)
	if len(t.cur) >= t.half {
		t.prev = t.cur
		t.cur = make([]byte, 0, t.half)
	}
	return n, nil
}

// Bytes returns the retained contents in chronological order.
func (t *TailBuffer) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]byte, 0, len(t.prev)+len(t.cur))
	out = append(out, t.prev...)
	out = append(out, t.cur...)
	return out
}

// DumpToFile writes the retained contents to a file.
func (t *TailBuffer) DumpToFile(path string) error {
	return os.WriteFile(path, t.Bytes(), 0o644)
}
