package visualizer

import "sync"

// ringBuffer is a thread-safe circular buffer of mono samples in [-1, 1].
type ringBuffer struct {
	buf  []float64
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		buf:  make([]float64, size),
		size: size,
	}
}

// Write appends samples, overwriting the oldest when full.
func (rb *ringBuffer) Write(p []float64) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for _, s := range p {
		rb.buf[rb.w] = s
		rb.w = (rb.w + 1) % rb.size
	}
	rb.len += len(p)
	if rb.len > rb.size {
		rb.len = rb.size
	}
}

// ReadInto fills dst with the most recent samples in chronological order.
// When fewer samples have been written, the leading slots are zero.
func (rb *ringBuffer) ReadInto(dst []float64) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(dst)
	if n > rb.size {
		n = rb.size
	}
	have := rb.len
	if have > n {
		have = n
	}
	pad := n - have
	for i := range pad {
		dst[i] = 0
	}
	start := (rb.w - have + rb.size) % rb.size
	for i := range have {
		dst[pad+i] = rb.buf[(start+i)%rb.size]
	}
}

// Clear resets the buffer.
func (rb *ringBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.w = 0
	rb.len = 0
}
