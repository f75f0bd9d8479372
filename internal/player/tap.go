package player

import (
	"encoding/binary"
	"io"
	"sync"
)

// tap sits between the decoder and the audio output. It counts the bytes
// handed to the output, remembers how the decoder finished, and copies every
// chunk of samples to its subscribers.
type tap struct {
	src io.Reader

	mu     sync.Mutex
	pos    int64
	eof    bool
	err    error
	subs   map[int]func([]int16)
	nextID int
	carry  []byte
}

func newTap(src io.Reader) *tap {
	return &tap{src: src, subs: make(map[int]func([]int16))}
}

func (t *tap) Read(p []byte) (int, error) {
	n, err := t.src.Read(p)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.pos += int64(n)
	if err == io.EOF {
		t.eof = true
	} else if err != nil && t.err == nil {
		t.err = err
	}
	if n > 0 && len(t.subs) > 0 {
		t.fanOut(p[:n])
	}
	return n, err
}

// fanOut converts whole stereo frames to samples; a trailing partial frame is
// carried into the next call. Called with mu held.
func (t *tap) fanOut(b []byte) {
	if len(t.carry) > 0 {
		b = append(t.carry, b...)
		t.carry = nil
	}
	whole := len(b) - len(b)%4
	if rest := b[whole:]; len(rest) > 0 {
		t.carry = append([]byte(nil), rest...)
	}
	if whole == 0 {
		return
	}
	samples := make([]int16, whole/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	for _, fn := range t.subs {
		fn(samples)
	}
}

// Subscribe registers fn for every chunk of interleaved stereo samples. The
// returned function removes it; fn is not running once that returns.
func (t *tap) Subscribe(fn func([]int16)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// Pos returns the number of PCM bytes read so far.
func (t *tap) Pos() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

// Finished reports whether the decoder reached its end, and the error it
// failed with, if any.
func (t *tap) Finished() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eof || t.err != nil, t.err
}
