package visualizer

// DefaultFFTSize is the analyser window, matching Web Audio's default.
const DefaultFFTSize = 2048

// analyser keeps the last fftSize filtered samples and exposes them the way
// AnalyserNode.getByteTimeDomainData does: 128 is silence.
type analyser struct {
	fftSize int
	ring    *ringBuffer
	scratch []float64
}

func newAnalyser(fftSize int) *analyser {
	return &analyser{
		fftSize: fftSize,
		ring:    newRingBuffer(fftSize),
		scratch: make([]float64, fftSize/2),
	}
}

// binCount is the readable buffer length, half the window.
func (a *analyser) binCount() int { return a.fftSize / 2 }

func (a *analyser) write(samples []float64) { a.ring.Write(samples) }

// byteTimeDomain fills dst (len binCount) with the most recent samples
// mapped from [-1, 1] to [0, 255].
func (a *analyser) byteTimeDomain(dst []byte) {
	a.ring.ReadInto(a.scratch[:len(dst)])
	for i, s := range a.scratch[:len(dst)] {
		v := 128 * (1 + s)
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		dst[i] = byte(v)
	}
}

// peak returns the largest byte in the current time-domain buffer.
func (a *analyser) peak(buf []byte) byte {
	a.byteTimeDomain(buf)
	var m byte
	for _, b := range buf {
		if b > m {
			m = b
		}
	}
	return m
}
