package visualizer

import "sync"

// Session taps one transport's decoded signal through a low-pass and a
// high-pass filter, each feeding its own analyser.
type Session struct {
	mu      sync.Mutex // guards filter state against a late write during close
	lowF    *biquad
	highF   *biquad
	lowBuf  []float64
	highBuf []float64
	closed  bool

	low     *analyser
	high    *analyser
	readBuf []byte

	unsubscribe func()
	loop        *frameLoop
	color       Color
}

func newSession(opts Options) *Session {
	return &Session{
		lowF:    newBiquad(lowPass, opts.SampleRate, opts.CutoffHz, opts.QDB),
		highF:   newBiquad(highPass, opts.SampleRate, opts.CutoffHz, opts.QDB),
		low:     newAnalyser(opts.FFTSize),
		high:    newAnalyser(opts.FFTSize),
		readBuf: make([]byte, opts.FFTSize/2),
		color:   Neutral,
	}
}

// Write feeds interleaved stereo samples. It is called from the transport's
// audio goroutine.
func (s *Session) Write(samples []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	frames := len(samples) / 2
	if cap(s.lowBuf) < frames {
		s.lowBuf = make([]float64, frames)
		s.highBuf = make([]float64, frames)
	}
	s.lowBuf = s.lowBuf[:frames]
	s.highBuf = s.highBuf[:frames]
	for i := range frames {
		mono := (float64(samples[2*i]) + float64(samples[2*i+1])) / 65536.0
		s.lowBuf[i] = s.lowF.process(mono)
		s.highBuf[i] = s.highF.process(mono)
	}
	s.low.write(s.lowBuf)
	s.high.write(s.highBuf)
}

// SampleColor reads both analysers and maps their peaks to a color.
func (s *Session) SampleColor() Color {
	lowPeak := s.low.peak(s.readBuf[:s.low.binCount()])
	highPeak := s.high.peak(s.readBuf[:s.high.binCount()])
	s.color = colorFromPeaks(lowPeak, highPeak)
	return s.color
}

// Color returns the last sampled color.
func (s *Session) Color() Color { return s.color }

func (s *Session) close() {
	if s.loop != nil {
		s.loop.stop()
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.low.ring.Clear()
	s.high.ring.Clear()
}
