package visualizer

import "math"

type filterKind int

const (
	lowPass filterKind = iota
	highPass
)

// biquad is a second-order IIR filter in direct form I, with coefficients
// computed the way Web Audio's BiquadFilterNode does for lowpass/highpass,
// where Q is a resonance in dB.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func newBiquad(kind filterKind, sampleRate, cutoff, qDB float64) *biquad {
	w0 := 2 * math.Pi * cutoff / sampleRate
	cos := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * math.Pow(10, qDB/20))

	var b0, b1, b2 float64
	switch kind {
	case highPass:
		b0 = (1 + cos) / 2
		b1 = -(1 + cos)
		b2 = (1 + cos) / 2
	default:
		b0 = (1 - cos) / 2
		b1 = 1 - cos
		b2 = (1 - cos) / 2
	}
	a0 := 1 + alpha
	return &biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: -2 * cos / a0,
		a2: (1 - alpha) / a0,
	}
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}
