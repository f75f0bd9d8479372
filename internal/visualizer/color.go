package visualizer

import (
	"fmt"
	"math"
)

// Color is a display color derived from band energy.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Neutral is the color of silence in both bands.
var Neutral = colorFromPeaks(128, 128)

// Hex formats c as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// bandLevel maps a time-domain peak through an exponential curve centred on
// the zero-signal midpoint, so silence sits at 129 and transients saturate
// within a few steps instead of linearly.
func bandLevel(peak byte) float64 {
	v := 128 + math.Min(math.Exp((float64(peak)-128)/10), 128)
	return math.Min(v, 255)
}

func colorFromPeaks(low, high byte) Color {
	x := bandLevel(low)
	y := bandLevel(high)
	z := (x + y) / 2
	return Color{R: uint8(x), G: uint8(y), B: uint8(z)}
}
