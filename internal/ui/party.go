package ui

import (
	"github.com/charmbracelet/harmonica"
	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/visualizer"
)

type smoothColor struct {
	r, g, b    float64
	vr, vg, vb float64
}

func (s *smoothColor) color() visualizer.Color {
	return visualizer.Color{R: channel(s.r), G: channel(s.g), B: channel(s.b)}
}

func channel(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

// colorBank eases each visualized row toward the engine's latest color, one
// spring step per frame. The engine samples at a fixed rate, so the spring
// uses the same rate.
type colorBank struct {
	spring harmonica.Spring
	colors map[catalog.TrackID]*smoothColor
}

func newColorBank(fps int) *colorBank {
	if fps <= 0 {
		fps = 60
	}
	return &colorBank{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 12.0, 1.0),
		colors: make(map[catalog.TrackID]*smoothColor),
	}
}

// push is the engine's sink.
func (b *colorBank) push(id catalog.TrackID, target visualizer.Color) {
	c, ok := b.colors[id]
	if !ok {
		n := visualizer.Neutral
		c = &smoothColor{r: float64(n.R), g: float64(n.G), b: float64(n.B)}
		b.colors[id] = c
	}
	c.r, c.vr = b.spring.Update(c.r, c.vr, float64(target.R))
	c.g, c.vg = b.spring.Update(c.g, c.vg, float64(target.G))
	c.b, c.vb = b.spring.Update(c.b, c.vb, float64(target.B))
}

func (b *colorBank) get(id catalog.TrackID) (visualizer.Color, bool) {
	c, ok := b.colors[id]
	if !ok {
		return visualizer.Color{}, false
	}
	return c.color(), true
}

// prune drops rows whose visualizer session has ended.
func (b *colorBank) prune(active func(catalog.TrackID) bool) {
	for id := range b.colors {
		if !active(id) {
			delete(b.colors, id)
		}
	}
}
