package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/CreativeUnicorns/launcherprefs"
)

// Metrics converts pixel drag deltas into placement units.
type Metrics struct {
	ScreenWidth  float64
	ScreenHeight float64
	CellSize     float64
}

// Validate rejects non-positive dimensions.
func (m Metrics) Validate() error {
	if m.ScreenWidth <= 0 || m.ScreenHeight <= 0 || m.CellSize <= 0 {
		return fmt.Errorf("%w: screen metrics %gx%g cell %g", launcherprefs.ErrInvalidInput,
			m.ScreenWidth, m.ScreenHeight, m.CellSize)
	}
	return nil
}

// Corner is the resize handle being dragged.
type Corner int

const (
	Left Corner = iota
	Right
	Top
	Bottom
)

func (c Corner) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("Corner(%d)", int(c))
	}
}

// ParseCorner parses a handle name, case-insensitively.
func ParseCorner(s string) (Corner, error) {
	for _, c := range []Corner{Left, Right, Top, Bottom} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown resize corner %q", launcherprefs.ErrInvalidInput, s)
}

// Moved translates p by a pixel delta.
func (p Placement) Moved(dx, dy float64, m Metrics) Placement {
	p.X += dx / m.ScreenWidth
	p.Y += dy / m.ScreenHeight
	return p
}

// Resized applies a drag of the given handle by a pixel delta. The edge
// opposite the handle stays where it is. Dragging Left or Top shifts the
// position by the distance the dragged edge actually moved, which is less
// than the drag once the span reaches MinSpan.
func (p Placement) Resized(c Corner, dx, dy float64, m Metrics) Placement {
	switch c {
	case Right:
		p.SpanX = clampSpan(p.SpanX + dx/m.CellSize)
	case Bottom:
		p.SpanY = clampSpan(p.SpanY + dy/m.CellSize)
	case Left:
		span := clampSpan(p.SpanX - dx/m.CellSize)
		p.X += (p.SpanX - span) * m.CellSize / m.ScreenWidth
		p.SpanX = span
	case Top:
		span := clampSpan(p.SpanY - dy/m.CellSize)
		p.Y += (p.SpanY - span) * m.CellSize / m.ScreenHeight
		p.SpanY = span
	}
	return p
}

// Bounds returns the pixel rectangle covered by p.
func (p Placement) Bounds(m Metrics) (left, top, right, bottom float64) {
	left = p.X * m.ScreenWidth
	top = p.Y * m.ScreenHeight
	return left, top, left + p.SpanX*m.CellSize, top + p.SpanY*m.CellSize
}

func clampSpan(v float64) float64 {
	return math.Max(MinSpan, v)
}
