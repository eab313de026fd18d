package widgets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/CreativeUnicorns/launcherprefs"
)

// Span limits, in grid cells.
const (
	MinSpan     = 0.5
	DefaultSpan = 1.0
)

// DefaultCellSize is the size of one grid cell, in pixels and in dp.
const DefaultCellSize = 100.0

// Provider names the component that renders a widget.
type Provider struct {
	Package string
	Class   string
}

// ParseProvider parses the "packageId:className" form. An empty string and a
// bare ":" both yield the zero Provider.
func ParseProvider(s string) (Provider, error) {
	if s == "" || s == ":" {
		return Provider{}, nil
	}
	pkg, cls, ok := strings.Cut(s, ":")
	if !ok || pkg == "" || cls == "" {
		return Provider{}, fmt.Errorf("%w: widget provider %q is not package:class", launcherprefs.ErrInvalidValue, s)
	}
	return Provider{Package: pkg, Class: cls}, nil
}

// IsZero reports whether p names no component.
func (p Provider) IsZero() bool { return p.Package == "" && p.Class == "" }

func (p Provider) String() string {
	if p.IsZero() {
		return ""
	}
	return p.Package + ":" + p.Class
}

// MarshalText implements encoding.TextMarshaler.
func (p Provider) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Provider) UnmarshalText(text []byte) error {
	parsed, err := ParseProvider(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Placement is one widget on the workspace. X and Y are fractions of the
// screen size and are not clamped; SpanX and SpanY count grid cells and never
// drop below MinSpan.
type Placement struct {
	ID       int      `json:"id"`
	Provider Provider `json:"provider"`
	SpanX    float64  `json:"spanX"`
	SpanY    float64  `json:"spanY"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
}

// UnmarshalJSON applies the defaults spanX=1, spanY=1, x=0, y=0 to missing
// fields. The id is required.
func (p *Placement) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       *int     `json:"id"`
		Provider Provider `json:"provider"`
		SpanX    *float64 `json:"spanX"`
		SpanY    *float64 `json:"spanY"`
		X        float64  `json:"x"`
		Y        float64  `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return fmt.Errorf("%w: widget record has no id", launcherprefs.ErrInvalidValue)
	}
	*p = Placement{
		ID:       *raw.ID,
		Provider: raw.Provider,
		SpanX:    valueOr(raw.SpanX, DefaultSpan),
		SpanY:    valueOr(raw.SpanY, DefaultSpan),
		X:        raw.X,
		Y:        raw.Y,
	}
	return nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// SpanFor converts a provider's minimum size in dp to a span of at least one
// cell.
func SpanFor(minDp float64) float64 {
	return math.Max(DefaultSpan, minDp/DefaultCellSize)
}

type state struct {
	Widgets []Placement `json:"widgets"`
}

// EncodeState returns the widgets_state document for placements. No
// placements encode as the empty string.
func EncodeState(placements []Placement) (string, error) {
	if len(placements) == 0 {
		return "", nil
	}
	data, err := json.Marshal(state{Widgets: placements})
	if err != nil {
		return "", fmt.Errorf("encode widgets: %w", err)
	}
	return string(data), nil
}

// DecodeState parses a widgets_state document. A document without a
// "widgets" array holds no placements.
func DecodeState(data []byte) ([]Placement, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, &launcherprefs.DecodeError{
			Key:      StateKey.Name(),
			Expected: `Object with a "widgets" list`,
			Actual:   fmt.Sprintf("invalid document (%v)", err),
			Raw:      string(data),
		}
	}
	return st.Widgets, nil
}
