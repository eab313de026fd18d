package gesture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/CreativeUnicorns/launcherprefs"
)

// Point is one action slot on a dial.
type Point struct {
	// ID identifies the point across edits.
	ID string `json:"id"`
	// Circle is the dial index, 0 being the innermost.
	Circle int `json:"circleNumber"`
	// AngleDeg is measured clockwise from 12 o'clock, in [0, 360).
	AngleDeg float64 `json:"angleDeg"`
	// Action may be nil for a point that was placed but not configured yet.
	Action *Action `json:"action,omitempty"`
	// Selected marks the point being edited. It is never persisted.
	Selected bool `json:"-"`
}

// EncodePoints returns the points_json form of points.
func EncodePoints(points []Point) (string, error) {
	if len(points) == 0 {
		return "", nil
	}
	data, err := json.Marshal(points)
	if err != nil {
		return "", fmt.Errorf("encode points: %w", err)
	}
	return string(data), nil
}

// DecodePoints parses a points JSON array. It accepts both the points_json
// store value and the records of the legacy "actions" backup array. Records
// without an id get one derived from their position and content, so decoding
// the same text twice yields the same ids.
func DecodePoints(key string, data []byte) ([]Point, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var points []Point
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, &launcherprefs.DecodeError{
			Key:      key,
			Expected: "List of gesture points",
			Actual:   describeJSON(data),
			Raw:      truncate(string(data), 120),
		}
	}

	for i := range points {
		p := &points[i]
		if p.Circle < 0 {
			return nil, fmt.Errorf("%w: point %d has negative circle %d", launcherprefs.ErrInvalidValue, i, p.Circle)
		}
		p.AngleDeg = NormalizeAngle(p.AngleDeg)
		if p.ID == "" {
			p.ID = derivedID(i, *p)
		}
	}
	return points, nil
}

func derivedID(i int, p Point) string {
	name := fmt.Sprintf("%d/%d/%g", i, p.Circle, p.AngleDeg)
	if p.Action != nil {
		name += "/" + string(p.Action.Kind)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func describeJSON(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return "Null"
	case trimmed[0] == '[':
		return "List with invalid records"
	case trimmed[0] == '{':
		return "Object"
	case trimmed[0] == '"':
		return "String"
	default:
		return "Scalar"
	}
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n]) + "..."
}
