package gesture

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/CreativeUnicorns/launcherprefs"
)

// PointsKey holds the JSON array of every point of every dial.
var PointsKey = launcherprefs.StringKey("points_json", "")

// Dial edits the gesture points persisted in one swipe store. Every mutation
// is one store transaction; adds and moves re-run AutoSeparate on the
// affected circle before committing.
type Dial struct {
	store  *launcherprefs.Store
	minGap float64
	logger launcherprefs.Logger

	mu       sync.Mutex
	selected string
}

// Option configures a Dial.
type Option func(*Dial)

// WithMinGap overrides DefaultMinGap.
func WithMinGap(deg float64) Option {
	return func(d *Dial) {
		d.minGap = deg
	}
}

// WithLogger sets the logger. If not set, launcherprefs.NewDefaultLogger is used.
func WithLogger(l launcherprefs.Logger) Option {
	return func(d *Dial) {
		d.logger = l
	}
}

// NewDial returns a Dial over store, which must define PointsKey.
func NewDial(store *launcherprefs.Store, opts ...Option) (*Dial, error) {
	if _, err := launcherprefs.Get(store, PointsKey); err != nil {
		return nil, err
	}
	d := &Dial{store: store, minGap: DefaultMinGap}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = launcherprefs.NewDefaultLogger()
	}
	return d, nil
}

// MinGap returns the separation gap in degrees.
func (d *Dial) MinGap() float64 { return d.minGap }

// Points returns every point, the selected one flagged. Unreadable stored
// JSON is logged and reads as no points.
func (d *Dial) Points() []Point {
	raw, _ := launcherprefs.Get(d.store, PointsKey)
	points, err := DecodePoints(PointsKey.Name(), []byte(raw))
	if err != nil {
		d.logger.Warn("Ignoring unreadable gesture points", "store", d.store.ID(), "error", err)
		return nil
	}

	d.mu.Lock()
	selected := d.selected
	d.mu.Unlock()
	for i := range points {
		points[i].Selected = points[i].ID == selected
	}
	return points
}

// Observe returns the points as an observable collection.
func (d *Dial) Observe() *launcherprefs.Observable[[]Point] {
	return launcherprefs.NewObservable(d.store, d.Points)
}

// Add places a new point at angle 0 of circle and separates that circle.
func (d *Dial) Add(ctx context.Context, circle int, action *Action) (Point, Separation, error) {
	if circle < 0 {
		return Point{}, Separation{}, fmt.Errorf("%w: negative circle %d", launcherprefs.ErrInvalidInput, circle)
	}
	if action != nil {
		if err := action.Validate(); err != nil {
			return Point{}, Separation{}, err
		}
	}

	p := Point{ID: uuid.NewString(), Circle: circle, Action: action}
	var sep Separation
	err := d.edit(ctx, func(points []Point) ([]Point, error) {
		points = append(points, p)
		sep = AutoSeparate(points, circle, d.minGap)
		p = points[len(points)-1]
		return points, nil
	})
	if err != nil {
		return Point{}, Separation{}, err
	}
	d.logSeparation(circle, sep)
	return p, sep, nil
}

// Move sets the angle of a point and separates its circle.
func (d *Dial) Move(ctx context.Context, id string, angleDeg float64) (Separation, error) {
	var sep Separation
	err := d.edit(ctx, func(points []Point) ([]Point, error) {
		i, err := find(points, id)
		if err != nil {
			return nil, err
		}
		points[i].AngleDeg = NormalizeAngle(angleDeg)
		sep = AutoSeparate(points, points[i].Circle, d.minGap)
		return points, nil
	})
	return sep, err
}

// SetAction replaces the action of a point.
func (d *Dial) SetAction(ctx context.Context, id string, action *Action) error {
	if action != nil {
		if err := action.Validate(); err != nil {
			return err
		}
	}
	return d.edit(ctx, func(points []Point) ([]Point, error) {
		i, err := find(points, id)
		if err != nil {
			return nil, err
		}
		points[i].Action = action
		return points, nil
	})
}

// Remove deletes a point. Removing the selected point clears the selection.
func (d *Dial) Remove(ctx context.Context, id string) error {
	err := d.edit(ctx, func(points []Point) ([]Point, error) {
		i, err := find(points, id)
		if err != nil {
			return nil, err
		}
		return slices.Delete(points, i, i+1), nil
	})
	if err != nil {
		return err
	}

	d.mu.Lock()
	if d.selected == id {
		d.selected = ""
	}
	d.mu.Unlock()
	return nil
}

// Select makes id the only selected point. An empty id clears the selection.
// Selection is editing state and is never persisted.
func (d *Dial) Select(id string) error {
	if id != "" {
		if _, err := find(d.Points(), id); err != nil {
			return err
		}
	}
	d.mu.Lock()
	d.selected = id
	d.mu.Unlock()
	return nil
}

// Separate runs AutoSeparate on circle and persists the result.
func (d *Dial) Separate(ctx context.Context, circle int) (Separation, error) {
	var sep Separation
	err := d.edit(ctx, func(points []Point) ([]Point, error) {
		sep = AutoSeparate(points, circle, d.minGap)
		return points, nil
	})
	if err == nil {
		d.logSeparation(circle, sep)
	}
	return sep, err
}

// Replace stores points as the complete point set.
func (d *Dial) Replace(ctx context.Context, points []Point) error {
	for i := range points {
		if points[i].Action != nil {
			if err := points[i].Action.Validate(); err != nil {
				return err
			}
		}
	}
	return d.edit(ctx, func([]Point) ([]Point, error) {
		return points, nil
	})
}

// Reset removes every point.
func (d *Dial) Reset(ctx context.Context) error {
	d.mu.Lock()
	d.selected = ""
	d.mu.Unlock()
	return d.store.ResetAll(ctx)
}

// StoreID implements launcherprefs.LegacyImporter.
func (d *Dial) StoreID() launcherprefs.StoreID {
	return d.store.ID()
}

// ImportLegacy implements launcherprefs.LegacyImporter: the legacy "actions"
// array holds point records in the same format as points_json and replaces
// the stored points.
func (d *Dial) ImportLegacy(ctx context.Context, raw json.RawMessage) (int, error) {
	points, err := DecodePoints(launcherprefs.LegacyActionsField, raw)
	if err != nil {
		return 0, err
	}
	if err := d.Replace(ctx, points); err != nil {
		return 0, err
	}
	d.logger.Info("Imported legacy gesture actions", "store", d.store.ID(), "points", len(points))
	return len(points), nil
}

func (d *Dial) edit(ctx context.Context, fn func([]Point) ([]Point, error)) error {
	return d.store.Update(ctx, func(tx *launcherprefs.Tx) error {
		raw, err := launcherprefs.Read(tx, PointsKey)
		if err != nil {
			return err
		}
		points, err := DecodePoints(PointsKey.Name(), []byte(raw))
		if err != nil {
			return err
		}
		points, err = fn(points)
		if err != nil {
			return err
		}
		encoded, err := EncodePoints(points)
		if err != nil {
			return err
		}
		if encoded == "" {
			return tx.Remove(PointsKey.Name())
		}
		return launcherprefs.Put(tx, PointsKey, encoded)
	})
}

func (d *Dial) logSeparation(circle int, sep Separation) {
	if !sep.Stable {
		d.logger.Warn("Dial holds more points than fit at the minimum gap",
			"store", d.store.ID(), "circle", circle, "min_gap", d.minGap, "passes", sep.Passes)
		return
	}
	if sep.Adjustments > 0 {
		d.logger.Debug("Separated dial points",
			"store", d.store.ID(), "circle", circle, "passes", sep.Passes, "resolved", sep.Resolved)
	}
}

func find(points []Point, id string) (int, error) {
	for i := range points {
		if points[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: gesture point %s", launcherprefs.ErrNotFound, id)
}
