package widgets

import (
	"context"
	"fmt"
	"slices"

	"github.com/CreativeUnicorns/launcherprefs"
)

// StateKey holds the {"widgets":[...]} document of the widgets store.
var StateKey = launcherprefs.StringKey("widgets_state", "")

// Engine applies placement edits to a widgets store. Slice order is z-order:
// later placements draw on top.
type Engine struct {
	store   *launcherprefs.Store
	metrics Metrics
	logger  launcherprefs.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. If not set, launcherprefs.NewDefaultLogger is used.
func WithLogger(l launcherprefs.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine returns an Engine over store, which must define StateKey.
func NewEngine(store *launcherprefs.Store, metrics Metrics, opts ...Option) (*Engine, error) {
	if err := metrics.Validate(); err != nil {
		return nil, err
	}
	if _, err := launcherprefs.Get(store, StateKey); err != nil {
		return nil, err
	}
	e := &Engine{store: store, metrics: metrics}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = launcherprefs.NewDefaultLogger()
	}
	return e, nil
}

// Metrics returns the screen metrics used to convert drag deltas.
func (e *Engine) Metrics() Metrics { return e.metrics }

// Placements returns the widgets in z-order. An unreadable document is
// logged and reads as no widgets.
func (e *Engine) Placements() []Placement {
	raw, _ := launcherprefs.Get(e.store, StateKey)
	placements, err := DecodeState([]byte(raw))
	if err != nil {
		e.logger.Error("Load failed", "store", e.store.ID(), "error", err)
		return nil
	}
	return placements
}

// Observe returns the placements as an observable collection.
func (e *Engine) Observe() *launcherprefs.Observable[[]Placement] {
	return launcherprefs.NewObservable(e.store, e.Placements)
}

// Add places a freshly bound widget at the origin, sized from the provider's
// minimum dimensions in dp.
func (e *Engine) Add(ctx context.Context, id int, provider Provider, minWidthDp, minHeightDp float64) (Placement, error) {
	p := Placement{
		ID:       id,
		Provider: provider,
		SpanX:    SpanFor(minWidthDp),
		SpanY:    SpanFor(minHeightDp),
	}
	err := e.edit(ctx, func(placements []Placement) ([]Placement, error) {
		if _, err := find(placements, id); err == nil {
			return nil, fmt.Errorf("%w: widget %d already placed", launcherprefs.ErrInvalidInput, id)
		}
		return append(placements, p), nil
	})
	if err != nil {
		return Placement{}, err
	}
	e.logger.Debug("Added widget", "id", id, "provider", provider.String())
	return p, nil
}

// Remove deletes a widget.
func (e *Engine) Remove(ctx context.Context, id int) error {
	return e.edit(ctx, func(placements []Placement) ([]Placement, error) {
		i, err := find(placements, id)
		if err != nil {
			return nil, err
		}
		return slices.Delete(placements, i, i+1), nil
	})
}

// Move translates a widget by a pixel delta.
func (e *Engine) Move(ctx context.Context, id int, dx, dy float64) (Placement, error) {
	return e.update(ctx, id, func(p Placement) Placement {
		return p.Moved(dx, dy, e.metrics)
	})
}

// Resize drags one edge of a widget by a pixel delta.
func (e *Engine) Resize(ctx context.Context, id int, c Corner, dx, dy float64) (Placement, error) {
	if c < Left || c > Bottom {
		return Placement{}, fmt.Errorf("%w: %s", launcherprefs.ErrInvalidInput, c)
	}
	return e.update(ctx, id, func(p Placement) Placement {
		return p.Resized(c, dx, dy, e.metrics)
	})
}

// MoveUp swaps a widget with the one drawn before it. The first widget stays
// in place.
func (e *Engine) MoveUp(ctx context.Context, id int) error {
	return e.shift(ctx, id, -1)
}

// MoveDown swaps a widget with the one drawn after it. The last widget stays
// in place.
func (e *Engine) MoveDown(ctx context.Context, id int) error {
	return e.shift(ctx, id, 1)
}

// Reset removes every widget.
func (e *Engine) Reset(ctx context.Context) error {
	return e.store.ResetAll(ctx)
}

func (e *Engine) shift(ctx context.Context, id, by int) error {
	return e.edit(ctx, func(placements []Placement) ([]Placement, error) {
		i, err := find(placements, id)
		if err != nil {
			return nil, err
		}
		j := i + by
		if j >= 0 && j < len(placements) {
			placements[i], placements[j] = placements[j], placements[i]
		}
		return placements, nil
	})
}

func (e *Engine) update(ctx context.Context, id int, fn func(Placement) Placement) (Placement, error) {
	var out Placement
	err := e.edit(ctx, func(placements []Placement) ([]Placement, error) {
		i, err := find(placements, id)
		if err != nil {
			return nil, err
		}
		placements[i] = fn(placements[i])
		out = placements[i]
		return placements, nil
	})
	return out, err
}

func (e *Engine) edit(ctx context.Context, fn func([]Placement) ([]Placement, error)) error {
	return e.store.Update(ctx, func(tx *launcherprefs.Tx) error {
		raw, err := launcherprefs.Read(tx, StateKey)
		if err != nil {
			return err
		}
		placements, err := DecodeState([]byte(raw))
		if err != nil {
			return err
		}
		placements, err = fn(placements)
		if err != nil {
			return err
		}
		encoded, err := EncodeState(placements)
		if err != nil {
			return err
		}
		if encoded == "" {
			return tx.Remove(StateKey.Name())
		}
		return launcherprefs.Put(tx, StateKey, encoded)
	})
}

func find(placements []Placement, id int) (int, error) {
	for i := range placements {
		if placements[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: widget %d", launcherprefs.ErrNotFound, id)
}
