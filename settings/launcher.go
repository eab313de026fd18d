package settings

import (
	"context"

	"github.com/CreativeUnicorns/launcherprefs"
	"github.com/CreativeUnicorns/launcherprefs/gesture"
	"github.com/CreativeUnicorns/launcherprefs/widgets"
)

// Launcher bundles the registry with the editors layered on its stores.
type Launcher struct {
	Registry *launcherprefs.Registry
	Backups  *launcherprefs.BackupManager
	Dial     *gesture.Dial
	Widgets  *widgets.Engine
}

// Options configures Open.
type Options struct {
	// Metrics converts widget drag deltas. Zero fields fall back to a
	// 1080x2400 screen with DefaultCellSize cells.
	Metrics widgets.Metrics
	// MinGap is the dial separation gap in degrees; zero means
	// gesture.DefaultMinGap.
	MinGap float64
}

// Open registers every launcher store and wires the dial, widget engine and
// backup manager. The legacy "actions" backup array is routed to the dial.
func Open(ctx context.Context, o Options, opts ...launcherprefs.Option) (*Launcher, error) {
	reg, err := NewRegistry(ctx, opts...)
	if err != nil {
		return nil, err
	}
	l, err := wire(reg, o)
	if err != nil {
		_ = reg.Close()
		return nil, err
	}
	return l, nil
}

func wire(reg *launcherprefs.Registry, o Options) (*Launcher, error) {
	logger := reg.Logger()

	swipe, err := reg.Store(SwipePoints)
	if err != nil {
		return nil, err
	}
	dialOpts := []gesture.Option{gesture.WithLogger(logger)}
	if o.MinGap > 0 {
		dialOpts = append(dialOpts, gesture.WithMinGap(o.MinGap))
	}
	dial, err := gesture.NewDial(swipe, dialOpts...)
	if err != nil {
		return nil, err
	}

	ws, err := reg.Store(Widgets)
	if err != nil {
		return nil, err
	}
	engine, err := widgets.NewEngine(ws, withDefaults(o.Metrics), widgets.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &Launcher{
		Registry: reg,
		Backups:  launcherprefs.NewBackupManager(reg, launcherprefs.WithLegacyImporter(dial)),
		Dial:     dial,
		Widgets:  engine,
	}, nil
}

func withDefaults(m widgets.Metrics) widgets.Metrics {
	if m.ScreenWidth == 0 {
		m.ScreenWidth = 1080
	}
	if m.ScreenHeight == 0 {
		m.ScreenHeight = 2400
	}
	if m.CellSize == 0 {
		m.CellSize = widgets.DefaultCellSize
	}
	return m
}

// Close releases the registry's storage and cache.
func (l *Launcher) Close() error {
	return l.Registry.Close()
}
