package tiling

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/tilecore/internal/config"
	"github.com/1broseidon/tilecore/internal/platform"
	"github.com/1broseidon/tilecore/internal/window"
	"github.com/1broseidon/tilecore/internal/workspace"
)

// Mover applies geometry to native windows.
type Mover interface {
	MoveResize(windowID platform.WindowID, bounds platform.Rect) error
}

// Engine is a workspace.LayoutEngine that tiles windows with one configured
// layout. Minimized and destroyed windows are skipped.
type Engine struct {
	name   string
	layout config.Layout
	gap    int
	mover  Mover
	logger *slog.Logger
}

// NewEngine creates an engine for layout.
func NewEngine(name string, layout config.Layout, gapSize int, mover Mover, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		name:   name,
		layout: layout,
		gap:    gapSize,
		mover:  mover,
		logger: logger,
	}
}

// EngineFromConfig builds the engine for the named layout in cfg.
func EngineFromConfig(cfg *config.Config, layoutName string, mover Mover, logger *slog.Logger) (*Engine, error) {
	layout, err := cfg.GetLayout(layoutName)
	if err != nil {
		return nil, err
	}
	return NewEngine(layoutName, *layout, cfg.GapSize, mover, logger), nil
}

func (e *Engine) Name() string { return e.name }

// Layout returns the layout configuration.
func (e *Engine) Layout() config.Layout { return e.layout }

// Recompute tiles the workspace's windows inside area in workspace order.
func (e *Engine) Recompute(ws *workspace.Workspace, area platform.Rect) error {
	var tiled []*window.Window
	for _, w := range ws.Windows() {
		if w.Valid() && !w.Minimized() {
			tiled = append(tiled, w)
		}
	}
	if len(tiled) == 0 {
		return nil
	}

	positions, err := Arrange(e.layout, len(tiled), Region(area, e.layout.TileRegion), e.gap)
	if err != nil {
		return fmt.Errorf("layout %q: %w", e.name, err)
	}

	e.logger.Debug("tiling workspace",
		"workspace", ws.Name(),
		"layout", e.name,
		"windows", len(tiled),
		"placed", len(positions))

	var errs []error
	for i, pos := range positions {
		if err := e.mover.MoveResize(tiled[i].Handle(), pos); err != nil {
			errs = append(errs, fmt.Errorf("move window 0x%x: %w", uint32(tiled[i].Handle()), err))
		}
	}
	return errors.Join(errs...)
}

type paddedEngine struct {
	inner   workspace.LayoutEngine
	padding config.Margins
}

// PaddingProxy returns a proxy that shrinks the layout area by padding
// before delegating.
func PaddingProxy(padding config.Margins) workspace.ProxyFactory {
	return func(inner workspace.LayoutEngine) workspace.LayoutEngine {
		return &paddedEngine{inner: inner, padding: padding}
	}
}

func (p *paddedEngine) Name() string { return p.inner.Name() }

func (p *paddedEngine) Recompute(ws *workspace.Workspace, area platform.Rect) error {
	pad := p.padding
	padded := platform.Rect{
		X:      area.X + pad.Left,
		Y:      area.Y + pad.Top,
		Width:  area.Width - pad.Left - pad.Right,
		Height: area.Height - pad.Top - pad.Bottom,
	}
	if padded.Width < 1 || padded.Height < 1 {
		return fmt.Errorf(
			"screen_padding leaves no usable space: %dx%d at %d,%d",
			padded.Width, padded.Height, padded.X, padded.Y,
		)
	}
	return p.inner.Recompute(ws, padded)
}
