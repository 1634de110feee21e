package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Margins represents inset adjustments around a region.
type Margins struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// LayoutMode defines how windows are arranged.
type LayoutMode string

const (
	LayoutModeAuto        LayoutMode = "auto"         // Dynamic grid based on count.
	LayoutModeFixed       LayoutMode = "fixed"        // Specific rows × cols.
	LayoutModeVertical    LayoutMode = "vertical"     // Single column stack.
	LayoutModeHorizontal  LayoutMode = "horizontal"   // Single row side-by-side.
	LayoutModeMasterStack LayoutMode = "master-stack" // Master pane left, stack grid right.
)

// RegionType defines tile region presets.
type RegionType string

const (
	RegionFull       RegionType = "full"
	RegionLeftHalf   RegionType = "left-half"
	RegionRightHalf  RegionType = "right-half"
	RegionTopHalf    RegionType = "top-half"
	RegionBottomHalf RegionType = "bottom-half"
	RegionCustom     RegionType = "custom"
)

// TileRegion defines where on a monitor windows are tiled.
type TileRegion struct {
	Type          RegionType `yaml:"type"`
	XPercent      int        `yaml:"x_percent"`      // 0-100
	YPercent      int        `yaml:"y_percent"`      // 0-100
	WidthPercent  int        `yaml:"width_percent"`  // 0-100
	HeightPercent int        `yaml:"height_percent"` // 0-100
}

// FixedGrid defines specific grid dimensions.
type FixedGrid struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// MasterStack defines the master-stack layout parameters.
type MasterStack struct {
	MasterWidthPercent int `yaml:"master_width_percent"` // 10-90
	MaxStackRows       int `yaml:"max_stack_rows"`       // >= 1
	MaxStackCols       int `yaml:"max_stack_cols"`       // >= 1
}

// Layout defines a tiling configuration.
type Layout struct {
	Mode            LayoutMode  `yaml:"mode"`
	TileRegion      TileRegion  `yaml:"tile_region"`
	FixedGrid       FixedGrid   `yaml:"fixed_grid,omitempty"`
	MasterStack     MasterStack `yaml:"master_stack,omitempty"`
	MaxWindowWidth  int         `yaml:"max_window_width"`  // 0 = unlimited
	MaxWindowHeight int         `yaml:"max_window_height"` // 0 = unlimited
	FlexibleLastRow bool        `yaml:"flexible_last_row"` // auto mode only
}

// FilterConfig lists windows that restore their own position and must never
// be tracked.
type FilterConfig struct {
	Classes []string `yaml:"classes"`
	Titles  []string `yaml:"titles"`
}

// Config holds the application configuration.
type Config struct {
	Workspaces               []string          `yaml:"workspaces"`
	DefaultLayout            string            `yaml:"default_layout"`
	WorkspaceLayouts         map[string]string `yaml:"workspace_layouts,omitempty"`
	Layouts                  map[string]Layout `yaml:"layouts"`
	GapSize                  int               `yaml:"gap_size"`
	ScreenPadding            Margins           `yaml:"screen_padding"`
	LogLevel                 string            `yaml:"log_level"`
	Display                  string            `yaml:"display,omitempty"`
	XAuthority               string            `yaml:"xauthority,omitempty"`
	LocationRestoringFilters FilterConfig      `yaml:"location_restoring_filters"`
	WorkspaceHotkeys         map[string]string `yaml:"workspace_hotkeys"`
	PublishDesktops          bool              `yaml:"publish_desktops"`
	ReconcileIntervalSeconds int               `yaml:"reconcile_interval_seconds"`
}

func DefaultConfig() *Config {
	workspaces := []string{"1", "2", "3", "4", "5"}
	hotkeys := make(map[string]string, len(workspaces))
	for _, name := range workspaces {
		hotkeys[name] = "Mod4-" + name
	}
	return &Config{
		Workspaces:       workspaces,
		DefaultLayout:    DefaultBuiltinLayout,
		WorkspaceLayouts: map[string]string{},
		Layouts:          BuiltinLayouts(),
		GapSize:          8,
		LogLevel:         "info",
		LocationRestoringFilters: FilterConfig{
			Classes: []string{},
			Titles:  []string{},
		},
		WorkspaceHotkeys:         hotkeys,
		PublishDesktops:          false,
		ReconcileIntervalSeconds: 30,
	}
}

// GetLayout retrieves a layout by name with validation.
func (c *Config) GetLayout(name string) (*Layout, error) {
	layout, ok := c.Layouts[name]
	if !ok {
		return nil, fmt.Errorf("layout %q not found", name)
	}

	if err := validateLayout(&layout); err != nil {
		return nil, fmt.Errorf("invalid layout %q: %w", name, err)
	}

	return &layout, nil
}

// GetDefaultLayout retrieves the default layout.
func (c *Config) GetDefaultLayout() (*Layout, error) {
	return c.GetLayout(c.DefaultLayout)
}

// LayoutNameFor returns the layout configured for a workspace, falling back
// to default_layout.
func (c *Config) LayoutNameFor(workspace string) string {
	if name, ok := c.WorkspaceLayouts[workspace]; ok && name != "" {
		return name
	}
	return c.DefaultLayout
}

// LayoutNames returns all layout names, sorted.
func (c *Config) LayoutNames() []string {
	return sortedKeys(c.Layouts)
}

// ReconcileInterval returns the periodic reconcile interval. Zero disables
// periodic passes.
func (c *Config) ReconcileInterval() time.Duration {
	if c.ReconcileIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ReconcileIntervalSeconds) * time.Second
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if len(c.Workspaces) == 0 {
		return &ValidationError{Path: "workspaces", Err: fmt.Errorf("at least one workspace is required")}
	}
	seen := make(map[string]struct{}, len(c.Workspaces))
	for i, name := range c.Workspaces {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: fmt.Sprintf("workspaces[%d]", i), Err: fmt.Errorf("workspace name must not be empty")}
		}
		if _, dup := seen[name]; dup {
			return &ValidationError{Path: "workspaces", Err: fmt.Errorf("duplicate workspace %q", name)}
		}
		seen[name] = struct{}{}
	}
	if c.GapSize < 0 {
		return &ValidationError{Path: "gap_size", Err: fmt.Errorf("gap_size must be >= 0")}
	}
	if c.ScreenPadding.Top < 0 || c.ScreenPadding.Bottom < 0 || c.ScreenPadding.Left < 0 || c.ScreenPadding.Right < 0 {
		return &ValidationError{Path: "screen_padding", Err: fmt.Errorf("screen_padding values must be >= 0")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.ReconcileIntervalSeconds < 0 {
		return &ValidationError{Path: "reconcile_interval_seconds", Err: fmt.Errorf("reconcile_interval_seconds must be >= 0")}
	}

	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	if c.DefaultLayout == "" {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout is required")}
	}
	if _, ok := c.Layouts[c.DefaultLayout]; !ok {
		return &ValidationError{Path: "default_layout", Err: fmt.Errorf("default_layout %q not found in layouts", c.DefaultLayout)}
	}
	for _, name := range sortedKeys(c.Layouts) {
		layout := c.Layouts[name]
		if err := validateLayout(&layout); err != nil {
			return &ValidationError{Path: "layouts." + name, Err: err}
		}
	}

	for _, ws := range sortedKeys(c.WorkspaceLayouts) {
		if _, ok := seen[ws]; !ok {
			return &ValidationError{Path: "workspace_layouts." + ws, Err: fmt.Errorf("unknown workspace %q", ws)}
		}
		if _, ok := c.Layouts[c.WorkspaceLayouts[ws]]; !ok {
			return &ValidationError{Path: "workspace_layouts." + ws, Err: fmt.Errorf("layout %q not found in layouts", c.WorkspaceLayouts[ws])}
		}
	}
	for _, ws := range sortedKeys(c.WorkspaceHotkeys) {
		if strings.TrimSpace(c.WorkspaceHotkeys[ws]) == "" {
			return &ValidationError{Path: "workspace_hotkeys." + ws, Err: fmt.Errorf("hotkey must not be empty")}
		}
	}

	return nil
}

// validateLayout checks if a layout configuration is valid.
func validateLayout(layout *Layout) error {
	switch layout.Mode {
	case LayoutModeAuto, LayoutModeFixed, LayoutModeVertical, LayoutModeHorizontal, LayoutModeMasterStack:
	default:
		return fmt.Errorf("invalid mode %q", layout.Mode)
	}

	if layout.Mode == LayoutModeFixed {
		if layout.FixedGrid.Rows <= 0 || layout.FixedGrid.Cols <= 0 {
			return fmt.Errorf("fixed mode requires rows and cols to be positive")
		}
	}

	if layout.Mode == LayoutModeMasterStack {
		if layout.MasterStack.MasterWidthPercent < 10 || layout.MasterStack.MasterWidthPercent > 90 {
			return fmt.Errorf("master_stack.master_width_percent must be between 10 and 90")
		}
		if layout.MasterStack.MaxStackRows < 1 {
			return fmt.Errorf("master_stack.max_stack_rows must be >= 1")
		}
		if layout.MasterStack.MaxStackCols < 1 {
			return fmt.Errorf("master_stack.max_stack_cols must be >= 1")
		}
	}

	if layout.MaxWindowWidth < 0 || layout.MaxWindowHeight < 0 {
		return fmt.Errorf("max_window_width/height must be >= 0")
	}

	switch layout.TileRegion.Type {
	case RegionFull, RegionLeftHalf, RegionRightHalf, RegionTopHalf, RegionBottomHalf:
	case RegionCustom:
		r := layout.TileRegion
		if r.XPercent < 0 || r.XPercent > 100 {
			return fmt.Errorf("x_percent must be between 0 and 100")
		}
		if r.YPercent < 0 || r.YPercent > 100 {
			return fmt.Errorf("y_percent must be between 0 and 100")
		}
		if r.WidthPercent <= 0 || r.WidthPercent > 100 {
			return fmt.Errorf("width_percent must be between 1 and 100")
		}
		if r.HeightPercent <= 0 || r.HeightPercent > 100 {
			return fmt.Errorf("height_percent must be between 1 and 100")
		}
		if r.XPercent+r.WidthPercent > 100 {
			return fmt.Errorf("x_percent + width_percent must be <= 100")
		}
		if r.YPercent+r.HeightPercent > 100 {
			return fmt.Errorf("y_percent + height_percent must be <= 100")
		}
	default:
		return fmt.Errorf("invalid region type %q", layout.TileRegion.Type)
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
