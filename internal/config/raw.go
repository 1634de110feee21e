package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawMargins struct {
	Top    *int `yaml:"top"`
	Bottom *int `yaml:"bottom"`
	Left   *int `yaml:"left"`
	Right  *int `yaml:"right"`
}

type RawFixedGrid struct {
	Rows *int `yaml:"rows"`
	Cols *int `yaml:"cols"`
}

type RawMasterStack struct {
	MasterWidthPercent *int `yaml:"master_width_percent"`
	MaxStackRows       *int `yaml:"max_stack_rows"`
	MaxStackCols       *int `yaml:"max_stack_cols"`
}

type RawTileRegion struct {
	Type          *RegionType `yaml:"type"`
	XPercent      *int        `yaml:"x_percent"`
	YPercent      *int        `yaml:"y_percent"`
	WidthPercent  *int        `yaml:"width_percent"`
	HeightPercent *int        `yaml:"height_percent"`
}

type RawLayout struct {
	Inherits        *string         `yaml:"inherits"`
	Mode            *LayoutMode     `yaml:"mode"`
	TileRegion      *RawTileRegion  `yaml:"tile_region"`
	FixedGrid       *RawFixedGrid   `yaml:"fixed_grid"`
	MasterStack     *RawMasterStack `yaml:"master_stack"`
	MaxWindowWidth  *int            `yaml:"max_window_width"`
	MaxWindowHeight *int            `yaml:"max_window_height"`
	FlexibleLastRow *bool           `yaml:"flexible_last_row"`
}

type RawFilterConfig struct {
	Classes []string `yaml:"classes"`
	Titles  []string `yaml:"titles"`
}

// RawConfig is one YAML file as written. Nil means "not set", so includes
// and the including file can be merged field by field.
type RawConfig struct {
	Include                  IncludeList          `yaml:"include"`
	Workspaces               []string             `yaml:"workspaces"`
	DefaultLayout            *string              `yaml:"default_layout"`
	WorkspaceLayouts         map[string]string    `yaml:"workspace_layouts"`
	Layouts                  map[string]RawLayout `yaml:"layouts"`
	GapSize                  *int                 `yaml:"gap_size"`
	ScreenPadding            *RawMargins          `yaml:"screen_padding"`
	LogLevel                 *string              `yaml:"log_level"`
	Display                  *string              `yaml:"display"`
	XAuthority               *string              `yaml:"xauthority"`
	LocationRestoringFilters *RawFilterConfig     `yaml:"location_restoring_filters"`
	WorkspaceHotkeys         map[string]string    `yaml:"workspace_hotkeys"`
	PublishDesktops          *bool                `yaml:"publish_desktops"`
	ReconcileIntervalSeconds *int                 `yaml:"reconcile_interval_seconds"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Workspaces != nil {
		out.Workspaces = append([]string(nil), overlay.Workspaces...)
	}
	if overlay.DefaultLayout != nil {
		out.DefaultLayout = overlay.DefaultLayout
	}
	if overlay.WorkspaceLayouts != nil {
		out.WorkspaceLayouts = mergeStringMap(out.WorkspaceLayouts, overlay.WorkspaceLayouts)
	}
	if overlay.Layouts != nil {
		if out.Layouts == nil {
			out.Layouts = make(map[string]RawLayout, len(overlay.Layouts))
		} else {
			copied := make(map[string]RawLayout, len(out.Layouts))
			for k, v := range out.Layouts {
				copied[k] = v
			}
			out.Layouts = copied
		}
		for name, layout := range overlay.Layouts {
			out.Layouts[name] = mergeRawLayout(out.Layouts[name], layout)
		}
	}
	if overlay.GapSize != nil {
		out.GapSize = overlay.GapSize
	}
	if overlay.ScreenPadding != nil {
		if out.ScreenPadding == nil {
			out.ScreenPadding = &RawMargins{}
		}
		merged := mergeRawMargins(*out.ScreenPadding, *overlay.ScreenPadding)
		out.ScreenPadding = &merged
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.LocationRestoringFilters != nil {
		if out.LocationRestoringFilters == nil {
			out.LocationRestoringFilters = &RawFilterConfig{}
		}
		merged := *out.LocationRestoringFilters
		if overlay.LocationRestoringFilters.Classes != nil {
			merged.Classes = append([]string(nil), overlay.LocationRestoringFilters.Classes...)
		}
		if overlay.LocationRestoringFilters.Titles != nil {
			merged.Titles = append([]string(nil), overlay.LocationRestoringFilters.Titles...)
		}
		out.LocationRestoringFilters = &merged
	}
	if overlay.WorkspaceHotkeys != nil {
		out.WorkspaceHotkeys = mergeStringMap(out.WorkspaceHotkeys, overlay.WorkspaceHotkeys)
	}
	if overlay.PublishDesktops != nil {
		out.PublishDesktops = overlay.PublishDesktops
	}
	if overlay.ReconcileIntervalSeconds != nil {
		out.ReconcileIntervalSeconds = overlay.ReconcileIntervalSeconds
	}

	return out
}

func mergeRawMargins(base RawMargins, overlay RawMargins) RawMargins {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	return out
}

func mergeRawLayout(base RawLayout, overlay RawLayout) RawLayout {
	out := base
	if overlay.Inherits != nil {
		out.Inherits = overlay.Inherits
	}
	if overlay.Mode != nil {
		out.Mode = overlay.Mode
	}
	if overlay.TileRegion != nil {
		region := RawTileRegion{}
		if out.TileRegion != nil {
			region = *out.TileRegion
		}
		o := overlay.TileRegion
		if o.Type != nil {
			region.Type = o.Type
		}
		if o.XPercent != nil {
			region.XPercent = o.XPercent
		}
		if o.YPercent != nil {
			region.YPercent = o.YPercent
		}
		if o.WidthPercent != nil {
			region.WidthPercent = o.WidthPercent
		}
		if o.HeightPercent != nil {
			region.HeightPercent = o.HeightPercent
		}
		out.TileRegion = &region
	}
	if overlay.FixedGrid != nil {
		grid := RawFixedGrid{}
		if out.FixedGrid != nil {
			grid = *out.FixedGrid
		}
		if overlay.FixedGrid.Rows != nil {
			grid.Rows = overlay.FixedGrid.Rows
		}
		if overlay.FixedGrid.Cols != nil {
			grid.Cols = overlay.FixedGrid.Cols
		}
		out.FixedGrid = &grid
	}
	if overlay.MasterStack != nil {
		ms := RawMasterStack{}
		if out.MasterStack != nil {
			ms = *out.MasterStack
		}
		if overlay.MasterStack.MasterWidthPercent != nil {
			ms.MasterWidthPercent = overlay.MasterStack.MasterWidthPercent
		}
		if overlay.MasterStack.MaxStackRows != nil {
			ms.MaxStackRows = overlay.MasterStack.MaxStackRows
		}
		if overlay.MasterStack.MaxStackCols != nil {
			ms.MaxStackCols = overlay.MasterStack.MaxStackCols
		}
		out.MasterStack = &ms
	}
	if overlay.MaxWindowWidth != nil {
		out.MaxWindowWidth = overlay.MaxWindowWidth
	}
	if overlay.MaxWindowHeight != nil {
		out.MaxWindowHeight = overlay.MaxWindowHeight
	}
	if overlay.FlexibleLastRow != nil {
		out.FlexibleLastRow = overlay.FlexibleLastRow
	}
	return out
}

func mergeStringMap(base map[string]string, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
