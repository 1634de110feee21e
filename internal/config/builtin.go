package config

// DefaultBuiltinLayout is used when default_layout is not set.
const DefaultBuiltinLayout = "grid"

// BuiltinLayouts returns the built-in layout library. Custom layouts from
// YAML are merged over it and may inherit from any entry.
func BuiltinLayouts() map[string]Layout {
	full := TileRegion{Type: RegionFull}
	return map[string]Layout{
		"grid": {
			Mode:            LayoutModeAuto,
			TileRegion:      full,
			FlexibleLastRow: true,
		},
		"columns": {
			Mode:       LayoutModeHorizontal,
			TileRegion: full,
		},
		"rows": {
			Mode:       LayoutModeVertical,
			TileRegion: full,
		},
		"half-left": {
			Mode:            LayoutModeAuto,
			TileRegion:      TileRegion{Type: RegionLeftHalf},
			FlexibleLastRow: true,
		},
		"half-right": {
			Mode:            LayoutModeAuto,
			TileRegion:      TileRegion{Type: RegionRightHalf},
			FlexibleLastRow: true,
		},
		"master-stack": {
			Mode:       LayoutModeMasterStack,
			TileRegion: full,
			MasterStack: MasterStack{
				MasterWidthPercent: 55,
				MaxStackRows:       3,
				MaxStackCols:       2,
			},
		},
	}
}
