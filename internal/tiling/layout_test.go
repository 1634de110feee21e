package tiling

import (
	"testing"

	"github.com/1broseidon/tilecore/internal/config"
)

func TestArrange_MaxWindowWidthCentersInCell(t *testing.T) {
	layout := config.Layout{
		Mode:           config.LayoutModeFixed,
		FixedGrid:      config.FixedGrid{Rows: 1, Cols: 2},
		TileRegion:     config.TileRegion{Type: config.RegionFull},
		MaxWindowWidth: 50,
	}
	area := Rect{Width: 210, Height: 100}

	positions, err := Arrange(layout, 2, area, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// cells are (210-30)/2 = 90 wide; a 50px window sits 20px into its cell.
	if positions[0].X != 30 || positions[1].X != 130 {
		t.Fatalf("x = %d, %d; want 30, 130", positions[0].X, positions[1].X)
	}
	if positions[0].Width != 50 || positions[1].Width != 50 {
		t.Fatalf("widths = %d, %d; want 50", positions[0].Width, positions[1].Width)
	}
}

func TestArrange_FixedGridCapacity(t *testing.T) {
	layout := config.Layout{
		Mode:      config.LayoutModeFixed,
		FixedGrid: config.FixedGrid{Rows: 1, Cols: 2},
	}
	positions, err := Arrange(layout, 5, Rect{Width: 1000, Height: 500}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}
}

func TestArrange_ErrorsWhenInsufficientSpace(t *testing.T) {
	layout := config.Layout{
		Mode:      config.LayoutModeFixed,
		FixedGrid: config.FixedGrid{Rows: 1, Cols: 2},
	}
	if _, err := Arrange(layout, 2, Rect{Width: 20, Height: 10}, 20); err == nil {
		t.Fatalf("expected error for insufficient space")
	}
}

func TestArrange_UnknownMode(t *testing.T) {
	if _, err := Arrange(config.Layout{Mode: "spiral"}, 1, Rect{Width: 100, Height: 100}, 0); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestArrange_VerticalAndHorizontal(t *testing.T) {
	area := Rect{Width: 300, Height: 300}

	rows, err := Arrange(config.Layout{Mode: config.LayoutModeVertical}, 3, area, 0)
	if err != nil {
		t.Fatalf("vertical: %v", err)
	}
	if rows[2] != (Rect{X: 0, Y: 200, Width: 300, Height: 100}) {
		t.Fatalf("vertical last = %+v", rows[2])
	}

	cols, err := Arrange(config.Layout{Mode: config.LayoutModeHorizontal}, 3, area, 0)
	if err != nil {
		t.Fatalf("horizontal: %v", err)
	}
	if cols[2] != (Rect{X: 200, Y: 0, Width: 100, Height: 300}) {
		t.Fatalf("horizontal last = %+v", cols[2])
	}
}

func TestRegion(t *testing.T) {
	area := Rect{X: 100, Y: 50, Width: 1001, Height: 600}
	tests := []struct {
		region config.TileRegion
		want   Rect
	}{
		{config.TileRegion{Type: config.RegionFull}, area},
		{config.TileRegion{Type: config.RegionLeftHalf}, Rect{X: 100, Y: 50, Width: 500, Height: 600}},
		{config.TileRegion{Type: config.RegionRightHalf}, Rect{X: 600, Y: 50, Width: 500, Height: 600}},
		{config.TileRegion{Type: config.RegionBottomHalf}, Rect{X: 100, Y: 350, Width: 1001, Height: 300}},
		{
			config.TileRegion{Type: config.RegionCustom, XPercent: 10, YPercent: 50, WidthPercent: 1, HeightPercent: 0},
			Rect{X: 200, Y: 350, Width: 10, Height: 1},
		},
	}
	for _, tt := range tests {
		if got := Region(area, tt.region); got != tt.want {
			t.Errorf("Region(%s) = %+v, want %+v", tt.region.Type, got, tt.want)
		}
	}
}

func TestGridSize(t *testing.T) {
	tests := []struct {
		n, rows, cols int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 1, 2},
		{3, 2, 2},
		{5, 2, 3},
		{9, 3, 3},
		{10, 3, 4},
	}
	for _, tt := range tests {
		rows, cols := GridSize(tt.n)
		if rows != tt.rows || cols != tt.cols {
			t.Errorf("GridSize(%d) = %dx%d, want %dx%d", tt.n, rows, cols, tt.rows, tt.cols)
		}
	}
}

func TestArrange_FlexibleLastRowFillsWidth(t *testing.T) {
	layout := config.Layout{
		Mode:            config.LayoutModeAuto,
		FlexibleLastRow: true,
	}
	positions, err := Arrange(layout, 3, Rect{Width: 310, Height: 210}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Rect{X: 10, Y: 110, Width: 290, Height: 90}
	if positions[2] != want {
		t.Fatalf("last row position = %+v, want %+v", positions[2], want)
	}
}

func TestArrange_MasterStack(t *testing.T) {
	layout := config.Layout{
		Mode: config.LayoutModeMasterStack,
		MasterStack: config.MasterStack{
			MasterWidthPercent: 50,
			MaxStackRows:       3,
			MaxStackCols:       2,
		},
	}
	positions, err := Arrange(layout, 3, Rect{Width: 1000, Height: 500}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Rect{
		{X: 10, Y: 10, Width: 490, Height: 480},
		{X: 510, Y: 10, Width: 480, Height: 235},
		{X: 510, Y: 255, Width: 480, Height: 235},
	}
	if len(positions) != len(want) {
		t.Fatalf("got %d positions, want %d", len(positions), len(want))
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Fatalf("position %d = %+v, want %+v", i, positions[i], want[i])
		}
	}
}
