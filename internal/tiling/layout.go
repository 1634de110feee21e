package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/tilecore/internal/config"
	"github.com/1broseidon/tilecore/internal/platform"
)

// Rect represents a window position and size.
type Rect = platform.Rect

// GridSize returns the near-square grid for n windows: ceil(√n) columns and
// as many rows as needed.
func GridSize(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	return ceilDiv(n, cols), cols
}

// Region narrows area to the configured tile region. The result is at least
// 1x1.
func Region(area Rect, r config.TileRegion) Rect {
	x, y, w, h := 0, 0, 100, 100
	switch r.Type {
	case config.RegionLeftHalf:
		w = 50
	case config.RegionRightHalf:
		x, w = 50, 50
	case config.RegionTopHalf:
		h = 50
	case config.RegionBottomHalf:
		y, h = 50, 50
	case config.RegionCustom:
		x, y, w, h = r.XPercent, r.YPercent, r.WidthPercent, r.HeightPercent
	}
	return Rect{
		X:      area.X + area.Width*x/100,
		Y:      area.Y + area.Height*y/100,
		Width:  max(area.Width*w/100, 1),
		Height: max(area.Height*h/100, 1),
	}
}

// Arrange places n windows inside area according to layout. Fixed grids and
// master-stack layouts have a capacity; windows past it get no position, so
// the result can be shorter than n.
func Arrange(layout config.Layout, n int, area Rect, gap int) ([]Rect, error) {
	if n <= 0 {
		return nil, nil
	}
	if layout.Mode == config.LayoutModeMasterStack {
		return masterStack(layout.MasterStack, n, area, gap)
	}

	g, err := gridFor(layout, n)
	if err != nil {
		return nil, err
	}
	return g.place(min(n, g.rows*g.cols), area, gap, layout.MaxWindowWidth, layout.MaxWindowHeight)
}

type grid struct {
	rows, cols int
	// flexible lets a short last row stretch across the full width.
	flexible bool
}

func gridFor(layout config.Layout, n int) (grid, error) {
	var g grid
	switch layout.Mode {
	case config.LayoutModeAuto:
		g.rows, g.cols = GridSize(n)
		g.flexible = layout.FlexibleLastRow
	case config.LayoutModeFixed:
		g.rows, g.cols = layout.FixedGrid.Rows, layout.FixedGrid.Cols
	case config.LayoutModeVertical:
		g.rows, g.cols = n, 1
	case config.LayoutModeHorizontal:
		g.rows, g.cols = 1, n
	default:
		return grid{}, fmt.Errorf("unsupported layout mode: %q", layout.Mode)
	}
	if g.rows <= 0 || g.cols <= 0 {
		return grid{}, fmt.Errorf("invalid grid dimensions: rows=%d cols=%d", g.rows, g.cols)
	}
	return g, nil
}

func (g grid) place(n int, area Rect, gap, maxWidth, maxHeight int) ([]Rect, error) {
	cellWidth := span(area.Width, g.cols, gap)
	cellHeight := span(area.Height, g.rows, gap)
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for layout: area=%dx%d rows=%d cols=%d gap=%d (cell=%dx%d)",
			area.Width, area.Height, g.rows, g.cols, gap, cellWidth, cellHeight,
		)
	}

	lastRow := (n - 1) / g.cols
	lastRowCount := n - lastRow*g.cols

	out := make([]Rect, n)
	for i := range out {
		row, col := i/g.cols, i%g.cols
		width := cellWidth
		if g.flexible && row == lastRow && lastRowCount < g.cols {
			width = span(area.Width, lastRowCount, gap)
		}
		cell := Rect{
			X:      area.X + gap + col*(width+gap),
			Y:      area.Y + gap + row*(cellHeight+gap),
			Width:  width,
			Height: cellHeight,
		}
		out[i] = fit(cell, maxWidth, maxHeight)
	}
	return out, nil
}

// masterStack gives the first window a full-height pane on the left and
// grids the rest on the right.
func masterStack(ms config.MasterStack, n int, area Rect, gap int) ([]Rect, error) {
	masterWidth := area.Width*ms.MasterWidthPercent/100 - gap
	height := area.Height - 2*gap
	master := Rect{X: area.X + gap, Y: area.Y + gap, Width: masterWidth, Height: height}
	if n == 1 {
		return []Rect{master}, nil
	}

	maxRows := max(ms.MaxStackRows, 1)
	stacked := n - 1
	cols := max(min(ceilDiv(stacked, maxRows), ms.MaxStackCols), 1)
	rows := min(ceilDiv(stacked, cols), maxRows)
	stacked = min(stacked, rows*cols)

	left := area.X + masterWidth + 2*gap
	stackWidth := area.Width - masterWidth - 3*gap
	cellWidth := (stackWidth - (cols-1)*gap) / cols
	cellHeight := (height - (rows-1)*gap) / rows
	if masterWidth <= 0 || cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for master-stack layout: area=%dx%d master=%d cell=%dx%d gap=%d",
			area.Width, area.Height, masterWidth, cellWidth, cellHeight, gap,
		)
	}

	out := make([]Rect, 0, stacked+1)
	out = append(out, master)
	for i := 0; i < stacked; i++ {
		row, col := i/cols, i%cols
		out = append(out, Rect{
			X:      left + col*(cellWidth+gap),
			Y:      area.Y + gap + row*(cellHeight+gap),
			Width:  cellWidth,
			Height: cellHeight,
		})
	}
	return out, nil
}

// span is the size of each of count cells along length with gap before,
// between and after them.
func span(length, count, gap int) int {
	return (length - (count+1)*gap) / count
}

// fit caps cell at the maximum window size, centering it in the cell.
func fit(cell Rect, maxWidth, maxHeight int) Rect {
	if maxWidth > 0 && cell.Width > maxWidth {
		cell.X += (cell.Width - maxWidth) / 2
		cell.Width = maxWidth
	}
	if maxHeight > 0 && cell.Height > maxHeight {
		cell.Y += (cell.Height - maxHeight) / 2
		cell.Height = maxHeight
	}
	return cell
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
