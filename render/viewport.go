package render

import (
	"math"

	"github.com/lixenwraith/fitts/layout"
	"github.com/lixenwraith/fitts/vmath"
)

// Viewport geometry
const (
	// DefaultCellsPerUnit is terminal columns per world unit
	DefaultCellsPerUnit = 4.0
	// CellAspect is the height/width ratio of a terminal cell
	CellAspect = 2.0
	// HUDRows are reserved at the top for the status line
	HUDRows = 1
)

// Viewport maps world units onto terminal cells
// World origin sits at the centre of the play area, Y grows upward
type Viewport struct {
	cols, rows   int
	cellsPerUnit float64
}

// NewViewport creates a viewport for a cols×rows terminal
func NewViewport(cols, rows int, cellsPerUnit float64) *Viewport {
	if cellsPerUnit <= 0 {
		cellsPerUnit = DefaultCellsPerUnit
	}
	return &Viewport{cols: cols, rows: rows, cellsPerUnit: cellsPerUnit}
}

// Resize updates the terminal dimensions
func (v *Viewport) Resize(cols, rows int) {
	v.cols, v.rows = cols, rows
}

// Size returns the terminal dimensions
func (v *Viewport) Size() (cols, rows int) {
	return v.cols, v.rows
}

func (v *Viewport) playRows() int {
	return max(v.rows-HUDRows, 0)
}

func (v *Viewport) unitX() float64 { return v.cellsPerUnit }
func (v *Viewport) unitY() float64 { return v.cellsPerUnit / CellAspect }

// Bounds returns the play area in world units; implements layout.BoundsProvider
func (v *Viewport) Bounds() layout.Bounds {
	return layout.Centered(float64(v.cols)/v.unitX(), float64(v.playRows())/v.unitY())
}

// ToWorld returns the world position of a cell's centre
func (v *Viewport) ToWorld(x, y int) vmath.Vec2 {
	cx := float64(v.cols) / 2
	cy := float64(HUDRows) + float64(v.playRows())/2
	return vmath.V2(
		(float64(x)+0.5-cx)/v.unitX(),
		(cy-(float64(y)+0.5))/v.unitY(),
	)
}

// ToCell returns the cell containing world point p; may lie off screen
func (v *Viewport) ToCell(p vmath.Vec2) (x, y int) {
	cx := float64(v.cols) / 2
	cy := float64(HUDRows) + float64(v.playRows())/2
	return int(math.Floor(p.X*v.unitX() + cx)), int(math.Floor(cy - p.Y*v.unitY()))
}

// InPlayArea reports whether a cell is drawable below the HUD
func (v *Viewport) InPlayArea(x, y int) bool {
	return x >= 0 && x < v.cols && y >= HUDRows && y < v.rows
}

// CellSpan returns the inclusive cell rectangle covering a world-space disc
func (v *Viewport) CellSpan(center vmath.Vec2, radius float64) (x0, y0, x1, y1 int) {
	x0, y1 = v.ToCell(vmath.V2(center.X-radius, center.Y-radius))
	x1, y0 = v.ToCell(vmath.V2(center.X+radius, center.Y+radius))
	return
}
