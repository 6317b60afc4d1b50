package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/fitts/cursor"
	"github.com/lixenwraith/fitts/study"
	"github.com/lixenwraith/fitts/target"
	"github.com/lixenwraith/fitts/vmath"
)

// Glyphs
const (
	glyphFill   = '█'
	glyphBubble = '·'
	glyphPoint  = '+'
)

// Renderer draws the study onto a tcell screen
type Renderer struct {
	screen tcell.Screen
	vp     *Viewport
	base   tcell.Style
}

// NewRenderer creates a renderer bound to screen and its viewport
func NewRenderer(screen tcell.Screen, vp *Viewport) *Renderer {
	return &Renderer{
		screen: screen,
		vp:     vp,
		base:   tcell.StyleDefault.Background(RgbBackground),
	}
}

// Draw renders one frame of the session
func (r *Renderer) Draw(s *study.Session) {
	r.screen.Fill(' ', r.base)

	if sum, ok := s.Summary(); ok {
		r.drawSummary(sum)
		r.screen.Show()
		return
	}

	world := s.World()
	for _, e := range world.Snapshot() {
		if t, ok := world.Get(e); ok {
			r.drawTarget(t)
		}
	}

	c := s.Cursor()
	if c.Visible() {
		if c.Type() == cursor.BubbleCursor {
			if radius, ok := s.Bubble().ActivationRadius(); ok {
				r.drawRing(c.Position(), radius)
			}
		}
		r.drawPoint(c.Position())
	}

	r.drawStatus(s.Progress())
	r.screen.Show()
}

// targetStyle picks the colour for a target's current state
func (r *Renderer) targetStyle(t *target.Target) tcell.Style {
	var color tcell.Color
	switch {
	case t.Goal && t.State() == target.Selected:
		color = RgbGoalSelected
	case t.Goal:
		color = RgbGoal
	case t.State() == target.Selected:
		color = RgbMissed
	case t.Captured():
		color = RgbCaptured
	case t.State() == target.Hovered:
		color = RgbDistractorHover
	default:
		color = RgbDistractor
	}
	return r.base.Foreground(color)
}

func (r *Renderer) drawTarget(t *target.Target) {
	style := r.targetStyle(t)
	x0, y0, x1, y1 := r.vp.CellSpan(t.Position, t.Radius)
	drawn := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !r.vp.InPlayArea(x, y) {
				continue
			}
			if t.Contains(r.vp.ToWorld(x, y)) {
				r.screen.SetContent(x, y, glyphFill, nil, style)
				drawn = true
			}
		}
	}
	// Discs smaller than a cell still get their centre cell
	if !drawn {
		if x, y := r.vp.ToCell(t.Position); r.vp.InPlayArea(x, y) {
			r.screen.SetContent(x, y, glyphFill, nil, style)
		}
	}
}

// drawRing outlines the bubble's activation region on empty cells
func (r *Renderer) drawRing(center vmath.Vec2, radius float64) {
	style := r.base.Foreground(RgbBubble)
	halfCell := 0.5 / r.vp.unitX()
	x0, y0, x1, y1 := r.vp.CellSpan(center, radius+halfCell)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !r.vp.InPlayArea(x, y) {
				continue
			}
			d := vmath.V2Dist(center, r.vp.ToWorld(x, y))
			if math.Abs(d-radius) > halfCell {
				continue
			}
			if ch, _, _, _ := r.screen.GetContent(x, y); ch == ' ' {
				r.screen.SetContent(x, y, glyphBubble, nil, style)
			}
		}
	}
}

func (r *Renderer) drawPoint(p vmath.Vec2) {
	x, y := r.vp.ToCell(p)
	if r.vp.InPlayArea(x, y) {
		r.screen.SetContent(x, y, glyphPoint, nil, r.base.Foreground(RgbPointCursor).Bold(true))
	}
}

// StatusLine formats the HUD text
func StatusLine(p study.Progress) string {
	switch p.Phase {
	case study.PhaseIdle:
		return " Idle"
	case study.PhaseWarmup:
		return " Click the red target to begin"
	}
	return fmt.Sprintf(" Trial %d/%d  Missed %d  Streak %d (best %d)  Level %d  x%d",
		min(p.TrialIndex+1, p.TotalTrials), p.TotalTrials,
		p.MissedClicks, p.Streak, p.HighestStreak, p.Level, p.DistractorMultiplier)
}

func (r *Renderer) drawStatus(p study.Progress) {
	cols, _ := r.vp.Size()
	style := tcell.StyleDefault.Foreground(RgbStatusText).Background(RgbStatusBar)
	r.drawText(0, 0, cols, padRight(StatusLine(p), cols), style)
}

func (r *Renderer) drawSummary(sum study.Summary) {
	cols, rows := r.vp.Size()
	lines := append(strings.Split(sum.String(), "\n"), "", "r: restart   q: quit")
	style := r.base.Foreground(RgbSummary)
	top := max((rows-len(lines))/2, 0)
	for i, line := range lines {
		x := max((cols-len(line))/2, 0)
		r.drawText(x, top+i, cols, line, style)
	}
}

func (r *Renderer) drawText(x, y, cols int, text string, style tcell.Style) {
	for i, ch := range text {
		if x+i >= cols {
			return
		}
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
